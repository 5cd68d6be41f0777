package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/kiranshivaraju/medequip/internal/api/response"
	"golang.org/x/sync/errgroup"
)

const pingTimeout = 2 * time.Second

// Pinger is a backing service the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProviderInfo reports which vision provider serves analyses.
type ProviderInfo interface {
	ProviderName() string
	ModelConfigured() bool
}

type healthResponse struct {
	Status          string            `json:"status"`
	Timestamp       string            `json:"timestamp"`
	Provider        string            `json:"provider"`
	ModelConfigured bool              `json:"modelConfigured"`
	Services        map[string]string `json:"services,omitempty"`
}

// NewHealthHandler returns an http.HandlerFunc for GET /api/health. Services
// maps a name ("database", "cache") to the dependency to ping; nil entries
// are skipped. Pings run concurrently.
func NewHealthHandler(info ProviderInfo, services map[string]Pinger) http.HandlerFunc {
	names := make([]string, 0, len(services))
	for name, p := range services {
		if p != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		body := healthResponse{
			Status:          "ok",
			Timestamp:       time.Now().UTC().Format(time.RFC3339),
			Provider:        info.ProviderName(),
			ModelConfigured: info.ModelConfigured(),
		}

		if len(names) > 0 {
			states := make([]string, len(names))
			var g errgroup.Group
			for i, name := range names {
				g.Go(func() error {
					ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
					defer cancel()
					states[i] = "ok"
					if err := services[name].Ping(ctx); err != nil {
						states[i] = "degraded"
					}
					return nil
				})
			}
			_ = g.Wait()

			body.Services = make(map[string]string, len(names))
			for i, name := range names {
				body.Services[name] = states[i]
				if states[i] != "ok" {
					body.Status = "degraded"
				}
			}
		}

		if body.Status != "ok" {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED", "One or more services degraded", body)
			return
		}
		response.JSON(w, body)
	}
}
