package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/medequip/internal/api"
	mw "github.com/kiranshivaraju/medequip/internal/api/middleware"
	"github.com/kiranshivaraju/medequip/internal/api/response"
	"github.com/kiranshivaraju/medequip/internal/cache"
	"github.com/kiranshivaraju/medequip/internal/store"
	"github.com/kiranshivaraju/medequip/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- stub store holding at most one key ---

type stubStore struct {
	key *models.APIKey
}

func (s *stubStore) Ping(_ context.Context) error { return nil }
func (s *stubStore) GetAPIKeyByPrefix(_ context.Context, prefix string) ([]*models.APIKey, error) {
	if s.key != nil && s.key.KeyPrefix == prefix {
		return []*models.APIKey{s.key}, nil
	}
	return nil, nil
}
func (s *stubStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error   { return nil }
func (s *stubStore) CreateAPIKey(_ context.Context, _ *models.APIKey) error       { return nil }
func (s *stubStore) ListAPIKeys(_ context.Context) ([]*models.APIKey, error)     { return nil, nil }
func (s *stubStore) RevokeAPIKey(_ context.Context, _ uuid.UUID) error           { return nil }

// --- stub cache counting every increment ---

type stubCache struct {
	count int64
}

func (c *stubCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *stubCache) Get(_ context.Context, _ string) ([]byte, bool, error)            { return nil, false, nil }
func (c *stubCache) Delete(_ context.Context, _ string) error                          { return nil }
func (c *stubCache) Ping(_ context.Context) error                                      { return nil }
func (c *stubCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	c.count++
	return c.count, nil
}

func ok(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, map[string]string{"handler": body})
	}
}

func keyFor(t *testing.T, raw string, scopes ...string) *models.APIKey {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.APIKey{ID: uuid.New(), KeyHash: string(h), KeyPrefix: raw[:11], Scopes: scopes}
}

func fullDeps(s store.Store, c cache.Cache, limit int) api.Dependencies {
	return api.Dependencies{
		Auth:             mw.NewAuth(s),
		RateLimit:        mw.NewRateLimit(c, limit),
		HealthHandler:    ok("health"),
		AnalyzeHandler:   ok("analyze"),
		CreateKeyHandler: ok("create"),
		ListKeysHandler:  ok("list"),
		RevokeKeyHandler: ok("revoke"),
	}
}

func do(router http.Handler, method, path, rawKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if rawKey != "" {
		req.Header.Set("Authorization", "Bearer "+rawKey)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"].(map[string]any)["code"].(string)
}

func TestRouter_HealthEndpoint_Public(t *testing.T) {
	router := api.NewRouter(fullDeps(&stubStore{}, &stubCache{}, 60))

	w := do(router, "GET", "/api/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ProtectedEndpoints_RequireAuth(t *testing.T) {
	router := api.NewRouter(fullDeps(&stubStore{}, &stubCache{}, 60))

	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/api/analyze-equipment"},
		{"POST", "/api/admin/keys"},
		{"GET", "/api/admin/keys"},
		{"DELETE", "/api/admin/keys/" + uuid.NewString()},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			w := do(router, ep.method, ep.path, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "INVALID_TOKEN", errCode(t, w))
		})
	}
}

func TestRouter_AnalyzeWithKey(t *testing.T) {
	raw := "me_analyze0123456789abcdef"
	router := api.NewRouter(fullDeps(&stubStore{key: keyFor(t, raw, "analyze")}, &stubCache{}, 60))

	w := do(router, "POST", "/api/analyze-equipment", raw)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "59", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRouter_AdminRequiresAdminScope(t *testing.T) {
	raw := "me_analyze0123456789abcdef"
	router := api.NewRouter(fullDeps(&stubStore{key: keyFor(t, raw, "analyze")}, &stubCache{}, 60))

	w := do(router, "GET", "/api/admin/keys", raw)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errCode(t, w))
}

func TestRouter_AdminKeyCannotAnalyze(t *testing.T) {
	raw := "me_adminonly0123456789abcdef"
	router := api.NewRouter(fullDeps(&stubStore{key: keyFor(t, raw, "admin")}, &stubCache{}, 60))

	assert.Equal(t, http.StatusOK, do(router, "GET", "/api/admin/keys", raw).Code)
	assert.Equal(t, http.StatusForbidden, do(router, "POST", "/api/analyze-equipment", raw).Code)
}

func TestRouter_RateLimitExceeded(t *testing.T) {
	raw := "me_analyze0123456789abcdef"
	router := api.NewRouter(fullDeps(&stubStore{key: keyFor(t, raw, "analyze")}, &stubCache{}, 2))

	assert.Equal(t, http.StatusOK, do(router, "POST", "/api/analyze-equipment", raw).Code)
	assert.Equal(t, http.StatusOK, do(router, "POST", "/api/analyze-equipment", raw).Code)

	w := do(router, "POST", "/api/analyze-equipment", raw)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errCode(t, w))
}

func TestRouter_OpenModeWithoutStore(t *testing.T) {
	router := api.NewRouter(api.Dependencies{
		HealthHandler:  ok("health"),
		AnalyzeHandler: ok("analyze"),
	})

	assert.Equal(t, http.StatusOK, do(router, "POST", "/api/analyze-equipment", "").Code)
	assert.Equal(t, http.StatusNotFound, do(router, "GET", "/api/admin/keys", "").Code)
}

func TestRouter_OpenModeRateLimitedByIP(t *testing.T) {
	c := &stubCache{}
	router := api.NewRouter(api.Dependencies{
		RateLimit:      mw.NewRateLimit(c, 60),
		AnalyzeHandler: ok("analyze"),
	})

	w := do(router, "POST", "/api/analyze-equipment", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), c.count)
}

func TestRouter_NotFound(t *testing.T) {
	router := api.NewRouter(fullDeps(&stubStore{}, &stubCache{}, 60))

	w := do(router, "GET", "/api/nonexistent", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errCode(t, w))
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := api.NewRouter(fullDeps(&stubStore{}, &stubCache{}, 60))

	w := do(router, "GET", "/api/analyze-equipment", "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_MissingHandlerIsNotImplemented(t *testing.T) {
	router := api.NewRouter(api.Dependencies{})

	w := do(router, "GET", "/api/health", "")

	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "NOT_IMPLEMENTED", errCode(t, w))
}

var _ store.Store = (*stubStore)(nil)
var _ cache.Cache = (*stubCache)(nil)
