// Package apikey mints and verifies service API keys.
//
// A raw key looks like "me_" followed by 40 hex characters. Its first
// PrefixLen characters are stored in clear for lookup; the full key is only
// ever stored as a bcrypt hash.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/medequip/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	Marker    = "me_"
	PrefixLen = 11

	ScopeAnalyze = "analyze"
	ScopeAdmin   = "admin"
)

// Scopes lists every scope a key may carry.
var Scopes = []string{ScopeAnalyze, ScopeAdmin}

// Generate returns a fresh raw key and the record to persist for it.
func Generate(name string, scopes []string) (string, *models.APIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("key name is required")
	}
	if len(scopes) == 0 {
		scopes = []string{ScopeAnalyze}
	}
	for _, s := range scopes {
		if !slices.Contains(Scopes, s) {
			return "", nil, fmt.Errorf("unknown scope %q: must be one of %s", s, strings.Join(Scopes, ", "))
		}
	}

	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("generate key: %w", err)
	}
	raw := Marker + hex.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash key: %w", err)
	}

	now := time.Now().UTC()
	return raw, &models.APIKey{
		ID:        uuid.New(),
		Name:      name,
		KeyHash:   string(hash),
		KeyPrefix: raw[:PrefixLen],
		Scopes:    slices.Clone(scopes),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Prefix returns the lookup prefix of raw, or false when raw is too short.
func Prefix(raw string) (string, bool) {
	if len(raw) < PrefixLen {
		return "", false
	}
	return raw[:PrefixLen], true
}

// Matches reports whether raw hashes to key's stored hash.
func Matches(key *models.APIKey, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(raw)) == nil
}
