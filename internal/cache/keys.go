package cache

import "fmt"

// RateLimitKey is the per-minute request counter for a caller (API key prefix
// or client IP).
func RateLimitKey(subject string) string {
	return fmt.Sprintf("ratelimit:%s", subject)
}

// ClassificationKey addresses a cached model classification. imageHash is the
// hex SHA-256 of the uploaded bytes; backend and model keep answers from
// different models apart.
func ClassificationKey(backend, model, imageHash string) string {
	return fmt.Sprintf("classification:%s:%s:%s", backend, model, imageHash)
}
