package models

import "errors"

var (
	// ErrModelUnavailable covers network failures, auth rejection, timeouts and non-2xx statuses.
	ErrModelUnavailable = errors.New("vision model unavailable")
	// ErrMalformedResponse means the model answered without the expected content envelope.
	ErrMalformedResponse = errors.New("vision model returned malformed response")
	// ErrNoInputProvided is returned when no image accompanies the request.
	ErrNoInputProvided = errors.New("no image file provided")
	// ErrInternalAssembly means a classification reached the assembler without required fields.
	ErrInternalAssembly = errors.New("classification missing required fields")
)
