package repository

import "errors"

// Custom error types
var (
	ErrLocationNotFound = errors.New("location not found")
	ErrAPIKeyMissing    = errors.New("API key missing")
	ErrExternalAPI      = errors.New("external API error")
	ErrCircuitOpen      = errors.New("forecast provider temporarily unavailable")
)

// LocationNotFoundError carries the provider's message for an unknown location.
// It matches ErrLocationNotFound with errors.Is.
type LocationNotFoundError struct {
	Location string
	Message  string
}

func (e *LocationNotFoundError) Error() string {
	if e.Message == "" {
		return ErrLocationNotFound.Error()
	}
	return e.Message
}

func (e *LocationNotFoundError) Is(target error) bool {
	return target == ErrLocationNotFound
}
