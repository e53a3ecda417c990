package adaptation

import "errors"

var (
	// ErrAdaptationFailed is the single failure kind of an adaptation request:
	// network errors, service errors and unusable replies all wrap it.
	ErrAdaptationFailed = errors.New("adaptation request failed")

	// ErrMissingCredential is returned by the generator when no API key was configured.
	ErrMissingCredential = errors.New("generative model credential is not configured")

	// ErrEmptyResponse indicates the model replied with no text at all.
	ErrEmptyResponse = errors.New("empty model response")
)
