package entities

import "errors"

// Failure classes surfaced by the generation and audio pipeline. Adapters wrap
// these with fmt.Errorf("...: %w") so callers can tell them apart with errors.Is.
var (
	// ErrTransport means the remote service was unreachable or answered with a failure
	ErrTransport = errors.New("transport error")
	// ErrParse means the service answered but the body is not the promised JSON shape
	ErrParse = errors.New("parse error")
	// ErrEmptyAudio means the speech call succeeded but carried no audio payload
	ErrEmptyAudio = errors.New("empty audio")
	// ErrDecode means the audio payload is not valid base64 PCM
	ErrDecode = errors.New("decode error")
	// ErrInvalidInput means the request was rejected before any network call
	ErrInvalidInput = errors.New("invalid input")
)
