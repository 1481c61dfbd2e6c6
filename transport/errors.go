package transport

import "errors"

var (
	// ErrConnectionClosed is returned by any operation attempted after the
	// socket is gone or Close has been called.
	ErrConnectionClosed = errors.New("transport: connection closed")

	// ErrPayloadTooLarge is returned by Publish when the payload exceeds
	// the server-advertised max_payload.
	ErrPayloadTooLarge = errors.New("transport: payload exceeds server max_payload")

	// ErrInvalidSubject is returned when a subject fails validation
	// (empty, or containing whitespace).
	ErrInvalidSubject = errors.New("transport: invalid subject")

	ErrHandshakeTimeout = errors.New("transport: handshake timed out")
)
