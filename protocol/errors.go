package protocol

import "errors"

// ErrInvalidMessage is returned for a well-formed line carrying an unknown
// verb, or a MSG header that does not parse. Callers log and skip; it never
// tears down the connection.
var ErrInvalidMessage = errors.New("protocol: invalid message")

// ProtocolError wraps a malformed wire condition that is fatal to the
// connection carrying it: a bad handshake response, a header that fails to
// parse where the verb itself was recognised, or a payload size exceeding
// the server-advertised limit.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol: " + e.Reason
}

func newProtocolError(reason string) *ProtocolError {
	return &ProtocolError{Reason: reason}
}
