package client

import "errors"

// ErrRequestTimeout is returned by Request when no reply arrives before the
// caller's timeout elapses.
var ErrRequestTimeout = errors.New("client: request timed out")
