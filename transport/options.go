package transport

import (
	"crypto/tls"
	"log/slog"
	"time"
)

// Options configures a single Connection. Defaults mirror spec.md §6: a
// 5s connect/handshake timeout, 3 reconnect attempts at 1s apart — the
// latter two are not acted on by Connection itself (reconnect is caller
// policy per spec.md §4.B tie-break 4) but are carried here so a policy
// layer such as Reconnector can read them from one place.
type Options struct {
	Host string
	Port int

	Name string // advertised in CONNECT as "name"

	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration

	ReconnectAttempts int
	ReconnectDelay    time.Duration

	KeepAliveInterval time.Duration
	KeepAliveTimeout  time.Duration

	// TLS is reserved surface: accepted and stored, never applied to the
	// dial. spec.md §1 explicitly keeps TLS unimplemented at this layer.
	TLS *tls.Config

	Logger *slog.Logger
}

// DefaultOptions returns the library defaults named in spec.md §6.
func DefaultOptions() Options {
	return Options{
		Host:              "localhost",
		Port:              4222,
		Name:              "omsbroker-client",
		ConnectTimeout:    5 * time.Second,
		HandshakeTimeout:  5 * time.Second,
		ReconnectAttempts: 3,
		ReconnectDelay:    1 * time.Second,
		KeepAliveInterval: 30 * time.Second,
		KeepAliveTimeout:  10 * time.Second,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
