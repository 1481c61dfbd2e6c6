package transport

// TLS support is reserved surface (spec.md §1 Non-goals): Options.TLS is
// accepted and stored so callers can start wiring configuration today, but
// Open dials plain TCP unconditionally. Wiring this in means swapping the
// net.Dialer.DialContext call in Open for tls.DialWithDialer once a server
// in front of us actually negotiates TLS during the handshake.
