package store

import "errors"

var (
	// ErrNotFound is returned by Load when no snapshot is on record
	// for an order or account ID.
	ErrNotFound = errors.New("key not found")
	// ErrAlreadyExists signals a collision on an identifier that must
	// be unique, e.g. an orders.new carrying an order ID already in
	// the book.
	ErrAlreadyExists = errors.New("key already exists")
	// ErrStoreClosed is returned by every Store method once Close has
	// run; omsd hits this if an inbound event is still in flight
	// during shutdown.
	ErrStoreClosed = errors.New("store is closed")
)
