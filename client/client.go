// Package client is the thin public surface over a transport.Connection:
// publish, subscribe, unsubscribe, and request/reply correlation.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/axtrade/omsbroker/transport"
)

// Message is what a subscription callback receives. It is the transport
// layer's Message re-exported so callers never need to import transport
// directly for the common path.
type Message = transport.Message

// Callback is invoked once per inbound message, in receive order, for the
// subscription it was registered against.
type Callback = transport.Callback

const defaultInboxPrefix = "_INBOX."

// Client wraps one Connection and adds request/reply correlation on top of
// its publish/subscribe/unsubscribe primitives.
type Client struct {
	conn        *transport.Connection
	inboxPrefix string
}

// New wraps an already-open Connection.
func New(conn *transport.Connection) *Client {
	return &Client{conn: conn, inboxPrefix: defaultInboxPrefix}
}

// Conn returns the underlying Connection, for callers that need direct
// access (e.g. to read ServerInfo or State).
func (c *Client) Conn() *transport.Connection { return c.conn }

// Publish sends payload on subject with no reply subject.
func (c *Client) Publish(subject string, payload []byte) error {
	return c.conn.Publish(subject, "", payload)
}

// PublishRequest sends payload on subject carrying replyTo, without waiting
// for a reply. Request builds on this for the synchronous case.
func (c *Client) PublishRequest(subject, replyTo string, payload []byte) error {
	return c.conn.Publish(subject, replyTo, payload)
}

// Subscribe registers cb for subject and returns the allocated sid.
func (c *Client) Subscribe(subject string, cb Callback) (string, error) {
	return c.conn.Subscribe(subject, cb)
}

// Unsubscribe removes sid. Unknown sids are a no-op.
func (c *Client) Unsubscribe(sid string, maxMsgs int) error {
	return c.conn.Unsubscribe(sid, maxMsgs)
}

// Request publishes payload on subject with a freshly minted ephemeral
// reply subject, waits up to timeout for exactly one reply, and returns its
// payload. Multiple concurrent requests each get their own reply subject
// and do not interfere with one another. Correlation bookkeeping here
// mirrors the teacher's QoS inflight-message table (one entry per
// outstanding exchange, torn down on resolve or timeout) adapted from
// packet-id keyed acks to reply-subject keyed replies.
func (c *Client) Request(ctx context.Context, subject string, payload []byte, timeout time.Duration) ([]byte, error) {
	replySubject := c.inboxPrefix + uuid.New().String()

	replyCh := make(chan []byte, 1)
	sid, err := c.conn.Subscribe(replySubject, func(msg Message) {
		select {
		case replyCh <- msg.Data:
		default:
		}
	})
	if err != nil {
		return nil, fmt.Errorf("client: request subscribe: %w", err)
	}
	defer c.conn.Unsubscribe(sid, 0)

	if err := c.conn.Publish(subject, replySubject, payload); err != nil {
		return nil, fmt.Errorf("client: request publish: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case data := <-replyCh:
		return data, nil
	case <-timer.C:
		return nil, ErrRequestTimeout
	case <-c.conn.CloseChan():
		return nil, transport.ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close closes the underlying Connection.
func (c *Client) Close() error { return c.conn.Close() }
