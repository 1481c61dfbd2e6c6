package transport

import "sync/atomic"

// State is the Connection Lifecycle state machine named in spec.md §3.
type State int32

const (
	StateDisconnected State = iota
	StateWaitingInfo
	StateHandshaking
	StateConnected
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateWaitingInfo:
		return "waiting_info"
	case StateHandshaking:
		return "handshaking"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// stateBox is an atomic box around State, mirroring the teacher's
// atomic.Int32-backed ConnectionState.
type stateBox struct {
	v atomic.Int32
}

func (b *stateBox) Load() State      { return State(b.v.Load()) }
func (b *stateBox) Store(s State)    { b.v.Store(int32(s)) }
func (b *stateBox) CAS(old, new_ State) bool {
	return b.v.CompareAndSwap(int32(old), int32(new_))
}
