package core

// SessionID identifies one transport connection.
type SessionID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
// TrySend enqueues without blocking and must never perform network
// I/O on the caller's goroutine.
type SignalConnection interface {
	TrySend(v any) error
	Close()
}
