package core

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateName  = errors.New("there's already a participant with this name")
	ErrRoomNotFound   = errors.New("room not found")
	ErrMemberNotFound = errors.New("target participant not found")
	ErrNotAdmin       = errors.New("not a room administrator")
	ErrInhibited      = errors.New("participant is inhibited")
	ErrRoomDestroyed  = errors.New("room destroyed")
)

// MediaError wraps a collaborator failure. It is fatal to the
// operation that triggered it, never to the room.
type MediaError struct {
	Op  string
	Err error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("media %s: %v", e.Op, e.Err)
}

func (e *MediaError) Unwrap() error { return e.Err }
