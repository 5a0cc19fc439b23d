// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxNicknameLen = 36

var (
	ErrNicknameEmpty   = errors.New("nickname empty")
	ErrNicknameTooLong = errors.New("nickname too long")
	ErrAvatarIDMissing = errors.New("avatar id missing")
	ErrAvatarPathEmpty = errors.New("avatar path empty")
)

// Avatar is the picture shown next to a participant in the room UI.
type Avatar struct {
	ID   int    `json:"id"`
	Path string `json:"path"`
}

// Participant is the room-facing identity of one connected viewer.
// Name and Avatar are immutable once validated; IsAdmin and Inhibited
// belong to the participant's room and only change under its lock.
type Participant struct {
	Name      string `json:"name"`
	Avatar    Avatar `json:"avatar"`
	IsAdmin   bool   `json:"isAdmin"`
	Inhibited bool   `json:"inhibited"`
}

// NewParticipant validates identity fields up front so an invalid
// participant never reaches a room.
func NewParticipant(name string, avatarID int, avatarPath string) (*Participant, error) {
	if len(name) == 0 {
		return nil, ErrNicknameEmpty
	}
	if len(name) > MaxNicknameLen {
		return nil, ErrNicknameTooLong
	}
	if avatarID == 0 {
		return nil, ErrAvatarIDMissing
	}
	if len(avatarPath) == 0 {
		return nil, ErrAvatarPathEmpty
	}
	return &Participant{Name: name, Avatar: Avatar{ID: avatarID, Path: avatarPath}}, nil
}
