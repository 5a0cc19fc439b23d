package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewParticipant(t *testing.T) {
	tests := []struct {
		name       string
		nickname   string
		avatarID   int
		avatarPath string
		wantErr    error
	}{
		{"valid", "alice", 3, "/avatars/cat.png", nil},
		{"max length nickname", strings.Repeat("a", MaxNicknameLen), 1, "/a.png", nil},
		{"empty nickname", "", 1, "/a.png", ErrNicknameEmpty},
		{"too long nickname", strings.Repeat("a", MaxNicknameLen+1), 1, "/a.png", ErrNicknameTooLong},
		{"missing avatar id", "alice", 0, "/a.png", ErrAvatarIDMissing},
		{"empty avatar path", "alice", 1, "", ErrAvatarPathEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			p, err := NewParticipant(tt.nickname, tt.avatarID, tt.avatarPath)
			if tt.wantErr != nil {
				req.ErrorIs(err, tt.wantErr)
				req.Nil(p)
				return
			}
			req.NoError(err)
			req.Equal(tt.nickname, p.Name)
			req.Equal(tt.avatarID, p.Avatar.ID)
			req.Equal(tt.avatarPath, p.Avatar.Path)
			req.False(p.IsAdmin)
			req.False(p.Inhibited)
		})
	}
}
