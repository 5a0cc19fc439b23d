package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoomRateLimiter_Window(t *testing.T) {
	req := require.New(t)
	rl := NewRoomRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		req.True(rl.Allow("sid-a"))
	}
	req.False(rl.Allow("sid-a"))

	// Other sessions have their own budget.
	req.True(rl.Allow("sid-b"))
}

func TestRoomRateLimiter_WindowExpires(t *testing.T) {
	req := require.New(t)
	rl := NewRoomRateLimiter(1, 20*time.Millisecond)

	req.True(rl.Allow("sid-a"))
	req.False(rl.Allow("sid-a"))

	time.Sleep(30 * time.Millisecond)
	req.True(rl.Allow("sid-a"))
}
