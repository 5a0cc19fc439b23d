package signal

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Theater/internal/app"
	"github.com/dkeye/Theater/internal/config"
	"github.com/dkeye/Theater/internal/core"
)

func startTestServer(t *testing.T, cfg *config.Config) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// The media engine is never reached: these connections never join
	// a room.
	coord := app.NewCoordinator(core.NewRegistry(nil))
	ctl := NewController(coord, cfg)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set("client_token", "test-token")
		ctl.Handle(context.Background(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestReadPump_DropsPeerThatStopsPonging(t *testing.T) {
	req := require.New(t)
	url := startTestServer(t, &config.Config{
		PingPeriod: 20 * time.Millisecond,
		ReadLimit:  1024,
	})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	req.NoError(err)
	defer conn.Close()

	// Swallow pings instead of answering them: from the server's view
	// this peer is dead.
	conn.SetPingHandler(func(string) error { return nil })
	req.NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))

	start := time.Now()
	_, _, err = conn.ReadMessage()
	req.Error(err)
	req.Less(time.Since(start), time.Second, "server kept a silent peer past the pong deadline")
}

func TestReadPump_KeepsRespondingPeer(t *testing.T) {
	req := require.New(t)
	url := startTestServer(t, &config.Config{
		PingPeriod: 90 * time.Millisecond,
		ReadLimit:  1024,
	})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	req.NoError(err)
	defer conn.Close()

	// The default ping handler answers with pongs while we read, so
	// the connection must outlive several ping periods.
	deadline := time.Now().Add(300 * time.Millisecond)
	req.NoError(conn.SetReadDeadline(deadline))
	_, _, err = conn.ReadMessage()
	req.Error(err) // our own deadline, not a server close
	req.False(time.Now().Before(deadline), "server dropped a peer that was answering pings")
}
