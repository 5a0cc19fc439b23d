package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Theater/internal/app"
	"github.com/dkeye/Theater/internal/config"
	"github.com/dkeye/Theater/internal/core"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Controller is the transport-facing session coordinator: it maps each
// WebSocket connection to at most one member and translates inbound
// protocol messages into room operations.
type Controller struct {
	Coord   *app.Coordinator
	Limiter *RoomRateLimiter

	readLimit  int64
	pingPeriod time.Duration
}

func NewController(coord *app.Coordinator, cfg *config.Config) *Controller {
	return &Controller{
		Coord:      coord,
		Limiter:    NewRoomRateLimiter(cfg.CreateLimit, cfg.CreateInterval),
		readLimit:  cfg.ReadLimit,
		pingPeriod: cfg.PingPeriod,
	}
}

// wsConn serializes all writes to one connection through a buffered
// send channel drained by a single write pump.
type wsConn struct {
	conn *websocket.Conn
	send chan any

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(v any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- v:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the request and runs the connection until the peer
// goes away. The deferred leave in the read pump is the sole cleanup
// path for the member bound to this connection.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &wsConn{
		conn: ws,
		send: make(chan any, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go ctl.writePump(ctx, conn)
	ctl.readPump(ctx, sid, conn)
}
