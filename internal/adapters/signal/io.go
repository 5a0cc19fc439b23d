package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Theater/internal/core"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ping := time.NewTicker(ctl.pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case v, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteJSON(v); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, sid core.SessionID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Coord.Leave(sid)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.readLimit)

	// Pongs answer the write pump's pings; a peer that stops ponging
	// is dead and must not hold the member's room seat until TCP
	// gives up.
	pongWait := ctl.pingPeriod * 10 / 9
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleMessage(sid, c, data)
		}
	}
}

func (ctl *Controller) handleMessage(sid core.SessionID, c *wsConn, data []byte) {
	var env struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}

	switch env.ID {
	case "start":
		ctl.handleStart(sid, c, data)
	case "register":
		ctl.handleRegister(sid, c, data)
	case "stop":
		ctl.handleStop(sid)
	case "pause":
		ctl.handlePause(sid, c)
	case "resume":
		ctl.handleResume(sid, c)
	case "doSeek":
		ctl.handleSeek(sid, c, data)
	case "getPosition":
		ctl.handleGetPosition(sid, c)
	case "inhibit":
		ctl.handleInhibit(sid, c, data)
	case "setAdmin":
		ctl.handleSetAdmin(sid, c, data)
	case "onIceCandidate":
		ctl.handleCandidate(sid, c, data)
	default:
		log.Warn().Str("module", "signal").Str("id", env.ID).Msg("unknown message")
		ctl.sendError(c, "Invalid message with id "+env.ID)
	}
}

func (ctl *Controller) sendJSON(c *wsConn, v any) {
	if err := c.TrySend(v); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("send dropped")
	}
}

type errorEvent struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (ctl *Controller) sendError(c *wsConn, message string) {
	ctl.sendJSON(c, errorEvent{ID: "error", Message: message})
}

// errorMessage maps core failures onto the wire texts clients show to
// the user.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInhibited):
		return "You're inhibited. You cannot perform this operation."
	case errors.Is(err, core.ErrNotAdmin):
		return "You're not authorized to perform this operation because you're not a room administrator."
	case errors.Is(err, core.ErrMemberNotFound):
		return "The target user does not exist."
	case errors.Is(err, core.ErrDuplicateName):
		return "There's already an user with your name."
	case errors.Is(err, core.ErrRoomNotFound):
		return "Error, room not found"
	case errors.Is(err, core.ErrRoomDestroyed):
		return "Error, room not found"
	default:
		return err.Error()
	}
}

// resolve looks up the member and room for a control message; a
// session that never joined gets a local error and no side effects.
func (ctl *Controller) resolve(sid core.SessionID, c *wsConn) (*core.Member, *core.Room, bool) {
	member, ok := ctl.Coord.MemberOf(sid)
	if !ok {
		ctl.sendError(c, "You're not in a room.")
		return nil, nil, false
	}
	room, ok := ctl.Coord.RoomOf(member)
	if !ok {
		ctl.sendError(c, "Error, room not found")
		return nil, nil, false
	}
	return member, room, true
}
