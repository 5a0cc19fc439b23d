package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Theater/internal/core"
)

func (ctl *Controller) handlePause(sid core.SessionID, c *wsConn) {
	member, room, ok := ctl.resolve(sid, c)
	if !ok {
		return
	}
	if err := room.Pause(member); err != nil {
		ctl.sendError(c, errorMessage(err))
	}
}

func (ctl *Controller) handleResume(sid core.SessionID, c *wsConn) {
	member, room, ok := ctl.resolve(sid, c)
	if !ok {
		return
	}

	// The resuming client gets a fresh seekability snapshot first so
	// its controls are in sync once playback restarts.
	if info, err := room.PlaybackInfo(); err == nil {
		ctl.sendJSON(c, core.VideoInfoEvent{
			ID:           "videoInfo",
			IsSeekable:   info.Seekable,
			InitSeekable: info.SeekStart,
			EndSeekable:  info.SeekEnd,
			Duration:     info.Duration,
		})
	}

	if err := room.Resume(member); err != nil {
		ctl.sendError(c, errorMessage(err))
	}
}

func (ctl *Controller) handleSeek(sid core.SessionID, c *wsConn, data []byte) {
	var p struct {
		Position int64 `json:"position"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad seek payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	member, room, ok := ctl.resolve(sid, c)
	if !ok {
		return
	}
	if err := room.Seek(member, p.Position); err != nil {
		ctl.sendError(c, errorMessage(err))
	}
}

func (ctl *Controller) handleGetPosition(sid core.SessionID, c *wsConn) {
	_, room, ok := ctl.resolve(sid, c)
	if !ok {
		return
	}
	pos, err := room.Position()
	if err != nil {
		ctl.sendError(c, errorMessage(err))
		return
	}
	ctl.sendJSON(c, struct {
		ID       string `json:"id"`
		Position int64  `json:"position"`
	}{ID: "position", Position: pos})
}

func (ctl *Controller) handleInhibit(sid core.SessionID, c *wsConn, data []byte) {
	var p struct {
		User   string `json:"user"`
		Status bool   `json:"status"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad inhibit payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	member, room, ok := ctl.resolve(sid, c)
	if !ok {
		return
	}
	if err := room.SetInhibited(member, p.User, p.Status); err != nil {
		ctl.sendError(c, errorMessage(err))
	}
}

func (ctl *Controller) handleSetAdmin(sid core.SessionID, c *wsConn, data []byte) {
	var p struct {
		User string `json:"user"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad setAdmin payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	member, room, ok := ctl.resolve(sid, c)
	if !ok {
		return
	}
	if err := room.TransferAdmin(member, p.User); err != nil {
		ctl.sendError(c, errorMessage(err))
	}
}
