package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Theater/internal/core"
	"github.com/dkeye/Theater/internal/domain"
)

type identityPayload struct {
	Name       string `json:"name"`
	AvatarID   int    `json:"avatarId"`
	AvatarPath string `json:"avatarPath"`
}

// handleStart creates a new room with this session as admin.
func (ctl *Controller) handleStart(sid core.SessionID, c *wsConn, data []byte) {
	var p struct {
		identityPayload
		VideoURL string `json:"videourl"`
		SDPOffer string `json:"sdpOffer"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad start payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	if _, ok := ctl.Coord.MemberOf(sid); ok {
		ctl.sendError(c, "You're already in a room.")
		return
	}
	if !ctl.Limiter.Allow(sid) {
		ctl.sendError(c, "Too many rooms created, slow down.")
		return
	}

	meta, err := domain.NewParticipant(p.Name, p.AvatarID, p.AvatarPath)
	if err != nil {
		ctl.sendError(c, err.Error())
		return
	}

	_, member, err := ctl.Coord.CreateRoom(sid, meta, c, p.VideoURL)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("create room")
		ctl.sendError(c, errorMessage(err))
		return
	}

	ctl.negotiate(c, member, p.SDPOffer)
}

// handleRegister joins an existing room.
func (ctl *Controller) handleRegister(sid core.SessionID, c *wsConn, data []byte) {
	var p struct {
		identityPayload
		RoomID   string `json:"roomid"`
		SDPOffer string `json:"sdpOffer"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad register payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	if _, ok := ctl.Coord.MemberOf(sid); ok {
		ctl.sendError(c, "You're already in a room.")
		return
	}

	meta, err := domain.NewParticipant(p.Name, p.AvatarID, p.AvatarPath)
	if err != nil {
		ctl.sendError(c, err.Error())
		return
	}

	_, member, err := ctl.Coord.Join(sid, meta, c, domain.RoomID(p.RoomID))
	if err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).
			Str("room", p.RoomID).Msg("register rejected")
		ctl.sendError(c, errorMessage(err))
		return
	}

	ctl.negotiate(c, member, p.SDPOffer)
}

// negotiate forwards the browser's SDP offer to the member's endpoint
// and returns the answer on the same connection.
func (ctl *Controller) negotiate(c *wsConn, member *core.Member, sdpOffer string) {
	answer, err := member.Endpoint().ProcessOffer(sdpOffer)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("name", member.Meta().Name).
			Msg("process offer")
		ctl.sendError(c, "Media negotiation failed.")
		return
	}
	ctl.sendJSON(c, struct {
		ID        string `json:"id"`
		SDPAnswer string `json:"sdpAnswer"`
	}{ID: "startResponse", SDPAnswer: answer})
}

// handleStop leaves the current room; the connection stays open.
func (ctl *Controller) handleStop(sid core.SessionID) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("stop")
	ctl.Coord.Leave(sid)
}
