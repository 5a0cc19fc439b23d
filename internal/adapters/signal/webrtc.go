package signal

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Theater/internal/core"
)

// handleCandidate applies a browser ICE candidate to the owning
// member's endpoint.
func (ctl *Controller) handleCandidate(sid core.SessionID, c *wsConn, data []byte) {
	var p struct {
		Candidate struct {
			Candidate     string `json:"candidate"`
			SDPMid        string `json:"sdpMid"`
			SDPMLineIndex uint16 `json:"sdpMLineIndex"`
		} `json:"candidate"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad candidate payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	member, ok := ctl.Coord.MemberOf(sid)
	if !ok {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("candidate: no member for session")
		return
	}
	ep := member.Endpoint()
	if ep == nil {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("candidate: member has no endpoint")
		return
	}

	cand := webrtc.ICECandidateInit{Candidate: p.Candidate.Candidate}
	if p.Candidate.SDPMid != "" {
		cand.SDPMid = &p.Candidate.SDPMid
	}
	cand.SDPMLineIndex = &p.Candidate.SDPMLineIndex

	if err := ep.AddICECandidate(cand); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("add ice candidate")
	}
}
