package media

import (
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// ParticipantEndpoint wraps one pion PeerConnection serving a single
// viewer.
type ParticipantEndpoint struct {
	pc *webrtc.PeerConnection

	onICE       func(webrtc.ICECandidateInit)
	onConnected func()
}

func newEndpoint(cfg webrtc.Configuration) (*ParticipantEndpoint, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	ep := &ParticipantEndpoint{pc: pc}

	pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand != nil && ep.onICE != nil {
			ep.onICE(cand.ToJSON())
		}
	})

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "media").Str("peer_connection_state", s.String()).Msg("peer state")
		if s == webrtc.PeerConnectionStateConnected && ep.onConnected != nil {
			ep.onConnected()
		}
	})

	return ep, nil
}

// addTrack attaches an outgoing track and drains its RTCP so the
// interceptors keep running.
func (ep *ParticipantEndpoint) addTrack(track *webrtc.TrackLocalStaticRTP) error {
	sender, err := ep.pc.AddTrack(track)
	if err != nil {
		return err
	}
	go func() {
		buf := make([]byte, 1500)
		for {
			if _, _, err := sender.Read(buf); err != nil {
				return
			}
		}
	}()
	return nil
}

// ProcessOffer applies the remote offer and returns a complete local
// answer, waiting for ICE gathering so the SDP is self-contained.
func (ep *ParticipantEndpoint) ProcessOffer(sdpOffer string) (string, error) {
	offer := webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  sdpOffer,
	}
	if err := ep.pc.SetRemoteDescription(offer); err != nil {
		return "", err
	}
	answer, err := ep.pc.CreateAnswer(nil)
	if err != nil {
		return "", err
	}

	gatherComplete := webrtc.GatheringCompletePromise(ep.pc)
	if err := ep.pc.SetLocalDescription(answer); err != nil {
		return "", err
	}
	<-gatherComplete

	return ep.pc.LocalDescription().SDP, nil
}

func (ep *ParticipantEndpoint) AddICECandidate(cand webrtc.ICECandidateInit) error {
	return ep.pc.AddICECandidate(cand)
}

// OnICECandidate sets the callback for newly gathered local
// candidates. Set it before ProcessOffer starts gathering.
func (ep *ParticipantEndpoint) OnICECandidate(fn func(webrtc.ICECandidateInit)) {
	ep.onICE = fn
}

// OnConnected fires when the peer connection reaches Connected.
func (ep *ParticipantEndpoint) OnConnected(fn func()) {
	ep.onConnected = fn
}

func (ep *ParticipantEndpoint) Release() {
	if err := ep.pc.Close(); err != nil {
		log.Error().Err(err).Str("module", "media").Msg("endpoint close error")
		return
	}
	log.Info().Str("module", "media").Msg("endpoint closed")
}
