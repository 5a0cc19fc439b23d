package core

import "github.com/pion/webrtc/v4"

// PlaybackInfo is a snapshot of the playback source, all values in
// milliseconds.
type PlaybackInfo struct {
	Seekable  bool
	SeekStart int64
	SeekEnd   int64
	Duration  int64
}

// MediaEngine opens playable sources. It is the entry point of the
// media collaborator; everything below it is owned by a single room.
type MediaEngine interface {
	Open(uri string) (Pipeline, error)
}

// Pipeline is the per-room playback handle. A room invokes it only
// while holding its own lock; callbacks fire on collaborator-owned
// goroutines and must re-enter the room through its lock.
type Pipeline interface {
	CreateDistributionPoint() (DistributionPoint, error)
	AttachEndpoint() (Endpoint, error)
	Play() error
	Pause() error
	Resume() error
	// Seek repositions playback; fails when the source is not
	// seekable or the position is out of range.
	Seek(position int64) error
	Position() (int64, error)
	PlaybackInfo() (PlaybackInfo, error)
	OnEndOfStream(fn func())
	OnError(fn func(err error))
	Release()
}

// DistributionPoint is the fan-out element: one source feeds it and
// every participant tap reads from it.
type DistributionPoint interface {
	OpenTap() (Tap, error)
	Release()
}

// Tap is the per-participant read handle on the distribution point.
type Tap interface {
	// Connect wires the tap output into a participant endpoint.
	Connect(Endpoint) error
	Release()
}

// Endpoint is the per-participant bidirectional media termination.
// The core only forwards SDP offers and relays generated candidates
// and answers to the owning connection.
type Endpoint interface {
	ProcessOffer(sdpOffer string) (sdpAnswer string, err error)
	AddICECandidate(webrtc.ICECandidateInit) error
	OnICECandidate(fn func(webrtc.ICECandidateInit))
	// OnConnected fires once media starts flowing to the participant.
	OnConnected(fn func())
	Release()
}
