package core

import (
	"errors"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Theater/internal/domain"
)

// fakeConn records every event enqueued for one member.
type fakeConn struct {
	mu     sync.Mutex
	events []any
	fail   bool
}

func (c *fakeConn) TrySend(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("send buffer full")
	}
	c.events = append(c.events, v)
	return nil
}

func (c *fakeConn) Close() {}

func eventID(v any) string {
	switch e := v.(type) {
	case RoomCreatedEvent:
		return e.ID
	case UserEvent:
		return e.ID
	case ControlEvent:
		return e.ID
	case SeekEvent:
		return e.ID
	case SeekFailedEvent:
		return e.ID
	case VideoInfoEvent:
		return e.ID
	case PlayEndEvent:
		return e.ID
	case CandidateEvent:
		return e.ID
	default:
		return ""
	}
}

func (c *fakeConn) byID(id string) []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []any
	for _, v := range c.events {
		if eventID(v) == id {
			out = append(out, v)
		}
	}
	return out
}

func (c *fakeConn) count(id string) int { return len(c.byID(id)) }

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

type fakeEndpoint struct {
	released    bool
	onICE       func(webrtc.ICECandidateInit)
	onConnected func()
}

func (e *fakeEndpoint) ProcessOffer(string) (string, error)            { return "sdp-answer", nil }
func (e *fakeEndpoint) AddICECandidate(webrtc.ICECandidateInit) error  { return nil }
func (e *fakeEndpoint) OnICECandidate(fn func(webrtc.ICECandidateInit)) { e.onICE = fn }
func (e *fakeEndpoint) OnConnected(fn func())                          { e.onConnected = fn }
func (e *fakeEndpoint) Release()                                       { e.released = true }

type fakeTap struct {
	released    bool
	connectedTo Endpoint
	failConnect bool
}

func (t *fakeTap) Connect(ep Endpoint) error {
	if t.failConnect {
		return errors.New("connect refused")
	}
	t.connectedTo = ep
	return nil
}

func (t *fakeTap) Release() { t.released = true }

type fakeDist struct {
	taps        []*fakeTap
	released    bool
	failOpenTap bool
}

func (d *fakeDist) OpenTap() (Tap, error) {
	if d.failOpenTap {
		return nil, errors.New("no tap available")
	}
	t := &fakeTap{}
	d.taps = append(d.taps, t)
	return t, nil
}

func (d *fakeDist) Release() { d.released = true }

type fakePipeline struct {
	dist      *fakeDist
	endpoints []*fakeEndpoint

	playCalls   int
	pauseCalls  int
	resumeCalls int
	seekCalls   int
	seekTo      int64

	failAttach bool
	playErr    error
	pauseErr   error
	seekErr    error

	pos      int64
	info     PlaybackInfo
	released bool

	onEOS func()
	onErr func(error)
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{
		dist: &fakeDist{},
		info: PlaybackInfo{Seekable: true, SeekStart: 0, SeekEnd: 60000, Duration: 60000},
	}
}

func (p *fakePipeline) CreateDistributionPoint() (DistributionPoint, error) { return p.dist, nil }

func (p *fakePipeline) AttachEndpoint() (Endpoint, error) {
	if p.failAttach {
		return nil, errors.New("endpoint refused")
	}
	e := &fakeEndpoint{}
	p.endpoints = append(p.endpoints, e)
	return e, nil
}

func (p *fakePipeline) Play() error {
	p.playCalls++
	return p.playErr
}

func (p *fakePipeline) Pause() error {
	if p.pauseErr != nil {
		return p.pauseErr
	}
	p.pauseCalls++
	return nil
}

func (p *fakePipeline) Resume() error {
	p.resumeCalls++
	return nil
}

func (p *fakePipeline) Seek(position int64) error {
	if p.seekErr != nil {
		return p.seekErr
	}
	p.seekCalls++
	p.seekTo = position
	return nil
}

func (p *fakePipeline) Position() (int64, error)           { return p.pos, nil }
func (p *fakePipeline) PlaybackInfo() (PlaybackInfo, error) { return p.info, nil }
func (p *fakePipeline) OnEndOfStream(fn func())            { p.onEOS = fn }
func (p *fakePipeline) OnError(fn func(err error))         { p.onErr = fn }
func (p *fakePipeline) Release()                           { p.released = true }

type fakeEngine struct {
	openErr error
	playErr error // copied onto every pipeline handed out

	mu        sync.Mutex
	pipelines []*fakePipeline
}

func (e *fakeEngine) Open(string) (Pipeline, error) {
	if e.openErr != nil {
		return nil, e.openErr
	}
	p := newFakePipeline()
	p.playErr = e.playErr
	e.mu.Lock()
	e.pipelines = append(e.pipelines, p)
	e.mu.Unlock()
	return p, nil
}

func newTestMember(name string) (*Member, *fakeConn) {
	meta, err := domain.NewParticipant(name, 1, "/avatars/"+name+".png")
	if err != nil {
		panic(err)
	}
	c := &fakeConn{}
	return NewMember(meta, c), c
}
