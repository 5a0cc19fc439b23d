package media

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Theater/internal/core"
)

var (
	ErrReleased       = errors.New("pipeline released")
	ErrSeekOutOfRange = errors.New("seek position out of range")
)

// pipeline plays an indexed frame list in real time into its
// distribution point. Playback state is a frame index plus a paused
// flag; position and seeks are derived from the index, so they stay
// exact across pause cycles.
type pipeline struct {
	webrtcCfg webrtc.Configuration
	frames    []frame
	duration  time.Duration
	mimeType  string
	payloader rtp.Payloader

	mu       sync.Mutex
	idx      int
	paused   bool
	playing  bool
	released bool
	dist     *distPoint
	onEOS    func()
	onErr    func(error)

	wake chan struct{}
}

func newPipeline(cfg webrtc.Configuration, frames []frame, mimeType string, payloader rtp.Payloader) *pipeline {
	last := frames[len(frames)-1]
	return &pipeline{
		webrtcCfg: cfg,
		frames:    frames,
		duration:  last.at + last.dur,
		mimeType:  mimeType,
		payloader: payloader,
		wake:      make(chan struct{}, 1),
	}
}

func (p *pipeline) CreateDistributionPoint() (core.DistributionPoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return nil, ErrReleased
	}
	if p.dist != nil {
		return nil, errors.New("distribution point already created")
	}
	p.dist = newDistPoint(p.mimeType, p.payloader)
	return p.dist, nil
}

func (p *pipeline) AttachEndpoint() (core.Endpoint, error) {
	p.mu.Lock()
	released := p.released
	p.mu.Unlock()
	if released {
		return nil, ErrReleased
	}
	return newEndpoint(p.webrtcCfg)
}

func (p *pipeline) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return ErrReleased
	}
	p.startLocked()
	return nil
}

// startLocked launches the pacing loop if frames remain and no loop
// is running. The loop exits when it runs out of frames, so a
// backward seek or a resume after end of stream goes through here to
// start playback again.
func (p *pipeline) startLocked() {
	if p.playing || p.idx >= len(p.frames) {
		return
	}
	p.playing = true
	go p.run()
}

// run paces frames out at their display durations. It exits on
// release or end of stream; pause parks it on the wake channel.
func (p *pipeline) run() {
	for {
		p.mu.Lock()
		if p.released {
			p.mu.Unlock()
			return
		}
		if p.paused {
			p.mu.Unlock()
			<-p.wake
			continue
		}
		if p.idx >= len(p.frames) {
			eos := p.onEOS
			p.playing = false
			p.mu.Unlock()
			log.Info().Str("module", "media").Msg("end of stream")
			if eos != nil {
				eos()
			}
			return
		}
		fr := p.frames[p.idx]
		p.idx++
		dist := p.dist
		p.mu.Unlock()

		if dist != nil {
			dist.write(fr)
		}
		time.Sleep(fr.dur)
	}
}

func (p *pipeline) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return ErrReleased
	}
	p.paused = true
	return nil
}

func (p *pipeline) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return ErrReleased
	}
	p.paused = false
	p.signalWake()
	p.startLocked()
	return nil
}

func (p *pipeline) Seek(position int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return ErrReleased
	}
	target := time.Duration(position) * time.Millisecond
	if position < 0 || target > p.duration {
		return fmt.Errorf("%w: %dms of %dms", ErrSeekOutOfRange, position, p.duration.Milliseconds())
	}
	idx := len(p.frames)
	for i, fr := range p.frames {
		if fr.at+fr.dur > target {
			idx = i
			break
		}
	}
	p.idx = idx
	p.startLocked()
	return nil
}

func (p *pipeline) Position() (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return 0, ErrReleased
	}
	if p.idx >= len(p.frames) {
		return p.duration.Milliseconds(), nil
	}
	return p.frames[p.idx].at.Milliseconds(), nil
}

func (p *pipeline) PlaybackInfo() (core.PlaybackInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return core.PlaybackInfo{}, ErrReleased
	}
	return core.PlaybackInfo{
		Seekable:  true,
		SeekStart: 0,
		SeekEnd:   p.duration.Milliseconds(),
		Duration:  p.duration.Milliseconds(),
	}, nil
}

func (p *pipeline) OnEndOfStream(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEOS = fn
}

func (p *pipeline) OnError(fn func(err error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onErr = fn
}

func (p *pipeline) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return
	}
	p.released = true
	p.signalWake()
	log.Info().Str("module", "media").Msg("pipeline released")
}

func (p *pipeline) signalWake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}
