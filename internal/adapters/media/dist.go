package media

import (
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Theater/internal/core"
)

const (
	rtpMTU         = 1200
	rtpPayloadType = 96
	videoClockRate = 90000
)

// distPoint packetizes each source frame once and fans the packets
// out to every open tap, so N viewers cost one packetization.
type distPoint struct {
	mimeType   string
	packetizer rtp.Packetizer

	mu       sync.RWMutex
	taps     map[*tap]struct{}
	released bool
}

func newDistPoint(mimeType string, payloader rtp.Payloader) *distPoint {
	return &distPoint{
		mimeType: mimeType,
		packetizer: rtp.NewPacketizer(
			rtpMTU,
			rtpPayloadType,
			rand.Uint32(),
			payloader,
			rtp.NewRandomSequencer(),
			videoClockRate,
		),
		taps: make(map[*tap]struct{}),
	}
}

func (d *distPoint) OpenTap() (core.Tap, error) {
	track, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: d.mimeType},
		"video", "theater-"+uuid.NewString(),
	)
	if err != nil {
		return nil, err
	}
	t := &tap{dist: d, track: track}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, errors.New("distribution point released")
	}
	d.taps[t] = struct{}{}
	return t, nil
}

// write forwards one frame to all taps. A failing tap is logged and
// skipped; it never blocks the others.
func (d *distPoint) write(fr frame) {
	samples := uint32(fr.dur.Seconds() * videoClockRate)
	packets := d.packetizer.Packetize(fr.payload, samples)

	d.mu.RLock()
	snapshot := make([]*tap, 0, len(d.taps))
	for t := range d.taps {
		snapshot = append(snapshot, t)
	}
	d.mu.RUnlock()

	for _, t := range snapshot {
		for _, pkt := range packets {
			if err := t.track.WriteRTP(pkt); err != nil {
				log.Debug().Err(err).Str("module", "media").Msg("tap write dropped")
				break
			}
		}
	}
}

func (d *distPoint) remove(t *tap) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.taps, t)
}

func (d *distPoint) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released = true
	clear(d.taps)
}

// tap is one participant's read handle on the distribution point.
type tap struct {
	dist  *distPoint
	track *webrtc.TrackLocalStaticRTP
}

// Connect adds the tap's track to the participant endpoint. It must
// run before SDP negotiation so the track lands in the answer.
func (t *tap) Connect(ep core.Endpoint) error {
	pe, ok := ep.(*ParticipantEndpoint)
	if !ok {
		return errors.New("endpoint is not a media participant endpoint")
	}
	return pe.addTrack(t.track)
}

func (t *tap) Release() {
	t.dist.remove(t)
}
