package media

import (
	"testing"
	"time"

	"github.com/pion/rtp/codecs"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"
)

// testFrames is four frames at 25fps: 0, 40, 80, 120ms, 160ms total.
func testFrames() []frame {
	const step = 40 * time.Millisecond
	frames := make([]frame, 4)
	for i := range frames {
		frames[i] = frame{
			payload: []byte{byte(i)},
			at:      time.Duration(i) * step,
			dur:     step,
		}
	}
	return frames
}

func newTestPipeline() *pipeline {
	return newPipeline(webrtc.Configuration{}, testFrames(), webrtc.MimeTypeVP8, &codecs.VP8Payloader{})
}

func TestPipeline_PlaybackInfo(t *testing.T) {
	req := require.New(t)
	p := newTestPipeline()

	info, err := p.PlaybackInfo()
	req.NoError(err)
	req.True(info.Seekable)
	req.Equal(int64(0), info.SeekStart)
	req.Equal(int64(160), info.SeekEnd)
	req.Equal(int64(160), info.Duration)
}

func TestPipeline_SeekMovesPosition(t *testing.T) {
	req := require.New(t)
	p := newTestPipeline()

	pos, err := p.Position()
	req.NoError(err)
	req.Equal(int64(0), pos)

	req.NoError(p.Seek(85))
	pos, err = p.Position()
	req.NoError(err)
	req.Equal(int64(80), pos)

	// End of range lands past the last frame.
	req.NoError(p.Seek(160))
	pos, err = p.Position()
	req.NoError(err)
	req.Equal(int64(160), pos)

	req.NoError(p.Seek(0))
	pos, err = p.Position()
	req.NoError(err)
	req.Equal(int64(0), pos)
}

func TestPipeline_SeekOutOfRange(t *testing.T) {
	req := require.New(t)
	p := newTestPipeline()

	req.ErrorIs(p.Seek(-1), ErrSeekOutOfRange)
	req.ErrorIs(p.Seek(161), ErrSeekOutOfRange)

	pos, err := p.Position()
	req.NoError(err)
	req.Equal(int64(0), pos)
}

func TestPipeline_DistributionPointIsSingleton(t *testing.T) {
	req := require.New(t)
	p := newTestPipeline()

	dist, err := p.CreateDistributionPoint()
	req.NoError(err)
	req.NotNil(dist)

	_, err = p.CreateDistributionPoint()
	req.Error(err)
}

func TestPipeline_EndOfStreamFiresOnce(t *testing.T) {
	req := require.New(t)
	// Zero-length durations run the stream out immediately.
	frames := []frame{
		{payload: []byte{1}, at: 0, dur: 0},
		{payload: []byte{2}, at: 0, dur: 0},
	}
	p := newPipeline(webrtc.Configuration{}, frames, webrtc.MimeTypeVP8, &codecs.VP8Payloader{})
	defer p.Release()

	done := make(chan struct{})
	p.OnEndOfStream(func() { close(done) })

	req.NoError(p.Play())
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("end of stream never fired")
	}
}

func TestPipeline_PauseParksPlayback(t *testing.T) {
	req := require.New(t)
	frames := []frame{
		{payload: []byte{1}, at: 0, dur: 0},
		{payload: []byte{2}, at: 0, dur: 0},
	}
	p := newPipeline(webrtc.Configuration{}, frames, webrtc.MimeTypeVP8, &codecs.VP8Payloader{})
	defer p.Release()

	done := make(chan struct{})
	p.OnEndOfStream(func() { close(done) })

	req.NoError(p.Pause())
	req.NoError(p.Play())

	select {
	case <-done:
		t.Fatal("paused pipeline reached end of stream")
	case <-time.After(50 * time.Millisecond):
	}

	req.NoError(p.Resume())
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("resumed pipeline never finished")
	}
}

func TestPipeline_RestartsAfterEndOfStream(t *testing.T) {
	req := require.New(t)
	frames := []frame{
		{payload: []byte{1}, at: 0, dur: 0},
		{payload: []byte{2}, at: 0, dur: 0},
	}
	p := newPipeline(webrtc.Configuration{}, frames, webrtc.MimeTypeVP8, &codecs.VP8Payloader{})
	defer p.Release()

	ends := make(chan struct{}, 3)
	p.OnEndOfStream(func() { ends <- struct{}{} })

	waitEnd := func(what string) {
		t.Helper()
		select {
		case <-ends:
		case <-time.After(time.Second):
			t.Fatal(what)
		}
	}

	req.NoError(p.Play())
	waitEnd("first run never finished")

	// A backward seek after end of stream starts a fresh pacing loop.
	req.NoError(p.Seek(0))
	waitEnd("seek after end did not restart playback")

	// Same through a pause cycle: the restarted loop parks until the
	// resume.
	req.NoError(p.Pause())
	req.NoError(p.Seek(0))
	req.NoError(p.Resume())
	waitEnd("resume after end did not restart playback")
}

func TestPipeline_ReleasedRejectsEverything(t *testing.T) {
	req := require.New(t)
	p := newTestPipeline()
	p.Release()
	p.Release() // second release is a no-op

	req.ErrorIs(p.Play(), ErrReleased)
	req.ErrorIs(p.Pause(), ErrReleased)
	req.ErrorIs(p.Resume(), ErrReleased)
	req.ErrorIs(p.Seek(0), ErrReleased)
	_, err := p.Position()
	req.ErrorIs(err, ErrReleased)
	_, err = p.PlaybackInfo()
	req.ErrorIs(err, ErrReleased)
	_, err = p.CreateDistributionPoint()
	req.ErrorIs(err, ErrReleased)
	_, err = p.AttachEndpoint()
	req.ErrorIs(err, ErrReleased)
}
