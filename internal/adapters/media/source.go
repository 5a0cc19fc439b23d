package media

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/pion/webrtc/v4/pkg/media/ivfreader"
)

// frame is one indexed video frame: payload plus its presentation
// time and display duration.
type frame struct {
	payload []byte
	at      time.Duration
	dur     time.Duration
}

// loadIVF reads and indexes every frame of an IVF file. Presentation
// times come from the container timebase, so variable frame rates are
// preserved.
func loadIVF(path string) ([]frame, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	ivf, header, err := ivfreader.NewWith(f)
	if err != nil {
		return nil, "", err
	}

	// Seconds per timestamp tick.
	tick := float64(header.TimebaseNumerator) / float64(header.TimebaseDenominator)

	var frames []frame
	for {
		payload, fh, err := ivf.ParseNextFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, "", err
		}
		frames = append(frames, frame{
			payload: payload,
			at:      time.Duration(float64(fh.Timestamp) * tick * float64(time.Second)),
		})
	}
	if len(frames) == 0 {
		return nil, "", errors.New("ivf file holds no frames")
	}

	for i := 0; i < len(frames)-1; i++ {
		frames[i].dur = frames[i+1].at - frames[i].at
	}
	// The container carries no duration for the last frame; reuse the
	// previous one, or the timebase tick for single-frame files.
	last := len(frames) - 1
	if last > 0 {
		frames[last].dur = frames[last-1].dur
	} else {
		frames[last].dur = time.Duration(tick * float64(time.Second))
	}

	return frames, header.FourCC, nil
}
