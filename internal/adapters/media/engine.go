// Package media implements the playback collaborator on pion: an IVF
// file source paced in real time, an RTP distribution point that fans
// the source out to every participant tap, and WebRTC endpoints for
// the participants themselves.
package media

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Theater/internal/core"
)

var ErrUnsupportedSource = errors.New("unsupported media source")

type Engine struct {
	webrtcCfg webrtc.Configuration
}

func NewEngine(stunServers []string) *Engine {
	cfg := webrtc.Configuration{}
	if len(stunServers) > 0 {
		cfg.ICEServers = []webrtc.ICEServer{{URLs: stunServers}}
	}
	return &Engine{webrtcCfg: cfg}
}

// Open loads an IVF file into a playable pipeline. The whole file is
// indexed up front, which is what makes pause/seek/position exact.
func (e *Engine) Open(uri string) (core.Pipeline, error) {
	path := strings.TrimPrefix(uri, "file://")
	if !strings.HasSuffix(path, ".ivf") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, uri)
	}

	frames, fourCC, err := loadIVF(path)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}

	mimeType, payloader, err := codecFor(fourCC)
	if err != nil {
		return nil, err
	}

	return newPipeline(e.webrtcCfg, frames, mimeType, payloader), nil
}

func codecFor(fourCC string) (string, rtp.Payloader, error) {
	switch fourCC {
	case "VP80":
		return webrtc.MimeTypeVP8, &codecs.VP8Payloader{}, nil
	case "VP90":
		return webrtc.MimeTypeVP9, &codecs.VP9Payloader{}, nil
	case "AV01":
		return webrtc.MimeTypeAV1, &codecs.AV1Payloader{}, nil
	default:
		return "", nil, fmt.Errorf("%w: codec %q", ErrUnsupportedSource, fourCC)
	}
}
