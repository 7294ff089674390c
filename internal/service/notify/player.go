package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// Player plays an encoded audio stream to completion.
type Player interface {
	Play(format string, r io.ReadCloser) error
}

// BeepPlayer decodes mp3 and wav through faiface/beep.
type BeepPlayer struct {
	volumeDB float64

	mu   sync.Mutex
	rate beep.SampleRate
}

func NewBeepPlayer(volumeDB float64) *BeepPlayer { return &BeepPlayer{volumeDB: volumeDB} }

func (p *BeepPlayer) Play(format string, r io.ReadCloser) error {
	var (
		streamer beep.StreamSeekCloser
		f        beep.Format
		err      error
	)
	switch strings.ToLower(format) {
	case "wav":
		streamer, f, err = wav.Decode(r)
	case "mp3":
		streamer, f, err = mp3.Decode(r)
	default:
		return fmt.Errorf("notify: unsupported sound format %q, use mp3 or wav", format)
	}
	if err != nil {
		return fmt.Errorf("notify: decode %s: %w", format, err)
	}
	defer streamer.Close()

	if err := p.initSpeaker(f.SampleRate); err != nil {
		return err
	}

	var s beep.Streamer = streamer
	if f.SampleRate != p.rate {
		s = beep.Resample(4, f.SampleRate, p.rate, streamer)
	}
	vol := &effects.Volume{Streamer: s, Base: 2, Volume: p.volumeDB}

	done := make(chan struct{})
	speaker.Play(beep.Seq(vol, beep.Callback(func() { close(done) })))
	<-done
	return nil
}

// initSpeaker initializes the speaker once, at the rate of the first sound.
func (p *BeepPlayer) initSpeaker(rate beep.SampleRate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rate != 0 {
		return nil
	}
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return fmt.Errorf("notify: init speaker: %w", err)
	}
	p.rate = rate
	return nil
}
