// Package chime plays the short tone heard when the countdown finishes.
package chime

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog/log"
)

const sampleRate = beep.SampleRate(44100)

// Chime plays a short two-note tone. Without an audio device it stays silent.
type Chime struct {
	ready bool
}

func New() *Chime {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		log.Warn().Err(err).Msg("audio unavailable, chime disabled")
		return &Chime{}
	}
	return &Chime{ready: true}
}

func (c *Chime) Play() {
	if c == nil || !c.ready {
		return
	}
	low, err := generators.SineTone(sampleRate, 660)
	if err != nil {
		log.Warn().Err(err).Msg("chime tone")
		return
	}
	high, err := generators.SineTone(sampleRate, 880)
	if err != nil {
		log.Warn().Err(err).Msg("chime tone")
		return
	}
	speaker.Play(beep.Seq(
		beep.Take(sampleRate.N(150*time.Millisecond), low),
		beep.Silence(sampleRate.N(50*time.Millisecond)),
		beep.Take(sampleRate.N(300*time.Millisecond), high),
	))
}

func (c *Chime) Close() {
	if c == nil || !c.ready {
		return
	}
	speaker.Close()
	c.ready = false
}
