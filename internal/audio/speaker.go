package audio

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Speaker plays PCM16 mono pulled from a reader, normally a Mixer.
type Speaker struct {
	ctx    *oto.Context
	player *oto.Player
}

// NewSpeaker opens the default output device at sampleRate and starts
// pulling from src. oto allows one context per process.
func NewSpeaker(src io.Reader, sampleRate int) (*Speaker, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(src)
	player.Play()
	return &Speaker{ctx: ctx, player: player}, nil
}

// Err returns the first playback error, if any.
func (s *Speaker) Err() error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	return s.player.Err()
}

// Close stops playback and releases the player.
func (s *Speaker) Close() error {
	s.player.Pause()
	return s.player.Close()
}
