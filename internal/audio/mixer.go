// Package audio provides the speaker and microphone devices behind the
// voice engine.
package audio

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/abhisek/aprova/internal/voice"
)

// Mixer is a mono output timeline. Buffers are placed at sample offsets
// and mixed into little-endian PCM16 as the speaker pulls. Positions with
// no buffer produce silence, so Read never blocks.
type Mixer struct {
	rate int

	mu     sync.Mutex
	pos    int64
	voices []*mixVoice
}

type mixVoice struct {
	m       *Mixer
	start   int64
	samples []float32
	onEnded func()
}

// NewMixer creates a mixer running at rate samples per second.
func NewMixer(rate int) *Mixer {
	return &Mixer{rate: rate}
}

// SampleRate returns the output rate.
func (m *Mixer) SampleRate() int {
	return m.rate
}

// Now returns the number of seconds consumed by the speaker so far.
func (m *Mixer) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.pos) / float64(m.rate)
}

// Start places buf at the given timeline position. Multi-channel buffers
// are averaged down to mono; other sample rates are resampled.
func (m *Mixer) Start(buf *voice.Buffer, at float64, onEnded func()) voice.Voice {
	v := &mixVoice{
		m:       m,
		start:   int64(math.Round(at * float64(m.rate))),
		samples: resample(downmix(buf), buf.SampleRate, m.rate),
		onEnded: onEnded,
	}

	m.mu.Lock()
	m.voices = append(m.voices, v)
	m.mu.Unlock()
	return v
}

// Stop removes the voice without calling its completion callback.
func (v *mixVoice) Stop() {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, o := range m.voices {
		if o == v {
			m.voices = append(m.voices[:i], m.voices[i+1:]...)
			return
		}
	}
}

func (v *mixVoice) end() int64 {
	return v.start + int64(len(v.samples))
}

// Read implements io.Reader for the speaker. It always fills p with whole
// samples.
func (m *Mixer) Read(p []byte) (int, error) {
	n := len(p) / 2

	m.mu.Lock()
	for i := 0; i < n; i++ {
		idx := m.pos + int64(i)
		var sum float32
		for _, v := range m.voices {
			if off := idx - v.start; off >= 0 && off < int64(len(v.samples)) {
				sum += v.samples[off]
			}
		}
		binary.LittleEndian.PutUint16(p[2*i:], uint16(toPCM16(sum)))
	}
	m.pos += int64(n)

	var ended []func()
	kept := m.voices[:0]
	for _, v := range m.voices {
		if v.end() <= m.pos {
			if v.onEnded != nil {
				ended = append(ended, v.onEnded)
			}
			continue
		}
		kept = append(kept, v)
	}
	for i := len(kept); i < len(m.voices); i++ {
		m.voices[i] = nil
	}
	m.voices = kept
	m.mu.Unlock()

	for _, fn := range ended {
		fn()
	}
	return 2 * n, nil
}

// Active returns the number of voices not yet finished.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

func toPCM16(s float32) int16 {
	switch {
	case s >= 1:
		return math.MaxInt16
	case s <= -1:
		return math.MinInt16
	}
	return int16(s * 32768)
}

func downmix(buf *voice.Buffer) []float32 {
	if buf == nil || len(buf.Channels) == 0 {
		return nil
	}
	if len(buf.Channels) == 1 {
		return buf.Channels[0]
	}
	frames := buf.Frames()
	out := make([]float32, frames)
	scale := 1 / float32(len(buf.Channels))
	for _, ch := range buf.Channels {
		for i := 0; i < frames; i++ {
			out[i] += ch[i] * scale
		}
	}
	return out
}

// resample converts by nearest-neighbour. Model audio already arrives at
// the output rate, so this path is rare.
func resample(in []float32, from, to int) []float32 {
	if from <= 0 || from == to || len(in) == 0 {
		return in
	}
	n := int(int64(len(in)) * int64(to) / int64(from))
	out := make([]float32, n)
	for i := range out {
		out[i] = in[int64(i)*int64(from)/int64(to)]
	}
	return out
}
