package voice

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// FrameSize is the number of samples per captured microphone frame.
const FrameSize = 4096

// EncodeFrame converts float samples in [-1, 1] to little-endian PCM16 and
// returns it base64 encoded. Out-of-range samples are clamped.
func EncodeFrame(samples []float32) string {
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(floatToPCM16(s)))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func floatToPCM16(s float32) int16 {
	switch {
	case s != s: // NaN
		return 0
	case s >= 1:
		return math.MaxInt16
	case s <= -1:
		return math.MinInt16 + 1
	}
	return int16(s * math.MaxInt16)
}

// DecodePCM16 decodes a base64 little-endian PCM16 payload. A trailing odd
// byte is ignored.
func DecodePCM16(payload string) ([]int16, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode audio payload: %w", err)
	}
	out := make([]int16, len(raw)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	return out, nil
}

// Buffer is decoded float PCM ready for playback, one slice per channel.
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// Frames returns the number of sample frames per channel.
func (b *Buffer) Frames() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the playback length in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Length returns the playback length as a time.Duration.
func (b *Buffer) Length() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// NewBuffer de-interleaves samples into channels and scales them to
// [-1, 1). Incomplete trailing frames are dropped.
func NewBuffer(samples []int16, sampleRate, channels int) *Buffer {
	if channels < 1 {
		channels = 1
	}
	frames := len(samples) / channels
	b := &Buffer{SampleRate: sampleRate, Channels: make([][]float32, channels)}
	for c := range b.Channels {
		ch := make([]float32, frames)
		for i := 0; i < frames; i++ {
			ch[i] = float32(samples[i*channels+c]) / 32768
		}
		b.Channels[c] = ch
	}
	return b
}

// DecodeBuffer decodes a base64 PCM16 payload into a playable Buffer.
func DecodeBuffer(payload string, sampleRate, channels int) (*Buffer, error) {
	samples, err := DecodePCM16(payload)
	if err != nil {
		return nil, err
	}
	return NewBuffer(samples, sampleRate, channels), nil
}
