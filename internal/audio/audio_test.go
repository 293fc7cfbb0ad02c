package audio

import (
	"encoding/binary"
	"math"
	"sync"
	"testing"

	"github.com/abhisek/aprova/internal/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monoBuffer(rate int, samples ...float32) *voice.Buffer {
	return &voice.Buffer{SampleRate: rate, Channels: [][]float32{samples}}
}

func readSamples(t *testing.T, m *Mixer, n int) []int16 {
	t.Helper()
	p := make([]byte, 2*n)
	got, err := m.Read(p)
	require.NoError(t, err)
	require.Equal(t, 2*n, got)

	out := make([]int16, n)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(p[2*i:]))
	}
	return out
}

func TestMixerSilenceWhenEmpty(t *testing.T) {
	m := NewMixer(10)
	assert.Equal(t, []int16{0, 0, 0, 0}, readSamples(t, m, 4))
	assert.InDelta(t, 0.4, m.Now(), 1e-9)
}

func TestMixerPlacesBufferAtOffset(t *testing.T) {
	m := NewMixer(10)
	m.Start(monoBuffer(10, 0.5, 0.5), 0.2, nil)

	got := readSamples(t, m, 5)
	assert.Equal(t, []int16{0, 0, 16384, 16384, 0}, got)
	assert.Equal(t, 0, m.Active())
}

func TestMixerBackToBackIsContiguous(t *testing.T) {
	m := NewMixer(10)
	sched := voice.NewScheduler(m)

	sched.Schedule(monoBuffer(10, 0.25, 0.25, 0.25))
	sched.Schedule(monoBuffer(10, -0.25, -0.25))

	got := readSamples(t, m, 6)
	assert.Equal(t, []int16{8192, 8192, 8192, -8192, -8192, 0}, got)
}

func TestMixerOnEndedAfterConsumed(t *testing.T) {
	m := NewMixer(10)
	var mu sync.Mutex
	ended := 0
	m.Start(monoBuffer(10, 0.1, 0.1, 0.1), 0, func() {
		mu.Lock()
		ended++
		mu.Unlock()
	})

	readSamples(t, m, 2)
	mu.Lock()
	assert.Equal(t, 0, ended)
	mu.Unlock()

	readSamples(t, m, 1)
	mu.Lock()
	assert.Equal(t, 1, ended)
	mu.Unlock()

	readSamples(t, m, 3)
	mu.Lock()
	assert.Equal(t, 1, ended)
	mu.Unlock()
}

func TestMixerOnEndedMayReenter(t *testing.T) {
	m := NewMixer(10)
	done := make(chan float64, 1)
	m.Start(monoBuffer(10, 0.1), 0, func() { done <- m.Now() })

	readSamples(t, m, 2)
	assert.InDelta(t, 0.2, <-done, 1e-9)
}

func TestMixerStopSilencesWithoutCallback(t *testing.T) {
	m := NewMixer(10)
	called := false
	v := m.Start(monoBuffer(10, 0.5, 0.5, 0.5, 0.5), 0, func() { called = true })

	readSamples(t, m, 1)
	v.Stop()
	v.Stop()

	assert.Equal(t, []int16{0, 0, 0}, readSamples(t, m, 3))
	assert.False(t, called)
	assert.Equal(t, 0, m.Active())
}

func TestMixerSumsOverlapAndClamps(t *testing.T) {
	m := NewMixer(10)
	m.Start(monoBuffer(10, 0.75, 0.25), 0, nil)
	m.Start(monoBuffer(10, 0.75, 0.25), 0, nil)

	got := readSamples(t, m, 2)
	assert.Equal(t, int16(math.MaxInt16), got[0])
	assert.Equal(t, int16(16384), got[1])
}

func TestMixerDownmixesChannels(t *testing.T) {
	m := NewMixer(10)
	m.Start(&voice.Buffer{
		SampleRate: 10,
		Channels:   [][]float32{{0.5, 0}, {0, -0.5}},
	}, 0, nil)

	assert.Equal(t, []int16{8192, -8192}, readSamples(t, m, 2))
}

func TestMixerResamples(t *testing.T) {
	m := NewMixer(20)
	m.Start(monoBuffer(10, 0.5, -0.5), 0, nil)

	assert.Equal(t, []int16{16384, 16384, -16384, -16384, 0}, readSamples(t, m, 5))
}

func TestMixerOddByteCount(t *testing.T) {
	m := NewMixer(10)
	n, err := m.Read(make([]byte, 5))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func floatBytes(vals ...float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

func TestFrameAssemblerSlicesFrames(t *testing.T) {
	a := newFrameAssembler(3, 4)

	a.push(floatBytes(0.1, 0.2))
	assert.Len(t, a.frames, 0)

	a.push(floatBytes(0.3, 0.4, 0.5, 0.6, 0.7))
	require.Len(t, a.frames, 2)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, <-a.frames)
	assert.Equal(t, []float32{0.4, 0.5, 0.6}, <-a.frames)
	assert.Equal(t, []float32{0.7}, a.pending)
}

func TestFrameAssemblerDropsWhenFull(t *testing.T) {
	a := newFrameAssembler(1, 2)

	a.push(floatBytes(1, 2, 3, 4))
	assert.Len(t, a.frames, 2)
	assert.Equal(t, 2, a.close())

	var got []float32
	for f := range a.frames {
		got = append(got, f...)
	}
	assert.Equal(t, []float32{1, 2}, got)
}

func TestFrameAssemblerIgnoresPushAfterClose(t *testing.T) {
	a := newFrameAssembler(1, 2)
	a.close()
	a.close()

	assert.NotPanics(t, func() { a.push(floatBytes(1)) })
}

func TestMicrophoneCloseWhenNotOpen(t *testing.T) {
	assert.NoError(t, NewMicrophone(nil).Close())
}
