package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/abhisek/aprova/internal/realtime"
	"github.com/abhisek/aprova/internal/voice"
	"github.com/gen2brain/malgo"
	"go.uber.org/zap"
)

// ErrMicrophoneBusy is returned when Open is called twice without Close.
var ErrMicrophoneBusy = errors.New("audio: microphone already open")

// Microphone captures mono float32 audio at 16 kHz from the default input
// device and delivers it in voice.FrameSize frames.
type Microphone struct {
	logger *zap.Logger

	mu     sync.Mutex
	mctx   *malgo.AllocatedContext
	device *malgo.Device
	asm    *frameAssembler
}

// NewMicrophone creates a closed microphone.
func NewMicrophone(logger *zap.Logger) *Microphone {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Microphone{logger: logger}
}

// Open acquires the capture device. The returned channel is closed by
// Close. Frames are dropped when the reader falls behind.
func (m *Microphone) Open(_ context.Context) (<-chan []float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return nil, ErrMicrophoneBusy
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = 1
	cfg.SampleRate = realtime.InputSampleRate

	asm := newFrameAssembler(voice.FrameSize, 8)
	device, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(_, in []byte, _ uint32) { asm.push(in) },
	})
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("init capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		_ = mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("start capture device: %w", err)
	}

	m.mctx, m.device, m.asm = mctx, device, asm
	m.logger.Debug("microphone opened", zap.Int("sample_rate", realtime.InputSampleRate))
	return asm.frames, nil
}

// Close releases the device. Closing a closed microphone is a no-op.
func (m *Microphone) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return nil
	}
	err := m.device.Stop()
	m.device.Uninit()
	_ = m.mctx.Uninit()
	m.mctx.Free()

	if dropped := m.asm.close(); dropped > 0 {
		m.logger.Debug("microphone frames dropped", zap.Int("count", dropped))
	}
	m.mctx, m.device, m.asm = nil, nil, nil
	return err
}

// frameAssembler slices raw float32 callback data into fixed frames. push
// never blocks.
type frameAssembler struct {
	size   int
	frames chan []float32

	mu      sync.Mutex
	pending []float32
	dropped int
	closed  bool
}

func newFrameAssembler(size, queue int) *frameAssembler {
	return &frameAssembler{size: size, frames: make(chan []float32, queue)}
}

func (a *frameAssembler) push(raw []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	for i := 0; i+4 <= len(raw); i += 4 {
		a.pending = append(a.pending, math.Float32frombits(binary.LittleEndian.Uint32(raw[i:])))
	}
	for len(a.pending) >= a.size {
		frame := make([]float32, a.size)
		copy(frame, a.pending)
		a.pending = a.pending[a.size:]
		select {
		case a.frames <- frame:
		default:
			a.dropped++
		}
	}
	if len(a.pending) == 0 {
		a.pending = nil
	}
}

// close stops delivery and returns the number of dropped frames.
func (a *frameAssembler) close() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.closed {
		a.closed = true
		close(a.frames)
	}
	return a.dropped
}
