// Package voice runs a duplex audio conversation with the realtime model:
// microphone frames are encoded and streamed up while model audio is
// decoded and scheduled for gapless playback.
package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abhisek/aprova/internal/realtime"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Phase is the session lifecycle state.
type Phase int

const (
	PhaseIdle       Phase = iota // No session
	PhaseConnecting              // Dialing the endpoint and opening the microphone
	PhaseActive                  // Streaming both directions
	PhaseClosed                  // Tearing down; ends in Idle
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseConnecting:
		return "connecting"
	case PhaseActive:
		return "active"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Microphone is an exclusive capture device producing FrameSize float
// frames at realtime.InputSampleRate. The frame channel is closed by Close.
type Microphone interface {
	Open(ctx context.Context) (<-chan []float32, error)
	Close() error
}

var (
	// ErrSessionActive is returned by Start when a session already exists.
	ErrSessionActive = errors.New("voice: session already active")

	// ErrStopped is returned by Start when Stop ran while connecting.
	ErrStopped = errors.New("voice: stopped while connecting")
)

// DeviceAcquisitionError reports that the microphone could not be opened.
type DeviceAcquisitionError struct {
	Err error
}

func (e *DeviceAcquisitionError) Error() string {
	return fmt.Sprintf("microphone unavailable: %v", e.Err)
}

func (e *DeviceAcquisitionError) Unwrap() error { return e.Err }

// TransportError reports a failure talking to the realtime endpoint.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("realtime %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NoticeKind discriminates user-facing notices.
type NoticeKind int

const (
	NoticeTranscript     NoticeKind = iota // Model speech transcript
	NoticeUserTranscript                   // User speech transcript
	NoticeTurnComplete                     // Model finished speaking
	NoticeError                            // Endpoint error, session continues
	NoticeClosed                           // Remote side ended the session
)

// Notice is an event surfaced to the UI.
type Notice struct {
	Kind NoticeKind
	Text string
	Err  error
}

// Options configures the engine.
type Options struct {
	Logger *zap.Logger

	// OutputSampleRate and OutputChannels describe inbound model audio.
	OutputSampleRate int
	OutputChannels   int
}

// Engine owns at most one voice session at a time.
type Engine struct {
	dialer   realtime.Dialer
	mic      Microphone
	out      Output
	logger   *zap.Logger
	rate     int
	channels int
	notices  chan Notice

	mu     sync.Mutex
	phase  Phase
	gen    uint64
	conn   realtime.Conn
	sched  *Scheduler
	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates an idle engine.
func NewEngine(dialer realtime.Dialer, mic Microphone, out Output, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.OutputSampleRate <= 0 {
		opts.OutputSampleRate = realtime.OutputSampleRate
	}
	if opts.OutputChannels <= 0 {
		opts.OutputChannels = 1
	}
	return &Engine{
		dialer:   dialer,
		mic:      mic,
		out:      out,
		logger:   opts.Logger,
		rate:     opts.OutputSampleRate,
		channels: opts.OutputChannels,
		notices:  make(chan Notice, 64),
	}
}

// Notices delivers transcripts, errors and remote close events. Notices
// are dropped when the reader falls behind.
func (e *Engine) Notices() <-chan Notice {
	return e.notices
}

// Phase returns the current lifecycle state.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Pending returns the number of scheduled but unfinished buffers.
func (e *Engine) Pending() int {
	e.mu.Lock()
	sched := e.sched
	e.mu.Unlock()
	if sched == nil {
		return 0
	}
	return sched.Pending()
}

// Start dials the endpoint, then acquires the microphone. On any failure
// the engine is left Idle. A microphone failure is a
// *DeviceAcquisitionError; a dial failure is a *TransportError.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.phase != PhaseIdle {
		e.mu.Unlock()
		return ErrSessionActive
	}
	e.gen++
	gen := e.gen
	connectCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.phase = PhaseConnecting
	e.mu.Unlock()
	defer cancel()

	conn, err := e.dialer.Dial(connectCtx)
	if err != nil {
		e.abort(gen)
		return &TransportError{Op: "dial", Err: err}
	}

	frames, err := e.mic.Open(connectCtx)
	if err != nil {
		conn.Close()
		e.abort(gen)
		e.logger.Warn("microphone acquisition failed", zap.Error(err))
		return &DeviceAcquisitionError{Err: err}
	}

	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		e.mic.Close()
		conn.Close()
		return ErrStopped
	}
	runCtx, runCancel := context.WithCancel(context.Background())
	sched := NewScheduler(e.out)
	done := make(chan struct{})
	e.conn, e.sched, e.cancel, e.done = conn, sched, runCancel, done
	e.phase = PhaseActive
	e.mu.Unlock()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return e.capture(gctx, conn, frames) })
	g.Go(func() error { return e.receive(gen, conn, sched) })
	go func() {
		if err := g.Wait(); err != nil {
			e.logger.Warn("voice session pump stopped", zap.Error(err))
		}
		close(done)
	}()

	e.logger.Info("voice session started")
	return nil
}

// Stop closes the stream, stops all pending playback and releases the
// microphone. It is idempotent and safe in any state.
func (e *Engine) Stop() error {
	e.mu.Lock()
	switch e.phase {
	case PhaseIdle, PhaseClosed:
		e.mu.Unlock()
		return nil
	case PhaseConnecting:
		e.gen++
		if e.cancel != nil {
			e.cancel()
		}
		e.cancel = nil
		e.phase = PhaseIdle
		e.mu.Unlock()
		return nil
	}

	e.gen++
	conn, sched, cancel, done := e.conn, e.sched, e.cancel, e.done
	e.phase = PhaseClosed
	e.mu.Unlock()

	e.release(conn, sched, cancel)
	<-done

	e.mu.Lock()
	e.clearLocked()
	e.mu.Unlock()

	e.logger.Info("voice session stopped")
	return nil
}

func (e *Engine) abort(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen == gen {
		e.clearLocked()
	}
}

func (e *Engine) clearLocked() {
	e.conn, e.sched, e.cancel, e.done = nil, nil, nil, nil
	e.phase = PhaseIdle
}

func (e *Engine) release(conn realtime.Conn, sched *Scheduler, cancel context.CancelFunc) {
	if cancel != nil {
		cancel()
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			e.logger.Debug("close realtime connection", zap.Error(err))
		}
	}
	if sched != nil {
		sched.Flush()
	}
	if err := e.mic.Close(); err != nil {
		e.logger.Debug("close microphone", zap.Error(err))
	}
}

// capture streams microphone frames until the session ends. It never
// waits on playback.
func (e *Engine) capture(ctx context.Context, conn realtime.Conn, frames <-chan []float32) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			chunk := realtime.AudioChunk{Data: EncodeFrame(frame), MIMEType: realtime.InputMIMEType}
			if err := conn.SendAudio(ctx, chunk); err != nil {
				if errors.Is(err, realtime.ErrClosed) || ctx.Err() != nil {
					return nil
				}
				e.logger.Warn("send audio frame", zap.Error(err))
			}
		}
	}
}

// receive handles inbound events until the connection's event stream
// ends, then tears the session down if nothing else has.
func (e *Engine) receive(gen uint64, conn realtime.Conn, sched *Scheduler) error {
	for ev := range conn.Events() {
		switch ev.Kind {
		case realtime.EventAudio:
			buf, err := DecodeBuffer(ev.Audio, e.rate, e.channels)
			if err != nil {
				e.logger.Warn("drop undecodable audio", zap.Error(err))
				continue
			}
			sched.Schedule(buf)
		case realtime.EventInterrupted:
			sched.Flush()
		case realtime.EventTranscript:
			e.notify(Notice{Kind: NoticeTranscript, Text: ev.Text})
		case realtime.EventInputTranscript:
			e.notify(Notice{Kind: NoticeUserTranscript, Text: ev.Text})
		case realtime.EventTurnComplete:
			e.notify(Notice{Kind: NoticeTurnComplete})
		case realtime.EventGoAway:
			e.logger.Info("realtime endpoint going away", zap.String("time_left", ev.Text))
		case realtime.EventError:
			e.logger.Error("realtime endpoint error", zap.Error(ev.Err))
			e.notify(Notice{Kind: NoticeError, Err: &TransportError{Op: "receive", Err: ev.Err}})
		}
	}

	e.remoteClosed(gen)
	return nil
}

func (e *Engine) remoteClosed(gen uint64) {
	e.mu.Lock()
	if e.gen != gen || e.phase != PhaseActive {
		e.mu.Unlock()
		return
	}
	e.gen++
	conn, sched, cancel := e.conn, e.sched, e.cancel
	e.phase = PhaseClosed
	e.mu.Unlock()

	e.release(conn, sched, cancel)

	e.mu.Lock()
	e.clearLocked()
	e.mu.Unlock()

	e.logger.Info("voice session closed by remote")
	e.notify(Notice{Kind: NoticeClosed})
}

func (e *Engine) notify(n Notice) {
	select {
	case e.notices <- n:
	default:
	}
}
