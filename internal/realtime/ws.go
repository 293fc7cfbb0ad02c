package realtime

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultEndpoint is the public Gemini Live websocket URL.
const DefaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

const (
	setupTimeout = 15 * time.Second
	writeTimeout = 10 * time.Second
	eventBuffer  = 256
)

// Wire messages for the BidiGenerateContent protocol.
type (
	clientMessage struct {
		Setup         *setupMessage         `json:"setup,omitempty"`
		RealtimeInput *realtimeInputMessage `json:"realtimeInput,omitempty"`
	}

	setupMessage struct {
		Model                    string           `json:"model"`
		GenerationConfig         generationConfig `json:"generationConfig"`
		SystemInstruction        *wireContent     `json:"systemInstruction,omitempty"`
		InputAudioTranscription  *struct{}        `json:"inputAudioTranscription,omitempty"`
		OutputAudioTranscription *struct{}        `json:"outputAudioTranscription,omitempty"`
	}

	generationConfig struct {
		ResponseModalities []string     `json:"responseModalities"`
		SpeechConfig       speechConfig `json:"speechConfig"`
	}

	speechConfig struct {
		VoiceConfig struct {
			PrebuiltVoiceConfig struct {
				VoiceName string `json:"voiceName"`
			} `json:"prebuiltVoiceConfig"`
		} `json:"voiceConfig"`
	}

	realtimeInputMessage struct {
		Audio *wireBlob `json:"audio,omitempty"`
	}

	wireBlob struct {
		MIMEType string `json:"mimeType"`
		Data     string `json:"data"`
	}

	wirePart struct {
		Text       string    `json:"text,omitempty"`
		InlineData *wireBlob `json:"inlineData,omitempty"`
	}

	wireContent struct {
		Role  string     `json:"role,omitempty"`
		Parts []wirePart `json:"parts"`
	}

	wireTranscription struct {
		Text string `json:"text"`
	}

	serverMessage struct {
		SetupComplete *struct{}      `json:"setupComplete,omitempty"`
		ServerContent *serverContent `json:"serverContent,omitempty"`
		GoAway        *struct {
			TimeLeft string `json:"timeLeft"`
		} `json:"goAway,omitempty"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error,omitempty"`
	}

	serverContent struct {
		ModelTurn           *wireContent       `json:"modelTurn,omitempty"`
		TurnComplete        bool               `json:"turnComplete,omitempty"`
		Interrupted         bool               `json:"interrupted,omitempty"`
		InputTranscription  *wireTranscription `json:"inputTranscription,omitempty"`
		OutputTranscription *wireTranscription `json:"outputTranscription,omitempty"`
	}
)

// WSDialer speaks the Live protocol over a plain gorilla websocket.
type WSDialer struct {
	cfg    Config
	dialer *websocket.Dialer
}

// NewWSDialer returns a dialer for cfg. Empty fields take defaults.
func NewWSDialer(cfg Config) *WSDialer {
	return &WSDialer{cfg: cfg.withDefaults(), dialer: websocket.DefaultDialer}
}

// Dial connects, sends the setup message and waits for setupComplete.
func (d *WSDialer) Dial(ctx context.Context) (Conn, error) {
	header := make(http.Header)
	if d.cfg.APIKey != "" {
		header.Set("x-goog-api-key", d.cfg.APIKey)
	}

	dialCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, setupTimeout)
		defer cancel()
	}

	conn, resp, err := d.dialer.DialContext(dialCtx, d.cfg.Endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	if err := conn.WriteJSON(clientMessage{Setup: d.setup()}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send setup: %w", err)
	}

	deadline := time.Now().Add(setupTimeout)
	if dl, ok := dialCtx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetReadDeadline(deadline)
	var first serverMessage
	if err := conn.ReadJSON(&first); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read setupComplete: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	switch {
	case first.Error != nil:
		conn.Close()
		return nil, fmt.Errorf("setup rejected (%d): %s", first.Error.Code, first.Error.Message)
	case first.SetupComplete == nil:
		conn.Close()
		return nil, fmt.Errorf("unexpected first message, want setupComplete")
	}

	c := &wsConn{
		conn:   conn,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (d *WSDialer) setup() *setupMessage {
	model := d.cfg.Model
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	s := &setupMessage{
		Model: model,
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"AUDIO"},
		},
		SystemInstruction:        &wireContent{Parts: []wirePart{{Text: d.cfg.SystemInstruction}}},
		InputAudioTranscription:  &struct{}{},
		OutputAudioTranscription: &struct{}{},
	}
	s.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName = d.cfg.Voice
	return s
}

type wsConn struct {
	conn   *websocket.Conn
	events chan Event
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
}

func (c *wsConn) Events() <-chan Event {
	return c.events
}

func (c *wsConn) SendAudio(ctx context.Context, chunk AudioChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.closed.Load() {
		return ErrClosed
	}
	msg := clientMessage{RealtimeInput: &realtimeInputMessage{
		Audio: &wireBlob{MIMEType: chunk.MIMEType, Data: chunk.Data},
	}}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(2*time.Second))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	})
	<-c.done
	return nil
}

func (c *wsConn) readLoop() {
	defer close(c.done)
	defer close(c.events)

	for {
		var msg serverMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if c.closed.Load() || isNormalClose(err) {
				return
			}
			emit(c.events, Event{Kind: EventError, Err: err})
			return
		}
		for _, ev := range translateWire(&msg) {
			emit(c.events, ev)
		}
	}
}

func translateWire(msg *serverMessage) []Event {
	var out []Event
	if msg.Error != nil {
		out = append(out, Event{Kind: EventError, Err: fmt.Errorf("endpoint error %d: %s", msg.Error.Code, msg.Error.Message)})
	}
	if sc := msg.ServerContent; sc != nil {
		if sc.Interrupted {
			out = append(out, Event{Kind: EventInterrupted})
		}
		if sc.ModelTurn != nil {
			for _, p := range sc.ModelTurn.Parts {
				if p.InlineData != nil && p.InlineData.Data != "" {
					out = append(out, Event{Kind: EventAudio, Audio: p.InlineData.Data})
				}
			}
		}
		if t := sc.InputTranscription; t != nil && t.Text != "" {
			out = append(out, Event{Kind: EventInputTranscript, Text: t.Text})
		}
		if t := sc.OutputTranscription; t != nil && t.Text != "" {
			out = append(out, Event{Kind: EventTranscript, Text: t.Text})
		}
		if sc.TurnComplete {
			out = append(out, Event{Kind: EventTurnComplete})
		}
	}
	if msg.GoAway != nil {
		out = append(out, Event{Kind: EventGoAway, Text: msg.GoAway.TimeLeft})
	}
	return out
}

// isNormalClose reports whether err is a clean remote close.
func isNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
