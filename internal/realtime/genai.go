package realtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"sync/atomic"

	"google.golang.org/genai"
)

// GenAIDialer opens sessions through the genai SDK Live client.
type GenAIDialer struct {
	client *genai.Client
	cfg    Config
}

// NewGenAIDialer creates a Gemini API client for cfg.APIKey.
func NewGenAIDialer(ctx context.Context, cfg Config) (*GenAIDialer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required for voice sessions")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIDialer{client: client, cfg: cfg.withDefaults()}, nil
}

// ConnectConfig is the Live setup sent on Dial.
func (d *GenAIDialer) ConnectConfig() *genai.LiveConnectConfig {
	return &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: d.cfg.Voice},
			},
		},
		SystemInstruction:        genai.NewContentFromText(d.cfg.SystemInstruction, genai.RoleUser),
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
}

func (d *GenAIDialer) Dial(ctx context.Context) (Conn, error) {
	sess, err := d.client.Live.Connect(ctx, d.cfg.Model, d.ConnectConfig())
	if err != nil {
		return nil, fmt.Errorf("live connect: %w", err)
	}
	c := &genaiConn{
		sess:   sess,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

type genaiConn struct {
	sess   *genai.Session
	events chan Event
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
}

func (c *genaiConn) Events() <-chan Event {
	return c.events
}

func (c *genaiConn) SendAudio(ctx context.Context, chunk AudioChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.closed.Load() {
		return ErrClosed
	}
	pcm, err := base64.StdEncoding.DecodeString(chunk.Data)
	if err != nil {
		return fmt.Errorf("decode audio chunk: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.sess.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{Data: pcm, MIMEType: chunk.MIMEType},
	})
}

func (c *genaiConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		err = c.sess.Close()
	})
	<-c.done
	return err
}

func (c *genaiConn) readLoop() {
	defer close(c.done)
	defer close(c.events)

	for {
		msg, err := c.sess.Receive()
		if err != nil {
			if !c.closed.Load() && !isNormalClose(err) {
				emit(c.events, Event{Kind: EventError, Err: err})
			}
			return
		}
		for _, ev := range translateGenAI(msg) {
			emit(c.events, ev)
		}
	}
}

func translateGenAI(msg *genai.LiveServerMessage) []Event {
	var out []Event
	if sc := msg.ServerContent; sc != nil {
		if sc.Interrupted {
			out = append(out, Event{Kind: EventInterrupted})
		}
		if sc.ModelTurn != nil {
			for _, p := range sc.ModelTurn.Parts {
				if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
					out = append(out, Event{Kind: EventAudio, Audio: base64.StdEncoding.EncodeToString(p.InlineData.Data)})
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
		out = append(out, Event{Kind: EventGoAway, Text: msg.GoAway.TimeLeft.String()})
	}
	return out
}
