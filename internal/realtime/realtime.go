// Package realtime connects to the live voice model endpoint. Two
// transports are provided: the genai SDK Live client and a plain websocket
// speaking the same BidiGenerateContent protocol.
package realtime

import (
	"context"
	"errors"
)

const (
	// InputSampleRate is the microphone rate expected by the endpoint.
	InputSampleRate = 16000

	// OutputSampleRate is the rate of audio returned by the model.
	OutputSampleRate = 24000

	// InputMIMEType labels every outbound audio frame.
	InputMIMEType = "audio/pcm;rate=16000"

	DefaultModel = "gemini-2.5-flash-native-audio-preview-12-2025"
	DefaultVoice = "Puck"

	// MentorInstruction is the system instruction for voice tutoring.
	MentorInstruction = "Você é um Mentor Técnico para concursos. Suas respostas devem ser curtas, diretas e estritamente profissionais. Evite saudações longas."
)

// ErrClosed is returned when sending on a closed connection.
var ErrClosed = errors.New("realtime: connection closed")

// AudioChunk is one outbound audio frame. Data is base64 PCM16.
type AudioChunk struct {
	Data     string
	MIMEType string
}

// EventKind discriminates inbound events.
type EventKind int

const (
	EventAudio           EventKind = iota // Model audio, base64 PCM16 at 24 kHz
	EventTranscript                       // Transcript of model speech
	EventInputTranscript                  // Transcript of user speech
	EventTurnComplete                     // Model finished its turn
	EventInterrupted                      // User barged in; pending playback is stale
	EventGoAway                           // Server will close soon
	EventError                            // Endpoint reported an error
)

func (k EventKind) String() string {
	switch k {
	case EventAudio:
		return "audio"
	case EventTranscript:
		return "transcript"
	case EventInputTranscript:
		return "input_transcript"
	case EventTurnComplete:
		return "turn_complete"
	case EventInterrupted:
		return "interrupted"
	case EventGoAway:
		return "go_away"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one inbound message from the endpoint.
type Event struct {
	Kind EventKind

	// Audio holds base64 PCM16 for EventAudio.
	Audio string

	// Text holds transcripts and go-away details.
	Text string

	// Err is set for EventError.
	Err error
}

// Conn is an open duplex session. Events is closed when the remote side
// closes or after Close.
type Conn interface {
	SendAudio(ctx context.Context, chunk AudioChunk) error
	Events() <-chan Event
	Close() error
}

// Dialer opens sessions.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// Config configures either transport.
type Config struct {
	APIKey            string
	Model             string
	Voice             string
	SystemInstruction string

	// Endpoint overrides the websocket URL (websocket transport only).
	Endpoint string
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Voice == "" {
		c.Voice = DefaultVoice
	}
	if c.SystemInstruction == "" {
		c.SystemInstruction = MentorInstruction
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	return c
}

// emit delivers ev without blocking the read loop when the consumer
// stops draining.
func emit(ch chan<- Event, ev Event) {
	select {
	case ch <- ev:
	default:
	}
}
