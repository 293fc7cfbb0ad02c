package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abhisek/aprova/internal/audio"
	"github.com/abhisek/aprova/internal/config"
	"github.com/abhisek/aprova/internal/llm"
	"github.com/abhisek/aprova/internal/logging"
	"github.com/abhisek/aprova/internal/realtime"
	"github.com/abhisek/aprova/internal/voice"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Conversa por voz com o mentor (microfone e alto-falante)",
	Long: `Start a live voice session with the technical mentor.

Audio is captured from the default microphone at 16 kHz and the model's
replies are played on the default output device. Press Ctrl+C to stop.`,
	RunE: runVoice,
}

func init() {
	voiceCmd.Flags().String("transport", "", "Override voice.transport: sdk or websocket")
}

func runVoice(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if t, _ := cmd.Flags().GetString("transport"); t != "" {
		cfg.Voice.Transport = t
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialer, err := newDialer(ctx, cfg)
	if err != nil {
		return err
	}

	mixer := audio.NewMixer(realtime.OutputSampleRate)
	speaker, err := audio.NewSpeaker(mixer, mixer.SampleRate())
	if err != nil {
		return err
	}
	defer speaker.Close()

	eng := voice.NewEngine(dialer, audio.NewMicrophone(logger), mixer, voice.Options{Logger: logger})

	fmt.Println("Conectando...")
	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("iniciar sessão de voz: %w", err)
	}
	defer eng.Stop()
	fmt.Println("Sessão ativa. Fale com o mentor (Ctrl+C para encerrar).")

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nEncerrando...")
			return nil
		case n := <-eng.Notices():
			switch n.Kind {
			case voice.NoticeTranscript:
				fmt.Printf("Mentor: %s\n", n.Text)
			case voice.NoticeUserTranscript:
				fmt.Printf("Você: %s\n", n.Text)
			case voice.NoticeError:
				logger.Warn("voice endpoint error", zap.Error(n.Err))
				fmt.Fprintf(os.Stderr, "Erro: %v\n", n.Err)
			case voice.NoticeClosed:
				fmt.Println("Sessão encerrada pelo servidor.")
				return nil
			}
			if err := speaker.Err(); err != nil {
				return fmt.Errorf("reprodução de áudio: %w", err)
			}
		}
	}
}

// newDialer builds the realtime transport selected by voice.transport.
func newDialer(ctx context.Context, cfg *config.Config) (realtime.Dialer, error) {
	rc := realtime.Config{
		APIKey:   llm.GeminiAPIKey(),
		Model:    cfg.Voice.Model,
		Voice:    cfg.Voice.VoiceName,
		Endpoint: cfg.Voice.Endpoint,
	}
	if cfg.Voice.Transport == config.TransportWebSocket {
		if rc.APIKey == "" && rc.Endpoint == "" {
			return nil, fmt.Errorf("defina GEMINI_API_KEY ou voice.endpoint para a sessão de voz")
		}
		return realtime.NewWSDialer(rc), nil
	}
	return realtime.NewGenAIDialer(ctx, rc)
}
