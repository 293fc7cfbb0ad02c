package cmd

import (
	"github.com/abhisek/aprova/internal/server"
	"github.com/abhisek/aprova/internal/tutor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expõe a API HTTP e o simulado via websocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		addr := env.cfg.Server.Addr
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}

		deps := server.Deps{
			Performance:    env.perf,
			History:        env.store.EventRepo(),
			Logger:         env.logger,
			AllowedOrigins: env.cfg.Server.AllowedOrigins,
		}
		if gen := env.generator(); gen != nil {
			deps.Generator = gen
			deps.Tutor = env.tutor(tutor.PersonaTutor)
		} else {
			env.logger.Warn("LLM provider not configured; quiz and tutor routes disabled")
		}
		if client, err := env.grounding(cmd.Context()); err != nil {
			env.logger.Warn("grounding disabled", zap.Error(err))
		} else {
			deps.Grounding = client
		}

		return server.Run(cmd.Context(), addr, server.New(deps).Handler(), env.logger)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
