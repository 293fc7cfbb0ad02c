package cmd

import (
	"github.com/abhisek/aprova/internal/config"
	"github.com/abhisek/aprova/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aprova",
	Short: "Companheiro de estudos para concursos públicos",
	Long: `Aprova — app de terminal com IA para candidatos a concursos públicos:
simulados cronometrados no estilo das bancas, tutor por texto e voz,
notícias de editais e acompanhamento de desempenho por matéria.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, false)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides db_path and APROVA_DB)")
	rootCmd.PersistentFlags().String("config", "", "Path to aprova.yaml (default: ./config or $XDG_CONFIG_HOME/aprova)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(voiceCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(placesCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the file named by --config, or searches the default
// locations when the flag is empty.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then db_path from the config, then APROVA_DB env var or the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
