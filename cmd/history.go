package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abhisek/aprova/internal/quiz"
	"github.com/abhisek/aprova/internal/screens/summary"
	"github.com/abhisek/aprova/internal/store"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Lista os simulados recentes",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		env, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		sessions, err := env.store.EventRepo().RecentQuizSessions(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		printHistory(os.Stdout, sessions)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
}

func printHistory(w io.Writer, sessions []store.QuizSession) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "Nenhum simulado registrado.")
		return
	}

	fmt.Fprintf(w, "%-16s  %-8s  %-24s  %-8s  %7s  %8s  %s\n",
		"Data", "Banca", "Matéria", "Nível", "Acertos", "Tempo", "Resultado")
	fmt.Fprintln(w, strings.Repeat("─", 100))
	for _, s := range sessions {
		fmt.Fprintf(w, "%-16s  %-8s  %-24s  %-8s  %7s  %8s  %s\n",
			s.Timestamp.Local().Format("02/01/2006 15:04"),
			s.Source,
			truncate(s.Subject, 24),
			s.Difficulty,
			fmt.Sprintf("%d/%d", s.Correct, s.Answered),
			summary.FormatDuration(s.Elapsed),
			summary.Headline(quiz.EndReason(s.EndReason)),
		)
	}
}
