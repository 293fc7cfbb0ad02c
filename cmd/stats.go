package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abhisek/aprova/internal/performance"
	"github.com/abhisek/aprova/internal/questiongen"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Mostra o desempenho geral e por matéria",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		printStats(os.Stdout, env.perf.Snapshot())
		return nil
	},
}

const statsBarWidth = 20

// printStats renders the performance record as a text dashboard.
func printStats(w io.Writer, rec performance.Record) {
	if rec.TotalAnswered == 0 {
		fmt.Fprintln(w, "Nenhuma questão respondida ainda.")
		return
	}

	fmt.Fprintf(w, "Geral: %d/%d corretas (%.0f%%)\n", rec.CorrectAnswers, rec.TotalAnswered, rec.Accuracy()*100)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, row := range rec.Breakdown(questiongen.Subjects) {
		fmt.Fprintf(w, "%-24s %s %3.0f%%  %d/%d\n",
			row.Subject, textBar(row.Accuracy(), statsBarWidth), row.Accuracy()*100, row.Correct, row.Total)
	}
}

func textBar(ratio float64, width int) string {
	filled := int(ratio*float64(width) + 0.5)
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
