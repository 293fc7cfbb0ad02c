package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/abhisek/aprova/internal/config"
	"github.com/abhisek/aprova/internal/llm"
	"github.com/abhisek/aprova/internal/logging"
	"github.com/abhisek/aprova/internal/questiongen"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Gera questões e permite respondê-las no terminal (sem banco de dados)",
	Long: `Generate and interactively answer questions for a banca, matéria and difficulty.

This is a stateless developer tool — no database, no performance tracking, no events.
Useful for evaluating question quality and tuning prompts.`,
	RunE: runPreview,
}

func init() {
	defaults := config.Default().Quiz
	previewCmd.Flags().String("source", defaults.Source, "Banca: "+strings.Join(questiongen.Sources, ", "))
	previewCmd.Flags().String("subject", defaults.Subject, "Matéria: "+strings.Join(questiongen.Subjects, ", "))
	previewCmd.Flags().String("difficulty", defaults.Difficulty, "Dificuldade: "+strings.Join(questiongen.Difficulties, ", "))
	previewCmd.Flags().Int("count", 5, "Number of questions to generate")
}

func runPreview(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")
	subject, _ := cmd.Flags().GetString("subject")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("count")

	switch {
	case !questiongen.IsSource(source):
		return fmt.Errorf("banca inválida %q: use uma de %s", source, strings.Join(questiongen.Sources, ", "))
	case !questiongen.IsSubject(subject):
		return fmt.Errorf("matéria inválida %q: use uma de %s", subject, strings.Join(questiongen.Subjects, ", "))
	case !questiongen.IsDifficulty(difficulty):
		return fmt.Errorf("dificuldade inválida %q: use uma de %s", difficulty, strings.Join(questiongen.Difficulties, ", "))
	case count < 1:
		return fmt.Errorf("--count deve ser ao menos 1")
	}

	logger, err := logging.New("development", "warn")
	if err != nil {
		return err
	}
	defer logger.Sync()

	// No EventRepo: logging to the database is skipped.
	ctx := cmd.Context()
	provider, err := llm.NewProviderFromEnv(ctx, nil, logger)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	gen := questiongen.NewRetrying(questiongen.New(provider, questiongen.DefaultConfig()), generationAttempts, logger)
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Printf("Banca: %s — %s (%s)\n", source, subject, difficulty)
	fmt.Printf("Gerando %d questões...\n\n", count)

	var correct int
	var prior []string

	for i := 1; i <= count; i++ {
		q, err := gen.Generate(ctx, questiongen.GenerateInput{
			Source:          source,
			Subject:         subject,
			Difficulty:      difficulty,
			PriorStatements: prior,
		})
		if err != nil {
			fmt.Printf("Questão %d: falha na geração: %v\n\n", i, err)
			continue
		}
		prior = append(prior, q.Statement)

		fmt.Printf("── Questão %d/%d ──\n", i, count)
		fmt.Println(q.Statement)
		for _, o := range q.Options {
			fmt.Printf("  %s) %s\n", o.ID, o.Text)
		}

		fmt.Print("\nSua resposta: ")
		if !scanner.Scan() {
			fmt.Println("\n(entrada encerrada)")
			break
		}
		answer := parseOptionAnswer(scanner.Text(), q)
		if answer == "" {
			fmt.Print("(pulada)\n\n")
			continue
		}

		if q.IsCorrect(answer) {
			correct++
			fmt.Println("\033[32m✓ Correto!\033[0m")
		} else {
			fmt.Printf("\033[31m✗ Incorreto.\033[0m Resposta: %s\n", q.CorrectOptionID)
		}

		if q.Explanation != "" {
			fmt.Printf("Explicação: %s\n", q.Explanation)
		}
		fmt.Println()
	}

	fmt.Printf("── Resumo: %d/%d corretas ──\n", correct, count)
	return nil
}

// parseOptionAnswer accepts an option letter in any case or its 1-based
// position. It returns "" for blank or unknown input.
func parseOptionAnswer(raw string, q *questiongen.Question) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > len(q.Options) {
			return ""
		}
		return q.Options[n-1].ID
	}
	if _, ok := q.Option(s); ok {
		return s
	}
	return ""
}
