package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/aprova/internal/llm"
	"github.com/abhisek/aprova/internal/store"
	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspeciona as chamadas ao LLM (geração de questões e tutor)",
}

// openStore opens the database without building the rest of the
// environment.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista as chamadas recentes ao LLM",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		printLLMEvents(cmd.OutOrStdout(), events)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Mostra a requisição e a resposta completas de uma chamada",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("ID inválido %q", args[0])
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("evento %d não encontrado", id)
		}
		printLLMEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Mostra o consumo de tokens e o custo estimado",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		printLLMUsage(cmd.OutOrStdout(), byPurpose, byModel)
		return nil
	},
}

func printLLMEvents(w io.Writer, events []store.LLMRequestEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "Nenhuma chamada ao LLM registrada.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-19s  %-14s  %-28s  %-6s  %-6s  %-7s  %-10s  %s\n",
		"ID", "Data", "Finalidade", "Modelo", "Entr.", "Saída", "Ms", "Parada", "OK")
	fmt.Fprintln(w, strings.Repeat("─", 112))

	for _, e := range events {
		ok := "✓"
		if !e.Success {
			ok = "✗"
		}
		stop := e.StopReason
		if stop == "" {
			stop = "-"
		}
		fmt.Fprintf(w, "%-5d  %-19s  %-14s  %-28s  %-6d  %-6d  %-7d  %-10s  %s\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Purpose,
			truncate(e.Model, 28),
			e.InputTokens,
			e.OutputTokens,
			e.LatencyMs,
			stop,
			ok,
		)
	}
}

func printLLMEvent(w io.Writer, e *store.LLMRequestEvent) {
	sep := strings.Repeat("─", 60)

	fmt.Fprintf(w, "ID:          %d\n", e.ID)
	fmt.Fprintf(w, "Data:        %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Provedor:    %s\n", e.Provider)
	fmt.Fprintf(w, "Modelo:      %s\n", e.Model)
	fmt.Fprintf(w, "Finalidade:  %s\n", e.Purpose)
	fmt.Fprintf(w, "Tokens:      %d entrada / %d saída\n", e.InputTokens, e.OutputTokens)
	fmt.Fprintf(w, "Latência:    %dms\n", e.LatencyMs)
	fmt.Fprintf(w, "Sucesso:     %v\n", e.Success)
	if e.StopReason != "" {
		fmt.Fprintf(w, "Parada:      %s\n", e.StopReason)
	}
	if e.ErrorMessage != "" {
		fmt.Fprintf(w, "Erro:        %s\n", e.ErrorMessage)
	}

	for _, section := range []struct{ title, body string }{
		{"REQUISIÇÃO", e.RequestBody},
		{"RESPOSTA", e.ResponseBody},
	} {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sep)
		fmt.Fprintln(w, section.title)
		fmt.Fprintln(w, sep)
		if section.body == "" {
			fmt.Fprintln(w, "(não capturado)")
		} else {
			fmt.Fprintln(w, section.body)
		}
	}
}

func printLLMUsage(w io.Writer, byPurpose []store.PurposeUsage, byModel []store.ModelUsage) {
	if len(byPurpose) == 0 {
		fmt.Fprintln(w, "Nenhum uso de LLM registrado ainda.")
		return
	}
	rule := strings.Repeat("─", 72)

	fmt.Fprintln(w, "Uso por finalidade")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-16s  %6s  %10s  %10s  %10s  %8s\n",
		"Finalidade", "Chamadas", "Entrada", "Saída", "Total", "Ms médio")
	fmt.Fprintln(w, rule)

	var totalCalls, totalIn, totalOut int
	for _, st := range byPurpose {
		fmt.Fprintf(w, "%-16s  %8d  %10d  %10d  %10d  %8d\n",
			st.Purpose, st.Calls, st.InputTokens, st.OutputTokens,
			st.InputTokens+st.OutputTokens, st.AvgLatencyMs)
		totalCalls += st.Calls
		totalIn += st.InputTokens
		totalOut += st.OutputTokens
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-16s  %8d  %10d  %10d  %10d\n",
		"TOTAL", totalCalls, totalIn, totalOut, totalIn+totalOut)

	if len(byModel) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Custo estimado (USD)")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-32s  %8s  %10s  %10s  %10s\n",
		"Modelo", "Chamadas", "Entrada", "Saída", "Custo")
	fmt.Fprintln(w, rule)

	var totalCost float64
	var unknown []string
	for _, mu := range byModel {
		costStr := "?"
		if cost := llm.LookupCost(mu.Model); cost != nil {
			c := cost.Cost(mu.InputTokens, mu.OutputTokens)
			totalCost += c
			costStr = formatCost(c)
		} else {
			unknown = append(unknown, mu.Model)
		}
		fmt.Fprintf(w, "%-32s  %8d  %10d  %10d  %10s\n",
			truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, costStr)
	}

	fmt.Fprintln(w, rule)
	label := "TOTAL"
	if len(unknown) > 0 {
		label = "TOTAL (parcial)"
	}
	fmt.Fprintf(w, "%-32s  %8s  %10s  %10s  %10s\n", label, "", "", "", formatCost(totalCost))
	if len(unknown) > 0 {
		fmt.Fprintf(w, "\nPreço indisponível para: %s\n", strings.Join(unknown, ", "))
	}
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Quantidade de chamadas a listar")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filtra por finalidade (ex.: question-gen, tutor)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
