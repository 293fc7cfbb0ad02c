package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Zera o registro de desempenho",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Print("Zerar todo o desempenho registrado? [s/N] ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if !isYes(line) {
				fmt.Println("Cancelado.")
				return nil
			}
		}

		env, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.perf.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("reset performance: %w", err)
		}
		fmt.Println("Desempenho zerado.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}
