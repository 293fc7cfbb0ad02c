package cmd

import (
	"fmt"

	"github.com/abhisek/aprova/internal/config"
	"github.com/abhisek/aprova/internal/questiongen"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Lista bancas, matérias e dificuldades disponíveis",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults := config.Default().Quiz
		printList("Bancas", questiongen.Sources, defaults.Source)
		printList("Matérias", questiongen.Subjects, defaults.Subject)
		printList("Dificuldades", questiongen.Difficulties, defaults.Difficulty)
		return nil
	},
}

func printList(title string, items []string, def string) {
	fmt.Println(title)
	for _, it := range items {
		marker := "  "
		if it == def {
			marker = "* "
		}
		fmt.Printf("  %s%s\n", marker, it)
	}
	fmt.Println()
}
