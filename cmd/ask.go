package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/abhisek/aprova/internal/tutor"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [pergunta]",
	Short: "Pergunta ao tutor por texto",
	Long: `Ask the text tutor a question. With no arguments an interactive chat
starts; an empty line or EOF ends it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("persona")
		persona, err := tutor.ParsePersona(name)
		if err != nil {
			return err
		}

		env, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		t := env.tutor(persona)
		if t == nil {
			return errNoLLM
		}
		ctx := cmd.Context()

		if len(args) > 0 {
			reply, err := t.Ask(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(reply)
			return nil
		}

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("Você: ")
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				return nil
			}
			reply, err := t.Ask(ctx, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
				continue
			}
			fmt.Printf("Tutor: %s\n\n", reply)
		}
	},
}

func init() {
	askCmd.Flags().String("persona", string(tutor.PersonaTutor), "Persona: tutor or mentor")
}
