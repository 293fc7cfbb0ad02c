package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `Você é um elaborador de questões de concursos públicos no Brasil.

Regras:
- Gere uma questão de múltipla escolha inédita, no estilo da banca indicada, para a matéria indicada.
- A questão deve ter exatamente 5 alternativas, identificadas de A a E, nesta ordem.
- Exatamente uma alternativa é correta. As incorretas devem refletir erros comuns de candidatos.
- O enunciado deve ser claro, autocontido e em português do Brasil.
- Ajuste a complexidade ao nível de dificuldade pedido.
- A explicação deve justificar a alternativa correta e apontar o erro das demais.
- Não repita nenhuma questão da lista "Já perguntadas".
- Retorne apenas JSON no formato pedido.`

// buildUserMessage constructs the user message from GenerateInput and Config limits.
func buildUserMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Gere uma questão de múltipla escolha inédita no estilo da banca %s para a matéria de %s.\n",
		input.Source, input.Subject)
	if input.Difficulty != "" {
		fmt.Fprintf(&b, "Dificuldade: %s\n", input.Difficulty)
	}
	b.WriteString("A questão deve ter 5 alternativas (A-E).\n")

	b.WriteString("\nJá perguntadas neste simulado:\n")
	b.WriteString(buildDedup(input.PriorStatements, cfg.MaxPriorStatements))

	return b.String()
}
