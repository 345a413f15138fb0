package llm

import (
	"context"
	"fmt"
	"strings"

	"orgchat/internal/core/domain"
)

// promptTemplate is the secure chatbot persona. The RBAC rules are stated
// in the prompt as defense in depth; the retrieval filter, not the model,
// is what actually restricts the context.
const promptTemplate = `You are an AI-Powered Offline Organizational Chatbot.
Background:
Organisations generate and store vast amounts of employee information across HR, administration, and employee portals. Traditional systems require manual navigation through multiple apps. You simplify this by letting employees, managers, and HR query data conversationally.

Key Rules:
- Ensure data security.
- Apply role-based access control (RBAC):
  - Admins: Can access all employee data.
  - Managers: Can only access their department's data.
  - Employees: Can only access their own data.
- Never invent or expose data you don't have access to.
- Always run offline without using external services.

Retrieved context:
%s

Question: %s
Role: %s
Department: %s

Answer concisely, securely, and based only on retrieved information.`

// Generator adapts the Ollama client to the orchestrator's generation
// capability: question plus restricted context in, answer text out.
type Generator struct {
	client *Client
}

// NewGenerator wraps an Ollama client.
func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

// Generate renders the persona prompt with the retrieved documents and
// returns the model's answer verbatim.
func (g *Generator) Generate(ctx context.Context, question, role, department string, docs []domain.Document) (string, error) {
	var contextBlock strings.Builder
	if len(docs) == 0 {
		contextBlock.WriteString("(no matching records)")
	}
	for i, doc := range docs {
		if i > 0 {
			contextBlock.WriteString("\n---\n")
		}
		contextBlock.WriteString(doc.Text)
	}

	prompt := fmt.Sprintf(promptTemplate, contextBlock.String(), question, role, department)

	answer, err := g.client.Complete(ctx, prompt)
	if err != nil {
		return "", domain.ErrGenerationUnavailable
	}
	return answer, nil
}
