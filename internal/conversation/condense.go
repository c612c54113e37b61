package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/pdfchat/internal/llm"
	"github.com/hyperjump/pdfchat/internal/models"
)

const condensePromptTemplate = `Given a conversation (between Human and Assistant) and a follow up message from Human, rewrite the message to be a standalone question that captures all relevant context from the conversation.

<Chat History>
%s

<Follow Up Message>
%s

<Standalone question>
`

// Condenser rewrites a follow-up question into a standalone query using chat history.
type Condenser struct {
	client llm.Client
}

// NewCondenser creates a condenser.
func NewCondenser(client llm.Client) *Condenser {
	return &Condenser{client: client}
}

// Condense returns question unchanged when history is empty; otherwise it asks the LLM.
// An empty reply also falls back to the question.
func (c *Condenser) Condense(ctx context.Context, history []models.Turn, question string) (string, error) {
	if len(history) == 0 {
		return question, nil
	}
	out, err := c.client.Complete(ctx, fmt.Sprintf(condensePromptTemplate, formatHistory(history), question))
	if err != nil {
		return "", fmt.Errorf("failed to condense question: %w", err)
	}
	if out = strings.TrimSpace(out); out == "" {
		return question, nil
	}
	return out, nil
}

func formatHistory(history []models.Turn) string {
	lines := make([]string, len(history))
	for i, t := range history {
		speaker := "Human"
		if t.Role == models.RoleAssistant {
			speaker = "Assistant"
		}
		lines[i] = speaker + ": " + t.Content
	}
	return strings.Join(lines, "\n")
}
