// Package answer composes the final grounded answer from retrieved context.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/pdfchat/internal/llm"
	"github.com/hyperjump/pdfchat/internal/models"
	"go.uber.org/zap"
)

// NotAvailable is the reply the model is told to give when the context cannot answer.
const NotAvailable = "The information you requested is not available in the context."

// SystemPrompt restricts the model to the retrieved context.
const SystemPrompt = `You are an assistant designed to help users understand and analyze the provided context.
Answer all questions, summarize content, and extract information strictly based on the input context.
Do not rely on prior knowledge or speculate.

If the context is insufficient to respond, reply with:
"` + NotAvailable + `"

When possible, cite the source of the information using this format:
(Reference: SourceName or metadata like filename, page number, etc.)

Always be clear, structured, and precise.`

// BuildPrompt lays out the final generation prompt.
func BuildPrompt(question, context string) string {
	return SystemPrompt + "\n\nQuestion: " + question + "\n\nContext:\n" + context + "\n\nAnswer:"
}

// Composer turns a question and its retrieval into the user-facing answer.
type Composer struct {
	client llm.Client
	logger *zap.Logger
}

// NewComposer creates a composer.
func NewComposer(client llm.Client, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{client: client, logger: logger}
}

// Compose issues exactly one generation call. A nil retrieval is treated as empty context.
func (c *Composer) Compose(ctx context.Context, question string, retrieval *models.Retrieval) (string, error) {
	var contextText string
	if retrieval != nil {
		contextText = retrieval.Context
	}
	prompt := BuildPrompt(question, contextText)
	c.logger.Debug("composing answer", zap.Int("prompt_chars", len(prompt)))
	out, err := c.client.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return strings.TrimSpace(out), nil
}
