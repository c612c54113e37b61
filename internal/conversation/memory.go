package conversation

import (
	"github.com/hyperjump/pdfchat/internal/models"
	"github.com/hyperjump/pdfchat/pkg/utils"
)

// Memory is an ordered, token-bounded list of turns. When the total exceeds the limit the
// oldest turns are evicted, and history never starts with an assistant turn.
type Memory struct {
	limit  int
	turns  []models.Turn
	tokens int
}

// NewMemory creates an empty memory bounded to limit tokens.
func NewMemory(limit int) *Memory {
	return &Memory{limit: limit}
}

// Append adds turns in order, then evicts from the front until the memory fits.
func (m *Memory) Append(turns ...models.Turn) {
	for _, t := range turns {
		m.turns = append(m.turns, t)
		m.tokens += utils.CountTokens(t.Content)
	}
	for len(m.turns) > 0 && (m.tokens > m.limit || m.turns[0].Role == models.RoleAssistant) {
		m.tokens -= utils.CountTokens(m.turns[0].Content)
		m.turns = m.turns[1:]
	}
}

// Turns returns a copy of the remembered turns, oldest first.
func (m *Memory) Turns() []models.Turn {
	out := make([]models.Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Tokens returns the current token estimate.
func (m *Memory) Tokens() int { return m.tokens }

// Len returns the number of remembered turns.
func (m *Memory) Len() int { return len(m.turns) }

// Reset forgets every turn.
func (m *Memory) Reset() {
	m.turns = nil
	m.tokens = 0
}
