package models

import (
	"fmt"
	"strings"
)

// ChatRequest is the body of a chat call.
type ChatRequest struct {
	Question string `json:"question"`
}

// Validate trims the question and rejects empty input.
func (q *ChatRequest) Validate() error {
	q.Question = strings.TrimSpace(q.Question)
	if q.Question == "" {
		return fmt.Errorf("question cannot be empty")
	}
	return nil
}

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message held in conversation memory.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
