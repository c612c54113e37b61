package conversation

import (
	"context"
	"time"

	"github.com/hyperjump/pdfchat/internal/answer"
	"github.com/hyperjump/pdfchat/internal/llm"
	"github.com/hyperjump/pdfchat/internal/models"
	"go.uber.org/zap"
)

// Router retrieves context for a standalone query.
type Router interface {
	Route(ctx context.Context, query string) (*models.Retrieval, error)
}

// Engine answers chat turns over one index. It is not safe for concurrent use; the
// session serializes calls.
type Engine struct {
	router    Router
	condenser *Condenser
	composer  *answer.Composer
	memory    *Memory
	filenames []string
	logger    *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for per-turn debug output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine. filenames are the uploaded files used by the vague-question
// rewrite; memoryLimit bounds the history in tokens.
func NewEngine(router Router, client llm.Client, filenames []string, memoryLimit int, opts ...EngineOption) *Engine {
	e := &Engine{
		router:    router,
		condenser: NewCondenser(client),
		memory:    NewMemory(memoryLimit),
		filenames: append([]string(nil), filenames...),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.composer = answer.NewComposer(client, e.logger)
	return e
}

// Chat rewrites a vague question, condenses it with history, routes it, composes the final
// answer and records the turn. Memory is only updated when every step succeeds.
func (e *Engine) Chat(ctx context.Context, question string) (*models.ChatResponse, error) {
	start := time.Now()
	rewritten := RewriteIfVague(question, e.filenames)

	standalone, err := e.condenser.Condense(ctx, e.memory.Turns(), rewritten)
	if err != nil {
		return nil, err
	}
	retrieval, err := e.router.Route(ctx, standalone)
	if err != nil {
		return nil, err
	}
	text, err := e.composer.Compose(ctx, rewritten, retrieval)
	if err != nil {
		return nil, err
	}

	e.memory.Append(
		models.Turn{Role: models.RoleUser, Content: rewritten},
		models.Turn{Role: models.RoleAssistant, Content: text},
	)
	resp := &models.ChatResponse{
		Question:        question,
		StandaloneQuery: standalone,
		Answer:          text,
		Retrieval:       retrieval,
		QueryTime:       time.Since(start).Milliseconds(),
	}
	if rewritten != question {
		resp.Rewritten = rewritten
	}
	e.logger.Debug("chat turn",
		zap.String("question", question),
		zap.String("standalone", standalone),
		zap.Strings("strategies", retrieval.Strategies),
		zap.Int("memory_tokens", e.memory.Tokens()))
	return resp, nil
}

// History returns the remembered turns.
func (e *Engine) History() []models.Turn {
	return e.memory.Turns()
}

// Reset clears the memory.
func (e *Engine) Reset() {
	e.memory.Reset()
}
