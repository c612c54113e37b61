// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"strings"
	"sync"
)

// Fake records prompts and answers them from Respond, or from Replies in order, or with
// Default.
type Fake struct {
	Respond func(prompt string) (string, error)
	Replies []string
	Default string
	Err     error

	mu      sync.Mutex
	prompts []string
}

// Complete implements llm.Client.
func (f *Fake) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	if f.Respond != nil {
		return f.Respond(prompt)
	}
	if len(f.Replies) > 0 {
		r := f.Replies[0]
		f.Replies = f.Replies[1:]
		return r, nil
	}
	return f.Default, nil
}

// Prompts returns every prompt received so far.
func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.prompts))
	copy(out, f.prompts)
	return out
}

// Calls returns the number of Complete calls.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// CallsContaining counts prompts that contain substr.
func (f *Fake) CallsContaining(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.prompts {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}
