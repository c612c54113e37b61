package utils

import (
	"math/rand"
	"time"
)

// maxBackoff caps a single retry wait.
const maxBackoff = 30 * time.Second

// CalculateBackoff returns an exponential delay for the given attempt with up to
// 25% jitter either way. Attempt 0 (the first try) waits nothing.
func CalculateBackoff(base time.Duration, attempt int) time.Duration {
	if attempt <= 0 || base <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	backoff := base * time.Duration(1<<uint(attempt))
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(backoff)/2+1)) - backoff/4
	return backoff + jitter
}
