package recipe

import (
	"fmt"
	"sync"
	"time"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

type evalResult struct {
	recipe *Recipe
	errors []EvalError
	err    error
}

// waitWithTimeout waits up to limit for a result from ch. A result whose
// generation is no longer current is discarded: a newer Evaluate call has
// started since. On timeout the evaluating goroutine may still be running;
// its late result goes nowhere because ch is buffered.
func waitWithTimeout(
	ch <-chan evalResult,
	limit time.Duration,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
) (*Recipe, []EvalError, error) {
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.recipe, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", limit)
	}
}
