package scene

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's limit.
	ErrTimeout = errors.New("scene: evaluation timed out")
	// ErrSuperseded is returned for an evaluation that finished after a
	// newer call to Evaluate started.
	ErrSuperseded = errors.New("scene: evaluation superseded by a newer request")
)

type evalResult struct {
	scene  *Scene
	errors []EvalError
	err    error
}

// await blocks until the evaluation tagged gen reports on ch or the time
// limit passes. A timed-out script keeps its goroutine until zygomys
// returns, so ch must be buffered.
func (e *Engine) await(ch <-chan evalResult, gen uint64) (*Scene, []EvalError, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	select {
	case res := <-ch:
		if !e.isCurrent(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.scene, res.errors, res.err
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}

func (e *Engine) isCurrent(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}
