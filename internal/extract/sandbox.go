package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout bounds one extraction call.
const DefaultTimeout = 120 * time.Second

// Sandbox runs an Engine under a hard wall-clock deadline, converts
// panics into Crashed outcomes, and holds the stream guard for the
// duration of the call. A call that outlives the deadline is abandoned:
// its goroutine exits on its own once the engine notices the canceled
// context or finishes into the dropped buffer slot, releasing the guard
// as it goes.
type Sandbox struct {
	engine  Engine
	guard   StreamGuard
	timeout time.Duration
}

// NewSandbox wires an engine to its stream guard. A nil guard falls
// back to the inert guard and a non-positive timeout to DefaultTimeout.
func NewSandbox(engine Engine, guard StreamGuard, timeout time.Duration) *Sandbox {
	if guard == nil {
		guard = NewNoopGuard()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sandbox{engine: engine, guard: guard, timeout: timeout}
}

// Extract runs one extraction call and always returns exactly one
// outcome, whichever of the engine result or the deadline arrives
// first.
func (s *Sandbox) Extract(ctx context.Context, path string) Outcome {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make(chan Outcome, 1)
	go func() {
		s.guard.Acquire()
		defer s.guard.Release()
		defer func() {
			if r := recover(); r != nil {
				results <- Outcome{Status: StatusCrashed, Detail: fmt.Sprint(r)}
			}
		}()
		results <- s.invoke(callCtx, path)
	}()

	select {
	case outcome := <-results:
		return outcome
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return Outcome{Status: StatusTimeout, Detail: fmt.Sprintf("no result within %s", s.timeout)}
		}
		return Outcome{Status: StatusError, Detail: callCtx.Err().Error()}
	}
}

func (s *Sandbox) invoke(ctx context.Context, path string) Outcome {
	text, err := s.engine.ExtractText(ctx, path)
	if err != nil {
		return Outcome{Status: StatusError, Detail: err.Error()}
	}
	if strings.TrimSpace(text) == "" {
		return Outcome{Status: StatusEmpty}
	}
	return Outcome{Status: StatusText, Text: text}
}
