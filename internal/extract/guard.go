package extract

import (
	"io"
	"os"
	"sync"
)

// StreamGuard scopes suppression of the process standard streams around
// extraction calls. Acquire and Release nest: the redirection is
// installed when the first holder arrives and undone when the last one
// leaves, so concurrent extractions never restore the streams out from
// under each other.
type StreamGuard interface {
	Acquire()
	Release()
	// Stdout and Stderr stay connected to the original streams even
	// while suppression is active. Console logging and user-facing
	// output must write through these.
	Stdout() io.Writer
	Stderr() io.Writer
	Close() error
}

// fdGuard carries the reference counting; the platform constructor
// supplies the actual redirection calls. Any failed call marks the
// guard broken and it stops touching descriptors for the rest of the
// process lifetime.
type fdGuard struct {
	mu      sync.Mutex
	depth   int
	broken  bool
	silence func() error
	restore func() error
	closer  func() error
	out     io.Writer
	errOut  io.Writer
}

func (g *fdGuard) Acquire() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.depth++
	if g.depth > 1 || g.broken {
		return
	}
	if err := g.silence(); err != nil {
		g.broken = true
	}
}

func (g *fdGuard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.depth == 0 {
		return
	}
	g.depth--
	if g.depth > 0 || g.broken {
		return
	}
	if err := g.restore(); err != nil {
		g.broken = true
	}
}

func (g *fdGuard) Stdout() io.Writer { return g.out }
func (g *fdGuard) Stderr() io.Writer { return g.errOut }

func (g *fdGuard) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.depth > 0 && !g.broken {
		_ = g.restore()
	}
	g.depth = 0
	g.broken = true
	if g.closer != nil {
		return g.closer()
	}
	return nil
}

type noopGuard struct{}

func (noopGuard) Acquire()          {}
func (noopGuard) Release()          {}
func (noopGuard) Stdout() io.Writer { return os.Stdout }
func (noopGuard) Stderr() io.Writer { return os.Stderr }
func (noopGuard) Close() error      { return nil }

// NewNoopGuard returns a guard that never touches the process streams.
func NewNoopGuard() StreamGuard {
	return noopGuard{}
}
