//go:build !unix

package extract

// NewStreamGuard returns an inert guard on platforms without POSIX
// descriptor redirection.
func NewStreamGuard() StreamGuard {
	return NewNoopGuard()
}
