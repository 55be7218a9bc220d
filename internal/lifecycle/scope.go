// Package lifecycle provides disposable scopes. A Scope collects release
// actions and runs each of them exactly once when the scope ends.
package lifecycle

import (
	"errors"

	"prgrip/internal/log"
)

var (
	// ErrNilScope is returned when a registration is attempted without a scope.
	ErrNilScope = errors.New("lifecycle: nil scope")
	// ErrScopeDisposed is returned when registering on a scope that already ended.
	ErrScopeDisposed = errors.New("lifecycle: scope already disposed")
)

// Scope owns a list of release actions. It is not safe for concurrent use;
// callers serialize access on the UI goroutine.
type Scope struct {
	name     string
	releases []func()
	children []*Scope
	parent   *Scope
	disposed bool
	done     chan struct{}
}

// New creates a root scope.
func New(name string) *Scope {
	return &Scope{
		name: name,
		done: make(chan struct{}),
	}
}

// NewChild creates a scope that is disposed together with parent, before
// any of parent's own release actions run. If parent is already disposed
// the child is returned disposed.
func NewChild(parent *Scope, name string) *Scope {
	child := New(name)
	if parent == nil {
		return child
	}
	if parent.disposed {
		child.Dispose()
		return child
	}
	child.parent = parent
	parent.children = append(parent.children, child)
	return child
}

// Register adds a release action. Actions run in reverse registration order.
func (s *Scope) Register(release func()) error {
	if s == nil {
		return ErrNilScope
	}
	if s.disposed {
		return ErrScopeDisposed
	}
	s.releases = append(s.releases, release)
	return nil
}

// Disposed reports whether Dispose has run.
func (s *Scope) Disposed() bool {
	return s.disposed
}

// Done is closed when the scope is disposed.
func (s *Scope) Done() <-chan struct{} {
	return s.done
}

// Dispose ends the scope. Children go first, then the scope's own release
// actions in LIFO order. Calling Dispose again does nothing.
func (s *Scope) Dispose() {
	if s == nil || s.disposed {
		return
	}
	s.disposed = true

	children := s.children
	s.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	releases := s.releases
	s.releases = nil
	for i := len(releases) - 1; i >= 0; i-- {
		releases[i]()
	}

	if s.parent != nil {
		s.parent.detach(s)
		s.parent = nil
	}
	close(s.done)
	log.Debug(log.CatApp, "scope disposed", "scope", s.name, "releases", len(releases))
}

func (s *Scope) detach(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
