// Package selection holds the "currently selected" item of a list panel
// and tells interested panels when it changes.
//
// A Holder has one slot. Every assignment, including assigning the value
// already stored, is a change: the slot is updated first and then every
// registered ChangeListener is called synchronously, in registration order,
// on the caller's goroutine. Listener registrations are bound to a
// lifecycle.Scope and end when the scope is disposed.
//
// A Holder is not safe for concurrent use. In prgrip it is only touched
// from the bubbletea Update loop.
package selection

import (
	"prgrip/internal/dispatch"
	"prgrip/internal/lifecycle"
	"prgrip/internal/log"
)

// ChangeListener is implemented by anything that reacts to a new selection.
// Implementations read the new value back from the holder.
type ChangeListener interface {
	SelectionChanged()
}

// ListenerFunc adapts a function to a ChangeListener. Use OnChange to get
// a registrable handle; function values cannot be compared for dedupe.
type ListenerFunc func()

type funcListener struct{ fn ListenerFunc }

func (f *funcListener) SelectionChanged() { f.fn() }

// OnChange wraps fn in a listener with its own identity.
func OnChange(fn ListenerFunc) ChangeListener {
	return &funcListener{fn: fn}
}

// Holder stores at most one selected value of type T.
type Holder[T any] struct {
	current   T
	set       bool
	listeners *dispatch.Dispatcher[ChangeListener]
	depth     int
}

// NewHolder creates a holder with nothing selected.
func NewHolder[T any]() *Holder[T] {
	return &Holder[T]{
		listeners: dispatch.New[ChangeListener](),
	}
}

// Current returns the selected value and whether one is set.
func (h *Holder[T]) Current() (T, bool) {
	return h.current, h.set
}

// SetCurrent stores v and notifies every listener.
func (h *Holder[T]) SetCurrent(v T) {
	h.current = v
	h.set = true
	h.fire()
}

// Clear unsets the slot and notifies every listener.
func (h *Holder[T]) Clear() {
	var zero T
	h.current = zero
	h.set = false
	h.fire()
}

// AddChangeListener registers l until scope is disposed. Registering the
// same listener again is a no-op. A nil or disposed scope is rejected so
// that no registration can outlive its owner.
func (h *Holder[T]) AddChangeListener(l ChangeListener, scope *lifecycle.Scope) error {
	return h.listeners.AddListener(l, scope)
}

// ListenerCount returns the number of live registrations.
func (h *Holder[T]) ListenerCount() int {
	return h.listeners.Len()
}

// fire does not recover: a panicking listener aborts the rest of the pass
// and unwinds into SetCurrent's caller.
func (h *Holder[T]) fire() {
	if h.depth > 0 {
		log.Warn(log.CatSelection, "selection changed from inside a listener", "depth", h.depth)
	}
	h.depth++
	defer func() { h.depth-- }()

	h.listeners.Multicast(func(l ChangeListener) {
		l.SelectionChanged()
	})
}
