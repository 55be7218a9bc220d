// Package dispatch implements a synchronous multicast listener registry
// whose registrations are tied to lifecycle scopes.
package dispatch

import (
	"errors"
	"reflect"

	"prgrip/internal/lifecycle"
)

// ErrNilListener is returned when AddListener is called with a nil listener.
var ErrNilListener = errors.New("dispatch: nil listener")

type entry[L any] struct {
	listener L
	removed  bool
}

// Dispatcher keeps listeners in registration order. A listener is stored
// at most once; identity is interface equality for comparable dynamic
// types and never-equal otherwise.
//
// Dispatcher does no locking. All calls must happen on one goroutine.
type Dispatcher[L any] struct {
	entries []*entry[L]
}

// New creates an empty dispatcher.
func New[L any]() *Dispatcher[L] {
	return &Dispatcher[L]{}
}

// AddListener registers l and arranges for its removal when scope is
// disposed. Adding a listener that is already registered is a no-op.
func (d *Dispatcher[L]) AddListener(l L, scope *lifecycle.Scope) error {
	if isNil(l) {
		return ErrNilListener
	}
	if scope == nil {
		return lifecycle.ErrNilScope
	}
	if scope.Disposed() {
		return lifecycle.ErrScopeDisposed
	}
	if d.indexOf(l) >= 0 {
		return nil
	}

	e := &entry[L]{listener: l}
	if err := scope.Register(func() { d.remove(e) }); err != nil {
		return err
	}
	d.entries = append(d.entries, e)
	return nil
}

// RemoveListener unregisters l ahead of its scope. The scope's release
// action later becomes a no-op.
func (d *Dispatcher[L]) RemoveListener(l L) {
	if i := d.indexOf(l); i >= 0 {
		d.remove(d.entries[i])
	}
}

// Multicast calls fn for every listener in registration order. Listeners
// removed while the pass is running are skipped if not yet reached. A panic
// in fn propagates to the caller and ends the pass.
func (d *Dispatcher[L]) Multicast(fn func(L)) {
	snapshot := make([]*entry[L], len(d.entries))
	copy(snapshot, d.entries)
	for _, e := range snapshot {
		if e.removed {
			continue
		}
		fn(e.listener)
	}
}

// Len returns the number of registered listeners.
func (d *Dispatcher[L]) Len() int {
	return len(d.entries)
}

func (d *Dispatcher[L]) remove(target *entry[L]) {
	if target.removed {
		return
	}
	target.removed = true
	for i, e := range d.entries {
		if e == target {
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			return
		}
	}
}

func (d *Dispatcher[L]) indexOf(l L) int {
	for i, e := range d.entries {
		if sameListener(e.listener, l) {
			return i
		}
	}
	return -1
}

func sameListener[L any](a, b L) bool {
	va, vb := any(a), any(b)
	ta, tb := reflect.TypeOf(va), reflect.TypeOf(vb)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}
	return va == vb
}

func isNil[L any](l L) bool {
	v := any(l)
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
