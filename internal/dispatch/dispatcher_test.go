package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"prgrip/internal/lifecycle"
)

type pinger interface {
	Ping()
}

type recorder struct {
	name string
	log  *[]string
}

func (r *recorder) Ping() { *r.log = append(*r.log, r.name) }

func TestDispatcher_MulticastInRegistrationOrder(t *testing.T) {
	d := New[pinger]()
	scope := lifecycle.New("test")
	var got []string

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, d.AddListener(&recorder{name: name, log: &got}, scope))
	}

	d.Multicast(func(p pinger) { p.Ping() })

	require.Equal(t, []string{"a", "b", "c"}, got)
}

func TestDispatcher_DeduplicatesByIdentity(t *testing.T) {
	d := New[pinger]()
	scope := lifecycle.New("test")
	var got []string
	r := &recorder{name: "a", log: &got}

	require.NoError(t, d.AddListener(r, scope))
	require.NoError(t, d.AddListener(r, scope))
	d.Multicast(func(p pinger) { p.Ping() })

	require.Equal(t, 1, d.Len())
	require.Equal(t, []string{"a"}, got)
}

func TestDispatcher_ScopeDisposalRemovesListener(t *testing.T) {
	d := New[pinger]()
	keep := lifecycle.New("keep")
	drop := lifecycle.New("drop")
	var got []string

	require.NoError(t, d.AddListener(&recorder{name: "kept", log: &got}, keep))
	require.NoError(t, d.AddListener(&recorder{name: "dropped", log: &got}, drop))

	drop.Dispose()
	d.Multicast(func(p pinger) { p.Ping() })

	require.Equal(t, []string{"kept"}, got)
	require.Equal(t, 1, d.Len())
}

func TestDispatcher_RejectsBadRegistrations(t *testing.T) {
	d := New[pinger]()
	var got []string

	require.ErrorIs(t, d.AddListener(&recorder{log: &got}, nil), lifecycle.ErrNilScope)

	disposed := lifecycle.New("gone")
	disposed.Dispose()
	require.ErrorIs(t, d.AddListener(&recorder{log: &got}, disposed), lifecycle.ErrScopeDisposed)

	var nilRecorder *recorder
	require.ErrorIs(t, d.AddListener(nilRecorder, lifecycle.New("ok")), ErrNilListener)
	require.ErrorIs(t, d.AddListener(nil, lifecycle.New("ok")), ErrNilListener)

	require.Zero(t, d.Len())
}

func TestDispatcher_RemoveListenerBeforeScope(t *testing.T) {
	d := New[pinger]()
	scope := lifecycle.New("test")
	var got []string
	r := &recorder{name: "a", log: &got}

	require.NoError(t, d.AddListener(r, scope))
	d.RemoveListener(r)
	require.NotPanics(t, scope.Dispose)

	d.Multicast(func(p pinger) { p.Ping() })
	require.Empty(t, got)
}

func TestDispatcher_ListenerRemovedMidPassIsSkipped(t *testing.T) {
	d := New[pinger]()
	first := lifecycle.New("first")
	second := lifecycle.New("second")
	var got []string

	require.NoError(t, d.AddListener(&disposingPinger{scope: second, log: &got}, first))
	require.NoError(t, d.AddListener(&recorder{name: "second", log: &got}, second))

	d.Multicast(func(p pinger) { p.Ping() })

	require.Equal(t, []string{"disposer"}, got)
}

func TestDispatcher_PanicAbortsPass(t *testing.T) {
	d := New[pinger]()
	scope := lifecycle.New("test")
	var got []string

	require.NoError(t, d.AddListener(&recorder{name: "a", log: &got}, scope))
	require.NoError(t, d.AddListener(panicPinger{}, scope))
	require.NoError(t, d.AddListener(&recorder{name: "c", log: &got}, scope))

	require.PanicsWithValue(t, "boom", func() {
		d.Multicast(func(p pinger) { p.Ping() })
	})
	require.Equal(t, []string{"a"}, got)
}

type disposingPinger struct {
	scope *lifecycle.Scope
	log   *[]string
}

func (p *disposingPinger) Ping() {
	*p.log = append(*p.log, "disposer")
	p.scope.Dispose()
}

type panicPinger struct{}

func (panicPinger) Ping() { panic("boom") }
