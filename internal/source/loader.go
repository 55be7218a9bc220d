package source

import (
	"context"
	"sync"
	"time"

	"prgrip/internal/domain"
	"prgrip/internal/eventbus"
	"prgrip/internal/log"
)

const loadTimeout = 30 * time.Second

type invalidator interface {
	Invalidate()
}

// Loader runs queries in response to RefreshRequestedEvent and publishes
// PullRequestsLoadedEvent or LoadFailedEvent.
type Loader struct {
	bus     eventbus.EventBus
	src     Source
	timeout time.Duration

	mu        sync.Mutex
	last      domain.Query
	hasLast   bool
	closed    bool
	inFlight  sync.WaitGroup
	unsubFunc func()
}

// NewLoader creates a loader and subscribes it to refresh requests
func NewLoader(bus eventbus.EventBus, src Source) *Loader {
	l := &Loader{bus: bus, src: src, timeout: loadTimeout}
	l.unsubFunc = bus.Subscribe(eventbus.EventRefreshRequested, func(e eventbus.DomainEvent) {
		event, ok := e.(eventbus.RefreshRequestedEvent)
		if !ok {
			return
		}
		q := event.Query
		if event.UseLast {
			last, ok := l.LastQuery()
			if !ok {
				return
			}
			q = last
		}
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			return
		}
		l.inFlight.Add(1)
		l.mu.Unlock()
		go func() {
			defer l.inFlight.Done()
			ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
			defer cancel()
			l.Load(ctx, q, event.Force)
		}()
	})
	return l
}

// LastQuery returns the most recent query passed to Load
func (l *Loader) LastQuery() (domain.Query, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last, l.hasLast
}

// Load runs q synchronously and publishes the outcome
func (l *Loader) Load(ctx context.Context, q domain.Query, force bool) {
	l.mu.Lock()
	l.last = q
	l.hasLast = true
	l.mu.Unlock()

	if force {
		if inv, ok := l.src.(invalidator); ok {
			inv.Invalidate()
		}
	}

	prs, err := l.src.List(ctx, q)
	if err != nil {
		log.ErrorErr(log.CatSource, "failed to load pull requests", err, "repo", q.Repo, "state", q.State)
		l.bus.Publish(eventbus.LoadFailedEvent{Query: q, Err: err})
		return
	}
	log.Info(log.CatSource, "pull requests loaded", "repo", q.Repo, "state", q.State, "count", len(prs))
	l.bus.Publish(eventbus.PullRequestsLoadedEvent{Query: q, PullRequests: prs})
}

// Close unsubscribes from the bus and waits for running loads. Refresh
// requests still being delivered are ignored.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	unsub := l.unsubFunc
	l.unsubFunc = nil
	l.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	l.inFlight.Wait()
}
