package eventbus

import (
	"runtime/debug"
	"sync"

	"prgrip/internal/domain"
	"prgrip/internal/log"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventRefreshRequested   = domain.EventRefreshRequested
	EventPullRequestsLoaded = domain.EventPullRequestsLoaded
	EventLoadFailed         = domain.EventLoadFailed
	EventError              = domain.EventError
	EventConfigChanged      = domain.EventConfigChanged
)

// Re-export domain event types
type RefreshRequestedEvent = domain.RefreshRequestedEvent
type PullRequestsLoadedEvent = domain.PullRequestsLoadedEvent
type LoadFailedEvent = domain.LoadFailedEvent
type ErrorEvent = domain.ErrorEvent
type ConfigChangedEvent = domain.ConfigChangedEvent

const queueSize = 256

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

// subscription delivers events to one handler, one at a time, in the
// order they were published.
type subscription struct {
	id      uint64
	handler EventHandler
	queue   chan DomainEvent
	done    chan struct{}
}

// bus is the concrete implementation of EventBus
type bus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]*subscription
	nextID    uint64
	closed    bool
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
}

// New creates a new event bus and starts its dispatcher
func New() EventBus {
	b := &bus{
		handlers:  make(map[EventType][]*subscription),
		eventChan: make(chan DomainEvent, queueSize),
		quit:      make(chan struct{}),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish queues an event for all subscribers. It never blocks; when the
// queue is full the event is dropped.
func (b *bus) Publish(event DomainEvent) {
	log.Debug(log.CatBus, "publish", "event", event.Type())

	select {
	case <-b.quit:
		return
	default:
	}

	select {
	case b.eventChan <- event:
	default:
		log.Warn(log.CatBus, "event queue full, dropping event", "event", event.Type())
	}
}

// Subscribe registers handler for eventType and returns an unsubscribe func.
// A handler sees events one at a time and in publish order.
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	b.nextID++
	sub := &subscription{
		id:      b.nextID,
		handler: handler,
		queue:   make(chan DomainEvent, queueSize),
		done:    make(chan struct{}),
	}
	b.handlers[eventType] = append(b.handlers[eventType], sub)

	b.wg.Add(1)
	go b.run(sub)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			subs := b.handlers[eventType]
			for i, s := range subs {
				if s.id == sub.id {
					b.handlers[eventType] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
			close(sub.done)
		})
	}
}

// Close stops the dispatcher and every subscriber. Queued events are discarded.
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		close(b.quit)
	})
	b.wg.Wait()
}

// dispatch fans events out to the subscriber queues
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.mu.RLock()
			for _, s := range b.handlers[event.Type()] {
				select {
				case s.queue <- event:
				default:
					log.Warn(log.CatBus, "subscriber queue full, dropping event", "event", event.Type(), "subscription", s.id)
				}
			}
			b.mu.RUnlock()

		case <-b.quit:
			for {
				select {
				case <-b.eventChan:
				default:
					return
				}
			}
		}
	}
}

// run delivers queued events to a single handler until it is unsubscribed
// or the bus is closed
func (b *bus) run(s *subscription) {
	defer b.wg.Done()

	for {
		select {
		case event := <-s.queue:
			select {
			case <-s.done:
				return
			default:
			}
			s.deliver(event)
		case <-s.done:
			return
		case <-b.quit:
			return
		}
	}
}

func (s *subscription) deliver(event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(log.CatBus, "event handler panic", "event", event.Type(), "panic", r, "stack", string(debug.Stack()))
		}
	}()
	s.handler(event)
}
