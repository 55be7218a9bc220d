package ui

import "prgrip/internal/eventbus"

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// diffMsg contains the diff of a pull request
type diffMsg struct {
	number  int
	content string
	err     error
}

// pagerDoneMsg is sent when the pager returns control to the UI
type pagerDoneMsg struct {
	err error
}
