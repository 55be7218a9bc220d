package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventRefreshRequested   EventType = "RefreshRequested"
	EventPullRequestsLoaded EventType = "PullRequestsLoaded"
	EventLoadFailed         EventType = "LoadFailed"
	EventError              EventType = "Error"
	EventConfigChanged      EventType = "ConfigChanged"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// RefreshRequestedEvent asks the loader to run a query.
// Force bypasses any cache in front of the source; UseLast repeats the
// loader's previous query instead of Query.
type RefreshRequestedEvent struct {
	Query   Query
	Force   bool
	UseLast bool
}

func (e RefreshRequestedEvent) Type() EventType { return EventRefreshRequested }

// PullRequestsLoadedEvent carries the result of a successful query
type PullRequestsLoadedEvent struct {
	Query        Query
	PullRequests []PullRequest
}

func (e PullRequestsLoadedEvent) Type() EventType { return EventPullRequestsLoaded }

// LoadFailedEvent is emitted when a query fails
type LoadFailedEvent struct {
	Query Query
	Err   error
}

func (e LoadFailedEvent) Type() EventType { return EventLoadFailed }

// ErrorEvent is emitted when a background error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigChangedEvent is emitted when settings changed in the UI should be saved
type ConfigChangedEvent struct {
	State PRState
	Repo  string
}

func (e ConfigChangedEvent) Type() EventType { return EventConfigChanged }
