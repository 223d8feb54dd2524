package domain

import "context"

// Event is a fact recorded by an entity during a mutation. Events are
// collected by the unit of work and dispatched to subscribed handlers right
// before the transaction commits.
type Event interface {
	EventName() string
}

// EventHandler reacts to a dispatched event. A returned error aborts the
// commit of the unit of work that produced the event.
type EventHandler func(ctx context.Context, ev Event) error

// EventSource is implemented by entities that record events.
type EventSource interface {
	Events() []Event
	ClearEvents()
}

const EventProjectCreated = "project.created"

// ProjectCreated is raised once by NewProject.
type ProjectCreated struct {
	Project *Project
}

func (ProjectCreated) EventName() string { return EventProjectCreated }
