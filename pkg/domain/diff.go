package domain

import (
	"reflect"
)

// Field names a State field that can be bound to an event.
type Field string

const (
	FieldWorkingDirectory Field = "workingDirectory"
	FieldLogLevel         Field = "logLevel"
	FieldPrompt           Field = "prompt"
)

// DeltaPoint binds a State field to the event raised when it changes.
type DeltaPoint struct {
	Field Field
	Event Event
}

// DefaultDeltaPoints is the table the shell runs with. LogLevel is absent on
// purpose: changing it never wakes a feature.
var DefaultDeltaPoints = []DeltaPoint{
	{Field: FieldWorkingDirectory, Event: EventWorkingDirectoryChanged},
	{Field: FieldPrompt, Event: EventPromptChanged},
}

// Delta returns the events whose bound field differs between before and
// after, in delta point order. A nil side yields every event.
func Delta(points []DeltaPoint, before, after *State) []Event {
	var events []Event
	for _, p := range points {
		if before == nil || after == nil {
			events = append(events, p.Event)
			continue
		}
		if !reflect.DeepEqual(before.Field(p.Field), after.Field(p.Field)) {
			events = append(events, p.Event)
		}
	}
	return events
}

// Events lists the distinct events referenced by points, in order.
func Events(points []DeltaPoint) []Event {
	seen := make(map[Event]bool, len(points))
	var events []Event
	for _, p := range points {
		if !seen[p.Event] {
			seen[p.Event] = true
			events = append(events, p.Event)
		}
	}
	return events
}
