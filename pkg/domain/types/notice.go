package types

import (
	"github.com/m-mizutani/goerr/v2"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (x Priority) String() string {
	return string(x)
}

func (x Priority) Validate() error {
	switch x {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	default:
		return goerr.New("invalid priority", goerr.V("priority", x))
	}
}

type EventType string

const (
	EventTypeTask  EventType = "task"
	EventTypeEvent EventType = "event"
)

func (x EventType) String() string {
	return string(x)
}

func (x EventType) Validate() error {
	switch x {
	case EventTypeTask, EventTypeEvent:
		return nil
	default:
		return goerr.New("invalid event type", goerr.V("type", x))
	}
}

// ViewMode is the board layout preference persisted per client.
type ViewMode string

const (
	ViewModeBoard ViewMode = "board"
	ViewModeList  ViewMode = "list"
)

func (x ViewMode) String() string {
	return string(x)
}

func (x ViewMode) Validate() error {
	switch x {
	case ViewModeBoard, ViewModeList:
		return nil
	default:
		return goerr.New("invalid view mode", goerr.V("mode", x))
	}
}
