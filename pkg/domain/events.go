package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart  EventType = "run_start"
	EventRunEnd    EventType = "run_end"
	EventNodeEnter EventType = "node_enter"
	EventNodeLeave EventType = "node_leave"
	EventNodeSkip  EventType = "node_skip"
	EventNodeError EventType = "node_error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// NodeEvent represents a visit to a node.
type NodeEvent struct {
	EventBase
	NodeID   string        `json:"node_id"`
	Title    string        `json:"title"`
	Reroute  bool          `json:"reroute,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// RunEvent represents the start or end of a run.
type RunEvent struct {
	EventBase
	Graph  string    `json:"graph"`
	Status RunStatus `json:"status,omitempty"`
	Report *Report   `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnRunStart  func(context.Context, *RunEvent)
	OnRunEnd    func(context.Context, *RunEvent)
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeLeave func(context.Context, *NodeEvent)
	OnNodeSkip  func(context.Context, *NodeEvent)
	OnNodeError func(context.Context, *NodeEvent)
}
