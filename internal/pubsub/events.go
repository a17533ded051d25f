// Package pubsub carries run-time events from the engine and the logger to
// the Bubble Tea program: phase progress, milestones, checkpoint
// confirmations, and log lines for in-TUI tailing.
package pubsub

import "time"

// EventType tags what an event announces.
type EventType string

const (
	// ProgressEvent reports a phase change during a run.
	ProgressEvent EventType = "progress"
	// MilestoneEvent fires every N processed bookmarks.
	MilestoneEvent EventType = "milestone"
	// CheckpointEvent confirms a committed session checkpoint.
	CheckpointEvent EventType = "checkpoint"
	// LogLineEvent carries a formatted log line.
	LogLineEvent EventType = "logline"
)

// Event is one published occurrence with its typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}
