package driver

import "time"

// Stage describes a pipeline phase.
type Stage string

const (
	// StageLoad covers bundle reading and restoration.
	StageLoad Stage = "load"
	// StageCycles is the module-wide type cycle check.
	StageCycles Stage = "cycles"
	// StageOwnership is the per-function ownership analysis.
	StageOwnership Stage = "ownership"
	// StageExpand is the per-function reuse expansion.
	StageExpand Stage = "expand"
	// StageWrite covers output bundle writing.
	StageWrite Stage = "write"
)

// Status captures progress within a stage.
type Status string

const (
	// StatusQueued indicates the item is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the item is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the item finished cleanly.
	StatusDone Status = "done"
	// StatusError indicates the item failed.
	StatusError Status = "error"
)

// Event reports progress for one function, or for the whole module when
// Item is empty.
type Event struct {
	Item    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent is called from the
// fan-out goroutines and must be safe for concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, item string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Item: item, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
