package scheduler

import (
	"time"

	"tourgo/pkg/model"
)

// Class is a numeric scheduling priority; lower dequeues first.
type Class int

// Priority classes. Judge tasks jump ahead of other locations' searches so
// a location that finished its fan-in gets its decision with minimal delay.
const (
	ClassJudge  Class = 1
	ClassSearch Class = 2
)

// Kind names what a task does.
type Kind string

// Task kinds.
const (
	KindSearch Kind = "search"
	KindJudge  Kind = "judge"
)

// Task is a unit of scheduled work: one search fan-out or one judge pass
// for a single location.
type Task struct {
	Class     Class
	Kind      Kind
	Location  model.Location
	CreatedAt time.Time
}

// NewSearchTask creates a search task for the given location.
func NewSearchTask(loc model.Location) Task {
	return Task{Class: ClassSearch, Kind: KindSearch, Location: loc, CreatedAt: time.Now()}
}

// NewJudgeTask creates a judge task for the given location.
func NewJudgeTask(loc model.Location) Task {
	return Task{Class: ClassJudge, Kind: KindJudge, Location: loc, CreatedAt: time.Now()}
}
