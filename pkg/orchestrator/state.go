package orchestrator

import (
	"sync"

	"tourgo/pkg/model"
)

// runState holds the shared stores for one run. It is owned by the
// Orchestrator and handed to task executions; nothing here is process-wide.
//
// Each store has one lock, held only for a single read or write, never
// across agent calls or scoring. The completed counter shares the
// decisions store's lock.
type runState struct {
	total int

	resMu   sync.Mutex
	results map[string][]model.ContentRecord

	decMu     sync.Mutex
	decisions map[string]model.Decision
	completed int
}

func newRunState(total int) *runState {
	return &runState{
		total:     total,
		results:   make(map[string][]model.ContentRecord),
		decisions: make(map[string]model.Decision),
	}
}

// setRecords stores a location's fan-in results, replacing any prior entry.
func (s *runState) setRecords(locationID string, recs []model.ContentRecord) {
	s.resMu.Lock()
	s.results[locationID] = recs
	s.resMu.Unlock()
}

// records returns a snapshot of a location's results.
func (s *runState) records(locationID string) []model.ContentRecord {
	s.resMu.Lock()
	defer s.resMu.Unlock()
	return s.results[locationID]
}

// setDecision stores a location's decision and counts it complete.
func (s *runState) setDecision(d model.Decision) {
	s.decMu.Lock()
	s.decisions[d.LocationID] = d
	s.completed++
	s.decMu.Unlock()
}

// markCompleted counts a location complete without a decision. Used when a
// location can never be judged (empty fan-in, task fault) so the run still
// terminates.
func (s *runState) markCompleted() {
	s.decMu.Lock()
	s.completed++
	s.decMu.Unlock()
}

func (s *runState) completedCount() int {
	s.decMu.Lock()
	defer s.decMu.Unlock()
	return s.completed
}

// decisionsCopy returns the decisions made so far. Callers must not assume
// one entry per input location.
func (s *runState) decisionsCopy() map[string]model.Decision {
	s.decMu.Lock()
	defer s.decMu.Unlock()
	out := make(map[string]model.Decision, len(s.decisions))
	for k, v := range s.decisions {
		out[k] = v
	}
	return out
}
