// Package orchestrator runs the search/judge task engine: it fans each
// location out to every available agent, fans the results back in, and
// judges them into one decision per location.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tourgo/pkg/agent"
	"tourgo/pkg/config"
	"tourgo/pkg/judge"
	"tourgo/pkg/model"
	"tourgo/pkg/scheduler"
	"tourgo/pkg/tracker"
)

// Judger decides the winning record for a location. Satisfied by
// *judge.Engine.
type Judger interface {
	Decide(loc model.Location, records []model.ContentRecord) model.Decision
}

// Orchestrator coordinates one run over a set of locations.
type Orchestrator struct {
	runID       string
	pool        *agent.Pool
	engine      Judger
	tracker     *tracker.Tracker
	workers     int
	pollTimeout time.Duration

	sched *scheduler.Scheduler
}

// New creates an orchestrator for one run.
func New(runID string, pool *agent.Pool, engine Judger, tr *tracker.Tracker, cfg *config.OrchestratorConfig) *Orchestrator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 10
	}
	pollTimeout := time.Duration(cfg.PollTimeout)
	if pollTimeout <= 0 {
		pollTimeout = time.Second
	}
	o := &Orchestrator{
		runID:       runID,
		pool:        pool,
		engine:      engine,
		tracker:     tr,
		workers:     workers,
		pollTimeout: pollTimeout,
		sched:       scheduler.New(),
	}
	slog.Info("Orchestrator initialized", "run_id", runID, "component", "orchestrator", "workers", workers)
	return o
}

var _ Judger = (*judge.Engine)(nil)

// Run processes all locations and returns the decisions by location id.
// The returned map may be missing entries: a location whose task faulted
// never acquires a decision, and that is not an error.
//
// Phases: seed one search task per location, drain the scheduler into the
// worker pool until every location is accounted for, then wait out
// in-flight executions.
func (o *Orchestrator) Run(ctx context.Context, locations []model.Location) (map[string]model.Decision, error) {
	state := newRunState(len(locations))
	slog.Info("Processing locations", "run_id", o.runID, "component", "orchestrator", "count", len(locations))

	// Seeding
	for _, loc := range locations {
		if err := o.sched.Submit(scheduler.NewSearchTask(loc)); err != nil {
			return nil, err
		}
	}

	// Draining
	sem := make(chan struct{}, o.workers)
	var wg sync.WaitGroup

	for state.completedCount() < state.total || !o.sched.Empty() {
		if ctx.Err() != nil {
			break
		}

		task, ok := o.sched.TakeNext(o.pollTimeout)
		if !ok {
			// Quiescent but incomplete; recheck the predicate
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(t scheduler.Task) {
			defer wg.Done()
			defer func() { <-sem }()
			// Pool boundary: a fault inside a task body is logged and the
			// location counted complete so the run terminates. No retry.
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Task failed", "run_id", o.runID, "component", "orchestrator",
						"task", t.Kind, "location", t.Location.Name, "panic", r)
					state.markCompleted()
				}
			}()
			o.execute(ctx, t, state)
		}(task)
	}

	// Finalizing
	o.sched.Close()
	wg.Wait()

	decisions := state.decisionsCopy()
	slog.Info("Completed processing all locations", "run_id", o.runID,
		"component", "orchestrator", "decisions", len(decisions), "total", state.total)
	return decisions, ctx.Err()
}

func (o *Orchestrator) execute(ctx context.Context, t scheduler.Task, state *runState) {
	switch t.Kind {
	case scheduler.KindSearch:
		o.executeSearch(ctx, t.Location, state)
	case scheduler.KindJudge:
		o.executeJudge(t.Location, state)
	default:
		slog.Warn("Unknown task kind", "run_id", o.runID, "component", "orchestrator", "kind", t.Kind)
	}
}

// executeSearch fans one location out to every agent, writes the fan-in
// into the results store, and enqueues the judge task. The enqueue is the
// last action: it is what guarantees a location is judged only after its
// records are written.
func (o *Orchestrator) executeSearch(ctx context.Context, loc model.Location, state *runState) {
	slog.Info("Starting search agents", "run_id", o.runID, "component", "orchestrator", "location", loc.Name)

	agents := o.pool.Agents()
	records := make([]model.ContentRecord, 0, len(agents))
	for _, ag := range agents {
		if rec, ok := o.callAgent(ctx, ag, loc); ok {
			records = append(records, rec)
		}
	}

	state.setRecords(loc.ID, records)

	if err := o.sched.Submit(scheduler.NewJudgeTask(loc)); err != nil {
		slog.Warn("Could not enqueue judge task", "run_id", o.runID,
			"component", "orchestrator", "location", loc.Name, "error", err)
		state.markCompleted()
		return
	}

	slog.Info("Completed search agents", "run_id", o.runID, "component", "orchestrator",
		"location", loc.Name, "records", len(records))
}

// callAgent isolates one agent invocation: an error or panic drops that
// agent's contribution and never blocks the others.
func (o *Orchestrator) callAgent(ctx context.Context, ag agent.Agent, loc model.Location) (rec model.ContentRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Agent panicked", "run_id", o.runID, "component", "orchestrator",
				"agent", ag.Name(), "location", loc.Name, "panic", r)
			ok = false
		}
	}()

	rec, err := ag.Search(ctx, loc)
	if err != nil {
		slog.Error("Agent failed", "run_id", o.runID, "component", "orchestrator",
			"agent", ag.Name(), "location", loc.Name, "error", err)
		return model.ContentRecord{}, false
	}
	return rec, true
}

// executeJudge reads the location's fan-in snapshot, decides, and records
// the decision.
func (o *Orchestrator) executeJudge(loc model.Location, state *runState) {
	slog.Info("Starting judge", "run_id", o.runID, "component", "orchestrator", "location", loc.Name)

	records := state.records(loc.ID)
	if len(records) == 0 {
		slog.Warn("No results available", "run_id", o.runID, "component", "orchestrator", "location", loc.Name)
		state.markCompleted()
		return
	}

	decision := o.engine.Decide(loc, records)
	state.setDecision(decision)
	if o.tracker != nil {
		o.tracker.TrackDecision(string(decision.Kind))
	}

	slog.Info("Judge completed", "run_id", o.runID, "component", "orchestrator",
		"location", loc.Name, "selected", decision.Kind)
}
