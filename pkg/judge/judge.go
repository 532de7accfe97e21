// Package judge scores a location's content records and picks a single
// winner. Scoring is a fixed pure function: the same records in the same
// order always produce the same scores and the same winner.
package judge

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tourgo/pkg/model"
)

// kindBase holds the content-kind preference bonuses. One adjustable
// table, not user-configurable.
var kindBase = map[model.ContentKind]float64{
	model.KindText:  10, // Prefer text for informativeness
	model.KindVideo: 5,  // Videos are engaging
	model.KindMusic: 5,  // Music for atmosphere
}

// NoSuccessReasoning is the fixed reasoning string of the degenerate
// decision emitted when no agent produced a successful record.
const NoSuccessReasoning = "No successful results available"

// Engine selects the best content record for a location.
type Engine struct {
	runID string
}

// NewEngine creates an Engine for one run.
func NewEngine(runID string) *Engine {
	return &Engine{runID: runID}
}

// Decide scores the given records and returns the decision for loc.
// Records are a snapshot; Decide never blocks on shared state.
func (e *Engine) Decide(loc model.Location, records []model.ContentRecord) model.Decision {
	slog.Info("Judging results", "run_id", e.runID, "component", "judge",
		"location", loc.Name, "records", len(records))

	var successful []model.ContentRecord
	for _, r := range records {
		if r.Success {
			successful = append(successful, r)
		}
	}

	if len(successful) == 0 {
		slog.Warn("No successful results to judge", "run_id", e.runID,
			"component", "judge", "location", loc.Name)
		return model.Decision{
			RunID:      e.runID,
			LocationID: loc.ID,
			Kind:       model.KindText,
			Content:    map[string]string{},
			Reasoning:  NoSuccessReasoning,
			CreatedAt:  time.Now(),
			AllRecords: records,
		}
	}

	scores := make([]float64, len(successful))
	for i, r := range successful {
		scores[i] = Score(r, loc)
		slog.Info("Scored result", "run_id", e.runID, "component", "judge",
			"agent", r.AgentName, "kind", r.Kind, "score", scores[i])
	}

	// Strict maximum: ties keep the earliest record.
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	winner := successful[best]

	slog.Info("Selected result", "run_id", e.runID, "component", "judge",
		"location", loc.Name, "agent", winner.AgentName, "kind", winner.Kind)

	return model.Decision{
		RunID:      e.runID,
		LocationID: loc.ID,
		Kind:       winner.Kind,
		Content:    winner.Content,
		Reasoning:  buildReasoning(winner, scores[best], scores, best),
		CreatedAt:  time.Now(),
		AllRecords: records,
	}
}

// Score rates a record's relevance to loc on a 0-100 scale. Independent
// bonuses, clamped at 100.
func Score(r model.ContentRecord, loc model.Location) float64 {
	score := 0.0

	// Base score for having content
	if len(r.Content) > 0 {
		score += 30
	}

	if title := r.Content["title"]; title != "" {
		score += 20
		// Bonus for title relevance (simple keyword matching)
		overlap := tokenOverlap(loc.Name, title)
		score += min(float64(overlap)*5, 20)
	}

	if r.Content["description"] != "" {
		score += 15
	}

	score += kindBase[r.Kind]

	if r.Content["url"] != "" {
		score += 5
	}

	return min(score, 100)
}

// tokenOverlap counts distinct words (lower-cased, whitespace-split)
// present in both strings.
func tokenOverlap(a, b string) int {
	aWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(a)) {
		aWords[w] = true
	}
	seen := make(map[string]bool)
	count := 0
	for _, w := range strings.Fields(strings.ToLower(b)) {
		if aWords[w] && !seen[w] {
			seen[w] = true
			count++
		}
	}
	return count
}

// buildReasoning assembles the human-readable explanation for a decision.
// Deterministic for a fixed input.
func buildReasoning(winner model.ContentRecord, bestScore float64, scores []float64, bestIdx int) string {
	reasons := []string{
		fmt.Sprintf("Selected %s content from %s (score: %.1f/100)", winner.Kind, winner.AgentName, bestScore),
	}

	if title := winner.Content["title"]; title != "" {
		reasons = append(reasons, fmt.Sprintf("Title: '%s'", title))
	}

	if len(scores) > 1 {
		sum := 0.0
		for i, s := range scores {
			if i != bestIdx {
				sum += s
			}
		}
		avgOther := sum / float64(len(scores)-1)
		if bestScore > avgOther+10 {
			reasons = append(reasons, "Significantly higher relevance than alternatives")
		}
	}

	if len(winner.Content["description"]) > 100 {
		reasons = append(reasons, "Contains comprehensive description")
	}

	return strings.Join(reasons, ". ") + "."
}
