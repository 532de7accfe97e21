// Package agent holds the content-search agents. Each agent queries one
// external source for one location and returns a ContentRecord; a failed
// lookup comes back as either a failed-flagged record or an error, and the
// caller must tolerate both.
package agent

import (
	"context"
	"log/slog"
	"time"

	"tourgo/pkg/config"
	"tourgo/pkg/model"
	"tourgo/pkg/request"
)

// Agent searches one external content source for a location.
type Agent interface {
	Name() string
	Kind() model.ContentKind
	Search(ctx context.Context, loc model.Location) (model.ContentRecord, error)
}

// Pool holds the reusable agent handles for one run. Agents are built once
// here instead of per search call; their underlying HTTP clients are safe
// for concurrent use.
type Pool struct {
	agents []Agent
}

// BuildPool constructs every agent the configuration has credentials for.
// The text agent needs none and is always present.
func BuildPool(ctx context.Context, runID string, cfg *config.AgentsConfig, rc *request.Client) *Pool {
	p := &Pool{agents: []Agent{NewTextAgent(runID, rc)}}

	if cfg.YouTube.APIKey != "" {
		va, err := NewVideoAgent(ctx, runID, cfg.YouTube.APIKey)
		if err != nil {
			slog.Warn("Video agent unavailable", "run_id", runID, "component", "agent", "error", err)
		} else {
			p.agents = append(p.agents, va)
		}
	}

	if cfg.Spotify.ClientID != "" && cfg.Spotify.ClientSecret != "" {
		p.agents = append(p.agents, NewMusicAgent(runID, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, rc))
	}

	return p
}

// NewPool wraps pre-built agents. Used by tests and embedders that manage
// their own credentials.
func NewPool(agents ...Agent) *Pool {
	return &Pool{agents: agents}
}

// Agents returns the available agents in a stable order.
func (p *Pool) Agents() []Agent {
	return p.agents
}

// base carries the identity every agent stamps onto its records.
type base struct {
	runID string
	name  string
	kind  model.ContentKind
}

func (b base) Name() string            { return b.name }
func (b base) Kind() model.ContentKind { return b.kind }

func (b base) record(loc model.Location, content map[string]string) model.ContentRecord {
	return model.ContentRecord{
		RunID:      b.runID,
		LocationID: loc.ID,
		AgentName:  b.name,
		Kind:       b.kind,
		Content:    content,
		CreatedAt:  time.Now(),
		Success:    true,
	}
}

func (b base) failure(loc model.Location, err error) model.ContentRecord {
	return model.ContentRecord{
		RunID:      b.runID,
		LocationID: loc.ID,
		AgentName:  b.name,
		Kind:       b.kind,
		Content:    map[string]string{},
		CreatedAt:  time.Now(),
		Success:    false,
		Error:      err.Error(),
	}
}

func (b base) logInfo(msg string, args ...any) {
	slog.Info(msg, append([]any{"run_id", b.runID, "component", b.name}, args...)...)
}

func (b base) logError(msg string, args ...any) {
	slog.Error(msg, append([]any{"run_id", b.runID, "component", b.name}, args...)...)
}
