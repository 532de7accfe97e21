package model

import (
	"fmt"
	"time"
)

// ContentKind identifies the media type of a search result.
type ContentKind string

// Supported content kinds.
const (
	KindVideo ContentKind = "video"
	KindMusic ContentKind = "music"
	KindText  ContentKind = "text"
)

// Coordinates is a WGS84 lat/lng pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%g, %g)", c.Lat, c.Lng)
}

// Location is one stop along a route. Created once by the route source,
// never mutated afterwards.
type Location struct {
	RunID   string      `json:"run_id"`
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Coords  Coordinates `json:"coords"`
	Order   int         `json:"order"`
	PlaceID string      `json:"place_id,omitempty"`
	Address string      `json:"address,omitempty"`
}

func (l Location) String() string {
	return fmt.Sprintf("Location(#%d: %s at %s)", l.Order, l.Name, l.Coords)
}

// ContentRecord is one agent's result for one location. Produced at most
// once per (location, agent) and immutable thereafter.
type ContentRecord struct {
	RunID      string            `json:"run_id"`
	LocationID string            `json:"location_id"`
	AgentName  string            `json:"agent_name"`
	Kind       ContentKind       `json:"kind"`
	Content    map[string]string `json:"content"`
	CreatedAt  time.Time         `json:"created_at"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
}

func (r ContentRecord) String() string {
	if r.Success {
		title := r.Content["title"]
		if title == "" {
			title = "N/A"
		}
		return fmt.Sprintf("ContentRecord(%s: %s)", r.AgentName, title)
	}
	return fmt.Sprintf("ContentRecord(%s: FAILED - %s)", r.AgentName, r.Error)
}

// Decision is the chosen content for one location, with reasoning and the
// full set of records that were considered. Produced exactly once per
// location, only after that location's search fan-in completed.
type Decision struct {
	RunID      string            `json:"run_id"`
	LocationID string            `json:"location_id"`
	Kind       ContentKind       `json:"kind"`
	Content    map[string]string `json:"content"`
	Reasoning  string            `json:"reasoning"`
	CreatedAt  time.Time         `json:"created_at"`
	AllRecords []ContentRecord   `json:"all_records"`
}

func (d Decision) String() string {
	title := d.Content["title"]
	if title == "" {
		title = "N/A"
	}
	return fmt.Sprintf("Decision(selected: %s, title: %s)", d.Kind, title)
}
