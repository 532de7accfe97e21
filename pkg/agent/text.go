package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"tourgo/pkg/model"
	"tourgo/pkg/request"
)

// TextAgent finds an encyclopedic description for a location on Wikipedia.
// It never fails on "no article": a placeholder record keeps navigation
// points from dragging a whole location down.
type TextAgent struct {
	base
	rc *request.Client

	// RESTEndpoint and SearchEndpoint are overridable for tests.
	RESTEndpoint   string
	SearchEndpoint string
}

// NewTextAgent creates the Wikipedia text agent.
func NewTextAgent(runID string, rc *request.Client) *TextAgent {
	return &TextAgent{
		base:           base{runID: runID, name: "TextAgent", kind: model.KindText},
		rc:             rc,
		RESTEndpoint:   "https://en.wikipedia.org/api/rest_v1",
		SearchEndpoint: "https://en.wikipedia.org/w/api.php",
	}
}

// summary is the subset of the Wikipedia REST summary response we use.
type summary struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ExtractHTML string `json:"extract_html"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Search looks up a Wikipedia summary for the location.
func (a *TextAgent) Search(ctx context.Context, loc model.Location) (model.ContentRecord, error) {
	a.logInfo("Searching for text", "location", loc.Name)

	query := searchQuery(loc)
	a.logInfo("Search query", "query", query)

	sum, err := a.lookup(ctx, query, loc)
	if err != nil {
		a.logError("Error searching Wikipedia", "error", err)
		return a.failure(loc, err), nil
	}

	if sum == nil {
		a.logInfo("No Wikipedia article found", "location", loc.Name)
		return a.record(loc, map[string]string{
			"title":        loc.Name,
			"description":  fmt.Sprintf("No specific information found for %s. This may be a navigation point or specific instruction.", loc.Name),
			"url":          "",
			"source":       "Wikipedia",
			"extract_html": "",
		}), nil
	}

	a.logInfo("Found article", "title", sum.Title)
	return a.record(loc, map[string]string{
		"title":        sum.Title,
		"description":  sum.Extract,
		"url":          sum.ContentURLs.Desktop.Page,
		"source":       "Wikipedia",
		"extract_html": sum.ExtractHTML,
	}), nil
}

// lookup tries, in order: a context-enhanced search when the address hints
// at a city, a direct summary fetch, and a plain search. Returns nil when
// no article matches.
func (a *TextAgent) lookup(ctx context.Context, query string, loc model.Location) (*summary, error) {
	if loc.Address != "" {
		if hint := locationContext(loc.Address); hint != "" {
			enhanced := query + " " + hint
			a.logInfo("Searching with location context", "query", enhanced)
			if sum, err := a.searchArticle(ctx, enhanced); err == nil && sum != nil {
				return sum, nil
			}
		}
	}

	// Direct title lookup
	sum, err := a.fetchSummary(ctx, query)
	if err == nil && sum != nil {
		// Skip disambiguation pages if we can
		if !strings.Contains(strings.ToLower(sum.Extract), "may refer to") {
			return sum, nil
		}
	}

	return a.searchArticle(ctx, query)
}

// fetchSummary gets the REST summary for an exact title. A miss is (nil, nil).
func (a *TextAgent) fetchSummary(ctx context.Context, title string) (*summary, error) {
	u := fmt.Sprintf("%s/page/summary/%s", a.RESTEndpoint, url.PathEscape(title))
	body, err := a.rc.Get(ctx, u, "wikipedia:summary:"+title)
	if err != nil {
		return nil, nil // Treat as a miss; the search fallback still runs
	}

	var sum summary
	if err := json.Unmarshal(body, &sum); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	if sum.Title == "" {
		return nil, nil
	}
	return &sum, nil
}

// searchArticle finds the best-matching article via the search API, then
// fetches its summary.
func (a *TextAgent) searchArticle(ctx context.Context, query string) (*summary, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("format", "json")
	params.Set("srlimit", "1")

	body, err := a.rc.Get(ctx, a.SearchEndpoint+"?"+params.Encode(), "wikipedia:search:"+query)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if len(resp.Query.Search) == 0 {
		return nil, nil
	}
	return a.fetchSummary(ctx, resp.Query.Search[0].Title)
}
