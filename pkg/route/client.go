// Package route extracts an ordered sequence of locations from a Google
// Maps walking-route URL via the Directions API.
package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"tourgo/pkg/config"
	"tourgo/pkg/model"
	"tourgo/pkg/request"
)

// ErrNoRoute means the URL parsed but the Directions API found no route.
var ErrNoRoute = errors.New("route: no directions found")

var dirPattern = regexp.MustCompile(`/dir/([^/]+)/([^/@]+)`)

// Client turns Google Maps URLs into location sequences.
type Client struct {
	rc     *request.Client
	apiKey string
	runID  string
	// minSpacingM drops step points closer than this to the previously
	// emitted location. 0 keeps every step.
	minSpacingM float64

	// headClient follows short-link redirects; overridable for tests.
	headClient *http.Client

	// Endpoint is overridable for tests.
	Endpoint string
}

// NewClient creates a route client for one run.
func NewClient(cfg *config.RouteConfig, rc *request.Client, runID string) *Client {
	return &Client{
		rc:          rc,
		apiKey:      cfg.APIKey,
		runID:       runID,
		minSpacingM: cfg.MinSpacingM,
		headClient:  &http.Client{Timeout: 5 * time.Second},
		Endpoint:    "https://maps.googleapis.com/maps/api/directions/json",
	}
}

// ExtractLocations resolves a Google Maps URL into the ordered locations
// along the walking route. Any failure surfaces synchronously; callers
// must not start orchestration without locations.
func (c *Client) ExtractLocations(ctx context.Context, mapsURL string) ([]model.Location, error) {
	slog.Info("Extracting route locations", "run_id", c.runID, "component", "route")

	expanded := c.expandShortURL(ctx, mapsURL)
	slog.Info("Processing URL", "run_id", c.runID, "component", "route", "url", expanded)

	origin, destination, err := parseOriginDestination(expanded)
	if err != nil {
		slog.Error("Could not find origin/destination in URL", "run_id", c.runID, "component", "route")
		return nil, err
	}
	slog.Info("Route parsed", "run_id", c.runID, "component", "route",
		"origin", origin, "destination", destination)

	directions, err := c.fetchDirections(ctx, origin, destination)
	if err != nil {
		return nil, err
	}

	locs := c.extractFromRoute(&directions.Routes[0])
	slog.Info("Extracted locations from route", "run_id", c.runID, "component", "route", "count", len(locs))
	return locs, nil
}

// expandShortURL follows maps.app.goo.gl redirects to the full URL.
// Failure to expand falls back to the original URL.
func (c *Client) expandShortURL(ctx context.Context, rawURL string) string {
	if !strings.Contains(rawURL, "goo.gl") {
		return rawURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, http.NoBody)
	if err != nil {
		return rawURL
	}
	resp, err := c.headClient.Do(req)
	if err != nil {
		slog.Warn("Failed to expand URL", "run_id", c.runID, "component", "route", "error", err)
		return rawURL
	}
	resp.Body.Close()

	slog.Info("Expanded shortened URL", "run_id", c.runID, "component", "route")
	return resp.Request.URL.String()
}

// parseOriginDestination pulls origin and destination out of a
// /dir/origin/destination URL path.
func parseOriginDestination(mapsURL string) (origin, destination string, err error) {
	decoded, derr := url.PathUnescape(mapsURL)
	if derr != nil {
		decoded = mapsURL
	}
	decoded = strings.ReplaceAll(decoded, "+", " ")

	m := dirPattern.FindStringSubmatch(decoded)
	if m == nil {
		return "", "", fmt.Errorf("could not extract origin and destination from URL")
	}

	origin = strings.TrimSpace(m[1])
	destination = strings.TrimSpace(m[2])
	if origin == "''" || origin == "" || destination == "" {
		return "", "", fmt.Errorf("could not extract origin and destination from URL")
	}
	return origin, destination, nil
}

type directionsResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
	Routes       []route `json:"routes"`
}

type route struct {
	Legs []leg `json:"legs"`
}

type leg struct {
	EndAddress string `json:"end_address"`
	Distance   struct {
		Text string `json:"text"`
	} `json:"distance"`
	Steps []step `json:"steps"`
}

type step struct {
	HTMLInstructions string  `json:"html_instructions"`
	StartLocation    latLng  `json:"start_location"`
	EndLocation      *latLng `json:"end_location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c *Client) fetchDirections(ctx context.Context, origin, destination string) (*directionsResponse, error) {
	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("mode", "walking")
	params.Set("key", c.apiKey)

	cacheKey := fmt.Sprintf("directions:walking:%s:%s", origin, destination)
	body, err := c.rc.Get(ctx, c.Endpoint+"?"+params.Encode(), cacheKey)
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}

	var resp directionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode directions response: %w", err)
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("directions API status %s: %s", resp.Status, resp.ErrorMessage)
	}
	if len(resp.Routes) == 0 {
		return nil, ErrNoRoute
	}
	return &resp, nil
}

// extractFromRoute emits one location per step start plus the end of each
// leg. Step points closer than minSpacingM to the previous emission are
// skipped; leg ends are always kept.
func (c *Client) extractFromRoute(r *route) []model.Location {
	var locs []model.Location
	order := 0
	var lastPoint orb.Point
	havePoint := false

	emit := func(name string, ll latLng, address string) {
		locs = append(locs, model.Location{
			RunID:   c.runID,
			ID:      fmt.Sprintf("%s_point_%d", c.runID, order),
			Name:    name,
			Coords:  model.Coordinates{Lat: ll.Lat, Lng: ll.Lng},
			Order:   order,
			Address: address,
		})
		order++
		lastPoint = orb.Point{ll.Lng, ll.Lat}
		havePoint = true
	}

	for legIdx := range r.Legs {
		l := &r.Legs[legIdx]
		slog.Info("Processing leg", "run_id", c.runID, "component", "route",
			"leg", legIdx+1, "distance", l.Distance.Text)

		for _, s := range l.Steps {
			if c.minSpacingM > 0 && havePoint {
				d := geo.Distance(lastPoint, orb.Point{s.StartLocation.Lng, s.StartLocation.Lat})
				if d < c.minSpacingM {
					continue
				}
			}

			name := stripTags(s.HTMLInstructions)
			if name == "" {
				name = fmt.Sprintf("Step %d", order+1)
			}
			emit(name, s.StartLocation, "")
		}

		if len(l.Steps) > 0 {
			last := l.Steps[len(l.Steps)-1]
			if last.EndLocation != nil {
				name := l.EndAddress
				if name == "" {
					name = fmt.Sprintf("Point %d", order+1)
				}
				emit(name, *last.EndLocation, l.EndAddress)
			}
		}
	}

	return locs
}
