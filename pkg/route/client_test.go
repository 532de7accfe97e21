package route

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourgo/pkg/cache"
	"tourgo/pkg/config"
	"tourgo/pkg/request"
	"tourgo/pkg/tracker"
)

func TestParseOriginDestination(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantOrig string
		wantDest string
		wantErr  bool
	}{
		{
			name:     "FullRoute",
			url:      "https://www.google.com/maps/dir/Colosseum/Pantheon/@41.89,12.47,15z",
			wantOrig: "Colosseum",
			wantDest: "Pantheon",
		},
		{
			name:     "EncodedNames",
			url:      "https://www.google.com/maps/dir/Piazza+Navona/Trevi+Fountain/@41.9,12.4,14z",
			wantOrig: "Piazza Navona",
			wantDest: "Trevi Fountain",
		},
		{
			name:    "NoDirSegment",
			url:     "https://www.google.com/maps/@41.89,12.49,15z",
			wantErr: true,
		},
		{
			name:    "EmptyOrigin",
			url:     "https://www.google.com/maps/dir/''/Pantheon/@41.89,12.47,15z",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig, dest, err := parseOriginDestination(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOrig, orig)
			assert.Equal(t, tt.wantDest, dest)
		})
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Plain", "Head north", "Head north"},
		{"Bold", "Turn <b>right</b> onto <b>Main St</b>", "Turn right onto Main St"},
		{"DivBreak", `Continue straight<div style="font-size:0.9em">Walk past the fountain</div>`, "Continue straight Walk past the fountain"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripTags(tt.in))
		})
	}
}

const directionsFixture = `{
	"status": "OK",
	"routes": [{
		"legs": [{
			"end_address": "Piazza della Rotonda, 00186 Roma RM, Italy",
			"distance": {"text": "1.2 km"},
			"steps": [
				{
					"html_instructions": "Head <b>north</b> on <b>Via Sacra</b>",
					"start_location": {"lat": 41.8902, "lng": 12.4922},
					"end_location": {"lat": 41.8910, "lng": 12.4900}
				},
				{
					"html_instructions": "Turn <b>left</b> onto <b>Via dei Fori Imperiali</b>",
					"start_location": {"lat": 41.8910, "lng": 12.4900},
					"end_location": {"lat": 41.8986, "lng": 12.4769}
				}
			]
		}]
	}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, spacing float64) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	reqCfg := &config.RequestConfig{Retries: 1, Timeout: config.Duration(5e9)}
	rc := request.New(reqCfg, cache.NullCache{}, tracker.New())

	c := NewClient(&config.RouteConfig{APIKey: "test-key", MinSpacingM: spacing}, rc, "run_test")
	c.Endpoint = srv.URL
	return c, srv
}

func TestExtractLocations(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "walking", r.URL.Query().Get("mode"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write([]byte(directionsFixture))
	}, 0)

	locs, err := c.ExtractLocations(context.Background(), "https://www.google.com/maps/dir/Colosseum/Pantheon/@41.89,12.47,15z")
	require.NoError(t, err)

	// Two step starts plus the leg end
	require.Len(t, locs, 3)
	assert.Equal(t, "Head north on Via Sacra", locs[0].Name)
	assert.Equal(t, "run_test_point_0", locs[0].ID)
	assert.Equal(t, 0, locs[0].Order)
	assert.Equal(t, 41.8902, locs[0].Coords.Lat)

	assert.Equal(t, "Turn left onto Via dei Fori Imperiali", locs[1].Name)

	assert.Equal(t, "Piazza della Rotonda, 00186 Roma RM, Italy", locs[2].Name)
	assert.Equal(t, locs[2].Name, locs[2].Address, "leg end carries the address")
	assert.Equal(t, 2, locs[2].Order)
}

func TestExtractLocations_SpacingFilter(t *testing.T) {
	// Step 2 starts ~100m from step 1; a 500m floor drops it but keeps
	// the leg end.
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(directionsFixture))
	}, 500)

	locs, err := c.ExtractLocations(context.Background(), "https://www.google.com/maps/dir/Colosseum/Pantheon/@41.89,12.47,15z")
	require.NoError(t, err)

	require.Len(t, locs, 2)
	assert.Equal(t, "Head north on Via Sacra", locs[0].Name)
	assert.Equal(t, "Piazza della Rotonda, 00186 Roma RM, Italy", locs[1].Name)
	assert.Equal(t, 1, locs[1].Order, "orders stay contiguous after filtering")
}

func TestExtractLocations_APIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "routes": []}`))
	}, 0)

	_, err := c.ExtractLocations(context.Background(), "https://www.google.com/maps/dir/Nowhere/Elsewhere/@0,0,1z")
	assert.ErrorContains(t, err, "ZERO_RESULTS")
}
