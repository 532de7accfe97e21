package agent

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"tourgo/pkg/model"
	"tourgo/pkg/request"
)

// MusicAgent finds a matching track for a location via the Spotify Web
// API, using the client-credentials flow. Requires client id and secret.
type MusicAgent struct {
	base
	rc           *request.Client
	clientID     string
	clientSecret string

	// TokenEndpoint and SearchEndpoint are overridable for tests.
	TokenEndpoint  string
	SearchEndpoint string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewMusicAgent creates the Spotify music agent.
func NewMusicAgent(runID, clientID, clientSecret string, rc *request.Client) *MusicAgent {
	return &MusicAgent{
		base:           base{runID: runID, name: "MusicAgent", kind: model.KindMusic},
		rc:             rc,
		clientID:       clientID,
		clientSecret:   clientSecret,
		TokenEndpoint:  "https://accounts.spotify.com/api/token",
		SearchEndpoint: "https://api.spotify.com/v1/search",
	}
}

// Search looks up the top track for the location, falling back to ambient
// music, then to a placeholder.
func (a *MusicAgent) Search(ctx context.Context, loc model.Location) (model.ContentRecord, error) {
	a.logInfo("Searching for music", "location", loc.Name)

	query := searchQuery(loc)
	a.logInfo("Search query", "query", query)

	track, err := a.searchTrack(ctx, query)
	if err != nil {
		a.logError("Spotify search failed", "error", err)
		return a.failure(loc, err), nil
	}

	if track == nil {
		a.logInfo("No tracks found, trying ambient instrumental")
		track, err = a.searchTrack(ctx, "ambient instrumental")
		if err != nil {
			a.logError("Spotify fallback search failed", "error", err)
			return a.failure(loc, err), nil
		}
	}

	if track == nil {
		a.logInfo("No tracks found", "location", loc.Name)
		return a.record(loc, map[string]string{
			"title":       fmt.Sprintf("Ambient music for %s", loc.Name),
			"artist":      "Various Artists",
			"album":       "",
			"url":         "",
			"track_id":    "",
			"preview_url": "",
			"duration_ms": "0",
		}), nil
	}

	artists := make([]string, 0, len(track.Artists))
	for _, ar := range track.Artists {
		artists = append(artists, ar.Name)
	}
	content := map[string]string{
		"title":       track.Name,
		"artist":      strings.Join(artists, ", "),
		"album":       track.Album.Name,
		"url":         track.ExternalURLs.Spotify,
		"track_id":    track.ID,
		"preview_url": track.PreviewURL,
		"duration_ms": strconv.Itoa(track.DurationMs),
	}

	a.logInfo("Found track", "title", content["title"], "artist", content["artist"])
	return a.record(loc, content), nil
}

type spotifyTrack struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name string `json:"name"`
	} `json:"album"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	PreviewURL string `json:"preview_url"`
	DurationMs int    `json:"duration_ms"`
}

// searchTrack returns the top track for a query, or nil when none match.
func (a *MusicAgent) searchTrack(ctx context.Context, query string) (*spotifyTrack, error) {
	token, err := a.token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", "1")

	headers := map[string]string{"Authorization": "Bearer " + token}
	body, err := a.rc.GetWithHeaders(ctx, a.SearchEndpoint+"?"+params.Encode(), headers, "")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Tracks struct {
			Items []spotifyTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if len(resp.Tracks.Items) == 0 {
		return nil, nil
	}
	return &resp.Tracks.Items[0], nil
}

// token returns a valid client-credentials token, refreshing when the
// cached one is within a minute of expiry.
func (a *MusicAgent) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry.Add(-time.Minute)) {
		return a.accessToken, nil
	}

	creds := base64.StdEncoding.EncodeToString([]byte(a.clientID + ":" + a.clientSecret))
	headers := map[string]string{
		"Authorization": "Basic " + creds,
		"Content-Type":  "application/x-www-form-urlencoded",
	}
	body, err := a.rc.PostWithHeaders(ctx, a.TokenEndpoint, []byte("grant_type=client_credentials"), headers)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	a.accessToken = resp.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	return a.accessToken, nil
}
