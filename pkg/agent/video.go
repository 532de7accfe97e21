package agent

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"tourgo/pkg/model"
)

// VideoAgent finds a relevant video for a location via the YouTube Data
// API. Requires an API key.
type VideoAgent struct {
	base
	svc *youtube.Service
}

// NewVideoAgent creates the YouTube video agent. The service handle is
// built once and reused for every search. Extra options override the
// defaults (tests point the endpoint at a local server).
func NewVideoAgent(ctx context.Context, runID, apiKey string, opts ...option.ClientOption) (*VideoAgent, error) {
	svc, err := youtube.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &VideoAgent{
		base: base{runID: runID, name: "VideoAgent", kind: model.KindVideo},
		svc:  svc,
	}, nil
}

// Search looks up the top relevance-ordered video for the location.
func (a *VideoAgent) Search(ctx context.Context, loc model.Location) (model.ContentRecord, error) {
	a.logInfo("Searching for videos", "location", loc.Name)

	query := searchQuery(loc)
	a.logInfo("Search query", "query", query)

	items, err := a.query(ctx, query)
	if err != nil {
		a.logError("YouTube search failed", "error", err)
		return a.failure(loc, err), nil
	}

	// Retry with the city when the cleaned query finds nothing
	if len(items) == 0 && loc.Address != "" {
		if city := locationContext(loc.Address); city != "" && city != query {
			a.logInfo("Retrying with city", "city", city)
			items, err = a.query(ctx, city)
			if err != nil {
				a.logError("YouTube retry failed", "error", err)
				return a.failure(loc, err), nil
			}
		}
	}

	if len(items) == 0 {
		a.logInfo("No videos found", "location", loc.Name)
		return a.record(loc, map[string]string{
			"title":       fmt.Sprintf("Walking tour near %s", loc.Name),
			"description": "No specific video found for this location",
			"url":         "",
			"video_id":    "",
			"thumbnail":   "",
			"channel":     "",
		}), nil
	}

	video := items[0]
	videoID := ""
	if video.Id != nil {
		videoID = video.Id.VideoId
	}
	content := map[string]string{
		"title":    "",
		"url":      "",
		"video_id": videoID,
	}
	if videoID != "" {
		content["url"] = "https://www.youtube.com/watch?v=" + videoID
	}
	if sn := video.Snippet; sn != nil {
		content["title"] = sn.Title
		content["description"] = sn.Description
		content["channel"] = sn.ChannelTitle
		if sn.Thumbnails != nil && sn.Thumbnails.Default != nil {
			content["thumbnail"] = sn.Thumbnails.Default.Url
		}
	}

	a.logInfo("Found video", "title", content["title"], "channel", content["channel"])
	return a.record(loc, content), nil
}

func (a *VideoAgent) query(ctx context.Context, q string) ([]*youtube.SearchResult, error) {
	resp, err := a.svc.Search.List([]string{"id", "snippet"}).
		Q(q).
		MaxResults(1).
		Type("video").
		Order("relevance").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}
