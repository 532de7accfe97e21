package agent

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourgo/pkg/cache"
	"tourgo/pkg/config"
	"tourgo/pkg/model"
	"tourgo/pkg/request"
	"tourgo/pkg/tracker"
)

func newRequestClient() *request.Client {
	cfg := &config.RequestConfig{Retries: 1, Timeout: config.Duration(5e9)}
	return request.New(cfg, cache.NullCache{}, tracker.New())
}

func newTextAgent(t *testing.T, handler http.HandlerFunc) *TextAgent {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a := NewTextAgent("run_test", newRequestClient())
	a.RESTEndpoint = srv.URL + "/api/rest_v1"
	a.SearchEndpoint = srv.URL + "/w/api.php"
	return a
}

func TestTextAgent_DirectSummary(t *testing.T) {
	a := newTextAgent(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/rest_v1/page/summary/") {
			fmt.Fprint(w, `{
				"title": "Pantheon, Rome",
				"extract": "The Pantheon is a former Roman temple.",
				"extract_html": "<p>The Pantheon is a former Roman temple.</p>",
				"content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/Pantheon,_Rome"}}
			}`)
			return
		}
		http.NotFound(w, r)
	})

	rec, err := a.Search(context.Background(), model.Location{ID: "p0", Name: "Pantheon"})
	require.NoError(t, err)

	assert.True(t, rec.Success)
	assert.Equal(t, model.KindText, rec.Kind)
	assert.Equal(t, "Pantheon, Rome", rec.Content["title"])
	assert.Equal(t, "The Pantheon is a former Roman temple.", rec.Content["description"])
	assert.Equal(t, "https://en.wikipedia.org/wiki/Pantheon,_Rome", rec.Content["url"])
	assert.Equal(t, "Wikipedia", rec.Content["source"])
}

func TestTextAgent_SearchFallback(t *testing.T) {
	a := newTextAgent(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/w/api.php":
			assert.Equal(t, "query", r.URL.Query().Get("action"))
			fmt.Fprint(w, `{"query": {"search": [{"title": "Trevi Fountain"}]}}`)
		case strings.HasSuffix(r.URL.Path, "/page/summary/Trevi%20Fountain"),
			strings.HasSuffix(r.URL.Path, "/page/summary/Trevi Fountain"):
			fmt.Fprint(w, `{"title": "Trevi Fountain", "extract": "A fountain in Rome."}`)
		default:
			http.NotFound(w, r)
		}
	})

	rec, err := a.Search(context.Background(), model.Location{ID: "p1", Name: "Fontana di Trevi"})
	require.NoError(t, err)

	assert.True(t, rec.Success)
	assert.Equal(t, "Trevi Fountain", rec.Content["title"])
}

func TestTextAgent_NoArticlePlaceholder(t *testing.T) {
	a := newTextAgent(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/w/api.php" {
			fmt.Fprint(w, `{"query": {"search": []}}`)
			return
		}
		http.NotFound(w, r)
	})

	loc := model.Location{ID: "p2", Name: "Turn right onto Vicolo Anonimo"}
	rec, err := a.Search(context.Background(), loc)
	require.NoError(t, err)

	assert.True(t, rec.Success, "no article is a placeholder, not a failure")
	assert.Equal(t, loc.Name, rec.Content["title"])
	assert.Contains(t, rec.Content["description"], "No specific information found")
	assert.Empty(t, rec.Content["url"])
}
