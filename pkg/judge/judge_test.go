package judge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourgo/pkg/model"
)

var testLoc = model.Location{
	ID:   "run1_point_0",
	Name: "Piazza Navona",
}

func record(agent string, kind model.ContentKind, content map[string]string) model.ContentRecord {
	if content == nil {
		content = map[string]string{}
	}
	return model.ContentRecord{
		RunID:      "run1",
		LocationID: testLoc.ID,
		AgentName:  agent,
		Kind:       kind,
		Content:    content,
		Success:    true,
	}
}

func TestScore_KindPreference(t *testing.T) {
	content := map[string]string{"title": "Guide", "description": "A guide", "url": "https://x"}

	text := Score(record("a", model.KindText, content), testLoc)
	video := Score(record("b", model.KindVideo, content), testLoc)
	music := Score(record("c", model.KindMusic, content), testLoc)

	assert.Greater(t, text, video, "text outranks video on identical content")
	assert.Greater(t, text, music, "text outranks music on identical content")
	assert.Equal(t, video, music, "video and music share the same base preference")
}

// Adding any single bonus attribute never decreases a record's score.
func TestScore_BonusesAreMonotonic(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"Title", "title", "Some Title"},
		{"Description", "description", "Some description"},
		{"URL", "url", "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := Score(record("a", model.KindVideo, nil), testLoc)
			withAttr := Score(record("a", model.KindVideo, map[string]string{tt.key: tt.val}), testLoc)
			assert.GreaterOrEqual(t, withAttr, base)
		})
	}
}

func TestScore_CapAt100(t *testing.T) {
	// Maximizes every bonus: content 30, title 20 + capped overlap 20,
	// description 15, text kind 10, url 5 = 100 exactly, never more.
	wordyLoc := model.Location{ID: "x", Name: "Basilica di Santa Maria Maggiore Roma"}
	full := record("a", model.KindText, map[string]string{
		"title":       "Basilica di Santa Maria Maggiore Roma walking tour",
		"description": "Everything about the basilica",
		"url":         "https://example.com",
	})
	assert.Equal(t, 100.0, Score(full, wordyLoc))
}

func TestScore_TitleOverlap(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		wantBonus float64
	}{
		{"Disjoint", "Completely unrelated words", 0},
		{"OneWord", "The Navona fountain", 5},
		{"TwoWords", "Piazza Navona history", 10},
		{"RepeatsDontDouble", "piazza navona piazza navona guide", 10}, // distinct words only
	}

	disjoint := Score(record("a", model.KindVideo, map[string]string{"title": "Completely unrelated words"}), testLoc)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(record("a", model.KindVideo, map[string]string{"title": tt.title}), testLoc)
			assert.Equal(t, disjoint+tt.wantBonus, got)
		})
	}
}

func TestScore_OverlapBonusCaps(t *testing.T) {
	longLoc := model.Location{ID: "x", Name: "one two three four five six"}
	rec := record("a", model.KindVideo, map[string]string{"title": "one two three four five six"})
	disjoint := record("a", model.KindVideo, map[string]string{"title": "zero none nil nought naught void"})

	// 6 shared words would be +30 uncapped; the bonus stops at 20.
	assert.Equal(t, Score(disjoint, longLoc)+20, Score(rec, longLoc))
}

func TestDecide_NoSuccessfulRecords(t *testing.T) {
	failed := model.ContentRecord{
		AgentName: "VideoAgent", Kind: model.KindVideo,
		Content: map[string]string{}, Success: false, Error: "quota exceeded",
	}

	e := NewEngine("run1")
	d := e.Decide(testLoc, []model.ContentRecord{failed})

	assert.Equal(t, model.KindText, d.Kind)
	assert.Empty(t, d.Content)
	assert.Equal(t, "No successful results available", d.Reasoning)
	assert.Len(t, d.AllRecords, 1, "degenerate decision still references the original records")
}

func TestDecide_Deterministic(t *testing.T) {
	records := []model.ContentRecord{
		record("TextAgent", model.KindText, map[string]string{"title": "Piazza Navona", "description": "Baroque square", "url": "https://w"}),
		record("VideoAgent", model.KindVideo, map[string]string{"title": "Rome walk", "url": "https://y"}),
	}

	e := NewEngine("run1")
	first := e.Decide(testLoc, records)
	second := e.Decide(testLoc, records)

	assert.Equal(t, first.Kind, second.Kind)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, first.Reasoning, second.Reasoning)
}

func TestDecide_TieKeepsIterationOrder(t *testing.T) {
	same := map[string]string{"title": "Rome", "url": "https://x"}
	records := []model.ContentRecord{
		record("VideoAgent", model.KindVideo, same),
		record("MusicAgent", model.KindMusic, same),
	}

	e := NewEngine("run1")
	d := e.Decide(testLoc, records)
	assert.Equal(t, model.KindVideo, d.Kind, "equal scores keep the earlier record")
}

func TestDecide_Reasoning(t *testing.T) {
	longDesc := strings.Repeat("Piazza Navona is a public square in Rome. ", 4)
	records := []model.ContentRecord{
		record("TextAgent", model.KindText, map[string]string{
			"title":       "Piazza Navona",
			"description": longDesc,
			"url":         "https://en.wikipedia.org/wiki/Piazza_Navona",
		}),
		record("MusicAgent", model.KindMusic, nil),
	}

	e := NewEngine("run1")
	d := e.Decide(testLoc, records)

	require.Equal(t, model.KindText, d.Kind)
	// 30 content + 20 title + 10 overlap + 15 description + 10 text + 5 url
	assert.Contains(t, d.Reasoning, "Selected text content from TextAgent (score: 90.0/100)")
	assert.Contains(t, d.Reasoning, "Title: 'Piazza Navona'")
	assert.Contains(t, d.Reasoning, "Significantly higher relevance than alternatives")
	assert.Contains(t, d.Reasoning, "Contains comprehensive description")
	assert.True(t, strings.HasSuffix(d.Reasoning, "."), "clauses end with a trailing period")
}

func TestDecide_SkipsFailedRecords(t *testing.T) {
	records := []model.ContentRecord{
		{AgentName: "TextAgent", Kind: model.KindText, Content: map[string]string{"title": "Broken but high"}, Success: false},
		record("MusicAgent", model.KindMusic, map[string]string{"title": "Rome ambient"}),
	}

	e := NewEngine("run1")
	d := e.Decide(testLoc, records)
	assert.Equal(t, model.KindMusic, d.Kind, "failed records never win")
}
