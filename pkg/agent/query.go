package agent

import (
	"regexp"
	"strings"

	"tourgo/pkg/model"
)

// navigationWords are routing-instruction tokens that pollute search
// queries built from step names ("Turn right onto Main St").
var navigationWords = map[string]bool{
	"turn": true, "head": true, "continue": true, "slight": true,
	"onto": true, "toward": true, "right": true, "left": true,
}

var (
	leadingPostcode = regexp.MustCompile(`^\d+\s+`)
	trailingRegion  = regexp.MustCompile(`\s+[A-Z]{2}$`)
)

// searchQuery builds a search query from a location, dropping navigation
// words. Falls back to the raw name if filtering removes everything.
func searchQuery(loc model.Location) string {
	words := strings.Fields(loc.Name)
	filtered := make([]string, 0, len(words))
	for _, w := range words {
		if !navigationWords[strings.ToLower(w)] {
			filtered = append(filtered, w)
		}
	}
	if len(filtered) < 1 {
		return loc.Name
	}
	return strings.Join(filtered, " ")
}

// locationContext extracts a city-level hint from a postal address, e.g.
// "Via del Corso, 00186 Roma RM, Italy" yields "Roma". Returns "" when the
// address carries no usable context.
func locationContext(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return ""
	}

	var cleaned []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		part = leadingPostcode.ReplaceAllString(part, "")
		part = trailingRegion.ReplaceAllString(part, "")
		part = strings.TrimSpace(part)
		// Skip very short parts (likely abbreviations)
		if len(part) > 2 {
			cleaned = append(cleaned, part)
		}
	}

	// The city (second-to-last part, before the country) gives better
	// search specificity than the country alone.
	switch {
	case len(cleaned) >= 2:
		return cleaned[len(cleaned)-2]
	case len(cleaned) == 1:
		return cleaned[0]
	}
	return ""
}
