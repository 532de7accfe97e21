package route

import (
	"strings"

	"golang.org/x/net/html"
)

// stripTags flattens an HTML fragment ("Turn <b>right</b> onto ...") into
// plain text. Adjacent text nodes get a single space where a <div> break
// would otherwise glue words together.
func stripTags(fragment string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))

	var b strings.Builder
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.TextToken {
			if tag, _ := tokenizer.TagName(); string(tag) == "div" && b.Len() > 0 {
				b.WriteByte(' ')
			}
			continue
		}
		b.Write(tokenizer.Text())
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
