package extract

import (
	"bytes"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ScopeRegion narrows markup to the region(s) matching the given CSS
// selector, returning their concatenated outer HTML. The table hunt
// then operates on that region only.
//
// The selector is operator-supplied against markup we do not control,
// so every failure mode (empty/invalid selector, unparsable markup, no
// matches) falls back to the original markup unchanged.
func ScopeRegion(markup, selector string) string {
	if selector == "" {
		return markup
	}

	sel, err := cascadia.Parse(selector)
	if err != nil {
		return markup
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return markup
	}

	matches := cascadia.QueryAll(doc, sel)
	if len(matches) == 0 {
		return markup
	}

	var buf bytes.Buffer
	for _, node := range matches {
		if err := html.Render(&buf, node); err != nil {
			return markup
		}
	}
	return buf.String()
}
