package scraper

import (
	"log/slog"
	"time"

	"github.com/go-rod/rod"

	"github.com/use-agent/fpdswatch/extract"
	"github.com/use-agent/fpdswatch/models"
)

// nextPageCandidates locates the "next page" control. Absence of all
// of them is the normal end of pagination, not an error.
var nextPageCandidates = []LocatorSpec{
	{Sel: `a[rel="next"]`},
	{Sel: "a", Text: "Next"},
	{Sel: "button", Text: "Next"},
	{Sel: "li.next a"},
}

// collectRemaining pages through the results after the first page,
// re-extracting each page, up to the configured page cap. An empty
// intermediate page does not stop pagination; only a missing next
// control or the cap does. Inter-page wait timeouts extract whatever
// has rendered, best effort.
func (s *Session) collectRemaining(p *rod.Page) []models.Record {
	var collected []models.Record

	pagesDone := 1
	for pagesDone < s.maxPages {
		if !Click(p, nextPageCandidates) {
			slog.Debug("no next-page control, pagination complete", "pages", pagesDone)
			break
		}

		if err := p.Timeout(s.scrapeCfg.ResultsWait).WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
			slog.Debug("next page did not stabilize, extracting anyway", "error", err)
		}

		markup, err := p.HTML()
		if err != nil {
			slog.Warn("failed to read page markup, stopping pagination", "page", pagesDone+1, "error", err)
			break
		}

		pageRecords := extract.Extract(extract.ScopeRegion(markup, s.scrapeCfg.ResultsScope))
		collected = append(collected, pageRecords...)
		pagesDone++
		slog.Debug("page extracted", "page", pagesDone, "records", len(pageRecords))
	}

	return collected
}
