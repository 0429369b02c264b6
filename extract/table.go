// Package extract turns raw results-page markup into normalized award
// records. The portal publishes no schema, so the extractor hunts for
// the most plausible results table and maps columns by header text.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/fpdswatch/models"
)

// PortalRoot is the scheme+host every relative link is resolved
// against, and the fallback link for rows without one.
const PortalRoot = "https://www.fpds.gov"

// placeholderTitle marks a row that carried no usable link text.
const placeholderTitle = "FPDS Result"

// maxIDLen caps the joined-cell-text identity fallback.
const maxIDLen = 120

var reDate = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)

// Extract parses markup, locates the best candidate results table, and
// returns one Record per data row in document order. It never fails:
// unparsable markup, an absent table, or malformed rows all degrade to
// fewer (or zero) records.
func Extract(markup string) []models.Record {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	table := bestTable(doc)
	if table == nil {
		return nil
	}

	var headers []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, cellText(th))
	})

	var records []models.Record
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if rec, ok := extractRow(tr, headers); ok {
			records = append(records, rec)
		}
	})
	return records
}

// bestTable returns the highest-scoring table in the document, or nil
// when none qualifies. Score is the row count; tables with a single
// row are assumed to be layout, not data, and never qualify. Ties go
// to the earliest table in document order.
func bestTable(doc *goquery.Document) *goquery.Selection {
	var best *goquery.Selection
	maxRows := 0
	doc.Find("table").Each(func(_ int, t *goquery.Selection) {
		rows := t.Find("tr").Length()
		if rows > maxRows && rows > 1 {
			best, maxRows = t, rows
		}
	})
	return best
}

// extractRow maps one <tr> to a Record. Rows without data cells are
// spacer/header rows and yield nothing.
func extractRow(tr *goquery.Selection, headers []string) (models.Record, bool) {
	tds := tr.Find("td")
	if tds.Length() == 0 {
		return models.Record{}, false
	}

	rowTexts := make([]string, 0, tds.Length())
	tds.Each(func(_ int, td *goquery.Selection) {
		rowTexts = append(rowTexts, cellText(td))
	})

	link := tr.Find("a[href]").First()
	href, hasLink := "", link.Length() > 0
	if hasLink {
		href, _ = link.Attr("href")
	}

	// The link text names the award when present; otherwise the row is
	// a generic unnamed result.
	title := ""
	if hasLink {
		title = cellText(link)
	}

	// Identity fallback chain: link text, then the final path segment
	// of the link, then the joined cell text. Every row ends up with a
	// non-empty key even when nothing recognizable was found.
	id := title
	if id == "" && hasLink {
		if i := strings.LastIndex(href, "/"); i >= 0 {
			id = href[i+1:]
		} else {
			id = href
		}
	}
	if id == "" {
		id = truncate(strings.Join(rowTexts, "|"), maxIDLen)
	}

	var vendor, date, amount string
	for idx, head := range headers {
		val := ""
		if idx < len(rowTexts) {
			val = rowTexts[idx]
		}
		h := strings.ToLower(head)
		if strings.Contains(h, "date") && date == "" {
			date = val
		}
		if (strings.Contains(h, "vendor") || strings.Contains(h, "contractor")) && vendor == "" {
			vendor = val
		}
		if (strings.Contains(h, "amount") || strings.Contains(h, "value") || strings.Contains(val, "$")) && amount == "" {
			amount = val
		}
	}

	// No date-ish column: fish the full row text for a MM/DD/YYYY.
	if date == "" {
		date = reDate.FindString(strings.Join(rowTexts, " "))
	}

	if title == "" {
		title = placeholderTitle
	}

	return models.Record{
		ID:     strings.TrimSpace(id),
		Title:  title,
		Vendor: vendor,
		Date:   date,
		Amount: amount,
		Link:   normalizeLink(href),
	}, true
}

// normalizeLink resolves a row link to an absolute address against the
// portal. A missing link defaults to the portal root so notifications
// always carry something clickable.
func normalizeLink(href string) string {
	switch {
	case href == "":
		return PortalRoot
	case strings.HasPrefix(href, "/"):
		return PortalRoot + href
	case strings.HasPrefix(href, "http"):
		return href
	default:
		return PortalRoot + "/" + strings.TrimLeft(href, "./")
	}
}

// cellText extracts the visible text of a node, collapsing nested
// content and whitespace runs into single spaces.
func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
