package models

import "time"

// Record is one normalized award entry extracted from a results page.
// Identity for dedup purposes is ID alone; the remaining fields are
// free-form as rendered by the portal and may be empty, except Link
// which always falls back to the portal root.
type Record struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Vendor string `json:"vendor,omitempty"`
	Date   string `json:"date,omitempty"`
	Amount string `json:"amount,omitempty"`
	Link   string `json:"link"`
}

// SearchFilter is the immutable per-run search criteria. The date
// bounds are MM/DD/YYYY strings because that is what the portal's
// date inputs expect.
type SearchFilter struct {
	AgencyName string
	NAICSCode  string
	PSCCode    string
	DateFrom   string
	DateTo     string
}

// dateLayout is the portal's date-input format.
const dateLayout = "01/02/2006"

// FilterForWindow builds a SearchFilter whose date range covers the
// daysBack days ending at today.
func FilterForWindow(today time.Time, daysBack int, agency, naics, psc string) SearchFilter {
	start := today.AddDate(0, 0, -daysBack)
	return SearchFilter{
		AgencyName: agency,
		NAICSCode:  naics,
		PSCCode:    psc,
		DateFrom:   start.Format(dateLayout),
		DateTo:     today.Format(dateLayout),
	}
}
