package notify

import (
	"fmt"
	"strings"

	"github.com/use-agent/fpdswatch/models"
)

// RecordMessage formats one newly discovered award. Vendor, date, and
// amount lines appear only when the extractor found values for them.
func RecordMessage(r models.Record) string {
	parts := []string{fmt.Sprintf("🆕 **%s**", r.Title)}
	if r.Vendor != "" {
		parts = append(parts, "Vendor: "+r.Vendor)
	}
	if r.Date != "" {
		parts = append(parts, "Date: "+r.Date)
	}
	if r.Amount != "" {
		parts = append(parts, "Amount: "+r.Amount)
	}
	parts = append(parts, r.Link)
	return strings.Join(parts, "\n")
}

// NoTableMessage reports that the results table never rendered, which
// is distinct from a search with zero matches.
func NoTableMessage(waitSecs int) string {
	return fmt.Sprintf("⚠️ FPDS monitor: no results table appeared within %ds (site slow or no data).", waitSecs)
}

// NoRowsMessage reports a rendered but row-less results table.
func NoRowsMessage() string {
	return "ℹ️ FPDS monitor: results table found but no rows parsed (filters may have no matches)."
}

// EmptyRunMessage reports a run that collected nothing for the window.
func EmptyRunMessage(f models.SearchFilter) string {
	return fmt.Sprintf("⚠️ No FPDS results found for this run (%s – %s).", f.DateFrom, f.DateTo)
}

// NoNewMessage reports a run where everything collected was already
// seen.
func NoNewMessage() string {
	return "ℹ️ No new FPDS items since last check."
}

// FailureMessage reports an unexpected run-aborting error.
func FailureMessage(err error) string {
	return fmt.Sprintf("❗ FPDS monitor error: `%v`", err)
}
