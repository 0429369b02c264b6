package models

// OutcomeKind tags the result of one full scrape run.
type OutcomeKind int

const (
	// OutcomeSuccess means the results table rendered and at least one
	// record was extracted.
	OutcomeSuccess OutcomeKind = iota

	// OutcomeNoTable means the results table never appeared within the
	// wait budget. Distinct from zero matches: the page may simply not
	// have rendered.
	OutcomeNoTable

	// OutcomeNoRows means a results table rendered on the first page
	// but yielded no parsed rows there. Pagination is still attempted,
	// so Records may be non-empty.
	OutcomeNoRows

	// OutcomeFailure means an unexpected error (navigation, browser
	// crash) aborted the run.
	OutcomeFailure
)

// String returns the tag name for logs and the status endpoint.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoTable:
		return "no_table"
	case OutcomeNoRows:
		return "no_rows"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// RunOutcome is the tagged result of one run. Exactly one is produced
// per run; Records is set for Success and NoRows, Err for Failure.
type RunOutcome struct {
	Kind    OutcomeKind
	Records []Record
	Err     error
}

// Success wraps an ordered record set from a run that found data.
func Success(records []Record) RunOutcome {
	return RunOutcome{Kind: OutcomeSuccess, Records: records}
}

// NoTable reports that the results region never rendered.
func NoTable() RunOutcome {
	return RunOutcome{Kind: OutcomeNoTable}
}

// NoRows reports an empty first page; records from later pages may
// still be attached.
func NoRows(records []Record) RunOutcome {
	return RunOutcome{Kind: OutcomeNoRows, Records: records}
}

// Failure wraps an unexpected run-aborting error.
func Failure(err error) RunOutcome {
	return RunOutcome{Kind: OutcomeFailure, Err: err}
}
