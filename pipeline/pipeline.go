// Package pipeline turns one run's outcome into notifications and an
// updated seen-set. Each distinguishable outcome produces exactly one
// summary notification, and each never-before-seen record produces
// exactly one record notification across all runs.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/fpdswatch/models"
	"github.com/use-agent/fpdswatch/notify"
	"github.com/use-agent/fpdswatch/state"
)

// Sink receives one text payload per notification. Implementations
// must treat delivery as best-effort; Process ignores Send errors
// beyond logging them.
type Sink interface {
	Send(ctx context.Context, content string) error
}

// Pipeline applies dedup-and-notify semantics to run outcomes.
type Pipeline struct {
	sink        Sink
	resultsWait time.Duration
}

// New creates a Pipeline. resultsWait is only used to phrase the
// no-table notification.
func New(sink Sink, resultsWait time.Duration) *Pipeline {
	return &Pipeline{sink: sink, resultsWait: resultsWait}
}

// Process partitions the outcome's records into new vs. already-seen,
// notifies for each new one, and returns the grown seen-set plus the
// new-record count. The returned set is always a superset of the
// input; the input set is never mutated.
//
// Failure and no-table outcomes produce a single summary notification
// and leave the seen-set untouched.
func (p *Pipeline) Process(ctx context.Context, outcome models.RunOutcome, filter models.SearchFilter, seen state.SeenSet) (state.SeenSet, int) {
	switch outcome.Kind {
	case models.OutcomeFailure:
		p.send(ctx, notify.FailureMessage(outcome.Err))
		return seen, 0

	case models.OutcomeNoTable:
		p.send(ctx, notify.NoTableMessage(int(p.resultsWait.Seconds())))
		return seen, 0

	case models.OutcomeNoRows:
		// The first page parsed to nothing; say so once. Later pages
		// may still have contributed records, handled below.
		p.send(ctx, notify.NoRowsMessage())
		if len(outcome.Records) == 0 {
			return seen, 0
		}

	default:
		if len(outcome.Records) == 0 {
			p.send(ctx, notify.EmptyRunMessage(filter))
			return seen, 0
		}
	}

	updated := seen.Clone()
	newCount := 0
	for _, r := range outcome.Records {
		id := strings.TrimSpace(r.ID)
		if id == "" || updated.Has(id) {
			continue
		}
		p.send(ctx, notify.RecordMessage(r))
		updated.Add(id)
		newCount++
	}

	if newCount == 0 {
		p.send(ctx, notify.NoNewMessage())
	}
	return updated, newCount
}

func (p *Pipeline) send(ctx context.Context, content string) {
	if err := p.sink.Send(ctx, content); err != nil {
		slog.Warn("pipeline: notification not delivered", "error", err)
	}
}
