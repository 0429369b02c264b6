// Package monitor orchestrates one full check: probe the portal, run
// the browser session, push the outcome through the dedup-and-notify
// pipeline, and persist the seen-set.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/use-agent/fpdswatch/config"
	"github.com/use-agent/fpdswatch/models"
	"github.com/use-agent/fpdswatch/notify"
	"github.com/use-agent/fpdswatch/pipeline"
	"github.com/use-agent/fpdswatch/probe"
	"github.com/use-agent/fpdswatch/scraper"
	"github.com/use-agent/fpdswatch/state"
)

// probeTimeout bounds the pre-flight reachability check.
const probeTimeout = 30 * time.Second

// Snapshot is the status view of the most recent run, served by the
// status endpoint in scheduled mode.
type Snapshot struct {
	Runs        int       `json:"runs"`
	LastRun     time.Time `json:"last_run"`
	LastOutcome string    `json:"last_outcome,omitempty"`
	LastRecords int       `json:"last_records"`
	LastNew     int       `json:"last_new"`
	SeenTotal   int       `json:"seen_total"`
}

// Monitor runs checks one at a time and remembers the last outcome.
type Monitor struct {
	cfg  *config.Config
	pipe *pipeline.Pipeline

	mu   sync.Mutex
	snap Snapshot
}

// New wires a Monitor from config and a notifier.
func New(cfg *config.Config, notifier *notify.Notifier) *Monitor {
	return &Monitor{
		cfg:  cfg,
		pipe: pipeline.New(notifier, cfg.Scrape.ResultsWait),
	}
}

// Run performs one complete check. All failure modes surface as a
// tagged outcome plus a notification; Run itself never panics or
// returns an error.
func (m *Monitor) Run(ctx context.Context) models.RunOutcome {
	filter := models.FilterForWindow(time.Now(), m.cfg.Monitor.DaysBack,
		m.cfg.Monitor.AgencyName, m.cfg.Monitor.NAICSCode, m.cfg.Monitor.PSCCode)

	slog.Info("run starting",
		"agency", filter.AgencyName,
		"naics", filter.NAICSCode,
		"psc", filter.PSCCode,
		"from", filter.DateFrom,
		"to", filter.DateTo,
		"maxPages", m.cfg.Monitor.MaxPages,
	)

	outcome := m.collect(ctx, filter)

	seen := state.Load(m.cfg.Monitor.StateFile)
	updated, newCount := m.pipe.Process(ctx, outcome, filter, seen)

	// A failed run never persists: whatever was half-observed should
	// notify again once the run succeeds.
	if outcome.Kind != models.OutcomeFailure {
		if err := state.Save(m.cfg.Monitor.StateFile, updated); err != nil {
			slog.Error("failed to persist seen-set", "path", m.cfg.Monitor.StateFile, "error", err)
		}
	}

	m.mu.Lock()
	m.snap.Runs++
	m.snap.LastRun = time.Now()
	m.snap.LastOutcome = outcome.Kind.String()
	m.snap.LastRecords = len(outcome.Records)
	m.snap.LastNew = newCount
	m.snap.SeenTotal = len(updated)
	m.mu.Unlock()

	slog.Info("run finished",
		"outcome", outcome.Kind.String(),
		"records", len(outcome.Records),
		"new", newCount,
		"seenTotal", len(updated),
	)
	return outcome
}

// collect produces the run outcome: probe, browser session, scrape.
func (m *Monitor) collect(ctx context.Context, filter models.SearchFilter) models.RunOutcome {
	if !m.cfg.Monitor.SkipProbe {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := probe.Check(probeCtx, scraper.AdvancedSearchURL, m.cfg.Browser.Proxy)
		cancel()
		if err != nil {
			return models.Failure(err)
		}
	}

	session, err := scraper.NewSession(m.cfg.Browser, m.cfg.Scrape, m.cfg.Monitor.MaxPages)
	if err != nil {
		return models.Failure(err)
	}
	defer session.Close()

	return session.RunOnce(ctx, filter)
}

// Snapshot returns the status of the most recent run.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}
