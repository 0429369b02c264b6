// Package scraper drives a headless browser through one full FPDS
// advanced-search run: navigate, fill the filter form, submit, wait
// for the results grid, extract, paginate. The portal's markup is not
// ours, so every interaction goes through ordered locator fallbacks
// and every failure degrades to a documented outcome instead of
// aborting the run.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/fpdswatch/config"
	"github.com/use-agent/fpdswatch/extract"
	"github.com/use-agent/fpdswatch/models"
)

// AdvancedSearchURL is the fixed search entry point.
const AdvancedSearchURL = "https://www.fpds.gov/fpdsng_cms/index.php/en/advanced-search.html"

// resultsMarker covers the selectors that commonly represent the
// rendered results grid.
const resultsMarker = "table, #searchResults table, table.results, div.results table"

// Candidate chains for the five filter fields and the submit control.
// Earlier entries match the portal's current markup; later ones are
// the guesses for when it shifts.
var (
	agencyCandidates = []LocatorSpec{
		{Label: "Contracting Agency"},
		{Sel: `input[placeholder*="Agency"]`},
		{Sel: `input[name*="agency"]`},
		{Sel: `input[id*="agency"]`},
	}
	naicsCandidates = []LocatorSpec{
		{Label: "NAICS"},
		{Sel: `input[placeholder*="NAICS"]`},
		{Sel: `input[name*="naics"]`},
		{Sel: `input[id*="naics"]`},
	}
	pscCandidates = []LocatorSpec{
		{Label: "PSC"},
		{Sel: `input[placeholder*="PSC"]`},
		{Sel: `input[name*="psc"]`},
		{Sel: `input[id*="psc"]`},
	}
	dateFromCandidates = []LocatorSpec{
		{Label: "Date Signed From"},
		{Label: "Signed From"},
		{Label: "From Date"},
		{Sel: `input[placeholder*="From"]`},
		{Sel: `input[name*="dateFrom"]`},
		{Sel: `input[id*="dateFrom"]`},
	}
	dateToCandidates = []LocatorSpec{
		{Label: "Date Signed To"},
		{Label: "Signed To"},
		{Label: "To Date"},
		{Sel: `input[placeholder*="To"]`},
		{Sel: `input[name*="dateTo"]`},
		{Sel: `input[id*="dateTo"]`},
	}
	submitCandidates = []LocatorSpec{
		{Sel: "button", Text: "Search"},
		{Sel: `input[type="submit"]`},
		{Sel: `button[type="submit"]`},
		{Sel: "a, button, input", Text: "Search"},
	}
)

// Session owns one browser for the duration of a run.
type Session struct {
	browser    *rod.Browser
	browserCfg config.BrowserConfig
	scrapeCfg  config.ScrapeConfig
	maxPages   int
}

// NewSession launches a headless browser configured for the portal.
func NewSession(browserCfg config.BrowserConfig, scrapeCfg config.ScrapeConfig, maxPages int) (*Session, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.Proxy != "" {
		l = l.Proxy(browserCfg.Proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewMonitorError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewMonitorError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	return &Session{
		browser:    browser,
		browserCfg: browserCfg,
		scrapeCfg:  scrapeCfg,
		maxPages:   maxPages,
	}, nil
}

// Close kills the browser process. Runs on both success and failure
// paths so no Chrome is left behind.
func (s *Session) Close() {
	s.browser.MustClose()
	slog.Info("browser closed")
}

// RunOnce performs one full search-and-collect pass. It always returns
// a tagged outcome; nothing escapes uncaught, including rod panics.
func (s *Session) RunOnce(ctx context.Context, filter models.SearchFilter) (outcome models.RunOutcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("run panicked", "panic", r)
			outcome = models.Failure(fmt.Errorf("run panicked: %v", r))
		}
	}()

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return models.Failure(models.NewMonitorError(models.ErrCodeBrowserCrash, "failed to open page", err))
	}
	defer func() { _ = page.Close() }()

	// Stealth must be injected before navigation to take effect.
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}

	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
		}),
	}.Call(page)

	p := page.Context(ctx)

	if err := p.Timeout(s.scrapeCfg.NavTimeout).Navigate(AdvancedSearchURL); err != nil {
		return models.Failure(categorizeError(err, "navigation to search entry point failed"))
	}
	if err := p.Timeout(s.scrapeCfg.NavTimeout).WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("initial DOM did not stabilize, proceeding", "error", err)
	}

	s.fillFilter(p, filter)

	if !Click(p, submitCandidates) {
		// Without a submit the results wait below will time out and
		// the run surfaces as no-table, which is the honest outcome.
		slog.Warn("no submit control found")
	}

	// FPDS renders the grid well after the form posts back.
	select {
	case <-time.After(s.scrapeCfg.SettleDelay):
	case <-ctx.Done():
		return models.Failure(categorizeError(ctx.Err(), "run canceled during settle delay"))
	}

	if err := p.Timeout(s.scrapeCfg.ResultsWait).WaitElementsMoreThan(resultsMarker, 0); err != nil {
		slog.Warn("results table never appeared", "wait", s.scrapeCfg.ResultsWait, "error", err)
		return models.NoTable()
	}

	markup, err := p.HTML()
	if err != nil {
		return models.Failure(categorizeError(err, "failed to read first results page"))
	}

	records := extract.Extract(extract.ScopeRegion(markup, s.scrapeCfg.ResultsScope))
	firstPageEmpty := len(records) == 0
	if firstPageEmpty {
		slog.Info("first page parsed to zero rows, still paginating")
	}

	records = append(records, s.collectRemaining(p)...)

	slog.Info("run collected", "records", len(records), "firstPageEmpty", firstPageEmpty)
	if firstPageEmpty {
		return models.NoRows(records)
	}
	return models.Success(records)
}

// fillFilter pushes the five filter values through their fallback
// chains. Individual failures only cost filter precision.
func (s *Session) fillFilter(p *rod.Page, filter models.SearchFilter) {
	fields := []struct {
		name       string
		candidates []LocatorSpec
		value      string
		typed      bool
	}{
		{"agency", agencyCandidates, filter.AgencyName, false},
		{"naics", naicsCandidates, filter.NAICSCode, false},
		{"psc", pscCandidates, filter.PSCCode, false},
		{"dateFrom", dateFromCandidates, filter.DateFrom, true},
		{"dateTo", dateToCandidates, filter.DateTo, true},
	}

	for _, f := range fields {
		ok := false
		if f.typed {
			ok = Type(p, f.candidates, f.value)
		} else {
			ok = Fill(p, f.candidates, f.value)
		}
		if !ok {
			slog.Warn("filter field not found, search proceeds without it", "field", f.name)
		}
	}
}

// categorizeError wraps raw errors into typed MonitorErrors.
func categorizeError(err error, msg string) *models.MonitorError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewMonitorError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewMonitorError(models.ErrCodeTimeout, "run canceled", err)
	default:
		return models.NewMonitorError(models.ErrCodeNavigation, msg, err)
	}
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders
// type (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
