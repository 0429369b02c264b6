package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// LocatorSpec is one strategy for finding a form control or link on a
// page whose markup we do not control. Exactly one of the matching
// modes applies:
//
//   - Label: match a <label> by visible text (case-insensitive
//     substring), then resolve its associated control.
//   - Sel + Text: match visible text within elements selected by Sel.
//   - Sel alone: plain CSS selector, first match.
//
// Callers pass ordered candidate lists; earlier entries are the
// markup we expect today, later ones the guesses for when it shifts.
type LocatorSpec struct {
	Sel   string
	Label string
	Text  string
}

func (s LocatorSpec) String() string {
	switch {
	case s.Label != "":
		return "label:" + s.Label
	case s.Text != "":
		return s.Sel + `:text("` + s.Text + `")`
	default:
		return s.Sel
	}
}

// Fill resolves candidates in order and replaces the value of the
// first control found. A candidate that fails to resolve, or errors
// while acting, is skipped silently; false means every candidate
// failed. That is a non-fatal signal: a missing filter field degrades
// filter precision but the search still proceeds.
func Fill(p *rod.Page, candidates []LocatorSpec, value string) bool {
	for _, spec := range candidates {
		el, err := locate(p, spec)
		if err != nil {
			continue
		}
		if err := el.SelectAllText(); err != nil {
			continue
		}
		if err := el.Input(value); err != nil {
			continue
		}
		return true
	}
	return false
}

// Type is Fill preceded by a click, for controls that only accept
// values through key events (the portal's date pickers).
func Type(p *rod.Page, candidates []LocatorSpec, value string) bool {
	for _, spec := range candidates {
		el, err := locate(p, spec)
		if err != nil {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			continue
		}
		if err := el.SelectAllText(); err != nil {
			continue
		}
		if err := el.Input(value); err != nil {
			continue
		}
		return true
	}
	return false
}

// Click clicks the first resolvable candidate. Same fallback contract
// as Fill.
func Click(p *rod.Page, candidates []LocatorSpec) bool {
	for _, spec := range candidates {
		el, err := locate(p, spec)
		if err != nil {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			continue
		}
		return true
	}
	return false
}

// locate resolves a single spec without waiting: fallback chains need
// an immediate yes/no per candidate, not rod's default retry loop.
func locate(p *rod.Page, spec LocatorSpec) (*rod.Element, error) {
	switch {
	case spec.Label != "":
		return locateByLabel(p, spec.Label)
	case spec.Text != "":
		sel := spec.Sel
		if sel == "" {
			sel = "*"
		}
		pattern := "/" + regexp.QuoteMeta(spec.Text) + "/i"
		return p.Sleeper(rod.NotFoundSleeper).ElementR(sel, pattern)
	default:
		els, err := p.Elements(spec.Sel)
		if err != nil {
			return nil, err
		}
		if len(els) == 0 {
			return nil, fmt.Errorf("no element matches %q", spec.Sel)
		}
		return els.First(), nil
	}
}

// locateByLabel finds a <label> whose text contains text and resolves
// the control it points at, either through its for attribute or the
// first form control nested inside it.
func locateByLabel(p *rod.Page, text string) (*rod.Element, error) {
	labels, err := p.Elements("label")
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(text)
	for _, label := range labels {
		t, err := label.Text()
		if err != nil || !strings.Contains(strings.ToLower(t), needle) {
			continue
		}

		if forAttr, _ := label.Attribute("for"); forAttr != nil && *forAttr != "" {
			els, err := p.Elements(fmt.Sprintf("[id=%q]", *forAttr))
			if err == nil && len(els) > 0 {
				return els.First(), nil
			}
		}

		ctrls, err := label.Elements("input, select, textarea")
		if err == nil && len(ctrls) > 0 {
			return ctrls.First(), nil
		}
	}
	return nil, fmt.Errorf("no label matching %q", text)
}
