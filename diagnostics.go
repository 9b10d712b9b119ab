// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package leadscout

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// DiagnosticStatus is the pass/warning/fail bucket of a diagnostic score.
type DiagnosticStatus string

const (
	StatusPass    DiagnosticStatus = "pass"
	StatusWarning DiagnosticStatus = "warning"
	StatusFail    DiagnosticStatus = "fail"
)

// DiagnosticResult is the outcome of one page-quality check. Immutable once
// produced; Status is always the bucket of Score.
type DiagnosticResult struct {
	Name    string           `json:"name"`
	Status  DiagnosticStatus `json:"status"`
	Details string           `json:"details"`
	// Score is 0..100
	Score int `json:"score"`
}

// Names of the five diagnostic checks, in the order the engine reports them.
const (
	CheckPageSpeed   = "Page Speed"
	CheckMobile      = "Mobile Friendliness"
	CheckCTA         = "CTA Analysis"
	CheckSEO         = "SEO Basics"
	CheckBrokenLinks = "Broken Links"
)

// statusForScore maps a 0..100 score to its status bucket. All checks use
// this mapping except page speed, which has bespoke load-time breakpoints
// (see checkPageSpeed).
func statusForScore(score int) DiagnosticStatus {
	switch {
	case score >= 75:
		return StatusPass
	case score >= 50:
		return StatusWarning
	default:
		return StatusFail
	}
}

// PageSnapshot carries everything the diagnostic checks need from one
// rendered page. The browser session fills all fields; tests may construct
// snapshots directly, in which case the browser-evaluated fields fall back
// to values derived from the HTML.
type PageSnapshot struct {
	// URL is the final page URL, used to resolve relative links
	URL string
	// HTML is the rendered document markup
	HTML string
	// Title is the document title as reported by the browser
	Title string
	// BodyText is the visible text content, used for bot-protection probing
	BodyText string
	// LoadTime is the navigation-to-stable duration
	LoadTime time.Duration
	// BaseFontSizePx is the computed body font size in CSS pixels
	BaseFontSizePx float64
	// HasResponsiveMediaQuery reports whether any attached stylesheet
	// contains a min-width/max-width media query
	HasResponsiveMediaQuery bool
	// InteractiveTexts holds the visible text of links, buttons and
	// role=button elements as evaluated in the browser. Nil means no
	// browser evaluation happened and checks derive it from HTML.
	InteractiveTexts []string

	docOnce sync.Once
	doc     *goquery.Document
	docErr  error
}

// Document lazily parses the snapshot HTML, caching the result.
func (s *PageSnapshot) Document() (*goquery.Document, error) {
	s.docOnce.Do(func() {
		s.doc, s.docErr = goquery.NewDocumentFromReader(strings.NewReader(s.HTML))
	})
	return s.doc, s.docErr
}

// DiagnosticEngine runs the fixed battery of page-quality checks against a
// rendered page snapshot.
type DiagnosticEngine struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewDiagnosticEngine creates an engine with a short-timeout HTTP client
// for link probing and a rate limiter shared across all probes of one
// engine instance.
func NewDiagnosticEngine() *DiagnosticEngine {
	return &DiagnosticEngine{
		client:  &http.Client{Timeout: 5 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(10), linkProbeBatchSize),
	}
}

type diagnosticCheck struct {
	name string
	fn   func(ctx context.Context, snap *PageSnapshot) DiagnosticResult
}

func (e *DiagnosticEngine) checks() []diagnosticCheck {
	return []diagnosticCheck{
		{CheckPageSpeed, e.checkPageSpeed},
		{CheckMobile, e.checkMobileFriendly},
		{CheckCTA, e.checkCTA},
		{CheckSEO, e.checkSEO},
		{CheckBrokenLinks, e.checkBrokenLinks},
	}
}

// Run executes all five checks concurrently and returns all five results
// in fixed order. A check that panics is converted to a zero-score fail
// result so one broken check cannot blank out the other four.
func (e *DiagnosticEngine) Run(ctx context.Context, snap *PageSnapshot) []DiagnosticResult {
	return e.runChecks(ctx, snap, e.checks())
}

func (e *DiagnosticEngine) runChecks(ctx context.Context, snap *PageSnapshot, checks []diagnosticCheck) []DiagnosticResult {
	results := make([]DiagnosticResult, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(i int, check diagnosticCheck) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("leadscout: %s check panicked on %s: %v", check.name, snap.URL, r)
					results[i] = DiagnosticResult{
						Name:    check.name,
						Status:  StatusFail,
						Details: "This check could not be completed.",
						Score:   0,
					}
				}
			}()
			results[i] = check.fn(ctx, snap)
		}(i, check)
	}
	wg.Wait()
	return results
}

// OverallScore returns the mean of the diagnostic scores, rounded to the
// nearest integer. An empty slice scores 0.
func OverallScore(diagnostics []DiagnosticResult) int {
	if len(diagnostics) == 0 {
		return 0
	}
	sum := 0
	for _, d := range diagnostics {
		sum += d.Score
	}
	return (sum + len(diagnostics)/2) / len(diagnostics)
}
