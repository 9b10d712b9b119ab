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
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// checkPageSpeed scores navigation-to-stable time with fixed breakpoints.
//
// NOTE: this check deliberately does not use the generic statusForScore
// bucketing. Its buckets are tuned to load-time milliseconds (under 4s is
// still a pass, under 6s a warning) and have always been reported that way
// in downstream reports. Do not unify this with statusForScore.
func (e *DiagnosticEngine) checkPageSpeed(_ context.Context, snap *PageSnapshot) DiagnosticResult {
	ms := snap.LoadTime.Milliseconds()

	var score int
	var status DiagnosticStatus
	switch {
	case ms < 2000:
		score, status = 100, StatusPass
	case ms < 4000:
		score, status = 75, StatusPass
	case ms < 6000:
		score, status = 50, StatusWarning
	case ms < 10000:
		score, status = 25, StatusFail
	default:
		score, status = 0, StatusFail
	}

	return DiagnosticResult{
		Name:    CheckPageSpeed,
		Status:  status,
		Details: fmt.Sprintf("Page reached a stable state in %.1fs.", float64(ms)/1000),
		Score:   score,
	}
}

// checkMobileFriendly runs three independent boolean sub-checks: a
// responsive viewport meta tag, at least one responsive media query in the
// attached stylesheets, and a base font size of at least 12px. The score
// is the fraction of sub-checks passed.
func (e *DiagnosticEngine) checkMobileFriendly(_ context.Context, snap *PageSnapshot) DiagnosticResult {
	doc, err := snap.Document()
	if err != nil {
		return checkFailed(CheckMobile)
	}

	passed := 0
	var issues []string

	viewport, _ := doc.Find(`meta[name="viewport"]`).First().Attr("content")
	if strings.Contains(viewport, "width=device-width") {
		passed++
	} else {
		issues = append(issues, "no responsive viewport meta tag")
	}

	if snap.HasResponsiveMediaQuery {
		passed++
	} else {
		issues = append(issues, "no responsive media queries found in stylesheets")
	}

	switch {
	case snap.BaseFontSizePx >= 12:
		passed++
	case snap.BaseFontSizePx == 0:
		// Browser evaluation did not run (static snapshot).
		issues = append(issues, "base font size could not be determined")
	default:
		issues = append(issues, fmt.Sprintf("base font size is %.0fpx, below the 12px readability floor", snap.BaseFontSizePx))
	}

	score := passed * 100 / 3
	details := "The page adapts well to mobile viewports."
	if len(issues) > 0 {
		details = "Mobile issues: " + strings.Join(issues, "; ") + "."
	}
	return DiagnosticResult{Name: CheckMobile, Status: statusForScore(score), Details: details, Score: score}
}

// ctaKeywords are the call-to-action phrases matched (case-insensitively)
// against the text of visible interactive elements.
var ctaKeywords = []string{
	"contact", "get started", "sign up", "book", "buy", "subscribe",
	"quote", "demo", "call", "order", "schedule", "learn more",
	"try", "join", "apply", "download", "shop", "request", "enquire",
}

// checkCTA scans visible interactive elements (links, buttons, role=button)
// for call-to-action language. Zero matches score 0, a single match 75, and
// two or more distinct keywords 100.
func (e *DiagnosticEngine) checkCTA(_ context.Context, snap *PageSnapshot) DiagnosticResult {
	texts := snap.InteractiveTexts
	if texts == nil {
		// No browser evaluation: fall back to the static DOM, treating
		// every interactive element as visible.
		doc, err := snap.Document()
		if err != nil {
			return checkFailed(CheckCTA)
		}
		doc.Find(`a, button, [role="button"], input[type="submit"]`).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if text == "" {
				text, _ = sel.Attr("value")
			}
			if text = strings.TrimSpace(text); text != "" {
				texts = append(texts, text)
			}
		})
	}

	matched := make(map[string]bool)
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, kw := range ctaKeywords {
			if strings.Contains(lower, kw) {
				matched[kw] = true
			}
		}
	}

	var score int
	var details string
	switch len(matched) {
	case 0:
		score = 0
		details = "No call-to-action language found on the page."
	case 1:
		score = 75
		details = fmt.Sprintf("Found one call-to-action (%s); a second distinct CTA usually lifts conversion.", sortedKeys(matched)[0])
	default:
		score = 100
		details = fmt.Sprintf("Found %d distinct calls-to-action: %s.", len(matched), strings.Join(sortedKeys(matched), ", "))
	}
	return DiagnosticResult{Name: CheckCTA, Status: statusForScore(score), Details: details, Score: score}
}

// checkSEO scores a weighted composite of on-page fundamentals: title
// length (30%), meta description length (25%), exactly one H1 (25%), and
// image alt-text coverage (20%). Each sub-score is banded: the ideal range
// earns full weight, present-but-off-range earns partial, missing earns
// zero. All textual issues accumulate into one details string.
func (e *DiagnosticEngine) checkSEO(_ context.Context, snap *PageSnapshot) DiagnosticResult {
	doc, err := snap.Document()
	if err != nil {
		return checkFailed(CheckSEO)
	}

	score := 0
	var issues []string

	title := strings.TrimSpace(doc.Find("title").First().Text())
	switch n := len(title); {
	case n == 0:
		issues = append(issues, "the page has no <title>")
	case n >= 30 && n <= 60:
		score += 30
	case n < 30:
		score += 15
		issues = append(issues, fmt.Sprintf("title is only %d characters (30-60 is ideal)", n))
	default:
		score += 15
		issues = append(issues, fmt.Sprintf("title is %d characters and will be truncated in results (30-60 is ideal)", n))
	}

	desc, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	desc = strings.TrimSpace(desc)
	switch n := len(desc); {
	case n == 0:
		issues = append(issues, "no meta description")
	case n >= 120 && n <= 160:
		score += 25
	default:
		score += 12
		issues = append(issues, fmt.Sprintf("meta description is %d characters (120-160 is ideal)", n))
	}

	switch h1s := doc.Find("h1").Length(); {
	case h1s == 1:
		score += 25
	case h1s == 0:
		issues = append(issues, "no H1 heading")
	default:
		score += 12
		issues = append(issues, fmt.Sprintf("%d H1 headings found, pages should have exactly one", h1s))
	}

	images := doc.Find("img")
	if images.Length() == 0 {
		score += 20
	} else {
		withAlt := 0
		images.Each(func(_ int, img *goquery.Selection) {
			if alt, ok := img.Attr("alt"); ok && strings.TrimSpace(alt) != "" {
				withAlt++
			}
		})
		score += withAlt * 20 / images.Length()
		if withAlt < images.Length() {
			issues = append(issues, fmt.Sprintf("%d of %d images are missing alt text", images.Length()-withAlt, images.Length()))
		}
	}

	details := "On-page SEO fundamentals look solid."
	if len(issues) > 0 {
		details = "SEO issues: " + strings.Join(issues, "; ") + "."
	}
	return DiagnosticResult{Name: CheckSEO, Status: statusForScore(score), Details: details, Score: score}
}

func checkFailed(name string) DiagnosticResult {
	return DiagnosticResult{
		Name:    name,
		Status:  StatusFail,
		Details: "This check could not be completed.",
		Score:   0,
	}
}

// sortedKeys keeps detail strings stable regardless of map iteration order.
func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
