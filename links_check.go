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
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

const (
	// maxLinkProbes caps how many links are checked per page
	maxLinkProbes = 20
	// linkProbeBatchSize is the number of concurrent HEAD probes
	linkProbeBatchSize = 5
)

// checkBrokenLinks collects up to maxLinkProbes distinct resolvable http(s)
// links from the page and probes each with a short-timeout HEAD request,
// linkProbeBatchSize at a time. Any non-2xx/3xx response, network failure
// or timeout counts as broken. mailto:, tel:, javascript: and fragment-only
// links are excluded before probing.
func (e *DiagnosticEngine) checkBrokenLinks(ctx context.Context, snap *PageSnapshot) DiagnosticResult {
	doc, err := snap.Document()
	if err != nil {
		return checkFailed(CheckBrokenLinks)
	}

	links := collectProbeLinks(doc, snap.URL)
	if len(links) == 0 {
		return DiagnosticResult{
			Name:    CheckBrokenLinks,
			Status:  StatusPass,
			Details: "No outbound links to check.",
			Score:   100,
		}
	}

	broken := e.probeLinks(ctx, links)

	var score int
	switch {
	case len(broken) == 0:
		score = 100
	case len(broken) <= 2:
		score = 75
	default:
		score = 25
	}

	details := fmt.Sprintf("All %d checked links respond.", len(links))
	if len(broken) > 0 {
		shown := broken
		if len(shown) > 3 {
			shown = shown[:3]
		}
		details = fmt.Sprintf("%d of %d checked links are broken (e.g. %s).", len(broken), len(links), strings.Join(shown, ", "))
	}
	return DiagnosticResult{Name: CheckBrokenLinks, Status: statusForScore(score), Details: details, Score: score}
}

// collectProbeLinks extracts distinct absolute http(s) link targets from
// anchor tags, resolving relative hrefs against the page URL.
func collectProbeLinks(doc *goquery.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return true
		}
		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") || strings.HasPrefix(lower, "javascript:") {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return true
		}
		ref.Fragment = ""
		target := ref.String()
		if !seen[target] {
			seen[target] = true
			links = append(links, target)
		}
		return len(links) < maxLinkProbes
	})
	return links
}

// probeLinks HEAD-requests the links in batches and returns the broken ones.
func (e *DiagnosticEngine) probeLinks(ctx context.Context, links []string) []string {
	broken := make([]string, 0)
	var mu sync.Mutex

	for start := 0; start < len(links); start += linkProbeBatchSize {
		batch := links[start:min(start+linkProbeBatchSize, len(links))]

		var wg sync.WaitGroup
		for _, link := range batch {
			wg.Add(1)
			go func(link string) {
				defer wg.Done()
				if !e.linkResponds(ctx, link) {
					mu.Lock()
					broken = append(broken, link)
					mu.Unlock()
				}
			}(link)
		}
		wg.Wait()
	}
	return broken
}

// linkResponds reports whether a HEAD request to the link succeeds with a
// 2xx/3xx status within the probe timeout.
func (e *DiagnosticEngine) linkResponds(ctx context.Context, link string) bool {
	if err := e.limiter.Wait(ctx); err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link, nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 400
}
