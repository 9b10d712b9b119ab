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
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/agentberlin/leadscout/testutil"
)

func TestCheckBrokenLinks(t *testing.T) {
	srv := testutil.NewTestServer()
	defer srv.Close()

	engine := NewDiagnosticEngine()

	t.Run("AllLinksRespond", func(t *testing.T) {
		snap := &PageSnapshot{URL: srv.URL + "/healthy", HTML: testutil.HealthyHTML}
		result := engine.checkBrokenLinks(context.Background(), snap)
		if result.Score != 100 || result.Status != StatusPass {
			t.Errorf("expected 100/pass, got %d/%s (%s)", result.Score, result.Status, result.Details)
		}
	})

	t.Run("TwoBrokenLinks", func(t *testing.T) {
		snap := &PageSnapshot{URL: srv.URL + "/broken-links", HTML: testutil.BrokenLinksHTML}
		result := engine.checkBrokenLinks(context.Background(), snap)
		if result.Score != 75 {
			t.Errorf("expected 75 with two broken links, got %d (%s)", result.Score, result.Details)
		}
		if !strings.Contains(result.Details, "2 of 3") {
			t.Errorf("details should count 2 broken of 3 probed: %q", result.Details)
		}
	})

	t.Run("ManyBrokenLinks", func(t *testing.T) {
		var sb strings.Builder
		sb.WriteString("<html><body>")
		for i := 0; i < 4; i++ {
			fmt.Fprintf(&sb, `<a href="/gone-%d">gone</a>`, i)
		}
		sb.WriteString("</body></html>")

		snap := &PageSnapshot{URL: srv.URL + "/", HTML: sb.String()}
		result := engine.checkBrokenLinks(context.Background(), snap)
		if result.Score != 25 || result.Status != StatusFail {
			t.Errorf("expected 25/fail, got %d/%s", result.Score, result.Status)
		}
	})

	t.Run("NoLinks", func(t *testing.T) {
		snap := &PageSnapshot{URL: srv.URL + "/", HTML: "<html><body>nothing here</body></html>"}
		result := engine.checkBrokenLinks(context.Background(), snap)
		if result.Score != 100 {
			t.Errorf("a page without links scores 100, got %d", result.Score)
		}
	})
}

func TestCollectProbeLinks(t *testing.T) {
	t.Run("SkipsNonProbeableSchemes", func(t *testing.T) {
		doc := mustParse(t, testutil.BrokenLinksHTML)
		links := collectProbeLinks(doc, "https://example.test/page")
		if len(links) != 3 {
			t.Fatalf("expected 3 probeable links, got %d: %v", len(links), links)
		}
		for _, link := range links {
			if strings.Contains(link, "mailto") || strings.Contains(link, "tel:") || strings.Contains(link, "javascript") {
				t.Errorf("non-probeable link collected: %s", link)
			}
		}
	})

	t.Run("ResolvesRelativeAgainstPage", func(t *testing.T) {
		doc := mustParse(t, `<html><body><a href="/about">about</a></body></html>`)
		links := collectProbeLinks(doc, "https://example.test/deep/page")
		if len(links) != 1 || links[0] != "https://example.test/about" {
			t.Errorf("relative link not resolved: %v", links)
		}
	})

	t.Run("DeduplicatesAndCaps", func(t *testing.T) {
		var sb strings.Builder
		sb.WriteString("<html><body>")
		for i := 0; i < 30; i++ {
			fmt.Fprintf(&sb, `<a href="/page-%d">p</a><a href="/page-%d">again</a>`, i, i)
		}
		sb.WriteString("</body></html>")

		doc := mustParse(t, sb.String())
		links := collectProbeLinks(doc, "https://example.test/")
		if len(links) != maxLinkProbes {
			t.Errorf("expected the %d-link cap, got %d", maxLinkProbes, len(links))
		}
	})
}

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	snap := &PageSnapshot{HTML: html}
	doc, err := snap.Document()
	if err != nil {
		t.Fatalf("failed to parse fixture HTML: %v", err)
	}
	return doc
}
