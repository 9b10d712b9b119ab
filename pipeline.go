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
	"log"
	"strings"

	"github.com/gobwas/glob"
)

// DuplicateChecker reports which of the given website URLs were already
// scanned for a scope. The scan-log store satisfies this interface; tests
// substitute fakes.
type DuplicateChecker interface {
	// CheckDuplicates returns the subset of urls already recorded as
	// scanned under scopeID. URLs are compared in normalized form.
	CheckDuplicates(ctx context.Context, scopeID string, urls []string) ([]string, error)
}

// RowRange is an optional inclusive 1-based slice applied to the lead set
// that survives cleanup and deduplication. The zero value selects all rows.
type RowRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// PipelineResult summarizes one intake run. The counters and the final
// lead set always satisfy the identity
//
//	TotalParsed = len(Leads) + InvalidLeads + DuplicateEmails + AlreadyScanned + SkippedByRange
//
// so no lead is ever silently lost or double-counted across buckets.
type PipelineResult struct {
	TotalParsed     int           `json:"totalParsed"`
	InvalidLeads    int           `json:"invalidLeads"`
	DuplicateEmails int           `json:"duplicateEmails"`
	AlreadyScanned  int           `json:"alreadyScanned"`
	SkippedByRange  int           `json:"skippedByRange"`
	Removed         []RemovedLead `json:"removed"`
	// Leads is the final set ready for scanning
	Leads []Lead `json:"leads"`
}

// Pipeline turns raw uploaded lead text into a deduplicated, validated set
// of leads ready for scanning.
type Pipeline struct {
	checker  DuplicateChecker
	excludes []glob.Glob
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithDuplicateChecker installs the already-scanned lookup collaborator.
// Without one, the already-scanned filter stage is skipped.
func WithDuplicateChecker(c DuplicateChecker) PipelineOption {
	return func(p *Pipeline) {
		p.checker = c
	}
}

// WithExcludedSites adds glob patterns for websites that should never be
// scanned (e.g. "*.facebook.com", "*linktr.ee*"). Matching leads are
// removed during cleanup and counted as invalid, with the pattern recorded
// as the removal reason. Invalid patterns are skipped with a warning.
func WithExcludedSites(patterns ...string) PipelineOption {
	return func(p *Pipeline) {
		for _, pattern := range patterns {
			g, err := glob.Compile(strings.ToLower(strings.TrimSpace(pattern)))
			if err != nil {
				log.Printf("leadscout: ignoring invalid excluded-site pattern %q: %v", pattern, err)
				continue
			}
			p.excludes = append(p.excludes, g)
		}
	}
}

// NewPipeline creates a Pipeline with the given options.
func NewPipeline(options ...PipelineOption) *Pipeline {
	p := &Pipeline{}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// ProcessUpload runs the full intake sequence in strict order: parse, fail
// fast on parse errors, validate/clean, deduplicate by contact email (first
// occurrence wins, case-insensitive), filter out already-scanned websites
// via the DuplicateChecker collaborator, then apply the optional row range.
//
// A parse failure is the only fatal outcome. A failing duplicate check
// degrades to unfiltered behavior with a logged warning: scanning a site
// twice is preferable to dropping leads over an unrelated infrastructure
// fault.
func (p *Pipeline) ProcessUpload(ctx context.Context, rawText, scopeID string, rowRange *RowRange) (*PipelineResult, error) {
	parsed := ParseLeads(rawText)
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("lead parsing failed: %s", strings.Join(parsed.Errors, "; "))
	}

	result := &PipelineResult{TotalParsed: len(parsed.Leads)}

	clean := CleanLeads(parsed.Leads)
	result.Removed = clean.Removed

	leads := p.applyExcludes(clean.Cleaned, result)
	result.InvalidLeads = len(result.Removed)

	leads, dropped := DedupeByEmail(leads)
	result.DuplicateEmails = len(dropped)

	leads = p.filterAlreadyScanned(ctx, scopeID, leads, result)

	if rowRange != nil && (rowRange.Start > 0 || rowRange.End > 0) {
		before := len(leads)
		leads = applyRowRange(leads, rowRange)
		result.SkippedByRange = before - len(leads)
	}

	result.Leads = leads
	return result, nil
}

// DedupeByEmail removes leads whose contact email was already seen, keeping
// the first occurrence. Comparison is case-insensitive over the trimmed
// address; leads with an empty email are never treated as duplicates of
// each other. The filter is idempotent.
func DedupeByEmail(leads []Lead) (kept []Lead, removed []Lead) {
	seen := make(map[string]bool, len(leads))
	for _, lead := range leads {
		key := lead.EmailKey()
		if key != "" && seen[key] {
			removed = append(removed, lead)
			continue
		}
		seen[key] = true
		kept = append(kept, lead)
	}
	return kept, removed
}

func (p *Pipeline) applyExcludes(leads []Lead, result *PipelineResult) []Lead {
	if len(p.excludes) == 0 {
		return leads
	}
	kept := leads[:0:0]
	for _, lead := range leads {
		site := strings.ToLower(strings.TrimSpace(lead.WebsiteURL))
		excluded := false
		for _, g := range p.excludes {
			if g.Match(site) {
				excluded = true
				break
			}
		}
		if excluded {
			result.Removed = append(result.Removed, RemovedLead{
				Lead:    lead,
				Reasons: []string{"website matches an excluded-site pattern"},
			})
		} else {
			kept = append(kept, lead)
		}
	}
	return kept
}

func (p *Pipeline) filterAlreadyScanned(ctx context.Context, scopeID string, leads []Lead, result *PipelineResult) []Lead {
	if p.checker == nil || len(leads) == 0 {
		return leads
	}

	normalized := make([]string, len(leads))
	for i, lead := range leads {
		normalized[i] = NormalizeSiteURL(lead.WebsiteURL)
	}

	already, err := p.checker.CheckDuplicates(ctx, scopeID, normalized)
	if err != nil {
		log.Printf("leadscout: already-scanned check failed, proceeding unfiltered: %v", err)
		return leads
	}

	scanned := make(map[string]bool, len(already))
	for _, u := range already {
		scanned[NormalizeSiteURL(u)] = true
	}

	kept := leads[:0:0]
	for i, lead := range leads {
		if scanned[normalized[i]] {
			result.AlreadyScanned++
			continue
		}
		kept = append(kept, lead)
	}
	return kept
}

// applyRowRange slices leads to the inclusive 1-based range, clamping
// out-of-bounds endpoints. End == 0 means "through the last row".
func applyRowRange(leads []Lead, r *RowRange) []Lead {
	start := r.Start
	if start < 1 {
		start = 1
	}
	end := r.End
	if end == 0 || end > len(leads) {
		end = len(leads)
	}
	if start > len(leads) || end < start {
		return nil
	}
	return leads[start-1 : end]
}
