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

// Package leadscout ingests prospective business leads from delimited text,
// validates and deduplicates them, and scans each lead's website with a
// headless browser to produce scored UX/SEO/performance diagnostics and a
// screenshot for downstream outreach tooling.
package leadscout

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Lead represents one prospective company/contact record destined for a
// website scan and an outreach email.
type Lead struct {
	// CompanyName is the business name of the lead
	CompanyName string `json:"companyName"`
	// WebsiteURL is the homepage that will be scanned
	WebsiteURL string `json:"websiteUrl"`
	// ContactName is the person the outreach email is addressed to
	ContactName string `json:"contactName"`
	// ContactEmail is the recipient address; it is also the lead's
	// deduplication identity (see EmailKey)
	ContactEmail string `json:"contactEmail"`
	// Extra holds values from unrecognized columns in the source file,
	// keyed by the normalized header name
	Extra map[string]string `json:"extra,omitempty"`
}

// EmailKey returns the deduplication identity of the lead: the trimmed,
// lowercased contact email. Two leads with the same EmailKey are duplicates.
func (l *Lead) EmailKey() string {
	return strings.ToLower(strings.TrimSpace(l.ContactEmail))
}

// ParseResult is the terminal artifact of parsing a lead file.
// A non-empty Errors slice means parsing failed and Leads is empty;
// there is never a partial parse.
type ParseResult struct {
	// Leads contains one record per data row in the input
	Leads []Lead `json:"leads"`
	// Headers contains the normalized header names in column order
	Headers []string `json:"headers"`
	// Errors contains human-readable parse errors, empty on success
	Errors []string `json:"errors"`
}

// requiredColumns lists the canonical logical columns every lead file must
// provide, in the order they are reported when missing.
var requiredColumns = []string{"company_name", "website_url", "contact_name", "contact_email"}

// columnAliases maps each canonical column to the header spellings it
// accepts. Matching is exact-token after normalization, never fuzzy.
var columnAliases = map[string][]string{
	"company_name":  {"company_name", "company", "business", "business_name", "organization", "org"},
	"website_url":   {"website_url", "website", "url", "site", "web", "homepage", "domain"},
	"contact_name":  {"contact_name", "contact", "name", "full_name", "first_name", "owner"},
	"contact_email": {"contact_email", "email", "e-mail", "e_mail", "mail", "email_address"},
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeHeader lowercases a raw header cell and collapses whitespace
// runs to underscores so "Company Name" matches the "company_name" alias.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return whitespaceRun.ReplaceAllString(h, "_")
}

// ParseLeads parses raw delimited text into structured lead records.
//
// The input is the de-facto CSV variant: fields may be double-quoted,
// quotes inside quoted fields are escaped by doubling (""), and records
// may be separated by \n, \r\n, or bare \r. The first row is the header
// row and is matched against the column alias table; unrecognized columns
// are preserved on each Lead under their normalized header name.
//
// If any of the four required logical columns has no matching header, the
// result carries a descriptive error and zero leads.
func ParseLeads(text string) *ParseResult {
	result := &ParseResult{}

	rows := splitRecords(text)
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "lead file is empty")
		return result
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = normalizeHeader(h)
	}
	result.Headers = headers

	if len(rows) == 1 {
		result.Errors = append(result.Errors, "lead file contains a header row but no data rows")
		return result
	}

	// Resolve each canonical column to its header index. First matching
	// header wins; a header claimed by one canonical column is not offered
	// to the next, so e.g. "name" cannot satisfy both contact and company.
	colIndex := make(map[string]int, len(requiredColumns))
	claimed := make(map[int]bool, len(requiredColumns))
	for _, canonical := range requiredColumns {
		for idx, h := range headers {
			if claimed[idx] {
				continue
			}
			if slices.Contains(columnAliases[canonical], h) {
				colIndex[canonical] = idx
				claimed[idx] = true
				break
			}
		}
	}

	var missing []string
	for _, canonical := range requiredColumns {
		if _, ok := colIndex[canonical]; !ok {
			missing = append(missing, fmt.Sprintf("%s (accepted: %s)", canonical, strings.Join(columnAliases[canonical], ", ")))
		}
	}
	if len(missing) > 0 {
		result.Errors = append(result.Errors, "missing required columns: "+strings.Join(missing, "; "))
		return result
	}

	cell := func(row []string, canonical string) string {
		idx := colIndex[canonical]
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	for _, row := range rows[1:] {
		lead := Lead{
			CompanyName:  cell(row, "company_name"),
			WebsiteURL:   cell(row, "website_url"),
			ContactName:  cell(row, "contact_name"),
			ContactEmail: cell(row, "contact_email"),
		}
		for i, h := range headers {
			if claimed[i] || i >= len(row) {
				continue
			}
			if v := strings.TrimSpace(row[i]); v != "" {
				if lead.Extra == nil {
					lead.Extra = make(map[string]string)
				}
				lead.Extra[h] = v
			}
		}
		result.Leads = append(result.Leads, lead)
	}

	return result
}

// splitRecords runs the single-pass character state machine over the raw
// text. The only state is whether the cursor is inside a quoted field; a
// quote character toggles quoting unless it is the first of a doubled pair
// inside quotes, in which case one literal quote is emitted and both input
// characters are consumed. Trailing fully-empty records are discarded.
func splitRecords(text string) [][]string {
	var records [][]string
	var record []string
	var field strings.Builder
	inQuotes := false

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			record = append(record, field.String())
			field.Reset()
		case (c == '\n' || c == '\r') && !inQuotes:
			if c == '\r' && i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			record = append(record, field.String())
			field.Reset()
			records = append(records, record)
			record = nil
		default:
			field.WriteRune(c)
		}
	}
	if field.Len() > 0 || len(record) > 0 {
		record = append(record, field.String())
		records = append(records, record)
	}

	for len(records) > 0 {
		if !recordIsEmpty(records[len(records)-1]) {
			break
		}
		records = records[:len(records)-1]
	}
	return records
}

func recordIsEmpty(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
