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

import "strings"

// RemovedLead pairs a rejected lead with every rule it violated, so a run
// summary can show all problems with a record at once rather than the first.
type RemovedLead struct {
	Lead    Lead     `json:"lead"`
	Reasons []string `json:"reasons"`
}

// CleanResult partitions a lead set into structurally valid records and
// removed records with reasons.
type CleanResult struct {
	Cleaned []Lead        `json:"cleaned"`
	Removed []RemovedLead `json:"removed"`
}

// CleanLeads applies the structural validity rules to each lead
// independently. It is a pure function: leads are never mutated and the
// outcome for one lead does not depend on any other.
//
// A lead passes only if all rules pass; a failing lead is moved to Removed
// with the full ordered list of violated rules.
func CleanLeads(leads []Lead) *CleanResult {
	result := &CleanResult{}
	for _, lead := range leads {
		if reasons := validateLead(&lead); len(reasons) > 0 {
			result.Removed = append(result.Removed, RemovedLead{Lead: lead, Reasons: reasons})
		} else {
			result.Cleaned = append(result.Cleaned, lead)
		}
	}
	return result
}

// validateLead returns every violated rule for the lead, in rule order.
func validateLead(l *Lead) []string {
	var reasons []string

	if strings.TrimSpace(l.CompanyName) == "" {
		reasons = append(reasons, "company name is empty")
	}

	site := strings.TrimSpace(l.WebsiteURL)
	if !strings.Contains(site, ".") && !strings.HasPrefix(site, "http") {
		reasons = append(reasons, "website URL does not look like a URL")
	}

	email := strings.TrimSpace(l.ContactEmail)
	at := strings.Index(email, "@")
	if at < 1 || !strings.Contains(email[at+1:], ".") {
		reasons = append(reasons, "contact email is not a valid address")
	}

	return reasons
}
