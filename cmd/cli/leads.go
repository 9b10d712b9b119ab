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

package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/agentberlin/leadscout"
	"github.com/agentberlin/leadscout/intake"
)

func runLeads(args []string) error {
	fs := flag.NewFlagSet("leads", flag.ExitOnError)

	var file, rowRange, exclude string
	var verbose bool
	fs.StringVar(&file, "file", "", "Lead file to validate (.csv or .xlsx, required)")
	fs.StringVar(&file, "f", "", "Lead file to validate (shorthand)")
	fs.StringVar(&rowRange, "range", "", "Inclusive 1-based row range, e.g. 10-50")
	fs.StringVar(&exclude, "exclude", "", "Comma-separated glob patterns for sites to skip")
	fs.BoolVar(&verbose, "verbose", false, "Print every surviving lead")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if file == "" {
		return fmt.Errorf("--file is required")
	}

	text, err := intake.ReadLeadFile(file)
	if err != nil {
		return err
	}

	var options []leadscout.PipelineOption
	if exclude != "" {
		var patterns []string
		for _, p := range strings.Split(exclude, ",") {
			patterns = append(patterns, strings.TrimSpace(p))
		}
		options = append(options, leadscout.WithExcludedSites(patterns...))
	}

	rr, err := parseRowRange(rowRange)
	if err != nil {
		return err
	}

	result, err := leadscout.NewPipeline(options...).ProcessUpload(context.Background(), text, "", rr)
	if err != nil {
		return err
	}

	fmt.Printf("Parsed %d leads: %d ready, %d invalid, %d duplicate emails, %d outside range\n",
		result.TotalParsed, len(result.Leads), result.InvalidLeads,
		result.DuplicateEmails, result.SkippedByRange)
	for _, removed := range result.Removed {
		fmt.Printf("  removed %q (%s): %s\n",
			removed.Lead.CompanyName, removed.Lead.ContactEmail, strings.Join(removed.Reasons, "; "))
	}
	if verbose {
		for _, lead := range result.Leads {
			fmt.Printf("  %s | %s | %s | %s\n", lead.CompanyName, lead.WebsiteURL, lead.ContactName, lead.ContactEmail)
		}
	}
	return nil
}
