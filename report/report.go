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

// Package report exports scan-run summaries for downstream outreach
// tooling.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/agentberlin/leadscout"
)

const sheetName = "Scan Results"

// columns is the fixed header row of the exported worksheet: lead fields,
// scan outcome, then one column per diagnostic check.
var columns = []string{
	"Company", "Website", "Contact", "Email",
	"Status", "Overall Score", "Load Time (ms)",
	leadscout.CheckPageSpeed, leadscout.CheckMobile, leadscout.CheckCTA,
	leadscout.CheckSEO, leadscout.CheckBrokenLinks,
	"Blocked By", "Error",
}

// WriteXLSX writes one row per lead with its scan outcome. leads and
// results are aligned by index (ScanBatch preserves input order); a nil
// result leaves the outcome columns empty.
func WriteXLSX(path string, leads []leadscout.Lead, results []*leadscout.ScanResult) error {
	if len(leads) != len(results) {
		return fmt.Errorf("report: %d leads but %d results", len(leads), len(results))
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("report: failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("report: failed to drop default sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("report: failed to write header: %w", err)
	}

	for i, lead := range leads {
		row := leadRow(lead, results[i])
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("report: failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: failed to save workbook: %w", err)
	}
	return nil
}

func leadRow(lead leadscout.Lead, result *leadscout.ScanResult) []interface{} {
	row := []interface{}{lead.CompanyName, lead.WebsiteURL, lead.ContactName, lead.ContactEmail}
	if result == nil {
		return append(row, "", "", "", "", "", "", "", "", "", "")
	}

	row = append(row, string(result.Status))
	if result.Status == leadscout.ScanStatusSuccess {
		row = append(row, leadscout.OverallScore(result.Diagnostics))
	} else {
		row = append(row, "")
	}
	row = append(row, result.LoadTimeMs)

	scores := make(map[string]int, len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		scores[d.Name] = d.Score
	}
	for _, name := range []string{
		leadscout.CheckPageSpeed, leadscout.CheckMobile, leadscout.CheckCTA,
		leadscout.CheckSEO, leadscout.CheckBrokenLinks,
	} {
		if score, ok := scores[name]; ok {
			row = append(row, score)
		} else {
			row = append(row, "")
		}
	}

	return append(row, result.BlockedBy, result.Error)
}
