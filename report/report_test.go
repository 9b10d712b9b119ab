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

package report

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/agentberlin/leadscout"
)

func TestWriteXLSX(t *testing.T) {
	leads := []leadscout.Lead{
		{CompanyName: "Acme", WebsiteURL: "https://acme.test", ContactName: "Jo", ContactEmail: "jo@acme.test"},
		{CompanyName: "Bolt", WebsiteURL: "https://bolt.test", ContactName: "Sam", ContactEmail: "sam@bolt.test"},
	}
	results := []*leadscout.ScanResult{
		{
			URL:    "https://acme.test",
			Status: leadscout.ScanStatusSuccess,
			Diagnostics: []leadscout.DiagnosticResult{
				{Name: leadscout.CheckPageSpeed, Score: 100, Status: leadscout.StatusPass},
				{Name: leadscout.CheckSEO, Score: 50, Status: leadscout.StatusWarning},
			},
			LoadTimeMs: 900,
		},
		{
			URL:       "https://bolt.test",
			Status:    leadscout.ScanStatusBlocked,
			BlockedBy: "Cloudflare",
		},
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteXLSX(path, leads, results); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen report: %v", err)
	}
	defer f.Close()

	if f.GetSheetName(f.GetActiveSheetIndex()) != sheetName {
		t.Errorf("active sheet = %q, want %q", f.GetSheetName(f.GetActiveSheetIndex()), sheetName)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}

	if rows[0][0] != "Company" || rows[0][4] != "Status" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	acme := rows[1]
	if acme[0] != "Acme" || acme[4] != "SUCCESS" {
		t.Errorf("unexpected first data row: %v", acme)
	}
	if acme[5] != "75" {
		t.Errorf("overall score cell = %q, want 75 (mean of 100 and 50)", acme[5])
	}
	if acme[7] != "100" {
		t.Errorf("page speed cell = %q, want 100", acme[7])
	}

	bolt := rows[2]
	if bolt[4] != "BLOCKED" {
		t.Errorf("blocked status cell = %q", bolt[4])
	}
	if bolt[12] != "Cloudflare" {
		t.Errorf("blocked-by cell = %q, want Cloudflare", bolt[12])
	}
	// A blocked scan carries no overall score.
	if bolt[5] != "" {
		t.Errorf("blocked row should leave overall score empty, got %q", bolt[5])
	}
}

func TestWriteXLSXLengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	err := WriteXLSX(path, []leadscout.Lead{{CompanyName: "A"}}, nil)
	if err == nil {
		t.Fatal("expected an error for mismatched leads and results")
	}
}

func TestWriteXLSXNilResultLeavesOutcomeEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	leads := []leadscout.Lead{{CompanyName: "Acme", WebsiteURL: "https://acme.test"}}
	if err := WriteXLSX(path, leads, []*leadscout.ScanResult{nil}); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen report: %v", err)
	}
	defer f.Close()

	status, err := f.GetCellValue(sheetName, "E2")
	if err != nil {
		t.Fatalf("failed to read status cell: %v", err)
	}
	if status != "" {
		t.Errorf("status cell = %q, want empty for a nil result", status)
	}
}
