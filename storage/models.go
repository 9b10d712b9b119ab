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

package storage

import (
	"encoding/json"

	"github.com/agentberlin/leadscout"
)

// ScanRecord is one persisted scan attempt. It backs both the
// already-scanned filter (via the normalized URL and its hash) and report
// export.
type ScanRecord struct {
	ID uint `gorm:"primaryKey"`
	// ScopeID groups records by upload/campaign so duplicate suppression
	// is per scope, not global
	ScopeID string `gorm:"index;not null"`
	URL     string `gorm:"not null"`
	// NormalizedURL is the canonical comparison key (see
	// leadscout.NormalizeSiteURL)
	NormalizedURL string `gorm:"index;not null"`
	// URLHash is the xxhash of NormalizedURL, used for fast lookups
	URLHash      uint64 `gorm:"index"`
	Status       string `gorm:"not null"`
	BlockedBy    string
	Error        string
	LoadTimeMs   int64
	OverallScore int
	// ScreenshotPath points at the captured viewport image on disk,
	// empty when no screenshot was taken
	ScreenshotPath string
	// DiagnosticsJSON is the serialized diagnostic result array
	DiagnosticsJSON string `gorm:"type:text"`
	ScanDateTime    int64  `gorm:"not null"`
	CreatedAt       int64  `gorm:"autoCreateTime"`
}

// GetDiagnostics deserializes the stored diagnostic results.
func (r *ScanRecord) GetDiagnostics() []leadscout.DiagnosticResult {
	if r.DiagnosticsJSON == "" {
		return nil
	}
	var diagnostics []leadscout.DiagnosticResult
	if err := json.Unmarshal([]byte(r.DiagnosticsJSON), &diagnostics); err != nil {
		return nil
	}
	return diagnostics
}

// SetDiagnostics serializes diagnostic results into the record.
func (r *ScanRecord) SetDiagnostics(diagnostics []leadscout.DiagnosticResult) error {
	if len(diagnostics) == 0 {
		r.DiagnosticsJSON = ""
		return nil
	}
	data, err := json.Marshal(diagnostics)
	if err != nil {
		return err
	}
	r.DiagnosticsJSON = string(data)
	return nil
}
