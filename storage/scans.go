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
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/kennygrant/sanitize"

	"github.com/agentberlin/leadscout"
)

// SaveScan persists one scan result under the given scope. When the result
// carries a screenshot and screenshotDir is non-empty, the image is written
// there and the record points at the file.
func (s *Store) SaveScan(scopeID string, result *leadscout.ScanResult, screenshotDir string) (*ScanRecord, error) {
	normalized := leadscout.NormalizeSiteURL(result.URL)

	record := &ScanRecord{
		ScopeID:       scopeID,
		URL:           result.URL,
		NormalizedURL: normalized,
		URLHash:       xxhash.Sum64String(normalized),
		Status:        string(result.Status),
		BlockedBy:     result.BlockedBy,
		Error:         result.Error,
		LoadTimeMs:    result.LoadTimeMs,
		OverallScore:  leadscout.OverallScore(result.Diagnostics),
		ScanDateTime:  result.Timestamp.Unix(),
	}
	if err := record.SetDiagnostics(result.Diagnostics); err != nil {
		return nil, fmt.Errorf("failed to serialize diagnostics: %v", err)
	}

	if len(result.Screenshot) > 0 && screenshotDir != "" {
		path, err := writeScreenshot(screenshotDir, result)
		if err != nil {
			return nil, err
		}
		record.ScreenshotPath = path
	}

	if err := s.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to save scan: %v", err)
	}
	return record, nil
}

// writeScreenshot stores the viewport image under a sanitized, timestamped
// file name derived from the target host.
func writeScreenshot(dir string, result *leadscout.ScanResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %v", err)
	}

	name := result.URL
	if u, err := url.Parse(result.URL); err == nil && u.Host != "" {
		name = u.Host
	}
	fileName := fmt.Sprintf("%s-%d.png", sanitize.BaseName(name), result.Timestamp.UnixMilli())

	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, result.Screenshot, 0644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %v", err)
	}
	return path, nil
}

// CheckDuplicates returns the subset of urls already recorded as scanned
// under scopeID. It satisfies leadscout.DuplicateChecker. Comparison is by
// normalized URL; the hash index narrows the query and the normalized
// string confirms the match.
func (s *Store) CheckDuplicates(ctx context.Context, scopeID string, urls []string) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	normalized := make([]string, len(urls))
	hashes := make([]uint64, len(urls))
	for i, u := range urls {
		normalized[i] = leadscout.NormalizeSiteURL(u)
		hashes[i] = xxhash.Sum64String(normalized[i])
	}

	var records []ScanRecord
	err := s.db.WithContext(ctx).
		Where("scope_id = ? AND url_hash IN ?", scopeID, hashes).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query scan log: %v", err)
	}

	scanned := make(map[string]bool, len(records))
	for _, r := range records {
		scanned[r.NormalizedURL] = true
	}

	var duplicates []string
	for i, u := range urls {
		if scanned[normalized[i]] {
			duplicates = append(duplicates, u)
		}
	}
	return duplicates, nil
}

// ScansForScope returns all scan records for a scope, newest first.
func (s *Store) ScansForScope(scopeID string) ([]ScanRecord, error) {
	var records []ScanRecord
	err := s.db.Where("scope_id = ?", scopeID).Order("scan_date_time DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %v", err)
	}
	return records, nil
}

// PruneOlderThan deletes scan records older than the cutoff, returning the
// number removed. Screenshot files are left to the caller's retention policy.
func (s *Store) PruneOlderThan(cutoff time.Time) (int64, error) {
	res := s.db.Where("scan_date_time < ?", cutoff.Unix()).Delete(&ScanRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune scans: %v", res.Error)
	}
	return res.RowsAffected, nil
}
