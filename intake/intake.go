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

// Package intake turns uploaded lead files into the delimited text the
// lead parser consumes. It handles charset detection for CSV exports from
// CRMs (frequently windows-1252 rather than UTF-8) and first-sheet
// extraction from XLSX workbooks.
package intake

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText converts raw lead-file bytes to a UTF-8 string. Valid UTF-8
// passes through with only a BOM strip; anything else goes through charset
// detection and transcoding. When detection fails the bytes are returned
// as-is so a best-effort parse can still happen.
func DecodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	detected, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return string(data)
	}
	enc, err := htmlindex.Get(strings.ToLower(detected.Charset))
	if err != nil {
		return string(data)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// ReadLeadFile loads a lead file from disk and returns its content as
// UTF-8 delimited text. XLSX workbooks are converted from their first
// sheet; everything else is treated as delimited text in an arbitrary
// charset.
func ReadLeadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read lead file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return XLSXToCSV(bytes.NewReader(data))
	}
	return DecodeText(data), nil
}
