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

package intake

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned for workbooks with no worksheets.
var ErrNoSheets = errors.New("intake: workbook has no worksheets")

// XLSXToCSV extracts the first worksheet of an XLSX workbook as delimited
// text suitable for the lead parser. Cell values are taken as displayed.
func XLSXToCSV(r io.Reader) (string, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return "", ErrNoSheets
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("failed to read worksheet %q: %w", sheets[0], err)
	}
	return MarshalCSV(rows), nil
}
