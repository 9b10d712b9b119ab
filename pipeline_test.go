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
	"errors"
	"reflect"
	"strings"
	"testing"
)

// fakeChecker is a DuplicateChecker test double.
type fakeChecker struct {
	duplicates []string
	err        error
	calls      int
}

func (f *fakeChecker) CheckDuplicates(_ context.Context, _ string, urls []string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var found []string
	for _, u := range urls {
		for _, d := range f.duplicates {
			if NormalizeSiteURL(u) == NormalizeSiteURL(d) {
				found = append(found, u)
			}
		}
	}
	return found, nil
}

const uploadText = `company_name,website_url,contact_name,contact_email
Acme,https://acme.test,Jo,jo@acme.test
Bolt,https://bolt.test,Sam,sam@bolt.test
Bolt Again,https://bolt2.test,Sam,SAM@BOLT.TEST
,notaurl,Bad,bad
Crux,https://crux.test,Lee,lee@crux.test
`

func TestProcessUploadCounts(t *testing.T) {
	checker := &fakeChecker{duplicates: []string{"https://crux.test/"}}
	pipeline := NewPipeline(WithDuplicateChecker(checker))

	result, err := pipeline.ProcessUpload(context.Background(), uploadText, "scope-1", nil)
	if err != nil {
		t.Fatalf("ProcessUpload failed: %v", err)
	}

	if result.TotalParsed != 5 {
		t.Errorf("TotalParsed = %d, want 5", result.TotalParsed)
	}
	if result.InvalidLeads != 1 {
		t.Errorf("InvalidLeads = %d, want 1", result.InvalidLeads)
	}
	if result.DuplicateEmails != 1 {
		t.Errorf("DuplicateEmails = %d, want 1 (case-insensitive match)", result.DuplicateEmails)
	}
	if result.AlreadyScanned != 1 {
		t.Errorf("AlreadyScanned = %d, want 1", result.AlreadyScanned)
	}
	if len(result.Leads) != 2 {
		t.Errorf("final leads = %d, want 2", len(result.Leads))
	}

	assertCountIdentity(t, result)
}

// assertCountIdentity checks the invariant that no lead is lost or
// double-counted across buckets.
func assertCountIdentity(t *testing.T, r *PipelineResult) {
	t.Helper()
	sum := len(r.Leads) + r.InvalidLeads + r.DuplicateEmails + r.AlreadyScanned + r.SkippedByRange
	if r.TotalParsed != sum {
		t.Errorf("count identity broken: TotalParsed=%d but buckets sum to %d", r.TotalParsed, sum)
	}
}

func TestProcessUploadParseErrorIsFatal(t *testing.T) {
	pipeline := NewPipeline()
	_, err := pipeline.ProcessUpload(context.Background(), "company,name\nAcme,Jo", "", nil)
	if err == nil {
		t.Fatal("expected a fatal error for a malformed upload")
	}
	if !strings.Contains(err.Error(), "parsing failed") {
		t.Errorf("unexpected error message: %v", err)
	}
}

// A failing duplicate check degrades to unfiltered behavior instead of
// aborting the run.
func TestProcessUploadCheckerFailureIsNonFatal(t *testing.T) {
	checker := &fakeChecker{err: errors.New("scan log unavailable")}
	pipeline := NewPipeline(WithDuplicateChecker(checker))

	result, err := pipeline.ProcessUpload(context.Background(), uploadText, "scope-1", nil)
	if err != nil {
		t.Fatalf("checker failure should not abort the pipeline: %v", err)
	}
	if checker.calls != 1 {
		t.Errorf("expected checker to be consulted once, got %d calls", checker.calls)
	}
	if result.AlreadyScanned != 0 {
		t.Errorf("AlreadyScanned = %d, want 0 when the checker fails", result.AlreadyScanned)
	}
	if len(result.Leads) != 3 {
		t.Errorf("expected 3 unfiltered leads, got %d", len(result.Leads))
	}
	assertCountIdentity(t, result)
}

func TestProcessUploadRowRange(t *testing.T) {
	pipeline := NewPipeline()

	result, err := pipeline.ProcessUpload(context.Background(), uploadText, "", &RowRange{Start: 2, End: 2})
	if err != nil {
		t.Fatalf("ProcessUpload failed: %v", err)
	}
	if len(result.Leads) != 1 {
		t.Fatalf("expected 1 lead in range, got %d", len(result.Leads))
	}
	if result.Leads[0].CompanyName != "Bolt" {
		t.Errorf("range selected the wrong lead: %+v", result.Leads[0])
	}
	if result.SkippedByRange != 2 {
		t.Errorf("SkippedByRange = %d, want 2", result.SkippedByRange)
	}
	assertCountIdentity(t, result)
}

func TestProcessUploadExcludedSites(t *testing.T) {
	pipeline := NewPipeline(WithExcludedSites("*bolt*"))

	result, err := pipeline.ProcessUpload(context.Background(), uploadText, "", nil)
	if err != nil {
		t.Fatalf("ProcessUpload failed: %v", err)
	}
	// Both bolt.test and bolt2.test match the pattern and are removed
	// during cleanup, before email deduplication sees them.
	if result.InvalidLeads != 3 {
		t.Errorf("InvalidLeads = %d, want 3 (1 invalid + 2 excluded)", result.InvalidLeads)
	}
	if result.DuplicateEmails != 0 {
		t.Errorf("DuplicateEmails = %d, want 0 once bolt leads are excluded", result.DuplicateEmails)
	}
	assertCountIdentity(t, result)
}

func TestDedupeByEmail(t *testing.T) {
	t.Run("CaseInsensitive", func(t *testing.T) {
		leads := []Lead{
			{CompanyName: "A", ContactEmail: "jo@acme.test"},
			{CompanyName: "B", ContactEmail: " JO@ACME.TEST "},
		}
		kept, removed := DedupeByEmail(leads)
		if len(kept) != 1 || len(removed) != 1 {
			t.Fatalf("expected 1 kept / 1 removed, got %d / %d", len(kept), len(removed))
		}
		if kept[0].CompanyName != "A" {
			t.Errorf("first occurrence should win, got %+v", kept[0])
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		leads := []Lead{
			{ContactEmail: "a@a.test"},
			{ContactEmail: "A@A.TEST"},
			{ContactEmail: "b@b.test"},
		}
		once, _ := DedupeByEmail(leads)
		twice, removed := DedupeByEmail(once)
		if len(removed) != 0 {
			t.Errorf("second pass removed %d leads, want 0", len(removed))
		}
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("dedup is not idempotent: %+v vs %+v", once, twice)
		}
	})

	t.Run("EmptyEmailsNotDuplicates", func(t *testing.T) {
		leads := []Lead{{CompanyName: "A"}, {CompanyName: "B"}}
		kept, removed := DedupeByEmail(leads)
		if len(kept) != 2 || len(removed) != 0 {
			t.Errorf("leads without emails must not collapse: kept=%d removed=%d", len(kept), len(removed))
		}
	})
}

func TestApplyRowRange(t *testing.T) {
	leads := []Lead{{CompanyName: "1"}, {CompanyName: "2"}, {CompanyName: "3"}}

	cases := []struct {
		name string
		r    RowRange
		want []string
	}{
		{"Inclusive", RowRange{Start: 1, End: 2}, []string{"1", "2"}},
		{"OpenEnd", RowRange{Start: 2}, []string{"2", "3"}},
		{"ClampedEnd", RowRange{Start: 3, End: 99}, []string{"3"}},
		{"StartPastEnd", RowRange{Start: 5, End: 9}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := applyRowRange(leads, &tc.r)
			var names []string
			for _, l := range got {
				names = append(names, l.CompanyName)
			}
			if !reflect.DeepEqual(names, tc.want) {
				t.Errorf("applyRowRange(%+v) = %v, want %v", tc.r, names, tc.want)
			}
		})
	}
}

func TestNormalizeSiteURL(t *testing.T) {
	cases := map[string]string{
		"https://Acme.test/":      "https://acme.test",
		"https://acme.test":       "https://acme.test",
		"acme.test":               "https://acme.test",
		"HTTP://ACME.TEST/Path/":  "http://acme.test/path",
		"https://acme.test/#hero": "https://acme.test",
		"  https://acme.test/  ":  "https://acme.test",
	}
	for input, want := range cases {
		if got := NormalizeSiteURL(input); got != want {
			t.Errorf("NormalizeSiteURL(%q) = %q, want %q", input, got, want)
		}
	}
}
