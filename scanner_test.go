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
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newTestScanner returns an initialized service whose per-target scan is
// replaced by fn, so batch machinery can be exercised without a browser.
func newTestScanner(t *testing.T, opts ScanOptions, fn func(ctx context.Context, url string) *ScanResult) *ScannerService {
	t.Helper()
	s := NewScannerService(opts)
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(s.Shutdown)
	if fn != nil {
		s.scanFn = fn
	}
	return s
}

func TestScanOptionsNormalization(t *testing.T) {
	cases := []struct {
		name string
		in   ScanOptions
		want int
	}{
		{"ZeroDefaultsToTwo", ScanOptions{}, 2},
		{"ClampedToFive", ScanOptions{Concurrency: 50}, 5},
		{"NegativeDefaultsToTwo", ScanOptions{Concurrency: -1}, 2},
		{"InRangeKept", ScanOptions{Concurrency: 4}, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewScannerService(tc.in)
			if got := s.Options().Concurrency; got != tc.want {
				t.Errorf("Concurrency = %d, want %d", got, tc.want)
			}
		})
	}

	opts := NewScannerService(ScanOptions{}).Options()
	if opts.Timeout != 30*time.Second {
		t.Errorf("default Timeout = %s, want 30s", opts.Timeout)
	}
	if opts.ViewportWidth != 1920 || opts.ViewportHeight != 1080 {
		t.Errorf("default viewport = %dx%d, want 1920x1080", opts.ViewportWidth, opts.ViewportHeight)
	}
}

func TestScanBeforeInitialize(t *testing.T) {
	s := NewScannerService(ScanOptions{})

	if _, err := s.ScanHomepage(context.Background(), "https://example.test"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ScanHomepage before Initialize: err = %v, want ErrNotInitialized", err)
	}
	if _, err := s.ScanBatchStream(context.Background(), []string{"https://example.test"}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ScanBatchStream before Initialize: err = %v, want ErrNotInitialized", err)
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	s := NewScannerService(ScanOptions{})
	if err := s.Initialize(); err != nil {
		t.Fatalf("first Initialize failed: %v", err)
	}
	defer s.Shutdown()

	if err := s.Initialize(); err != nil {
		t.Errorf("second Initialize should be a warning no-op, got %v", err)
	}

	s.Shutdown()
	s.Shutdown() // also idempotent
}

// TestScanBatchOrdering makes the middle target resolve slowest and checks
// that results still come back in input order.
func TestScanBatchOrdering(t *testing.T) {
	urls := []string{"https://one.test", "https://two.test", "https://three.test"}

	scan := func(_ context.Context, url string) *ScanResult {
		if url == urls[1] {
			time.Sleep(100 * time.Millisecond)
		}
		return &ScanResult{URL: url, Status: ScanStatusSuccess, Timestamp: time.Now()}
	}
	s := newTestScanner(t, ScanOptions{Concurrency: 2}, scan)

	results, err := s.ScanBatch(context.Background(), urls, nil)
	if err != nil {
		t.Fatalf("ScanBatch failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, url := range urls {
		if results[i] == nil || results[i].URL != url {
			t.Errorf("results[%d] = %+v, want URL %s", i, results[i], url)
		}
	}
}

func TestScanBatchProcessesEachIndexOnce(t *testing.T) {
	urls := make([]string, 40)
	for i := range urls {
		urls[i] = "https://target.test/" + string(rune('a'+i%26))
	}

	var scans atomic.Int64
	scan := func(_ context.Context, url string) *ScanResult {
		scans.Add(1)
		return &ScanResult{URL: url, Status: ScanStatusFailed}
	}
	s := newTestScanner(t, ScanOptions{Concurrency: 5}, scan)

	results, err := s.ScanBatch(context.Background(), urls, nil)
	if err != nil {
		t.Fatalf("ScanBatch failed: %v", err)
	}
	if got := scans.Load(); got != int64(len(urls)) {
		t.Errorf("scanned %d targets, want %d (no double-processing or skips)", got, len(urls))
	}
	for i, r := range results {
		if r == nil {
			t.Errorf("results[%d] is nil", i)
		}
	}
}

func TestScanBatchProgress(t *testing.T) {
	// Single worker keeps completion delivery deterministic.
	urls := []string{"https://a.test", "https://b.test", "https://c.test"}
	s := newTestScanner(t, ScanOptions{Concurrency: 1, Timeout: time.Second}, func(_ context.Context, url string) *ScanResult {
		return &ScanResult{URL: url, Status: ScanStatusSuccess}
	})

	var mu sync.Mutex
	var completions []int
	_, err := s.ScanBatch(context.Background(), urls, func(completed, total int, result *ScanResult) {
		mu.Lock()
		defer mu.Unlock()
		if total != len(urls) {
			t.Errorf("total = %d, want %d", total, len(urls))
		}
		if result == nil {
			t.Error("progress delivered a nil result")
		}
		completions = append(completions, completed)
	})
	if err != nil {
		t.Fatalf("ScanBatch failed: %v", err)
	}

	if len(completions) != len(urls) {
		t.Fatalf("progress fired %d times, want %d", len(completions), len(urls))
	}
	for i, c := range completions {
		if c != i+1 {
			t.Errorf("completions[%d] = %d, want %d", i, c, i+1)
		}
	}
}

// A panicking progress callback must not abort the batch.
func TestScanBatchProgressPanicContained(t *testing.T) {
	urls := []string{"https://a.test", "https://b.test"}
	s := newTestScanner(t, ScanOptions{Concurrency: 1}, func(_ context.Context, url string) *ScanResult {
		return &ScanResult{URL: url, Status: ScanStatusSuccess}
	})

	results, err := s.ScanBatch(context.Background(), urls, func(completed, total int, result *ScanResult) {
		panic("observer bug")
	})
	if err != nil {
		t.Fatalf("ScanBatch failed: %v", err)
	}
	for i, r := range results {
		if r == nil {
			t.Errorf("results[%d] missing after callback panic", i)
		}
	}
}

func TestScanBatchStreamCloses(t *testing.T) {
	s := newTestScanner(t, ScanOptions{Concurrency: 3}, func(_ context.Context, url string) *ScanResult {
		return &ScanResult{URL: url, Status: ScanStatusTimeout}
	})

	stream, err := s.ScanBatchStream(context.Background(), []string{"https://a.test", "https://b.test"})
	if err != nil {
		t.Fatalf("ScanBatchStream failed: %v", err)
	}

	events := 0
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-stream:
			if !ok {
				if events != 2 {
					t.Errorf("received %d events before close, want 2", events)
				}
				return
			}
			events++
		case <-deadline:
			t.Fatal("stream never closed")
		}
	}
}

func TestDetectBotProtection(t *testing.T) {
	cases := []struct {
		name    string
		title   string
		body    string
		vendor  string
		blocked bool
	}{
		{"Cloudflare", "Attention Required! | Cloudflare", "Ray ID: abc123", "Cloudflare", true},
		{"GenericCaptcha", "Verification", "please solve the CAPTCHA below", "CAPTCHA", true},
		{"RecaptchaBeatsGeneric", "Check", "this uses reCAPTCHA to verify", "reCAPTCHA", true},
		{"CleanPage", "Acme Plumbing", "We fix pipes fast.", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vendor, blocked := detectBotProtection(tc.title, tc.body)
			if blocked != tc.blocked || vendor != tc.vendor {
				t.Errorf("detectBotProtection() = (%q, %v), want (%q, %v)", vendor, blocked, tc.vendor, tc.blocked)
			}
		})
	}
}

// Batch results carry a status for every target even when every scan fails.
func TestScanBatchFailuresDoNotAbort(t *testing.T) {
	urls := []string{"https://a.test", "https://b.test", "https://c.test"}
	s := newTestScanner(t, ScanOptions{Concurrency: 2}, func(_ context.Context, url string) *ScanResult {
		if strings.Contains(url, "b.test") {
			return &ScanResult{URL: url, Status: ScanStatusTimeout, Error: "navigation did not settle within 30s"}
		}
		return &ScanResult{URL: url, Status: ScanStatusBlocked, BlockedBy: "Cloudflare"}
	})

	results, err := s.ScanBatch(context.Background(), urls, nil)
	if err != nil {
		t.Fatalf("ScanBatch failed: %v", err)
	}
	if results[1].Status != ScanStatusTimeout {
		t.Errorf("results[1].Status = %s, want TIMEOUT", results[1].Status)
	}
	if len(results[1].Diagnostics) != 0 {
		t.Errorf("non-SUCCESS result must carry no diagnostics")
	}
}
