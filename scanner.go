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
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/chromedp"
)

// ScanStatus is the terminal state of one scan attempt.
type ScanStatus string

const (
	ScanStatusSuccess ScanStatus = "SUCCESS"
	ScanStatusFailed  ScanStatus = "FAILED"
	ScanStatusBlocked ScanStatus = "BLOCKED"
	ScanStatusTimeout ScanStatus = "TIMEOUT"
)

// ScanResult is the outcome of one scan attempt against one target URL.
// Diagnostics is empty unless Status is SUCCESS: the checks require a
// stable rendered page.
type ScanResult struct {
	URL string `json:"url"`
	// Screenshot is the raw viewport image bytes, nil when capture failed
	Screenshot  []byte             `json:"-"`
	Diagnostics []DiagnosticResult `json:"diagnostics"`
	Status      ScanStatus         `json:"status"`
	Error       string             `json:"error,omitempty"`
	// BlockedBy names the detected bot-protection vendor on BLOCKED results
	BlockedBy  string    `json:"blockedBy,omitempty"`
	LoadTimeMs int64     `json:"loadTimeMs,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ScanOptions configures a ScannerService. Supplied once at construction
// and immutable thereafter.
type ScanOptions struct {
	// Concurrency is the batch worker count, clamped to 1..5
	Concurrency int
	// Timeout bounds each target's navigation
	Timeout time.Duration
	// ViewportWidth/ViewportHeight size the emulated browser viewport
	ViewportWidth  int
	ViewportHeight int
	// UserAgent is used for robots.txt probing
	UserAgent string
	// RespectRobotsTxt skips targets whose robots.txt disallows fetching
	RespectRobotsTxt bool
}

const (
	defaultConcurrency    = 2
	defaultTimeout        = 30 * time.Second
	defaultViewportWidth  = 1920
	defaultViewportHeight = 1080
	maxConcurrency        = 5
	defaultUserAgent      = "leadscout/1.0 (+https://github.com/agentberlin/leadscout)"
)

// DefaultScanOptions returns the documented defaults: 2 workers, a 30s
// navigation timeout and a 1920x1080 viewport.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Concurrency:    defaultConcurrency,
		Timeout:        defaultTimeout,
		ViewportWidth:  defaultViewportWidth,
		ViewportHeight: defaultViewportHeight,
		UserAgent:      defaultUserAgent,
	}
}

// normalized fills zero fields with defaults and clamps concurrency.
func (o ScanOptions) normalized() ScanOptions {
	if o.Concurrency < 1 {
		o.Concurrency = defaultConcurrency
	}
	if o.Concurrency > maxConcurrency {
		o.Concurrency = maxConcurrency
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = defaultViewportWidth
	}
	if o.ViewportHeight <= 0 {
		o.ViewportHeight = defaultViewportHeight
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	return o
}

// ScanProgress is one batch progress event, published after every
// individual scan completes, successfully or not.
type ScanProgress struct {
	// Index is the target's position in the input slice
	Index int
	// Completed counts finished scans including this one
	Completed int
	// Total is the batch size
	Total  int
	Result *ScanResult
}

// ErrNotInitialized is returned when a scan is requested before
// Initialize, which is a programmer error rather than a scan failure.
var ErrNotInitialized = errors.New("leadscout: scanner service not initialized")

// ScannerService owns the shared headless-browser process and exposes
// single-target and bounded-concurrency batch scanning. Each scan target
// gets its own isolated browsing context on the shared process; the
// context is the unit of parallelism.
type ScannerService struct {
	opts   ScanOptions
	engine *DiagnosticEngine
	robots *robotsChecker

	mu          sync.Mutex
	initialized bool
	allocCtx    context.Context
	allocCancel context.CancelFunc

	// scanFn is the per-target scan implementation; tests swap it out to
	// exercise the batch machinery without a browser.
	scanFn func(ctx context.Context, url string) *ScanResult
}

// NewScannerService creates a service with the given options. Call
// Initialize before scanning and Shutdown when done.
func NewScannerService(opts ScanOptions) *ScannerService {
	s := &ScannerService{
		opts:   opts.normalized(),
		engine: NewDiagnosticEngine(),
		robots: newRobotsChecker(),
	}
	s.scanFn = s.scanOne
	return s
}

// Options returns the service's normalized, immutable configuration.
func (s *ScannerService) Options() ScanOptions {
	return s.opts
}

// Initialize starts the shared browser process allocator. Calling it on an
// already-initialized service is a no-op with a warning, not an error.
func (s *ScannerService) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		log.Printf("leadscout: scanner service already initialized, ignoring")
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(s.opts.ViewportWidth, s.opts.ViewportHeight),
	)
	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	s.initialized = true
	return nil
}

// Shutdown tears down the shared browser process. Idempotent.
func (s *ScannerService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	s.allocCancel()
	s.allocCtx = nil
	s.allocCancel = nil
	s.initialized = false
}

// ScanHomepage scans one target URL in a fresh isolated browsing context.
//
// Expected failure modes never surface as errors: a navigation timeout
// yields a TIMEOUT result, a bot-protection interstitial a BLOCKED result
// with the vendor tag, and any unexpected failure a FAILED result with the
// message attached. The only error return is ErrNotInitialized.
func (s *ScannerService) ScanHomepage(ctx context.Context, url string) (*ScanResult, error) {
	s.mu.Lock()
	initialized := s.initialized
	s.mu.Unlock()
	if !initialized {
		return nil, ErrNotInitialized
	}
	return s.scanFn(ctx, url), nil
}

// scanOne drives the per-target state machine:
// navigate -> (timeout | blocked | rendered) -> diagnose -> done.
func (s *ScannerService) scanOne(ctx context.Context, url string) (result *ScanResult) {
	result = &ScanResult{URL: url, Status: ScanStatusFailed, Timestamp: time.Now()}

	if s.opts.RespectRobotsTxt && !s.robots.Allowed(ctx, url, s.opts.UserAgent) {
		result.Error = "fetching is disallowed by the site's robots.txt"
		return result
	}

	s.mu.Lock()
	allocCtx := s.allocCtx
	s.mu.Unlock()
	if allocCtx == nil {
		result.Error = ErrNotInitialized.Error()
		return result
	}

	session := newBrowserSession(allocCtx, s.opts)
	defer session.Close()
	defer func() {
		// A panic anywhere below must not take down the batch; the
		// session close above still runs.
		if r := recover(); r != nil {
			log.Printf("leadscout: scan of %s panicked: %v", url, r)
			result.Status = ScanStatusFailed
			result.Error = fmt.Sprintf("unexpected scan failure: %v", r)
			result.Diagnostics = nil
		}
	}()

	loadTime, err := session.Navigate(url)
	result.LoadTimeMs = loadTime.Milliseconds()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			result.Status = ScanStatusTimeout
			result.Error = fmt.Sprintf("navigation did not settle within %s", s.opts.Timeout)
		} else {
			result.Error = fmt.Sprintf("navigation failed: %v", err)
		}
		return result
	}

	session.DismissCookieConsent()

	snap, err := session.CollectSnapshot(url, loadTime)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if vendor, blocked := detectBotProtection(snap.Title, snap.BodyText); blocked {
		result.Status = ScanStatusBlocked
		result.BlockedBy = vendor
		// Keep a best-effort screenshot of the interstitial for triage.
		if shot, err := session.Screenshot(); err == nil {
			result.Screenshot = shot
		}
		return result
	}

	if shot, err := session.Screenshot(); err == nil {
		result.Screenshot = shot
	} else {
		log.Printf("leadscout: screenshot of %s failed: %v", url, err)
	}

	result.Diagnostics = s.engine.Run(ctx, snap)
	result.Status = ScanStatusSuccess
	return result
}

// ScanBatchStream scans the targets with a fixed worker pool and publishes
// a ScanProgress event after every completion. The channel is closed when
// the batch finishes. Workers claim targets from a shared atomic cursor,
// so completion order is unconstrained while every index is processed
// exactly once.
//
// Cancellation is per-target only: a stuck target times out internally
// after the configured timeout and its worker moves on to the next index.
func (s *ScannerService) ScanBatchStream(ctx context.Context, urls []string) (<-chan ScanProgress, error) {
	s.mu.Lock()
	initialized := s.initialized
	s.mu.Unlock()
	if !initialized {
		return nil, ErrNotInitialized
	}

	progress := make(chan ScanProgress, len(urls))

	workers := s.opts.Concurrency
	if workers > len(urls) {
		workers = len(urls)
	}
	if workers < 1 {
		workers = 1
	}

	var nextIndex atomic.Int64
	var completed atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(nextIndex.Add(1)) - 1
				if i >= len(urls) {
					return
				}
				result := s.scanFn(ctx, urls[i])
				progress <- ScanProgress{
					Index:     i,
					Completed: int(completed.Add(1)),
					Total:     len(urls),
					Result:    result,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(progress)
	}()

	return progress, nil
}

// ScanBatch scans the targets and returns results in input order,
// regardless of which worker finished first. onProgress, if non-nil, is
// invoked after every individual scan with a running (completed, total,
// result) triple; a panicking callback is contained and never aborts the
// batch.
func (s *ScannerService) ScanBatch(ctx context.Context, urls []string, onProgress func(completed, total int, result *ScanResult)) ([]*ScanResult, error) {
	stream, err := s.ScanBatchStream(ctx, urls)
	if err != nil {
		return nil, err
	}

	results := make([]*ScanResult, len(urls))
	for event := range stream {
		results[event.Index] = event.Result
		if onProgress != nil {
			notifyProgress(onProgress, event)
		}
	}
	return results, nil
}

func notifyProgress(onProgress func(completed, total int, result *ScanResult), event ScanProgress) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("leadscout: progress callback panicked: %v", r)
		}
	}()
	onProgress(event.Completed, event.Total, event.Result)
}
