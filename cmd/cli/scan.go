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
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"

	"github.com/agentberlin/leadscout"
	"github.com/agentberlin/leadscout/intake"
	"github.com/agentberlin/leadscout/report"
	"github.com/agentberlin/leadscout/storage"
)

// scanFlags holds all the flags for the scan command
type scanFlags struct {
	// Input
	file     string
	scope    string
	rowRange string
	config   string

	// Scanner options
	concurrency    int
	timeoutSecs    int
	viewportWidth  int
	viewportHeight int
	robots         bool
	exclude        string

	// Output
	out           string
	screenshotDir string
	dbPath        string
	quiet         bool
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)

	var flags scanFlags
	fs.StringVar(&flags.file, "file", "", "Lead file to ingest (.csv or .xlsx, required)")
	fs.StringVar(&flags.file, "f", "", "Lead file to ingest (shorthand)")
	fs.StringVar(&flags.scope, "scope", "default", "Scope ID grouping this upload for duplicate suppression")
	fs.StringVar(&flags.rowRange, "range", "", "Inclusive 1-based row range over the surviving leads, e.g. 10-50")
	fs.StringVar(&flags.config, "config", "", "Path to a YAML config file")

	fs.IntVar(&flags.concurrency, "concurrency", 0, "Concurrent scans (1-5, default 2)")
	fs.IntVar(&flags.concurrency, "c", 0, "Concurrent scans (shorthand)")
	fs.IntVar(&flags.timeoutSecs, "timeout", 0, "Per-target navigation timeout in seconds (default 30)")
	fs.IntVar(&flags.viewportWidth, "viewport-width", 0, "Emulated viewport width (default 1920)")
	fs.IntVar(&flags.viewportHeight, "viewport-height", 0, "Emulated viewport height (default 1080)")
	fs.BoolVar(&flags.robots, "robots", false, "Skip targets whose robots.txt disallows fetching")
	fs.StringVar(&flags.exclude, "exclude", "", "Comma-separated glob patterns for sites to skip")

	fs.StringVar(&flags.out, "out", "", "Write an XLSX report to this path")
	fs.StringVar(&flags.out, "o", "", "Write an XLSX report (shorthand)")
	fs.StringVar(&flags.screenshotDir, "screenshots", "", "Directory for captured screenshots")
	fs.StringVar(&flags.dbPath, "db", "", "Scan-log database path (default ~/.leadscout/leadscout.db)")
	fs.BoolVar(&flags.quiet, "quiet", false, "Suppress the progress bar")
	fs.BoolVar(&flags.quiet, "q", false, "Suppress the progress bar (shorthand)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if flags.file == "" {
		return fmt.Errorf("--file is required")
	}

	cfg := &cliConfig{}
	if flags.config != "" {
		loaded, err := loadConfig(flags.config)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	opts := cfg.scanOptions()
	if flags.concurrency > 0 {
		opts.Concurrency = flags.concurrency
	}
	if flags.timeoutSecs > 0 {
		opts.Timeout = time.Duration(flags.timeoutSecs) * time.Second
	}
	if flags.viewportWidth > 0 {
		opts.ViewportWidth = flags.viewportWidth
	}
	if flags.viewportHeight > 0 {
		opts.ViewportHeight = flags.viewportHeight
	}
	if flags.robots {
		opts.RespectRobotsTxt = true
	}

	excludes := cfg.ExcludedSites
	if flags.exclude != "" {
		for _, p := range strings.Split(flags.exclude, ",") {
			excludes = append(excludes, strings.TrimSpace(p))
		}
	}

	rowRange, err := parseRowRange(flags.rowRange)
	if err != nil {
		return err
	}

	// Handle interrupts gracefully: finish the in-flight target, skip the rest.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	text, err := intake.ReadLeadFile(flags.file)
	if err != nil {
		return err
	}

	dbPath := flags.dbPath
	if dbPath == "" {
		dbPath = cfg.DatabasePath
	}
	store, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	pipeline := leadscout.NewPipeline(
		leadscout.WithDuplicateChecker(store),
		leadscout.WithExcludedSites(excludes...),
	)

	result, err := pipeline.ProcessUpload(ctx, text, flags.scope, rowRange)
	if err != nil {
		return err
	}

	fmt.Printf("Parsed %d leads: %d ready, %d invalid, %d duplicate emails, %d already scanned, %d outside range\n",
		result.TotalParsed, len(result.Leads), result.InvalidLeads,
		result.DuplicateEmails, result.AlreadyScanned, result.SkippedByRange)
	for _, removed := range result.Removed {
		fmt.Printf("  removed %q: %s\n", removed.Lead.ContactEmail, strings.Join(removed.Reasons, "; "))
	}
	if len(result.Leads) == 0 {
		fmt.Println("Nothing to scan.")
		return nil
	}

	scanner := leadscout.NewScannerService(opts)
	if err := scanner.Initialize(); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer scanner.Shutdown()

	urls := make([]string, len(result.Leads))
	for i, lead := range result.Leads {
		urls[i] = ensureScheme(lead.WebsiteURL)
	}

	var bar *pterm.ProgressbarPrinter
	if !flags.quiet {
		bar, _ = pterm.DefaultProgressbar.WithTotal(len(urls)).WithTitle("Scanning").Start()
	}
	onProgress := func(completed, total int, res *leadscout.ScanResult) {
		if bar != nil {
			bar.UpdateTitle(fmt.Sprintf("Scanning (%s)", res.URL))
			bar.Increment()
		}
	}

	results, err := scanner.ScanBatch(ctx, urls, onProgress)
	if bar != nil {
		bar.Stop()
	}
	if err != nil {
		return err
	}

	screenshotDir := flags.screenshotDir
	if screenshotDir == "" {
		screenshotDir = cfg.ScreenshotDir
	}

	counts := make(map[leadscout.ScanStatus]int)
	for _, res := range results {
		counts[res.Status]++
		if _, err := store.SaveScan(flags.scope, res, screenshotDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record scan of %s: %v\n", res.URL, err)
		}
	}

	if flags.out != "" {
		if err := report.WriteXLSX(flags.out, result.Leads, results); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", flags.out)
	}

	fmt.Printf("Scanned %d sites: %d succeeded, %d blocked, %d timed out, %d failed\n",
		len(results), counts[leadscout.ScanStatusSuccess], counts[leadscout.ScanStatusBlocked],
		counts[leadscout.ScanStatusTimeout], counts[leadscout.ScanStatusFailed])
	return nil
}

func openStore(dbPath string) (*storage.Store, error) {
	if dbPath == "" {
		return storage.NewStore()
	}
	return storage.NewStoreAt(dbPath)
}

// parseRowRange parses "start-end" (or a bare "start") into a RowRange.
func parseRowRange(s string) (*leadscout.RowRange, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.SplitN(s, "-", 2)
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid row range %q", s)
	}
	r := &leadscout.RowRange{Start: start}
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid row range %q", s)
		}
		r.End = end
	}
	return r, nil
}

// ensureScheme makes a bare domain navigable.
func ensureScheme(site string) string {
	site = strings.TrimSpace(site)
	lower := strings.ToLower(site)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return site
	}
	return "https://" + site
}
