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
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

// settleWait is the pause after the body is ready, giving client-side
// frameworks time to hydrate before the snapshot is taken.
const settleWait = 1 * time.Second

// browserSession owns one isolated browsing context (independent cookies
// and storage) for exactly one scan target. Contexts are never reused
// across URLs so state cannot bleed between targets.
type browserSession struct {
	ctx     context.Context
	cancels []context.CancelFunc
	opts    ScanOptions
}

// newBrowserSession opens a fresh browsing context on the shared browser
// process. Close must be called on every exit path.
func newBrowserSession(allocCtx context.Context, opts ScanOptions) *browserSession {
	ctx, cancel := chromedp.NewContext(allocCtx)
	return &browserSession{
		ctx:     ctx,
		cancels: []context.CancelFunc{cancel},
		opts:    opts,
	}
}

// Close releases the browsing context. Safe to call multiple times.
func (b *browserSession) Close() {
	for i := len(b.cancels) - 1; i >= 0; i-- {
		b.cancels[i]()
	}
}

// Navigate drives the page load: viewport emulation, navigation, and a
// wait for the body to be ready, all racing the configured hard timeout.
// On timeout the returned error wraps context.DeadlineExceeded; the
// subsequent settle wait is not counted against the load time.
func (b *browserSession) Navigate(url string) (time.Duration, error) {
	navCtx, cancel := context.WithTimeout(b.ctx, b.opts.Timeout)
	defer cancel()

	start := time.Now()
	err := chromedp.Run(navCtx,
		emulation.SetDeviceMetricsOverride(int64(b.opts.ViewportWidth), int64(b.opts.ViewportHeight), 1, false),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	loadTime := time.Since(start)
	if err != nil {
		return loadTime, err
	}

	settleCtx, cancel := context.WithTimeout(b.ctx, settleWait+time.Second)
	defer cancel()
	_ = chromedp.Run(settleCtx, chromedp.Sleep(settleWait))

	return loadTime, nil
}

// consentButtonSelectors are tried in order; the first visible match is
// clicked. The list covers the major consent-management platforms plus
// common hand-rolled banners.
var consentButtonSelectors = []string{
	"#onetrust-accept-btn-handler",
	"#CybotCookiebotDialogBodyLevelButtonLevelOptinAllowAll",
	"#CybotCookiebotDialogBodyButtonAccept",
	"button[data-cookiebanner='accept_button']",
	"#cookie_action_close_header",
	".cc-allow",
	".cc-btn.cc-dismiss",
	"#accept-cookies",
	".accept-cookies",
	"button[aria-label='Accept cookies']",
	"button[aria-label='Accept all cookies']",
	"#gdpr-accept",
}

// consentContainerSelectors identify banner containers that get CSS-hidden
// when no accept button matched.
var consentContainerSelectors = []string{
	"#onetrust-banner-sdk",
	"#onetrust-consent-sdk",
	"#CybotCookiebotDialog",
	".cookie-banner",
	"#cookie-banner",
	".cookie-notice",
	"#cookie-notice",
	"#cookieConsent",
	".cookie-consent",
	".cc-window",
	"#gdpr-banner",
}

// DismissCookieConsent best-effort removes cookie-consent overlays so they
// do not pollute the screenshot or the diagnostics. It first tries to
// click a known accept button, then falls back to hiding known banner
// containers. This step never fails the scan; all of its own errors are
// swallowed.
func (b *browserSession) DismissCookieConsent() {
	buttons, _ := json.Marshal(consentButtonSelectors)
	containers, _ := json.Marshal(consentContainerSelectors)

	script := fmt.Sprintf(`(() => {
		for (const sel of %s) {
			const el = document.querySelector(sel);
			if (el && el.offsetParent !== null) { el.click(); return "clicked"; }
		}
		let hidden = false;
		for (const sel of %s) {
			for (const el of document.querySelectorAll(sel)) {
				el.style.setProperty("display", "none", "important");
				hidden = true;
			}
		}
		return hidden ? "hidden" : "";
	})()`, buttons, containers)

	ctx, cancel := context.WithTimeout(b.ctx, 2*time.Second)
	defer cancel()

	var outcome string
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &outcome)); err != nil {
		return
	}
	if outcome == "clicked" {
		// Give the banner's dismiss animation a moment before screenshotting.
		settleCtx, cancel := context.WithTimeout(b.ctx, time.Second)
		defer cancel()
		_ = chromedp.Run(settleCtx, chromedp.Sleep(300*time.Millisecond))
	}
}

// mediaQueryScript reports whether any same-origin stylesheet contains a
// min-width/max-width media query. Cross-origin sheets throw on cssRules
// access and are skipped.
const mediaQueryScript = `(() => {
	try {
		for (const sheet of document.styleSheets) {
			let rules;
			try { rules = sheet.cssRules; } catch (e) { continue; }
			if (!rules) continue;
			for (const rule of rules) {
				if (rule.media && /(min|max)-width/.test(rule.media.mediaText)) return true;
			}
		}
	} catch (e) {}
	return false;
})()`

// interactiveTextScript collects the visible text of interactive elements
// for the CTA check. Elements without layout (offsetParent === null) are
// invisible and excluded.
const interactiveTextScript = `(() => {
	const texts = [];
	for (const el of document.querySelectorAll('a, button, [role="button"], input[type="submit"]')) {
		if (el.offsetParent === null) continue;
		const text = (el.innerText || el.value || "").trim();
		if (text) texts.push(text.slice(0, 200));
		if (texts.length >= 300) break;
	}
	return texts;
})()`

// CollectSnapshot gathers everything the diagnostics need from the rendered
// page in one round trip: markup, title, visible text, computed base font
// size, media-query presence, and visible interactive element texts.
func (b *browserSession) CollectSnapshot(url string, loadTime time.Duration) (*PageSnapshot, error) {
	ctx, cancel := context.WithTimeout(b.ctx, 10*time.Second)
	defer cancel()

	snap := &PageSnapshot{URL: url, LoadTime: loadTime, InteractiveTexts: []string{}}
	err := chromedp.Run(ctx,
		chromedp.OuterHTML("html", &snap.HTML, chromedp.ByQuery),
		chromedp.Title(&snap.Title),
		chromedp.Evaluate(`document.body ? document.body.innerText.slice(0, 20000) : ""`, &snap.BodyText),
		chromedp.Evaluate(`parseFloat(getComputedStyle(document.body).fontSize) || 0`, &snap.BaseFontSizePx),
		chromedp.Evaluate(mediaQueryScript, &snap.HasResponsiveMediaQuery),
		chromedp.Evaluate(interactiveTextScript, &snap.InteractiveTexts),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot collection failed: %w", err)
	}
	return snap, nil
}

// Screenshot captures the current viewport (not the full page, keeping the
// image bounded for visual analysis downstream).
func (b *browserSession) Screenshot() ([]byte, error) {
	ctx, cancel := context.WithTimeout(b.ctx, 10*time.Second)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot capture failed: %w", err)
	}
	return buf, nil
}
