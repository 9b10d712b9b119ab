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

import "strings"

// botSignature ties an anti-automation vendor to the keywords its
// interstitial pages leave in the title or body text.
type botSignature struct {
	vendor   string
	keywords []string
}

// botSignatures is ordered from specific vendors to generic CAPTCHA
// wording so the most informative vendor tag wins.
var botSignatures = []botSignature{
	{"Cloudflare", []string{"cloudflare", "ray id", "attention required", "checking your browser before accessing"}},
	{"PerimeterX", []string{"perimeterx", "px-captcha", "press & hold"}},
	{"DataDome", []string{"datadome"}},
	{"Imperva", []string{"imperva", "incapsula"}},
	{"Akamai", []string{"akamai bot manager", "reference #18"}},
	{"hCaptcha", []string{"hcaptcha"}},
	{"reCAPTCHA", []string{"recaptcha"}},
	{"CAPTCHA", []string{"captcha", "verify you are human", "are you a robot", "unusual traffic"}},
}

// detectBotProtection probes the rendered title and body text for
// anti-automation interstitials. It returns the vendor tag and true when a
// signature matches. Diagnostics on an interstitial page are meaningless,
// so callers skip them for blocked targets.
func detectBotProtection(title, bodyText string) (string, bool) {
	haystack := strings.ToLower(title + "\n" + bodyText)
	for _, sig := range botSignatures {
		for _, kw := range sig.keywords {
			if strings.Contains(haystack, kw) {
				return sig.vendor, true
			}
		}
	}
	return "", false
}
