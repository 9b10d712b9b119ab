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

// Package testutil provides shared test utilities for leadscout tests:
// an HTTP test server with fixture pages covering the diagnostic checks.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"
)

// Fixture pages shared across tests.
var (
	// HealthyHTML is a page that passes every diagnostic: ideal title and
	// meta description lengths, one H1, full alt coverage, a responsive
	// viewport, and two distinct calls-to-action.
	HealthyHTML = `<!DOCTYPE html>
<html>
<head>
<title>Acme Plumbing - Emergency Repairs in Austin</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="description" content="Acme Plumbing provides 24/7 emergency plumbing repairs, drain cleaning and water heater installation across the greater Austin area.">
</head>
<body>
<h1>Emergency Plumbing Repairs</h1>
<img src="/van.jpg" alt="Acme service van">
<img src="/team.jpg" alt="The Acme team">
<p>Fast, friendly and fairly priced.</p>
<a href="/services">Our services</a>
<a href="/contact">Contact us</a>
<button>Get started</button>
</body>
</html>`

	// BrokenLinksHTML links to two endpoints that 404 and a set of
	// non-probeable schemes that must be skipped.
	BrokenLinksHTML = `<!DOCTYPE html>
<html>
<head><title>Broken Links Fixture</title></head>
<body>
<a href="/services">Services</a>
<a href="/missing-one">Old page</a>
<a href="/missing-two">Older page</a>
<a href="mailto:info@example.com">Mail</a>
<a href="tel:+15125550100">Call</a>
<a href="javascript:void(0)">Widget</a>
<a href="#section">Jump</a>
</body>
</html>`

	// CloudflareHTML mimics a Cloudflare challenge interstitial.
	CloudflareHTML = `<!DOCTYPE html>
<html>
<head><title>Attention Required! | Cloudflare</title></head>
<body>
<h1>Please complete the security check</h1>
<p>Checking your browser before accessing example.com. Ray ID: 8a2f9c1b4d3e</p>
</body>
</html>`

	// CookieBannerHTML carries a OneTrust-style consent banner.
	CookieBannerHTML = `<!DOCTYPE html>
<html>
<head><title>Cookie Banner Fixture</title></head>
<body>
<div id="onetrust-banner-sdk"><p>We value your privacy</p>
<button id="onetrust-accept-btn-handler">Accept all</button></div>
<h1>Welcome</h1>
</body>
</html>`
)

// NewTestServer creates and starts an HTTP test server with all fixture
// endpoints configured. The caller owns the server and must Close it.
func NewTestServer() *httptest.Server {
	srv := NewUnstartedTestServer()
	srv.Start()
	return srv
}

// NewUnstartedTestServer creates the fixture server without starting it.
func NewUnstartedTestServer() *httptest.Server {
	mux := http.NewServeMux()

	html := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(200)
			fmt.Fprint(w, body)
		}
	}

	mux.HandleFunc("/healthy", html(HealthyHTML))
	mux.HandleFunc("/broken-links", html(BrokenLinksHTML))
	mux.HandleFunc("/blocked", html(CloudflareHTML))
	mux.HandleFunc("/cookie-banner", html(CookieBannerHTML))

	mux.HandleFunc("/services", html(`<html><head><title>Services</title></head><body>ok</body></html>`))
	mux.HandleFunc("/contact", html(`<html><head><title>Contact</title></head><body>ok</body></html>`))

	// /slow?ms=N delays its response, for timeout and page-speed tests.
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		ms, _ := strconv.Atoi(r.URL.Query().Get("ms"))
		time.Sleep(time.Duration(ms) * time.Millisecond)
		html(`<html><head><title>Slow</title></head><body>finally</body></html>`)(w, r)
	})

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return httptest.NewUnstartedServer(mux)
}
