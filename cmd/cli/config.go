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
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agentberlin/leadscout"
)

// cliConfig is the optional YAML configuration file for the scan command.
// Flags override anything set here.
type cliConfig struct {
	Concurrency      int      `yaml:"concurrency"`
	TimeoutSecs      int      `yaml:"timeout_secs"`
	ViewportWidth    int      `yaml:"viewport_width"`
	ViewportHeight   int      `yaml:"viewport_height"`
	UserAgent        string   `yaml:"user_agent"`
	RespectRobotsTxt bool     `yaml:"respect_robots_txt"`
	ExcludedSites    []string `yaml:"excluded_sites"`
	ScreenshotDir    string   `yaml:"screenshot_dir"`
	DatabasePath     string   `yaml:"database_path"`
}

// loadConfig reads the YAML config file at path. A missing file is an
// error only when the path was explicitly supplied.
func loadConfig(path string) (*cliConfig, error) {
	cfg := &cliConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// scanOptions translates the config into the scanner's option struct,
// leaving zero values for the library defaults to fill.
func (c *cliConfig) scanOptions() leadscout.ScanOptions {
	return leadscout.ScanOptions{
		Concurrency:      c.Concurrency,
		Timeout:          time.Duration(c.TimeoutSecs) * time.Second,
		ViewportWidth:    c.ViewportWidth,
		ViewportHeight:   c.ViewportHeight,
		UserAgent:        c.UserAgent,
		RespectRobotsTxt: c.RespectRobotsTxt,
	}
}
