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

// Leadscout CLI
//
// Command-line interface for the leadscout lead intake and website
// diagnostic pipeline.
//
// Usage:
//
//	leadscout <command> [flags]
//
// Commands:
//
//	scan      Ingest a lead file and scan every lead's website
//	leads     Parse and validate a lead file without scanning
//	version   Show version information
package main

import (
	"fmt"
	"os"

	"github.com/agentberlin/leadscout/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "scan":
		if err := runScan(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "leads":
		if err := runLeads(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "-v", "--version":
		fmt.Printf("Leadscout CLI %s\n", version.Version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Leadscout CLI - Lead intake and website diagnostics

Usage:
  leadscout <command> [flags]

Commands:
  scan      Ingest a lead file (CSV or XLSX), scan every lead's website and export a report
  leads     Parse, validate and deduplicate a lead file without scanning
  version   Show version information
  help      Show this help message

Examples:
  # Scan every lead in a CSV upload
  leadscout scan --file leads.csv --scope spring-campaign

  # Scan rows 10-50 only, four sites at a time
  leadscout scan --file leads.xlsx --range 10-50 --concurrency 4

  # Validate an upload without scanning anything
  leadscout leads --file leads.csv

Use "leadscout <command> --help" for more information about a command.`)
}
