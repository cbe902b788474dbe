// Package main provides the CLI entry point for the EDGAR research agent.
//
// The agent exposes SEC EDGAR search, web search, page parsing, and stored
// document retrieval as schema-validated tools for LLM function calling.
//
// # Basic Usage
//
// List the available tools:
//
//	edgaragent tools list
//
// Invoke a tool directly:
//
//	edgaragent tools call edgar_search --args '{"query": "material weakness", ...}'
//
// Run a retrieval prompt against stored documents:
//
//	edgaragent retrieve --prompt 'Summarize: {{filing}}'
//
// # Environment Variables
//
//   - GOOGLE_API_KEY / OPENAI_API_KEY / ANTHROPIC_API_KEY: model credentials
//   - SEC_EDGAR_API_KEY: SEC full-text search API key
//   - SERP_API_KEY: SerpAPI key for web search
//   - GEMINI_API_MIN_DELAY: minimum seconds between model calls
//   - EDGAR_AGENT_VERBOSE: include tracebacks in tool error envelopes
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "edgaragent",
		Short: "SEC EDGAR research agent tool layer",
		Long: `edgaragent exposes the research agent's tool layer: SEC EDGAR full-text
search, Google web search, HTML page parsing into per-conversation document
storage, and placeholder-based retrieval through a secondary model call.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		buildToolsCmd(),
		buildRetrieveCmd(),
		buildVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("edgaragent %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
