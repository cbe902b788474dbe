// commands.go contains the cobra command definitions and their flag
// configurations. Each command builder creates a command and wires it to its
// handler.
package main

import (
	"github.com/spf13/cobra"
)

func buildToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and invoke the agent's tools",
	}
	cmd.AddCommand(buildToolsListCmd(), buildToolsCallCmd())
	return cmd
}

func buildToolsListCmd() *cobra.Command {
	var (
		configPath  string
		withSchemas bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToolsList(cmd.Context(), configPath, withSchemas)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().BoolVar(&withSchemas, "schemas", false, "Include each tool's parameter schema")
	return cmd
}

func buildToolsCallCmd() *cobra.Command {
	var (
		configPath   string
		argsJSON     string
		conversation string
	)
	cmd := &cobra.Command{
		Use:   "call <tool-name>",
		Short: "Invoke a tool with JSON arguments",
		Example: `  # Search EDGAR filings
  edgaragent tools call edgar_search --args '{"query": "\"material weakness\"", "form_types": ["10-K"], "ciks": [], "start_date": "2024-01-01", "end_date": "2024-12-31", "page": "1", "top_n_results": 5}'

  # Parse a page into the conversation's document store
  edgaragent tools call parse_html_page --args '{"url": "https://example.com", "key": "page"}' --conversation demo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToolsCall(cmd.Context(), configPath, args[0], argsJSON, conversation)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&argsJSON, "args", "a", "{}", "Tool arguments as a JSON object")
	cmd.Flags().StringVar(&conversation, "conversation", "", "Conversation ID scoping the document store (default: a fresh UUID)")
	return cmd
}

func buildRetrieveCmd() *cobra.Command {
	var (
		configPath string
		prompt     string
		rangesJSON string
		docs       []string
	)
	cmd := &cobra.Command{
		Use:   "retrieve",
		Short: "Run a placeholder prompt against stored documents",
		Long: `Compose a prompt by substituting {{key}} placeholders with stored documents,
then submit it to the configured model. Documents are loaded into the store
with --doc key=path flags.`,
		Example: `  edgaragent retrieve --doc filing=./10k.txt --prompt 'Summarize the risks: {{filing}}'

  # Only the first 2000 characters of the document
  edgaragent retrieve --doc filing=./10k.txt --ranges '[{"key": "filing", "range": [0, 2000]}]' \
    --prompt 'Summarize the risks: {{filing}}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRetrieve(cmd.Context(), configPath, prompt, rangesJSON, docs)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Prompt containing {{key}} placeholders (required)")
	cmd.Flags().StringVar(&rangesJSON, "ranges", "", `Character ranges as JSON, e.g. '[{"key": "doc", "range": [0, 500]}]'`)
	cmd.Flags().StringArrayVar(&docs, "doc", nil, "Document to store before composing, as key=path (repeatable)")
	cmd.MarkFlagRequired("prompt")
	return cmd
}
