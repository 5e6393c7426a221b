package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAboutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "about",
		Short: "Show a short description and link",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "promptaudit: records Gemini prompts, responses, token usage,")
			fmt.Fprintln(out, "safety ratings, citations and grounding sources to BigQuery or a log file.")
			fmt.Fprintln(out, "https://github.com/oukeidos/promptaudit")
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
