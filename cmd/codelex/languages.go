package main

import (
	"encoding/json"
	"fmt"

	"github.com/oukeidos/codelex/internal/language"
	"github.com/spf13/cobra"
)

func newLanguagesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported input languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			langs := language.SourceLanguages()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(langs)
			}
			fmt.Fprintf(out, "%-6s %-12s %s\n", "CODE", "NAME", "NATIVE")
			for _, l := range langs {
				fmt.Fprintf(out, "%-6s %-12s %s\n", l.Code, l.Name, l.NativeName)
			}
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
