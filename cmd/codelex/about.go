package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAboutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "about",
		Short: "Show a short description and link",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "codelex: write a program in Kannada, get it back in Python")
			fmt.Fprintln(out, "https://github.com/oukeidos/codelex")
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
