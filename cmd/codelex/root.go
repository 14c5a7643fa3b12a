package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/oukeidos/codelex/internal/cleanup"
	"github.com/oukeidos/codelex/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// execute runs the CLI and releases pipeline resources before exiting.
func execute() {
	err := newRootCmd().Execute()
	err = errors.Join(err, cleanup.RunAll())
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	processOpts := processOptions{}

	cmd := &cobra.Command{
		Use:   "codelex [flags] <sentence>",
		Short: "Kannada to Python program generator",
		Long: `codelex turns a Kannada instruction such as
"1 ರಿಂದ 10 ರವರೆಗೆ ಸಂಖ್ಯೆಗಳನ್ನು ಮುದ್ರಿಸಿ" into a Python program, showing the
translation, pseudo-code and feedback along the way.

A bare sentence is shorthand for "codelex process <sentence>".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, &processOpts)
		},
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)

	addProcessFlags(cmd, &processOpts)

	cmd.AddCommand(
		newAboutCmd(),
		newProcessCmd(),
		newServeCmd(),
		newLanguagesCmd(),
		newConfigCmd(),
		newEnvCmd(),
	)

	cmd.InitDefaultCompletionCmd()
	if sub, _, err := cmd.Find([]string{"completion"}); err == nil && sub != cmd {
		sub.Short = "Print a shell completion script for codelex"
		sub.SetUsageTemplate(subcommandUsageTemplate)
	}

	return cmd
}

// runRoot treats positional args as a sentence unless they name a command.
func runRoot(cmd *cobra.Command, args []string, opts *processOptions) error {
	if len(args) == 0 {
		if changed := changedFlags(cmd); len(changed) > 0 {
			_ = cmd.Usage()
			return fmt.Errorf("no sentence given (flags set: %s)", strings.Join(changed, ", "))
		}
		return cmd.Help()
	}
	for _, sub := range cmd.Commands() {
		if sub.Name() == args[0] {
			_ = cmd.Usage()
			return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
		}
	}
	return runProcess(cmd, args, opts)
}

func changedFlags(cmd *cobra.Command) []string {
	var names []string
	cmd.Flags().Visit(func(f *pflag.Flag) {
		names = append(names, "--"+f.Name)
	})
	return names
}
