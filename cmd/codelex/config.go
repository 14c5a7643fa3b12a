package main

import (
	"bytes"
	"fmt"

	"github.com/oukeidos/codelex/internal/config"
	"github.com/oukeidos/codelex/internal/files"
	"github.com/spf13/cobra"
)

const defaultConfigName = "codelex.yaml"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the YAML config file",
	}
	cmd.SetUsageTemplate(groupUsageTemplate)
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigName
			if len(args) == 1 {
				path = args[0]
			}
			if err := files.RejectSymlinkPath(path); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := config.Default().Save(&buf); err != nil {
				return err
			}
			written, err := files.AtomicWriteExclusive(path, buf.Bytes(), 0600)
			if err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", written)
			return nil
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(path)
			if err != nil {
				return err
			}
			return f.Save(cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&path, "config", "", "Path to a YAML config file")
	return cmd
}
