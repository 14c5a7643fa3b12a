package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/oukeidos/codelex/internal/cleanup"
	"github.com/oukeidos/codelex/internal/files"
	"github.com/oukeidos/codelex/internal/logger"
	"github.com/oukeidos/codelex/internal/pipeline"
	"github.com/oukeidos/codelex/internal/prompt"
	"github.com/spf13/cobra"
)

var newConfirmer = prompt.DefaultConfirmer

// maxStdinBytes bounds a sentence read from standard input.
const maxStdinBytes = 64 << 10

type processOptions struct {
	runtimeOptions
	jsonOutput     bool
	outputPath     string
	allowOverwrite bool
	stats          bool
}

func newProcessCmd() *cobra.Command {
	opts := processOptions{}
	cmd := &cobra.Command{
		Use:   "process <sentence>",
		Short: "Turn one sentence into a Python program",
		Long: `Turn one sentence into a Python program.

The sentence may be given as arguments or, with "-", read from standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args, &opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addProcessFlags(cmd, &opts)
	return cmd
}

func addProcessFlags(cmd *cobra.Command, opts *processOptions) {
	addRuntimeFlags(cmd, &opts.runtimeOptions)
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the stage report as JSON")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Write the generated program to this file")
	cmd.Flags().BoolVarP(&opts.allowOverwrite, "yes", "y", false, "Overwrite output without confirmation")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print timing and model usage after the report")
}

func runProcess(cmd *cobra.Command, args []string, opts *processOptions) error {
	text, err := readSentence(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	_, cfg, err := loadRuntime(cmd, &opts.runtimeOptions)
	if err != nil {
		return err
	}

	outputPath := opts.outputPath
	if outputPath != "" {
		outputPath, err = prepareOutputPath(outputPath, opts.allowOverwrite)
		if err != nil {
			return err
		}
	}

	ctx, stop := signalContext()
	defer stop()

	startTime := time.Now()
	p, err := pipeline.Build(ctx, cfg)
	if err != nil {
		return err
	}
	cleanup.Register("pipeline", p.Close)

	res, err := p.Run(ctx, pipeline.Request{SourceText: text, SourceLang: cfg.SourceLang})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Response()); err != nil {
			return err
		}
	} else {
		printReport(out, res)
	}

	if outputPath != "" {
		if err := files.AtomicWrite(outputPath, []byte(res.Code.String()+"\n"), 0644); err != nil {
			return err
		}
		logger.Info("Program written", "path", outputPath, "run_id", res.RunID)
	}

	if opts.stats {
		printUsageStats(cmd.ErrOrStderr(), p, time.Since(startTime))
	}
	return nil
}

// readSentence joins args into one sentence. A single "-" reads stdin.
func readSentence(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(io.LimitReader(stdin, maxStdinBytes+1))
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(data) > maxStdinBytes {
			return "", fmt.Errorf("stdin input exceeds %d bytes", maxStdinBytes)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

// errOverwriteDeclined is returned when the user keeps an existing output file.
var errOverwriteDeclined = errors.New("aborted: output file exists and overwrite was declined")

// prepareOutputPath confirms or renames an existing target.
func prepareOutputPath(path string, allowOverwrite bool) (string, error) {
	if !allowOverwrite {
		if _, err := os.Stat(path); err == nil {
			confirmed, err := newConfirmer().ConfirmOverwrite(path, allowOverwrite)
			if err != nil {
				return "", err
			}
			if !confirmed {
				return "", errOverwriteDeclined
			}
			allowOverwrite = true
		}
	}

	if !allowOverwrite {
		safePath, changed, err := files.SafePath(path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve output path: %w", err)
		}
		if changed {
			logger.Warn("Output path changed", "path", safePath)
			path = safePath
		}
	}
	if err := files.RejectSymlinkPath(path); err != nil {
		return "", err
	}
	return path, nil
}

func printReport(w io.Writer, res pipeline.Result) {
	for _, s := range res.Stages {
		marker := ""
		if s.Degraded {
			marker = " (fallback)"
		}
		fmt.Fprintf(w, "[%s]%s %s\n", s.Stage, marker, s.Message)
	}

	resp := res.Response()
	fmt.Fprintln(w, "\n--- Translation ---")
	fmt.Fprintln(w, resp.Translation)
	fmt.Fprintln(w, "\n--- Pseudo-code ---")
	fmt.Fprintln(w, resp.PseudoCode)
	fmt.Fprintln(w, "\n--- Python ---")
	fmt.Fprintln(w, resp.Code)
	fmt.Fprintln(w, "\n--- Feedback ---")
	fmt.Fprintln(w, resp.Feedback)
}
