package main

import (
	"context"
	"strings"
	"time"

	"github.com/oukeidos/codelex/internal/cleanup"
	"github.com/oukeidos/codelex/internal/logger"
	"github.com/oukeidos/codelex/internal/pipeline"
	"github.com/oukeidos/codelex/internal/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	runtimeOptions
	host    string
	port    int
	origins string
}

func newServeCmd() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, &opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addRuntimeFlags(cmd, &opts.runtimeOptions)
	cmd.Flags().StringVar(&opts.host, "host", "", "Listen host (default 0.0.0.0)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "Listen port (default 8000)")
	cmd.Flags().StringVar(&opts.origins, "origins", "", "Comma-separated CORS origins")
	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	file, cfg, err := loadRuntime(cmd, &opts.runtimeOptions)
	if err != nil {
		return err
	}

	srvCfg := file.ServerConfig()
	if cmd.Flags().Changed("host") {
		srvCfg.Host = opts.host
	}
	if cmd.Flags().Changed("port") {
		srvCfg.Port = opts.port
	}
	if cmd.Flags().Changed("origins") {
		srvCfg.AllowedOrigins = splitOrigins(opts.origins)
	}

	ctx, stop := signalContext()
	defer stop()

	p, err := pipeline.Build(ctx, cfg)
	if err != nil {
		// Keep serving so /health can report the failure.
		logger.Error("Pipeline unavailable", "error", err)
		p = pipeline.New(nil, nil, cfg)
	}
	cleanup.Register("pipeline", p.Close)

	srv := server.New(p, srvCfg)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
