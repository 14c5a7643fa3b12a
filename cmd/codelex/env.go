package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/oukeidos/codelex/internal/auth"
	"github.com/spf13/cobra"
)

type envOptions struct {
	service string
}

func newEnvCmd() *cobra.Command {
	opts := envOptions{}
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Store or check provider API keys",
		Long: `Store or check the API keys codelex uses for the code model and
the translation provider. Keys live in the OS keychain; environment
variables are read only when --allow-env is passed to process or serve.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvStatus(cmd, &opts)
		},
	}

	cmd.SetUsageTemplate(groupUsageTemplate)
	cmd.PersistentFlags().StringVar(&opts.service, "service", "", "Provider key to manage ("+strings.Join(auth.Services(), ", ")+")")

	cmd.AddCommand(
		newEnvSetupCmd(&opts),
		newEnvDeleteCmd(&opts),
		newEnvStatusCmd(&opts),
	)
	return cmd
}

func newEnvSetupCmd(opts *envOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Prompt for a provider key and store it in the keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvSetup(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newEnvDeleteCmd(opts *envOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove a stored provider key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvDelete(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newEnvStatusCmd(opts *envOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report where each provider key would come from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvStatus(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

// checkService resolves --service. An empty name falls back to def.
func checkService(name, def string) (string, error) {
	svc := strings.ToLower(strings.TrimSpace(name))
	if svc == "" {
		svc = def
	}
	if !auth.IsService(svc) {
		return "", fmt.Errorf("invalid service %q (known: %s)", name, strings.Join(auth.Services(), ", "))
	}
	return svc, nil
}

func runEnvSetup(cmd *cobra.Command, opts *envOptions) error {
	svc, err := checkService(opts.service, auth.ServiceGemini)
	if err != nil {
		return err
	}
	entered, err := promptForKey(cmd.ErrOrStderr(), fmt.Sprintf("%s key for codelex: ", auth.Label(svc)))
	if err != nil {
		return fmt.Errorf("could not read %s key: %w", auth.Label(svc), err)
	}
	key := strings.TrimSpace(entered)
	if key == "" {
		return fmt.Errorf("no %s key entered; nothing stored", auth.Label(svc))
	}
	if err := auth.SaveKey(svc, key); err != nil {
		return fmt.Errorf("could not store %s key: %w", auth.Label(svc), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: key stored in keychain\n", svc)
	return nil
}

func runEnvDelete(cmd *cobra.Command, opts *envOptions) error {
	svc, err := checkService(opts.service, auth.ServiceGemini)
	if err != nil {
		return err
	}
	if err := auth.DeleteKey(svc); err != nil {
		return fmt.Errorf("could not remove %s key: %w", auth.Label(svc), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: key removed from keychain\n", svc)
	return nil
}

// runEnvStatus reports one provider, or all of them when --service is unset.
func runEnvStatus(cmd *cobra.Command, opts *envOptions) error {
	services := auth.Services()
	if strings.TrimSpace(opts.service) != "" {
		svc, err := checkService(opts.service, "")
		if err != nil {
			return err
		}
		services = []string{svc}
	}
	for _, svc := range services {
		writeKeyStatus(cmd.OutOrStdout(), svc)
	}
	return nil
}

// writeKeyStatus never prints key material.
func writeKeyStatus(w io.Writer, svc string) {
	switch {
	case getStatus(svc):
		fmt.Fprintf(w, "%s: key stored in keychain\n", svc)
	case hasEnvKey(svc):
		fmt.Fprintf(w, "%s: key found in %s (used only with --allow-env)\n", svc, auth.EnvVar(svc))
	default:
		fmt.Fprintf(w, "%s: no key (keychain empty, %s not set)\n", svc, auth.EnvVar(svc))
	}
}

func hasEnvKey(svc string) bool {
	key, ok := getEnvKey(svc)
	return ok && key != ""
}
