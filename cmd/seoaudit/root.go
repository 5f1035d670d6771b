package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raysh454/seoaudit/internal/app"
)

// NewRootCmd creates the root command for seoaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seoaudit",
		Short: "Client for a remote SEO audit API",
		Long: `seoaudit submits a page to an SEO audit API, polls the job until it
completes and renders the technical, content and AI readiness checks.

Configuration is read from $XDG_CONFIG_HOME/seoaudit/config.yaml when present.
Results are recorded in a local history database so audits can be compared.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().StringP("config", "c", "", "Path to the config file")
	cmd.PersistentFlags().String("api", "", "Audit API base URL (overrides config and "+app.EnvAPIBase+")")
	cmd.PersistentFlags().Bool("offline", false, "Use the built-in demo client instead of the audit API")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewPDFCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the global flags on top.
func loadConfig(cmd *cobra.Command) (*app.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := app.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if api, _ := cmd.Flags().GetString("api"); api != "" {
		cfg.API.BaseURL = api
	}
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		cfg.API.Offline = true
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// newApplication builds the application for a command. Logs go to stderr so
// stdout only carries command output.
func newApplication(cmd *cobra.Command, cfg *app.Config) (*app.Application, error) {
	logger := app.NewLogger(cfg.Log, cmd.ErrOrStderr())
	a, err := app.NewApplication(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.Start(); err != nil {
		return nil, err
	}
	return a, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// shutdown releases the application, reporting but not failing on errors.
func shutdown(cmd *cobra.Command, a *app.Application) {
	if err := a.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "shutdown: %v\n", err)
	}
}
