package cli

import (
	"context"

	"applytrack/internal/client"
	"applytrack/internal/common"
	"applytrack/internal/config"
	"applytrack/internal/drafts"
	"applytrack/internal/errors"
	"applytrack/internal/normalize"
	"applytrack/internal/observability"
	"applytrack/internal/session"
	"applytrack/internal/store"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}
type storeKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}
var storeKey = storeKeyType{}

var rootCmd = &cobra.Command{
	Use:   "applytrack",
	Short: "Track job applications against the applytrack backend",
	Long: `Applytrack is a command-line client for a job application tracking backend.
It submits job postings for analysis, uploads resumes and cover letters,
scores and optimizes a resume for a job, and keeps track of the resulting
applications, their status and notes.

Run "applytrack serve" to keep a session open behind a local HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the root command with the config, logger and store attached to ctx
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger, st *store.Store) error {
	// Attach the config, logger and store to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	ctx = context.WithValue(ctx, storeKey, st)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// getStoreFromContext returns the session store, creating an empty one when
// the caller did not provide any.
func getStoreFromContext(ctx context.Context) *store.Store {
	if st, ok := ctx.Value(storeKey).(*store.Store); ok && st != nil {
		return st
	}
	return store.New()
}

// newAPIClient builds the transport for the configured backend
func newAPIClient(cfg *config.Config, logger *errors.Logger, metrics *observability.Metrics) *client.Client {
	return client.New(cfg.API, logger, client.WithMetrics(metrics))
}

// newSession wires the store, services and draft storage used by every command
func newSession(ctx context.Context, api *client.Client, metrics *observability.Metrics) *session.Session {
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)
	norm := normalize.New()

	return session.New(
		getStoreFromContext(ctx),
		session.NewServices(api, norm, logger),
		drafts.NewStore(cfg.Drafts.Path),
		session.WithNormalizer(norm),
		session.WithLogger(logger),
		session.WithMetrics(metrics),
	)
}

// commandSession is newSession for one-shot commands, which run without metrics
func commandSession(cmd *cobra.Command) *session.Session {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	return newSession(cmd.Context(), newAPIClient(cfg, logger, nil), nil)
}

// addOutputFlags registers --output and --format on cmd and validates the
// format before the command runs.
func addOutputFlags(cmd *cobra.Command, cmdConfig *common.CommandConfig) *cobra.Command {
	cmd.Flags().StringVarP(&cmdConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cmdConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if cmdConfig.OutputFormat == "" {
			cmdConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(cmdConfig.OutputFormat, cfg.App.SupportedFormats)
	}

	// Add completion for format flag
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// runWithOutput runs operation and writes its result per cmdConfig
func runWithOutput[Output any](cmd *cobra.Command, cmdConfig common.CommandConfig, name string, operation common.OperationFunc[Output]) error {
	logger := getLoggerFromContext(cmd.Context())
	return common.RunCommand(cmd.Context(), logger, cmdConfig, cmd.OutOrStdout(), name, operation)
}

func init() {
	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(coverLetterCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(applicationsCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
