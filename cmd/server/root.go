package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"account_backend/internal/app/config"
	"account_backend/internal/platform/logger"
)

// NewRootCmd creates the root command. Without a subcommand it runs the server.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "account-server",
		Short:        "GraphQL account backend",
		Long:         `Serves user registration, login, logout and lookup over GraphQL at /graphql.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.PersistentFlags().String("env-file", ".env", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().String("port", "", "listen port (overrides PORT)")
	cmd.PersistentFlags().String("store", "", "user store: mongo, postgres or sqlite (overrides STORE_DRIVER)")
	cmd.PersistentFlags().String("log-level", "", "log level (overrides LOG_LEVEL)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())

	return cmd
}

// loadConfig reads the configuration with the explicitly set flags of fs on top.
func loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	envFile, err := fs.GetString("env-file")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(envFile, fs)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger and installs it as zap's global.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	l, err := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)
	return l, nil
}
