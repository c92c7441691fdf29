package cmd

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"medals/config"
)

var rootCmd = &cobra.Command{
	Use:           "medals",
	Short:         "Guild medal ledger, distribution and raffle service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configureLogging(config.Get())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, distributeCmd, raffleCmd, aggregateCmd, balanceCmd)
}

// Execute runs the command line with ctx cancelled on shutdown signals
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func configureLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
