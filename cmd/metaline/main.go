// Package main contains the metaline CLI: a thin shell around the rule
// repository, classification pipeline, and snapshot store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	rootCmd = &cobra.Command{
		Use:   "metaline",
		Short: "Tournament deck archetype classification and metagame statistics",
		Long: `metaline classifies tournament decks into archetypes using declarative
rule definitions and computes metagame statistics over the classified
population: presence, win rates, confidence intervals, tiers, diversity,
and matchup matrices.`,
		PersistentPreRunE: setupLogging,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "metaline.toml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(snapshotsCmd())
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(_ *cobra.Command, _ []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}
