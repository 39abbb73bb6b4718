package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mholwell/metaline/internal/archetype"
	"github.com/mholwell/metaline/internal/config"
	"github.com/mholwell/metaline/internal/model"
	"github.com/mholwell/metaline/internal/rules"
)

func classifyCmd() *cobra.Command {
	var deckPath string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a single deck list",
		Long: `Classify one deck (JSON file with mainboard/sideboard card counts)
against the configured rule set and print the result.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			data, err := os.ReadFile(deckPath)
			if err != nil {
				return fmt.Errorf("read deck file: %w", err)
			}
			var deck model.Deck
			if err := json.Unmarshal(data, &deck); err != nil {
				return fmt.Errorf("parse deck file: %w", err)
			}
			if err := deck.Validate(); err != nil {
				return err
			}

			repo, err := rules.Load(cfg.Rules.Dir, cfg.Rules.Format, slog.Default())
			if err != nil {
				return err
			}
			classifier, err := archetype.NewClassifier(repo, cfg.ClassifierSettings(), slog.Default())
			if err != nil {
				return err
			}

			result := classifier.Classify(&deck)
			fmt.Printf("%s (method: %s, confidence: %.2f, colors: %s)\n",
				result.DisplayName(), result.Method, result.Confidence, result.Color)
			return nil
		},
	}

	cmd.Flags().StringVarP(&deckPath, "deck", "d", "", "deck list JSON file (required)")
	_ = cmd.MarkFlagRequired("deck")

	return cmd
}
