package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mholwell/metaline/internal/config"
	"github.com/mholwell/metaline/internal/model"
	"github.com/mholwell/metaline/internal/pipeline"
	"github.com/mholwell/metaline/internal/rules"
	"github.com/mholwell/metaline/internal/storage"
)

func analyzeCmd() *cobra.Command {
	var (
		tournamentsPath string
		outputPath      string
		snapshot        bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full metagame analysis over a tournament file",
		Long: `Classify every deck in the tournament file against the configured rule
set and compute the metagame report: per-archetype presence, win rates with
Wilson confidence intervals, tiers, diversity indices, and the matchup
matrix. The report is written as JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			tournaments, err := loadTournaments(tournamentsPath)
			if err != nil {
				return err
			}

			repo, err := rules.Load(cfg.Rules.Dir, cfg.Rules.Format, slog.Default())
			if err != nil {
				return err
			}
			p, err := pipeline.New(repo, cfg, slog.Default())
			if err != nil {
				return err
			}

			report, err := p.Run(cmd.Context(), tournaments)
			if err != nil {
				return err
			}

			if snapshot && cfg.Snapshot.Enabled {
				db, err := storage.Open(storage.DefaultConfig(cfg.Snapshot.Path))
				if err != nil {
					return err
				}
				defer func() { _ = db.Close() }()
				id, err := db.SaveReport(cmd.Context(), report)
				if err != nil {
					return err
				}
				slog.Info("saved snapshot", "id", id, "path", cfg.Snapshot.Path)
			}

			return writeReport(report, outputPath)
		},
	}

	cmd.Flags().StringVarP(&tournamentsPath, "tournaments", "t", "", "tournament records JSON file (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "report output path (default: stdout)")
	cmd.Flags().BoolVar(&snapshot, "snapshot", true, "store a snapshot when snapshot persistence is enabled")
	_ = cmd.MarkFlagRequired("tournaments")

	return cmd
}

func loadTournaments(path string) ([]model.Tournament, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tournaments file: %w", err)
	}
	var tournaments []model.Tournament
	if err := json.Unmarshal(data, &tournaments); err != nil {
		return nil, fmt.Errorf("parse tournaments file: %w", err)
	}
	return tournaments, nil
}

func writeReport(report *pipeline.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
