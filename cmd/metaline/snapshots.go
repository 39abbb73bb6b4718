package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mholwell/metaline/internal/config"
	"github.com/mholwell/metaline/internal/storage"
)

func snapshotsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List stored analysis snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			db, err := storage.Open(storage.DefaultConfig(cfg.Snapshot.Path))
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			snapshots, err := db.ListSnapshots(cmd.Context(), cfg.Rules.Format, limit)
			if err != nil {
				return err
			}
			if len(snapshots) == 0 {
				fmt.Println("no snapshots stored")
				return nil
			}
			for _, s := range snapshots {
				fmt.Printf("#%d  %s  %s  decks=%d matches=%d effective-archetypes=%.1f\n",
					s.ID, s.Format, s.GeneratedAt.Format("2006-01-02 15:04"),
					s.TotalDecks, s.TotalMatches, s.Diversity.EffectiveCount)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum snapshots to list")
	return cmd
}
