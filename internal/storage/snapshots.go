package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mholwell/metaline/internal/meta"
	"github.com/mholwell/metaline/internal/pipeline"
	"github.com/mholwell/metaline/internal/stats"
)

// Snapshot is a stored run summary.
type Snapshot struct {
	ID           int64
	Format       string
	GeneratedAt  time.Time
	TotalDecks   int
	TotalMatches int
	Diversity    stats.Diversity
}

// SaveReport stores a run report as a snapshot and returns its id.
func (db *DB) SaveReport(ctx context.Context, report *pipeline.Report) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (
			format, generated_at, total_decks, total_matches,
			shannon, simpson, effective_count, herfindahl, evenness
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.Format, report.GeneratedAt, report.TotalDecks, report.TotalMatches,
		report.Diversity.Shannon, report.Diversity.Simpson,
		report.Diversity.EffectiveCount, report.Diversity.Herfindahl,
		report.Diversity.Evenness,
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	snapshotID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_archetypes (
			snapshot_id, name, copies, players, matches, wins, losses, draws,
			presence, win_rate, ci_lower, ci_upper,
			normalized_presence, normalized_win_rate, score, tier, cluster
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare archetype insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range report.Archetypes {
		if _, err := stmt.ExecContext(ctx,
			snapshotID, row.Name, row.Copies, row.Players, row.Matches,
			row.Wins, row.Losses, row.Draws,
			row.Presence, row.WinRate, row.CI.Lower, row.CI.Upper,
			row.NormalizedPresence, row.NormalizedWinRate, row.Score,
			row.Tier, row.Cluster,
		); err != nil {
			return 0, fmt.Errorf("insert archetype %q: %w", row.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit snapshot: %w", err)
	}
	return snapshotID, nil
}

// ListSnapshots returns the stored snapshots for a format, newest first.
func (db *DB) ListSnapshots(ctx context.Context, format string, limit int) ([]*Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, format, generated_at, total_decks, total_matches,
		       shannon, simpson, effective_count, herfindahl, evenness
		FROM snapshots
		WHERE format = ?
		ORDER BY generated_at DESC
		LIMIT ?`, format, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshots []*Snapshot
	for rows.Next() {
		s := &Snapshot{}
		if err := rows.Scan(
			&s.ID, &s.Format, &s.GeneratedAt, &s.TotalDecks, &s.TotalMatches,
			&s.Diversity.Shannon, &s.Diversity.Simpson,
			&s.Diversity.EffectiveCount, &s.Diversity.Herfindahl,
			&s.Diversity.Evenness,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// SnapshotArchetypes returns the stored archetype rows of a snapshot,
// ordered by presence descending.
func (db *DB) SnapshotArchetypes(ctx context.Context, snapshotID int64) ([]*meta.ArchetypeStats, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT name, copies, players, matches, wins, losses, draws,
		       presence, win_rate, ci_lower, ci_upper,
		       normalized_presence, normalized_win_rate, score, tier, cluster
		FROM snapshot_archetypes
		WHERE snapshot_id = ?
		ORDER BY presence DESC, name ASC`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query snapshot archetypes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*meta.ArchetypeStats
	for rows.Next() {
		row := &meta.ArchetypeStats{}
		if err := rows.Scan(
			&row.Name, &row.Copies, &row.Players, &row.Matches,
			&row.Wins, &row.Losses, &row.Draws,
			&row.Presence, &row.WinRate, &row.CI.Lower, &row.CI.Upper,
			&row.NormalizedPresence, &row.NormalizedWinRate, &row.Score,
			&row.Tier, &row.Cluster,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot archetype: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, sql.ErrNoRows
	}
	return result, nil
}
