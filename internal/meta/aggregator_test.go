package meta

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func deck(player, arch string, wins, losses, draws int) ClassifiedDeck {
	return ClassifiedDeck{
		Player:    player,
		Archetype: arch,
		Method:    "rule-match",
		Wins:      wins,
		Losses:    losses,
		Draws:     draws,
	}
}

func TestWinRate(t *testing.T) {
	tests := []struct {
		name         string
		wins, losses int
		want         float64
	}{
		{"even record", 5, 5, 50.0},
		{"undefeated", 7, 0, 100.0},
		{"winless", 0, 4, 0.0},
		{"six and one", 6, 1, 600.0 / 7},
		{"no decided matches", 0, 0, 50.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WinRate(tt.wins, tt.losses); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("WinRate(%d, %d) = %v, want %v", tt.wins, tt.losses, got, tt.want)
			}
		})
	}
}

func TestAggregateBasic(t *testing.T) {
	decks := []ClassifiedDeck{
		deck("alice", "Burn", 6, 1, 0),
		deck("bob", "Burn", 4, 3, 0),
		deck("carol", "Control", 3, 3, 1),
		deck("dave", "Midrange", 2, 5, 0),
	}
	agg := NewAggregator(DefaultConfig(), discardLogger())
	meta := agg.Aggregate(decks)

	assert.Equal(t, 4, meta.TotalDecks)
	assert.Equal(t, 4, meta.TotalPlayers)
	assert.Equal(t, 28, meta.TotalMatches)
	require.Len(t, meta.Archetypes, 3)

	// Burn has the most matches, so it leads the presence order.
	burn := meta.Archetypes[0]
	require.Equal(t, "Burn", burn.Name)
	assert.Equal(t, 2, burn.Copies)
	assert.Equal(t, 2, burn.Players)
	assert.Equal(t, 14, burn.Matches)
	assert.InDelta(t, 50.0, burn.Presence, 1e-9)
	assert.InDelta(t, 1000.0/14, burn.WinRate, 1e-9)

	// Presence shares cover the whole population.
	sum := 0.0
	for _, row := range meta.Archetypes {
		sum += row.Presence
		assert.LessOrEqual(t, row.CI.Lower, row.CI.Upper, "%s interval inverted", row.Name)
		assert.GreaterOrEqual(t, row.CI.Lower, 0.0)
		assert.LessOrEqual(t, row.CI.Upper, 100.0)
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestAggregateDrawsExcludedFromWinRate(t *testing.T) {
	decks := []ClassifiedDeck{
		deck("alice", "Control", 3, 1, 4),
	}
	agg := NewAggregator(DefaultConfig(), discardLogger())
	meta := agg.Aggregate(decks)

	row := meta.Archetypes[0]
	// 3-1-4: draws pad matches and presence but not the win rate.
	assert.Equal(t, 8, row.Matches)
	assert.InDelta(t, 75.0, row.WinRate, 1e-9)
}

func TestAggregateAllDrawsNeutralWinRate(t *testing.T) {
	decks := []ClassifiedDeck{
		deck("alice", "Turbo Fog", 0, 0, 5),
	}
	agg := NewAggregator(DefaultConfig(), discardLogger())
	meta := agg.Aggregate(decks)

	row := meta.Archetypes[0]
	assert.Equal(t, 50.0, row.WinRate)
	// Zero decided matches gives the maximal interval.
	assert.Equal(t, 0.0, row.CI.Lower)
	assert.Equal(t, 100.0, row.CI.Upper)
}

func TestAggregateMeasures(t *testing.T) {
	// Two players both on Burn with few matches, one on Control with many.
	decks := []ClassifiedDeck{
		deck("alice", "Burn", 1, 1, 0),
		deck("bob", "Burn", 1, 1, 0),
		deck("carol", "Control", 8, 4, 0),
	}

	tests := []struct {
		measure      PresenceMeasure
		wantBurn     float64
		wantControl  float64
	}{
		{ByMatches, 25.0, 75.0},
		{ByCopies, 200.0 / 3, 100.0 / 3},
		{ByPlayers, 200.0 / 3, 100.0 / 3},
	}
	for _, tt := range tests {
		t.Run(string(tt.measure), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Measure = tt.measure
			meta := NewAggregator(cfg, discardLogger()).Aggregate(decks)

			byName := make(map[string]float64)
			for _, row := range meta.Archetypes {
				byName[row.Name] = row.Presence
			}
			assert.InDelta(t, tt.wantBurn, byName["Burn"], 1e-9)
			assert.InDelta(t, tt.wantControl, byName["Control"], 1e-9)
		})
	}
}

func TestAggregateRepeatPlayerCountedOnce(t *testing.T) {
	decks := []ClassifiedDeck{
		deck("alice", "Burn", 3, 2, 0),
		deck("alice", "Burn", 4, 1, 0),
		deck("bob", "Control", 2, 3, 0),
	}
	meta := NewAggregator(DefaultConfig(), discardLogger()).Aggregate(decks)

	assert.Equal(t, 2, meta.TotalPlayers)
	for _, row := range meta.Archetypes {
		if row.Name == "Burn" {
			assert.Equal(t, 1, row.Players)
			assert.Equal(t, 2, row.Copies)
		}
	}
}

func TestAggregateCutoffScoring(t *testing.T) {
	// Three archetypes above the cutoff and one fringe deck below it.
	decks := []ClassifiedDeck{
		deck("p1", "Burn", 12, 4, 0),
		deck("p2", "Burn", 10, 6, 0),
		deck("p3", "Control", 9, 7, 0),
		deck("p4", "Control", 8, 8, 0),
		deck("p5", "Midrange", 7, 9, 0),
		deck("p6", "Midrange", 6, 10, 0),
		deck("p7", "Mill", 0, 1, 0),
	}
	cfg := DefaultConfig()
	cfg.PresenceCutoff = 2.0
	cfg.Clusters.K = 2
	meta := NewAggregator(cfg, discardLogger()).Aggregate(decks)

	for _, row := range meta.Archetypes {
		if row.Name == "Mill" {
			assert.False(t, row.AboveCutoff)
			assert.Empty(t, row.Tier, "below-cutoff rows get no tier")
			assert.Equal(t, -1, row.Cluster)
			assert.Zero(t, row.Score)
			continue
		}
		assert.True(t, row.AboveCutoff, "%s should clear the cutoff", row.Name)
		assert.NotEmpty(t, row.Tier)
		assert.GreaterOrEqual(t, row.Cluster, 0)
		assert.InDelta(t, row.NormalizedPresence+row.NormalizedWinRate, row.Score, 1e-12)
		assert.GreaterOrEqual(t, row.NormalizedPresence, 0.0)
		assert.LessOrEqual(t, row.NormalizedPresence, 1.0)
	}
}

func TestAggregateSortStable(t *testing.T) {
	// Equal presence resolves by name.
	decks := []ClassifiedDeck{
		deck("a", "Zoo", 2, 2, 0),
		deck("b", "Affinity", 2, 2, 0),
	}
	meta := NewAggregator(DefaultConfig(), discardLogger()).Aggregate(decks)
	require.Len(t, meta.Archetypes, 2)
	assert.Equal(t, "Affinity", meta.Archetypes[0].Name)
	assert.Equal(t, "Zoo", meta.Archetypes[1].Name)
}

func TestAggregateEmpty(t *testing.T) {
	meta := NewAggregator(DefaultConfig(), discardLogger()).Aggregate(nil)
	assert.Empty(t, meta.Archetypes)
	assert.Zero(t, meta.TotalDecks)
	assert.Zero(t, meta.Diversity.ArchetypeCount)
}
