// Package meta aggregates a classified deck population into per-archetype
// metagame statistics (presence, win rate, confidence intervals, normalized
// scores, tiers, clusters) and pairwise matchup matrices.
package meta

import (
	"log/slog"
	"sort"

	"github.com/mholwell/metaline/internal/archetype"
	"github.com/mholwell/metaline/internal/model"
	"github.com/mholwell/metaline/internal/stats"
)

// PresenceMeasure selects how an archetype's share of the metagame is counted.
type PresenceMeasure string

const (
	// ByMatches counts matches played (wins+losses+draws).
	ByMatches PresenceMeasure = "matches"

	// ByPlayers counts unique players.
	ByPlayers PresenceMeasure = "players"

	// ByCopies counts decks.
	ByCopies PresenceMeasure = "copies"
)

// Valid reports whether m is a known presence measure.
func (m PresenceMeasure) Valid() bool {
	return m == ByMatches || m == ByPlayers || m == ByCopies
}

// ClassifiedDeck pairs one deck's tournament record with its classification.
type ClassifiedDeck struct {
	Player    string             `json:"player"`
	Archetype string             `json:"archetype"`
	Method    archetype.Method   `json:"method"`
	Confidence float64           `json:"confidence"`
	Wins      int                `json:"wins"`
	Losses    int                `json:"losses"`
	Draws     int                `json:"draws"`
}

// ClassifiedTournament carries a tournament's pairings together with the
// archetype of each entrant, for matchup aggregation.
type ClassifiedTournament struct {
	Tournament *model.Tournament
	// Decks is parallel to Tournament.Decks.
	Decks []ClassifiedDeck
}

// ArchetypeStats is the full per-archetype statistics row. Recomputed
// wholesale on every aggregation pass.
type ArchetypeStats struct {
	Name    string `json:"name"`
	Copies  int    `json:"copies"`
	Players int    `json:"players"`
	Matches int    `json:"matches"`
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
	Draws   int    `json:"draws"`

	// Presence is the archetype's share of the population by the configured
	// measure, in percent.
	Presence float64 `json:"presence"`

	// WinRate is wins*100/(wins+losses). Draws are excluded from the
	// denominator on purpose, even though presence-by-matches includes them:
	// a drawn match tells us nothing about which deck was stronger. 50.0
	// when no decided matches exist.
	WinRate float64 `json:"win_rate"`

	// CI is the Wilson interval on the true win rate.
	CI stats.Interval `json:"ci"`

	// AboveCutoff marks archetypes above the minimum presence cutoff; only
	// those receive normalized scores, tiers, and clusters.
	AboveCutoff bool `json:"above_cutoff"`

	NormalizedPresence float64 `json:"normalized_presence"`
	NormalizedWinRate  float64 `json:"normalized_win_rate"`

	// Score is the composite NormalizedPresence + NormalizedWinRate.
	Score float64 `json:"score"`

	// Tier is the σ-bucket label derived from CI.Lower, or "Other".
	Tier string `json:"tier"`

	// Cluster is the k-means cluster id, -1 for below-cutoff archetypes.
	Cluster int `json:"cluster"`
}

// Config holds the aggregator's tunable values.
type Config struct {
	Measure         PresenceMeasure
	PresenceCutoff  float64 // percent
	ConfidenceLevel float64 // 0.90 or 0.95
	Tiers           stats.TierConfig
	Clusters        stats.ClusterConfig
}

// DefaultConfig returns the standard aggregation configuration.
func DefaultConfig() Config {
	return Config{
		Measure:         ByMatches,
		PresenceCutoff:  1.2,
		ConfidenceLevel: 0.95,
		Tiers:           stats.DefaultTierConfig(),
		Clusters:        stats.DefaultClusterConfig(),
	}
}

// Metagame is the aggregated view of one classified population.
type Metagame struct {
	// Archetypes is sorted by presence descending, name ascending.
	Archetypes []*ArchetypeStats `json:"archetypes"`

	TotalDecks   int `json:"total_decks"`
	TotalPlayers int `json:"total_players"`
	TotalMatches int `json:"total_matches"`

	Diversity stats.Diversity `json:"diversity"`

	// TiersApproximate is set when tier recomputation hit its iteration
	// bound before converging.
	TiersApproximate bool `json:"tiers_approximate,omitempty"`
}

// Aggregator reduces a classified population to metagame statistics. It must
// run over the complete population: normalization and tiering need global
// minima, maxima, and moments, so incremental aggregation is not supported.
type Aggregator struct {
	config Config
	logger *slog.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(config Config, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{config: config, logger: logger}
}

// Aggregate computes per-archetype statistics over the full classified deck
// population in a single sequential pass.
func (a *Aggregator) Aggregate(decks []ClassifiedDeck) *Metagame {
	byName := make(map[string]*ArchetypeStats)
	players := make(map[string]map[string]struct{})
	meta := &Metagame{}

	for i := range decks {
		d := &decks[i]
		row := byName[d.Archetype]
		if row == nil {
			row = &ArchetypeStats{Name: d.Archetype, Cluster: -1}
			byName[d.Archetype] = row
			players[d.Archetype] = make(map[string]struct{})
		}
		row.Copies++
		row.Wins += d.Wins
		row.Losses += d.Losses
		row.Draws += d.Draws
		row.Matches += d.Wins + d.Losses + d.Draws
		players[d.Archetype][d.Player] = struct{}{}

		meta.TotalDecks++
		meta.TotalMatches += d.Wins + d.Losses + d.Draws
	}

	allPlayers := make(map[string]struct{})
	for i := range decks {
		allPlayers[decks[i].Player] = struct{}{}
	}
	meta.TotalPlayers = len(allPlayers)

	z := stats.ZForConfidence(a.config.ConfidenceLevel)
	for name, row := range byName {
		row.Players = len(players[name])
		row.Presence = a.presence(row, meta)
		row.WinRate = WinRate(row.Wins, row.Losses)
		row.CI = stats.Wilson(row.Wins, row.Wins+row.Losses, z)
		row.AboveCutoff = row.Presence >= a.config.PresenceCutoff
		meta.Archetypes = append(meta.Archetypes, row)
	}

	sort.Slice(meta.Archetypes, func(i, j int) bool {
		if meta.Archetypes[i].Presence != meta.Archetypes[j].Presence {
			return meta.Archetypes[i].Presence > meta.Archetypes[j].Presence
		}
		return meta.Archetypes[i].Name < meta.Archetypes[j].Name
	})

	a.scoreCutoffPopulation(meta)

	shares := make([]float64, len(meta.Archetypes))
	for i, row := range meta.Archetypes {
		shares[i] = row.Presence
	}
	meta.Diversity = stats.ComputeDiversity(shares)

	a.logger.Info("aggregated metagame",
		"archetypes", len(meta.Archetypes),
		"decks", meta.TotalDecks,
		"matches", meta.TotalMatches,
		"effective_archetypes", meta.Diversity.EffectiveCount)

	return meta
}

// scoreCutoffPopulation computes normalized scores, tiers, and clusters over
// the archetypes above the presence cutoff.
func (a *Aggregator) scoreCutoffPopulation(meta *Metagame) {
	var cutoff []*ArchetypeStats
	for _, row := range meta.Archetypes {
		if row.AboveCutoff {
			cutoff = append(cutoff, row)
		}
	}
	if len(cutoff) == 0 {
		return
	}

	presences := make([]float64, len(cutoff))
	winRates := make([]float64, len(cutoff))
	lowerBounds := make([]float64, len(cutoff))
	features := make([][]float64, len(cutoff))
	for i, row := range cutoff {
		presences[i] = row.Presence
		winRates[i] = row.WinRate
		lowerBounds[i] = row.CI.Lower
		share := row.Presence / 100
		features[i] = []float64{share, row.WinRate, share * row.WinRate}
	}

	normPresence := stats.NormalizePresence(presences)
	normWinRate := stats.NormalizeLinear(winRates)
	tiers := stats.AssignTiers(lowerBounds, a.config.Tiers)
	clusters := stats.Cluster(features, a.config.Clusters)

	for i, row := range cutoff {
		row.NormalizedPresence = normPresence[i]
		row.NormalizedWinRate = normWinRate[i]
		row.Score = normPresence[i] + normWinRate[i]
		row.Tier = tiers.Labels[i]
		row.Cluster = clusters[i]
	}
	meta.TiersApproximate = tiers.Approximate
	if tiers.Approximate {
		a.logger.Warn("tier recomputation did not converge; using last assignment",
			"iterations", tiers.Iterations)
	}
}

// presence returns the archetype's share in percent by the configured measure.
func (a *Aggregator) presence(row *ArchetypeStats, meta *Metagame) float64 {
	var part, total int
	switch a.config.Measure {
	case ByPlayers:
		part, total = row.Players, meta.TotalPlayers
	case ByCopies:
		part, total = row.Copies, meta.TotalDecks
	default:
		part, total = row.Matches, meta.TotalMatches
	}
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

// WinRate returns wins*100/(wins+losses), or the neutral 50.0 when no
// decided matches exist. Draws are excluded by definition.
func WinRate(wins, losses int) float64 {
	decided := wins + losses
	if decided == 0 {
		return 50.0
	}
	return float64(wins) * 100 / float64(decided)
}
