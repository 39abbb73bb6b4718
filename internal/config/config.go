// Package config loads and validates the analysis configuration.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/mholwell/metaline/internal/archetype"
	"github.com/mholwell/metaline/internal/meta"
	"github.com/mholwell/metaline/internal/stats"
)

// Config represents the full analysis configuration. All values are read
// once at startup and passed down as immutable structs; no component reads
// configuration globally.
type Config struct {
	Rules      RulesConfig      `toml:"rules"`
	Classifier ClassifierConfig `toml:"classifier"`
	Metagame   MetagameConfig   `toml:"metagame"`
	Matchups   MatchupsConfig   `toml:"matchups"`
	Snapshot   SnapshotConfig   `toml:"snapshot"`
}

// RulesConfig locates the rule definitions.
type RulesConfig struct {
	Dir    string `toml:"dir"`    // Root of the rule file tree
	Format string `toml:"format"` // Format subdirectory to load
}

// ClassifierConfig contains classification settings.
type ClassifierConfig struct {
	ConflictMode     string  `toml:"conflict_mode"`     // "prefer-first" or "most-specific"
	MinSimilarity    float64 `toml:"min_similarity"`    // Fallback similarity floor (fraction)
	ColorMinCount    int     `toml:"color_min_count"`   // Absolute color presence floor
	ColorMinFraction float64 `toml:"color_min_fraction"` // Relative color presence floor
}

// MetagameConfig contains aggregation settings.
type MetagameConfig struct {
	PresenceMeasure   string  `toml:"presence_measure"`    // "matches", "players", or "copies"
	PresenceCutoff    float64 `toml:"presence_cutoff"`     // Percent, minimum presence for scoring
	ConfidenceLevel   float64 `toml:"confidence_level"`    // 0.90 or 0.95
	TierBucketWidth   float64 `toml:"tier_bucket_width"`   // In standard deviations
	MaxTierIterations int     `toml:"max_tier_iterations"` // Fixed-point bound
	ClusterCount      int     `toml:"cluster_count"`       // k for archetype clustering
}

// MatchupsConfig contains matchup matrix settings.
type MatchupsConfig struct {
	TopArchetypes int `toml:"top_archetypes"` // Named rows/columns before Other
	MinSample     int `toml:"min_sample"`     // Minimum matches per cell
}

// SnapshotConfig contains snapshot persistence settings.
type SnapshotConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // SQLite database path
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Rules: RulesConfig{
			Dir:    "rules",
			Format: "modern",
		},
		Classifier: ClassifierConfig{
			ConflictMode:     string(archetype.PreferFirst),
			MinSimilarity:    0.1,
			ColorMinCount:    3,
			ColorMinFraction: 0.10,
		},
		Metagame: MetagameConfig{
			PresenceMeasure:   string(meta.ByMatches),
			PresenceCutoff:    1.2,
			ConfidenceLevel:   0.95,
			TierBucketWidth:   1.0,
			MaxTierIterations: 10,
			ClusterCount:      3,
		},
		Matchups: MatchupsConfig{
			TopArchetypes: 12,
			MinSample:     5,
		},
		Snapshot: SnapshotConfig{
			Enabled: false,
			Path:    "metaline.db",
		},
	}
}

// Load loads the configuration from path. A missing file returns the
// default configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return config, nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if !archetype.ConflictMode(c.Classifier.ConflictMode).Valid() {
		return fmt.Errorf("unknown conflict mode %q", c.Classifier.ConflictMode)
	}
	if c.Classifier.MinSimilarity < 0 || c.Classifier.MinSimilarity > 1 {
		return fmt.Errorf("min similarity must be in [0,1], got %v", c.Classifier.MinSimilarity)
	}
	if !meta.PresenceMeasure(c.Metagame.PresenceMeasure).Valid() {
		return fmt.Errorf("unknown presence measure %q", c.Metagame.PresenceMeasure)
	}
	if c.Metagame.ConfidenceLevel != 0.90 && c.Metagame.ConfidenceLevel != 0.95 {
		return fmt.Errorf("confidence level must be 0.90 or 0.95, got %v", c.Metagame.ConfidenceLevel)
	}
	if c.Metagame.PresenceCutoff < 0 || c.Metagame.PresenceCutoff > 100 {
		return fmt.Errorf("presence cutoff must be a percentage, got %v", c.Metagame.PresenceCutoff)
	}
	if c.Metagame.TierBucketWidth <= 0 {
		return fmt.Errorf("tier bucket width must be positive, got %v", c.Metagame.TierBucketWidth)
	}
	if c.Matchups.TopArchetypes <= 0 {
		return fmt.Errorf("top archetypes must be positive, got %d", c.Matchups.TopArchetypes)
	}
	return nil
}

// ClassifierSettings translates the file values into the classifier's config.
func (c *Config) ClassifierSettings() archetype.Config {
	return archetype.Config{
		ConflictMode:  archetype.ConflictMode(c.Classifier.ConflictMode),
		MinSimilarity: c.Classifier.MinSimilarity,
		Color: archetype.ColorConfig{
			MinCount:    c.Classifier.ColorMinCount,
			MinFraction: c.Classifier.ColorMinFraction,
		},
	}
}

// AggregatorSettings translates the file values into the aggregator's config.
func (c *Config) AggregatorSettings() meta.Config {
	return meta.Config{
		Measure:         meta.PresenceMeasure(c.Metagame.PresenceMeasure),
		PresenceCutoff:  c.Metagame.PresenceCutoff,
		ConfidenceLevel: c.Metagame.ConfidenceLevel,
		Tiers: stats.TierConfig{
			BucketWidth:   c.Metagame.TierBucketWidth,
			MaxIterations: c.Metagame.MaxTierIterations,
		},
		Clusters: stats.ClusterConfig{
			K:             c.Metagame.ClusterCount,
			MaxIterations: stats.DefaultClusterConfig().MaxIterations,
		},
	}
}

// MatchupSettings translates the file values into the matrix builder's config.
func (c *Config) MatchupSettings() meta.MatchupConfig {
	return meta.MatchupConfig{
		TopN:            c.Matchups.TopArchetypes,
		MinSample:       c.Matchups.MinSample,
		ConfidenceLevel: c.Metagame.ConfidenceLevel,
	}
}
