// Package archetype classifies decks into named archetypes by interpreting
// declarative rule definitions: condition evaluation, variant and fallback
// resolution, and color identity detection. The classifier only reads a
// frozen rule repository, so one instance is safe to use from many
// goroutines at once.
package archetype

import (
	"fmt"
	"log/slog"

	"github.com/mholwell/metaline/internal/model"
	"github.com/mholwell/metaline/internal/rules"
)

// Unknown is the terminal archetype name for decks no rule or fallback matches.
const Unknown = "Unknown"

// Method describes how a classification was reached.
type Method string

// Classification methods.
const (
	MethodRule     Method = "rule-match"
	MethodVariant  Method = "variant"
	MethodFallback Method = "fallback"
	MethodUnknown  Method = "unknown"
)

// ConflictMode controls which archetype wins when several definitions match
// the same deck.
type ConflictMode string

const (
	// PreferFirst keeps the first matching definition in load order.
	PreferFirst ConflictMode = "prefer-first"

	// MostSpecific keeps the matching definition with the most top-level
	// conditions; ties keep load order.
	MostSpecific ConflictMode = "most-specific"
)

// Valid reports whether m is a known conflict mode.
func (m ConflictMode) Valid() bool {
	return m == PreferFirst || m == MostSpecific
}

// Config holds the classifier's tunable values.
type Config struct {
	// ConflictMode selects the winner when multiple definitions match.
	ConflictMode ConflictMode

	// MinSimilarity is the minimum fallback similarity, as a fraction of the
	// fallback's reference card set found in the deck.
	MinSimilarity float64

	// Color configures the color identity thresholds.
	Color ColorConfig
}

// DefaultConfig returns the standard classifier configuration.
func DefaultConfig() Config {
	return Config{
		ConflictMode:  PreferFirst,
		MinSimilarity: 0.1,
		Color:         DefaultColorConfig(),
	}
}

// Result is the classification of a single deck. Produced once; never mutated.
type Result struct {
	// Archetype is the matched archetype, variant, or fallback name, or
	// Unknown.
	Archetype string

	// Method records which stage produced the match.
	Method Method

	// Confidence is 1.0 for rule and variant matches, the similarity score
	// for fallback matches, and 0 for Unknown.
	Confidence float64

	// IncludeColorInName mirrors the matched definition's flag.
	IncludeColorInName bool

	// Color is the deck's canonical color name, detected regardless of the
	// matched definition.
	Color string
}

// DisplayName returns the archetype name, prefixed with the deck's color
// name when the matched definition asks for it.
func (r Result) DisplayName() string {
	if r.IncludeColorInName && r.Color != "" {
		return r.Color + " " + r.Archetype
	}
	return r.Archetype
}

// Classifier matches decks against a frozen rule repository.
type Classifier struct {
	repo   *rules.Repository
	colors *ColorDetector
	config Config
	logger *slog.Logger
}

// NewClassifier creates a classifier over a loaded repository.
func NewClassifier(repo *rules.Repository, config Config, logger *slog.Logger) (*Classifier, error) {
	if repo == nil {
		return nil, fmt.Errorf("rule repository cannot be nil")
	}
	if !config.ConflictMode.Valid() {
		return nil, fmt.Errorf("unknown conflict mode %q", config.ConflictMode)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		repo:   repo,
		colors: NewColorDetector(repo.Colors, config.Color),
		config: config,
		logger: logger,
	}, nil
}

// UnknownCards returns the number of color lookups that missed the card
// table across all classifications so far.
func (c *Classifier) UnknownCards() int64 {
	return c.colors.UnknownCards()
}

// Classify runs the deck through the rule set: ordered archetype matching,
// variant refinement, fallback similarity, then Unknown. Deterministic for a
// given (deck, repository, config).
func (c *Classifier) Classify(deck *model.Deck) Result {
	mainboard := deck.MainboardCounts()
	sideboard := deck.SideboardCounts()
	color := c.colors.Name(mainboard)

	if def := c.matchArchetype(mainboard, sideboard); def != nil {
		name, method := def.Name, MethodRule
		for i := range def.Variants {
			if MatchesAll(def.Variants[i].Conditions, mainboard, sideboard) {
				name, method = def.Variants[i].Name, MethodVariant
				break
			}
		}
		return Result{
			Archetype:          name,
			Method:             method,
			Confidence:         1.0,
			IncludeColorInName: def.IncludeColorInName,
			Color:              color,
		}
	}

	if def, similarity := c.matchFallback(mainboard, sideboard); def != nil {
		return Result{
			Archetype:          def.Name,
			Method:             MethodFallback,
			Confidence:         similarity,
			IncludeColorInName: def.IncludeColorInName,
			Color:              color,
		}
	}

	return Result{
		Archetype: Unknown,
		Method:    MethodUnknown,
		Color:     color,
	}
}

// matchArchetype returns the winning archetype definition, or nil.
func (c *Classifier) matchArchetype(mainboard, sideboard map[string]int) *rules.ArchetypeDefinition {
	var best *rules.ArchetypeDefinition
	for i := range c.repo.Archetypes {
		def := &c.repo.Archetypes[i]
		if !MatchesAll(def.Conditions, mainboard, sideboard) {
			continue
		}
		if c.config.ConflictMode == PreferFirst {
			return def
		}
		if best == nil || len(def.Conditions) > len(best.Conditions) {
			best = def
		}
	}
	return best
}

// matchFallback returns the fallback with the highest similarity at or above
// the configured minimum, or nil. Gating conditions must hold before
// similarity is considered. Ties keep load order.
func (c *Classifier) matchFallback(mainboard, sideboard map[string]int) (*rules.FallbackDefinition, float64) {
	var best *rules.FallbackDefinition
	bestScore := 0.0
	for i := range c.repo.Fallbacks {
		def := &c.repo.Fallbacks[i]
		if !MatchesAll(def.Conditions, mainboard, sideboard) {
			continue
		}
		score := similarity(def.CommonCards, mainboard, sideboard)
		if score < c.config.MinSimilarity {
			continue
		}
		if best == nil || score > bestScore {
			best, bestScore = def, score
		}
	}
	return best, bestScore
}

// similarity is the fraction of the reference card set present in the deck:
// |distinct deck cards ∩ reference| / |reference|. Chosen over Jaccard so a
// deck is not punished for playing cards outside the reference core.
func similarity(reference []string, mainboard, sideboard map[string]int) float64 {
	if len(reference) == 0 {
		return 0
	}
	present := 0
	for _, card := range reference {
		if mainboard[card] > 0 || sideboard[card] > 0 {
			present++
		}
	}
	return float64(present) / float64(len(reference))
}
