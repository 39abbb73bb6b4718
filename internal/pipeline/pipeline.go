// Package pipeline runs one full analysis batch: parallel deck
// classification over a frozen rule set, then the sequential statistics
// passes over the complete classified population.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mholwell/metaline/internal/archetype"
	"github.com/mholwell/metaline/internal/config"
	"github.com/mholwell/metaline/internal/meta"
	"github.com/mholwell/metaline/internal/model"
	"github.com/mholwell/metaline/internal/rules"
	"github.com/mholwell/metaline/internal/stats"
)

// DeckClassification is one deck's classification in the report, with enough
// context to trace it back to its tournament entry.
type DeckClassification struct {
	Tournament string           `json:"tournament"`
	Player     string           `json:"player"`
	Archetype  string           `json:"archetype"`
	Method     archetype.Method `json:"method"`
	Confidence float64          `json:"confidence"`
}

// Report is the complete output of one analysis run.
type Report struct {
	Format      string    `json:"format"`
	GeneratedAt time.Time `json:"generated_at"`

	Decks      []DeckClassification   `json:"decks"`
	Archetypes []*meta.ArchetypeStats `json:"archetypes"`
	Diversity  stats.Diversity        `json:"diversity"`
	Matchups   *meta.MatchupMatrix    `json:"matchups"`

	TotalDecks       int   `json:"total_decks"`
	TotalMatches     int   `json:"total_matches"`
	UnknownCards     int64 `json:"unknown_cards"`
	TiersApproximate bool  `json:"tiers_approximate,omitempty"`
}

// Pipeline wires the classifier, aggregator, and matrix builder together.
type Pipeline struct {
	classifier *archetype.Classifier
	aggregator *meta.Aggregator
	matchups   meta.MatchupConfig
	format     string
	logger     *slog.Logger
}

// New builds a pipeline from a loaded rule repository and configuration.
func New(repo *rules.Repository, cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	classifier, err := archetype.NewClassifier(repo, cfg.ClassifierSettings(), logger)
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}
	return &Pipeline{
		classifier: classifier,
		aggregator: meta.NewAggregator(cfg.AggregatorSettings(), logger),
		matchups:   cfg.MatchupSettings(),
		format:     repo.Format,
		logger:     logger,
	}, nil
}

// Run classifies every deck and aggregates the population into a report.
// Classification is embarrassingly parallel: each deck is a pure function of
// (deck, rule set), and results land in pre-sized slices by index, so no
// synchronization is needed beyond the errgroup join. Aggregation then runs
// as a single sequential pass, since normalization and tiering need global
// statistics over the complete set.
func (p *Pipeline) Run(ctx context.Context, tournaments []model.Tournament) (*Report, error) {
	for i := range tournaments {
		if err := tournaments[i].Validate(); err != nil {
			return nil, err
		}
	}

	started := time.Now()
	classified := make([]meta.ClassifiedTournament, len(tournaments))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for ti := range tournaments {
		t := &tournaments[ti]
		classified[ti] = meta.ClassifiedTournament{
			Tournament: t,
			Decks:      make([]meta.ClassifiedDeck, len(t.Decks)),
		}
		for di := range t.Decks {
			ti, di := ti, di
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				deck := &tournaments[ti].Decks[di]
				result := p.classifier.Classify(&deck.Deck)
				classified[ti].Decks[di] = meta.ClassifiedDeck{
					Player:     deck.Player,
					Archetype:  result.DisplayName(),
					Method:     result.Method,
					Confidence: result.Confidence,
					Wins:       deck.Wins,
					Losses:     deck.Losses,
					Draws:      deck.Draws,
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classification: %w", err)
	}

	var allDecks []meta.ClassifiedDeck
	var deckRows []DeckClassification
	for ti := range classified {
		for di := range classified[ti].Decks {
			d := classified[ti].Decks[di]
			allDecks = append(allDecks, d)
			deckRows = append(deckRows, DeckClassification{
				Tournament: classified[ti].Tournament.Name,
				Player:     d.Player,
				Archetype:  d.Archetype,
				Method:     d.Method,
				Confidence: d.Confidence,
			})
		}
	}

	metagame := p.aggregator.Aggregate(allDecks)
	matrix := meta.BuildMatchupMatrix(classified, metagame, p.matchups, p.logger)

	p.logger.Info("analysis run complete",
		"format", p.format,
		"tournaments", len(tournaments),
		"decks", len(allDecks),
		"archetypes", len(metagame.Archetypes),
		"elapsed", time.Since(started))

	return &Report{
		Format:           p.format,
		GeneratedAt:      time.Now().UTC(),
		Decks:            deckRows,
		Archetypes:       metagame.Archetypes,
		Diversity:        metagame.Diversity,
		Matchups:         matrix,
		TotalDecks:       metagame.TotalDecks,
		TotalMatches:     metagame.TotalMatches,
		UnknownCards:     p.classifier.UnknownCards(),
		TiersApproximate: metagame.TiersApproximate,
	}, nil
}
