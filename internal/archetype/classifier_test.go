package archetype

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/mholwell/metaline/internal/model"
	"github.com/mholwell/metaline/internal/rules"
)

func testRepository() *rules.Repository {
	return &rules.Repository{
		Format: "modern",
		Archetypes: []rules.ArchetypeDefinition{
			{
				Name: "Burn",
				Conditions: []rules.Condition{
					{Type: rules.InMainboard, Cards: []string{"Lightning Bolt"}},
				},
				Variants: []rules.Variant{
					{
						Name: "Prowess Burn",
						Conditions: []rules.Condition{
							{Type: rules.InMainboard, Cards: []string{"Monastery Swiftspear"}},
						},
					},
				},
			},
			{
				Name:               "Control",
				IncludeColorInName: true,
				Conditions: []rules.Condition{
					{Type: rules.InMainboard, Cards: []string{"Counterspell"}},
					{Type: rules.DoesNotContain, Cards: []string{"Lightning Bolt"}},
				},
			},
		},
		Fallbacks: []rules.FallbackDefinition{
			{
				Name:        "Generic Midrange",
				CommonCards: []string{"Thoughtseize", "Fatal Push", "Liliana of the Veil", "Tarmogoyf"},
			},
		},
		Colors: rules.ColorTable{
			"Lightning Bolt":       "R",
			"Monastery Swiftspear": "R",
			"Counterspell":         "U",
			"Thoughtseize":         "B",
			"Fatal Push":           "B",
		},
	}
}

func newTestClassifier(t *testing.T, config Config) *Classifier {
	t.Helper()
	c, err := NewClassifier(testRepository(), config, slog.Default())
	if err != nil {
		t.Fatalf("NewClassifier() error: %v", err)
	}
	return c
}

func deckOf(cards ...model.CardCount) *model.Deck {
	return &model.Deck{Mainboard: cards}
}

func TestClassifyRuleMatch(t *testing.T) {
	c := newTestClassifier(t, DefaultConfig())

	deck := deckOf(
		model.CardCount{Name: "Lightning Bolt", Count: 4},
		model.CardCount{Name: "Mountain", Count: 20},
	)
	result := c.Classify(deck)

	if result.Archetype != "Burn" {
		t.Errorf("Archetype = %q, want Burn", result.Archetype)
	}
	if result.Method != MethodRule {
		t.Errorf("Method = %q, want %q", result.Method, MethodRule)
	}
	if result.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", result.Confidence)
	}
	if result.DisplayName() != "Burn" {
		t.Errorf("DisplayName() = %q, want Burn (no color flag)", result.DisplayName())
	}
}

func TestClassifyVariantOverridesName(t *testing.T) {
	c := newTestClassifier(t, DefaultConfig())

	deck := deckOf(
		model.CardCount{Name: "Lightning Bolt", Count: 4},
		model.CardCount{Name: "Monastery Swiftspear", Count: 4},
		model.CardCount{Name: "Mountain", Count: 18},
	)
	result := c.Classify(deck)

	if result.Archetype != "Prowess Burn" {
		t.Errorf("Archetype = %q, want Prowess Burn", result.Archetype)
	}
	if result.Method != MethodVariant {
		t.Errorf("Method = %q, want %q", result.Method, MethodVariant)
	}
	// The variant keeps the parent's color flag.
	if result.IncludeColorInName {
		t.Error("IncludeColorInName should come from the parent definition")
	}
}

func TestClassifyColorPrefixedName(t *testing.T) {
	c := newTestClassifier(t, DefaultConfig())

	deck := deckOf(
		model.CardCount{Name: "Counterspell", Count: 4},
		model.CardCount{Name: "Island", Count: 20},
	)
	result := c.Classify(deck)

	if result.Archetype != "Control" {
		t.Fatalf("Archetype = %q, want Control", result.Archetype)
	}
	if result.Color != "Blue" {
		t.Errorf("Color = %q, want Blue", result.Color)
	}
	if got := result.DisplayName(); got != "Blue Control" {
		t.Errorf("DisplayName() = %q, want \"Blue Control\"", got)
	}
}

func TestClassifyFallback(t *testing.T) {
	c := newTestClassifier(t, DefaultConfig())

	deck := deckOf(
		model.CardCount{Name: "Thoughtseize", Count: 4},
		model.CardCount{Name: "Fatal Push", Count: 4},
		model.CardCount{Name: "Swamp", Count: 20},
	)
	result := c.Classify(deck)

	if result.Archetype != "Generic Midrange" {
		t.Errorf("Archetype = %q, want Generic Midrange", result.Archetype)
	}
	if result.Method != MethodFallback {
		t.Errorf("Method = %q, want %q", result.Method, MethodFallback)
	}
	// 2 of 4 reference cards present.
	if result.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", result.Confidence)
	}
}

func TestClassifyFallbackBelowThreshold(t *testing.T) {
	config := DefaultConfig()
	config.MinSimilarity = 0.6
	c := newTestClassifier(t, config)

	deck := deckOf(
		model.CardCount{Name: "Thoughtseize", Count: 4},
		model.CardCount{Name: "Fatal Push", Count: 4},
		model.CardCount{Name: "Swamp", Count: 20},
	)
	result := c.Classify(deck)

	if result.Method != MethodUnknown {
		t.Fatalf("Method = %q, want %q: similarity 0.5 is below the 0.6 floor", result.Method, MethodUnknown)
	}
}

func TestClassifyUnknown(t *testing.T) {
	c := newTestClassifier(t, DefaultConfig())

	deck := deckOf(model.CardCount{Name: "Storm Crow", Count: 60})
	result := c.Classify(deck)

	if result.Archetype != Unknown {
		t.Errorf("Archetype = %q, want %q", result.Archetype, Unknown)
	}
	if result.Method != MethodUnknown {
		t.Errorf("Method = %q, want %q", result.Method, MethodUnknown)
	}
	if result.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", result.Confidence)
	}
}

func TestClassifyConflictModes(t *testing.T) {
	repo := &rules.Repository{
		Format: "modern",
		Archetypes: []rules.ArchetypeDefinition{
			{
				Name: "Red Deck",
				Conditions: []rules.Condition{
					{Type: rules.InMainboard, Cards: []string{"Lightning Bolt"}},
				},
			},
			{
				Name: "Prowess",
				Conditions: []rules.Condition{
					{Type: rules.InMainboard, Cards: []string{"Lightning Bolt"}},
					{Type: rules.InMainboard, Cards: []string{"Monastery Swiftspear"}},
				},
			},
		},
		Colors: rules.ColorTable{},
	}

	deck := deckOf(
		model.CardCount{Name: "Lightning Bolt", Count: 4},
		model.CardCount{Name: "Monastery Swiftspear", Count: 4},
	)

	tests := []struct {
		mode ConflictMode
		want string
	}{
		{PreferFirst, "Red Deck"},
		{MostSpecific, "Prowess"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			config := DefaultConfig()
			config.ConflictMode = tt.mode
			c, err := NewClassifier(repo, config, slog.Default())
			if err != nil {
				t.Fatalf("NewClassifier() error: %v", err)
			}
			if got := c.Classify(deck).Archetype; got != tt.want {
				t.Errorf("Classify() with %s = %q, want %q", tt.mode, got, tt.want)
			}
		})
	}
}

func TestNewClassifierRejectsBadConfig(t *testing.T) {
	config := DefaultConfig()
	config.ConflictMode = "newest-first"
	if _, err := NewClassifier(testRepository(), config, slog.Default()); err == nil {
		t.Fatal("NewClassifier() should reject an unknown conflict mode")
	}
	if _, err := NewClassifier(nil, DefaultConfig(), slog.Default()); err == nil {
		t.Fatal("NewClassifier() should reject a nil repository")
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := newTestClassifier(t, DefaultConfig())
	deck := deckOf(
		model.CardCount{Name: "Lightning Bolt", Count: 4},
		model.CardCount{Name: "Monastery Swiftspear", Count: 4},
	)

	first := c.Classify(deck)
	for i := 0; i < 50; i++ {
		if got := c.Classify(deck); got != first {
			t.Fatalf("classification is not deterministic: %+v != %+v", got, first)
		}
	}
}

func TestClassifyConcurrent(t *testing.T) {
	c := newTestClassifier(t, DefaultConfig())
	decks := []*model.Deck{
		deckOf(model.CardCount{Name: "Lightning Bolt", Count: 4}),
		deckOf(model.CardCount{Name: "Counterspell", Count: 4}),
		deckOf(model.CardCount{Name: "Thoughtseize", Count: 4}, model.CardCount{Name: "Fatal Push", Count: 4}),
		deckOf(model.CardCount{Name: "Storm Crow", Count: 60}),
	}
	want := make([]Result, len(decks))
	for i, d := range decks {
		want[i] = c.Classify(d)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, d := range decks {
				if got := c.Classify(d); got != want[i] {
					t.Errorf("concurrent Classify() mismatch for deck %d", i)
				}
			}
		}()
	}
	wg.Wait()
}
