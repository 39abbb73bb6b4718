package archetype

import (
	"github.com/mholwell/metaline/internal/rules"
)

// Matches evaluates a single condition against a deck's mainboard and
// sideboard count maps.
func Matches(c rules.Condition, mainboard, sideboard map[string]int) bool {
	switch c.Type {
	case rules.InMainboard:
		return containsAll(c.Cards, mainboard, nil)
	case rules.InSideboard:
		return containsAll(c.Cards, sideboard, nil)
	case rules.InMainOrSideboard:
		return containsAll(c.Cards, mainboard, sideboard)

	case rules.OneOrMoreInMainboard:
		return countDistinct(c.Cards, mainboard, nil) >= 1
	case rules.OneOrMoreInSideboard:
		return countDistinct(c.Cards, sideboard, nil) >= 1
	case rules.OneOrMoreInMainOrSideboard:
		return countDistinct(c.Cards, mainboard, sideboard) >= 1

	// Two distinct referenced cards, not two copies of one.
	case rules.TwoOrMoreInMainboard:
		return countDistinct(c.Cards, mainboard, nil) >= 2
	case rules.TwoOrMoreInSideboard:
		return countDistinct(c.Cards, sideboard, nil) >= 2
	case rules.TwoOrMoreInMainOrSideboard:
		return countDistinct(c.Cards, mainboard, sideboard) >= 2

	case rules.DoesNotContain:
		return countDistinct(c.Cards, mainboard, sideboard) == 0
	case rules.DoesNotContainMainboard:
		return countDistinct(c.Cards, mainboard, nil) == 0
	case rules.DoesNotContainSideboard:
		return countDistinct(c.Cards, sideboard, nil) == 0
	}
	// Unknown types are rejected at load time; an unloaded condition never matches.
	return false
}

// MatchesAll reports whether every condition holds (logical AND, short-circuit).
// An empty condition list is vacuously true.
func MatchesAll(conds []rules.Condition, mainboard, sideboard map[string]int) bool {
	for i := range conds {
		if !Matches(conds[i], mainboard, sideboard) {
			return false
		}
	}
	return true
}

func containsAll(cards []string, primary, secondary map[string]int) bool {
	for _, card := range cards {
		if primary[card] <= 0 && secondary[card] <= 0 {
			return false
		}
	}
	return true
}

func countDistinct(cards []string, primary, secondary map[string]int) int {
	distinct := 0
	for _, card := range cards {
		if primary[card] > 0 || secondary[card] > 0 {
			distinct++
		}
	}
	return distinct
}
