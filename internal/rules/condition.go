package rules

import "fmt"

// ConditionType identifies one of the twelve condition kinds a rule file may
// use. Conditions are data, not code: the evaluator dispatches on this tag.
type ConditionType string

// The twelve condition kinds, grouped by quantifier and board scope.
const (
	// Every referenced card must appear at least once.
	InMainboard       ConditionType = "InMainboard"
	InSideboard       ConditionType = "InSideboard"
	InMainOrSideboard ConditionType = "InMainOrSideboard"

	// At least one referenced card appears at least once.
	OneOrMoreInMainboard       ConditionType = "OneOrMoreInMainboard"
	OneOrMoreInSideboard       ConditionType = "OneOrMoreInSideboard"
	OneOrMoreInMainOrSideboard ConditionType = "OneOrMoreInMainOrSideboard"

	// At least two distinct referenced cards each appear at least once.
	TwoOrMoreInMainboard       ConditionType = "TwoOrMoreInMainboard"
	TwoOrMoreInSideboard       ConditionType = "TwoOrMoreInSideboard"
	TwoOrMoreInMainOrSideboard ConditionType = "TwoOrMoreInMainOrSideboard"

	// None of the referenced cards appear in the scoped board(s).
	// DoesNotContain scopes both boards.
	DoesNotContain          ConditionType = "DoesNotContain"
	DoesNotContainMainboard ConditionType = "DoesNotContainMainboard"
	DoesNotContainSideboard ConditionType = "DoesNotContainSideboard"
)

// AllConditionTypes lists every valid condition type.
var AllConditionTypes = []ConditionType{
	InMainboard, InSideboard, InMainOrSideboard,
	OneOrMoreInMainboard, OneOrMoreInSideboard, OneOrMoreInMainOrSideboard,
	TwoOrMoreInMainboard, TwoOrMoreInSideboard, TwoOrMoreInMainOrSideboard,
	DoesNotContain, DoesNotContainMainboard, DoesNotContainSideboard,
}

// Valid reports whether t is one of the known condition types.
func (t ConditionType) Valid() bool {
	for _, known := range AllConditionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Condition is a single structural predicate over a deck's card lists.
// Immutable once loaded.
type Condition struct {
	Type  ConditionType `json:"type"`
	Cards []string      `json:"cards"`
}

// Validate checks that the condition references a known type and at least one card.
func (c *Condition) Validate() error {
	if !c.Type.Valid() {
		return fmt.Errorf("unknown condition type %q", c.Type)
	}
	if len(c.Cards) == 0 {
		return fmt.Errorf("condition %s references no cards", c.Type)
	}
	for _, card := range c.Cards {
		if card == "" {
			return fmt.Errorf("condition %s references an empty card name", c.Type)
		}
	}
	return nil
}
