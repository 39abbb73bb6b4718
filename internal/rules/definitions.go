package rules

import "fmt"

// Variant refines a parent archetype. It is evaluated only when the parent
// already matched; the first satisfied variant overrides the parent's name.
type Variant struct {
	Name               string      `json:"name"`
	IncludeColorInName bool        `json:"include_color_in_name"`
	Conditions         []Condition `json:"conditions"`
}

// ArchetypeDefinition names an archetype and the conditions a deck must all
// satisfy to belong to it. Definitions are evaluated in load order.
type ArchetypeDefinition struct {
	Name               string      `json:"name"`
	IncludeColorInName bool        `json:"include_color_in_name"`
	Conditions         []Condition `json:"conditions"`
	Variants           []Variant   `json:"variants,omitempty"`
}

// Validate checks the definition and every nested variant, returning an
// error that names the offending piece.
func (a *ArchetypeDefinition) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("archetype definition has no name")
	}
	for i := range a.Conditions {
		if err := a.Conditions[i].Validate(); err != nil {
			return fmt.Errorf("archetype %q: condition %d: %w", a.Name, i, err)
		}
	}
	for i := range a.Variants {
		v := &a.Variants[i]
		if v.Name == "" {
			return fmt.Errorf("archetype %q: variant %d has no name", a.Name, i)
		}
		if len(v.Conditions) == 0 {
			return fmt.Errorf("archetype %q: variant %q has no conditions", a.Name, v.Name)
		}
		for j := range v.Conditions {
			if err := v.Conditions[j].Validate(); err != nil {
				return fmt.Errorf("archetype %q: variant %q: condition %d: %w", a.Name, v.Name, j, err)
			}
		}
	}
	return nil
}

// FallbackDefinition is a looser, similarity-based archetype used when no
// strict rule matches. CommonCards is the curated reference core; similarity
// is the fraction of that core present in the deck
// (|distinct deck cards ∩ CommonCards| / |CommonCards|). Conditions, when
// present, gate the fallback before similarity is considered.
type FallbackDefinition struct {
	Name               string      `json:"name"`
	IncludeColorInName bool        `json:"include_color_in_name"`
	CommonCards        []string    `json:"common_cards"`
	Conditions         []Condition `json:"conditions,omitempty"`
}

// Validate checks the fallback definition.
func (f *FallbackDefinition) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("fallback definition has no name")
	}
	if len(f.CommonCards) == 0 {
		return fmt.Errorf("fallback %q has no common cards", f.Name)
	}
	for i := range f.Conditions {
		if err := f.Conditions[i].Validate(); err != nil {
			return fmt.Errorf("fallback %q: condition %d: %w", f.Name, i, err)
		}
	}
	return nil
}
