package stats

import "math"

// Diversity holds the population-level diversity indices over archetype
// shares.
type Diversity struct {
	// Shannon is -sum(p*ln p), bounded by [0, ln N].
	Shannon float64 `json:"shannon"`

	// Simpson is 1 - sum(p^2): the chance two random decks differ.
	Simpson float64 `json:"simpson"`

	// EffectiveCount is e^Shannon: the equivalent number of equally common
	// archetypes.
	EffectiveCount float64 `json:"effective_count"`

	// Herfindahl is sum(p^2), the concentration index.
	Herfindahl float64 `json:"herfindahl"`

	// Evenness is Shannon / ln(N) over the N archetypes with nonzero share.
	Evenness float64 `json:"evenness"`

	// ArchetypeCount is N, the number of archetypes with nonzero share.
	ArchetypeCount int `json:"archetype_count"`
}

// ComputeDiversity computes the diversity indices over the given shares.
// Shares may be percentages or fractions; they are renormalized to sum to 1.
// Zero and negative entries are ignored.
func ComputeDiversity(shares []float64) Diversity {
	total := 0.0
	n := 0
	for _, s := range shares {
		if s > 0 {
			total += s
			n++
		}
	}
	div := Diversity{ArchetypeCount: n}
	if n == 0 || total == 0 {
		return div
	}

	for _, s := range shares {
		if s <= 0 {
			continue
		}
		p := s / total
		div.Shannon -= p * math.Log(p)
		div.Herfindahl += p * p
	}
	div.Simpson = 1 - div.Herfindahl
	div.EffectiveCount = math.Exp(div.Shannon)
	if n > 1 {
		div.Evenness = div.Shannon / math.Log(float64(n))
	}
	return div
}
