package meta

import (
	"log/slog"

	"github.com/mholwell/metaline/internal/stats"
)

// OtherArchetype is the fold-in row/column for archetypes outside the top N.
const OtherArchetype = "Other"

// MatchupCell aggregates every match one archetype played against another.
// Wins/Losses/Draws are from the row archetype's perspective, so the matrix
// is mirror-consistent: cell[A][B].Wins == cell[B][A].Losses.
type MatchupCell struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`

	WinRate float64        `json:"win_rate"`
	CI      stats.Interval `json:"ci"`

	// Mirror marks the diagonal: the matchup of an archetype against itself,
	// reported as a fixed 50%.
	Mirror bool `json:"mirror,omitempty"`

	// Insufficient marks cells whose sample is below the configured minimum;
	// their win rate is the neutral sentinel and the CI is maximal.
	Insufficient bool `json:"insufficient,omitempty"`
}

// Matches returns the cell's total sample size.
func (c *MatchupCell) Matches() int {
	return c.Wins + c.Losses + c.Draws
}

// MatchupMatrix is the pairwise win-rate table over the top archetypes plus
// an Other bucket.
type MatchupMatrix struct {
	// Archetypes lists the row/column order: top N by presence, then Other
	// when any deck fell outside the top N.
	Archetypes []string `json:"archetypes"`

	// Cells[row][col] aggregates row's matches against col. Pairs that never
	// met have no cell.
	Cells map[string]map[string]*MatchupCell `json:"cells"`
}

// Cell returns the cell for a vs b, or nil when they never met.
func (m *MatchupMatrix) Cell(a, b string) *MatchupCell {
	return m.Cells[a][b]
}

// MatchupConfig controls matrix construction.
type MatchupConfig struct {
	// TopN caps the number of named archetypes; the rest fold into Other.
	TopN int

	// MinSample is the minimum matches for a cell to report a measured win
	// rate rather than the insufficient-sample sentinel.
	MinSample int

	ConfidenceLevel float64
}

// DefaultMatchupConfig returns the standard matrix configuration.
func DefaultMatchupConfig() MatchupConfig {
	return MatchupConfig{
		TopN:            12,
		MinSample:       5,
		ConfidenceLevel: 0.95,
	}
}

// BuildMatchupMatrix aggregates round pairings across tournaments into a
// pairwise matrix over the top archetypes of the aggregated metagame. Each
// pairing counts as one match; the side with more game wins took it, equal
// game wins is a drawn match. Pairings naming a player without a classified
// deck (byes, data gaps) are skipped.
func BuildMatchupMatrix(tournaments []ClassifiedTournament, meta *Metagame, config MatchupConfig, logger *slog.Logger) *MatchupMatrix {
	if logger == nil {
		logger = slog.Default()
	}

	top := make(map[string]bool, config.TopN)
	var order []string
	for _, row := range meta.Archetypes {
		if len(order) >= config.TopN {
			break
		}
		top[row.Name] = true
		order = append(order, row.Name)
	}

	matrix := &MatchupMatrix{Cells: make(map[string]map[string]*MatchupCell)}
	folded := false
	skipped := 0

	for _, t := range tournaments {
		byPlayer := make(map[string]string, len(t.Decks))
		for i := range t.Decks {
			byPlayer[t.Decks[i].Player] = t.Decks[i].Archetype
		}
		for _, pairing := range t.Tournament.Pairings {
			archA, okA := byPlayer[pairing.PlayerA]
			archB, okB := byPlayer[pairing.PlayerB]
			if !okA || !okB {
				skipped++
				continue
			}
			if !top[archA] {
				archA = OtherArchetype
				folded = true
			}
			if !top[archB] {
				archB = OtherArchetype
				folded = true
			}

			cellAB := matrix.cell(archA, archB)
			cellBA := matrix.cell(archB, archA)
			switch {
			case pairing.GameWinsA > pairing.GameWinsB:
				cellAB.Wins++
				cellBA.Losses++
			case pairing.GameWinsB > pairing.GameWinsA:
				cellAB.Losses++
				cellBA.Wins++
			default:
				// Mirrors share one cell, so a drawn mirror counts twice,
				// matching the two-sided win/loss accounting above.
				cellAB.Draws++
				cellBA.Draws++
			}
		}
	}

	if folded {
		order = append(order, OtherArchetype)
	}
	matrix.Archetypes = order

	z := stats.ZForConfidence(config.ConfidenceLevel)
	for rowName, row := range matrix.Cells {
		for colName, cell := range row {
			finalizeCell(cell, rowName == colName, config.MinSample, z)
		}
	}

	if skipped > 0 {
		logger.Debug("skipped pairings without classified decks", "count", skipped)
	}
	return matrix
}

func (m *MatchupMatrix) cell(row, col string) *MatchupCell {
	cells := m.Cells[row]
	if cells == nil {
		cells = make(map[string]*MatchupCell)
		m.Cells[row] = cells
	}
	c := cells[col]
	if c == nil {
		c = &MatchupCell{}
		cells[col] = c
	}
	return c
}

func finalizeCell(cell *MatchupCell, mirror bool, minSample int, z float64) {
	cell.Mirror = mirror
	if cell.Matches() < minSample {
		cell.Insufficient = true
		cell.WinRate = 50.0
		cell.CI = stats.MaximalInterval
		return
	}
	if mirror {
		// A mirror match is definitionally even.
		cell.WinRate = 50.0
		cell.CI = stats.Interval{Lower: 50, Upper: 50}
		return
	}
	cell.WinRate = WinRate(cell.Wins, cell.Losses)
	cell.CI = stats.Wilson(cell.Wins, cell.Wins+cell.Losses, z)
}
