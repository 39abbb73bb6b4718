package archetype

import (
	"math"
	"strings"
	"sync/atomic"

	"github.com/mholwell/metaline/internal/rules"
)

// Color constants for WUBRG
const (
	ColorWhite = "W"
	ColorBlue  = "U"
	ColorBlack = "B"
	ColorRed   = "R"
	ColorGreen = "G"
)

// AllColors lists all five colors in WUBRG order.
var AllColors = []string{ColorWhite, ColorBlue, ColorBlack, ColorRed, ColorGreen}

// colorNames maps single colors to their full names.
var colorNames = map[string]string{
	ColorWhite: "White",
	ColorBlue:  "Blue",
	ColorBlack: "Black",
	ColorRed:   "Red",
	ColorGreen: "Green",
}

// guildNames maps the ten two-color combinations (WUBRG ordering) to their
// guild names.
var guildNames = map[string]string{
	"WU": "Azorius",
	"WB": "Orzhov",
	"WR": "Boros",
	"WG": "Selesnya",
	"UB": "Dimir",
	"UR": "Izzet",
	"UG": "Simic",
	"BR": "Rakdos",
	"BG": "Golgari",
	"RG": "Gruul",
}

// triColorNames maps the ten three-color combinations (WUBRG ordering) to
// their shard and wedge names.
var triColorNames = map[string]string{
	"WUB": "Esper",
	"WUR": "Jeskai",
	"WUG": "Bant",
	"WBR": "Mardu",
	"WBG": "Abzan",
	"WRG": "Naya",
	"UBR": "Grixis",
	"UBG": "Sultai",
	"URG": "Temur",
	"BRG": "Jund",
}

// ColorConfig controls when a color counts as present in a deck.
// A color is present when its aggregate mainboard count reaches
// max(MinCount, ceil(MinFraction * mainboard size)).
type ColorConfig struct {
	MinCount    int
	MinFraction float64
}

// DefaultColorConfig returns the standard thresholds.
func DefaultColorConfig() ColorConfig {
	return ColorConfig{
		MinCount:    3,
		MinFraction: 0.10,
	}
}

// ColorDetector aggregates per-card color identities into a deck-level color
// signature. Unknown cards contribute nothing; they are counted as a data
// quality signal, never treated as an error.
type ColorDetector struct {
	table        rules.ColorTable
	config       ColorConfig
	unknownCards atomic.Int64
}

// NewColorDetector creates a detector over a frozen color table.
func NewColorDetector(table rules.ColorTable, config ColorConfig) *ColorDetector {
	return &ColorDetector{table: table, config: config}
}

// Identity returns the deck's color identity as a WUBRG-ordered symbol
// string, e.g. "UR". Returns "" for colorless decks.
func (d *ColorDetector) Identity(mainboard map[string]int) string {
	counts := make(map[string]int, 5)
	deckSize := 0
	for card, qty := range mainboard {
		deckSize += qty
		identity, ok := d.table[card]
		if !ok {
			d.unknownCards.Add(1)
			continue
		}
		for _, symbol := range identity {
			counts[string(symbol)] += qty
		}
	}

	threshold := d.config.MinCount
	if scaled := int(math.Ceil(d.config.MinFraction * float64(deckSize))); scaled > threshold {
		threshold = scaled
	}

	var identity strings.Builder
	for _, color := range AllColors {
		if counts[color] >= threshold {
			identity.WriteString(color)
		}
	}
	return identity.String()
}

// Name returns the canonical name for the deck's detected colors: Colorless,
// a basic color name, a guild name, a shard or wedge name, or a catch-all
// multicolor label.
func (d *ColorDetector) Name(mainboard map[string]int) string {
	return ColorName(d.Identity(mainboard))
}

// UnknownCards returns how many card lookups missed the color table since the
// detector was created.
func (d *ColorDetector) UnknownCards() int64 {
	return d.unknownCards.Load()
}

// ColorName maps a WUBRG-ordered identity string to its canonical name.
func ColorName(identity string) string {
	switch len(identity) {
	case 0:
		return "Colorless"
	case 1:
		return colorNames[identity]
	case 2:
		return guildNames[identity]
	case 3:
		return triColorNames[identity]
	case 4:
		return "Four-Color"
	default:
		return "Five-Color"
	}
}
