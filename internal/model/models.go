// Package model defines the input records consumed by the analysis pipeline:
// tournaments, deck lists, and per-round pairings. These are immutable inputs
// supplied by the data-collection side; everything derived from them is
// recomputed wholesale on each run.
package model

import (
	"fmt"
	"time"
)

// CardCount is a single entry in a deck list.
type CardCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Deck holds the mainboard and sideboard card lists of a single deck.
type Deck struct {
	Mainboard []CardCount `json:"mainboard"`
	Sideboard []CardCount `json:"sideboard"`
}

// MainboardCounts returns the mainboard as a card name to count map.
// Duplicate entries for the same card name are summed.
func (d *Deck) MainboardCounts() map[string]int {
	return countMap(d.Mainboard)
}

// SideboardCounts returns the sideboard as a card name to count map.
func (d *Deck) SideboardCounts() map[string]int {
	return countMap(d.Sideboard)
}

// MainboardSize returns the total number of mainboard cards including copies.
func (d *Deck) MainboardSize() int {
	total := 0
	for _, cc := range d.Mainboard {
		total += cc.Count
	}
	return total
}

func countMap(cards []CardCount) map[string]int {
	m := make(map[string]int, len(cards))
	for _, cc := range cards {
		m[cc.Name] += cc.Count
	}
	return m
}

// Validate checks deck list invariants: non-empty card names and positive counts.
func (d *Deck) Validate() error {
	for _, board := range [][]CardCount{d.Mainboard, d.Sideboard} {
		for _, cc := range board {
			if cc.Name == "" {
				return fmt.Errorf("deck contains a card entry with an empty name")
			}
			if cc.Count <= 0 {
				return fmt.Errorf("card %q has non-positive count %d", cc.Name, cc.Count)
			}
		}
	}
	return nil
}

// DeckResult is one player's deck and record in a tournament.
type DeckResult struct {
	Player string `json:"player"`
	Deck   Deck   `json:"deck"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Draws  int    `json:"draws"`
}

// Matches returns the total number of matches played, draws included.
func (r *DeckResult) Matches() int {
	return r.Wins + r.Losses + r.Draws
}

// Pairing is a single round pairing between two players. GameWinsA and
// GameWinsB are game counts within the match; the match result is derived by
// comparing them (equal counts is a drawn match).
type Pairing struct {
	PlayerA   string `json:"player_a"`
	PlayerB   string `json:"player_b"`
	GameWinsA int    `json:"game_wins_a"`
	GameWinsB int    `json:"game_wins_b"`
}

// Tournament is one event's worth of deck results and pairings.
type Tournament struct {
	Name     string       `json:"name"`
	Format   string       `json:"format"`
	Date     time.Time    `json:"date"`
	Decks    []DeckResult `json:"decks"`
	Pairings []Pairing    `json:"pairings,omitempty"`
}

// Validate checks tournament invariants and returns a descriptive error
// naming the offending deck when one fails.
func (t *Tournament) Validate() error {
	if t.Format == "" {
		return fmt.Errorf("tournament %q has no format", t.Name)
	}
	for i := range t.Decks {
		d := &t.Decks[i]
		if d.Wins < 0 || d.Losses < 0 || d.Draws < 0 {
			return fmt.Errorf("tournament %q: deck for player %q has a negative record", t.Name, d.Player)
		}
		if err := d.Deck.Validate(); err != nil {
			return fmt.Errorf("tournament %q: deck for player %q: %w", t.Name, d.Player, err)
		}
	}
	return nil
}
