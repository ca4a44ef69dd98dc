package domain

import "time"

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// Arcana is the tier a card belongs to.
type Arcana string

const (
	MajorArcana Arcana = "major"
	MinorArcana Arcana = "minor"
)

// Card represents a single tarot card in a deck.
type Card struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Number   int    `json:"number"`
	Arcana   Arcana `json:"arcana"`
	Upright  string `json:"upright"`
	Reversed string `json:"reversed"`
}

// Meaning returns the upright or reversed meaning.
func (c Card) Meaning(reversed bool) string {
	if reversed {
		return c.Reversed
	}
	return c.Upright
}

// Deck is a collection of tarot cards.
type Deck struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cards []Card `json:"cards"`
}

// Find returns the card with the given id.
func (d Deck) Find(id string) (Card, bool) {
	for _, c := range d.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// Position is a named slot in a spread.
type Position struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Spread is a named arrangement of positions with a fixed card count.
type Spread struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	CardsCount  int        `json:"cards_count" yaml:"cards_count"`
	Positions   []Position `json:"positions" yaml:"positions"`
}

// PositionName returns the name of the 1-based position i, or "" when out of range.
func (s Spread) PositionName(i int) string {
	if i >= 1 && i <= len(s.Positions) {
		return s.Positions[i-1].Name
	}
	return ""
}

// DrawnCard is a card placed in a spread position.
type DrawnCard struct {
	Card         Card   `json:"card"`
	Position     int    `json:"position"`
	PositionName string `json:"position_name"`
	Reversed     bool   `json:"reversed"`
}

// Meaning returns the meaning matching the card's orientation.
func (d DrawnCard) Meaning() string {
	return d.Card.Meaning(d.Reversed)
}

// Tariff is a subscription tier gating which spreads a user may access.
type Tariff struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Spreads []string `json:"spreads" yaml:"spreads"`
}

// Allows reports whether the tariff unlocks the spread.
func (t Tariff) Allows(spreadID string) bool {
	for _, id := range t.Spreads {
		if id == spreadID {
			return true
		}
	}
	return false
}

// DefaultTariff is assigned to profiles created without one.
const DefaultTariff = "free"

// Profile is the per-user data a reading can be personalized with.
type Profile struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	BirthDate string    `json:"birth_date"`
	Tariff    string    `json:"tariff"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NeedsSetup reports whether the profile is missing a name or birth date.
func (p Profile) NeedsSetup() bool {
	return p.Name == "" || p.BirthDate == ""
}

// Reading aggregates a question, the spread, drawn cards and the interpretation.
type Reading struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	Question       string      `json:"question"`
	SpreadID       string      `json:"spread_id"`
	SpreadName     string      `json:"spread_name"`
	Cards          []DrawnCard `json:"cards"`
	Interpretation string      `json:"interpretation"`
	CreatedAt      time.Time   `json:"created_at"`
}

// ValidationResult is the outcome of classifying a question.
// Reason and Suggestion are nil unless the provider supplied them.
type ValidationResult struct {
	IsValid    bool    `json:"isValid"`
	Reason     *string `json:"reason"`
	Suggestion *string `json:"suggestion"`
	Error      string  `json:"error,omitempty"`
}
