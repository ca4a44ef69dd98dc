// Package decks serves the card decks compiled into the binary.
package decks

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/plootony/MISTY/internal/domain"
)

// DefaultDeckID is the deck readings are drawn from.
const DefaultDeckID = "major_arcana"

//go:embed data/*.json
var deckFS embed.FS

type deckSource struct {
	file string
	name string
}

var sources = map[string]deckSource{
	DefaultDeckID: {file: "data/major_arcana.json", name: "Старшие арканы"},
}

// EmbeddedStore decodes and checks every embedded deck on first use.
type EmbeddedStore struct {
	once  sync.Once
	decks map[string]domain.Deck
	err   error
}

func NewEmbeddedStore() *EmbeddedStore {
	return &EmbeddedStore{}
}

func (s *EmbeddedStore) load() {
	s.decks = make(map[string]domain.Deck, len(sources))
	for id, src := range sources {
		raw, err := deckFS.ReadFile(src.file)
		if err != nil {
			s.err = fmt.Errorf("read deck %s: %w", id, err)
			return
		}
		deck, err := decodeDeck(id, src.name, raw)
		if err != nil {
			s.err = err
			return
		}
		s.decks[id] = deck
	}
}

// GetDeck returns the deck with the given id. A broken embedded deck fails
// every call with the same error.
func (s *EmbeddedStore) GetDeck(_ context.Context, deckID string) (domain.Deck, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return domain.Deck{}, s.err
	}
	deck, ok := s.decks[deckID]
	if !ok {
		return domain.Deck{}, fmt.Errorf("%w: %s", domain.ErrDeckNotFound, deckID)
	}
	return deck, nil
}

// decodeDeck parses a JSON card list and rejects decks a spread could not be
// drawn from: empty ones, cards without an id, name or meanings, and repeated ids.
func decodeDeck(id, name string, raw []byte) (domain.Deck, error) {
	var cards []domain.Card
	if err := json.Unmarshal(raw, &cards); err != nil {
		return domain.Deck{}, fmt.Errorf("parse deck %s: %w", id, err)
	}
	if len(cards) == 0 {
		return domain.Deck{}, fmt.Errorf("deck %s: no cards", id)
	}

	seen := make(map[string]bool, len(cards))
	var errs []error
	for i, c := range cards {
		switch {
		case c.ID == "":
			errs = append(errs, fmt.Errorf("card #%d: missing id", i))
		case seen[c.ID]:
			errs = append(errs, fmt.Errorf("card %s: duplicate id", c.ID))
		case c.Name == "" || c.Upright == "" || c.Reversed == "":
			errs = append(errs, fmt.Errorf("card %s: missing name or meaning", c.ID))
		}
		seen[c.ID] = true
	}
	if len(errs) > 0 {
		return domain.Deck{}, fmt.Errorf("deck %s: %w", id, errors.Join(errs...))
	}
	return domain.Deck{ID: id, Name: name, Cards: cards}, nil
}
