package ports

import (
	"context"

	"github.com/plootony/MISTY/internal/domain"
)

// DeckStore provides access to tarot decks.
type DeckStore interface {
	GetDeck(ctx context.Context, deckID string) (domain.Deck, error)
}

// Catalog lists the spreads and the tariffs that unlock them.
type Catalog interface {
	Spreads() []domain.Spread
	Spread(id string) (domain.Spread, error)
	Tariff(id string) (domain.Tariff, error)
}
