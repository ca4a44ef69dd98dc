package domain

import "fmt"

// DrawCards draws spread.CardsCount unique cards from deck using the provided RNG.
// Positions are 1-based and named after the spread. Orientation is 50/50.
func DrawCards(deck Deck, spread Spread, rng RNG) ([]DrawnCard, error) {
	n := spread.CardsCount
	if n < 1 || n > len(deck.Cards) {
		return nil, ErrInvalidCount
	}

	// Fisher-Yates shuffle over indices; the first n are drawn.
	indices := make([]int, len(deck.Cards))
	for i := range indices {
		indices[i] = i
	}
	for i := len(indices) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		indices[i], indices[j] = indices[j], indices[i]
	}

	cards := make([]DrawnCard, n)
	for i := range n {
		cards[i] = DrawnCard{
			Card:         deck.Cards[indices[i]],
			Position:     i + 1,
			PositionName: spread.PositionName(i + 1),
			Reversed:     rng.Intn(2) == 1,
		}
	}
	return cards, nil
}

// SelectCards places user-picked cards into the spread in the given order.
// reversed may be shorter than ids; missing entries mean upright.
func SelectCards(deck Deck, spread Spread, ids []string, reversed []bool) ([]DrawnCard, error) {
	if len(ids) == 0 {
		return nil, ErrInvalidCount
	}
	if len(ids) > spread.CardsCount {
		return nil, fmt.Errorf("%w: got %d, spread %q takes %d", ErrTooManyCards, len(ids), spread.ID, spread.CardsCount)
	}

	seen := make(map[string]bool, len(ids))
	cards := make([]DrawnCard, 0, len(ids))
	for i, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, id)
		}
		seen[id] = true

		card, ok := deck.Find(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrCardNotFound, id)
		}
		cards = append(cards, DrawnCard{
			Card:         card,
			Position:     i + 1,
			PositionName: spread.PositionName(i + 1),
			Reversed:     i < len(reversed) && reversed[i],
		})
	}
	return cards, nil
}
