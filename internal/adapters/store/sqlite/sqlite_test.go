package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plootony/MISTY/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetProfile(ctx, "u1")
	require.True(t, errors.Is(err, domain.ErrProfileNotFound), "got %v", err)

	when := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err = s.UpsertProfile(ctx, domain.Profile{UserID: "u1", Name: "Антон", BirthDate: "03.06.1991", UpdatedAt: when})
	require.NoError(t, err)

	got, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Антон", got.Name)
	assert.Equal(t, "03.06.1991", got.BirthDate)
	assert.Equal(t, domain.DefaultTariff, got.Tariff)
	assert.True(t, got.UpdatedAt.Equal(when))

	_, err = s.UpsertProfile(ctx, domain.Profile{UserID: "u1", Name: "Антон", BirthDate: "03.06.1991", Tariff: "premium"})
	require.NoError(t, err)
	got, err = s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "premium", got.Tariff)
}

func TestReadingsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, q := range []string{"первый", "второй", "третий"} {
		r, err := s.SaveReading(ctx, domain.Reading{
			UserID:     "u1",
			Question:   q,
			SpreadID:   "one-card",
			SpreadName: "Одна карта",
			Cards: []domain.DrawnCard{{
				Card:         domain.Card{ID: "the-fool", Name: "Шут"},
				Position:     1,
				PositionName: "Совет",
				Reversed:     i%2 == 1,
			}},
			Interpretation: "толкование " + q,
			CreatedAt:      base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		assert.Len(t, r.ID, 26, "ULID")
	}
	_, err := s.SaveReading(ctx, domain.Reading{UserID: "u2", Question: "чужой", CreatedAt: base})
	require.NoError(t, err)

	got, err := s.ListReadings(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "третий", got[0].Question)
	assert.Equal(t, "первый", got[2].Question)
	require.Len(t, got[1].Cards, 1)
	assert.Equal(t, "Шут", got[1].Cards[0].Card.Name)
	assert.True(t, got[1].Cards[0].Reversed)
	assert.True(t, got[0].CreatedAt.Equal(base.Add(2*time.Hour)))

	page, err := s.ListReadings(ctx, "u1", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "второй", page[0].Question)

	empty, err := s.ListReadings(ctx, "nobody", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
