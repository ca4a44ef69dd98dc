package ports

import (
	"context"

	"github.com/plootony/MISTY/internal/domain"
)

// ProfileStore persists user profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
	UpsertProfile(ctx context.Context, p domain.Profile) (domain.Profile, error)
}

// ReadingStore persists reading history.
type ReadingStore interface {
	SaveReading(ctx context.Context, r domain.Reading) (domain.Reading, error)
	ListReadings(ctx context.Context, userID string, limit, offset int) ([]domain.Reading, error)
}
