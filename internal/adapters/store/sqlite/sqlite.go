// Package sqlite persists profiles and reading history in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/plootony/MISTY/internal/domain"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements ports.ProfileStore and ports.ReadingStore.
type Store struct {
	db *sql.DB

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// Open opens or creates a SQLite database at the given path.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) newID(t time.Time) string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL DEFAULT '',
		birth       TEXT NOT NULL DEFAULT '',
		tariff      TEXT NOT NULL DEFAULT 'free',
		updated_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS readings (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		question       TEXT NOT NULL,
		spread_type    TEXT NOT NULL,
		spread_name    TEXT NOT NULL,
		cards          TEXT NOT NULL,
		interpretation TEXT NOT NULL,
		created_at     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_readings_user_created ON readings(user_id, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile
	var updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, birth, tariff, updated_at FROM profiles WHERE id = ?`, userID,
	).Scan(&p.UserID, &p.Name, &p.BirthDate, &p.Tariff, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("query profile: %w", err)
	}
	p.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	if p.Tariff == "" {
		p.Tariff = domain.DefaultTariff
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, birth, tariff, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			birth = excluded.birth,
			tariff = excluded.tariff,
			updated_at = excluded.updated_at`,
		p.UserID, p.Name, p.BirthDate, p.Tariff, p.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return p, nil
}

func (s *Store) SaveReading(ctx context.Context, r domain.Reading) (domain.Reading, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.ID = s.newID(r.CreatedAt)

	cards, err := json.Marshal(r.Cards)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("marshal cards: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO readings (id, user_id, question, spread_type, spread_name, cards, interpretation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Question, r.SpreadID, r.SpreadName, string(cards), r.Interpretation,
		r.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("insert reading: %w", err)
	}
	return r, nil
}

// ListReadings returns a page of the user's readings, newest first.
func (s *Store) ListReadings(ctx context.Context, userID string, limit, offset int) ([]domain.Reading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, question, spread_type, spread_name, cards, interpretation, created_at
		FROM readings
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	var out []domain.Reading
	for rows.Next() {
		var r domain.Reading
		var cards, created string
		if err := rows.Scan(&r.ID, &r.UserID, &r.Question, &r.SpreadID, &r.SpreadName, &cards, &r.Interpretation, &created); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		if err := json.Unmarshal([]byte(cards), &r.Cards); err != nil {
			return nil, fmt.Errorf("decode cards of %s: %w", r.ID, err)
		}
		r.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, r)
	}
	return out, rows.Err()
}
