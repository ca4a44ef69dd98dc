package app_test

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/plootony/MISTY/internal/app"
	"github.com/plootony/MISTY/internal/domain"
	"github.com/plootony/MISTY/internal/ports"
	"github.com/plootony/MISTY/internal/ratelimit"
)

// fakeCompleter answers with a fixed reply, or routes by JSON mode when
// validation and generation need different answers.
type fakeCompleter struct {
	mu        sync.Mutex
	reply     string
	err       error
	jsonReply string
	jsonErr   error
	calls     []ports.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if req.JSONMode && (f.jsonReply != "" || f.jsonErr != nil) {
		return f.jsonReply, f.jsonErr
	}
	return f.reply, f.err
}

func (f *fakeCompleter) Calls() []ports.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.CompletionRequest(nil), f.calls...)
}

func userPrompt(req ports.CompletionRequest) string {
	for _, m := range req.Messages {
		if m.Role == "user" {
			return m.Content
		}
	}
	return ""
}

func newReadingService(llm ports.Completer) *app.ReadingService {
	return app.NewReadingService(llm, ratelimit.New(time.Millisecond), slog.Default())
}

type mockDeckStore struct {
	deck domain.Deck
	err  error
}

func (m *mockDeckStore) GetDeck(_ context.Context, _ string) (domain.Deck, error) {
	return m.deck, m.err
}

type fixedRNG struct{ val int }

func (r fixedRNG) Intn(n int) int { return r.val % n }

func testDeck() domain.Deck {
	cards := make([]domain.Card, 22)
	for i := range 22 {
		cards[i] = domain.Card{
			ID:       "card_" + string(rune('a'+i)),
			Name:     "Card " + string(rune('A'+i)),
			Number:   i,
			Arcana:   domain.MajorArcana,
			Upright:  "Upright.",
			Reversed: "Reversed.",
		}
	}
	return domain.Deck{ID: "major_arcana", Name: "Major Arcana", Cards: cards}
}

type memCatalog struct {
	spreads []domain.Spread
	tariffs map[string]domain.Tariff
}

func (c *memCatalog) Spreads() []domain.Spread { return c.spreads }

func (c *memCatalog) Spread(id string) (domain.Spread, error) {
	for _, s := range c.spreads {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Spread{}, domain.ErrSpreadNotFound
}

func (c *memCatalog) Tariff(id string) (domain.Tariff, error) {
	t, ok := c.tariffs[id]
	if !ok {
		return domain.Tariff{}, domain.ErrTariffNotFound
	}
	return t, nil
}

func testCatalog() *memCatalog {
	return &memCatalog{
		spreads: []domain.Spread{
			{ID: "one-card", Name: "Одна карта", CardsCount: 1, Positions: []domain.Position{{Name: "Совет"}}},
			{ID: "three-cards", Name: "Три карты", Description: "Прошлое, настоящее и будущее", CardsCount: 3,
				Positions: []domain.Position{{Name: "Прошлое"}, {Name: "Настоящее"}, {Name: "Будущее", Description: "куда всё движется"}}},
		},
		tariffs: map[string]domain.Tariff{
			"free":    {ID: "free", Spreads: []string{"one-card"}},
			"premium": {ID: "premium", Spreads: []string{"one-card", "three-cards"}},
		},
	}
}

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
}

func (m *memProfiles) GetProfile(_ context.Context, userID string) (domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return p, nil
}

func (m *memProfiles) UpsertProfile(_ context.Context, p domain.Profile) (domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profiles == nil {
		m.profiles = map[string]domain.Profile{}
	}
	m.profiles[p.UserID] = p
	return p, nil
}

type memReadings struct {
	mu    sync.Mutex
	saved []domain.Reading
}

func (m *memReadings) SaveReading(_ context.Context, r domain.Reading) (domain.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = "r" + strings.Repeat("x", len(m.saved)+1)
	m.saved = append(m.saved, r)
	return r, nil
}

func (m *memReadings) ListReadings(_ context.Context, userID string, limit, offset int) ([]domain.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Reading
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].UserID == userID {
			out = append(out, m.saved[i])
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	return out[:min(limit, len(out))], nil
}

type fixture struct {
	llm      *fakeCompleter
	profiles *memProfiles
	readings *memReadings
	svc      *app.TarotService
}

func newFixture(t *testing.T, llm *fakeCompleter) *fixture {
	t.Helper()
	f := &fixture{
		llm:      llm,
		profiles: &memProfiles{},
		readings: &memReadings{},
	}
	f.svc = app.NewTarotService(app.Deps{
		Decks:    &mockDeckStore{deck: testDeck()},
		Catalog:  testCatalog(),
		Profiles: f.profiles,
		Readings: f.readings,
		AI:       newReadingService(llm),
		RNG:      fixedRNG{val: 0},
		DeckID:   "major_arcana",
		Model:    "test-model",
	})
	return f
}
