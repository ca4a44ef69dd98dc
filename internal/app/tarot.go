package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/plootony/MISTY/internal/domain"
	"github.com/plootony/MISTY/internal/ports"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
)

// ReadRequest is the application-level input for a reading (no HTTP types).
type ReadRequest struct {
	UserID   string
	Question string
	SpreadID string
	// CardIDs are user-picked cards in position order. Empty means draw.
	CardIDs  []string
	Reversed []bool
	// Full asks for a reading personalized with the user's profile.
	Full bool
}

// ReadResponse is the application-level output.
type ReadResponse struct {
	Reading    domain.Reading
	Validation domain.ValidationResult
	Model      string
	LatencyMS  int64
}

// InterpretRequest asks for a single card in a single spread position.
type InterpretRequest struct {
	Question string
	SpreadID string
	CardID   string
	Reversed bool
	// Position is 1-based.
	Position int
}

// SpreadView is a spread with its availability for a given user.
type SpreadView struct {
	domain.Spread
	Locked bool `json:"locked"`
}

// ProfileView is a profile with derived fields.
type ProfileView struct {
	domain.Profile
	NeedsSetup bool   `json:"needs_setup"`
	ZodiacSign string `json:"zodiac_sign"`
}

// TarotService orchestrates spreads, profiles, history and AI interpretation.
type TarotService struct {
	deckStore ports.DeckStore
	catalog   ports.Catalog
	profiles  ports.ProfileStore
	readings  ports.ReadingStore
	ai        *ReadingService
	rng       domain.RNG
	deckID    string
	model     string
	now       func() time.Time
}

// Deps groups TarotService collaborators.
type Deps struct {
	Decks    ports.DeckStore
	Catalog  ports.Catalog
	Profiles ports.ProfileStore
	Readings ports.ReadingStore
	AI       *ReadingService
	RNG      domain.RNG
	DeckID   string
	Model    string
}

func NewTarotService(d Deps) *TarotService {
	return &TarotService{
		deckStore: d.Decks,
		catalog:   d.Catalog,
		profiles:  d.Profiles,
		readings:  d.Readings,
		ai:        d.AI,
		rng:       d.RNG,
		deckID:    d.DeckID,
		model:     d.Model,
		now:       time.Now,
	}
}

// Spreads lists the catalog, marking spreads the user's tariff does not unlock.
// An empty userID lists everything unlocked.
func (s *TarotService) Spreads(ctx context.Context, userID string) ([]SpreadView, error) {
	spreads := s.catalog.Spreads()
	out := make([]SpreadView, len(spreads))

	var tariff *domain.Tariff
	if userID != "" {
		p, err := s.profileOrDefault(ctx, userID)
		if err != nil {
			return nil, err
		}
		t, err := s.catalog.Tariff(p.Tariff)
		if err != nil {
			return nil, err
		}
		tariff = &t
	}

	for i, sp := range spreads {
		out[i] = SpreadView{Spread: sp, Locked: tariff != nil && !tariff.Allows(sp.ID)}
	}
	return out, nil
}

// Deck returns the deck cards are drawn and picked from.
func (s *TarotService) Deck(ctx context.Context) (domain.Deck, error) {
	deck, err := s.deckStore.GetDeck(ctx, s.deckID)
	if err != nil {
		return domain.Deck{}, fmt.Errorf("get deck: %w", err)
	}
	return deck, nil
}

// ValidateQuestion classifies a question. Only an empty question is an error.
func (s *TarotService) ValidateQuestion(ctx context.Context, question string) (domain.ValidationResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.ValidationResult{}, domain.ErrEmptyQuestion
	}
	return s.ai.ValidateQuestion(ctx, question), nil
}

// Read validates the question, places the cards and interprets the spread.
// Readings for known users are saved to history.
func (s *TarotService) Read(ctx context.Context, req ReadRequest) (ReadResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return ReadResponse{}, domain.ErrEmptyQuestion
	}

	spread, err := s.catalog.Spread(req.SpreadID)
	if err != nil {
		return ReadResponse{}, err
	}

	profile, err := s.profileOrDefault(ctx, req.UserID)
	if err != nil {
		return ReadResponse{}, err
	}
	if err := s.checkAccess(profile, spread.ID); err != nil {
		return ReadResponse{}, err
	}
	if req.Full && profile.NeedsSetup() {
		return ReadResponse{}, domain.ErrProfileIncomplete
	}

	validation := s.ai.ValidateQuestion(ctx, question)
	if !validation.IsValid {
		return ReadResponse{Validation: validation}, domain.ErrQuestionRejected
	}

	deck, err := s.Deck(ctx)
	if err != nil {
		return ReadResponse{}, err
	}

	var cards []domain.DrawnCard
	if len(req.CardIDs) > 0 {
		cards, err = domain.SelectCards(deck, spread, req.CardIDs, req.Reversed)
	} else {
		cards, err = domain.DrawCards(deck, spread, s.rng)
	}
	if err != nil {
		return ReadResponse{}, fmt.Errorf("place cards: %w", err)
	}

	start := time.Now()
	var text string
	if req.Full {
		text, err = s.ai.GenerateFullReading(ctx, profile, domain.ZodiacSign(profile.BirthDate), question, spread, cards)
	} else {
		text, err = s.ai.GenerateReading(ctx, question, cards, spread)
	}
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return ReadResponse{}, err
	}

	reading := domain.Reading{
		UserID:         req.UserID,
		Question:       question,
		SpreadID:       spread.ID,
		SpreadName:     spread.Name,
		Cards:          cards,
		Interpretation: text,
		CreatedAt:      s.now().UTC(),
	}
	if req.UserID != "" {
		reading, err = s.readings.SaveReading(ctx, reading)
		if err != nil {
			return ReadResponse{}, fmt.Errorf("save reading: %w", err)
		}
	}

	return ReadResponse{
		Reading:    reading,
		Validation: validation,
		Model:      s.model,
		LatencyMS:  latency,
	}, nil
}

// InterpretCard interprets one card of the deck in one spread position.
func (s *TarotService) InterpretCard(ctx context.Context, req InterpretRequest) (string, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return "", domain.ErrEmptyQuestion
	}
	spread, err := s.catalog.Spread(req.SpreadID)
	if err != nil {
		return "", err
	}
	if req.Position < 1 || req.Position > spread.CardsCount {
		return "", fmt.Errorf("%w: position %d outside spread %q", domain.ErrInvalidCount, req.Position, spread.ID)
	}
	deck, err := s.Deck(ctx)
	if err != nil {
		return "", err
	}
	card, ok := deck.Find(req.CardID)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrCardNotFound, req.CardID)
	}

	var position domain.Position
	if req.Position <= len(spread.Positions) {
		position = spread.Positions[req.Position-1]
	}
	drawn := domain.DrawnCard{
		Card:         card,
		Position:     req.Position,
		PositionName: position.Name,
		Reversed:     req.Reversed,
	}
	return s.ai.InterpretCard(ctx, question, drawn, position)
}

// History returns the user's readings, newest first.
func (s *TarotService) History(ctx context.Context, userID string, limit, offset int) ([]domain.Reading, error) {
	if userID == "" {
		return nil, domain.ErrNoUser
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)
	offset = max(offset, 0)
	return s.readings.ListReadings(ctx, userID, limit, offset)
}

// Profile returns the stored profile, or an empty free-tier profile.
func (s *TarotService) Profile(ctx context.Context, userID string) (ProfileView, error) {
	p, err := s.profileOrDefault(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}
	return viewProfile(p), nil
}

// UpdateProfile validates and stores name and birth date. The stored tariff
// is kept; it only changes through SetTariff.
func (s *TarotService) UpdateProfile(ctx context.Context, p domain.Profile) (ProfileView, error) {
	if p.UserID == "" {
		return ProfileView{}, domain.ErrNoUser
	}
	p.Name = strings.TrimSpace(p.Name)
	p.BirthDate = strings.TrimSpace(p.BirthDate)
	if p.BirthDate != "" {
		if _, err := domain.ParseBirthDate(p.BirthDate); err != nil {
			return ProfileView{}, err
		}
	}

	current, err := s.profileOrDefault(ctx, p.UserID)
	if err != nil {
		return ProfileView{}, err
	}
	p.Tariff = current.Tariff
	return s.saveProfile(ctx, p)
}

// SetTariff moves a user to another tariff.
func (s *TarotService) SetTariff(ctx context.Context, userID, tariffID string) (ProfileView, error) {
	if userID == "" {
		return ProfileView{}, domain.ErrNoUser
	}
	if _, err := s.catalog.Tariff(tariffID); err != nil {
		return ProfileView{}, err
	}
	p, err := s.profileOrDefault(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}
	p.Tariff = tariffID
	return s.saveProfile(ctx, p)
}

func (s *TarotService) saveProfile(ctx context.Context, p domain.Profile) (ProfileView, error) {
	p.UpdatedAt = s.now().UTC()
	saved, err := s.profiles.UpsertProfile(ctx, p)
	if err != nil {
		return ProfileView{}, fmt.Errorf("upsert profile: %w", err)
	}
	return viewProfile(saved), nil
}

func (s *TarotService) profileOrDefault(ctx context.Context, userID string) (domain.Profile, error) {
	if userID == "" {
		return domain.Profile{Tariff: domain.DefaultTariff}, nil
	}
	p, err := s.profiles.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		return domain.Profile{UserID: userID, Tariff: domain.DefaultTariff}, nil
	case err != nil:
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if p.Tariff == "" {
		p.Tariff = domain.DefaultTariff
	}
	return p, nil
}

func (s *TarotService) checkAccess(p domain.Profile, spreadID string) error {
	t, err := s.catalog.Tariff(p.Tariff)
	if err != nil {
		return err
	}
	if !t.Allows(spreadID) {
		return fmt.Errorf("%w: %s on %s", domain.ErrSpreadLocked, spreadID, t.ID)
	}
	return nil
}

func viewProfile(p domain.Profile) ProfileView {
	return ProfileView{
		Profile:    p,
		NeedsSetup: p.NeedsSetup(),
		ZodiacSign: domain.ZodiacSign(p.BirthDate),
	}
}
