package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/plootony/MISTY/internal/aiparse"
	"github.com/plootony/MISTY/internal/domain"
	"github.com/plootony/MISTY/internal/ports"
	"github.com/plootony/MISTY/internal/ratelimit"
)

// Per-operation sampling settings. Classification runs cold to keep verdicts
// stable; prose runs warmer.
const (
	validateTemperature = 0.3
	validateMaxTokens   = 300

	readingTemperature = 0.7
	readingMaxTokens   = 1000

	cardTemperature = 0.7
	cardMaxTokens   = 500

	fullReadingTemperature = 0.8
	fullReadingMaxTokens   = 1500
)

// ValidationUnavailable is reported in ValidationResult.Error when the
// classifier could not produce a verdict.
const ValidationUnavailable = "Не удалось проверить вопрос. Попробуйте еще раз."

// ReadingService talks to the completion provider. Every call is scheduled
// through the shared limiter and makes exactly one provider request.
type ReadingService struct {
	llm     ports.Completer
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

func NewReadingService(llm ports.Completer, limiter *ratelimit.Limiter, logger *slog.Logger) *ReadingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadingService{llm: llm, limiter: limiter, logger: logger}
}

// ValidateQuestion asks the model whether question suits a tarot reading.
// It never fails: any transport, parse or shape problem yields a permissive
// result with Error set, so the user is not blocked by the classifier.
func (s *ReadingService) ValidateQuestion(ctx context.Context, question string) domain.ValidationResult {
	req := ports.CompletionRequest{
		Messages: []ports.Message{
			{Role: "system", Content: validationSystemPrompt},
			{Role: "user", Content: validationUserPrompt(question)},
		},
		Temperature: validateTemperature,
		MaxTokens:   validateMaxTokens,
		JSONMode:    true,
	}

	res, err := ratelimit.Execute(ctx, s.limiter, func(ctx context.Context) (domain.ValidationResult, error) {
		text, err := s.llm.Complete(ctx, req)
		if err != nil {
			return domain.ValidationResult{}, err
		}
		return aiparse.ParseValidation(text)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "question validation degraded", "error", err)
		return domain.ValidationResult{IsValid: true, Error: ValidationUnavailable}
	}
	return res
}

// GenerateReading interprets a whole spread.
func (s *ReadingService) GenerateReading(ctx context.Context, question string, cards []domain.DrawnCard, spread domain.Spread) (string, error) {
	return s.generate(ctx, "reading", domain.ErrReadingFailed, ports.CompletionRequest{
		Messages: []ports.Message{
			{Role: "system", Content: readerSystemPrompt},
			{Role: "user", Content: readingPrompt(question, cards, spread)},
		},
		Temperature: readingTemperature,
		MaxTokens:   readingMaxTokens,
	})
}

// InterpretCard interprets one card in one position.
func (s *ReadingService) InterpretCard(ctx context.Context, question string, card domain.DrawnCard, position domain.Position) (string, error) {
	return s.generate(ctx, "card", domain.ErrInterpretFailed, ports.CompletionRequest{
		Messages: []ports.Message{
			{Role: "system", Content: readerSystemPrompt},
			{Role: "user", Content: cardPrompt(question, card, position)},
		},
		Temperature: cardTemperature,
		MaxTokens:   cardMaxTokens,
	})
}

// GenerateFullReading writes a personalized reading using the querent's
// profile and zodiac sign.
func (s *ReadingService) GenerateFullReading(ctx context.Context, profile domain.Profile, zodiacSign, question string, spread domain.Spread, cards []domain.DrawnCard) (string, error) {
	return s.generate(ctx, "full_reading", domain.ErrReadingFailed, ports.CompletionRequest{
		Messages: []ports.Message{
			{Role: "system", Content: readerSystemPrompt},
			{Role: "user", Content: fullReadingPrompt(profile, zodiacSign, question, spread, cards)},
		},
		Temperature: fullReadingTemperature,
		MaxTokens:   fullReadingMaxTokens,
	})
}

// generate runs a prose request. Failures are logged and returned wrapped in
// userErr; no fallback text is produced.
func (s *ReadingService) generate(ctx context.Context, op string, userErr error, req ports.CompletionRequest) (string, error) {
	text, err := ratelimit.Execute(ctx, s.limiter, func(ctx context.Context) (string, error) {
		return s.llm.Complete(ctx, req)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "generation failed", "op", op, "error", err)
		return "", fmt.Errorf("%w: %w", userErr, err)
	}
	return text, nil
}
