package domain

import "errors"

var (
	ErrInvalidCount      = errors.New("card count must be between 1 and the deck size")
	ErrTooManyCards      = errors.New("more cards selected than the spread allows")
	ErrDuplicateCard     = errors.New("card selected more than once")
	ErrCardNotFound      = errors.New("card not found")
	ErrDeckNotFound      = errors.New("deck not found")
	ErrSpreadNotFound    = errors.New("spread not found")
	ErrTariffNotFound    = errors.New("tariff not found")
	ErrSpreadLocked      = errors.New("spread is not available on the current tariff")
	ErrNoUser            = errors.New("user id is required")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrProfileIncomplete = errors.New("profile needs a name and birth date")
	ErrInvalidBirthDate  = errors.New("birth date must be DD.MM.YYYY or YYYY-MM-DD")
	ErrEmptyQuestion     = errors.New("question must not be empty")
	ErrQuestionRejected  = errors.New("question is not suitable for a tarot reading")

	ErrMissingAPIKey = errors.New("MISTRAL_API_KEY is not set")
	ErrUpstreamLLM   = errors.New("upstream LLM failure")

	// User-facing failures of the generative calls.
	ErrReadingFailed   = errors.New("could not get the card reading")
	ErrInterpretFailed = errors.New("could not interpret the card")
)
