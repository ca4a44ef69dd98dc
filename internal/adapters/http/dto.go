package http

import (
	"time"

	"github.com/plootony/MISTY/internal/app"
	"github.com/plootony/MISTY/internal/domain"
)

type QuestionRequest struct {
	Question string `json:"question"`
}

type ReadingRequest struct {
	Question string   `json:"question"`
	SpreadID string   `json:"spread_id"`
	CardIDs  []string `json:"card_ids"`
	Reversed []bool   `json:"reversed"`
}

type InterpretRequest struct {
	Question string `json:"question"`
	SpreadID string `json:"spread_id"`
	CardID   string `json:"card_id"`
	Reversed bool   `json:"reversed"`
	Position int    `json:"position"`
}

type ProfileRequest struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
}

type SpreadsResponse struct {
	Spreads []app.SpreadView `json:"spreads"`
}

// ReadingResponse is the JSON shape returned by the reading endpoints.
type ReadingResponse struct {
	Reading    domain.Reading          `json:"reading"`
	Validation domain.ValidationResult `json:"validation"`
	Meta       MetaResp                `json:"meta"`
}

type InterpretResponse struct {
	Interpretation string   `json:"interpretation"`
	Meta           MetaResp `json:"meta"`
}

type HistoryResponse struct {
	Readings []domain.Reading `json:"readings"`
}

type MetaResp struct {
	Model     string `json:"model,omitempty"`
	RequestID string `json:"request_id"`
	LatencyMS int64  `json:"latency_ms"`
}

// ErrorResponse carries the validator verdict when a question was rejected.
type ErrorResponse struct {
	Error      string                   `json:"error"`
	Validation *domain.ValidationResult `json:"validation,omitempty"`
}

func latencySince(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
