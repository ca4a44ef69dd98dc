package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/plootony/MISTY/internal/app"
	"github.com/plootony/MISTY/internal/domain"
	"github.com/plootony/MISTY/internal/ratelimit"
)

const maxQuestionLen = 500

type Handler struct {
	svc    *app.TarotService
	model  string
	logger *slog.Logger
}

func NewHandler(svc *app.TarotService, model string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, model: model, logger: logger}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)

	v1 := e.Group("/v1", UserMiddleware())
	v1.GET("/spreads", h.ListSpreads)
	v1.GET("/cards", h.ListCards)
	v1.POST("/questions/validate", h.ValidateQuestion)
	v1.POST("/readings", h.CreateReading)
	v1.POST("/readings/full", h.CreateFullReading)
	v1.GET("/readings", h.ListReadings)
	v1.POST("/cards/interpret", h.InterpretCard)
	v1.GET("/profile", h.GetProfile)
	v1.PUT("/profile", h.UpdateProfile)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) ListSpreads(c echo.Context) error {
	spreads, err := h.svc.Spreads(c.Request().Context(), userID(c))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, SpreadsResponse{Spreads: spreads})
}

// ListCards returns the deck so clients can let users pick cards themselves.
func (h *Handler) ListCards(c echo.Context) error {
	deck, err := h.svc.Deck(c.Request().Context())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, deck)
}

func (h *Handler) ValidateQuestion(c echo.Context) error {
	var req QuestionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if tooLong(req.Question) {
		return badRequest(c, "question must be at most 500 characters")
	}
	res, err := h.svc.ValidateQuestion(c.Request().Context(), req.Question)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) CreateReading(c echo.Context) error {
	return h.read(c, false)
}

func (h *Handler) CreateFullReading(c echo.Context) error {
	return h.read(c, true)
}

func (h *Handler) read(c echo.Context, full bool) error {
	var req ReadingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if tooLong(req.Question) {
		return badRequest(c, "question must be at most 500 characters")
	}
	if req.SpreadID == "" {
		return badRequest(c, "spread_id is required")
	}

	resp, err := h.svc.Read(c.Request().Context(), app.ReadRequest{
		UserID:   userID(c),
		Question: req.Question,
		SpreadID: req.SpreadID,
		CardIDs:  req.CardIDs,
		Reversed: req.Reversed,
		Full:     full,
	})
	if errors.Is(err, domain.ErrQuestionRejected) {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:      err.Error(),
			Validation: &resp.Validation,
		})
	}
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, ReadingResponse{
		Reading:    resp.Reading,
		Validation: resp.Validation,
		Meta: MetaResp{
			Model:     resp.Model,
			RequestID: requestID(c),
			LatencyMS: resp.LatencyMS,
		},
	})
}

func (h *Handler) InterpretCard(c echo.Context) error {
	var req InterpretRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if tooLong(req.Question) {
		return badRequest(c, "question must be at most 500 characters")
	}
	if req.CardID == "" || req.SpreadID == "" {
		return badRequest(c, "spread_id and card_id are required")
	}

	start := time.Now()
	text, err := h.svc.InterpretCard(c.Request().Context(), app.InterpretRequest{
		Question: req.Question,
		SpreadID: req.SpreadID,
		CardID:   req.CardID,
		Reversed: req.Reversed,
		Position: req.Position,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, InterpretResponse{
		Interpretation: text,
		Meta: MetaResp{
			Model:     h.model,
			RequestID: requestID(c),
			LatencyMS: latencySince(start),
		},
	})
}

func (h *Handler) ListReadings(c echo.Context) error {
	limit, err := intParam(c, "limit")
	if err != nil {
		return badRequest(c, "limit must be a non-negative integer")
	}
	offset, err := intParam(c, "offset")
	if err != nil {
		return badRequest(c, "offset must be a non-negative integer")
	}

	readings, err := h.svc.History(c.Request().Context(), userID(c), limit, offset)
	if err != nil {
		return h.mapError(c, err)
	}
	if readings == nil {
		readings = []domain.Reading{}
	}
	return c.JSON(http.StatusOK, HistoryResponse{Readings: readings})
}

func (h *Handler) GetProfile(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return h.mapError(c, domain.ErrNoUser)
	}
	p, err := h.svc.Profile(c.Request().Context(), uid)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	p, err := h.svc.UpdateProfile(c.Request().Context(), domain.Profile{
		UserID:    userID(c),
		Name:      req.Name,
		BirthDate: req.BirthDate,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// tooLong enforces the length cap; emptiness is left to the service.
func tooLong(q string) bool {
	return utf8.RuneCountInString(q) > maxQuestionLen
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("invalid")
	}
	return n, nil
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func (h *Handler) mapError(c echo.Context, err error) error {
	ctx := c.Request().Context()
	rid := requestID(c)

	switch {
	case errors.Is(err, domain.ErrEmptyQuestion),
		errors.Is(err, domain.ErrInvalidCount),
		errors.Is(err, domain.ErrTooManyCards),
		errors.Is(err, domain.ErrDuplicateCard),
		errors.Is(err, domain.ErrCardNotFound),
		errors.Is(err, domain.ErrInvalidBirthDate):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNoUser):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: domain.ErrNoUser.Error()})
	case errors.Is(err, domain.ErrSpreadLocked):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: domain.ErrSpreadLocked.Error()})
	case errors.Is(err, domain.ErrSpreadNotFound),
		errors.Is(err, domain.ErrDeckNotFound),
		errors.Is(err, domain.ErrTariffNotFound),
		errors.Is(err, domain.ErrProfileNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrProfileIncomplete):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ratelimit.ErrQueueFull):
		h.logger.WarnContext(ctx, "provider queue full", "request_id", rid)
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: ratelimit.ErrQueueFull.Error()})
	case errors.Is(err, domain.ErrReadingFailed):
		h.logger.ErrorContext(ctx, "reading failed", "request_id", rid, "error", err)
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: domain.ErrReadingFailed.Error()})
	case errors.Is(err, domain.ErrInterpretFailed):
		h.logger.ErrorContext(ctx, "interpretation failed", "request_id", rid, "error", err)
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: domain.ErrInterpretFailed.Error()})
	case errors.Is(err, domain.ErrUpstreamLLM):
		h.logger.ErrorContext(ctx, "upstream LLM failure", "request_id", rid, "error", err)
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: domain.ErrUpstreamLLM.Error()})
	default:
		h.logger.ErrorContext(ctx, "internal error", "request_id", rid, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
