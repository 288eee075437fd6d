package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"CredScore/internal/domain"
	"CredScore/internal/ports"
	"CredScore/internal/usecase"
)

type (
	// Handler exposes scoring and feedback over HTTP.
	Handler struct {
		validate     *validator.Validate
		orchestrator *usecase.Orchestrator
		feedback     ports.FeedbackRepository
		logger       *slog.Logger

		defaultAlpha    float64
		defaultDeadline time.Duration
	}

	ScoreQuery struct {
		URL          string   `query:"url" validate:"required"`
		Alpha        *float64 `query:"alpha" validate:"omitempty,gte=0,lte=1"`
		FetchContent bool     `query:"fetch_content"`
		DeadlineS    *float64 `query:"deadline_s" validate:"omitempty,gt=0"`
	}

	FeedbackRequest struct {
		URL   string `json:"url" validate:"required,url"`
		Label *int   `json:"label" validate:"required,oneof=0 1"`
	}

	ResponseError struct {
		Message string `json:"message"`
	}
)

func NewHandler(orchestrator *usecase.Orchestrator, feedback ports.FeedbackRepository, defaultAlpha float64, defaultDeadline time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		validate:        validator.New(),
		orchestrator:    orchestrator,
		feedback:        feedback,
		logger:          logger,
		defaultAlpha:    defaultAlpha,
		defaultDeadline: defaultDeadline,
	}
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// Score evaluates one URL. Malformed URLs still score; only malformed
// parameters are rejected.
func (h *Handler) Score(c echo.Context) error {
	var q ScoreQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	alpha := h.defaultAlpha
	if q.Alpha != nil {
		alpha = *q.Alpha
	}
	deadline := h.defaultDeadline
	if q.DeadlineS != nil {
		deadline = time.Duration(*q.DeadlineS * float64(time.Second))
	}

	requestID := uuid.NewString()
	started := time.Now()
	rating := h.orchestrator.Score(c.Request().Context(), usecase.ScoreRequest{
		URL:          q.URL,
		Alpha:        alpha,
		FetchContent: q.FetchContent,
		Deadline:     deadline,
	})

	h.log(slog.LevelInfo, "scored url",
		"request_id", requestID,
		"url", q.URL,
		"score", rating.Score,
		"stars", rating.Stars,
		"elapsed", time.Since(started).String(),
	)

	return c.JSON(http.StatusOK, rating)
}

// Feedback stores one labeled example for the next retraining cycle.
func (h *Handler) Feedback(c echo.Context) error {
	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if h.feedback == nil {
		return c.JSON(http.StatusServiceUnavailable, ResponseError{Message: "feedback storage is not configured"})
	}

	example := domain.LabeledExample{URL: req.URL, Label: *req.Label}
	if err := h.feedback.Append(c.Request().Context(), example); err != nil {
		h.log(slog.LevelError, "store feedback", "url", req.URL, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "could not store feedback"})
	}

	return c.JSON(http.StatusAccepted, map[string]bool{"accepted": true})
}

func (h *Handler) log(level slog.Level, msg string, args ...any) {
	if h.logger != nil {
		h.logger.Log(context.Background(), level, msg, args...)
	}
}
