package rest

import (
	"context"
	"net/http"
	"time"

	"recoEngine/business/bandit"
	"recoEngine/domain"
	"recoEngine/pkg/logger"
	"recoEngine/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

type (
	RecommendationHandler struct {
		validate *validator.Validate
		service  RecommendationService
		timeout  time.Duration
	}

	RecommendationService interface {
		Recommend(ctx context.Context, subjectID string, rctx domain.RecommendationContext) (domain.RecommendationResult, error)
		Feedback(ctx context.Context, subjectID, strategyName string, wasSuccessful bool) error
		Explain(ctx context.Context, subjectID, strategyName string, rctx domain.RecommendationContext) ([]domain.ScoreBreakdown, error)
		Decisions(ctx context.Context, subjectID string, limit int) (domain.DecisionHistory, error)
	}

	DebugQuery struct {
		Strategy string `query:"strategy"`
		Context  string `query:"context"`
	}

	DecisionQuery struct {
		Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
	}
)

func NewRecommendationHandler(svc RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		validate: validator.New(),
		service:  svc,
		timeout:  10 * time.Second,
	}
}

// parseContext decodes the optional ?context= JSON; an empty value is the empty context.
func parseContext(raw string) (domain.RecommendationContext, error) {
	var rctx domain.RecommendationContext
	if raw == "" {
		return rctx, nil
	}
	if err := json.Unmarshal([]byte(raw), &rctx); err != nil {
		return rctx, err
	}
	return rctx, nil
}

// GET /api/v1/recommendations/:subjectId?context={"viewedProducts":[1,2]}
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	start := time.Now()
	status := http.StatusOK
	defer func() {
		metrics.ObserveRequest("recommend", status, time.Since(start))
	}()

	subjectID := c.Param("subjectId")
	if subjectID == "" {
		status = http.StatusBadRequest
		return c.JSON(status, ResponseError{Message: "subject id is required"})
	}

	rctx, err := parseContext(c.QueryParam("context"))
	if err != nil {
		status = http.StatusBadRequest
		return c.JSON(status, ResponseError{Message: "invalid context: " + err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.service.Recommend(ctx, subjectID, rctx)
	if err != nil {
		status = statusFor(err)
		logger.Error("failed to recommend", "trace_id", bandit.TraceIDFromContext(ctx), "subject_id", subjectID, "error", err)
		return c.JSON(status, ResponseError{Message: err.Error()})
	}

	metrics.RecommendationsServed.WithLabelValues(result.Strategy, cacheLabel(result.CacheHit)).Inc()

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

func cacheLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// POST /api/v1/recommendations/feedback
func (h *RecommendationHandler) Feedback(c echo.Context) error {
	var req domain.Feedback
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.service.Feedback(ctx, req.SubjectID, req.Strategy, req.WasSuccessful); err != nil {
		logger.Warn("failed to record feedback", "trace_id", bandit.TraceIDFromContext(ctx), "strategy", req.Strategy, "error", err)
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("feedback recorded"))
}

// GET /api/v1/recommendations/:subjectId/debug?strategy=category_based
func (h *RecommendationHandler) Debug(c echo.Context) error {
	var q DebugQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	rctx, err := parseContext(q.Context)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid context: " + err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	breakdown, err := h.service.Explain(ctx, c.Param("subjectId"), q.Strategy, rctx)
	if err != nil {
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(breakdown))
}

// GET /api/v1/recommendations/:subjectId/decisions?limit=20
func (h *RecommendationHandler) Decisions(c echo.Context) error {
	var q DecisionQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if q.Limit == 0 {
		q.Limit = 20
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	history, err := h.service.Decisions(ctx, c.Param("subjectId"), q.Limit)
	if err != nil {
		logger.Warn("failed to read decisions", "trace_id", bandit.TraceIDFromContext(ctx), "error", err)
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(history))
}
