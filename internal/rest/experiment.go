package rest

import (
	"context"
	"net/http"
	"time"

	"recoEngine/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ExperimentService interface {
	Choose(ctx context.Context, experimentName, subjectID string) (domain.VariantAssignment, error)
	RecordVariantOutcome(ctx context.Context, experimentName, variant string, success bool) error
}

type ExperimentHandler struct {
	service  ExperimentService
	validate *validator.Validate
	timeout  time.Duration
}

func NewExperimentHandler(svc ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{
		service:  svc,
		validate: validator.New(),
		timeout:  5 * time.Second,
	}
}

type VariantFeedbackRequest struct {
	Variant       string `json:"variant" validate:"required"`
	WasSuccessful bool   `json:"wasSuccessful"`
}

// GET /api/v1/experiments/:name/variant?subject=u1
func (h *ExperimentHandler) Variant(c echo.Context) error {
	subject := c.QueryParam("subject")
	if subject == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "subject is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	assignment, err := h.service.Choose(ctx, c.Param("name"), subject)
	if err != nil {
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(assignment))
}

func (h *ExperimentHandler) Feedback(c echo.Context) error {
	var req VariantFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.service.RecordVariantOutcome(ctx, c.Param("name"), req.Variant, req.WasSuccessful); err != nil {
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("feedback recorded"))
}
