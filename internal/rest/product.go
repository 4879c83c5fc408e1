package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"recoEngine/domain"
	"recoEngine/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type ProductService interface {
	ListProducts(ctx context.Context, category string, limit, offset int) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id uint64) (*domain.Product, error)
}

type ProductHandler struct {
	productService ProductService
	timeout        time.Duration
}

func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		timeout:        10 * time.Second,
	}
}

type ListProductsQuery struct {
	Category string `query:"category"`
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	var q ListProductsQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.productService.ListProducts(ctx, q.Category, q.Limit, q.Offset)
	if err != nil {
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}

func (h *ProductHandler) GetProductByID(c echo.Context) error {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		logger.Warn("invalid product id", "id", c.Param("id"))
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.GetProductByID(ctx, productID)
	if err != nil {
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(product))
}
