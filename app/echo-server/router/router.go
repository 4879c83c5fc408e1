package router

import (
	"net/http"

	"recoEngine/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, apiKey echo.MiddlewareFunc) {
	reco := api.Group("/recommendations")
	reco.POST("/feedback", handler.Feedback, apiKey)
	reco.GET("/:subjectId", handler.Recommend)
	reco.GET("/:subjectId/debug", handler.Debug)
	reco.GET("/:subjectId/decisions", handler.Decisions)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler) {
	products := api.Group("/products")

	products.GET("", handler.ListProducts)
	products.GET("/:id", handler.GetProductByID)
}

func SetEventRoutes(api *echo.Group, handler *rest.EventHandler, apiKey echo.MiddlewareFunc) {
	events := api.Group("/events")
	events.POST("", handler.TrackEvent, apiKey)
	events.GET("/user/:userId", handler.UserEvents)
}

func SetExperimentRoutes(api *echo.Group, handler *rest.ExperimentHandler, apiKey echo.MiddlewareFunc) {
	experiments := api.Group("/experiments")
	experiments.GET("/:name/variant", handler.Variant)
	experiments.POST("/:name/feedback", handler.Feedback, apiKey)
}

func SetupCategoryRoutes(api *echo.Group, handler *rest.CategoryHandler) {
	categories := api.Group("/categories")
	categories.GET("", handler.GetAllCategories)
}

func SetOpsRoutes(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
