package handler

import "github.com/labstack/echo/v4"

type Handlers struct {
	Recommendations *RecommendationHandler
	Lookups         *LookupHandler
	Export          *ExportHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers) {
	api := e.Group("/api/v1")
	api.POST("/recommendations", h.Recommendations.Recommend)
	api.POST("/sessions", h.Recommendations.CreateSession)
	api.GET("/sessions/:id", h.Recommendations.GetSession)
	api.POST("/sessions/:id/refresh", h.Recommendations.RefreshSession)
	api.DELETE("/sessions/:id", h.Recommendations.DeleteSession)
	api.GET("/images", h.Lookups.Image)
	api.GET("/weather", h.Lookups.Weather)
	api.GET("/quota", h.Lookups.Quota)
	api.POST("/itinerary/pdf", h.Export.ItineraryPDF)
	e.GET("/health", HealthHandler)
}
