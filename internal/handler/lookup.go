package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/tripplanner/internal/aggregator"
	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/internal/quota"
)

// LookupHandler exposes the image and weather resolvers on their own.
type LookupHandler struct {
	images  aggregator.ImageResolver
	weather aggregator.WeatherResolver
	quota   *quota.Tracker
}

func NewLookupHandler(images aggregator.ImageResolver, weather aggregator.WeatherResolver, tracker *quota.Tracker) *LookupHandler {
	return &LookupHandler{
		images:  images,
		weather: weather,
		quota:   tracker,
	}
}

func (h *LookupHandler) Image(c echo.Context) error {
	return c.JSON(http.StatusOK, h.images.Resolve(c.Request().Context(), c.QueryParam("q")))
}

func (h *LookupHandler) Weather(c echo.Context) error {
	city := c.QueryParam("city")
	if city == "" {
		return badRequest(c, "city is required")
	}

	start, err := models.ParseDate(c.QueryParam("start"))
	if err != nil {
		return badRequest(c, "start must be in YYYY-MM-DD format")
	}
	end, err := models.ParseDate(c.QueryParam("end"))
	if err != nil {
		return badRequest(c, "end must be in YYYY-MM-DD format")
	}
	if err := models.ValidateRange(start, end); err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(http.StatusOK, h.weather.Resolve(c.Request().Context(), city, start.Time, end.Time))
}

func (h *LookupHandler) Quota(c echo.Context) error {
	return c.JSON(http.StatusOK, h.quota.Snapshot())
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: msg,
		Code:    http.StatusBadRequest,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
