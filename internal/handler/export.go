package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/export"
	"github.com/dharmasatrya/tripplanner/internal/models"
)

type ExportHandler struct {
	logger *zap.Logger
}

func NewExportHandler(logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{logger: logger}
}

// ItineraryPDF renders a previously resolved recommendation posted by the
// client. Nothing is looked up server side.
func (h *ExportHandler) ItineraryPDF(c echo.Context) error {
	var resp models.RecommendationResponse
	if err := c.Bind(&resp); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + bindMessage(err),
			Code:    http.StatusBadRequest,
		})
	}
	if len(resp.Recommendations.Destinations) == 0 {
		return badRequest(c, "recommendations must include at least one destination")
	}

	data, err := export.ItineraryPDF(resp)
	if err != nil {
		h.logger.Error("pdf export failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "export_error",
			Message: "Failed to render itinerary",
			Code:    http.StatusInternalServerError,
		})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="trip-plan.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", data)
}
