package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/aggregator"
	"github.com/dharmasatrya/tripplanner/internal/models"
)

const retryMessage = "We could not put your trip together this time. Please try again."

type RecommendationHandler struct {
	aggregator *aggregator.Aggregator
	sessions   *aggregator.Registry
	logger     *zap.Logger
}

func NewRecommendationHandler(agg *aggregator.Aggregator, sessions *aggregator.Registry, logger *zap.Logger) *RecommendationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationHandler{
		aggregator: agg,
		sessions:   sessions,
		logger:     logger,
	}
}

// Recommend resolves a survey and responds once every image and forecast has
// settled.
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	survey, errResp := bindSurvey(c)
	if errResp != nil {
		return c.JSON(errResp.Code, errResp)
	}

	result, err := h.aggregator.Recommend(c.Request().Context(), survey)
	if err != nil {
		h.logger.Error("recommendation failed", zap.Error(err), zap.String("request_id", requestID(c)))
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "recommendation_error",
			Message: retryMessage,
			Code:    http.StatusInternalServerError,
		})
	}

	return c.JSON(http.StatusOK, result.Response(survey))
}

func (h *RecommendationHandler) CreateSession(c echo.Context) error {
	survey, errResp := bindSurvey(c)
	if errResp != nil {
		return c.JSON(errResp.Code, errResp)
	}

	s := h.sessions.Create(c.Request().Context(), survey)
	return c.JSON(http.StatusAccepted, s.Snapshot())
}

// GetSession returns the current snapshot. With wait=true it blocks until the
// running cycle settles or the client goes away.
func (h *RecommendationHandler) GetSession(c echo.Context) error {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		return sessionNotFound(c)
	}

	if wait, _ := strconv.ParseBool(c.QueryParam("wait")); wait {
		snap, err := s.Wait(c.Request().Context())
		if err != nil && !errors.Is(err, context.Canceled) {
			h.logger.Debug("session wait interrupted", zap.Error(err))
		}
		return c.JSON(http.StatusOK, snap)
	}

	return c.JSON(http.StatusOK, s.Snapshot())
}

func (h *RecommendationHandler) RefreshSession(c echo.Context) error {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		return sessionNotFound(c)
	}

	s.Refresh(c.Request().Context())
	return c.JSON(http.StatusAccepted, s.Snapshot())
}

func (h *RecommendationHandler) DeleteSession(c echo.Context) error {
	if !h.sessions.Delete(c.Param("id")) {
		return sessionNotFound(c)
	}
	return c.NoContent(http.StatusNoContent)
}

func bindSurvey(c echo.Context) (models.SurveyInput, *models.ErrorResponse) {
	var survey models.SurveyInput
	if err := c.Bind(&survey); err != nil {
		return survey, &models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + bindMessage(err),
			Code:    http.StatusBadRequest,
		}
	}

	if err := survey.Validate(); err != nil {
		return survey, &models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		}
	}

	return survey, nil
}

func bindMessage(err error) string {
	if he, ok := err.(*echo.HTTPError); ok {
		if he.Internal != nil {
			return he.Internal.Error()
		}
		if msg, ok := he.Message.(string); ok {
			return msg
		}
	}
	return err.Error()
}

func sessionNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "session_not_found",
		Message: "No session with id " + c.Param("id"),
		Code:    http.StatusNotFound,
	})
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
