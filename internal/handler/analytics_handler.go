package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/useglide/glide/internal/dto"
	"github.com/useglide/glide/internal/service"
	"github.com/useglide/glide/internal/utils"
)

// AnalyticsHandler exposes the performance report and study plan
// endpoints.
type AnalyticsHandler struct {
	service  service.AnalyticsService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewAnalyticsHandler creates a new handler instance.
func NewAnalyticsHandler(service service.AnalyticsService, validate *validator.Validate, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register attaches the analytics endpoints.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/courses/:courseID/performance", h.getPerformance)
	router.Get("/courses/:courseID/study-plan", h.getStudyPlan)
	router.Get("/courses/:courseID/assignments/:assignmentID/performance", h.getAssignmentPerformance)
}

func (h *AnalyticsHandler) getPerformance(c *fiber.Ctx) error {
	courseID, err := parseParamID(c, "courseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	report, err := h.service.GeneratePerformanceReport(c.UserContext(), courseID)
	if err != nil {
		status, message := statusFromGatewayError(err)
		requestLogger(h.logger, c).Error().Err(err).Int64("course_id", courseID).Msg("failed to generate performance report")
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "performance report generated", report)
}

func (h *AnalyticsHandler) getStudyPlan(c *fiber.Ctx) error {
	courseID, err := parseParamID(c, "courseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	query := dto.StudyPlanQuery{DaysAhead: service.DefaultStudyPlanWindowDays}
	if raw, err := parseQueryInt(c, "days_ahead"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "days_ahead must be an integer")
	} else if raw != 0 {
		query.DaysAhead = raw
	}
	if err := h.validate.Struct(query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "days_ahead must be between 1 and 120")
	}

	plan, err := h.service.GenerateStudyPlan(c.UserContext(), courseID, query.DaysAhead)
	if err != nil {
		status, message := statusFromGatewayError(err)
		requestLogger(h.logger, c).Error().Err(err).Int64("course_id", courseID).Msg("failed to generate study plan")
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "study plan generated", plan)
}

func (h *AnalyticsHandler) getAssignmentPerformance(c *fiber.Ctx) error {
	courseID, err := parseParamID(c, "courseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}
	assignmentID, err := parseParamID(c, "assignmentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	analysis, err := h.service.AnalyzeAssignment(c.UserContext(), courseID, assignmentID)
	if err != nil {
		status, message := statusFromGatewayError(err)
		requestLogger(h.logger, c).Error().Err(err).Int64("course_id", courseID).Int64("assignment_id", assignmentID).Msg("failed to analyze assignment")
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "assignment analysis generated", analysis)
}
