package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/useglide/glide/internal/dto"
	"github.com/useglide/glide/internal/service"
	"github.com/useglide/glide/internal/utils"
)

// CourseHandler exposes course and assignment browsing endpoints.
type CourseHandler struct {
	service  service.CourseService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewCourseHandler creates a new handler instance.
func NewCourseHandler(service service.CourseService, validate *validator.Validate, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches the course endpoints.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("/courses", h.listCourses)
	router.Get("/courses/:courseID", h.getCourse)
	router.Get("/courses/:courseID/syllabus", h.getSyllabus)
	router.Get("/courses/:courseID/assignments", h.listAssignments)
	router.Get("/courses/:courseID/assignments/upcoming", h.upcomingAssignments)
	router.Get("/two-stage-data", h.twoStageView)
}

func (h *CourseHandler) listCourses(c *fiber.Ctx) error {
	courses, err := h.service.ListCourses(c.UserContext())
	if err != nil {
		status, message := statusFromGatewayError(err)
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list courses")
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) getCourse(c *fiber.Ctx) error {
	courseID, err := parseParamID(c, "courseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	course, err := h.service.GetCourse(c.UserContext(), courseID)
	if err != nil {
		status, message := statusFromGatewayError(err)
		requestLogger(h.logger, c).Error().Err(err).Int64("course_id", courseID).Msg("failed to fetch course")
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) getSyllabus(c *fiber.Ctx) error {
	courseID, err := parseParamID(c, "courseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	syllabus, err := h.service.GetSyllabus(c.UserContext(), courseID)
	if err != nil {
		status, message := statusFromGatewayError(err)
		requestLogger(h.logger, c).Error().Err(err).Int64("course_id", courseID).Msg("failed to fetch syllabus")
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "syllabus retrieved", syllabus)
}

func (h *CourseHandler) listAssignments(c *fiber.Ctx) error {
	courseID, err := parseParamID(c, "courseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	assignments, err := h.service.ListAssignments(c.UserContext(), courseID)
	if err != nil {
		status, message := statusFromGatewayError(err)
		requestLogger(h.logger, c).Error().Err(err).Int64("course_id", courseID).Msg("failed to list assignments")
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *CourseHandler) upcomingAssignments(c *fiber.Ctx) error {
	courseID, err := parseParamID(c, "courseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	query := dto.UpcomingQuery{Days: 7}
	if raw, err := parseQueryInt(c, "days"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "days must be an integer")
	} else if raw != 0 {
		query.Days = raw
	}
	if err := h.validate.Struct(query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "days must be between 1 and 365")
	}

	assignments, err := h.service.UpcomingAssignments(c.UserContext(), courseID, query.Days)
	if err != nil {
		status, message := statusFromGatewayError(err)
		requestLogger(h.logger, c).Error().Err(err).Int64("course_id", courseID).Msg("failed to list upcoming assignments")
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "upcoming assignments retrieved", assignments)
}

func (h *CourseHandler) twoStageView(c *fiber.Ctx) error {
	view, err := h.service.TwoStageView(c.UserContext())
	if err != nil {
		status, message := statusFromGatewayError(err)
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build two-stage view")
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "two-stage data retrieved", view)
}
