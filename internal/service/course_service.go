package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/useglide/glide/internal/analytics"
	"github.com/useglide/glide/internal/dto"
	"github.com/useglide/glide/pkg/canvas"
)

const (
	coursesCacheKey  = "glide:courses"
	twoStageCacheKey = "glide:courses:two_stage"
)

// CourseService surfaces course and assignment views fetched from the
// LMS gateway. Listing views are cached; everything else is fetched
// fresh.
type CourseService interface {
	ListCourses(ctx context.Context) ([]canvas.Course, error)
	GetCourse(ctx context.Context, courseID int64) (canvas.Course, error)
	GetSyllabus(ctx context.Context, courseID int64) (dto.SyllabusResponse, error)
	ListAssignments(ctx context.Context, courseID int64) ([]canvas.Assignment, error)
	UpcomingAssignments(ctx context.Context, courseID int64, days int) ([]canvas.Assignment, error)
	TwoStageView(ctx context.Context) (dto.TwoStageView, error)
}

type courseService struct {
	gateway   analytics.Gateway
	cache     *redis.Client
	cacheTTL  time.Duration
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCourseService builds the course view service.
func NewCourseService(gateway analytics.Gateway, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) CourseService {
	return &courseService{
		gateway:   gateway,
		cache:     cache,
		cacheTTL:  ttl,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "course_service").Logger(),
		now:       time.Now,
	}
}

func (s *courseService) ListCourses(ctx context.Context) ([]canvas.Course, error) {
	var cached []canvas.Course
	if s.readCache(ctx, coursesCacheKey, &cached) {
		return cached, nil
	}

	courses, err := s.gateway.GetCourses(ctx)
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, coursesCacheKey, courses)
	return courses, nil
}

func (s *courseService) GetCourse(ctx context.Context, courseID int64) (canvas.Course, error) {
	return s.gateway.GetCourse(ctx, courseID)
}

func (s *courseService) GetSyllabus(ctx context.Context, courseID int64) (dto.SyllabusResponse, error) {
	course, err := s.gateway.GetCourse(ctx, courseID)
	if err != nil {
		return dto.SyllabusResponse{}, err
	}

	return dto.SyllabusResponse{
		CourseID: courseID,
		Syllabus: s.sanitizer.Sanitize(course.SyllabusBody),
	}, nil
}

func (s *courseService) ListAssignments(ctx context.Context, courseID int64) ([]canvas.Assignment, error) {
	return s.gateway.GetAssignments(ctx, courseID)
}

func (s *courseService) UpcomingAssignments(ctx context.Context, courseID int64, days int) ([]canvas.Assignment, error) {
	assignments, err := s.gateway.GetAssignments(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return analytics.FilterUpcoming(assignments, s.now(), days), nil
}

// TwoStageView fetches the course list and then every course's
// assignments, fanned out concurrently. A course whose assignment fetch
// fails is still listed with an error note instead of sinking the whole
// view.
func (s *courseService) TwoStageView(ctx context.Context) (dto.TwoStageView, error) {
	var cached dto.TwoStageView
	if s.readCache(ctx, twoStageCacheKey, &cached) {
		return cached, nil
	}

	courses, err := s.gateway.GetCourses(ctx)
	if err != nil {
		return dto.TwoStageView{}, err
	}

	view := dto.TwoStageView{Courses: make([]dto.CourseWithAssignments, len(courses))}
	var wg sync.WaitGroup
	for i, course := range courses {
		view.Courses[i] = dto.CourseWithAssignments{Course: course, Assignments: []canvas.Assignment{}}

		wg.Add(1)
		go func(i int, courseID int64) {
			defer wg.Done()
			assignments, err := s.gateway.GetAssignments(ctx, courseID)
			if err != nil {
				s.logger.Warn().Err(err).Int64("course_id", courseID).Msg("assignment fetch failed in two-stage view")
				view.Courses[i].Error = fmt.Sprintf("assignments unavailable: %v", err)
				return
			}
			view.Courses[i].Assignments = assignments
		}(i, course.ID)
	}
	wg.Wait()

	s.writeCache(ctx, twoStageCacheKey, view)
	return view, nil
}

func (s *courseService) readCache(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}

	payload, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read cache")
		}
		return false
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false
	}

	s.logger.Debug().Str("key", key).Msg("cache hit")
	return true
}

func (s *courseService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store cache")
	}
}
