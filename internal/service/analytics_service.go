package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/useglide/glide/internal/analytics"
	"github.com/useglide/glide/pkg/canvas"
)

// DefaultStudyPlanWindowDays bounds the "upcoming" window when the
// caller does not supply one.
const DefaultStudyPlanWindowDays = 14

// AnalyticsService exposes the performance analysis and study plan
// engine to the transport layer.
type AnalyticsService interface {
	GeneratePerformanceReport(ctx context.Context, courseID int64) (analytics.PerformanceReport, error)
	GenerateStudyPlan(ctx context.Context, courseID int64, daysAhead int) (analytics.StudyPlan, error)
	AnalyzeAssignment(ctx context.Context, courseID, assignmentID int64) (analytics.AssignmentAnalysis, error)
}

type analyticsService struct {
	gateway  analytics.Gateway
	analyzer *analytics.Analyzer
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAnalyticsService builds the analytics engine over the given LMS
// gateway. Results are computed fresh per call; nothing is cached.
func NewAnalyticsService(gateway analytics.Gateway, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		gateway:  gateway,
		analyzer: analytics.NewAnalyzer(gateway, logger),
		logger:   logger.With().Str("component", "analytics_service").Logger(),
		now:      time.Now,
	}
}

func (s *analyticsService) GeneratePerformanceReport(ctx context.Context, courseID int64) (analytics.PerformanceReport, error) {
	return s.analyzer.Analyze(ctx, courseID)
}

func (s *analyticsService) GenerateStudyPlan(ctx context.Context, courseID int64, daysAhead int) (analytics.StudyPlan, error) {
	if daysAhead <= 0 {
		daysAhead = DefaultStudyPlanWindowDays
	}

	report, err := s.analyzer.Analyze(ctx, courseID)
	if err != nil {
		return analytics.StudyPlan{}, err
	}

	now := s.now()
	trail := report.Sources
	var prioritized []analytics.PrioritizedAssignment

	assignments, err := s.gateway.GetAssignments(ctx, courseID)
	switch {
	case err != nil && !canvas.IsRecoverable(err):
		return analytics.StudyPlan{}, err
	case err != nil:
		s.logger.Warn().Err(err).Int64("course_id", courseID).Msg("assignment fetch failed for study plan")
		trail.Fail(analytics.SourcePrioritization, err)
	default:
		upcoming := analytics.FilterUpcoming(assignments, now, daysAhead)

		groups, groupsErr := s.gateway.GetAssignmentGroups(ctx, courseID)
		switch {
		case groupsErr != nil && !canvas.IsRecoverable(groupsErr):
			return analytics.StudyPlan{}, groupsErr
		case groupsErr != nil:
			s.logger.Warn().Err(groupsErr).Int64("course_id", courseID).Msg("group fetch failed, ordering by due date only")
			trail.Fail(analytics.SourcePrioritization, groupsErr)
			prioritized = analytics.Prioritize(upcoming, nil, now)
		default:
			prioritized = analytics.Prioritize(upcoming, groups, now)
			trail.Succeed(analytics.SourcePrioritization)
		}
	}

	return analytics.BuildPlan(report, prioritized, trail), nil
}

func (s *analyticsService) AnalyzeAssignment(ctx context.Context, courseID, assignmentID int64) (analytics.AssignmentAnalysis, error) {
	assignment, err := s.gateway.GetAssignment(ctx, courseID, assignmentID)
	if err != nil {
		return analytics.AssignmentAnalysis{}, fmt.Errorf("fetch assignment %d: %w", assignmentID, err)
	}

	submission, err := s.gateway.GetStudentSubmission(ctx, courseID, assignmentID)
	if err != nil {
		return analytics.AssignmentAnalysis{}, fmt.Errorf("fetch student submission for assignment %d: %w", assignmentID, err)
	}

	classSubmissions, err := s.gateway.GetSubmissions(ctx, courseID, assignmentID)
	if err != nil {
		return analytics.AssignmentAnalysis{}, fmt.Errorf("fetch class submissions for assignment %d: %w", assignmentID, err)
	}

	var scores []float64
	for _, sub := range classSubmissions {
		if sub.Score != nil {
			scores = append(scores, *sub.Score)
		}
	}

	analysis := analytics.AssignmentAnalysis{
		AssignmentID:   assignment.ID,
		AssignmentName: assignment.Name,
		PointsPossible: assignment.PointsPossible,
		StudentScore:   submission.Score,
		SubmissionDate: submission.SubmittedAt,
		Late:           submission.Late,
	}

	if len(scores) > 0 {
		average := analytics.Mean(scores)
		median := analytics.Median(scores)
		analysis.ClassAverage = &average
		analysis.ClassMedian = &median
		if stddev, ok := analytics.StdDev(scores); ok {
			analysis.ClassStdDev = &stddev
		}
		if submission.Score != nil {
			percentile := analytics.PercentileRank(*submission.Score, scores)
			analysis.Percentile = &percentile
		}
	}

	return analysis, nil
}
