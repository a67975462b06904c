package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/useglide/glide/pkg/canvas"
)

// ErrCourseUnavailable signals that the course itself could not be
// identified. Unlike every secondary data source, this fetch is load
// bearing: there is no report without a course identity.
var ErrCourseUnavailable = errors.New("course data unavailable")

// Gateway is the LMS collaborator the engine consumes. Every call is
// independently fallible.
type Gateway interface {
	GetCourses(ctx context.Context) ([]canvas.Course, error)
	GetCourse(ctx context.Context, courseID int64) (canvas.Course, error)
	GetCourseGrades(ctx context.Context, courseID int64) (canvas.Course, error)
	GetAssignments(ctx context.Context, courseID int64) ([]canvas.Assignment, error)
	GetAssignment(ctx context.Context, courseID, assignmentID int64) (canvas.Assignment, error)
	GetSubmissions(ctx context.Context, courseID, assignmentID int64) ([]canvas.Submission, error)
	GetStudentSubmission(ctx context.Context, courseID, assignmentID int64) (canvas.Submission, error)
	GetStudentSubmissionsForCourse(ctx context.Context, courseID int64) ([]canvas.Submission, error)
	GetAssignmentGroups(ctx context.Context, courseID int64) ([]canvas.AssignmentGroup, error)
}

// Analyzer aggregates a student's course records into a performance
// report. It holds no state between calls.
type Analyzer struct {
	gateway Gateway
	logger  zerolog.Logger
	now     func() time.Time
}

// NewAnalyzer builds an analyzer over the given gateway.
func NewAnalyzer(gateway Gateway, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		gateway: gateway,
		logger:  logger.With().Str("component", "performance_analyzer").Logger(),
		now:     time.Now,
	}
}

type secondaryFetches struct {
	grades          canvas.Course
	gradesErr       error
	assignments     []canvas.Assignment
	assignmentsErr  error
	submissions     []canvas.Submission
	submissionsErr  error
	groups          []canvas.AssignmentGroup
	groupsErr       error
}

// Analyze produces a best-effort performance report for one course. The
// course fetch failing is fatal; each of the four secondary fetches is
// independently tolerated, recorded in the report's source trail.
// Failures outside the gateway's documented fault classes propagate.
func (a *Analyzer) Analyze(ctx context.Context, courseID int64) (PerformanceReport, error) {
	course, err := a.gateway.GetCourse(ctx, courseID)
	if err != nil {
		return PerformanceReport{}, fmt.Errorf("%w: course %d: %w", ErrCourseUnavailable, courseID, err)
	}

	fetches := a.fetchSecondary(ctx, courseID)
	for _, fetchErr := range []error{fetches.gradesErr, fetches.assignmentsErr, fetches.submissionsErr, fetches.groupsErr} {
		if fetchErr != nil && !canvas.IsRecoverable(fetchErr) {
			return PerformanceReport{}, fetchErr
		}
	}

	report := PerformanceReport{
		CourseID:   courseID,
		CourseName: course.Name,
		Strengths:  []string{},
		Weaknesses: []string{},
	}
	report.Sources.Succeed(SourceCourse)

	if fetches.gradesErr != nil {
		a.logger.Warn().Err(fetches.gradesErr).Int64("course_id", courseID).Msg("grade fetch failed")
		report.Sources.Fail(SourceGrades, fetches.gradesErr)
	} else {
		report.CurrentGrade = fetches.grades.CurrentGrade()
		report.Sources.Succeed(SourceGrades)
	}

	if fetches.assignmentsErr != nil {
		a.logger.Warn().Err(fetches.assignmentsErr).Int64("course_id", courseID).Msg("assignment fetch failed")
		report.Sources.Fail(SourceAssignments, fetches.assignmentsErr)
	} else {
		report.TotalAssignments = len(fetches.assignments)
		report.Sources.Succeed(SourceAssignments)
	}

	var graded []canvas.Submission
	var scores []float64
	if fetches.submissionsErr != nil {
		a.logger.Warn().Err(fetches.submissionsErr).Int64("course_id", courseID).Msg("submission fetch failed")
		report.Sources.Fail(SourceSubmissions, fetches.submissionsErr)
	} else {
		for _, submission := range fetches.submissions {
			if submission.IsGraded() {
				graded = append(graded, submission)
				scores = append(scores, *submission.Score)
			}
		}
		report.GradedAssignments = len(graded)
		report.Sources.Succeed(SourceSubmissions)

		if len(scores) > 0 {
			average := Mean(scores)
			median := Median(scores)
			report.AverageScore = &average
			report.MedianScore = &median
			if stddev, ok := StdDev(scores); ok {
				report.ScoreStdDev = &stddev
			}
		}
	}

	groupAnalysisDone := false
	switch {
	case fetches.submissionsErr != nil:
		// Without submissions there is nothing to classify.
	case len(graded) == 0:
		report.Sources.Note("No graded assignments found for detailed analysis")
	case fetches.groupsErr != nil:
		a.logger.Warn().Err(fetches.groupsErr).Int64("course_id", courseID).Msg("assignment group fetch failed")
		report.Sources.Fail(SourceGroups, fetches.groupsErr)
	default:
		report.GroupStatistics = groupStatistics(graded, fetches.groups, fetches.assignments)
		average := Mean(scores)
		for name, stat := range report.GroupStatistics {
			if stat.AverageScore > average {
				report.Strengths = append(report.Strengths, name)
			} else {
				report.Weaknesses = append(report.Weaknesses, name)
			}
		}
		report.Sources.Succeed(SourceGroups)
		groupAnalysisDone = true
	}

	if !groupAnalysisDone && fetches.assignmentsErr == nil {
		now := a.now()
		upcoming := 0
		for _, assignment := range fetches.assignments {
			if assignment.DueAt != nil && assignment.DueAt.After(now) {
				upcoming++
			}
		}
		report.UpcomingAssignmentsCount = &upcoming
		if upcoming > 0 {
			report.Sources.Note(fmt.Sprintf("Found %d upcoming assignments", upcoming))
		}
	}

	report.Message = report.Sources.Narrative()
	return report, nil
}

func (a *Analyzer) fetchSecondary(ctx context.Context, courseID int64) secondaryFetches {
	var fetches secondaryFetches
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		fetches.grades, fetches.gradesErr = a.gateway.GetCourseGrades(ctx, courseID)
	}()
	go func() {
		defer wg.Done()
		fetches.assignments, fetches.assignmentsErr = a.gateway.GetAssignments(ctx, courseID)
	}()
	go func() {
		defer wg.Done()
		fetches.submissions, fetches.submissionsErr = a.gateway.GetStudentSubmissionsForCourse(ctx, courseID)
	}()
	go func() {
		defer wg.Done()
		fetches.groups, fetches.groupsErr = a.gateway.GetAssignmentGroups(ctx, courseID)
	}()

	wg.Wait()
	return fetches
}

// groupStatistics computes per-group averages over the graded
// submissions. Groups with no graded submissions are omitted, not
// defaulted: untouched work is not evidence of weakness.
func groupStatistics(graded []canvas.Submission, groups []canvas.AssignmentGroup, assignments []canvas.Assignment) map[string]GroupStat {
	assignmentGroupID := make(map[int64]int64, len(assignments))
	for _, assignment := range assignments {
		if assignment.AssignmentGroupID != nil {
			assignmentGroupID[assignment.ID] = *assignment.AssignmentGroupID
		}
	}

	scoresByGroup := make(map[int64][]float64)
	for _, submission := range graded {
		groupID, ok := resolveGroupID(submission, assignmentGroupID)
		if !ok {
			continue
		}
		scoresByGroup[groupID] = append(scoresByGroup[groupID], *submission.Score)
	}

	stats := make(map[string]GroupStat)
	for _, group := range groups {
		scores, ok := scoresByGroup[group.ID]
		if !ok || len(scores) == 0 {
			continue
		}
		stats[group.Name] = GroupStat{
			AverageScore:    Mean(scores),
			SubmissionCount: len(scores),
			Weight:          group.GroupWeight,
		}
	}
	return stats
}

func resolveGroupID(submission canvas.Submission, assignmentGroupID map[int64]int64) (int64, bool) {
	if submission.Assignment != nil && submission.Assignment.AssignmentGroupID != nil {
		return *submission.Assignment.AssignmentGroupID, true
	}
	groupID, ok := assignmentGroupID[submission.AssignmentID]
	return groupID, ok
}
