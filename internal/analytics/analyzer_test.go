package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/useglide/glide/pkg/canvas"
)

type fakeGateway struct {
	courses        []canvas.Course
	coursesErr     error
	course         canvas.Course
	courseErr      error
	grades         canvas.Course
	gradesErr      error
	assignments    []canvas.Assignment
	assignmentsErr error
	assignment     canvas.Assignment
	assignmentErr  error
	submissions    []canvas.Submission
	submissionsErr error
	submission     canvas.Submission
	submissionErr  error
	classSubs      []canvas.Submission
	classSubsErr   error
	groups         []canvas.AssignmentGroup
	groupsErr      error
}

func (f *fakeGateway) GetCourses(context.Context) ([]canvas.Course, error) {
	return f.courses, f.coursesErr
}

func (f *fakeGateway) GetCourse(context.Context, int64) (canvas.Course, error) {
	return f.course, f.courseErr
}

func (f *fakeGateway) GetCourseGrades(context.Context, int64) (canvas.Course, error) {
	return f.grades, f.gradesErr
}

func (f *fakeGateway) GetAssignments(context.Context, int64) ([]canvas.Assignment, error) {
	return f.assignments, f.assignmentsErr
}

func (f *fakeGateway) GetAssignment(context.Context, int64, int64) (canvas.Assignment, error) {
	return f.assignment, f.assignmentErr
}

func (f *fakeGateway) GetSubmissions(context.Context, int64, int64) ([]canvas.Submission, error) {
	return f.classSubs, f.classSubsErr
}

func (f *fakeGateway) GetStudentSubmission(context.Context, int64, int64) (canvas.Submission, error) {
	return f.submission, f.submissionErr
}

func (f *fakeGateway) GetStudentSubmissionsForCourse(context.Context, int64) ([]canvas.Submission, error) {
	return f.submissions, f.submissionsErr
}

func (f *fakeGateway) GetAssignmentGroups(context.Context, int64) ([]canvas.AssignmentGroup, error) {
	return f.groups, f.groupsErr
}

func biologyGateway() *fakeGateway {
	labs := int64(10)
	exams := int64(20)

	return &fakeGateway{
		course: canvas.Course{ID: 42, Name: "Biology 101"},
		grades: canvas.Course{
			ID:          42,
			Enrollments: []canvas.Enrollment{{Type: "student", CurrentGrade: stringPointer("B")}},
		},
		assignments: []canvas.Assignment{
			{ID: 1, Name: "Lab 1", AssignmentGroupID: &labs},
			{ID: 2, Name: "Lab 2", AssignmentGroupID: &labs},
			{ID: 3, Name: "Lab 3", AssignmentGroupID: &labs},
			{ID: 4, Name: "Midterm", AssignmentGroupID: &exams},
		},
		submissions: []canvas.Submission{
			{AssignmentID: 1, Score: floatPointer(70), Assignment: &canvas.Assignment{ID: 1, AssignmentGroupID: &labs}},
			{AssignmentID: 2, Score: floatPointer(80), Assignment: &canvas.Assignment{ID: 2, AssignmentGroupID: &labs}},
			{AssignmentID: 3, Score: floatPointer(90), Assignment: &canvas.Assignment{ID: 3, AssignmentGroupID: &labs}},
			{AssignmentID: 4, Score: floatPointer(60), Assignment: &canvas.Assignment{ID: 4, AssignmentGroupID: &exams}},
		},
		groups: []canvas.AssignmentGroup{
			{ID: 10, Name: "Labs", GroupWeight: 30},
			{ID: 20, Name: "Exams", GroupWeight: 70},
		},
	}
}

func TestAnalyzeFullCourse(t *testing.T) {
	gw := biologyGateway()
	analyzer := NewAnalyzer(gw, zerolog.Nop())

	report, err := analyzer.Analyze(context.Background(), 42)
	require.NoError(t, err)

	require.Equal(t, int64(42), report.CourseID)
	require.Equal(t, "Biology 101", report.CourseName)
	require.NotNil(t, report.CurrentGrade)
	require.Equal(t, "B", *report.CurrentGrade)
	require.Equal(t, 4, report.TotalAssignments)
	require.Equal(t, 4, report.GradedAssignments)

	require.NotNil(t, report.AverageScore)
	require.InDelta(t, 75.0, *report.AverageScore, 0.0001)
	require.NotNil(t, report.MedianScore)
	require.InDelta(t, 75.0, *report.MedianScore, 0.0001)
	require.NotNil(t, report.ScoreStdDev)

	require.Len(t, report.GroupStatistics, 2)
	require.InDelta(t, 80.0, report.GroupStatistics["Labs"].AverageScore, 0.0001)
	require.Equal(t, 3, report.GroupStatistics["Labs"].SubmissionCount)
	require.InDelta(t, 30.0, report.GroupStatistics["Labs"].Weight, 0.0001)
	require.InDelta(t, 60.0, report.GroupStatistics["Exams"].AverageScore, 0.0001)

	require.Equal(t, []string{"Labs"}, report.Strengths)
	require.Equal(t, []string{"Exams"}, report.Weaknesses)
	require.Contains(t, report.Message, "Detailed performance analysis completed")
}

func TestAnalyzeCourseFetchIsFatal(t *testing.T) {
	gw := biologyGateway()
	gw.courseErr = &canvas.APIError{StatusCode: 404, Endpoint: "/api/v1/courses/42"}

	analyzer := NewAnalyzer(gw, zerolog.Nop())
	_, err := analyzer.Analyze(context.Background(), 42)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrCourseUnavailable)
	require.ErrorIs(t, err, canvas.ErrNotFound)
}

func TestAnalyzeToleratesEachSecondaryFailure(t *testing.T) {
	cases := map[string]func(*fakeGateway){
		"grades":      func(gw *fakeGateway) { gw.gradesErr = &canvas.APIError{StatusCode: 503} },
		"assignments": func(gw *fakeGateway) { gw.assignmentsErr = &canvas.APIError{StatusCode: 503} },
		"submissions": func(gw *fakeGateway) { gw.submissionsErr = &canvas.APIError{StatusCode: 503} },
		"groups":      func(gw *fakeGateway) { gw.groupsErr = &canvas.APIError{StatusCode: 503} },
	}

	for name, inject := range cases {
		t.Run(name, func(t *testing.T) {
			gw := biologyGateway()
			inject(gw)

			analyzer := NewAnalyzer(gw, zerolog.Nop())
			report, err := analyzer.Analyze(context.Background(), 42)
			require.NoError(t, err)
			require.Equal(t, "Biology 101", report.CourseName)
			require.Contains(t, report.Message, "Could not")
		})
	}
}

func TestAnalyzeGroupsFailureOmitsClassification(t *testing.T) {
	gw := biologyGateway()
	gw.groupsErr = &canvas.APIError{StatusCode: 503}

	analyzer := NewAnalyzer(gw, zerolog.Nop())
	analyzer.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	report, err := analyzer.Analyze(context.Background(), 42)
	require.NoError(t, err)

	require.Empty(t, report.GroupStatistics)
	require.Empty(t, report.Strengths)
	require.Empty(t, report.Weaknesses)
	require.True(t, report.Sources.Failed(SourceGroups))

	// Statistics that do not depend on groups survive.
	require.NotNil(t, report.AverageScore)
	require.InDelta(t, 75.0, *report.AverageScore, 0.0001)

	// The forward-looking fallback still reports upcoming work.
	require.NotNil(t, report.UpcomingAssignmentsCount)
}

func TestAnalyzeSubmissionsFailureFallsBackToUpcomingCount(t *testing.T) {
	future := time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC)
	gw := biologyGateway()
	gw.submissionsErr = &canvas.APIError{StatusCode: 503}
	gw.assignments[0].DueAt = &future
	gw.assignments[1].DueAt = &future

	analyzer := NewAnalyzer(gw, zerolog.Nop())
	analyzer.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	report, err := analyzer.Analyze(context.Background(), 42)
	require.NoError(t, err)

	require.Nil(t, report.AverageScore)
	require.Zero(t, report.GradedAssignments)
	require.NotNil(t, report.UpcomingAssignmentsCount)
	require.Equal(t, 2, *report.UpcomingAssignmentsCount)
	require.Contains(t, report.Message, "Found 2 upcoming assignments")
}

func TestAnalyzeNonRecoverableFailurePropagates(t *testing.T) {
	gw := biologyGateway()
	gw.assignmentsErr = &canvas.APIError{StatusCode: 422, Endpoint: "/assignments"}

	analyzer := NewAnalyzer(gw, zerolog.Nop())
	_, err := analyzer.Analyze(context.Background(), 42)
	require.Error(t, err)
}

func TestAnalyzeStrengthsAndWeaknessesDisjoint(t *testing.T) {
	gw := biologyGateway()
	analyzer := NewAnalyzer(gw, zerolog.Nop())

	report, err := analyzer.Analyze(context.Background(), 42)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, name := range report.Strengths {
		seen[name] = true
	}
	for _, name := range report.Weaknesses {
		require.False(t, seen[name], "group %q classified as both strength and weakness", name)
	}
}

func TestAnalyzeGroupWithoutGradedSubmissionsUnclassified(t *testing.T) {
	gw := biologyGateway()
	gw.groups = append(gw.groups, canvas.AssignmentGroup{ID: 30, Name: "Projects", GroupWeight: 10})

	analyzer := NewAnalyzer(gw, zerolog.Nop())
	report, err := analyzer.Analyze(context.Background(), 42)
	require.NoError(t, err)

	require.NotContains(t, report.GroupStatistics, "Projects")
	require.NotContains(t, report.Strengths, "Projects")
	require.NotContains(t, report.Weaknesses, "Projects")
}

func TestAnalyzeNoGradedSubmissions(t *testing.T) {
	gw := biologyGateway()
	gw.submissions = []canvas.Submission{{AssignmentID: 1}}

	analyzer := NewAnalyzer(gw, zerolog.Nop())
	report, err := analyzer.Analyze(context.Background(), 42)
	require.NoError(t, err)

	require.Zero(t, report.GradedAssignments)
	require.Nil(t, report.AverageScore)
	require.Nil(t, report.ScoreStdDev)
	require.Contains(t, report.Message, "No graded assignments found for detailed analysis")
}

func TestSourceTrailNarrative(t *testing.T) {
	var trail SourceTrail
	trail.Succeed(SourceCourse)
	trail.Fail(SourceSubmissions, &canvas.APIError{StatusCode: 401, Endpoint: "/submissions"})
	trail.Note("Found 3 upcoming assignments")

	require.True(t, trail.OK(SourceCourse))
	require.True(t, trail.Failed(SourceSubmissions))
	require.False(t, trail.OK(SourceGroups))
	require.False(t, trail.Failed(SourceGroups))

	narrative := trail.Narrative()
	require.Contains(t, narrative, "Basic course information retrieved successfully")
	require.Contains(t, narrative, "Could not retrieve submission information")
	require.Contains(t, narrative, "Found 3 upcoming assignments")
}
