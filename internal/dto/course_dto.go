package dto

import "github.com/useglide/glide/pkg/canvas"

// CourseWithAssignments pairs a course with its assignment list for the
// two-stage view. Error is set when the course's assignment fetch
// failed; the course itself is still reported.
type CourseWithAssignments struct {
	canvas.Course
	Assignments []canvas.Assignment `json:"assignments"`
	Error       string              `json:"error,omitempty"`
}

// TwoStageView is the combined courses-and-assignments response.
type TwoStageView struct {
	Courses []CourseWithAssignments `json:"courses"`
}

// SyllabusResponse carries a course's sanitized syllabus HTML.
type SyllabusResponse struct {
	CourseID int64  `json:"course_id"`
	Syllabus string `json:"syllabus"`
}

// StudyPlanQuery holds the validated study plan query parameters.
type StudyPlanQuery struct {
	DaysAhead int `validate:"gte=1,lte=120"`
}

// UpcomingQuery holds the validated upcoming-assignments window.
type UpcomingQuery struct {
	Days int `validate:"gte=1,lte=365"`
}
