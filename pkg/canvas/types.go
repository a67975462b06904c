package canvas

import "time"

// Course is a course snapshot as returned by the Canvas API.
type Course struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	CourseCode   string       `json:"course_code"`
	SyllabusBody string       `json:"syllabus_body,omitempty"`
	Enrollments  []Enrollment `json:"enrollments,omitempty"`
}

// Enrollment carries the grade fields Canvas attaches to a course when
// total scores are requested.
type Enrollment struct {
	Type         string   `json:"type"`
	CurrentGrade *string  `json:"current_grade"`
	CurrentScore *float64 `json:"current_score"`
}

// CurrentGrade returns the first letter grade found across the course's
// enrollments, or nil when none is published.
func (c Course) CurrentGrade() *string {
	for _, enrollment := range c.Enrollments {
		if enrollment.CurrentGrade != nil {
			return enrollment.CurrentGrade
		}
	}
	return nil
}

// Assignment is a single graded or gradable item in a course.
type Assignment struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	PointsPossible    *float64   `json:"points_possible"`
	DueAt             *time.Time `json:"due_at"`
	AssignmentGroupID *int64     `json:"assignment_group_id"`
	HTMLURL           string     `json:"html_url,omitempty"`
}

// AssignmentGroup is a weighted category of assignments. A zero weight
// means the course does not use weighted grading for this group.
type AssignmentGroup struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	GroupWeight float64      `json:"group_weight"`
	Assignments []Assignment `json:"assignments,omitempty"`
}

// Submission is a student's submission for one assignment. Score is nil
// until the submission has been graded.
type Submission struct {
	ID           int64       `json:"id"`
	AssignmentID int64       `json:"assignment_id"`
	Score        *float64    `json:"score"`
	Grade        *string     `json:"grade"`
	SubmittedAt  *time.Time  `json:"submitted_at"`
	Late         bool        `json:"late"`
	Missing      bool        `json:"missing"`
	Assignment   *Assignment `json:"assignment,omitempty"`
}

// IsGraded reports whether the submission carries a numeric score.
func (s Submission) IsGraded() bool {
	return s.Score != nil
}
