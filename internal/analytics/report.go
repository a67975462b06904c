package analytics

import "strings"

// Source identifies one of the independently fetched data sources that
// feed an analysis.
type Source string

const (
	SourceCourse         Source = "course"
	SourceGrades         Source = "grades"
	SourceAssignments    Source = "assignments"
	SourceSubmissions    Source = "submissions"
	SourceGroups         Source = "assignment_groups"
	SourcePrioritization Source = "prioritization"
	SourcePlan           Source = "study_plan"
)

// SourceStatus records whether a single data source was fetched
// successfully. Detail carries the failure cause when OK is false.
type SourceStatus struct {
	Source Source `json:"source"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// SourceTrail accumulates per-source outcomes during one analysis.
// Callers branch on specific sources programmatically; Narrative derives
// the human-readable account from the same data.
type SourceTrail struct {
	Statuses []SourceStatus `json:"statuses"`
	Notes    []string       `json:"notes,omitempty"`
}

// Succeed records a successful fetch of the given source.
func (t *SourceTrail) Succeed(source Source) {
	t.Statuses = append(t.Statuses, SourceStatus{Source: source, OK: true})
}

// Fail records a failed fetch of the given source.
func (t *SourceTrail) Fail(source Source, err error) {
	status := SourceStatus{Source: source}
	if err != nil {
		status.Detail = err.Error()
	}
	t.Statuses = append(t.Statuses, status)
}

// Note appends a free-form observation to the trail.
func (t *SourceTrail) Note(text string) {
	t.Notes = append(t.Notes, text)
}

// OK reports whether the source was fetched successfully. A source that
// was never attempted is not OK.
func (t SourceTrail) OK(source Source) bool {
	for _, status := range t.Statuses {
		if status.Source == source {
			return status.OK
		}
	}
	return false
}

// Failed reports whether the source was attempted and failed.
func (t SourceTrail) Failed(source Source) bool {
	for _, status := range t.Statuses {
		if status.Source == source {
			return !status.OK
		}
	}
	return false
}

var sourceSentences = map[Source][2]string{
	SourceCourse:         {"Basic course information retrieved successfully", "Could not retrieve course information"},
	SourceGrades:         {"Grade information retrieved successfully", "Could not retrieve grade information"},
	SourceAssignments:    {"Assignment information retrieved successfully", "Could not retrieve assignment information"},
	SourceSubmissions:    {"Submission information retrieved successfully", "Could not retrieve submission information"},
	SourceGroups:         {"Detailed performance analysis completed", "Could not complete detailed analysis"},
	SourcePrioritization: {"Assignment prioritization completed", "Could not prioritize assignments"},
	SourcePlan:           {"Study plan generated successfully", "Could not generate study plan"},
}

// Narrative renders the trail as the accumulated status message shown to
// end users.
func (t SourceTrail) Narrative() string {
	sentences := make([]string, 0, len(t.Statuses)+len(t.Notes))
	for _, status := range t.Statuses {
		templates, known := sourceSentences[status.Source]
		if !known {
			continue
		}
		if status.OK {
			sentences = append(sentences, templates[0])
			continue
		}
		sentence := templates[1]
		if status.Detail != "" {
			sentence += ": " + status.Detail
		}
		sentences = append(sentences, sentence)
	}
	sentences = append(sentences, t.Notes...)
	return strings.Join(sentences, ". ")
}

// GroupStat summarises a student's graded work within one assignment
// group.
type GroupStat struct {
	AverageScore    float64 `json:"average_score"`
	SubmissionCount int     `json:"submissions_count"`
	Weight          float64 `json:"weight"`
}

// PerformanceReport is the best-effort outcome of analysing one course.
// Pointer fields are nil when the underlying data source was unavailable
// or the statistic is undefined; the trail explains which and why.
type PerformanceReport struct {
	CourseID                 int64                `json:"course_id"`
	CourseName               string               `json:"course_name"`
	CurrentGrade             *string              `json:"current_grade"`
	TotalAssignments         int                  `json:"total_assignments"`
	GradedAssignments        int                  `json:"graded_assignments"`
	AverageScore             *float64             `json:"average_score,omitempty"`
	MedianScore              *float64             `json:"median_score,omitempty"`
	ScoreStdDev              *float64             `json:"score_std_dev,omitempty"`
	GroupStatistics          map[string]GroupStat `json:"group_statistics,omitempty"`
	Strengths                []string             `json:"strengths"`
	Weaknesses               []string             `json:"weaknesses"`
	UpcomingAssignmentsCount *int                 `json:"upcoming_assignments_count,omitempty"`
	Sources                  SourceTrail          `json:"sources"`
	Message                  string               `json:"message"`
}
