package analytics

import "time"

// AssignmentAnalysis compares the student's score on one assignment
// against the rest of the class. Nil fields mean the statistic was not
// computable from the available scores.
type AssignmentAnalysis struct {
	AssignmentID   int64      `json:"assignment_id"`
	AssignmentName string     `json:"assignment_name"`
	PointsPossible *float64   `json:"points_possible"`
	StudentScore   *float64   `json:"student_score"`
	SubmissionDate *time.Time `json:"submission_date"`
	Late           bool       `json:"late"`
	ClassAverage   *float64   `json:"class_average"`
	ClassMedian    *float64   `json:"class_median"`
	ClassStdDev    *float64   `json:"class_std_dev"`
	Percentile     *float64   `json:"percentile"`
}
