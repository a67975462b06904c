package analytics

import "fmt"

// Priority labels used across focus areas and recommendations.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
)

// Recommendation categories.
const (
	RecommendationAssignmentPrep     = "assignment_prep"
	RecommendationSkillImprovement   = "skill_improvement"
	RecommendationGeneralImprovement = "general_improvement"
)

// FocusArea is a weakness group cross-referenced with upcoming work.
type FocusArea struct {
	Area                string `json:"area"`
	Reason              string `json:"reason"`
	UpcomingAssignments int    `json:"upcoming_assignments"`
	Priority            string `json:"priority"`
}

// Recommendation is a single ranked study suggestion.
type Recommendation struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// StudyPlan combines a performance report with prioritized upcoming work
// into a single recommendation object.
type StudyPlan struct {
	CourseID            int64                   `json:"course_id"`
	CourseName          string                  `json:"course_name"`
	CurrentGrade        *string                 `json:"current_grade"`
	Strengths           []string                `json:"strengths"`
	Weaknesses          []string                `json:"weaknesses"`
	UpcomingAssignments []PrioritizedAssignment `json:"upcoming_assignments"`
	FocusAreas          []FocusArea             `json:"focus_areas"`
	Recommendations     []Recommendation        `json:"recommendations"`
	Sources             SourceTrail             `json:"sources"`
	Message             string                  `json:"message"`
}

// BuildPlan assembles a study plan from a performance report and the
// prioritized upcoming assignments. The trail argument carries the
// fetch outcomes accumulated so far; the plan appends its own.
func BuildPlan(report PerformanceReport, prioritized []PrioritizedAssignment, trail SourceTrail) StudyPlan {
	plan := StudyPlan{
		CourseID:            report.CourseID,
		CourseName:          report.CourseName,
		CurrentGrade:        report.CurrentGrade,
		Strengths:           report.Strengths,
		Weaknesses:          report.Weaknesses,
		UpcomingAssignments: prioritized,
		FocusAreas:          []FocusArea{},
		Recommendations:     []Recommendation{},
		Sources:             trail,
	}
	if plan.Strengths == nil {
		plan.Strengths = []string{}
	}
	if plan.Weaknesses == nil {
		plan.Weaknesses = []string{}
	}
	if plan.UpcomingAssignments == nil {
		plan.UpcomingAssignments = []PrioritizedAssignment{}
	}

	upcomingByGroup := make(map[string]int, len(prioritized))
	for _, assignment := range prioritized {
		upcomingByGroup[assignment.Group]++
	}

	for _, weakness := range plan.Weaknesses {
		area := FocusArea{
			Area:                weakness,
			Reason:              fmt.Sprintf("Your performance in %s assignments is below your course average.", weakness),
			UpcomingAssignments: upcomingByGroup[weakness],
			Priority:            PriorityMedium,
		}
		if area.UpcomingAssignments > 0 {
			area.Priority = PriorityHigh
		}
		plan.FocusAreas = append(plan.FocusAreas, area)
	}

	if len(plan.UpcomingAssignments) > 0 {
		top := plan.UpcomingAssignments[0]
		description := fmt.Sprintf("Focus on preparing for %s", top.Name)
		if top.DueDate != nil {
			description += fmt.Sprintf(" due on %s", top.DueDate.Format("2006-01-02"))
		}
		plan.Recommendations = append(plan.Recommendations, Recommendation{
			Type:        RecommendationAssignmentPrep,
			Description: description,
			Priority:    PriorityHigh,
		})
	}

	for _, area := range plan.FocusAreas {
		plan.Recommendations = append(plan.Recommendations, Recommendation{
			Type:        RecommendationSkillImprovement,
			Description: fmt.Sprintf("Improve skills in %s", area.Area),
			Priority:    area.Priority,
		})
	}

	if len(plan.Recommendations) == 0 {
		if plan.CurrentGrade != nil {
			plan.Recommendations = append(plan.Recommendations,
				Recommendation{
					Type:        RecommendationGeneralImprovement,
					Description: "Review your current course materials and notes",
					Priority:    PriorityMedium,
				},
				Recommendation{
					Type:        RecommendationGeneralImprovement,
					Description: "Meet with your instructor during office hours to discuss improvement strategies",
					Priority:    PriorityHigh,
				},
			)
		} else {
			plan.Recommendations = append(plan.Recommendations,
				Recommendation{
					Type:        RecommendationGeneralImprovement,
					Description: "Review your course syllabus and upcoming assignments",
					Priority:    PriorityHigh,
				},
				Recommendation{
					Type:        RecommendationGeneralImprovement,
					Description: "Create a study schedule for this course",
					Priority:    PriorityMedium,
				},
			)
		}
	}

	plan.Sources.Succeed(SourcePlan)
	plan.Message = plan.Sources.Narrative()
	return plan
}
