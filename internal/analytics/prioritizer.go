package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/useglide/glide/pkg/canvas"
)

// fallbackGroupName labels assignments whose group cannot be resolved.
const fallbackGroupName = "Other"

// PrioritizedAssignment is an upcoming assignment annotated with its
// urgency score. Lower priority values are more urgent; assignments
// without a due date carry +Inf and sort last.
type PrioritizedAssignment struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	DueDate        *time.Time `json:"due_date"`
	PointsPossible *float64   `json:"points_possible"`
	Group          string     `json:"group"`
	Weight         float64    `json:"weight"`
	Priority       float64    `json:"priority"`
}

// FilterUpcoming returns the assignments due within the window
// [now, now+days]. Assignments without a due date are excluded from the
// upcoming view.
func FilterUpcoming(assignments []canvas.Assignment, now time.Time, days int) []canvas.Assignment {
	cutoff := now.AddDate(0, 0, days)
	upcoming := make([]canvas.Assignment, 0, len(assignments))
	for _, assignment := range assignments {
		if assignment.DueAt == nil {
			continue
		}
		due := *assignment.DueAt
		if !due.Before(now) && !due.After(cutoff) {
			upcoming = append(upcoming, assignment)
		}
	}
	return upcoming
}

// Prioritize scores and orders assignments by urgency. An assignment due
// sooner or belonging to a heavier-weighted group sorts earlier. When
// groups is nil the ordering degrades to due date alone, with missing
// due dates last; no assignment is ever dropped.
func Prioritize(assignments []canvas.Assignment, groups []canvas.AssignmentGroup, now time.Time) []PrioritizedAssignment {
	groupByID := make(map[int64]canvas.AssignmentGroup, len(groups))
	for _, group := range groups {
		groupByID[group.ID] = group
	}

	prioritized := make([]PrioritizedAssignment, 0, len(assignments))
	for _, assignment := range assignments {
		item := PrioritizedAssignment{
			ID:             assignment.ID,
			Name:           assignment.Name,
			DueDate:        assignment.DueAt,
			PointsPossible: assignment.PointsPossible,
			Group:          fallbackGroupName,
		}
		if assignment.AssignmentGroupID != nil {
			if group, ok := groupByID[*assignment.AssignmentGroupID]; ok {
				item.Group = group.Name
				item.Weight = group.GroupWeight
			}
		}
		item.Priority = priorityScore(assignment.DueAt, item.Weight, now)
		prioritized = append(prioritized, item)
	}

	if groups == nil {
		sortByDueDate(prioritized)
		return prioritized
	}

	sort.SliceStable(prioritized, func(i, j int) bool {
		a, b := prioritized[i], prioritized[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		// Equal scores: break ties on the earlier due date, then on the
		// heavier group. Two same-day zero-distance assignments would
		// otherwise sort arbitrarily.
		switch {
		case a.DueDate == nil || b.DueDate == nil:
			return a.DueDate != nil && b.DueDate == nil
		case !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
		return a.Weight > b.Weight
	})
	return prioritized
}

// priorityScore implements days_until_due / (weight + 0.1). The 0.1
// keeps the score defined for zero-weight groups while still letting
// weight compress it. The constant is ad hoc; any rescoring effort
// should replace it rather than tune around it.
func priorityScore(due *time.Time, weight float64, now time.Time) float64 {
	if due == nil {
		return math.Inf(1)
	}
	days := int(due.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return float64(days) / (weight + 0.1)
}

func sortByDueDate(items []PrioritizedAssignment) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.DueDate == nil || b.DueDate == nil:
			return a.DueDate != nil && b.DueDate == nil
		}
		return a.DueDate.Before(*b.DueDate)
	})
}
