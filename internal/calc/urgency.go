package calc

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/dukerupert/moveready/internal/model"
)

type Urgency string

const (
	UrgencyDone     Urgency = "done"
	UrgencyCritical Urgency = "critical"
	UrgencyWarning  Urgency = "warning"
	UrgencyOK       Urgency = "ok"
)

// WarningDays is the horizon under which an open task becomes a warning.
const WarningDays = 7

const defaultOffsetDays = -30

var offsetDays = map[model.AdminCategory]int{
	model.AdminEnergy:   -7,
	model.AdminInternet: -14,
	model.AdminHousing:  -30,
}

// OffsetDays returns how many days before the moving date a task of the
// given category is due.
func OffsetDays(c model.AdminCategory) int {
	if d, ok := offsetDays[c]; ok {
		return d
	}
	return defaultOffsetDays
}

// ParseDate parses an ISO date (2006-01-02) at midnight in loc. Full
// RFC 3339 timestamps are accepted as-is.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t.In(loc), nil
}

// Deadline returns the due date of a task: its manual date when set,
// otherwise the moving date shifted by the category offset. ok is false
// when neither is available.
func Deadline(task model.AdminTask, movingDate string, loc *time.Location) (time.Time, bool) {
	if task.ManualDate != "" {
		if t, err := ParseDate(task.ManualDate, loc); err == nil {
			return t, true
		}
	}
	if movingDate == "" {
		return time.Time{}, false
	}
	move, err := ParseDate(movingDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return move.AddDate(0, 0, OffsetDays(task.Category)), true
}

// DaysLeft is ceil((deadline - now) / 24h).
func DaysLeft(deadline, now time.Time) int {
	return int(math.Ceil(deadline.Sub(now).Hours() / 24))
}

// TaskUrgency is an admin task with its derived deadline state.
type TaskUrgency struct {
	model.AdminTask
	Deadline *time.Time `json:"deadline,omitempty"`
	DaysLeft *int       `json:"daysLeft,omitempty"`
	Urgency  Urgency    `json:"urgency"`
}

// ClassifyTask computes the deadline and urgency of one task.
func ClassifyTask(task model.AdminTask, movingDate string, now time.Time) TaskUrgency {
	tu := TaskUrgency{AdminTask: task, Urgency: UrgencyOK}
	if d, ok := Deadline(task, movingDate, now.Location()); ok {
		days := DaysLeft(d, now)
		tu.Deadline = &d
		tu.DaysLeft = &days
		switch {
		case days < 0:
			tu.Urgency = UrgencyCritical
		case days < WarningDays:
			tu.Urgency = UrgencyWarning
		}
	}
	if task.Status == model.StatusDone {
		tu.Urgency = UrgencyDone
	}
	return tu
}

// ClassifyTasks classifies every task and returns them in display order.
func ClassifyTasks(tasks []model.AdminTask, movingDate string, now time.Time) []TaskUrgency {
	out := make([]TaskUrgency, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ClassifyTask(t, movingDate, now))
	}
	SortTasks(out)
	return out
}

// SortTasks orders tasks for display: done tasks last, open tasks by
// ascending days left, undated open tasks after dated ones. Ties keep
// their input order.
func SortTasks(ts []TaskUrgency) {
	slices.SortStableFunc(ts, func(a, b TaskUrgency) int {
		aDone, bDone := a.Urgency == UrgencyDone, b.Urgency == UrgencyDone
		switch {
		case aDone && bDone:
			return 0
		case aDone:
			return 1
		case bDone:
			return -1
		}
		switch {
		case a.DaysLeft == nil && b.DaysLeft == nil:
			return 0
		case a.DaysLeft == nil:
			return 1
		case b.DaysLeft == nil:
			return -1
		}
		return *a.DaysLeft - *b.DaysLeft
	})
}
