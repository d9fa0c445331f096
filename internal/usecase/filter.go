package usecase

import (
	"slices"
	"strings"

	"github.com/KarpovAlexandrGo/task-service/internal/entity"
)

const (
	SortDueDateAsc  = "dueDate:asc"
	SortDueDateDesc = "dueDate:desc"
)

// ListOptions shapes a task listing. Status is matched case-insensitively;
// an empty Status disables filtering. SortBy values other than
// SortDueDateAsc and SortDueDateDesc keep insertion order.
type ListOptions struct {
	Status string
	SortBy string
}

// ApplyListOptions filters and sorts a copy of tasks. Tasks without a due
// date always come last, in insertion order.
func ApplyListOptions(tasks []entity.Task, opts ListOptions) []entity.Task {
	out := make([]entity.Task, 0, len(tasks))
	want := entity.Status(strings.ToUpper(opts.Status))
	for _, t := range tasks {
		if opts.Status == "" || t.Status == want {
			out = append(out, t)
		}
	}

	switch opts.SortBy {
	case SortDueDateAsc:
		slices.SortStableFunc(out, func(a, b entity.Task) int { return compareDueDates(a, b, false) })
	case SortDueDateDesc:
		slices.SortStableFunc(out, func(a, b entity.Task) int { return compareDueDates(a, b, true) })
	}
	return out
}

func compareDueDates(a, b entity.Task, desc bool) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	if desc {
		return b.DueDate.Compare(*a.DueDate)
	}
	return a.DueDate.Compare(*b.DueDate)
}
