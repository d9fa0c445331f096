package entity

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	HighPriorityWindow   = 7 // days
)

const (
	MsgTitleRequired         = "Title is required"
	MsgTitleNotString        = "Title must be a non-empty string"
	MsgTitleTooLong          = "Title must not exceed 200 characters"
	MsgDescriptionRequired   = "Description is required"
	MsgDescriptionNotString  = "Description must be a non-empty string"
	MsgDescriptionTooLong    = "Description must not exceed 1000 characters"
	MsgInvalidStatus         = "Invalid status value. Must be one of: TODO, IN_PROGRESS, COMPLETED"
	MsgInvalidPriority       = "Invalid priority value. Must be one of: LOW, MEDIUM, HIGH"
	MsgInvalidDueDate        = "Invalid due date format. Use ISO 8601 format (e.g., 2026-12-31)"
	MsgHighPriorityNoDueDate = "High priority tasks must have a due date"
	MsgHighPriorityTooFar    = "High priority tasks must have a due date within 7 days from today"
	MsgDueDateInPast         = "Due date cannot be in the past"
	MsgNoUpdateFields        = "At least one field (title, description, status, priority, or dueDate) must be provided"
	MsgTaskIDRequired        = "Task ID is required"
	MsgInvalidTaskID         = "Invalid task ID format"
)

// ValidationError is a client error carrying the message of the first rule
// that rejected the request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var validate = validator.New()

var (
	titleTag       = "max=" + strconv.Itoa(MaxTitleLength)
	descriptionTag = "max=" + strconv.Itoa(MaxDescriptionLength)
	statusTag      = "oneof=" + joinEnum(Statuses)
	priorityTag    = "oneof=" + joinEnum(Priorities)
)

type rule struct {
	fails   func() bool
	message string
}

func firstFailure(rules ...rule) error {
	for _, r := range rules {
		if r.fails() {
			return &ValidationError{Message: r.message}
		}
	}
	return nil
}

// ValidateCreate checks a create request. now supplies both the current day
// for the high priority window and the location of zoneless timestamps.
func ValidateCreate(in TaskInput, now time.Time) error {
	err := firstFailure(
		rule{func() bool { return !in.Title.Truthy() }, MsgTitleRequired},
		rule{func() bool { return blankString(in.Title) }, MsgTitleNotString},
		rule{func() bool { return exceeds(in.Title, titleTag) }, MsgTitleTooLong},
		rule{func() bool { return !in.Description.Truthy() }, MsgDescriptionRequired},
		rule{func() bool { return blankString(in.Description) }, MsgDescriptionNotString},
		rule{func() bool { return exceeds(in.Description, descriptionTag) }, MsgDescriptionTooLong},
		rule{func() bool { return in.Status.Truthy() && !inEnum(in.Status, statusTag) }, MsgInvalidStatus},
		rule{func() bool { return in.Priority.Truthy() && !inEnum(in.Priority, priorityTag) }, MsgInvalidPriority},
		rule{func() bool { return in.DueDate.Truthy() && !parses(in.DueDate, now) }, MsgInvalidDueDate},
	)
	if err != nil {
		return err
	}

	priority := PriorityMedium
	if in.Priority.Truthy() {
		s, _ := in.Priority.Str()
		priority = Priority(s)
	}
	if priority != PriorityHigh {
		return nil
	}
	return firstFailure(highPriorityRules(in.DueDate, now)...)
}

// ValidateUpdate checks the shape of a partial update. Omitted fields are
// skipped; null counts as supplied.
func ValidateUpdate(in TaskInput, now time.Time) error {
	return firstFailure(
		rule{func() bool { return noFields(in) }, MsgNoUpdateFields},
		rule{func() bool { return in.Title.Present && blankString(in.Title) }, MsgTitleNotString},
		rule{func() bool { return in.Title.Present && exceeds(in.Title, titleTag) }, MsgTitleTooLong},
		rule{func() bool { return in.Description.Present && blankString(in.Description) }, MsgDescriptionNotString},
		rule{func() bool { return in.Description.Present && exceeds(in.Description, descriptionTag) }, MsgDescriptionTooLong},
		rule{func() bool { return in.Status.Present && !inEnum(in.Status, statusTag) }, MsgInvalidStatus},
		rule{func() bool { return in.Priority.Present && !inEnum(in.Priority, priorityTag) }, MsgInvalidPriority},
		rule{func() bool { return dueDateSupplied(in.DueDate) && !parses(in.DueDate, now) }, MsgInvalidDueDate},
	)
}

// ValidateHighPriority applies the due date window when the request itself
// sets priority to HIGH. The stored task is not consulted: a HIGH request
// must always carry its own compliant due date.
func ValidateHighPriority(in TaskInput, now time.Time) error {
	if s, ok := in.Priority.Str(); !ok || Priority(s) != PriorityHigh {
		return nil
	}
	return firstFailure(highPriorityRules(in.DueDate, now)...)
}

// ValidateID accepts only the canonical 8-4-4-4-12 hexadecimal form, in
// either case, and returns the parsed id.
func ValidateID(id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.Nil, &ValidationError{Message: MsgTaskIDRequired}
	}
	// uuid.Parse also takes braced, urn and unhyphenated forms; the length
	// check leaves just the canonical one.
	if len(id) != 36 {
		return uuid.Nil, &ValidationError{Message: MsgInvalidTaskID}
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, &ValidationError{Message: MsgInvalidTaskID}
	}
	return parsed, nil
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func highPriorityRules(due Field, now time.Time) []rule {
	today := StartOfDay(now)
	limit := today.AddDate(0, 0, HighPriorityWindow)
	var parsed time.Time
	return []rule{
		{func() bool { return !due.Truthy() }, MsgHighPriorityNoDueDate},
		{func() bool {
			var err error
			parsed, err = ParseDueDate(due, now.Location())
			return err != nil
		}, MsgInvalidDueDate},
		{func() bool { return parsed.After(limit) }, MsgHighPriorityTooFar},
		{func() bool { return parsed.Before(today) }, MsgDueDateInPast},
	}
}

func noFields(in TaskInput) bool {
	return !in.Title.Present && !in.Description.Present && !in.Status.Present &&
		!in.Priority.Present && !in.DueDate.Present
}

func blankString(f Field) bool {
	s, ok := f.Str()
	return !ok || strings.TrimSpace(s) == ""
}

func exceeds(f Field, tag string) bool {
	s, _ := f.Str()
	return validate.Var(s, tag) != nil
}

func inEnum(f Field, tag string) bool {
	s, ok := f.Str()
	return ok && validate.Var(s, tag) == nil
}

func dueDateSupplied(f Field) bool {
	if !f.Present || f.IsNull() {
		return false
	}
	s, isString := f.Str()
	return !isString || s != ""
}

func parses(f Field, now time.Time) bool {
	_, err := ParseDueDate(f, now.Location())
	return err == nil
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, " ")
}
