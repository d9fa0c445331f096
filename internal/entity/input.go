package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidBody = errors.New("request body must be a JSON object")

// Field keeps the raw JSON token of a request field so the validators can
// tell an omitted field from null, from a value of the wrong type.
type Field struct {
	Present bool
	Raw     json.RawMessage
}

func (f *Field) UnmarshalJSON(data []byte) error {
	f.Present = true
	f.Raw = append(f.Raw[:0], data...)
	return nil
}

// IsNull reports whether the field was sent as JSON null.
func (f Field) IsNull() bool {
	return f.Present && bytes.Equal(bytes.TrimSpace(f.Raw), []byte("null"))
}

// Str returns the field's value when it is a JSON string.
func (f Field) Str() (string, bool) {
	raw := bytes.TrimSpace(f.Raw)
	if !f.Present || len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Truthy reports whether the field carries a value other than null, false,
// 0 or the empty string. Omitted fields are not truthy.
func (f Field) Truthy() bool {
	if !f.Present {
		return false
	}
	raw := bytes.TrimSpace(f.Raw)
	switch {
	case len(raw) == 0:
		return false
	case raw[0] == '"':
		s, ok := f.Str()
		return ok && s != ""
	case raw[0] == 'n', raw[0] == 'f':
		return false
	case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
		n, err := strconv.ParseFloat(string(raw), 64)
		return err != nil || n != 0
	}
	return true
}

// TaskInput is the decoded body of a create or update request.
type TaskInput struct {
	Title       Field `json:"title"`
	Description Field `json:"description"`
	Status      Field `json:"status"`
	Priority    Field `json:"priority"`
	DueDate     Field `json:"dueDate"`
}

// ParseTaskInput decodes a request body. Anything but a JSON object is
// rejected with ErrInvalidBody.
func ParseTaskInput(data []byte) (TaskInput, error) {
	var in TaskInput
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return in, ErrInvalidBody
	}
	if err := json.Unmarshal(trimmed, &in); err != nil {
		return in, errors.Join(ErrInvalidBody, err)
	}
	return in, nil
}

var (
	dateOnlyLayout   = "2006-01-02"
	localTimeLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}
	// 100,000,000 days either side of the epoch.
	maxUnixMilli = 8.64e15
)

// ParseDueDate interprets a due date given as an RFC 3339 timestamp, a plain
// date (UTC midnight), a zoneless date-time in loc, or Unix milliseconds.
func ParseDueDate(f Field, loc *time.Location) (time.Time, error) {
	raw := bytes.TrimSpace(f.Raw)
	if len(raw) == 0 {
		return time.Time{}, errors.New("empty due date")
	}
	if raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9') {
		ms, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || math.Abs(ms) > maxUnixMilli {
			return time.Time{}, errors.New("due date out of range")
		}
		return time.UnixMilli(int64(ms)).In(loc), nil
	}

	s, ok := f.Str()
	if !ok {
		return time.Time{}, errors.New("due date must be a string or a number")
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateOnlyLayout, s, time.UTC); err == nil {
		return t, nil
	}
	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized due date format")
}

// NewTask converts input that passed ValidateCreate.
func (in TaskInput) NewTask(loc *time.Location) (NewTask, error) {
	title, _ := in.Title.Str()
	description, _ := in.Description.Str()
	n := NewTask{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      StatusTodo,
		Priority:    PriorityMedium,
	}
	if in.Status.Truthy() {
		s, _ := in.Status.Str()
		n.Status = Status(s)
	}
	if in.Priority.Truthy() {
		p, _ := in.Priority.Str()
		n.Priority = Priority(p)
	}
	if in.DueDate.Truthy() {
		due, err := ParseDueDate(in.DueDate, loc)
		if err != nil {
			return NewTask{}, err
		}
		n.DueDate = &due
	}
	return n, nil
}

// Patch converts input that passed ValidateUpdate. A due date sent as a
// falsy value clears the stored one.
func (in TaskInput) Patch(loc *time.Location) (Patch, error) {
	var p Patch
	if in.Title.Present {
		s, _ := in.Title.Str()
		p.Title = Some(strings.TrimSpace(s))
	}
	if in.Description.Present {
		s, _ := in.Description.Str()
		p.Description = Some(strings.TrimSpace(s))
	}
	if in.Status.Present {
		s, _ := in.Status.Str()
		p.Status = Some(Status(s))
	}
	if in.Priority.Present {
		s, _ := in.Priority.Str()
		p.Priority = Some(Priority(s))
	}
	if in.DueDate.Present {
		if !in.DueDate.Truthy() {
			p.DueDate = Some[*time.Time](nil)
		} else {
			due, err := ParseDueDate(in.DueDate, loc)
			if err != nil {
				return Patch{}, err
			}
			p.DueDate = Some(&due)
		}
	}
	return p, nil
}
