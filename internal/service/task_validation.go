package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gurkanbulca/tasktracker/internal/models"
)

// applyTaskInput validates in and copies it onto t. With partial set, fields
// that were not sent keep their current value; otherwise title and
// description must be present.
func applyTaskInput(t *models.Task, in TaskInput, partial bool) error {
	verr := &ValidationError{}

	if title, ok := requiredText(verr, "title", in.Title, partial); ok {
		if n := utf8.RuneCountInString(title); n > models.MaxTitleLength {
			verr.Add("title", fmt.Sprintf("Ensure this field has no more than %d characters.", models.MaxTitleLength))
		} else {
			t.Title = title
		}
	}

	if description, ok := requiredText(verr, "description", in.Description, partial); ok {
		t.Description = description
	}

	switch {
	case !in.Priority.Set:
	case in.Priority.Null:
		verr.Add("priority", MsgNull)
	case !models.Priority(in.Priority.Value).Valid():
		verr.Add("priority", fmt.Sprintf("%q is not a valid choice.", in.Priority.Value))
	default:
		t.Priority = models.Priority(in.Priority.Value)
	}

	switch {
	case !in.IsCompleted.Set:
	case in.IsCompleted.Null:
		verr.Add("is_completed", MsgNull)
	default:
		t.IsCompleted = in.IsCompleted.Value
	}

	return verr.OrNil()
}

// requiredText trims a text field and reports whether it holds a usable value.
func requiredText(verr *ValidationError, name string, f Field[string], partial bool) (string, bool) {
	switch {
	case !f.Set:
		if !partial {
			verr.Add(name, MsgRequired)
		}
		return "", false
	case f.Null:
		verr.Add(name, MsgNull)
		return "", false
	}

	value := strings.TrimSpace(f.Value)
	if value == "" {
		verr.Add(name, MsgBlank)
		return "", false
	}
	return value, true
}
