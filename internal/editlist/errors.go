package editlist

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrEditInProgress = errors.New("another row is already being edited")
	ErrNotEditing     = errors.New("no row is being edited")
	ErrBusy           = errors.New("request already in flight")
	ErrNoPrompt       = errors.New("no delete confirmation pending")
	ErrPromptPending  = errors.New("a delete confirmation is already pending")
	ErrUnknownField   = errors.New("unknown field")
	ErrReadOnlyField  = errors.New("field is not editable")
	ErrNotSortable    = errors.New("field is not sortable")
)

// ValidationError reports field-level problems that block a save. No request
// is sent when it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// AsValidation unwraps a *ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
