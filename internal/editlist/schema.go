package editlist

import (
	"fmt"
	"strconv"
	"strings"
)

// Field describes one editable or displayable column of a record.
type Field[T any] struct {
	Name     string
	Label    string
	Required bool

	// Get reads the display value.
	Get func(T) any
	// Set parses raw input and returns the updated record. Nil means read-only.
	Set func(T, string) (T, error)
	// Less orders two records by this field. Nil means not sortable.
	Less func(a, b T) bool
}

// MustHave marks the field as required on save.
func (f Field[T]) MustHave() Field[T] {
	f.Required = true
	return f
}

// Unsorted removes the sort order from the field.
func (f Field[T]) Unsorted() Field[T] {
	f.Less = nil
	return f
}

// SortedBy replaces the sort order of the field.
func (f Field[T]) SortedBy(less func(a, b T) bool) Field[T] {
	f.Less = less
	return f
}

// Text describes a string field. A nil set makes it read-only.
func Text[T any](name, label string, get func(T) string, set func(*T, string)) Field[T] {
	f := Field[T]{
		Name:  name,
		Label: label,
		Get:   func(r T) any { return get(r) },
		Less:  func(a, b T) bool { return get(a) < get(b) },
	}
	if set != nil {
		f.Set = func(r T, v string) (T, error) {
			set(&r, v)
			return r, nil
		}
	}
	return f
}

// Number describes a float field parsed from user input.
func Number[T any](name, label string, get func(T) float64, set func(*T, float64)) Field[T] {
	f := Field[T]{
		Name:  name,
		Label: label,
		Get:   func(r T) any { return get(r) },
		Less:  func(a, b T) bool { return get(a) < get(b) },
	}
	if set != nil {
		f.Set = func(r T, v string) (T, error) {
			v = strings.TrimSpace(v)
			if v == "" {
				set(&r, 0)
				return r, nil
			}
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return r, fmt.Errorf("%s: %q is not a number", label, v)
			}
			set(&r, n)
			return r, nil
		}
	}
	return f
}

// Schema is the per-screen configuration of a list: how to identify records,
// how to build a placeholder row and which fields exist.
type Schema[T any] struct {
	// Name is the singular noun used in notices, e.g. "transaction".
	Name string
	// Plural defaults to Name + "s".
	Plural string

	ID    func(T) string
	SetID func(T, string) T
	// New returns a record with placeholder defaults for a new row.
	New func() T

	Fields []Field[T]

	// Validate adds checks beyond required fields. It returns field name to
	// message.
	Validate func(T) map[string]string
}

func (s Schema[T]) plural() string {
	if s.Plural != "" {
		return s.Plural
	}
	return s.Name + "s"
}

func (s Schema[T]) title() string {
	if s.Name == "" {
		return ""
	}
	return strings.ToUpper(s.Name[:1]) + s.Name[1:]
}

// Field returns the descriptor named name.
func (s Schema[T]) Field(name string) (Field[T], bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

// Check runs required-field and custom validation on rec.
func (s Schema[T]) Check(rec T) error {
	problems := map[string]string{}
	for _, f := range s.Fields {
		if !f.Required || f.Get == nil {
			continue
		}
		if isBlank(f.Get(rec)) {
			problems[f.Name] = f.Label + " is required!"
		}
	}
	if s.Validate != nil {
		for name, msg := range s.Validate(rec) {
			if _, seen := problems[name]; !seen {
				problems[name] = msg
			}
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Fields: problems}
	}
	return nil
}

// apply sets field name of rec from raw input.
func (s Schema[T]) apply(rec T, name, value string) (T, error) {
	f, ok := s.Field(name)
	if !ok {
		return rec, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if f.Set == nil {
		return rec, fmt.Errorf("%w: %q", ErrReadOnlyField, name)
	}
	next, err := f.Set(rec, value)
	if err != nil {
		return rec, &ValidationError{Fields: map[string]string{name: err.Error()}}
	}
	return next, nil
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case fmt.Stringer:
		return strings.TrimSpace(x.String()) == ""
	}
	return false
}
