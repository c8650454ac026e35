// Package forms validates dashboard form submissions against JSON schemas and
// turns schema violations into per-field messages.
package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"

	"github.com/insightdelivered/statement-desk/internal/editlist"
)

// Form is a compiled form schema with the labels used in messages.
type Form struct {
	name     string
	schema   *jsonschema.Schema
	labels   map[string]string
	messages map[string]string
}

// Compile builds a form from a JSON schema document. labels maps a property
// to its display label; messages overrides the message for a property.
func Compile(name string, doc []byte, labels, messages map[string]string) (*Form, error) {
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("form %s: %w", name, err)
	}
	url := "mem://" + name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, v); err != nil {
		return nil, fmt.Errorf("form %s: %w", name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("form %s: %w", name, err)
	}
	return &Form{name: name, schema: sch, labels: labels, messages: messages}, nil
}

// MustCompile is Compile for schemas embedded in the binary.
func MustCompile(name string, doc []byte, labels, messages map[string]string) *Form {
	f, err := Compile(name, doc, labels, messages)
	if err != nil {
		panic(err)
	}
	return f
}

// Check validates value. A schema violation is returned as an
// *editlist.ValidationError keyed by property name.
func (f *Form) Check(value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var inst any
	if err := json.Unmarshal(b, &inst); err != nil {
		return err
	}

	err = f.schema.Validate(inst)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	fields := map[string]string{}
	f.collect(ve, fields)
	if len(fields) == 0 {
		fields[""] = ve.Error()
	}
	return &editlist.ValidationError{Fields: fields}
}

func (f *Form) collect(ve *jsonschema.ValidationError, out map[string]string) {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			f.collect(c, out)
		}
		return
	}
	if req, ok := ve.ErrorKind.(*kind.Required); ok {
		for _, name := range req.Missing {
			f.set(out, name)
		}
		return
	}
	if len(ve.InstanceLocation) > 0 {
		f.set(out, ve.InstanceLocation[0])
	}
}

func (f *Form) set(out map[string]string, name string) {
	if _, seen := out[name]; seen {
		return
	}
	if msg, ok := f.messages[name]; ok {
		out[name] = msg
		return
	}
	label := f.labels[name]
	if label == "" {
		label = name
	}
	out[name] = label + " is required!"
}

// Fields lists the labelled properties in name order.
func (f *Form) Fields() []string {
	names := make([]string, 0, len(f.labels))
	for n := range f.labels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
