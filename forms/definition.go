// Package forms holds the multi-step form state machine and the field rules
// of every entity form. The same definitions validate API writes.
package forms

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Fields map[string]any

func (f Fields) clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Value looks name up, following dots into nested maps.
func (f Fields) Value(name string) any {
	var cur any = map[string]any(f)
	for _, part := range strings.Split(name, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil
		}
		if v, ok := m[part]; ok {
			cur = v
			continue
		}
		return nil
	}
	return cur
}

// String is Value rendered as trimmed text.
func (f Fields) String(name string) string {
	return text(f.Value(name))
}

func (f Fields) Bool(name string) bool {
	switch v := f.Value(name).(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "true", "1":
			return true
		}
	}
	return false
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Fields:
		return m, true
	}
	return nil, false
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	}
	return true
}

// Errors maps a field name to its message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) merge(other Errors) {
	for k, v := range other {
		if _, ok := e[k]; !ok {
			e[k] = v
		}
	}
}

// Field is one input. Required applies always, or only when RequiredWhen
// returns true. Tag is a validator tag checked on non-empty values.
type Field struct {
	Name         string
	Label        string
	Required     bool
	RequiredWhen func(Fields) bool
	Tag          string
}

func (f Field) label() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

type Check func(Fields) Errors

type Step struct {
	Title  string
	Fields []Field
	Checks []Check
}

type Definition struct {
	Name  string
	Steps []Step
}

func (d *Definition) StepCount() int {
	return len(d.Steps)
}

// ValidateStep runs the rules of step i (0-based).
func (d *Definition) ValidateStep(i int, fields Fields) Errors {
	errs := Errors{}
	if i < 0 || i >= len(d.Steps) {
		return errs
	}
	step := d.Steps[i]
	for _, f := range step.Fields {
		if msg := validateField(f, fields); msg != "" {
			errs[f.Name] = msg
		}
	}
	for _, check := range step.Checks {
		errs.merge(check(fields))
	}
	return errs
}

func (d *Definition) ValidateAll(fields Fields) Errors {
	errs := Errors{}
	for i := range d.Steps {
		errs.merge(d.ValidateStep(i, fields))
	}
	return errs
}

// FieldNames lists every field the form knows, in step order.
func (d *Definition) FieldNames() []string {
	var names []string
	for _, s := range d.Steps {
		for _, f := range s.Fields {
			names = append(names, f.Name)
		}
	}
	return names
}

func validateField(f Field, fields Fields) string {
	v := fields.Value(f.Name)
	required := f.Required || (f.RequiredWhen != nil && f.RequiredWhen(fields))
	if !present(v) {
		if required {
			return f.label() + " is required."
		}
		return ""
	}
	if f.Tag == "" {
		return ""
	}
	if err := validate.Var(text(v), f.Tag); err != nil {
		return f.label() + " is invalid."
	}
	return ""
}
