// Package configvalidate implements the validation engine: validators
// are pure functions over a configtree.Value and a Context, built-ins
// cover the common type/range/pattern checks, and a Schema lowers a
// field declaration list into a composite validator. Grounded on the
// shape of the teacher's webhook validator (ValidationError/
// ValidationResult, go-playground/validator/v10 for format checks),
// generalized from a fixed webhook struct to the generic value tree.
package configvalidate

import (
	"fmt"

	"github.com/latticeforge/configcore/pkg/configtree"
)

// Level threads through a Context and tells coercion-capable
// validators (chiefly type) whether to attempt a safe coercion or
// reject any kind mismatch outright.
type Level int

const (
	Strict Level = iota
	Lenient
)

// Severity distinguishes a diagnostic that fails validation from one
// that is advisory only.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one validation finding, always carrying the dotted
// path of the offending field.
type Diagnostic struct {
	Path       string
	Code       string
	Message    string
	Severity   Severity
	Value      interface{}
	Suggestion string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s (%s) at %q", d.Severity, d.Message, d.Code, d.Path)
}

// Context carries the ambient validation level and the current dotted
// path as validators recurse into a mapping.
type Context struct {
	Level Level
	Path  string
}

// Child returns a Context for key nested under the receiver's path.
func (c Context) Child(key string) Context {
	if c.Path == "" {
		return Context{Level: c.Level, Path: key}
	}
	return Context{Level: c.Level, Path: c.Path + "." + key}
}

// Result is the outcome of running one or more validators: the
// (possibly coerced) value to pass downstream, plus every diagnostic
// collected.
type Result struct {
	Value       *configtree.Value
	Diagnostics []Diagnostic
}

// Valid reports whether Result carries no error-severity diagnostic.
func (r Result) Valid() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Errors returns only the error-severity diagnostics.
func (r Result) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Validator is a pure function over a value and context, returning the
// (possibly coerced) value and any diagnostics. Validators hold no
// state beyond their own construction-time configuration.
type Validator func(value *configtree.Value, ctx Context) Result

func ok(value *configtree.Value) Result { return Result{Value: value} }

func fail(value *configtree.Value, ctx Context, code, message string) Result {
	return Result{
		Value: value,
		Diagnostics: []Diagnostic{{
			Path:     ctx.Path,
			Code:     code,
			Message:  message,
			Severity: SeverityError,
		}},
	}
}
