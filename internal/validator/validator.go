// Package validator holds the fuzzy-match markers (e.g. "#notnull",
// "#uuid") an execution context carries.
package validator

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/loykin/apiscope/pkg/value"
)

// Result is the outcome of a validation.
type Result struct {
	Pass    bool
	Message string
}

// Pass is the successful result.
var Pass = Result{Pass: true}

func fail(msg string) Result { return Result{Message: msg} }

// Validator checks a single value.
type Validator interface {
	Validate(v value.Value) Result
}

// Func adapts a function to Validator.
type Func func(v value.Value) Result

// Validate calls f(v).
func (f Func) Validate(v value.Value) Result { return f(v) }

// typeValidator passes when the value has the expected type.
func typeValidator(want value.Type, msg string) Validator {
	return Func(func(v value.Value) Result {
		if v.Type() != want {
			return fail(msg)
		}
		return Pass
	})
}

// Defaults returns a fresh map of the built-in validators keyed by marker
// name (without the leading '#').
func Defaults() map[string]Validator {
	return map[string]Validator{
		"ignore": Func(func(value.Value) Result { return Pass }),
		"null": Func(func(v value.Value) Result {
			if !v.IsNull() {
				return fail("not null")
			}
			return Pass
		}),
		"notnull": Func(func(v value.Value) Result {
			if v.IsNull() {
				return fail("null")
			}
			return Pass
		}),
		"uuid": Func(func(v value.Value) Result {
			if !v.IsString() {
				return fail("not a string")
			}
			if _, err := uuid.Parse(v.AsString()); err != nil {
				return fail("not a valid uuid")
			}
			return Pass
		}),
		"string":  typeValidator(value.TypeString, "not a string"),
		"number":  typeValidator(value.TypeNumber, "not a number"),
		"boolean": typeValidator(value.TypeBoolean, "not a boolean"),
		"array":   typeValidator(value.TypeList, "not an array"),
		"object":  typeValidator(value.TypeMap, "not an object"),
	}
}

// Names returns the marker names of m in the "#name" form, sorted.
func Names(m map[string]Validator) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, "#"+strings.TrimPrefix(k, "#"))
	}
	sort.Strings(out)
	return out
}
