package configvalidate

import (
	"regexp"
	"strconv"

	gpvalidator "github.com/go-playground/validator/v10"

	"github.com/latticeforge/configcore/pkg/configtree"
)

// Kind names the value kinds type() can assert or coerce toward.
type Kind string

const (
	KindString   Kind = "string"
	KindInteger  Kind = "integer"
	KindFloating Kind = "floating"
	KindBoolean  Kind = "boolean"
	KindMapping  Kind = "mapping"
	KindSequence Kind = "sequence"
)

// Type confirms (strict) or coerces (lenient) value to kind k.
func Type(k Kind) Validator {
	return func(value *configtree.Value, ctx Context) Result {
		if value == nil || value.IsNull() {
			return ok(value)
		}

		switch k {
		case KindString:
			if value.Kind() == configtree.KindString {
				return ok(value)
			}
			if ctx.Level == Lenient {
				if s, ok2 := coerceToString(value); ok2 {
					return ok(configtree.String(s))
				}
			}
			return fail(value, ctx, "type_mismatch", "expected a string")

		case KindInteger:
			if value.Kind() == configtree.KindInt {
				return ok(value)
			}
			if ctx.Level == Lenient {
				if i, ok2 := coerceToInt(value); ok2 {
					return ok(configtree.Int(i))
				}
			}
			return fail(value, ctx, "type_mismatch", "expected an integer")

		case KindFloating:
			if f, isNum := asNumber(value); isNum {
				return ok(configtree.Float(f))
			}
			if ctx.Level == Lenient {
				if f, ok2 := coerceToFloat(value); ok2 {
					return ok(configtree.Float(f))
				}
			}
			return fail(value, ctx, "type_mismatch", "expected a floating-point number")

		case KindBoolean:
			if value.Kind() == configtree.KindBool {
				return ok(value)
			}
			if ctx.Level == Lenient {
				if b, ok2 := coerceToBool(value); ok2 {
					return ok(configtree.Bool(b))
				}
			}
			return fail(value, ctx, "type_mismatch", "expected a boolean")

		case KindMapping:
			if value.IsMapping() {
				return ok(value)
			}
			return fail(value, ctx, "type_mismatch", "expected a mapping")

		case KindSequence:
			if value.IsSequence() {
				return ok(value)
			}
			return fail(value, ctx, "type_mismatch", "expected a sequence")
		}
		return ok(value)
	}
}

// asNumber returns the numeric value of an Int or Float scalar,
// unifying the two kinds the way GetFloat's coercion does.
func asNumber(v *configtree.Value) (float64, bool) {
	switch v.Kind() {
	case configtree.KindFloat:
		f, _ := v.AsFloat()
		return f, true
	case configtree.KindInt:
		i, _ := v.AsInt()
		return float64(i), true
	}
	return 0, false
}

func coerceToString(v *configtree.Value) (string, bool) {
	switch v.Kind() {
	case configtree.KindInt:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10), true
	case configtree.KindFloat:
		f, _ := v.AsFloat()
		return strconv.FormatFloat(f, 'g', -1, 64), true
	case configtree.KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b), true
	}
	return "", false
}

func coerceToInt(v *configtree.Value) (int64, bool) {
	switch v.Kind() {
	case configtree.KindFloat:
		f, _ := v.AsFloat()
		return int64(f), true
	case configtree.KindString:
		s, _ := v.AsString()
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

func coerceToFloat(v *configtree.Value) (float64, bool) {
	if v.Kind() == configtree.KindString {
		s, _ := v.AsString()
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func coerceToBool(v *configtree.Value) (bool, bool) {
	if v.Kind() == configtree.KindString {
		s, _ := v.AsString()
		switch s {
		case "true", "yes", "on", "1", "TRUE", "YES", "ON":
			return true, true
		case "false", "no", "off", "0", "FALSE", "NO", "OFF":
			return false, true
		}
	}
	return false, false
}

// Required fails with code "missing" when value is null or absent.
func Required() Validator {
	return func(value *configtree.Value, ctx Context) Result {
		if value == nil || value.IsNull() {
			return fail(value, ctx, "missing", "value is required")
		}
		return ok(value)
	}
}

// Range enforces inclusive numeric bounds. A nil min or max leaves that
// side unbounded.
func Range(min, max *float64) Validator {
	return func(value *configtree.Value, ctx Context) Result {
		if value == nil || value.IsNull() {
			return ok(value)
		}
		f, isNum := asNumber(value)
		if !isNum {
			return fail(value, ctx, "not_numeric", "value is not numeric")
		}
		if min != nil && f < *min {
			return fail(value, ctx, "range_underflow", "value is below the minimum")
		}
		if max != nil && f > *max {
			return fail(value, ctx, "range_overflow", "value is above the maximum")
		}
		return ok(value)
	}
}

// Length enforces inclusive string/sequence length bounds.
func Length(min, max *int) Validator {
	return func(value *configtree.Value, ctx Context) Result {
		if value == nil || value.IsNull() {
			return ok(value)
		}
		var length int
		switch value.Kind() {
		case configtree.KindString:
			s, _ := value.AsString()
			length = len(s)
		case configtree.KindSequence:
			length = value.Len()
		default:
			return fail(value, ctx, "not_sizeable", "value has no length")
		}
		if min != nil && length < *min {
			return fail(value, ctx, "length_underflow", "value is shorter than the minimum length")
		}
		if max != nil && length > *max {
			return fail(value, ctx, "length_overflow", "value is longer than the maximum length")
		}
		return ok(value)
	}
}

// Choices requires the value to equal (by canonical form) one of set.
func Choices(set ...string) Validator {
	allowed := make(map[string]struct{}, len(set))
	for _, s := range set {
		allowed[s] = struct{}{}
	}
	return func(value *configtree.Value, ctx Context) Result {
		if value == nil || value.IsNull() {
			return ok(value)
		}
		s, isStr := value.AsString()
		if !isStr {
			s = configtree.Canonical(value)
		}
		if _, found := allowed[s]; !found {
			return fail(value, ctx, "not_in_choices", "value is not one of the allowed choices")
		}
		return ok(value)
	}
}

// Pattern requires a regex match against a string value. Matching is a
// substring search, same as the teacher's own pattern validators — the
// caller supplies `^...$` in expr if a full/anchored match is required.
func Pattern(expr string) Validator {
	re := regexp.MustCompile(expr)
	return func(value *configtree.Value, ctx Context) Result {
		if value == nil || value.IsNull() {
			return ok(value)
		}
		s, isStr := value.AsString()
		if !isStr {
			return fail(value, ctx, "type_mismatch", "pattern validator requires a string")
		}
		if !re.MatchString(s) {
			return fail(value, ctx, "pattern_mismatch", "value does not match the required pattern")
		}
		return ok(value)
	}
}

var emailValidate = gpvalidator.New()

// Email is a convenience pattern built on go-playground/validator/v10's
// "email" tag, matching the teacher's use of that library for webhook
// format checks.
func Email() Validator {
	return func(value *configtree.Value, ctx Context) Result {
		if value == nil || value.IsNull() {
			return ok(value)
		}
		s, isStr := value.AsString()
		if !isStr {
			return fail(value, ctx, "type_mismatch", "email validator requires a string")
		}
		if err := emailValidate.Var(s, "email"); err != nil {
			return fail(value, ctx, "invalid_email", "value is not a valid email address")
		}
		return ok(value)
	}
}

// Composite runs validators in order against the same field, feeding
// each validator's (possibly coerced) output value to the next. It
// short-circuits on the first error-severity result but keeps
// accumulating warnings from every validator that did run.
func Composite(validators ...Validator) Validator {
	return func(value *configtree.Value, ctx Context) Result {
		current := value
		var diags []Diagnostic
		for _, v := range validators {
			res := v(current, ctx)
			diags = append(diags, res.Diagnostics...)
			current = res.Value
			if !res.Valid() {
				return Result{Value: current, Diagnostics: diags}
			}
		}
		return Result{Value: current, Diagnostics: diags}
	}
}
