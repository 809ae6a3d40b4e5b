package configvalidate

import "github.com/latticeforge/configcore/pkg/configtree"

// Field declares one mapping key's validation: its kind, whether it is
// required, an optional default populated before validation when the
// key is absent, and any extra validators appended after the
// required/type pair the schema inserts automatically.
type Field struct {
	Name       string
	Kind       Kind
	Required   bool
	Default    *configtree.Value
	Validators []Validator
}

// Schema lowers a field declaration list into a composite validator
// over a mapping, per the spec's schema-lowering rule: required is
// inserted first when declared, then type, then the field's own
// validators, each an independent composite so one field's early
// exit never affects another.
type Schema struct {
	Fields     []Field
	StrictKeys bool
}

// Validate runs the schema against value, populating declared defaults
// for absent keys before validating, and collecting every field's
// diagnostics — validation across a mapping never short-circuits on
// the first field's failure, only within a single field's composite.
func (s Schema) Validate(value *configtree.Value, ctx Context) Result {
	working := value
	if working == nil || !working.IsMapping() {
		working = configtree.NewMapping()
	}

	out := working.Clone()
	var diags []Diagnostic

	declared := make(map[string]struct{}, len(s.Fields))
	for _, field := range s.Fields {
		declared[field.Name] = struct{}{}

		fieldCtx := ctx.Child(field.Name)
		current := out.Child(field.Name)
		if (current == nil || current.IsNull()) && field.Default != nil {
			current = field.Default
		}

		validators := make([]Validator, 0, 2+len(field.Validators))
		if field.Required {
			validators = append(validators, Required())
		}
		validators = append(validators, Type(field.Kind))
		validators = append(validators, field.Validators...)

		res := Composite(validators...)(current, fieldCtx)
		diags = append(diags, res.Diagnostics...)
		out.Set(field.Name, res.Value)
	}

	if s.StrictKeys {
		for _, key := range out.Keys() {
			if _, known := declared[key]; !known {
				diags = append(diags, Diagnostic{
					Path:     ctx.Child(key).Path,
					Code:     "unknown_key",
					Message:  "key is not declared by the schema",
					Severity: SeverityError,
				})
			}
		}
	}

	return Result{Value: out, Diagnostics: diags}
}

// Validator adapts the schema into a plain Validator, so it composes
// with the rest of the engine (e.g. nested inside a parent composite).
func (s Schema) Validator() Validator {
	return func(value *configtree.Value, ctx Context) Result {
		return s.Validate(value, ctx)
	}
}
