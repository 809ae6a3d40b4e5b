package configvalidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeforge/configcore/pkg/configtree"
)

func TestSchema_MissingRequiredAndTypeMismatchBothReported(t *testing.T) {
	min := 1024.0
	max := 65535.0
	schema := Schema{Fields: []Field{
		{Name: "name", Kind: KindString, Required: true},
		{Name: "port", Kind: KindInteger, Required: true, Validators: []Validator{Range(&min, &max)}},
	}}

	tree := configtree.NewMapping()
	tree.Set("port", configtree.Int(80))

	res := schema.Validate(tree, Context{Level: Strict})

	require.False(t, res.Valid())
	errs := res.Errors()
	require.Len(t, errs, 2, "mapping-level validation must not short-circuit across fields")

	var paths []string
	for _, e := range errs {
		paths = append(paths, e.Path)
	}
	assert.Contains(t, paths, "name")
	assert.Contains(t, paths, "port")
}

func TestSchema_DefaultsPopulatedBeforeValidation(t *testing.T) {
	schema := Schema{Fields: []Field{
		{Name: "timeout", Kind: KindInteger, Required: true, Default: configtree.Int(30)},
	}}

	res := schema.Validate(configtree.NewMapping(), Context{})

	require.True(t, res.Valid())
	i, ok := res.Value.Child("timeout").AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(30), i)
}

func TestSchema_UnknownKeysAllowedByDefault(t *testing.T) {
	schema := Schema{Fields: []Field{{Name: "name", Kind: KindString}}}
	tree := configtree.NewMapping()
	tree.Set("name", configtree.String("svc"))
	tree.Set("extra", configtree.String("x"))

	res := schema.Validate(tree, Context{})
	assert.True(t, res.Valid())
}

func TestSchema_StrictKeysRejectsUndeclared(t *testing.T) {
	schema := Schema{StrictKeys: true, Fields: []Field{{Name: "name", Kind: KindString}}}
	tree := configtree.NewMapping()
	tree.Set("name", configtree.String("svc"))
	tree.Set("extra", configtree.String("x"))

	res := schema.Validate(tree, Context{})
	require.False(t, res.Valid())
	assert.Equal(t, "unknown_key", res.Errors()[0].Code)
}
