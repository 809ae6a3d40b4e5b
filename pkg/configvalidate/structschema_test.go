package configvalidate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/latticeforge/configcore/pkg/configtree"
)

type sampleServiceConfig struct {
	Name string `json:"name" validate:"required,min=3,max=64"`
	Mode string `json:"mode" validate:"required,oneof=active standby"`
	Port int    `json:"port" validate:"required,min=1024,max=65535"`
}

func TestStructSchema_LowersTagsIntoFields(t *testing.T) {
	schema := StructSchema(sampleServiceConfig{})

	byName := make(map[string]Field, len(schema.Fields))
	for _, f := range schema.Fields {
		byName[f.Name] = f
	}

	assert.True(t, byName["name"].Required)
	assert.Equal(t, KindString, byName["name"].Kind)
	assert.True(t, byName["port"].Required)
	assert.Equal(t, KindInteger, byName["port"].Kind)
}

func TestStructSchema_ValidatesAgainstTree(t *testing.T) {
	schema := StructSchema(sampleServiceConfig{})

	good := configtree.NewMapping()
	good.Set("name", configtree.String("svc"))
	good.Set("mode", configtree.String("active"))
	good.Set("port", configtree.Int(8080))

	res := schema.Validate(good, Context{Level: Strict})
	assert.True(t, res.Valid())

	bad := configtree.NewMapping()
	bad.Set("name", configtree.String("ab"))
	bad.Set("mode", configtree.String("bogus"))
	bad.Set("port", configtree.Int(1))

	res2 := schema.Validate(bad, Context{Level: Strict})
	assert.False(t, res2.Valid())
	assert.GreaterOrEqual(t, len(res2.Errors()), 3)
}
