package configsource

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/latticeforge/configcore/pkg/configtree"
)

type fakeReader struct {
	values map[string]string
}

func (f fakeReader) GetSecret(name string) (string, bool) {
	v, ok := f.values[name]
	return v, ok
}

func TestSecretSource_ResolvesDeclaredMappings(t *testing.T) {
	reader := fakeReader{values: map[string]string{"db-password": "s3cr3t"}}
	src := NewSecretSource(reader, map[string]string{"database.password": "db-password"})

	tree := src.Load()

	assert.Equal(t, "s3cr3t", configtree.GetString(tree, "database.password", ""))
}

func TestSecretSource_MissingSecretOmittedNotFatal(t *testing.T) {
	reader := fakeReader{values: map[string]string{}}
	src := NewSecretSource(reader, map[string]string{"database.password": "missing-name"})

	tree := src.Load()

	assert.Nil(t, tree.Get("database.password"))
	assert.Equal(t, int64(1), src.Metadata().Successes)
}
