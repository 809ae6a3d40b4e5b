package configsource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeforge/configcore/pkg/configtree"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestJSONSource_LoadsNestedMapping(t *testing.T) {
	path := writeTemp(t, "c.json", `{"db":{"host":"h1","port":5432}}`)
	src := NewJSONSource(path)

	tree := src.Load()

	assert.Equal(t, "h1", configtree.GetString(tree, "db.host", ""))
	assert.Equal(t, int64(5432), configtree.GetInt(tree, "db.port", 0))
	assert.Equal(t, int64(1), src.Metadata().Successes)
}

func TestYAMLSource_LoadsNestedMapping(t *testing.T) {
	path := writeTemp(t, "c.yaml", "db:\n  host: h1\n  port: 5432\n")
	src := NewYAMLSource(path)

	tree := src.Load()

	assert.Equal(t, "h1", configtree.GetString(tree, "db.host", ""))
	assert.Equal(t, int64(5432), configtree.GetInt(tree, "db.port", 0))
}

func TestTOMLSource_ArrayOfTablesBecomesSequence(t *testing.T) {
	path := writeTemp(t, "c.toml", "[[servers]]\nhost = \"a\"\n[[servers]]\nhost = \"b\"\n")
	src := NewTOMLSource(path)

	tree := src.Load()
	elems := tree.Get("servers").Elements()
	require.Len(t, elems, 2)
	assert.Equal(t, "a", configtree.GetString(elems[0], "host", ""))
	assert.Equal(t, "b", configtree.GetString(elems[1], "host", ""))
}

func TestINISource_SectionDotKeyAndDefaultInheritance(t *testing.T) {
	content := "[DEFAULT]\ntimeout = 30\n\n[server]\nhost = localhost\ndebug = YES\n"
	path := writeTemp(t, "c.ini", content)
	src := NewINISource(path, INIOptions{})

	tree := src.Load()

	assert.Equal(t, "localhost", configtree.GetString(tree, "server.host", ""))
	assert.True(t, configtree.GetBool(tree, "server.debug", false))
	assert.Equal(t, int64(30), configtree.GetInt(tree, "server.timeout", 0))
}

func TestINISource_SectionScoped(t *testing.T) {
	content := "[a]\nx = 42\n[b]\ny = 2\n"
	path := writeTemp(t, "c.ini", content)
	src := NewINISource(path, INIOptions{Section: "a"})

	tree := src.Load()
	assert.Equal(t, int64(42), configtree.GetInt(tree, "x", 0))
	assert.Nil(t, tree.Get("y"))
}

func TestINISource_BooleanCoercionAcceptsOneAndZero(t *testing.T) {
	content := "[server]\ndebug = 1\nquiet = 0\n"
	path := writeTemp(t, "c.ini", content)
	src := NewINISource(path, INIOptions{})

	tree := src.Load()
	assert.True(t, configtree.GetBool(tree, "server.debug", false),
		"INI booleans per spec include 1/0, not just true/yes/on")
	assert.False(t, configtree.GetBool(tree, "server.quiet", true))
}

func TestFileSource_EmptyFileYieldsEmptyMappingNoError(t *testing.T) {
	path := writeTemp(t, "empty.json", "")
	src := NewJSONSource(path)

	tree := src.Load()

	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, int64(0), src.Metadata().Failures)
}

func TestFileSource_SequenceRootYieldsEmptyMappingPlusError(t *testing.T) {
	path := writeTemp(t, "seq.json", `["a","b"]`)
	src := NewJSONSource(path)

	tree := src.Load()

	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, int64(1), src.Metadata().Failures)
}

func TestFileSource_MissingFileIsUnavailableAndLoadsEmpty(t *testing.T) {
	src := NewJSONSource(filepath.Join(t.TempDir(), "missing.json"))

	assert.False(t, src.IsAvailable())
	tree := src.Load()
	assert.Equal(t, 0, tree.Len())
}

func TestFileSource_FingerprintStableWhenMtimeUnchanged(t *testing.T) {
	path := writeTemp(t, "c.json", `{"a":1}`)
	src := NewJSONSource(path)

	f1 := src.Fingerprint()
	f2 := src.Fingerprint()

	assert.Equal(t, f1, f2)
}
