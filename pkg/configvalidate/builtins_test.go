package configvalidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeforge/configcore/pkg/configtree"
)

func TestType_StrictRejectsMismatch(t *testing.T) {
	res := Type(KindInteger)(configtree.String("42"), Context{Level: Strict})
	assert.False(t, res.Valid())
}

func TestType_LenientCoercesStringToInt(t *testing.T) {
	res := Type(KindInteger)(configtree.String("42"), Context{Level: Lenient})
	require.True(t, res.Valid())
	i, ok := res.Value.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(42), i)
}

func TestType_LenientCoercesStringToBool(t *testing.T) {
	res := Type(KindBoolean)(configtree.String("true"), Context{Level: Lenient})
	require.True(t, res.Valid())
	b, ok := res.Value.AsBool()
	require.True(t, ok)
	assert.True(t, b)
}

func TestRequired_FailsOnNull(t *testing.T) {
	res := Required()(configtree.Null(), Context{})
	require.False(t, res.Valid())
	assert.Equal(t, "missing", res.Errors()[0].Code)
}

func TestRequired_PassesOnPresent(t *testing.T) {
	res := Required()(configtree.String("x"), Context{})
	assert.True(t, res.Valid())
}

func TestRange_EnforcesInclusiveBounds(t *testing.T) {
	min, max := 1024.0, 65535.0

	tooLow := Range(&min, &max)(configtree.Int(80), Context{})
	assert.False(t, tooLow.Valid())

	inBounds := Range(&min, &max)(configtree.Int(8080), Context{})
	assert.True(t, inBounds.Valid())

	atBoundary := Range(&min, &max)(configtree.Int(1024), Context{})
	assert.True(t, atBoundary.Valid(), "bounds are inclusive")
}

func TestLength_EnforcesStringAndSequenceLength(t *testing.T) {
	min := 2
	assert.False(t, Length(&min, nil)(configtree.String("a"), Context{}).Valid())
	assert.True(t, Length(&min, nil)(configtree.String("ab"), Context{}).Valid())

	seq := configtree.NewSequence(configtree.Int(1))
	assert.False(t, Length(&min, nil)(seq, Context{}).Valid())
}

func TestChoices_RejectsValueNotInSet(t *testing.T) {
	v := Choices("a", "b", "c")
	assert.True(t, v(configtree.String("b"), Context{}).Valid())
	assert.False(t, v(configtree.String("z"), Context{}).Valid())
}

func TestPattern_AnchoredMatch(t *testing.T) {
	v := Pattern(`^[a-z]+$`)
	assert.True(t, v(configtree.String("abc"), Context{}).Valid())
	assert.False(t, v(configtree.String("abc123"), Context{}).Valid())
}

func TestEmail_RejectsMalformedAddress(t *testing.T) {
	assert.True(t, Email()(configtree.String("a@example.com"), Context{}).Valid())
	assert.False(t, Email()(configtree.String("not-an-email"), Context{}).Valid())
}

func TestComposite_ShortCircuitsOnFirstError(t *testing.T) {
	calls := 0
	track := func(value *configtree.Value, ctx Context) Result {
		calls++
		return ok(value)
	}
	v := Composite(Required(), track)
	res := v(configtree.Null(), Context{})

	assert.False(t, res.Valid())
	assert.Equal(t, 0, calls, "validators after the first failure must not run")
}

func TestComposite_CollectsWarningsFromAllRunValidators(t *testing.T) {
	warn := func(value *configtree.Value, ctx Context) Result {
		return Result{Value: value, Diagnostics: []Diagnostic{{Path: ctx.Path, Severity: SeverityWarning, Code: "w"}}}
	}
	v := Composite(warn, warn)
	res := v(configtree.String("x"), Context{})

	assert.True(t, res.Valid())
	assert.Len(t, res.Diagnostics, 2)
}

func TestComposite_PassesCoercedValueForward(t *testing.T) {
	v := Composite(Type(KindInteger))
	res := v(configtree.String("7"), Context{Level: Lenient})
	require.True(t, res.Valid())
	i, ok := res.Value.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(7), i)
}
