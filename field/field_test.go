package field

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/wirevalue/values"
	"github.com/mcncl/wirevalue/wire"
)

func spellResponse(t *testing.T) values.Value {
	t.Helper()
	v, err := wire.DecodeString(`{
		"data": {
			"name": "fireball",
			"cost": 100,
			"accuracy": 0.95,
			"created": {"@ts": "1970-01-01T00:05:00Z"},
			"tags": ["fire", "aoe"]
		}
	}`)
	require.NoError(t, err)
	return v
}

func TestFieldExtraction(t *testing.T) {
	v := spellResponse(t)

	name := As(At("data", "name"), String).Get(v)
	assert.Equal(t, "fireball", name.MustGet())

	cost := As(At("data", "cost"), Long).Get(v)
	assert.Equal(t, int64(100), cost.MustGet())

	accuracy := As(At("data", "accuracy"), Double).Get(v)
	assert.Equal(t, 0.95, accuracy.MustGet())

	created := As(At("data", "created"), Time).Get(v)
	assert.Equal(t, time.Unix(300, 0).UTC(), created.MustGet())

	secondTag := As(Sub(At("data", "tags"), AtIndex(1)), String).Get(v)
	assert.Equal(t, "aoe", secondTag.MustGet())
}

func TestFieldMissingKey(t *testing.T) {
	v := spellResponse(t)

	r := As(At("data", "missing"), String).Get(v)
	require.Error(t, r.Err())
	assert.Equal(t, "Missing object key: missing", r.Err().Error())
}

func TestFieldMissingIndex(t *testing.T) {
	v := spellResponse(t)

	r := As(Sub(At("data", "tags"), AtIndex(5)), String).Get(v)
	require.Error(t, r.Err())
	assert.Equal(t, "Missing array index: 5", r.Err().Error())
}

func TestFieldShapeMismatch(t *testing.T) {
	v := spellResponse(t)

	// Walking a key through a scalar.
	r := At("data", "name", "deeper").Get(v)
	require.Error(t, r.Err())
	assert.Equal(t, "expected Object, got String", r.Err().Error())

	// Coercing a string to a long.
	l := As(At("data", "name"), Long).Get(v)
	require.Error(t, l.Err())
	assert.Equal(t, "expected Long, got String", l.Err().Error())
}

func TestFieldComposition(t *testing.T) {
	data := At("data")
	name := As(At("name"), String)

	composed := Sub(data, name)
	assert.Equal(t, "data / name", composed.Path().String())

	v := spellResponse(t)
	assert.Equal(t, "fireball", composed.Get(v).MustGet())
}

func TestMixedPath(t *testing.T) {
	v := spellResponse(t)

	r := As(AtPath(Key("data"), Key("tags"), Index(0)), String).Get(v)
	assert.Equal(t, "fire", r.MustGet())
	assert.Equal(t, "data / tags / [0]", AtPath(Key("data"), Key("tags"), Index(0)).Path().String())
}

func TestCollect(t *testing.T) {
	v, err := wire.DecodeString(`{"data": [
		{"name": "fireball"},
		{"name": "frostbolt"},
		{"name": "arcane blast"}
	]}`)
	require.NoError(t, err)

	names := Sub(At("data"), Collect(As(At("name"), String))).Get(v)
	assert.Equal(t, []string{"fireball", "frostbolt", "arcane blast"}, names.MustGet())
}

func TestCollectReportsEveryFailingElement(t *testing.T) {
	v, err := wire.DecodeString(`{"data": [
		{"name": "fireball"},
		{"title": "wrong shape"},
		{"name": "arcane blast"}
	]}`)
	require.NoError(t, err)

	r := Sub(At("data"), Collect(As(At("name"), String))).Get(v)
	require.Error(t, r.Err())

	msg := r.Err().Error()
	assert.Contains(t, msg, "index 1")
	assert.Contains(t, msg, "Missing object key: name")
	assert.NotContains(t, msg, "index 0")
	assert.NotContains(t, msg, "index 2")
}

func TestCollectAggregatesMultipleFailures(t *testing.T) {
	v, err := wire.DecodeString(`{"data": [1, {"name": "ok"}, true]}`)
	require.NoError(t, err)

	r := Sub(At("data"), Collect(As(At("name"), String))).Get(v)
	require.Error(t, r.Err())

	msg := r.Err().Error()
	assert.Contains(t, msg, "index 0")
	assert.Contains(t, msg, "index 2")
	assert.NotContains(t, msg, "index 1")
}

func TestCollectOnNonArray(t *testing.T) {
	v := spellResponse(t)

	r := Sub(At("data", "name"), Collect(As(At("name"), String))).Get(v)
	require.Error(t, r.Err())
	assert.Equal(t, "expected Array, got String", r.Err().Error())
}

func TestVariantCodecs(t *testing.T) {
	people := values.NewRef("people", values.NativeCollections, nil)
	obj := values.Obj(
		values.Pair{Key: "ref", Value: people},
		values.Pair{Key: "flag", Value: values.BooleanV(true)},
		values.Pair{Key: "blob", Value: values.BytesV{0x1}},
		values.Pair{Key: "day", Value: values.Date(1970, time.January, 3)},
		values.Pair{Key: "all", Value: values.ArrayV{values.LongV(1)}},
		values.Pair{Key: "set", Value: values.SetRefV{Parameters: values.Obj()}},
	)

	assert.True(t, As(At("ref"), Ref).Get(obj).MustGet().Equals(people))
	assert.True(t, As(At("flag"), Boolean).Get(obj).MustGet())
	assert.Equal(t, []byte{0x1}, As(At("blob"), Bytes).Get(obj).MustGet())
	assert.Equal(t, time.Date(1970, time.January, 3, 0, 0, 0, 0, time.UTC), As(At("day"), Date).Get(obj).MustGet())
	assert.Len(t, As(At("all"), Array).Get(obj).MustGet(), 1)
	assert.Equal(t, 0, As(At("set"), SetRef).Get(obj).MustGet().Parameters.Len())

	whole := As(AtPath(), Object).Get(obj)
	assert.Equal(t, 6, whole.MustGet().Len())
}
