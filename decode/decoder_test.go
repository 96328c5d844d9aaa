package decode

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/wirevalue/faults"
	"github.com/mcncl/wirevalue/values"
	"github.com/mcncl/wirevalue/wire"
)

type spell struct {
	Name     string
	Cost     int
	Accuracy float64
	Tags     []string
	Created  time.Time
	Ref      values.RefV
	Secret   string `wire:"-"`
	Element  string `wire:"element_name"`
}

func spellValue(t *testing.T) values.Value {
	t.Helper()
	v, err := wire.DecodeString(`{
		"name": "fireball",
		"cost": 100,
		"accuracy": 0.95,
		"tags": ["fire", "aoe"],
		"created": {"@ts": "1970-01-01T00:05:00Z"},
		"ref": {"@ref": {"id": "1", "collection": {"@ref": {"id": "spells", "collection": {"@ref": {"id": "collections"}}}}}},
		"element_name": "fire",
		"secret": "should never land"
	}`)
	require.NoError(t, err)
	return v
}

func TestDecodeStruct(t *testing.T) {
	d := New()
	r := Decode[spell](d, spellValue(t))
	require.NoError(t, r.Err())

	decoded := r.MustGet()
	assert.Equal(t, "fireball", decoded.Name)
	assert.Equal(t, 100, decoded.Cost)
	assert.Equal(t, 0.95, decoded.Accuracy)
	assert.Equal(t, []string{"fire", "aoe"}, decoded.Tags)
	assert.Equal(t, time.Unix(300, 0).UTC(), decoded.Created)
	assert.Equal(t, "fire", decoded.Element)
	assert.Empty(t, decoded.Secret, "ignored fields must not be populated")

	spells := values.NewRef("spells", values.NativeCollections, nil)
	assert.True(t, decoded.Ref.Equals(values.NewRef("1", &spells, nil)))
}

func TestDecodeStructDefaultWireNamesAreLowerCamel(t *testing.T) {
	type record struct {
		StrField string
	}

	d := New()
	v := values.Obj(values.Pair{Key: "strField", Value: values.StringV("value")})

	r := Decode[record](d, v)
	require.NoError(t, r.Err())
	assert.Equal(t, "value", r.MustGet().StrField)
}

func TestDecodeStructMissingAndNullFields(t *testing.T) {
	type record struct {
		Name  string
		Count int
		Note  *string
	}

	d := New()
	v := values.Obj(
		values.Pair{Key: "name", Value: values.NullV{}},
		values.Pair{Key: "note", Value: values.NullV{}},
	)

	r := Decode[record](d, v)
	require.NoError(t, r.Err())

	decoded := r.MustGet()
	assert.Empty(t, decoded.Name, "null decodes to the zero value")
	assert.Zero(t, decoded.Count, "absent members leave the zero value")
	assert.Nil(t, decoded.Note)
}

func TestDecodeStructNullVariantAndEnumFields(t *testing.T) {
	type record struct {
		Ref     values.RefV
		Element element
	}

	d := New()
	RegisterStringEnum(d, elementFire, elementWater)

	v, err := wire.DecodeString(`{"ref": null, "element": null}`)
	require.NoError(t, err)

	r := Decode[record](d, v)
	require.NoError(t, r.Err())

	decoded := r.MustGet()
	assert.True(t, decoded.Ref.Equals(values.RefV{}), "null decodes to the zero ref")
	assert.Equal(t, element(""), decoded.Element, "null decodes to the zero enum member")

	// Decoding a bare Null directly into a variant still reports the mismatch.
	direct := Decode[values.RefV](d, values.NullV{})
	require.Error(t, direct.Err())
	assert.Equal(t, "expected values.RefV, got Null", direct.Err().Error())
}

func TestDecodeStructEmbeddedFieldsAreNotPromoted(t *testing.T) {
	type base struct {
		Name string
	}
	type record struct {
		base
		Cost int
	}

	d := New()
	v := values.Obj(
		values.Pair{Key: "name", Value: values.StringV("fireball")},
		values.Pair{Key: "cost", Value: values.LongV(100)},
	)

	r := Decode[record](d, v)
	require.NoError(t, r.Err())
	assert.Equal(t, 100, r.MustGet().Cost)
	assert.Empty(t, r.MustGet().Name, "embedded fields are skipped, not promoted")
}

func TestDecodeIntoPointerTarget(t *testing.T) {
	d := New()

	var decoded spell
	require.NoError(t, d.DecodeInto(spellValue(t), &decoded))
	assert.Equal(t, "fireball", decoded.Name)

	err := d.DecodeInto(spellValue(t), decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-nil pointer")
}

func TestDecodeScalarNarrowing(t *testing.T) {
	d := New()

	tests := []struct {
		name    string
		source  values.Value
		decode  func() error
		wantErr string
	}{
		{
			"long into int8 in range",
			values.LongV(100),
			func() error { return Decode[int8](d, values.LongV(100)).Err() },
			"",
		},
		{
			"long into int8 out of range",
			values.LongV(300),
			func() error { return Decode[int8](d, values.LongV(300)).Err() },
			"cannot convert Long(300) to int8: value out of range",
		},
		{
			"negative long into uint",
			values.LongV(-1),
			func() error { return Decode[uint16](d, values.LongV(-1)).Err() },
			"cannot convert Long(-1) to uint16: value out of range",
		},
		{
			"double into float32 out of range",
			values.DoubleV(1e39),
			func() error { return Decode[float32](d, values.DoubleV(1e39)).Err() },
			"cannot convert Double(1e+39) to float32: value out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decode()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
			}
		})
	}
}

func TestDecodeScalars(t *testing.T) {
	d := New()

	assert.Equal(t, int64(10), Decode[int64](d, values.LongV(10)).MustGet())
	assert.Equal(t, uint8(255), Decode[uint8](d, values.LongV(255)).MustGet())
	assert.Equal(t, 2.5, Decode[float64](d, values.DoubleV(2.5)).MustGet())
	assert.Equal(t, float64(10), Decode[float64](d, values.LongV(10)).MustGet(),
		"longs widen into float targets")
	assert.Equal(t, "abc", Decode[string](d, values.StringV("abc")).MustGet())
	assert.True(t, Decode[bool](d, values.BooleanV(true)).MustGet())
	assert.Equal(t, []byte{0x1, 0x2}, Decode[[]byte](d, values.BytesV{0x1, 0x2}).MustGet())
}

func TestDecodeShapeMismatch(t *testing.T) {
	d := New()

	err := Decode[int64](d, values.StringV("ten")).Err()
	require.Error(t, err)
	assert.Equal(t, "expected Long, got String", err.Error())
}

func TestDecodeValueTargets(t *testing.T) {
	d := New()
	v := spellValue(t)

	// The Value interface itself is an identity pass-through.
	same := Decode[values.Value](d, v)
	assert.True(t, same.MustGet().Equals(v))

	// A concrete variant matches only its own runtime kind.
	obj := Decode[values.ObjectV](d, v)
	require.NoError(t, obj.Err())

	str := Decode[values.StringV](d, v)
	require.Error(t, str.Err())
	assert.Equal(t, "expected values.StringV, got Object", str.Err().Error())
}

func TestDecodeCollections(t *testing.T) {
	d := New()
	arr := values.ArrayV{values.LongV(1), values.LongV(2), values.LongV(3)}

	assert.Equal(t, []int{1, 2, 3}, Decode[[]int](d, arr).MustGet())
	assert.Equal(t, [3]int{1, 2, 3}, Decode[[3]int](d, arr).MustGet())

	short := Decode[[2]int](d, arr)
	require.Error(t, short.Err())
	assert.Contains(t, short.Err().Error(), "cannot decode array of length 3")

	bad := Decode[[]int](d, values.ArrayV{values.LongV(1), values.StringV("two")})
	require.Error(t, bad.Err())
	assert.Contains(t, bad.Err().Error(), "cannot decode array element 1")
}

func TestDecodeMaps(t *testing.T) {
	d := New()
	obj := values.Obj(
		values.Pair{Key: "a", Value: values.LongV(1)},
		values.Pair{Key: "b", Value: values.LongV(2)},
	)

	decoded := Decode[map[string]int](d, obj)
	require.NoError(t, decoded.Err())
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, decoded.MustGet())
}

func TestDecodeMapRequiresStringKeys(t *testing.T) {
	d := New()

	// The key check is independent of the source value.
	for _, source := range []values.Value{values.Obj(), values.NullV{}, values.StringV("x")} {
		err := Decode[map[int]string](d, source).Err()
		require.Error(t, err)
		assert.Equal(t, "Only string keys are supported for maps", err.Error())
	}
}

func TestDecodeNestedStructs(t *testing.T) {
	type inner struct {
		Name string
	}
	type outer struct {
		Data  inner
		Items []inner
	}

	d := New()
	v, err := wire.DecodeString(`{
		"data": {"name": "first"},
		"items": [{"name": "second"}, {"name": "third"}]
	}`)
	require.NoError(t, err)

	decoded := Decode[outer](d, v)
	require.NoError(t, decoded.Err())
	assert.Equal(t, "first", decoded.MustGet().Data.Name)
	assert.Len(t, decoded.MustGet().Items, 2)
}

func TestDecodeStructFieldFailureNamesField(t *testing.T) {
	type record struct {
		Cost int
	}

	d := New()
	v := values.Obj(values.Pair{Key: "cost", Value: values.StringV("expensive")})

	err := Decode[record](d, v).Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `cannot decode field "cost"`)
	assert.Contains(t, err.Error(), "expected Long, got String")
}

func TestDecodeUnsupportedTarget(t *testing.T) {
	d := New()

	err := Decode[chan int](d, values.LongV(1)).Err()
	require.Error(t, err)
	assert.Equal(t, "cannot decode into chan int", err.Error())
	assert.ErrorIs(t, err, &faults.Fault{Category: faults.CategoryTarget})
}

type element string

const (
	elementFire  element = "fire"
	elementWater element = "water"
)

func TestDecodeRegisteredEnum(t *testing.T) {
	d := New()
	RegisterStringEnum(d, elementFire, elementWater)

	decoded := Decode[element](d, values.StringV("fire"))
	assert.Equal(t, elementFire, decoded.MustGet())

	unknown := Decode[element](d, values.StringV("earth"))
	require.Error(t, unknown.Err())
	assert.Contains(t, unknown.Err().Error(), `unknown decode.element member "earth"`)

	wrongShape := Decode[element](d, values.LongV(1))
	require.Error(t, wrongShape.Err())
	assert.Equal(t, "expected String, got Long", wrongShape.Err().Error())
}

func TestDecodeEnumWithOverriddenWireNames(t *testing.T) {
	type priority int
	d := New()
	RegisterEnum(d, map[string]priority{
		"LOW":  1,
		"HIGH": 3,
	})

	assert.Equal(t, priority(3), Decode[priority](d, values.StringV("HIGH")).MustGet())
}

func TestDuplicateEnumRegistrationPanics(t *testing.T) {
	d := New()
	RegisterStringEnum(d, elementFire)
	assert.Panics(t, func() {
		RegisterStringEnum(d, elementWater)
	})
}

type moneyAmount struct {
	cents int64
}

func TestDecodeRegisteredFactory(t *testing.T) {
	d := New()
	RegisterFactory(d, func(v values.Value) (moneyAmount, error) {
		l, ok := v.(values.LongV)
		if !ok {
			return moneyAmount{}, fmt.Errorf("expected Long, got %s", v.Kind())
		}
		return moneyAmount{cents: int64(l)}, nil
	})

	decoded := Decode[moneyAmount](d, values.LongV(1999))
	require.NoError(t, decoded.Err())
	assert.Equal(t, int64(1999), decoded.MustGet().cents)

	failed := Decode[moneyAmount](d, values.StringV("x"))
	require.Error(t, failed.Err())
	assert.ErrorIs(t, failed.Err(), &faults.Fault{Category: faults.CategoryConstruction})
	assert.Contains(t, failed.Err().Error(), "moneyAmount")
}

func TestDuplicateFactoryRegistrationPanics(t *testing.T) {
	d := New()
	RegisterFactory(d, func(values.Value) (moneyAmount, error) { return moneyAmount{}, nil })
	assert.Panics(t, func() {
		RegisterFactory(d, func(values.Value) (moneyAmount, error) { return moneyAmount{}, nil })
	})
}

type temperature struct {
	celsius float64
}

func (c *temperature) UnmarshalValue(v values.Value) error {
	d, ok := v.(values.DoubleV)
	if !ok {
		return errors.New("temperature must be a Double")
	}
	c.celsius = float64(d)
	return nil
}

func TestDecodeValueUnmarshaler(t *testing.T) {
	d := New()

	decoded := Decode[temperature](d, values.DoubleV(21.5))
	require.NoError(t, decoded.Err())
	assert.Equal(t, 21.5, decoded.MustGet().celsius)

	failed := Decode[temperature](d, values.StringV("warm"))
	require.Error(t, failed.Err())
	assert.ErrorIs(t, failed.Err(), &faults.Fault{Category: faults.CategoryConstruction})
}

func TestDecodeConcurrentCachePopulation(t *testing.T) {
	d := New()
	v := spellValue(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := Decode[spell](d, v)
			assert.NoError(t, r.Err())
		}()
	}
	wg.Wait()
}

func TestEncodeHostValue(t *testing.T) {
	d := New()

	host := spell{
		Name:     "fireball",
		Cost:     100,
		Accuracy: 0.95,
		Tags:     []string{"fire", "aoe"},
		Created:  time.Unix(300, 0).UTC(),
		Element:  "fire",
	}

	encoded := d.Encode(host)
	require.NoError(t, encoded.Err())

	obj, ok := encoded.MustGet().(values.ObjectV)
	require.True(t, ok)

	name, _ := obj.Get("name")
	assert.True(t, name.Equals(values.StringV("fireball")))
	elementName, present := obj.Get("element_name")
	assert.True(t, present)
	assert.True(t, elementName.Equals(values.StringV("fire")))
	_, present = obj.Get("secret")
	assert.False(t, present, "ignored fields are not encoded")
	created, _ := obj.Get("created")
	assert.True(t, created.Equals(values.TimeOf(time.Unix(300, 0))))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	d := New()

	host := spell{
		Name: "frostbolt",
		Cost: 40,
		Tags: []string{"frost"},
		Ref:  values.NewRef("2", nil, nil),
	}

	encoded := d.Encode(host)
	require.NoError(t, encoded.Err())

	back := Decode[spell](d, encoded.MustGet())
	require.NoError(t, back.Err())
	assert.Equal(t, host.Name, back.MustGet().Name)
	assert.Equal(t, host.Cost, back.MustGet().Cost)
	assert.Equal(t, host.Tags, back.MustGet().Tags)
	assert.True(t, back.MustGet().Ref.Equals(host.Ref))
}

func TestEncodeScalarsAndCollections(t *testing.T) {
	d := New()

	assert.True(t, d.Encode(nil).MustGet().Equals(values.NullV{}))
	assert.True(t, d.Encode(true).MustGet().Equals(values.BooleanV(true)))
	assert.True(t, d.Encode(10).MustGet().Equals(values.LongV(10)))
	assert.True(t, d.Encode(2.5).MustGet().Equals(values.DoubleV(2.5)))
	assert.True(t, d.Encode("abc").MustGet().Equals(values.StringV("abc")))
	assert.True(t, d.Encode([]byte{0xf8}).MustGet().Equals(values.BytesV{0xf8}))
	assert.True(t, d.Encode([]int{1, 2}).MustGet().Equals(values.ArrayV{values.LongV(1), values.LongV(2)}))
	assert.True(t, d.Encode(map[string]int{"b": 2, "a": 1}).MustGet().Equals(values.Obj(
		values.Pair{Key: "a", Value: values.LongV(1)},
		values.Pair{Key: "b", Value: values.LongV(2)},
	)))

	var nilPtr *int
	assert.True(t, d.Encode(nilPtr).MustGet().Equals(values.NullV{}))

	err := d.Encode(map[int]string{1: "x"}).Err()
	require.Error(t, err)
	assert.Equal(t, "Only string keys are supported for maps", err.Error())
}
