package decode

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/mcncl/wirevalue/faults"
	"github.com/mcncl/wirevalue/result"
	"github.com/mcncl/wirevalue/values"
)

// Encode builds a values.Value tree from a host value, for constructing
// requests. It honors the same wire-name tags as decoding, so a type round
// trips through Encode and Decode unchanged. Struct members are emitted in
// declaration order; maps are emitted with sorted keys to keep the encoding
// deterministic.
func (d *Decoder) Encode(host any) result.Result[values.Value] {
	if host == nil {
		return result.Ok[values.Value](values.NullV{})
	}
	return d.encode(reflect.ValueOf(host))
}

func (d *Decoder) encode(rv reflect.Value) result.Result[values.Value] {
	if rv.Type().Implements(valueType) {
		return result.Ok(rv.Interface().(values.Value))
	}
	if rv.Type() == timeType {
		return result.Ok[values.Value](values.TimeOf(rv.Interface().(time.Time)))
	}

	switch rv.Kind() {
	case reflect.Bool:
		return result.Ok[values.Value](values.BooleanV(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return result.Ok[values.Value](values.LongV(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return result.Failf[values.Value]("cannot encode %d: value exceeds the wire integer range", u)
		}
		return result.Ok[values.Value](values.LongV(int64(u)))
	case reflect.Float32, reflect.Float64:
		return result.Ok[values.Value](values.DoubleV(rv.Float()))
	case reflect.String:
		return result.Ok[values.Value](values.StringV(rv.String()))
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return result.Ok[values.Value](values.BytesV(rv.Bytes()))
		}
		return d.encodeSequence(rv)
	case reflect.Array:
		return d.encodeSequence(rv)
	case reflect.Map:
		return d.encodeMap(rv)
	case reflect.Struct:
		return d.encodeStruct(rv)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return result.Ok[values.Value](values.NullV{})
		}
		return d.encode(rv.Elem())
	default:
		return result.Fail[values.Value](
			faults.Target(fmt.Sprintf("cannot encode %s as a wire value", rv.Type())))
	}
}

func (d *Decoder) encodeSequence(rv reflect.Value) result.Result[values.Value] {
	arr := make(values.ArrayV, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := d.encode(rv.Index(i))
		if err := elem.Err(); err != nil {
			return result.Failf[values.Value]("cannot encode element %d of %s: %v", i, rv.Type(), err)
		}
		arr[i] = elem.MustGet()
	}
	return result.Ok[values.Value](arr)
}

func (d *Decoder) encodeMap(rv reflect.Value) result.Result[values.Value] {
	if rv.Type().Key().Kind() != reflect.String {
		return result.Fail[values.Value](faults.ErrOnlyStringKeys)
	}
	members := make(map[string]values.Value, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		member := d.encode(iter.Value())
		if err := member.Err(); err != nil {
			return result.Failf[values.Value]("cannot encode map entry %q of %s: %v", iter.Key().String(), rv.Type(), err)
		}
		members[iter.Key().String()] = member.MustGet()
	}
	return result.Ok[values.Value](values.ObjFromMap(members))
}

func (d *Decoder) encodeStruct(rv reflect.Value) result.Result[values.Value] {
	desc, err := d.resolve(rv.Type())
	if err != nil {
		return result.Fail[values.Value](err)
	}
	if desc.kind != kindStruct {
		return result.Fail[values.Value](
			faults.Target(fmt.Sprintf("cannot encode %s as a wire object", rv.Type())))
	}

	pairs := make([]values.Pair, 0, len(desc.fields))
	for _, f := range desc.fields {
		member := d.encode(rv.FieldByIndex(f.index))
		if memberErr := member.Err(); memberErr != nil {
			return result.Failf[values.Value]("cannot encode field %q of %s: %v", f.wireName, rv.Type(), memberErr)
		}
		pairs = append(pairs, values.Pair{Key: f.wireName, Value: member.MustGet()})
	}
	return result.Ok[values.Value](values.Obj(pairs...))
}
