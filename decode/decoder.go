// Package decode reconstructs host Go values from values.Value trees and
// builds trees back from host values. Dispatch is driven by memoized type
// descriptors resolved through reflection; custom construction is available
// through registered factory functions, registered enums, and the
// ValueUnmarshaler interface.
//
// Unlike encoding/json, embedded struct fields are not promoted: anonymous
// fields are skipped on both decode and encode. Give a wrapped struct a named
// field when its members should appear on the wire.
package decode

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcncl/wirevalue/faults"
	"github.com/mcncl/wirevalue/result"
	"github.com/mcncl/wirevalue/values"
)

// ValueUnmarshaler is implemented by host types that take over their own
// decoding. It is the statically-dispatched equivalent of a designated
// constructor: the decoder hands the raw value to the type and the type
// builds itself.
type ValueUnmarshaler interface {
	UnmarshalValue(values.Value) error
}

// Decoder converts values.Value trees into host values. A Decoder owns its
// descriptor cache and registries; it is safe for concurrent use once
// registrations are done.
type Decoder struct {
	cache sync.Map // reflect.Type -> *descriptor

	mu        sync.RWMutex
	factories map[reflect.Type]func(values.Value) (reflect.Value, error)
	enums     map[reflect.Type]map[string]reflect.Value

	log zerolog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger installs a logger used to trace descriptor resolution at debug
// level.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Decoder) {
		d.log = log
	}
}

// New returns a Decoder with an empty cache and registries.
func New(opts ...Option) *Decoder {
	d := &Decoder{
		factories: make(map[reflect.Type]func(values.Value) (reflect.Value, error)),
		enums:     make(map[reflect.Type]map[string]reflect.Value),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode reconstructs a T from v.
func Decode[T any](d *Decoder, v values.Value) result.Result[T] {
	target := reflect.TypeOf((*T)(nil)).Elem()
	r := d.decodeGuarded(v, target)
	if err := r.Err(); err != nil {
		return result.Fail[T](err)
	}
	return result.Ok(r.MustGet().Interface().(T))
}

// DecodeInto reconstructs v into the value target points at. target must be
// a non-nil pointer.
func (d *Decoder) DecodeInto(v values.Value, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return faults.Target(fmt.Sprintf("decode target must be a non-nil pointer, got %T", target))
	}
	r := d.decodeGuarded(v, rv.Elem().Type())
	if err := r.Err(); err != nil {
		return err
	}
	rv.Elem().Set(r.MustGet())
	return nil
}

// decodeGuarded converts a reflect panic during construction into a
// construction failure instead of letting it escape; instantiation problems
// are protocol-level failures here, not fatal signals.
func (d *Decoder) decodeGuarded(v values.Value, t reflect.Type) (r result.Result[reflect.Value]) {
	defer func() {
		if recovered := recover(); recovered != nil {
			r = result.Fail[reflect.Value](
				faults.Construction(t.String(), fmt.Errorf("%v", recovered)))
		}
	}()
	return d.decode(v, t)
}

func (d *Decoder) decode(v values.Value, t reflect.Type) result.Result[reflect.Value] {
	desc, err := d.resolve(t)
	if err != nil {
		return result.Fail[reflect.Value](err)
	}

	switch desc.kind {
	case kindValue, kindAny:
		return result.Ok(reflect.ValueOf(v))
	case kindVariant:
		if reflect.TypeOf(v) != t {
			return result.Fail[reflect.Value](faults.Shape(t.String(), v.Kind()))
		}
		return result.Ok(reflect.ValueOf(v))
	case kindUnmarshaler:
		return d.decodeUnmarshaler(v, t)
	case kindFactory:
		return d.decodeFactory(v, t)
	case kindEnum:
		return d.decodeEnum(v, t)
	case kindPointer:
		return d.decodePointer(v, desc)
	}

	// All remaining kinds share the null rule: a wire Null decodes to the
	// target's zero value rather than failing.
	if _, isNull := v.(values.NullV); isNull {
		return result.Ok(reflect.Zero(t))
	}

	switch desc.kind {
	case kindBool:
		return decodeBool(v, t)
	case kindInt:
		return decodeInt(v, t)
	case kindUint:
		return decodeUint(v, t)
	case kindFloat:
		return decodeFloat(v, t)
	case kindString:
		return decodeString(v, t)
	case kindBytes:
		return decodeBytes(v, t)
	case kindTime:
		return decodeTime(v)
	case kindSlice:
		return d.decodeSlice(v, desc)
	case kindArray:
		return d.decodeFixedArray(v, desc)
	case kindMap:
		return d.decodeMap(v, desc)
	case kindStruct:
		return d.decodeStruct(v, desc)
	default:
		return result.Fail[reflect.Value](faults.Target(fmt.Sprintf("cannot decode into %s", t)))
	}
}

func (d *Decoder) decodeUnmarshaler(v values.Value, t reflect.Type) result.Result[reflect.Value] {
	target := reflect.New(t)
	if err := target.Interface().(ValueUnmarshaler).UnmarshalValue(v); err != nil {
		return result.Fail[reflect.Value](faults.Construction(t.String(), err))
	}
	return result.Ok(target.Elem())
}

func (d *Decoder) decodeFactory(v values.Value, t reflect.Type) result.Result[reflect.Value] {
	d.mu.RLock()
	factory := d.factories[t]
	d.mu.RUnlock()

	built, err := factory(v)
	if err != nil {
		return result.Fail[reflect.Value](faults.Construction(t.String(), err))
	}
	return result.Ok(built)
}

func (d *Decoder) decodeEnum(v values.Value, t reflect.Type) result.Result[reflect.Value] {
	s, ok := v.(values.StringV)
	if !ok {
		return result.Fail[reflect.Value](faults.Shape("String", v.Kind()))
	}

	d.mu.RLock()
	member, found := d.enums[t][string(s)]
	d.mu.RUnlock()
	if !found {
		return result.Failf[reflect.Value]("unknown %s member %q", t, string(s))
	}
	return result.Ok(member)
}

func (d *Decoder) decodePointer(v values.Value, desc *descriptor) result.Result[reflect.Value] {
	if _, isNull := v.(values.NullV); isNull {
		return result.Ok(reflect.Zero(desc.t))
	}
	elem := d.decode(v, desc.elem)
	if err := elem.Err(); err != nil {
		return result.Fail[reflect.Value](err)
	}
	ptr := reflect.New(desc.elem)
	ptr.Elem().Set(elem.MustGet())
	return result.Ok(ptr)
}

func decodeBool(v values.Value, t reflect.Type) result.Result[reflect.Value] {
	b, ok := v.(values.BooleanV)
	if !ok {
		return result.Fail[reflect.Value](faults.Shape("Boolean", v.Kind()))
	}
	out := reflect.New(t).Elem()
	out.SetBool(bool(b))
	return result.Ok(out)
}

func decodeInt(v values.Value, t reflect.Type) result.Result[reflect.Value] {
	l, ok := v.(values.LongV)
	if !ok {
		return result.Fail[reflect.Value](faults.Shape("Long", v.Kind()))
	}
	out := reflect.New(t).Elem()
	if out.OverflowInt(int64(l)) {
		return result.Failf[reflect.Value]("cannot convert Long(%d) to %s: value out of range", int64(l), t)
	}
	out.SetInt(int64(l))
	return result.Ok(out)
}

func decodeUint(v values.Value, t reflect.Type) result.Result[reflect.Value] {
	l, ok := v.(values.LongV)
	if !ok {
		return result.Fail[reflect.Value](faults.Shape("Long", v.Kind()))
	}
	if l < 0 {
		return result.Failf[reflect.Value]("cannot convert Long(%d) to %s: value out of range", int64(l), t)
	}
	out := reflect.New(t).Elem()
	if out.OverflowUint(uint64(l)) {
		return result.Failf[reflect.Value]("cannot convert Long(%d) to %s: value out of range", int64(l), t)
	}
	out.SetUint(uint64(l))
	return result.Ok(out)
}

// decodeFloat accepts both Double and Long sources; widening an integer into
// a float target is lossless for the 32-bit case and standard for the 64-bit
// one.
func decodeFloat(v values.Value, t reflect.Type) result.Result[reflect.Value] {
	var f float64
	switch n := v.(type) {
	case values.DoubleV:
		f = float64(n)
	case values.LongV:
		f = float64(n)
	default:
		return result.Fail[reflect.Value](faults.Shape("Double", v.Kind()))
	}
	out := reflect.New(t).Elem()
	if out.OverflowFloat(f) {
		return result.Failf[reflect.Value]("cannot convert Double(%v) to %s: value out of range", f, t)
	}
	out.SetFloat(f)
	return result.Ok(out)
}

func decodeString(v values.Value, t reflect.Type) result.Result[reflect.Value] {
	s, ok := v.(values.StringV)
	if !ok {
		return result.Fail[reflect.Value](faults.Shape("String", v.Kind()))
	}
	out := reflect.New(t).Elem()
	out.SetString(string(s))
	return result.Ok(out)
}

func decodeBytes(v values.Value, t reflect.Type) result.Result[reflect.Value] {
	b, ok := v.(values.BytesV)
	if !ok {
		return result.Fail[reflect.Value](faults.Shape("Bytes", v.Kind()))
	}
	copied := make([]byte, len(b))
	copy(copied, b)
	return result.Ok(reflect.ValueOf(copied).Convert(t))
}

func decodeTime(v values.Value) result.Result[reflect.Value] {
	switch t := v.(type) {
	case values.TimeV:
		return result.Ok(reflect.ValueOf(time.Time(t)))
	case values.DateV:
		return result.Ok(reflect.ValueOf(time.Time(t)))
	default:
		return result.Fail[reflect.Value](faults.Shape("Time or Date", v.Kind()))
	}
}

func (d *Decoder) decodeSlice(v values.Value, desc *descriptor) result.Result[reflect.Value] {
	arr, ok := v.(values.ArrayV)
	if !ok {
		return result.Fail[reflect.Value](faults.Shape("Array", v.Kind()))
	}
	out := reflect.MakeSlice(desc.t, len(arr), len(arr))
	for i, elem := range arr {
		decoded := d.decode(elem, desc.elem)
		if err := decoded.Err(); err != nil {
			return result.Failf[reflect.Value]("cannot decode array element %d into %s: %v", i, desc.elem, err)
		}
		out.Index(i).Set(decoded.MustGet())
	}
	return result.Ok(out)
}

func (d *Decoder) decodeFixedArray(v values.Value, desc *descriptor) result.Result[reflect.Value] {
	arr, ok := v.(values.ArrayV)
	if !ok {
		return result.Fail[reflect.Value](faults.Shape("Array", v.Kind()))
	}
	if len(arr) != desc.t.Len() {
		return result.Failf[reflect.Value](
			"cannot decode array of length %d into %s", len(arr), desc.t)
	}
	out := reflect.New(desc.t).Elem()
	for i, elem := range arr {
		decoded := d.decode(elem, desc.elem)
		if err := decoded.Err(); err != nil {
			return result.Failf[reflect.Value]("cannot decode array element %d into %s: %v", i, desc.elem, err)
		}
		out.Index(i).Set(decoded.MustGet())
	}
	return result.Ok(out)
}

func (d *Decoder) decodeMap(v values.Value, desc *descriptor) result.Result[reflect.Value] {
	obj, ok := v.(values.ObjectV)
	if !ok {
		return result.Fail[reflect.Value](faults.Shape("Object", v.Kind()))
	}
	out := reflect.MakeMapWithSize(desc.t, obj.Len())
	for _, pair := range obj.Pairs() {
		decoded := d.decode(pair.Value, desc.elem)
		if err := decoded.Err(); err != nil {
			return result.Failf[reflect.Value]("cannot decode map entry %q into %s: %v", pair.Key, desc.elem, err)
		}
		key := reflect.ValueOf(pair.Key).Convert(desc.t.Key())
		out.SetMapIndex(key, decoded.MustGet())
	}
	return result.Ok(out)
}

func (d *Decoder) decodeStruct(v values.Value, desc *descriptor) result.Result[reflect.Value] {
	obj, ok := v.(values.ObjectV)
	if !ok {
		return result.Fail[reflect.Value](faults.Shape("Object", v.Kind()))
	}
	out := reflect.New(desc.t).Elem()
	for _, f := range desc.fields {
		member, present := obj.Get(f.wireName)
		if !present {
			continue // absent members leave the field at its zero value
		}
		if _, isNull := member.(values.NullV); isNull {
			// A present Null member is treated like an absent one, so the rule
			// holds for every field kind, including variant and enum targets
			// that reject Null when decoded directly.
			continue
		}
		decoded := d.decode(member, f.t)
		if err := decoded.Err(); err != nil {
			return result.Failf[reflect.Value]("cannot decode field %q of %s: %v", f.wireName, desc.t, err)
		}
		out.FieldByIndex(f.index).Set(decoded.MustGet())
	}
	return result.Ok(out)
}
