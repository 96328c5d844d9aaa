package decode

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/wirevalue/faults"
	"github.com/mcncl/wirevalue/values"
)

// TagKey is the struct tag consulted for wire-name mapping. `wire:"name"`
// renames a field, `wire:"-"` skips it; an untagged exported field maps to
// the lowerCamel rendering of its Go identifier.
const TagKey = "wire"

type kind uint8

const (
	kindValue kind = iota // the values.Value interface itself
	kindVariant           // a concrete value variant, identity on match
	kindUnmarshaler
	kindFactory
	kindEnum
	kindBool
	kindInt
	kindUint
	kindFloat
	kindString
	kindBytes
	kindTime
	kindSlice
	kindArray
	kindMap
	kindStruct
	kindPointer
	kindAny
)

var (
	valueType       = reflect.TypeOf((*values.Value)(nil)).Elem()
	timeType        = reflect.TypeOf(time.Time{})
	unmarshalerType = reflect.TypeOf((*ValueUnmarshaler)(nil)).Elem()
)

// descriptor is the normalized description of a host type. Element and field
// types are kept as reflect.Types and resolved on demand, which keeps the
// resolver safe for recursive types; the memoization cache makes the repeated
// lookups cheap.
type descriptor struct {
	t      reflect.Type
	kind   kind
	elem   reflect.Type  // slice/array/map/pointer element
	fields []structField // struct members, in declaration order
}

type structField struct {
	wireName string
	index    []int
	t        reflect.Type
}

// resolve returns the memoized descriptor for t, computing it on a miss. The
// cache is a sync.Map: resolution is pure and deterministic, so a racing
// duplicate computation is harmless and last-writer-wins is acceptable.
func (d *Decoder) resolve(t reflect.Type) (*descriptor, error) {
	if cached, ok := d.cache.Load(t); ok {
		return cached.(*descriptor), nil
	}

	desc, err := d.describe(t)
	if err != nil {
		return nil, err
	}
	d.cache.Store(t, desc)
	d.log.Debug().Str("type", t.String()).Msg("resolved type descriptor")
	return desc, nil
}

func (d *Decoder) describe(t reflect.Type) (*descriptor, error) {
	desc := &descriptor{t: t}

	switch {
	case t == valueType:
		desc.kind = kindValue
		return desc, nil
	case t.Implements(valueType):
		desc.kind = kindVariant
		return desc, nil
	case reflect.PointerTo(t).Implements(unmarshalerType):
		desc.kind = kindUnmarshaler
		return desc, nil
	case d.hasFactory(t):
		desc.kind = kindFactory
		return desc, nil
	case d.hasEnum(t):
		desc.kind = kindEnum
		return desc, nil
	case t == timeType:
		desc.kind = kindTime
		return desc, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		desc.kind = kindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		desc.kind = kindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		desc.kind = kindUint
	case reflect.Float32, reflect.Float64:
		desc.kind = kindFloat
	case reflect.String:
		desc.kind = kindString
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			desc.kind = kindBytes
		} else {
			desc.kind = kindSlice
			desc.elem = t.Elem()
		}
	case reflect.Array:
		desc.kind = kindArray
		desc.elem = t.Elem()
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, faults.ErrOnlyStringKeys
		}
		desc.kind = kindMap
		desc.elem = t.Elem()
	case reflect.Struct:
		desc.kind = kindStruct
		desc.fields = describeFields(t)
	case reflect.Pointer:
		desc.kind = kindPointer
		desc.elem = t.Elem()
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return nil, faults.Target(fmt.Sprintf("cannot decode into non-empty interface %s", t))
		}
		desc.kind = kindAny
	default:
		return nil, faults.Target(fmt.Sprintf("cannot decode into %s", t))
	}
	return desc, nil
}

func describeFields(t reflect.Type) []structField {
	fields := make([]structField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		// Embedded fields are not promoted; see the package doc.
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name := wireName(f)
		if name == "" {
			continue
		}
		fields = append(fields, structField{
			wireName: name,
			index:    f.Index,
			t:        f.Type,
		})
	}
	return fields
}

// wireName returns the wire name for a struct field, or "" if the field is
// explicitly ignored.
func wireName(f reflect.StructField) string {
	tag, ok := f.Tag.Lookup(TagKey)
	if !ok {
		return strcase.ToLowerCamel(f.Name)
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return strcase.ToLowerCamel(f.Name)
	}
	return name
}
