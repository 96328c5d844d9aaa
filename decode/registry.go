package decode

import (
	"fmt"
	"reflect"

	"github.com/mcncl/wirevalue/values"
)

// RegisterFactory installs fn as the designated constructor for T. At most
// one factory may be registered per type; a second registration is a
// programmer error and panics. Registrations should happen before the
// decoder is shared across goroutines.
func RegisterFactory[T any](d *Decoder, fn func(values.Value) (T, error)) {
	t := reflect.TypeOf((*T)(nil)).Elem()

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.factories[t]; exists {
		panic(fmt.Sprintf("wirevalue: factory already registered for %s", t))
	}
	d.factories[t] = func(v values.Value) (reflect.Value, error) {
		built, err := fn(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(built), nil
	}
	d.cache.Delete(t)
}

// RegisterEnum installs an explicit wire-name mapping for the members of T.
// Decoding matches the source string against the mapping; an unmapped string
// is a failure. A second registration for the same type panics.
func RegisterEnum[T comparable](d *Decoder, names map[string]T) {
	t := reflect.TypeOf((*T)(nil)).Elem()

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.enums[t]; exists {
		panic(fmt.Sprintf("wirevalue: enum already registered for %s", t))
	}
	members := make(map[string]reflect.Value, len(names))
	for wire, member := range names {
		members[wire] = reflect.ValueOf(member)
	}
	d.enums[t] = members
	d.cache.Delete(t)
}

// RegisterStringEnum installs members of a string-based enum whose wire names
// default to the members' own string values. Use RegisterEnum to override
// individual names.
func RegisterStringEnum[T ~string](d *Decoder, members ...T) {
	names := make(map[string]T, len(members))
	for _, m := range members {
		names[string(m)] = m
	}
	RegisterEnum(d, names)
}

func (d *Decoder) hasFactory(t reflect.Type) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.factories[t]
	return ok
}

func (d *Decoder) hasEnum(t reflect.Type) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.enums[t]
	return ok
}
