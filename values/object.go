package values

import (
	"bytes"
	"sort"
)

// Pair is a single key/value member of an ObjectV.
type Pair struct {
	Key   string
	Value Value
}

// ObjectV is a wire object: a string-keyed mapping with unique keys whose
// insertion order is preserved. Equality ignores order; the wire encoding
// preserves it. ObjectV is immutable after construction.
type ObjectV struct {
	keys   []string
	fields map[string]Value
}

// Obj builds an ObjectV from pairs in order. A repeated key keeps its first
// position and takes the last value, mirroring how JSON parsers treat
// duplicate members. Nil member values are normalized to NullV.
func Obj(pairs ...Pair) ObjectV {
	o := ObjectV{fields: make(map[string]Value, len(pairs))}
	for _, p := range pairs {
		o.put(p.Key, p.Value)
	}
	return o
}

// ObjFromMap builds an ObjectV from a plain map. Map iteration order is not
// deterministic, so keys are sorted alphabetically to give the object a
// stable insertion order.
func ObjFromMap(m map[string]Value) ObjectV {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	o := ObjectV{fields: make(map[string]Value, len(m))}
	for _, k := range keys {
		o.put(k, m[k])
	}
	return o
}

// put is the only mutation point and is never called after an ObjectV has
// been handed out.
func (o *ObjectV) put(key string, v Value) {
	if v == nil {
		v = NullV{}
	}
	if o.fields == nil {
		o.fields = make(map[string]Value)
	}
	if _, seen := o.fields[key]; !seen {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
}

// Len returns the number of members.
func (o ObjectV) Len() int {
	return len(o.keys)
}

// Keys returns the member keys in insertion order. The returned slice is a
// copy.
func (o ObjectV) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Get returns the value for key and whether the key is present.
func (o ObjectV) Get(key string) (Value, bool) {
	v, ok := o.fields[key]
	return v, ok
}

// Pairs returns the members in insertion order.
func (o ObjectV) Pairs() []Pair {
	pairs := make([]Pair, len(o.keys))
	for i, k := range o.keys {
		pairs[i] = Pair{Key: k, Value: o.fields[k]}
	}
	return pairs
}

func (ObjectV) Kind() string { return "Object" }

func (o ObjectV) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(o.fields[k].String())
	}
	buf.WriteByte('}')
	return buf.String()
}

func (o ObjectV) Equals(other Value) bool {
	v, ok := other.(ObjectV)
	if !ok || len(o.keys) != len(v.keys) {
		return false
	}
	for k, val := range o.fields {
		otherVal, present := v.fields[k]
		if !present || !val.Equals(otherVal) {
			return false
		}
	}
	return true
}
