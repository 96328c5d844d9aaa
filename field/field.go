// Package field provides a small, composable way to describe a location
// inside a values.Value tree together with a terminal coercion. Every
// extraction returns a result.Result; nothing here panics.
package field

import (
	"fmt"
	"strings"

	"github.com/mcncl/wirevalue/faults"
	"github.com/mcncl/wirevalue/result"
	"github.com/mcncl/wirevalue/values"
)

// Segment is one step of a Path: either an object-key lookup or an
// array-index lookup.
type Segment struct {
	key   string
	index int
	isKey bool
}

// Key returns an object-key segment.
func Key(key string) Segment {
	return Segment{key: key, isKey: true}
}

// Index returns an array-index segment.
func Index(index int) Segment {
	return Segment{index: index}
}

func (s Segment) String() string {
	if s.isKey {
		return s.key
	}
	return fmt.Sprintf("[%d]", s.index)
}

// step resolves the segment against the current value.
func (s Segment) step(v values.Value) result.Result[values.Value] {
	if s.isKey {
		obj, ok := v.(values.ObjectV)
		if !ok {
			return result.Fail[values.Value](faults.Shape("Object", v.Kind()))
		}
		member, present := obj.Get(s.key)
		if !present {
			return result.Fail[values.Value](faults.MissingKey(s.key))
		}
		return result.Ok(member)
	}

	arr, ok := v.(values.ArrayV)
	if !ok {
		return result.Fail[values.Value](faults.Shape("Array", v.Kind()))
	}
	if s.index < 0 || s.index >= len(arr) {
		return result.Fail[values.Value](faults.MissingIndex(s.index))
	}
	return result.Ok(arr[s.index])
}

// Path is an ordered list of segments.
type Path []Segment

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, " / ")
}

// Get walks every segment against v in order, short-circuiting on the first
// missing segment or shape mismatch.
func (p Path) Get(v values.Value) result.Result[values.Value] {
	r := result.Ok(v)
	for _, seg := range p {
		r = result.FlatMap(r, seg.step)
	}
	return r
}

// Codec coerces an extracted value into T.
type Codec[T any] func(values.Value) result.Result[T]

// Field pairs a Path with a terminal Codec.
type Field[T any] struct {
	path  Path
	codec Codec[T]
}

// At constructs a Field over an object-key chain with the identity codec.
func At(keys ...string) Field[values.Value] {
	path := make(Path, len(keys))
	for i, k := range keys {
		path[i] = Key(k)
	}
	return Field[values.Value]{path: path, codec: Identity}
}

// AtIndex constructs a Field over an array-index chain with the identity
// codec.
func AtIndex(indices ...int) Field[values.Value] {
	path := make(Path, len(indices))
	for i, idx := range indices {
		path[i] = Index(idx)
	}
	return Field[values.Value]{path: path, codec: Identity}
}

// AtPath constructs a Field over mixed segments with the identity codec.
func AtPath(segments ...Segment) Field[values.Value] {
	return Field[values.Value]{path: Path(segments), codec: Identity}
}

// Path returns a copy of the field's path.
func (f Field[T]) Path() Path {
	path := make(Path, len(f.path))
	copy(path, f.path)
	return path
}

// Get extracts the field from v: it walks each path segment, then applies the
// terminal codec to whatever the walk reached.
func (f Field[T]) Get(v values.Value) result.Result[T] {
	return result.FlatMap(f.path.Get(v), f.codec)
}

// As rebinds the terminal coercion of a field, keeping its path. It is a
// package function because Go methods cannot introduce type parameters.
func As[T any](f Field[values.Value], codec Codec[T]) Field[T] {
	return Field[T]{path: f.Path(), codec: codec}
}

// Sub composes two fields: the outer path is walked first, then the inner
// field (path and codec) is applied to the value the outer path reached.
func Sub[T any](outer Field[values.Value], inner Field[T]) Field[T] {
	return Field[T]{
		path:  append(outer.Path(), inner.path...),
		codec: inner.codec,
	}
}

// Collect turns a field over single elements into a field over every element
// of an array. If any element fails, the aggregate failure enumerates every
// failing index with its reason, not just the first; callers debugging a
// large response get the whole picture in one message.
func Collect[T any](inner Field[T]) Field[[]T] {
	codec := func(v values.Value) result.Result[[]T] {
		arr, ok := v.(values.ArrayV)
		if !ok {
			return result.Fail[[]T](faults.Shape("Array", v.Kind()))
		}

		collected := make([]T, 0, len(arr))
		var failures []string
		for i, elem := range arr {
			r := inner.Get(elem)
			if err := r.Err(); err != nil {
				where := fmt.Sprintf("index %d", i)
				if len(inner.path) > 0 {
					where = fmt.Sprintf("index %d (at %s)", i, inner.path.String())
				}
				failures = append(failures, fmt.Sprintf("%s: %v", where, err))
				continue
			}
			collected = append(collected, r.MustGet())
		}
		if len(failures) > 0 {
			return result.Failf[[]T]("failed to collect array elements: [%s]", strings.Join(failures, "; "))
		}
		return result.Ok(collected)
	}
	return Field[[]T]{codec: codec}
}
