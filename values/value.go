// Package values defines the typed value model for the tagged wire protocol:
// one Go type per wire-representable kind, structural equality, a stable
// textual rendering, and the wire-encoding half of the codec. Values are
// immutable once constructed and safe to share across goroutines.
package values

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"
)

// Value is implemented by every wire-representable kind. A Value tree is
// created either by decoding wire bytes (package wire), by direct host-side
// construction when building requests, or by a decode operation extracting a
// sub-value.
type Value interface {
	fmt.Stringer

	// Kind returns the variant name used in renderings and failure messages,
	// e.g. "Long" or "Object".
	Kind() string

	// Equals reports structural equality with another Value. Object equality
	// ignores insertion order; Ref equality compares the full parent chain.
	Equals(other Value) bool

	// MarshalJSON emits the canonical wire form of the value.
	MarshalJSON() ([]byte, error)
}

// NullV is the wire null.
type NullV struct{}

func (NullV) Kind() string   { return "Null" }
func (NullV) String() string { return "null" }

func (NullV) Equals(other Value) bool {
	_, ok := other.(NullV)
	return ok
}

// BooleanV is a wire boolean.
type BooleanV bool

func (BooleanV) Kind() string { return "Boolean" }

func (b BooleanV) String() string {
	return strconv.FormatBool(bool(b))
}

func (b BooleanV) Equals(other Value) bool {
	o, ok := other.(BooleanV)
	return ok && b == o
}

// LongV is a wire integer. Numeric wire values without a fractional part or
// exponent decode as LongV.
type LongV int64

func (LongV) Kind() string { return "Long" }

func (l LongV) String() string {
	return strconv.FormatInt(int64(l), 10)
}

func (l LongV) Equals(other Value) bool {
	o, ok := other.(LongV)
	return ok && l == o
}

// DoubleV is a wire double. Its wire form always carries a decimal point or
// exponent, even for integral values, so the integer-vs-double distinction
// survives a round trip.
type DoubleV float64

func (DoubleV) Kind() string { return "Double" }

func (d DoubleV) String() string {
	return formatDouble(float64(d))
}

func (d DoubleV) Equals(other Value) bool {
	o, ok := other.(DoubleV)
	return ok && d == o
}

// StringV is a wire string.
type StringV string

func (StringV) Kind() string { return "String" }

func (s StringV) String() string {
	return strconv.Quote(string(s))
}

func (s StringV) Equals(other Value) bool {
	o, ok := other.(StringV)
	return ok && s == o
}

// BytesV is a wire byte blob. The wire form is URL-safe base64 with padding.
type BytesV []byte

func (BytesV) Kind() string { return "Bytes" }

func (b BytesV) String() string {
	return fmt.Sprintf("bytes(%q)", base64.URLEncoding.EncodeToString(b))
}

func (b BytesV) Equals(other Value) bool {
	o, ok := other.(BytesV)
	return ok && bytes.Equal(b, o)
}

// DateV is a calendar date with no time component, held as midnight UTC.
type DateV time.Time

// Date constructs a DateV for the given calendar day.
func Date(year int, month time.Month, day int) DateV {
	return DateV(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) DateV {
	u := t.UTC()
	return Date(u.Year(), u.Month(), u.Day())
}

func (DateV) Kind() string { return "Date" }

func (d DateV) String() string {
	return fmt.Sprintf("date(%q)", time.Time(d).Format("2006-01-02"))
}

func (d DateV) Equals(other Value) bool {
	o, ok := other.(DateV)
	return ok && time.Time(d).Equal(time.Time(o))
}

// TimeV is an instant. time.Time carries nanoseconds natively, so
// sub-millisecond precision survives a round trip without any auxiliary
// offset field.
type TimeV time.Time

// TimeOf wraps t as a TimeV, normalized to UTC.
func TimeOf(t time.Time) TimeV {
	return TimeV(t.UTC())
}

func (TimeV) Kind() string { return "Time" }

func (t TimeV) String() string {
	return fmt.Sprintf("time(%q)", time.Time(t).UTC().Format(timeWireFormat))
}

func (t TimeV) Equals(other Value) bool {
	o, ok := other.(TimeV)
	return ok && time.Time(t).Equal(time.Time(o))
}

// ArrayV is an ordered sequence of values.
type ArrayV []Value

func (ArrayV) Kind() string { return "Array" }

func (a ArrayV) String() string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(v.String())
	}
	buf.WriteByte(']')
	return buf.String()
}

func (a ArrayV) Equals(other Value) bool {
	o, ok := other.(ArrayV)
	if !ok || len(a) != len(o) {
		return false
	}
	for i, v := range a {
		if !v.Equals(o[i]) {
			return false
		}
	}
	return true
}

func formatDouble(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !hasDoubleMarker(s) {
		s += ".0"
	}
	return s
}

func hasDoubleMarker(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', 'e', 'E':
			return true
		}
	}
	return false
}
