package field

import (
	"time"

	"github.com/mcncl/wirevalue/faults"
	"github.com/mcncl/wirevalue/result"
	"github.com/mcncl/wirevalue/values"
)

// Identity passes the extracted value through untouched.
func Identity(v values.Value) result.Result[values.Value] {
	return result.Ok(v)
}

// String coerces to the String variant.
func String(v values.Value) result.Result[string] {
	if s, ok := v.(values.StringV); ok {
		return result.Ok(string(s))
	}
	return result.Fail[string](faults.Shape("String", v.Kind()))
}

// Long coerces to the Long variant.
func Long(v values.Value) result.Result[int64] {
	if l, ok := v.(values.LongV); ok {
		return result.Ok(int64(l))
	}
	return result.Fail[int64](faults.Shape("Long", v.Kind()))
}

// Double coerces to the Double variant.
func Double(v values.Value) result.Result[float64] {
	if d, ok := v.(values.DoubleV); ok {
		return result.Ok(float64(d))
	}
	return result.Fail[float64](faults.Shape("Double", v.Kind()))
}

// Boolean coerces to the Boolean variant.
func Boolean(v values.Value) result.Result[bool] {
	if b, ok := v.(values.BooleanV); ok {
		return result.Ok(bool(b))
	}
	return result.Fail[bool](faults.Shape("Boolean", v.Kind()))
}

// Bytes coerces to the Bytes variant.
func Bytes(v values.Value) result.Result[[]byte] {
	if b, ok := v.(values.BytesV); ok {
		return result.Ok([]byte(b))
	}
	return result.Fail[[]byte](faults.Shape("Bytes", v.Kind()))
}

// Time coerces to the Time variant.
func Time(v values.Value) result.Result[time.Time] {
	if t, ok := v.(values.TimeV); ok {
		return result.Ok(time.Time(t))
	}
	return result.Fail[time.Time](faults.Shape("Time", v.Kind()))
}

// Date coerces to the Date variant.
func Date(v values.Value) result.Result[time.Time] {
	if d, ok := v.(values.DateV); ok {
		return result.Ok(time.Time(d))
	}
	return result.Fail[time.Time](faults.Shape("Date", v.Kind()))
}

// Array coerces to the Array variant.
func Array(v values.Value) result.Result[values.ArrayV] {
	if a, ok := v.(values.ArrayV); ok {
		return result.Ok(a)
	}
	return result.Fail[values.ArrayV](faults.Shape("Array", v.Kind()))
}

// Object coerces to the Object variant.
func Object(v values.Value) result.Result[values.ObjectV] {
	if o, ok := v.(values.ObjectV); ok {
		return result.Ok(o)
	}
	return result.Fail[values.ObjectV](faults.Shape("Object", v.Kind()))
}

// Ref coerces to the Ref variant.
func Ref(v values.Value) result.Result[values.RefV] {
	if r, ok := v.(values.RefV); ok {
		return result.Ok(r)
	}
	return result.Fail[values.RefV](faults.Shape("Ref", v.Kind()))
}

// SetRef coerces to the SetRef variant.
func SetRef(v values.Value) result.Result[values.SetRefV] {
	if s, ok := v.(values.SetRefV); ok {
		return result.Ok(s)
	}
	return result.Fail[values.SetRefV](faults.Shape("SetRef", v.Kind()))
}
