package values

// At walks object keys from v and returns the value found, or NullV if any
// segment is missing or the current value is not an object. It never fails,
// which makes it convenient for chained lookups; use package field for
// navigation that reports what went wrong.
func At(v Value, keys ...string) Value {
	for _, key := range keys {
		obj, ok := v.(ObjectV)
		if !ok {
			return NullV{}
		}
		v, ok = obj.Get(key)
		if !ok {
			return NullV{}
		}
	}
	return v
}

// AtIndex walks array indices from v, returning NullV on any miss.
func AtIndex(v Value, indices ...int) Value {
	for _, idx := range indices {
		arr, ok := v.(ArrayV)
		if !ok || idx < 0 || idx >= len(arr) {
			return NullV{}
		}
		v = arr[idx]
	}
	return v
}
