package values

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// timeWireFormat renders an instant as ISO-8601 UTC with up to nanosecond
// precision, trimming trailing zeros. Sub-millisecond precision stays inside
// the timestamp string so the wire form is self-contained.
const timeWireFormat = "2006-01-02T15:04:05.999999999Z"

// reservedKeys are the wire tag keys. A plain object that carries one of
// these as a literal member key must be wrapped in the @obj escape on encode.
var reservedKeys = map[string]struct{}{
	"@ref":   {},
	"@set":   {},
	"@ts":    {},
	"@date":  {},
	"@bytes": {},
	"@query": {},
	"@obj":   {},
}

func (NullV) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (b BooleanV) MarshalJSON() ([]byte, error) {
	return strconv.AppendBool(nil, bool(b)), nil
}

func (l LongV) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, int64(l), 10), nil
}

func (d DoubleV) MarshalJSON() ([]byte, error) {
	f := float64(d)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("cannot encode non-finite double %v", f)
	}
	return []byte(formatDouble(f)), nil
}

func (s StringV) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (b BytesV) MarshalJSON() ([]byte, error) {
	encoded, err := json.Marshal(base64.URLEncoding.EncodeToString(b))
	if err != nil {
		return nil, err
	}
	return wrapTag("@bytes", encoded), nil
}

func (d DateV) MarshalJSON() ([]byte, error) {
	encoded, err := json.Marshal(time.Time(d).Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	return wrapTag("@date", encoded), nil
}

func (t TimeV) MarshalJSON() ([]byte, error) {
	encoded, err := json.Marshal(time.Time(t).UTC().Format(timeWireFormat))
	if err != nil {
		return nil, err
	}
	return wrapTag("@ts", encoded), nil
}

func (a ArrayV) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(encoded)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalJSON writes the members in insertion order. If any member key is a
// reserved tag key the whole object is wrapped in the @obj escape so the
// literal keys survive the trip.
func (o ObjectV) MarshalJSON() ([]byte, error) {
	plain, err := o.marshalMembers(json.Marshal)
	if err != nil {
		return nil, err
	}
	for _, k := range o.keys {
		if _, reserved := reservedKeys[k]; reserved {
			return wrapTag("@obj", plain), nil
		}
	}
	return plain, nil
}

func (o ObjectV) marshalMembers(marshalValue func(any) ([]byte, error)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalValue(o.fields[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r RefV) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"id":`)
	id, err := json.Marshal(r.ID)
	if err != nil {
		return nil, err
	}
	buf.Write(id)
	if r.Collection != nil {
		parent, err := json.Marshal(*r.Collection)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"collection":`)
		buf.Write(parent)
	}
	if r.Database != nil {
		parent, err := json.Marshal(*r.Database)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"database":`)
		buf.Write(parent)
	}
	buf.WriteByte('}')
	return wrapTag("@ref", buf.Bytes()), nil
}

func (s SetRefV) MarshalJSON() ([]byte, error) {
	params, err := s.Parameters.marshalMembers(json.Marshal)
	if err != nil {
		return nil, err
	}
	return wrapTag("@set", params), nil
}

// MarshalJSON re-emits the embedded expression verbatim: reserved keys inside
// the payload are literal data, so no tag interpretation or @obj escaping is
// applied at any depth.
func (q QueryV) MarshalJSON() ([]byte, error) {
	expr := q.Expr
	if expr == nil {
		expr = NullV{}
	}
	payload, err := marshalVerbatim(expr)
	if err != nil {
		return nil, err
	}
	return wrapTag("@query", payload), nil
}

func marshalVerbatim(v Value) ([]byte, error) {
	switch value := v.(type) {
	case ObjectV:
		return value.marshalMembers(func(member any) ([]byte, error) {
			return marshalVerbatim(member.(Value))
		})
	case ArrayV:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range value {
			if i > 0 {
				buf.WriteByte(',')
			}
			encoded, err := marshalVerbatim(elem)
			if err != nil {
				return nil, err
			}
			buf.Write(encoded)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return json.Marshal(v)
	}
}

func wrapTag(tag string, payload []byte) []byte {
	wrapped := make([]byte, 0, len(tag)+len(payload)+5)
	wrapped = append(wrapped, '{', '"')
	wrapped = append(wrapped, tag...)
	wrapped = append(wrapped, '"', ':')
	wrapped = append(wrapped, payload...)
	wrapped = append(wrapped, '}')
	return wrapped
}
