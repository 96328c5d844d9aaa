// Package wire decodes the tagged JSON wire grammar into values.Value trees
// and encodes them back. Decoding walks the JSON token stream directly so
// that object member order is preserved and integers stay distinguishable
// from doubles; encoding delegates to the MarshalJSON implementations on the
// value variants.
package wire

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	stderrors "errors"

	"github.com/goccy/go-json"

	"github.com/mcncl/wirevalue/faults"
	"github.com/mcncl/wirevalue/values"
)

// tagPriority is the fixed, total precedence used when an object carries more
// than one reserved tag key: the first tag in this list that is present wins,
// regardless of member position. The wire format itself does not define a
// precedence, so this order is part of this implementation's contract. A
// malformed payload for the winning tag is a decode error, never a silent
// fall back to a plain object.
var tagPriority = []string{"@ref", "@set", "@ts", "@date", "@bytes", "@query", "@obj"}

// decodeMode controls tag interpretation while walking the token stream.
type decodeMode int

const (
	// modeNormal interprets reserved tag keys on the current object.
	modeNormal decodeMode = iota
	// modePlain skips interpretation for the current object only; member
	// values still decode normally. Used for the @obj escape payload.
	modePlain
	// modeVerbatim skips interpretation at every depth. Used for the @query
	// payload, where reserved keys are literal data.
	modeVerbatim
)

// Decoder reads values.Value trees from a stream of wire JSON.
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Decoder{dec: dec}
}

// Decode reads the next wire value from the stream.
func (d *Decoder) Decode() (values.Value, error) {
	return decodeValue(d.dec, modeNormal)
}

// More reports whether the stream holds another wire value.
func (d *Decoder) More() bool {
	return d.dec.More()
}

// Decode parses data as a single wire value. Trailing data after the first
// value is an error.
func Decode(data []byte) (values.Value, error) {
	dec := NewDecoder(bytes.NewReader(data))
	v, err := dec.Decode()
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, faults.Input("multiple wire values found at the root, only one is allowed", nil)
	}
	return v, nil
}

// DecodeString parses s as a single wire value.
func DecodeString(s string) (values.Value, error) {
	if strings.TrimSpace(s) == "" {
		return nil, faults.Input("input string is empty", faults.ErrEmptyInput)
	}
	return Decode([]byte(s))
}

// Encode serializes v to its canonical wire form.
func Encode(v values.Value) ([]byte, error) {
	return json.Marshal(v)
}

// EncodeIndent serializes v with indentation, for human consumption.
func EncodeIndent(v values.Value, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}

func decodeValue(dec *json.Decoder, mode decodeMode) (values.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, faults.Input("input is empty or truncated", faults.ErrEmptyInput)
		}
		return nil, faults.Input("failed to parse wire JSON", err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec, mode)
		case '[':
			return decodeArray(dec, mode)
		default:
			return nil, faults.Input(fmt.Sprintf("unexpected delimiter %q in wire JSON", t), nil)
		}
	case bool:
		return values.BooleanV(t), nil
	case string:
		return values.StringV(t), nil
	case json.Number:
		return decodeNumber(t)
	case nil:
		return values.NullV{}, nil
	default:
		return nil, faults.Input(fmt.Sprintf("unexpected token %v in wire JSON", tok), nil)
	}
}

// decodeNumber applies the integer-vs-double rule: a numeric literal is a
// Long unless it carries a fractional part or exponent.
func decodeNumber(num json.Number) (values.Value, error) {
	if strings.ContainsAny(num.String(), ".eE") {
		f, err := num.Float64()
		if err != nil {
			return nil, faults.Input(fmt.Sprintf("invalid number literal %q", num), err)
		}
		return values.DoubleV(f), nil
	}
	i, err := num.Int64()
	if err != nil {
		// Out of int64 range; fall back to the closest double.
		f, ferr := num.Float64()
		if ferr != nil {
			return nil, faults.Input(fmt.Sprintf("invalid number literal %q", num), ferr)
		}
		return values.DoubleV(f), nil
	}
	return values.LongV(i), nil
}

func decodeArray(dec *json.Decoder, mode decodeMode) (values.Value, error) {
	elemMode := modeNormal
	if mode == modeVerbatim {
		elemMode = modeVerbatim
	}

	arr := values.ArrayV{}
	for dec.More() {
		elem, err := decodeValue(dec, elemMode)
		if err != nil {
			return nil, err
		}
		arr = append(arr, elem)
	}
	if _, err := dec.Token(); err != nil { // closing ]
		return nil, faults.Input("unterminated array in wire JSON", err)
	}
	return arr, nil
}

func decodeObject(dec *json.Decoder, mode decodeMode) (values.Value, error) {
	var pairs []values.Pair
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, faults.Input("unterminated object in wire JSON", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, faults.Input(fmt.Sprintf("unexpected object key token %v", tok), nil)
		}

		memberMode := modeNormal
		switch {
		case mode == modeVerbatim:
			memberMode = modeVerbatim
		case mode == modeNormal && key == "@query":
			// The payload is an already-serialized expression; reserved keys
			// inside it are literal data.
			memberMode = modeVerbatim
		case mode == modeNormal && key == "@obj":
			memberMode = modePlain
		}

		member, err := decodeValue(dec, memberMode)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, values.Pair{Key: key, Value: member})
	}
	if _, err := dec.Token(); err != nil { // closing }
		return nil, faults.Input("unterminated object in wire JSON", err)
	}

	obj := values.Obj(pairs...)
	if mode != modeNormal {
		return obj, nil
	}
	return interpretObject(obj)
}

// interpretObject turns a completed plain object into its tagged variant, or
// leaves it as a plain Object when no reserved tag key is present. When a tag
// wins, every sibling member is discarded, including lower-priority tags and
// any non-tag members decoded alongside them.
func interpretObject(obj values.ObjectV) (values.Value, error) {
	for _, tag := range tagPriority {
		payload, present := obj.Get(tag)
		if !present {
			continue
		}
		switch tag {
		case "@ref":
			return interpretRef(payload)
		case "@set":
			params, ok := payload.(values.ObjectV)
			if !ok {
				return nil, faults.MalformedTag("@set", "payload must be an object of parameters")
			}
			return values.SetRefV{Parameters: params}, nil
		case "@ts":
			return interpretTime(payload)
		case "@date":
			return interpretDate(payload)
		case "@bytes":
			return interpretBytes(payload)
		case "@query":
			return values.QueryV{Expr: payload}, nil
		case "@obj":
			escaped, ok := payload.(values.ObjectV)
			if !ok {
				return nil, faults.MalformedTag("@obj", "payload must be an object")
			}
			return escaped, nil
		}
	}
	return obj, nil
}

func interpretRef(payload values.Value) (values.Value, error) {
	switch p := payload.(type) {
	case values.StringV:
		// Legacy compact form: the whole ref is an opaque id.
		return resolveRef(string(p), nil, nil), nil
	case values.ObjectV:
		id, ok := p.Get("id")
		if !ok {
			return nil, faults.MalformedTag("@ref", "missing id")
		}
		idStr, ok := id.(values.StringV)
		if !ok {
			return nil, faults.MalformedTag("@ref", "id must be a string")
		}
		collection, err := refParent(p, "collection")
		if err != nil {
			return nil, err
		}
		database, err := refParent(p, "database")
		if err != nil {
			return nil, err
		}
		return resolveRef(string(idStr), collection, database), nil
	default:
		return nil, faults.MalformedTag("@ref", "payload must be a string or an object")
	}
}

// refParent extracts a nested parent ref, which has already been decoded by
// the recursive member walk.
func refParent(obj values.ObjectV, key string) (*values.RefV, error) {
	member, present := obj.Get(key)
	if !present {
		return nil, nil
	}
	switch parent := member.(type) {
	case values.NullV:
		return nil, nil
	case values.RefV:
		return &parent, nil
	default:
		return nil, faults.MalformedTag("@ref", fmt.Sprintf("%s must be a ref", key))
	}
}

// resolveRef maps a parentless ref onto the fixed set of native root refs
// recognized by id.
func resolveRef(id string, collection, database *values.RefV) values.RefV {
	if collection == nil && database == nil {
		if native, ok := values.Native(id); ok {
			return *native
		}
	}
	return values.RefV{ID: id, Collection: collection, Database: database}
}

func interpretTime(payload values.Value) (values.Value, error) {
	s, ok := payload.(values.StringV)
	if !ok {
		return nil, faults.MalformedTag("@ts", "payload must be a string")
	}
	t, err := time.Parse(time.RFC3339Nano, string(s))
	if err != nil {
		return nil, faults.MalformedTag("@ts", err.Error())
	}
	return values.TimeOf(t), nil
}

func interpretDate(payload values.Value) (values.Value, error) {
	s, ok := payload.(values.StringV)
	if !ok {
		return nil, faults.MalformedTag("@date", "payload must be a string")
	}
	t, err := time.Parse("2006-01-02", string(s))
	if err != nil {
		return nil, faults.MalformedTag("@date", err.Error())
	}
	return values.DateOf(t), nil
}

// interpretBytes accepts every base64 alphabet and padding variant seen
// historically on the wire; encoding always emits the padded URL-safe form.
func interpretBytes(payload values.Value) (values.Value, error) {
	s, ok := payload.(values.StringV)
	if !ok {
		return nil, faults.MalformedTag("@bytes", "payload must be a string")
	}
	for _, enc := range []*base64.Encoding{
		base64.URLEncoding,
		base64.RawURLEncoding,
		base64.StdEncoding,
		base64.RawStdEncoding,
	} {
		if decoded, err := enc.DecodeString(string(s)); err == nil {
			return values.BytesV(decoded), nil
		}
	}
	return nil, faults.MalformedTag("@bytes", fmt.Sprintf("invalid base64 payload %q", string(s)))
}
