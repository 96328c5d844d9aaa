package values

import (
	"bytes"
	"fmt"
)

// RefV is an opaque reference to a stored resource. References form a
// recursive parent chain: a document ref points at its collection ref, which
// points at the database-level native ref. Two refs are equal iff their id
// and full parent chain are equal.
type RefV struct {
	ID         string
	Collection *RefV
	Database   *RefV
}

// NewRef constructs a reference with the given parent chain. Either parent
// may be nil.
func NewRef(id string, collection, database *RefV) RefV {
	return RefV{ID: id, Collection: collection, Database: database}
}

// Native root references, recognized by id when a decoded ref carries no
// parent chain.
var (
	NativeCollections = &RefV{ID: "collections"}
	NativeIndexes     = &RefV{ID: "indexes"}
	NativeDatabases   = &RefV{ID: "databases"}
	NativeFunctions   = &RefV{ID: "functions"}
	NativeRoles       = &RefV{ID: "roles"}
	NativeKeys        = &RefV{ID: "keys"}
)

var nativesByID = map[string]*RefV{
	"collections": NativeCollections,
	"indexes":     NativeIndexes,
	"databases":   NativeDatabases,
	"functions":   NativeFunctions,
	"roles":       NativeRoles,
	"keys":        NativeKeys,
}

// Native returns the native root reference for id, if one exists.
func Native(id string) (*RefV, bool) {
	ref, ok := nativesByID[id]
	return ref, ok
}

func (RefV) Kind() string { return "Ref" }

func (r RefV) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "ref(id=%q", r.ID)
	if r.Collection != nil {
		buf.WriteString(", collection=")
		buf.WriteString(r.Collection.String())
	}
	if r.Database != nil {
		buf.WriteString(", database=")
		buf.WriteString(r.Database.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

func (r RefV) Equals(other Value) bool {
	o, ok := other.(RefV)
	return ok &&
		r.ID == o.ID &&
		parentEquals(r.Collection, o.Collection) &&
		parentEquals(r.Database, o.Database)
}

func parentEquals(a, b *RefV) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equals(*b)
}

// SetRefV is an opaque, server-interpreted set descriptor: a named parameter
// mapping whose meaning lives entirely server-side.
type SetRefV struct {
	Parameters ObjectV
}

func (SetRefV) Kind() string { return "SetRef" }

func (s SetRefV) String() string {
	return "set(" + s.Parameters.String() + ")"
}

func (s SetRefV) Equals(other Value) bool {
	o, ok := other.(SetRefV)
	return ok && s.Parameters.Equals(o.Parameters)
}

// QueryV is an embedded, already-serialized query expression. The payload is
// held as a plain value tree: reserved tag keys inside it are literal data,
// not wire tags, and are re-emitted verbatim on encode.
type QueryV struct {
	Expr Value
}

func (QueryV) Kind() string { return "Query" }

func (q QueryV) String() string {
	if q.Expr == nil {
		return "query(null)"
	}
	return "query(" + q.Expr.String() + ")"
}

func (q QueryV) Equals(other Value) bool {
	o, ok := other.(QueryV)
	if !ok {
		return false
	}
	if q.Expr == nil || o.Expr == nil {
		return q.Expr == nil && o.Expr == nil
	}
	return q.Expr.Equals(o.Expr)
}
