// Package raw models the PDF object vocabulary on the write side:
// names, numbers, strings, arrays, dictionaries, streams and indirect
// references. The types carry no serialization logic themselves; the
// writer package turns them into bytes.
package raw

// ObjectRef identifies an indirect object: object number plus
// generation. New documents only ever emit generation 0.
type ObjectRef struct {
	Num int
	Gen int
}

// Object is implemented by every raw PDF value.
type Object interface {
	Kind() string
}

// NameObj is a PDF name, stored without the leading slash.
type NameObj struct{ Val string }

func (NameObj) Kind() string { return "name" }
func (n NameObj) Value() string { return n.Val }

// NumberObj holds either an integer or a real.
type NumberObj struct {
	I     int64
	F     float64
	IsInt bool
}

func (NumberObj) Kind() string { return "number" }
func (n NumberObj) Int() int64 { return n.I }
func (n NumberObj) Float() float64 {
	if n.IsInt {
		return float64(n.I)
	}
	return n.F
}

// BoolObj is a PDF boolean.
type BoolObj struct{ V bool }

func (BoolObj) Kind() string { return "boolean" }
func (b BoolObj) Value() bool { return b.V }

// NullObj is the PDF null object.
type NullObj struct{}

func (NullObj) Kind() string { return "null" }

// StringObj is a literal string, stored without the enclosing parens
// and unescaped.
type StringObj struct{ Bytes []byte }

func (StringObj) Kind() string { return "string" }
func (s StringObj) Value() []byte { return s.Bytes }

// ArrayObj is an ordered sequence of objects.
type ArrayObj struct{ Items []Object }

func (*ArrayObj) Kind() string { return "array" }
func (a *ArrayObj) Len() int { return len(a.Items) }
func (a *ArrayObj) Append(o Object) { a.Items = append(a.Items, o) }

// DictObj is a dictionary that remembers insertion order, so the
// serialized form is deterministic and keeps conventional key order
// (/Type first, and so on).
type DictObj struct {
	keys []string
	kv   map[string]Object
}

func (*DictObj) Kind() string { return "dict" }

// Set inserts or replaces a key. Replacing keeps the original position.
func (d *DictObj) Set(key string, value Object) {
	if d.kv == nil {
		d.kv = make(map[string]Object)
	}
	if _, ok := d.kv[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.kv[key] = value
}

// Get returns the value for key, if present.
func (d *DictObj) Get(key string) (Object, bool) {
	o, ok := d.kv[key]
	return o, ok
}

// Keys returns the keys in insertion order. The slice is shared; do
// not mutate it.
func (d *DictObj) Keys() []string { return d.keys }

func (d *DictObj) Len() int { return len(d.keys) }

// StreamObj pairs a dictionary with raw stream data. The /Length entry
// is supplied by the writer at serialization time.
type StreamObj struct {
	Dict *DictObj
	Data []byte
}

func (*StreamObj) Kind() string { return "stream" }

// RefObj is an indirect reference to another object.
type RefObj struct{ R ObjectRef }

func (RefObj) Kind() string { return "ref" }
func (r RefObj) Ref() ObjectRef { return r.R }

// Constructors, mirroring how callers build object graphs.

func Name(v string) NameObj { return NameObj{Val: v} }
func Int(i int64) NumberObj { return NumberObj{I: i, IsInt: true} }
func Real(f float64) NumberObj { return NumberObj{F: f} }
func Bool(v bool) BoolObj { return BoolObj{V: v} }
func Str(b []byte) StringObj { return StringObj{Bytes: b} }
func Text(s string) StringObj { return StringObj{Bytes: []byte(s)} }
func Array(items ...Object) *ArrayObj { return &ArrayObj{Items: items} }
func Dict() *DictObj { return &DictObj{kv: make(map[string]Object)} }
func Ref(r ObjectRef) RefObj { return RefObj{R: r} }

// Stream builds a stream object around dict; a nil dict gets an empty one.
func Stream(dict *DictObj, data []byte) *StreamObj {
	if dict == nil {
		dict = Dict()
	}
	return &StreamObj{Dict: dict, Data: data}
}
