package blueprint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Value is a loosely typed, order-preserving JSON value.
//
// Concrete types are string, json.Number, bool, nil, []Value and *Object.
// Untrusted blueprint content is held as a Value until it is either validated
// into a Node (editing time) or rendered with per-node containment (render time).
type Value = any

// Object is a JSON object that remembers key insertion order.
// Duplicate keys keep their first position and their last value, matching
// how browsers parse JSON.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject creates an empty ordered object
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Len returns the number of keys
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Get returns the value stored under key
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Set stores value under key, appending key if it is new
func (o *Object) Set(key string, value Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Range calls fn for each entry in insertion order until fn returns false
func (o *Object) Range(fn func(key string, value Value) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

// CloneValue deep-copies objects and arrays; scalars are returned as is
func CloneValue(v Value) Value {
	type item struct {
		src Value
		set func(Value)
	}

	var root Value
	stack := []item{{src: v, set: func(c Value) { root = c }}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch x := it.src.(type) {
		case *Object:
			if x == nil {
				it.set(x)
				continue
			}
			obj := &Object{keys: append([]string(nil), x.keys...), values: make(map[string]Value, len(x.values))}
			it.set(obj)
			for _, k := range x.keys {
				stack = append(stack, item{src: x.values[k], set: func(c Value) { obj.values[k] = c }})
			}
		case []Value:
			if x == nil {
				it.set(x)
				continue
			}
			arr := make([]Value, len(x))
			it.set(arr)
			for i := range x {
				stack = append(stack, item{src: x[i], set: func(c Value) { arr[i] = c }})
			}
		default:
			it.set(x)
		}
	}
	return root
}

// MarshalJSON writes the object with keys in insertion order
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
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
		val, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an ordered object
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := DecodeValue(data)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return fmt.Errorf("expected JSON object, got %s", TypeName(v))
	}
	*o = *obj
	return nil
}

// ErrNestingTooDeep is returned when a document exceeds the decoder's nesting limit
var ErrNestingTooDeep = errors.New("JSON nesting too deep")

// DecodeValue decodes a single JSON document into an ordered Value.
func DecodeValue(data []byte) (Value, error) {
	return decodeValue(data, 0)
}

type decodeFrame struct {
	obj     *Object
	arr     []Value
	isArray bool
	key     string
	wantKey bool
}

// decodeValue walks the token stream with an explicit stack so that hostile
// nesting cannot grow the goroutine stack. maxNesting <= 0 means unlimited.
func decodeValue(data []byte, maxNesting int) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var (
		stack    []*decodeFrame
		root     Value
		haveRoot bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if haveRoot && len(stack) == 0 {
			return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
		}

		var (
			v    Value
			done bool
		)

		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{', '[':
				if maxNesting > 0 && len(stack) >= maxNesting {
					return nil, fmt.Errorf("%w: limit is %d levels", ErrNestingTooDeep, maxNesting)
				}
				if t == '{' {
					stack = append(stack, &decodeFrame{obj: NewObject(), wantKey: true})
				} else {
					stack = append(stack, &decodeFrame{isArray: true, arr: []Value{}})
				}
				continue
			case '}', ']':
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.isArray {
					v = top.arr
				} else {
					v = top.obj
				}
				done = true
			}
		default:
			if n := len(stack); n > 0 && !stack[n-1].isArray && stack[n-1].wantKey {
				stack[n-1].key, _ = tok.(string)
				stack[n-1].wantKey = false
				continue
			}
			v = tok
			done = true
		}

		if !done {
			continue
		}
		if len(stack) == 0 {
			root = v
			haveRoot = true
			continue
		}
		parent := stack[len(stack)-1]
		if parent.isArray {
			parent.arr = append(parent.arr, v)
		} else {
			parent.obj.Set(parent.key, v)
			parent.wantKey = true
		}
	}

	if len(stack) > 0 {
		return nil, io.ErrUnexpectedEOF
	}
	if !haveRoot {
		return nil, errors.New("empty JSON document")
	}
	return root, nil
}

// TypeName describes the JSON type of v for error messages
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number, float64, float32, int, int64, int32, uint, uint64, uint32:
		return "number"
	case bool:
		return "boolean"
	case []Value:
		return "array"
	case *Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// isScalar reports whether v is a JSON string, number or boolean
func isScalar(v Value) bool {
	switch v.(type) {
	case string, json.Number, bool, float64, float32, int, int64, int32, uint, uint64, uint32:
		return true
	}
	return false
}
