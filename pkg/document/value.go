package document

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind identifies the JSON type of a [Value].
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is one key/value entry of an object, in document order.
type Member struct {
	Key   string
	Value *Value
}

// Value is a parsed JSON value that preserves object member order.
//
// Scalars keep their text in Scalar: the decoded content for strings, the
// literal for numbers ("1.50" stays "1.50"), "true"/"false" for booleans and
// "null" for null. Containers use Members (objects) or Elements (arrays).
type Value struct {
	Kind     Kind
	Scalar   string
	Members  []Member
	Elements []*Value
}

// Null returns a null value.
func Null() *Value { return &Value{Kind: KindNull, Scalar: "null"} }

// String returns a string value.
func String(s string) *Value { return &Value{Kind: KindString, Scalar: s} }

// Number returns a number value from its literal text.
func Number(literal string) *Value { return &Value{Kind: KindNumber, Scalar: literal} }

// Bool returns a boolean value.
func Bool(b bool) *Value { return &Value{Kind: KindBool, Scalar: strconv.FormatBool(b)} }

// Array returns an array value holding elems.
func Array(elems ...*Value) *Value { return &Value{Kind: KindArray, Elements: elems} }

// Object returns an object value holding members in the given order.
func Object(members ...Member) *Value { return &Value{Kind: KindObject, Members: members} }

// IsContainer reports whether v is an object or an array.
// Containers become diagram nodes; everything else is a property.
func (v *Value) IsContainer() bool {
	return v != nil && (v.Kind == KindObject || v.Kind == KindArray)
}

// Text returns the display text of a scalar. Null (and a nil value) renders
// as the literal "null".
func (v *Value) Text() string {
	if v == nil || v.Kind == KindNull {
		return "null"
	}
	return v.Scalar
}

// Get returns the first member named key, or nil.
func (v *Value) Get(key string) *Value {
	if v == nil {
		return nil
	}
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// MarshalJSON encodes v compactly, keeping member order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) encode(buf *bytes.Buffer) error {
	if v == nil {
		buf.WriteString("null")
		return nil
	}
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(v.Scalar)
	case KindNumber:
		if !json.Valid([]byte(v.Scalar)) {
			return &json.UnsupportedValueError{Str: v.Scalar}
		}
		buf.WriteString(v.Scalar)
	case KindString:
		if err := writeString(buf, v.Scalar); err != nil {
			return err
		}
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.Elements {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// writeString quotes s without HTML escaping so exports keep "<", ">" and "&".
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}
