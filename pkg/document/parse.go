package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	derrors "github.com/matzehuels/jsondiagram/pkg/errors"
)

// maxDepth bounds container nesting so adversarial input cannot exhaust the stack.
const maxDepth = 10000

// Parse decodes data into an ordered [Value].
//
// Beyond the JSON grammar, Parse rejects duplicate keys inside the same
// object. Keys that repeat across different objects are fine:
//
//	{"a":1,"a":2}                  // DUPLICATE_KEY
//	{"a":{"x":1},"b":{"x":1}}      // ok
//
// Errors are [*derrors.Error] values with code INVALID_JSON or DUPLICATE_KEY
// and, when derivable, the 1-based line of the problem.
func Parse(data []byte) (*Value, error) {
	p := newParser(data)

	v, err := p.value(0)
	if err != nil {
		return nil, err
	}

	// Anything after the root value is trailing garbage.
	if _, err := p.dec.Token(); err != io.EOF {
		if err != nil {
			return nil, p.syntaxError(err)
		}
		return nil, derrors.AtLine(derrors.ErrCodeInvalidJSON, p.line(p.dec.InputOffset()),
			"unexpected content after top-level value")
	}
	return v, nil
}

// Validate reports whether text is an acceptable document without keeping
// the decoded value.
func Validate(text string) error {
	_, err := Parse([]byte(text))
	return err
}

type parser struct {
	data []byte
	dec  *json.Decoder
}

func newParser(data []byte) *parser {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return &parser{data: data, dec: dec}
}

func (p *parser) value(depth int) (*Value, error) {
	if depth > maxDepth {
		return nil, derrors.AtLine(derrors.ErrCodeInvalidJSON, p.line(p.dec.InputOffset()),
			"document nested deeper than %d levels", maxDepth)
	}

	tok, err := p.dec.Token()
	if err != nil {
		if err == io.EOF && depth == 0 {
			return nil, derrors.New(derrors.ErrCodeInvalidJSON, "document is empty")
		}
		return nil, p.syntaxError(err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return p.object(depth)
		case '[':
			return p.array(depth)
		}
		return nil, derrors.AtLine(derrors.ErrCodeInvalidJSON, p.line(p.dec.InputOffset()),
			"unexpected %q", rune(t))
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String()), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	}
	return nil, derrors.New(derrors.ErrCodeInternal, "unexpected token %T", tok)
}

func (p *parser) object(depth int) (*Value, error) {
	obj := &Value{Kind: KindObject}
	seen := make(map[string]struct{})

	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, p.syntaxError(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, derrors.AtLine(derrors.ErrCodeInvalidJSON, p.line(p.dec.InputOffset()),
				"object key must be a string")
		}
		if _, dup := seen[key]; dup {
			return nil, derrors.AtLine(derrors.ErrCodeDuplicateKey, p.line(p.dec.InputOffset()),
				"duplicate key %q", key)
		}
		seen[key] = struct{}{}

		child, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		obj.Members = append(obj.Members, Member{Key: key, Value: child})
	}

	if err := p.closing('}'); err != nil {
		return nil, err
	}
	return obj, nil
}

func (p *parser) array(depth int) (*Value, error) {
	arr := &Value{Kind: KindArray, Elements: []*Value{}}

	for p.dec.More() {
		child, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, child)
	}

	if err := p.closing(']'); err != nil {
		return nil, err
	}
	return arr, nil
}

func (p *parser) closing(want json.Delim) error {
	tok, err := p.dec.Token()
	if err != nil {
		return p.syntaxError(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return derrors.AtLine(derrors.ErrCodeInvalidJSON, p.line(p.dec.InputOffset()),
			"expected %q", rune(want))
	}
	return nil
}

// syntaxError converts decoder errors into coded errors with a line.
func (p *parser) syntaxError(err error) error {
	var se *json.SyntaxError
	switch {
	case errors.As(err, &se):
		return derrors.AtLine(derrors.ErrCodeInvalidJSON, p.line(se.Offset), "%s", se.Error())
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return derrors.AtLine(derrors.ErrCodeInvalidJSON, p.line(int64(len(p.data))),
			"unexpected end of input")
	default:
		return derrors.Wrap(derrors.ErrCodeInvalidJSON, err, "read document")
	}
}

// line maps a byte offset to a 1-based line number.
func (p *parser) line(offset int64) int {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(p.data)) {
		offset = int64(len(p.data))
	}
	return 1 + bytes.Count(p.data[:offset], []byte{'\n'})
}
