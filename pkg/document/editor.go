package document

import (
	derrors "github.com/matzehuels/jsondiagram/pkg/errors"
)

// Editor is the text side of the document boundary. It keeps the latest
// text and forwards a parsed value to its subscriber only when the text is
// valid JSON without duplicate keys.
//
// Editor is not safe for concurrent use.
type Editor struct {
	text     string
	value    *Value
	err      error
	onChange func(*Value)
}

// NewEditor creates an editor that calls onChange with every accepted value.
// onChange may be nil.
func NewEditor(onChange func(*Value)) *Editor {
	return &Editor{onChange: onChange}
}

// SetText replaces the editor content. Valid text is parsed and emitted;
// invalid text is kept (so the user can continue typing) but nothing is
// emitted and the last accepted value stays current. The returned error is
// also available through [Editor.Err].
func (e *Editor) SetText(text string) error {
	e.text = text

	v, err := Parse([]byte(text))
	if err != nil {
		e.err = err
		return err
	}

	e.err = nil
	e.value = v
	if e.onChange != nil {
		e.onChange(v)
	}
	return nil
}

// Load replaces the content with the formatted form of v, as when a file is
// imported. The value is emitted.
func (e *Editor) Load(v *Value) error {
	text, err := Format(v)
	if err != nil {
		return err
	}
	return e.SetText(string(text))
}

// Text returns the current content, valid or not.
func (e *Editor) Text() string { return e.text }

// Value returns the last accepted value, or nil.
func (e *Editor) Value() *Value { return e.value }

// Err returns the validation error of the current text, or nil.
func (e *Editor) Err() error { return e.err }

// Valid reports whether the current text was accepted.
func (e *Editor) Valid() bool { return e.err == nil }

// Problem describes the current validation error for display: a message
// without the code prefix and the 1-based line (0 when unknown).
func (e *Editor) Problem() (message string, line int) {
	if e.err == nil {
		return "", 0
	}
	return derrors.UserMessage(e.err), derrors.LineOf(e.err)
}
