package dto

import (
	"encoding/json"
	"strings"
)

// FieldIntent tells what an update wants to do with a single field.
type FieldIntent int

const (
	FieldUnchanged FieldIntent = iota
	FieldClear
	FieldSet
)

// OptionalText carries per-field intent for note updates.
// An absent JSON key decodes to FieldUnchanged, null or a blank string to
// FieldClear, anything else to FieldSet. The raw value is kept for Clear too so
// length rules still see what the client sent.
type OptionalText struct {
	intent FieldIntent
	raw    string
}

func Unchanged() OptionalText {
	return OptionalText{intent: FieldUnchanged}
}

func Clear() OptionalText {
	return OptionalText{intent: FieldClear}
}

// Text builds the intent implied by a concrete value.
func Text(value string) OptionalText {
	if strings.TrimSpace(value) == "" {
		return OptionalText{intent: FieldClear, raw: value}
	}
	return OptionalText{intent: FieldSet, raw: value}
}

func (o OptionalText) Intent() FieldIntent { return o.intent }

func (o OptionalText) IsPresent() bool { return o.intent != FieldUnchanged }

func (o OptionalText) IsClear() bool { return o.intent == FieldClear }

// Raw returns the value as received, including whitespace.
func (o OptionalText) Raw() string { return o.raw }

// Value returns the value to store: empty for Clear, raw for Set.
func (o OptionalText) Value() string {
	if o.intent == FieldSet {
		return o.raw
	}
	return ""
}

func (o *OptionalText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Clear()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = Text(s)
	return nil
}

func (o OptionalText) MarshalJSON() ([]byte, error) {
	switch o.intent {
	case FieldSet, FieldClear:
		return json.Marshal(o.raw)
	default:
		return []byte("null"), nil
	}
}
