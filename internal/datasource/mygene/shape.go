package mygene

import (
	"bytes"
	"encoding/json"
)

// Shape records which JSON form a OneOrMany value arrived in.
type Shape int

const (
	Absent Shape = iota
	Single
	List
)

// OneOrMany decodes a field that the service sends either as a single
// value or as an array of values (multi-mapping genes, alias lists).
type OneOrMany[T any] struct {
	Shape Shape
	Items []T
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = OneOrMany[T]{}
		return nil
	}

	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*o = OneOrMany[T]{Shape: List, Items: items}
		return nil
	}

	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*o = OneOrMany[T]{Shape: Single, Items: []T{one}}
	return nil
}

// First returns the first item, if any.
func (o OneOrMany[T]) First() (T, bool) {
	if len(o.Items) == 0 {
		var zero T
		return zero, false
	}
	return o.Items[0], true
}

// scalar holds a JSON string or number as text: "22" and 22 both decode
// to "22". Null decodes to the empty string.
type scalar string

// UnmarshalJSON implements json.Unmarshaler.
func (s *scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = scalar(str)
	default:
		*s = scalar(data)
	}
	return nil
}
