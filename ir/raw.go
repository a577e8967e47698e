package ir

import (
	"reflect"

	json "github.com/goccy/go-json"
)

// Raw carries an externally produced schema fragment verbatim, e.g. one
// obtained by evaluating a recognized runtime schema object. It marshals as
// the value itself.
type Raw struct {
	base
	Value any
}

// Kind returns KindRaw.
func (s *Raw) Kind() Kind { return KindRaw }

// Equal compares the wrapped values structurally.
func (s *Raw) Equal(o Schema) bool {
	r, ok := o.(*Raw)
	return ok && reflect.DeepEqual(s.Value, r.Value)
}

// MarshalJSON implements json.Marshaler for Raw.
func (s *Raw) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}
