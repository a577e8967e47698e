package ir

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// JSON serialization renders each node as its wire-level JSON Schema
// fragment. Refs render as {"$ref": "#/types/<Name>"}.

// MarshalJSON implements json.Marshaler for Primitive.
func (s *Primitive) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Type   string `json:"type"`
		Format string `json:"format,omitempty"`
	}{
		Type:   s.Name,
		Format: s.Format,
	})
}

// MarshalJSON implements json.Marshaler for Ref.
func (s *Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Ref string `json:"$ref"`
	}{
		Ref: "#/types/" + s.Name,
	})
}

// MarshalJSON implements json.Marshaler for Object. Properties keep their
// declaration order, which map-based marshaling would destroy.
func (s *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"object"`)

	if s.Description != "" {
		desc, err := json.Marshal(s.Description)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"description":`)
		buf.Write(desc)
	}

	if len(s.Properties) > 0 {
		buf.WriteString(`,"properties":{`)
		for i, p := range s.Properties {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(p.Name)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(p.Schema)
			if err != nil {
				return nil, err
			}
			buf.Write(name)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}

	if len(s.Required) > 0 {
		req, err := json.Marshal(s.Required)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"required":`)
		buf.Write(req)
	}

	if s.AdditionalProperties != nil {
		ap, err := json.Marshal(s.AdditionalProperties)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"additionalProperties":`)
		buf.Write(ap)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for Array.
func (s *Array) MarshalJSON() ([]byte, error) {
	items := s.Items
	if items == nil {
		items = NewUnknown()
	}
	return json.Marshal(&struct {
		Type  string `json:"type"`
		Items Schema `json:"items"`
	}{
		Type:  "array",
		Items: items,
	})
}

// discriminatorJSON is the OpenAPI-style discriminator object.
type discriminatorJSON struct {
	PropertyName string `json:"propertyName"`
}

// MarshalJSON implements json.Marshaler for AnyOf.
func (s *AnyOf) MarshalJSON() ([]byte, error) {
	out := struct {
		AnyOf         []Schema           `json:"anyOf"`
		Discriminator *discriminatorJSON `json:"discriminator,omitempty"`
	}{
		AnyOf: s.Schemas,
	}
	if s.Discriminator != "" {
		out.Discriminator = &discriminatorJSON{PropertyName: s.Discriminator}
	}
	return json.Marshal(&out)
}

// MarshalJSON implements json.Marshaler for AllOf.
func (s *AllOf) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		AllOf []Schema `json:"allOf"`
	}{
		AllOf: s.Schemas,
	})
}

// MarshalJSON implements json.Marshaler for OneOf.
func (s *OneOf) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		OneOf []Schema `json:"oneOf"`
	}{
		OneOf: s.Schemas,
	})
}

// MarshalJSON implements json.Marshaler for Enum.
func (s *Enum) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Enum []any `json:"enum"`
	}{
		Enum: s.Values,
	})
}

// MarshalJSON implements json.Marshaler for Opaque. The textual form is
// carried in the type field verbatim.
func (s *Opaque) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Type string `json:"type"`
	}{
		Type: s.Type,
	})
}

// MarshalJSON implements json.Marshaler for Unknown. An empty schema accepts
// anything, which is the correct degraded meaning.
func (s *Unknown) MarshalJSON() ([]byte, error) {
	return []byte("{}"), nil
}
