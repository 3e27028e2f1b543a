// Package schema compiles JSON schemas once and validates raw JSON documents against them.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDocument is wrapped by every validation failure.
var ErrInvalidDocument = errors.New("document does not match schema")

// ValidationError lists the individual schema violations.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidDocument, strings.Join(e.Fields, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidDocument }

// Schema is a compiled JSON schema.
type Schema struct {
	compiled *gojsonschema.Schema
}

// Compile parses a JSON schema definition.
func Compile(definition string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(definition))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// MustCompile is Compile for package-level schemas; it panics on malformed definitions.
func MustCompile(definition string) *Schema {
	s, err := Compile(definition)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks raw JSON against the schema. Malformed JSON is reported as a ValidationError.
func (s *Schema) Validate(raw []byte) error {
	result, err := s.compiled.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ValidationError{Fields: []string{"body: " + err.Error()}}
	}
	if result.Valid() {
		return nil
	}

	fields := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		fields[i] = desc.String()
	}
	return &ValidationError{Fields: fields}
}
