package datatree

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldType is the computed type of a Field.
type FieldType int

const (
	FieldNumber FieldType = iota
	FieldDate
	FieldTimestamp
	FieldString
	FieldBoolean
	FieldJSON
	FieldSQLNative
	FieldArray
	FieldRecord
	FieldRepeatedRecord
)

var fieldTypeNames = [...]string{
	FieldNumber:         "number",
	FieldDate:           "date",
	FieldTimestamp:      "timestamp",
	FieldString:         "string",
	FieldBoolean:        "boolean",
	FieldJSON:           "json",
	FieldSQLNative:      "sql_native",
	FieldArray:          "array",
	FieldRecord:         "record",
	FieldRepeatedRecord: "repeated_record",
}

func (t FieldType) String() string {
	if int(t) < len(fieldTypeNames) {
		return fieldTypeNames[t]
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// IsNest reports whether fields of this type contain named columns.
func (t FieldType) IsNest() bool {
	return t == FieldRecord || t == FieldRepeatedRecord
}

// UnknownTypeError is returned for a schema type kind this package does not
// know how to build.
type UnknownTypeError struct {
	Path []string
	Kind string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("field %s: unknown type kind %q", PathToKey(e.Path), e.Kind)
}

// TypeMismatchError is returned when a cell's kind does not match the type of
// the field it is paired with.
type TypeMismatchError struct {
	Path      []string
	FieldType FieldType
	CellKind  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field %s: %s field cannot hold %s", PathToKey(e.Path), e.FieldType, e.CellKind)
}

// MissingChildError is returned when a record value has fewer members than
// its field has columns, or a type lacks a required child.
type MissingChildError struct {
	Path []string
	Name string
}

func (e *MissingChildError) Error() string {
	return fmt.Sprintf("field %s: missing child %q", PathToKey(e.Path), e.Name)
}

// PathError is returned when a path does not address a field or cell.
type PathError struct {
	Path    []string
	Segment string
	Reason  string
}

func (e *PathError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("path %s: %s", PathToKey(e.Path), e.Reason)
	}
	return fmt.Sprintf("path %s: %q: %s", PathToKey(e.Path), e.Segment, e.Reason)
}

// PathToKey encodes a path as a registry key.
func PathToKey(path []string) string {
	if path == nil {
		path = []string{}
	}
	b, _ := json.Marshal(path)
	return string(b)
}

// PathFromKey decodes a registry key.
func PathFromKey(key string) ([]string, error) {
	var path []string
	if err := json.Unmarshal([]byte(key), &path); err != nil {
		return nil, fmt.Errorf("decode path key %q: %w", key, err)
	}
	return path, nil
}

// parseRelativePath splits "../x/y" into the number of enclosing rows to
// climb and the remaining segments.
func parseRelativePath(p string) (levelsUp int, segments []string) {
	levelsUp = 1
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "..":
			levelsUp++
		case "", ".":
		default:
			segments = append(segments, part)
		}
	}
	return levelsUp, segments
}
