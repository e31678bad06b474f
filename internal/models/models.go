package models

// JSONValue is a generic type to represent any JSON value.
// This can be a string, number, boolean, null, object, or array.
type JSONValue interface{}

// JSONObject represents a JSON object, which is a map of strings to JSONValues.
type JSONObject map[string]JSONValue

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// Field is one named child of a record-like value.
type Field struct {
	Name  string
	Value any
}

// Record is implemented by types that declare their own named fields instead
// of relying on reflection. A type built on top of another one lists its own
// fields first and then appends the base type's JSONFields. When a name
// repeats, the first occurrence wins.
//
// A struct embedding a Record without defining JSONFields itself inherits the
// promoted method, and its other fields are not serialized.
type Record interface {
	JSONFields() []Field
}

// Collection is implemented by types that serialize as an ordered list of
// unnamed children: sets, tuples, or enum cases carrying a payload.
type Collection interface {
	JSONElements() []any
}

// Document is a decoded input document handed to the serializer by the CLI.
type Document struct {
	Root   JSONValue
	Format string // "json" or "yaml"
}
