package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// JSONValue is a generic type to represent any JSON value.
// This can be a string, json.Number, boolean, nil, *JSONObject, or JSONArray.
type JSONValue interface{}

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// JSONObject represents a JSON object that remembers the order its keys
// were first seen in. Keys that are array indices ("0", "1", ... up to
// 2^32-2, no leading zeros) come first in ascending order, the way a
// JavaScript object orders them; all other keys follow in insertion order.
type JSONObject struct {
	keys   []string
	values map[string]JSONValue
}

// NewJSONObject creates an empty JSONObject
func NewJSONObject() *JSONObject {
	return &JSONObject{values: make(map[string]JSONValue)}
}

// Set stores a value. A repeated key keeps its first position and takes the new value.
func (o *JSONObject) Set(key string, value JSONValue) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key
func (o *JSONObject) Get(key string) (JSONValue, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in serialization order
func (o *JSONObject) Keys() []string {
	return o.ordered()
}

func (o *JSONObject) ordered() []string {
	indices := make([]string, 0)
	named := make([]string, 0, len(o.keys))
	for _, key := range o.keys {
		if _, ok := arrayIndex(key); ok {
			indices = append(indices, key)
		} else {
			named = append(named, key)
		}
	}
	if len(indices) == 0 {
		return named
	}
	sort.Slice(indices, func(i, j int) bool {
		a, _ := arrayIndex(indices[i])
		b, _ := arrayIndex(indices[j])
		return a < b
	})
	return append(indices, named...)
}

// arrayIndex reports whether key is the canonical spelling of an integer
// in [0, 2^32-2].
func arrayIndex(key string) (uint64, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == 1<<32-1 {
		return 0, false
	}
	return n, true
}

// Len returns the number of keys
func (o *JSONObject) Len() int {
	return len(o.keys)
}

// MarshalJSON writes the object with keys in the order Keys reports
func (o *JSONObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.ordered() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := MarshalNoEscape(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := MarshalNoEscape(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalNoEscape is json.Marshal without the HTML escaping of <, > and &.
func MarshalNoEscape(v JSONValue) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Options are the user-toggled switches that drive a conversion.
type Options struct {
	PrettyPrint   bool
	CombineArrays bool
	// Repair retries the whole-text parse through a JSON repairer before failing.
	Repair bool
}

// ConversionResult is the outcome of a successful conversion.
type ConversionResult struct {
	FinalValue   JSONValue
	Serialized   string
	ElementCount int
	// ArraysFound is the number of bracketed lines that parsed as arrays.
	ArraysFound int
	// SkippedLines holds the per-line failures that were recovered from.
	SkippedLines []error
	// Repaired is set when the result only parsed after JSON repair.
	Repaired bool
}

// Preview is the live feedback shown while the user is still typing.
type Preview struct {
	OK      bool
	Waiting bool
	Text    string
}
