/*
Copyright 2024 The Knative Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// DataKind tells how a payload was supplied and, together with the content
// type, how it is serialized.
type DataKind int8

const (
	DataEmpty DataKind = iota
	DataJSON
	DataText
	DataBinary
)

func (k DataKind) String() string {
	switch k {
	case DataJSON:
		return "JSON"
	case DataText:
		return "Text"
	case DataBinary:
		return "Binary"
	default:
		return "Empty"
	}
}

// Data is the optional payload of an event. The zero value is the empty
// payload. Data owns its bytes: constructors and accessors copy.
type Data struct {
	kind DataKind
	b    []byte
}

// JSONData marshals v into a JSON payload. json.RawMessage and []byte values
// are taken as already encoded JSON.
func JSONData(v interface{}) (Data, error) {
	switch raw := v.(type) {
	case json.RawMessage:
		return RawJSONData(raw)
	case []byte:
		return RawJSONData(raw)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return Data{}, fmt.Errorf("marshalling JSON data: %w", err)
	}
	return Data{kind: DataJSON, b: b}, nil
}

// RawJSONData returns a JSON payload holding a copy of raw, which must be a
// single JSON value.
func RawJSONData(raw []byte) (Data, error) {
	trimmed := bytes.TrimSpace(raw)
	if !utf8.Valid(trimmed) || !json.Valid(trimmed) {
		return Data{}, &DataEncodingError{Reason: "payload is not a valid JSON value"}
	}
	return Data{kind: DataJSON, b: clone(trimmed)}, nil
}

// TextData returns a text payload.
func TextData(s string) Data {
	return Data{kind: DataText, b: []byte(s)}
}

// BinaryData returns an opaque payload holding a copy of b.
func BinaryData(b []byte) Data {
	return Data{kind: DataBinary, b: clone(b)}
}

// Kind returns how the payload was supplied.
func (d Data) Kind() DataKind { return d.kind }

// IsEmpty reports whether the event carries no payload.
func (d Data) IsEmpty() bool { return d.kind == DataEmpty }

// Bytes returns a copy of the payload bytes: the encoded JSON value, the
// UTF-8 text or the raw bytes.
func (d Data) Bytes() []byte { return clone(d.b) }

// Len returns the payload size in bytes.
func (d Data) Len() int { return len(d.b) }

// JSON returns the encoded JSON value of a JSON payload.
func (d Data) JSON() (json.RawMessage, bool) {
	if d.kind != DataJSON {
		return nil, false
	}
	return json.RawMessage(clone(d.b)), true
}

// Text returns the string of a Text payload.
func (d Data) Text() (string, bool) {
	if d.kind != DataText {
		return "", false
	}
	return string(d.b), true
}

// Equal reports whether both payloads carry the same bytes. Whitespace around
// a JSON value is not significant.
func (d Data) Equal(o Data) bool {
	if d.kind == DataEmpty || o.kind == DataEmpty {
		return d.kind == o.kind
	}
	if d.kind == DataJSON || o.kind == DataJSON {
		return bytes.Equal(bytes.TrimSpace(d.b), bytes.TrimSpace(o.b))
	}
	return bytes.Equal(d.b, o.b)
}

// raw exposes the payload bytes without copying; callers must not modify them.
func (d Data) raw() []byte { return d.b }

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append(make([]byte, 0, len(b)), b...)
}
