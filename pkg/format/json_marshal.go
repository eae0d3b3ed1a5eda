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

package format

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"
	"unicode/utf8"

	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/mediatype"
	"knative.dev/ceformat/pkg/spec"
)

// Marshal writes the event as a structured-mode JSON document. Members come
// in a fixed order: specversion, id, type, source, subject, time, extensions
// in insertion order, datacontenttype, dataschema and finally the payload.
func Marshal(e event.Event) ([]byte, error) {
	m, err := spec.Lookup(string(e.SpecVersion()))
	if err != nil {
		return nil, err
	}

	w := newWriter()
	w.stringMember(m.MustName(spec.SpecVersion), string(m.Version()))
	w.stringMember(m.MustName(spec.ID), e.ID())
	w.stringMember(m.MustName(spec.Type), e.Type())
	w.stringMember(m.MustName(spec.Source), e.Source())
	if e.Subject() != "" {
		w.stringMember(m.MustName(spec.Subject), e.Subject())
	}
	if t := e.Time(); !t.IsZero() {
		w.stringMember(m.MustName(spec.Time), t.Format(time.RFC3339Nano))
	}
	for _, x := range e.Extensions() {
		w.extensionMember(x)
	}
	if ct := e.DataContentType(); ct != "" {
		w.stringMember(m.MustName(spec.DataContentType), ct)
	}
	if schema := e.DataSchema(); schema != "" {
		w.stringMember(m.MustName(spec.DataSchema), schema)
	}
	if err := writePayload(w, m, e.DataContentType(), e.Data()); err != nil {
		return nil, err
	}
	return w.close(), nil
}

// writePayload picks the wire representation of the payload: inline JSON,
// inline text or base64.
func writePayload(w *writer, m *spec.Mapping, contentType string, d event.Data) error {
	b := d.Bytes()
	switch d.Kind() {
	case event.DataEmpty:
		return nil

	case event.DataJSON:
		w.rawMember(spec.Data, b)
		return nil

	case event.DataText:
		if !utf8.Valid(b) {
			return &event.DataEncodingError{ContentType: contentType, Reason: "text payload is not valid UTF-8"}
		}
		if mediatype.IsJSON(contentType) {
			if !json.Valid(b) {
				return &event.DataEncodingError{ContentType: contentType, Reason: "text payload is not a JSON document"}
			}
			w.rawMember(spec.Data, bytes.TrimSpace(b))
			return nil
		}
		if contentType == "" || mediatype.IsText(contentType) {
			w.stringMember(spec.Data, string(b))
			return nil
		}

	case event.DataBinary:
		if utf8.Valid(b) {
			if mediatype.IsJSON(contentType) && json.Valid(b) {
				w.rawMember(spec.Data, bytes.TrimSpace(b))
				return nil
			}
			if mediatype.IsText(contentType) {
				w.stringMember(spec.Data, string(b))
				return nil
			}
		}
	}

	encoded := base64.StdEncoding.EncodeToString(b)
	if member, ok := m.Base64Member(); ok {
		w.stringMember(member, encoded)
		return nil
	}
	w.stringMember(spec.DataContentEncoding, spec.Base64)
	w.stringMember(spec.Data, encoded)
	return nil
}

// writer builds a JSON object member by member. Strings are written without
// HTML escaping.
type writer struct {
	buf   bytes.Buffer
	enc   *json.Encoder
	first bool
}

func newWriter() *writer {
	w := &writer{first: true}
	w.enc = json.NewEncoder(&w.buf)
	w.enc.SetEscapeHTML(false)
	w.buf.WriteByte('{')
	return w
}

func (w *writer) name(name string) {
	if !w.first {
		w.buf.WriteByte(',')
	}
	w.first = false
	w.string(name)
	w.buf.WriteByte(':')
}

func (w *writer) string(s string) {
	// Encoding a string cannot fail; the encoder terminates it with a newline.
	_ = w.enc.Encode(s)
	w.buf.Truncate(w.buf.Len() - 1)
}

func (w *writer) stringMember(name, value string) {
	w.name(name)
	w.string(value)
}

func (w *writer) rawMember(name string, raw []byte) {
	w.name(name)
	w.buf.Write(raw)
}

func (w *writer) extensionMember(x event.ExtensionAttribute) {
	w.name(x.Name)
	switch x.Value.Kind() {
	case event.ExtensionBoolean:
		v, _ := x.Value.AsBoolean()
		w.buf.WriteString(strconv.FormatBool(v))
	case event.ExtensionInteger:
		v, _ := x.Value.AsInteger()
		w.buf.WriteString(strconv.FormatInt(v, 10))
	default:
		w.string(x.Value.String())
	}
}

func (w *writer) close() []byte {
	w.buf.WriteByte('}')
	return w.buf.Bytes()
}
