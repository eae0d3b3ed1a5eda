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

// Package event implements the canonical in-memory CloudEvent: the context
// attributes, typed extensions and an optional payload.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"knative.dev/ceformat/pkg/spec"
)

// Draft holds the attributes of an event before validation.
type Draft struct {
	// SpecVersion defaults to spec.V1 when empty.
	SpecVersion spec.Version

	ID     string
	Source string
	Type   string

	// Optional attributes; the zero value means absent.
	Subject         string
	Time            time.Time
	DataContentType string
	DataSchema      string

	Extensions []ExtensionAttribute
	Data       Data
}

// Event is an immutable, validated CloudEvent. Use New to build one; the zero
// value is not a valid event.
type Event struct {
	specVersion     spec.Version
	id              string
	source          string
	typ             string
	subject         string
	time            time.Time
	dataContentType string
	dataSchema      string
	extensions      []ExtensionAttribute
	data            Data
}

// New validates the draft and returns the event it describes. Nothing is
// returned unless every check passes.
func New(d Draft) (Event, error) {
	if d.SpecVersion == "" {
		d.SpecVersion = spec.V1
	}
	if err := Validate(d); err != nil {
		return Event{}, err
	}
	data, err := checkData(d.DataContentType, d.Data)
	if err != nil {
		return Event{}, err
	}
	return Event{
		specVersion:     d.SpecVersion,
		id:              d.ID,
		source:          d.Source,
		typ:             d.Type,
		subject:         d.Subject,
		time:            d.Time,
		dataContentType: d.DataContentType,
		dataSchema:      d.DataSchema,
		extensions:      append([]ExtensionAttribute(nil), d.Extensions...),
		data:            data,
	}, nil
}

// SpecVersion returns the spec version the event was built for.
func (e Event) SpecVersion() spec.Version { return e.specVersion }

func (e Event) ID() string { return e.id }

func (e Event) Source() string { return e.source }

func (e Event) Type() string { return e.typ }

func (e Event) Subject() string { return e.subject }

// Time returns the occurrence time; the zero time when absent.
func (e Event) Time() time.Time { return e.time }

func (e Event) DataContentType() string { return e.dataContentType }

func (e Event) DataSchema() string { return e.dataSchema }

// Data returns the payload.
func (e Event) Data() Data { return e.data }

// Extensions returns a copy of the extension attributes in insertion order.
func (e Event) Extensions() []ExtensionAttribute {
	return append([]ExtensionAttribute(nil), e.extensions...)
}

// Extension looks up an extension by name.
func (e Event) Extension(name string) (Extension, bool) {
	for _, x := range e.extensions {
		if x.Name == name {
			return x.Value, true
		}
	}
	return Extension{}, false
}

// Draft returns the event's attributes so a modified copy can be built with
// New.
func (e Event) Draft() Draft {
	return Draft{
		SpecVersion:     e.specVersion,
		ID:              e.id,
		Source:          e.source,
		Type:            e.typ,
		Subject:         e.subject,
		Time:            e.time,
		DataContentType: e.dataContentType,
		DataSchema:      e.dataSchema,
		Extensions:      e.Extensions(),
		Data:            e.data,
	}
}

// WithDataUnchecked returns a copy of the event carrying d, skipping the
// payload checks New performs. The caller asserts that d already matches the
// declared content type, as when re-encoding previously validated bytes.
func (e Event) WithDataUnchecked(d Data) Event {
	e.extensions = e.Extensions()
	e.data = Data{kind: d.kind, b: clone(d.b)}
	return e
}

// Equal compares attributes and payloads. Times compare as instants and
// extensions as a mapping, regardless of order.
func (e Event) Equal(o Event) bool {
	if e.specVersion != o.specVersion || e.id != o.id || e.source != o.source || e.typ != o.typ ||
		e.subject != o.subject || e.dataContentType != o.dataContentType || e.dataSchema != o.dataSchema {
		return false
	}
	if !e.time.Equal(o.time) {
		return false
	}
	if len(e.extensions) != len(o.extensions) {
		return false
	}
	for _, x := range e.extensions {
		v, ok := o.Extension(x.Name)
		if !ok || v != x.Value {
			return false
		}
	}
	return e.data.Equal(o.data)
}

// DataAs decodes the payload into out. JSON payloads are unmarshalled; text
// and binary payloads can be read into a *string or *[]byte.
func (e Event) DataAs(out interface{}) error {
	if e.data.IsEmpty() {
		return errors.New("event has no data")
	}
	switch v := out.(type) {
	case *string:
		if s, ok := e.data.Text(); ok {
			*v = s
			return nil
		}
		if e.data.kind == DataJSON {
			return json.Unmarshal(e.data.raw(), v)
		}
		*v = string(e.data.raw())
		return nil
	case *[]byte:
		*v = e.data.Bytes()
		return nil
	}
	if e.data.kind == DataJSON {
		return json.Unmarshal(e.data.raw(), out)
	}
	return fmt.Errorf("cannot decode %s data into %T", e.data.kind, out)
}
