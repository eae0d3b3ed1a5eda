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

// Package ceinterop converts events to and from the CloudEvents Go SDK.
package ceinterop

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/types"

	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/mediatype"
	"knative.dev/ceformat/pkg/spec"
)

// ToCloudEvent returns the SDK representation of e. The payload is stored
// encoded, the way the SDK holds events read off the wire, so that the SDK
// serializes it with the same data or data_base64 member this module would.
func ToCloudEvent(e event.Event) (cloudevents.Event, error) {
	ce := cloudevents.NewEvent(string(e.SpecVersion()))
	ce.SetID(e.ID())
	ce.SetSource(e.Source())
	ce.SetType(e.Type())
	if e.Subject() != "" {
		ce.SetSubject(e.Subject())
	}
	if !e.Time().IsZero() {
		ce.SetTime(e.Time())
	}
	if e.DataContentType() != "" {
		ce.SetDataContentType(e.DataContentType())
	}
	if e.DataSchema() != "" {
		ce.SetDataSchema(e.DataSchema())
	}

	for _, x := range e.Extensions() {
		v := x.Value.Value()
		if i, ok := x.Value.AsInteger(); ok {
			// The SDK models integers as int32.
			if i < math.MinInt32 || i > math.MaxInt32 {
				return cloudevents.Event{}, fmt.Errorf("extension %q: integer %d does not fit the SDK's int32", x.Name, i)
			}
			v = int32(i)
		}
		if err := ce.Context.SetExtension(x.Name, v); err != nil {
			return cloudevents.Event{}, fmt.Errorf("extension %q: %w", x.Name, err)
		}
	}

	data, base64 := encodeData(e.DataContentType(), e.Data())
	if data != nil {
		ce.DataEncoded = data
		ce.DataBase64 = base64
		if base64 {
			if v03, ok := ce.Context.(*cloudevents.EventContextV03); ok {
				enc := spec.Base64
				v03.DataContentEncoding = &enc
			}
		}
	}

	if err := ce.Validate(); err != nil {
		return cloudevents.Event{}, err
	}
	return ce, nil
}

// encodeData returns the payload bytes as the SDK stores them and whether the
// SDK must base64 encode them on the wire.
func encodeData(contentType string, d event.Data) ([]byte, bool) {
	b := d.Bytes()
	switch d.Kind() {
	case event.DataEmpty:
		return nil, false
	case event.DataJSON:
		return b, false
	case event.DataText:
		switch {
		case contentType == "":
			// Without a content type the SDK writes the bytes as a JSON value.
			quoted, _ := json.Marshal(string(b))
			return quoted, false
		case mediatype.IsJSON(contentType), mediatype.IsText(contentType):
			return b, false
		}
	case event.DataBinary:
		if utf8.Valid(b) {
			if mediatype.IsJSON(contentType) && json.Valid(b) {
				return b, false
			}
			if mediatype.IsText(contentType) {
				return b, false
			}
		}
	}
	return b, true
}

// FromCloudEvent validates an SDK event and converts it. Extensions are
// ordered by name since the SDK keeps them in a map. Integer extensions map to
// Integer, other SDK attribute types to their canonical string form.
func FromCloudEvent(ce cloudevents.Event) (event.Event, error) {
	if err := ce.Validate(); err != nil {
		return event.Event{}, err
	}
	d := event.Draft{
		SpecVersion:     spec.Version(ce.SpecVersion()),
		ID:              ce.ID(),
		Source:          ce.Source(),
		Type:            ce.Type(),
		Subject:         ce.Subject(),
		Time:            ce.Time(),
		DataContentType: ce.DataContentType(),
		DataSchema:      ce.DataSchema(),
	}

	exts := ce.Extensions()
	names := make([]string, 0, len(exts))
	for name := range exts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		x, err := extensionFromSDK(exts[name])
		if err != nil {
			return event.Event{}, fmt.Errorf("extension %q: %w", name, err)
		}
		d.Extensions = append(d.Extensions, event.ExtensionAttribute{Name: name, Value: x})
	}

	data, err := decodeData(ce)
	if err != nil {
		return event.Event{}, err
	}
	d.Data = data
	return event.New(d)
}

func extensionFromSDK(v interface{}) (event.Extension, error) {
	switch t := v.(type) {
	case string:
		return event.StringExtension(t), nil
	case bool:
		return event.BooleanExtension(t), nil
	case int32:
		return event.IntegerExtension(int64(t)), nil
	case int64:
		return event.IntegerExtension(t), nil
	case float64:
		if t == math.Trunc(t) && t >= math.MinInt64 && t < math.MaxInt64 {
			return event.IntegerExtension(int64(t)), nil
		}
	}
	s, err := types.Format(v)
	if err != nil {
		return event.Extension{}, err
	}
	return event.StringExtension(s), nil
}

func decodeData(ce cloudevents.Event) (event.Data, error) {
	b := ce.Data()
	if len(b) == 0 {
		return event.Data{}, nil
	}
	if ce.DataBase64 {
		return event.BinaryData(b), nil
	}
	ct := ce.DataContentType()
	switch {
	case ct == "" || mediatype.IsJSON(ct):
		if json.Valid(b) {
			return event.RawJSONData(b)
		}
	case mediatype.IsText(ct):
		if utf8.Valid(b) {
			return event.TextData(string(b)), nil
		}
	}
	return event.BinaryData(b), nil
}
