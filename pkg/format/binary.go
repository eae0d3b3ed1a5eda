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
	"encoding/json"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/mediatype"
	"knative.dev/ceformat/pkg/spec"
)

// HeaderPrefix prefixes every context attribute header in binary mode.
const HeaderPrefix = "ce-"

// BinaryMessage is the transport-neutral shape of a binary-mode event:
// attributes as headers, the content type in the transport's own header and
// the payload as the verbatim body.
type BinaryMessage struct {
	// Headers maps lower-case "ce-" header names to values.
	Headers     map[string]string
	ContentType string
	Body        []byte
}

// ToBinary projects the event onto binary-mode headers and body. Extension
// values use their string-coerced form.
func ToBinary(e event.Event) (BinaryMessage, error) {
	m, err := spec.Lookup(string(e.SpecVersion()))
	if err != nil {
		return BinaryMessage{}, err
	}
	headers := map[string]string{
		HeaderPrefix + m.MustName(spec.SpecVersion): string(m.Version()),
		HeaderPrefix + m.MustName(spec.ID):          e.ID(),
		HeaderPrefix + m.MustName(spec.Type):        e.Type(),
		HeaderPrefix + m.MustName(spec.Source):      e.Source(),
	}
	if e.Subject() != "" {
		headers[HeaderPrefix+m.MustName(spec.Subject)] = e.Subject()
	}
	if t := e.Time(); !t.IsZero() {
		headers[HeaderPrefix+m.MustName(spec.Time)] = t.Format(time.RFC3339Nano)
	}
	if e.DataSchema() != "" {
		headers[HeaderPrefix+m.MustName(spec.DataSchema)] = e.DataSchema()
	}
	for _, x := range e.Extensions() {
		headers[HeaderPrefix+x.Name] = x.Value.String()
	}
	msg := BinaryMessage{
		Headers:     headers,
		ContentType: e.DataContentType(),
	}
	if !e.Data().IsEmpty() {
		msg.Body = e.Data().Bytes()
	}
	return msg, nil
}

// FromBinary rebuilds an event from binary-mode headers and body. Header
// names are matched case-insensitively; unknown "ce-" headers become String
// extensions, ordered by name.
func FromBinary(msg BinaryMessage) (event.Event, error) {
	headers := make(map[string]string, len(msg.Headers))
	for k, v := range msg.Headers {
		headers[strings.ToLower(k)] = v
	}

	svHeader := HeaderPrefix + spec.SpecVersion.String()
	version, ok := headers[svHeader]
	if !ok || version == "" {
		return event.Event{}, &event.MissingRequiredAttributeError{Name: spec.SpecVersion.String()}
	}
	m, err := spec.Lookup(version)
	if err != nil {
		return event.Event{}, err
	}

	d := event.Draft{
		SpecVersion:     m.Version(),
		DataContentType: msg.ContentType,
	}
	var extensions []string
	for name, value := range headers {
		if !strings.HasPrefix(name, HeaderPrefix) {
			continue
		}
		attr := strings.TrimPrefix(name, HeaderPrefix)
		k, ok := m.Kind(attr)
		if !ok {
			extensions = append(extensions, attr)
			continue
		}
		switch k {
		case spec.ID:
			d.ID = value
		case spec.Type:
			d.Type = value
		case spec.Source:
			d.Source = value
		case spec.Subject:
			d.Subject = value
		case spec.DataSchema:
			d.DataSchema = value
		case spec.DataContentType:
			if d.DataContentType == "" {
				d.DataContentType = value
			}
		case spec.Time:
			if value == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339Nano, value)
			if err != nil {
				return event.Event{}, &event.InvalidAttributeValueError{Name: attr, Value: value, Reason: "MUST be an RFC 3339 timestamp"}
			}
			d.Time = t
		}
	}
	sort.Strings(extensions)
	for _, name := range extensions {
		d.Extensions = append(d.Extensions, event.ExtensionAttribute{
			Name:  name,
			Value: event.StringExtension(headers[HeaderPrefix+name]),
		})
	}

	d.Data = classifyBody(d.DataContentType, msg.Body)
	return event.New(d)
}

func classifyBody(contentType string, body []byte) event.Data {
	switch {
	case len(body) == 0:
		return event.Data{}
	case mediatype.IsJSON(contentType) && json.Valid(body):
		if d, err := event.RawJSONData(body); err == nil {
			return d
		}
	case mediatype.IsText(contentType) && utf8.Valid(body):
		return event.TextData(string(body))
	}
	return event.BinaryData(body)
}
