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
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"

	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/mediatype"
	"knative.dev/ceformat/pkg/spec"
)

type member struct {
	name  string
	value json.RawMessage
}

// Unmarshal parses a structured-mode JSON document. The specversion member
// selects the attribute names; members that are not core attributes become
// extensions in document order. The result is validated as event.New does.
func Unmarshal(b []byte) (event.Event, error) {
	members, err := readObject(b)
	if err != nil {
		return event.Event{}, err
	}

	var version string
	for _, mb := range members {
		if mb.name == spec.SpecVersion.String() {
			s, present, err := stringValue(mb)
			if err != nil {
				return event.Event{}, err
			}
			if present {
				version = s
			}
		}
	}
	if version == "" {
		return event.Event{}, &event.MissingRequiredAttributeError{Name: spec.SpecVersion.String()}
	}
	m, err := spec.Lookup(version)
	if err != nil {
		return event.Event{}, err
	}

	d := event.Draft{SpecVersion: m.Version()}
	base64Member, _ := m.Base64Member()
	var data, dataBase64, encoding *member
	for i := range members {
		mb := &members[i]
		if k, ok := m.Kind(mb.name); ok {
			if err := setAttribute(&d, k, *mb); err != nil {
				return event.Event{}, err
			}
			continue
		}
		switch {
		case mb.name == spec.Data:
			data = mb
		case base64Member != "" && mb.name == base64Member:
			dataBase64 = mb
		case base64Member == "" && mb.name == spec.DataContentEncoding:
			encoding = mb
		default:
			x, err := extensionValue(*mb)
			if err != nil {
				return event.Event{}, err
			}
			d.Extensions = append(d.Extensions, event.ExtensionAttribute{Name: mb.name, Value: x})
		}
	}

	if data != nil && dataBase64 != nil {
		return event.Event{}, ErrAmbiguousPayloadEncoding
	}
	switch {
	case dataBase64 != nil:
		d.Data, err = decodeBase64(*dataBase64)
	case encoding != nil:
		d.Data, err = decodeEncoded(*encoding, data, d.DataContentType)
	case data != nil:
		d.Data, err = decodeData(*data, d.DataContentType)
	}
	if err != nil {
		return event.Event{}, err
	}
	return event.New(d)
}

// readObject splits a JSON object into its members, keeping their order.
func readObject(b []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, malformed(fmt.Errorf("expected a JSON object, found %v", tok))
	}

	var members []member
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, malformed(fmt.Errorf("expected a member name, found %v", tok))
		}
		if _, dup := seen[name]; dup {
			return nil, malformed(fmt.Errorf("duplicate member %q", name))
		}
		seen[name] = struct{}{}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, malformed(err)
		}
		members = append(members, member{name: name, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, malformed(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, malformed(fmt.Errorf("unexpected data after the event object"))
	}
	return members, nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
}

// stringValue decodes a core attribute. JSON null counts as absent.
func stringValue(mb member) (string, bool, error) {
	switch jsonType(mb.value) {
	case "null":
		return "", false, nil
	case "string":
		var s string
		if err := json.Unmarshal(mb.value, &s); err != nil {
			return "", false, malformed(err)
		}
		return s, true, nil
	default:
		return "", false, &event.InvalidAttributeValueError{Name: mb.name, Value: string(mb.value), Reason: "value MUST be a JSON string"}
	}
}

func setAttribute(d *event.Draft, k spec.Kind, mb member) error {
	s, present, err := stringValue(mb)
	if err != nil || !present {
		return err
	}
	switch k {
	case spec.SpecVersion:
		// Already dispatched on.
	case spec.ID:
		d.ID = s
	case spec.Type:
		d.Type = s
	case spec.Source:
		d.Source = s
	default:
		if s == "" {
			return &event.InvalidAttributeValueError{Name: mb.name, Reason: "if present, MUST be a non-empty string"}
		}
		switch k {
		case spec.Subject:
			d.Subject = s
		case spec.DataContentType:
			d.DataContentType = s
		case spec.DataSchema:
			d.DataSchema = s
		case spec.Time:
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return &event.InvalidAttributeValueError{Name: mb.name, Value: s, Reason: "MUST be an RFC 3339 timestamp"}
			}
			d.Time = t
		}
	}
	return nil
}

// extensionValue maps a JSON value onto the closed extension variant.
func extensionValue(mb member) (event.Extension, error) {
	t := jsonType(mb.value)
	switch t {
	case "string":
		var s string
		if err := json.Unmarshal(mb.value, &s); err != nil {
			return event.Extension{}, malformed(err)
		}
		return event.StringExtension(s), nil
	case "boolean":
		return event.BooleanExtension(bytes.Equal(mb.value, []byte("true"))), nil
	case "number":
		if i, ok := parseInteger(string(mb.value)); ok {
			return event.IntegerExtension(i), nil
		}
		t = "non-integer number"
	}
	return event.Extension{}, &event.InvalidExtensionValueTypeError{Name: mb.name, JSONType: t}
}

// parseInteger accepts a JSON number whose value is an integer in the int64
// range, including forms such as 10.0 or 1e3.
func parseInteger(s string) (int64, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	// Bound the exponent before big.Rat expands it.
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		exp, err := strconv.Atoi(s[i+1:])
		if err != nil || exp > len(s)+20 || exp < -(len(s)+20) {
			return 0, false
		}
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok || !r.IsInt() || !r.Num().IsInt64() {
		return 0, false
	}
	return r.Num().Int64(), true
}

func decodeData(mb member, contentType string) (event.Data, error) {
	if jsonType(mb.value) == "string" && (contentType == "" || mediatype.IsText(contentType)) {
		var s string
		if err := json.Unmarshal(mb.value, &s); err != nil {
			return event.Data{}, malformed(err)
		}
		return event.TextData(s), nil
	}
	return event.RawJSONData(mb.value)
}

func decodeBase64(mb member) (event.Data, error) {
	if jsonType(mb.value) != "string" {
		return event.Data{}, fmt.Errorf("%w: %s MUST be a JSON string", ErrInvalidBase64Payload, mb.name)
	}
	var s string
	if err := json.Unmarshal(mb.value, &s); err != nil {
		return event.Data{}, malformed(err)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return event.Data{}, fmt.Errorf("%w: %w", ErrInvalidBase64Payload, err)
	}
	return event.BinaryData(b), nil
}

// decodeEncoded handles the 0.3 datacontentencoding member.
func decodeEncoded(encoding member, data *member, contentType string) (event.Data, error) {
	enc, present, err := stringValue(encoding)
	if err != nil {
		return event.Data{}, err
	}
	if !present {
		if data == nil {
			return event.Data{}, nil
		}
		return decodeData(*data, contentType)
	}
	if !strings.EqualFold(enc, spec.Base64) {
		return event.Data{}, &event.DataEncodingError{ContentType: contentType, Reason: fmt.Sprintf("unsupported datacontentencoding %q", enc)}
	}
	if data == nil {
		return event.Data{}, nil
	}
	return decodeBase64(*data)
}

// jsonType names the JSON type of an encoded value from its first byte.
func jsonType(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "empty"
	}
	switch raw[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
