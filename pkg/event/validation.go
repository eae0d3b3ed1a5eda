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
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/multierr"

	"knative.dev/ceformat/pkg/mediatype"
	"knative.dev/ceformat/pkg/spec"
)

// Validate checks the draft's attributes against the CloudEvents rules of its
// spec version. Every violation is reported; the result combines them with
// multierr, so use errors.As to pick out a specific error type.
func Validate(d Draft) error {
	version := d.SpecVersion
	if version == "" {
		version = spec.V1
	}
	m, err := spec.Lookup(string(version))
	if err != nil {
		return err
	}

	var errs error
	for _, required := range []struct {
		kind  spec.Kind
		value string
	}{
		{spec.ID, d.ID},
		{spec.Source, d.Source},
		{spec.Type, d.Type},
	} {
		if required.value == "" {
			errs = multierr.Append(errs, &MissingRequiredAttributeError{Name: m.MustName(required.kind)})
		}
	}

	for _, attr := range []struct {
		kind  spec.Kind
		value string
	}{
		{spec.ID, d.ID},
		{spec.Source, d.Source},
		{spec.Type, d.Type},
		{spec.Subject, d.Subject},
		{spec.DataContentType, d.DataContentType},
		{spec.DataSchema, d.DataSchema},
	} {
		if !utf8.ValidString(attr.value) {
			errs = multierr.Append(errs, &InvalidAttributeValueError{Name: m.MustName(attr.kind), Reason: "value is not valid UTF-8"})
		}
	}

	if d.Source != "" {
		if _, err := parseURIReference(d.Source); err != nil {
			errs = multierr.Append(errs, &InvalidURIError{Attribute: m.MustName(spec.Source), Value: d.Source, Err: err})
		}
	}

	if d.DataSchema != "" {
		name := m.MustName(spec.DataSchema)
		u, err := parseURIReference(d.DataSchema)
		switch {
		case err != nil:
			errs = multierr.Append(errs, &InvalidURIError{Attribute: name, Value: d.DataSchema, Err: err})
		case m.AbsoluteSchema() && !u.IsAbs():
			errs = multierr.Append(errs, &InvalidURIError{Attribute: name, Value: d.DataSchema})
		}
	}

	if err := checkTime(d.Time); err != nil {
		errs = multierr.Append(errs, &InvalidAttributeValueError{Name: m.MustName(spec.Time), Value: d.Time.String(), Reason: err.Error()})
	}

	seen := make(map[string]struct{}, len(d.Extensions))
	for _, x := range d.Extensions {
		if err := ValidateExtensionName(m, x.Name); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, dup := seen[x.Name]; dup {
			errs = multierr.Append(errs, &InvalidExtensionNameError{Name: x.Name, Reason: "duplicate extension"})
			continue
		}
		seen[x.Name] = struct{}{}
		if s, ok := x.Value.AsString(); ok && !utf8.ValidString(s) {
			errs = multierr.Append(errs, &InvalidAttributeValueError{Name: x.Name, Reason: "value is not valid UTF-8"})
		}
	}
	return errs
}

// parseURIReference parses s as a URI-reference. Spaces and control
// characters are never part of one, although url.Parse lets them through.
func parseURIReference(s string) (*url.URL, error) {
	if i := strings.IndexFunc(s, func(r rune) bool { return r <= ' ' || r == 0x7f }); i >= 0 {
		return nil, fmt.Errorf("invalid character %q at offset %d", s[i], i)
	}
	return url.Parse(s)
}

// checkTime rejects timestamps that RFC 3339 cannot carry exactly: years
// outside 0000-9999 and zone offsets with a seconds part.
func checkTime(t time.Time) error {
	if t.IsZero() {
		return nil
	}
	if y := t.Year(); y < 0 || y > 9999 {
		return fmt.Errorf("year %d is outside the RFC 3339 range 0000-9999", y)
	}
	if _, offset := t.Zone(); offset%60 != 0 {
		return fmt.Errorf("zone offset %ds is not a whole number of minutes", offset)
	}
	return nil
}

// ValidateExtensionName checks a single extension name against the naming
// rules and the reserved names of m and of every other supported version.
func ValidateExtensionName(m *spec.Mapping, name string) error {
	if name == "" {
		return &InvalidExtensionNameError{Name: name, Reason: "name MUST be a non-empty string"}
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return &InvalidExtensionNameError{Name: name, Reason: "name MUST consist of lower-case ASCII letters or digits"}
		}
	}
	if m.IsReserved(name) || spec.IsReserved(name) {
		return &InvalidExtensionNameError{Name: name, Reason: "name collides with a core attribute"}
	}
	return nil
}

// checkData verifies the payload can be represented under contentType and
// returns the form it is stored in.
func checkData(contentType string, d Data) (Data, error) {
	switch d.kind {
	case DataText:
		if !utf8.Valid(d.b) {
			return Data{}, &DataEncodingError{ContentType: contentType, Reason: "text payload is not valid UTF-8"}
		}
		if mediatype.IsJSON(contentType) && !json.Valid(d.b) {
			return Data{}, &DataEncodingError{ContentType: contentType, Reason: "text payload is not a JSON document"}
		}
	case DataJSON:
		if !json.Valid(d.b) {
			return Data{}, &DataEncodingError{ContentType: contentType, Reason: "payload is not a valid JSON value"}
		}
		// A JSON string under an absent or textual content type is plain
		// text on the wire; store it the way it will be read back.
		if (contentType == "" || mediatype.IsText(contentType)) && len(d.b) > 0 && d.b[0] == '"' {
			var s string
			if err := json.Unmarshal(d.b, &s); err != nil {
				return Data{}, &DataEncodingError{ContentType: contentType, Reason: err.Error()}
			}
			return TextData(s), nil
		}
	}
	return d, nil
}
