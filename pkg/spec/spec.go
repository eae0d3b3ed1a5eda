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

// Package spec holds the attribute-name tables of the supported CloudEvents
// spec versions and dispatches a specversion string to its table.
package spec

import (
	"fmt"
	"sort"
)

// Version is a CloudEvents spec version string.
type Version string

const (
	// V03 is CloudEvents spec version 0.3.
	V03 Version = "0.3"
	// V1 is CloudEvents spec version 1.0.
	V1 Version = "1.0"
)

// Kind identifies a core context attribute independently of the name a spec
// version gives it.
type Kind int8

const (
	SpecVersion Kind = iota
	ID
	Type
	Source
	Subject
	Time
	DataContentType
	DataSchema
)

func (k Kind) String() string {
	switch k {
	case SpecVersion:
		return "specversion"
	case ID:
		return "id"
	case Type:
		return "type"
	case Source:
		return "source"
	case Subject:
		return "subject"
	case Time:
		return "time"
	case DataContentType:
		return "datacontenttype"
	case DataSchema:
		return "dataschema"
	}
	return fmt.Sprintf("kind(%d)", int8(k))
}

// Names of the members carrying the payload in the structured JSON format.
const (
	Data                = "data"
	DataBase64          = "data_base64"
	DataContentEncoding = "datacontentencoding"

	// Base64 is the only datacontentencoding value defined by 0.3.
	Base64 = "base64"
)

// UnsupportedSpecVersionError reports a specversion with no mapping table.
type UnsupportedSpecVersionError struct {
	Value string
}

func (e *UnsupportedSpecVersionError) Error() string {
	return fmt.Sprintf("unsupported specversion %q", e.Value)
}

// Mapping is the attribute-name table of one spec version. Mappings are
// immutable and safe for concurrent use.
type Mapping struct {
	version  Version
	names    map[Kind]string
	kinds    map[string]Kind
	order    []Kind
	required []Kind
	reserved map[string]struct{}

	// base64Member is the member holding base64 payloads; empty when the
	// version signals base64 through datacontentencoding instead.
	base64Member string
	// absoluteSchema is set when the schema attribute must be an absolute URI.
	absoluteSchema bool
}

func newMapping(v Version, names map[Kind]string, base64Member string, absoluteSchema bool, extraReserved ...string) *Mapping {
	m := &Mapping{
		version:        v,
		names:          names,
		kinds:          make(map[string]Kind, len(names)),
		order:          []Kind{SpecVersion, ID, Type, Source, Subject, Time, DataContentType, DataSchema},
		required:       []Kind{SpecVersion, ID, Type, Source},
		reserved:       make(map[string]struct{}, len(names)+len(extraReserved)+1),
		base64Member:   base64Member,
		absoluteSchema: absoluteSchema,
	}
	for k, n := range names {
		m.kinds[n] = k
		m.reserved[n] = struct{}{}
	}
	m.reserved[Data] = struct{}{}
	for _, n := range extraReserved {
		m.reserved[n] = struct{}{}
	}
	return m
}

var (
	v1Mapping = newMapping(V1, map[Kind]string{
		SpecVersion:     "specversion",
		ID:              "id",
		Type:            "type",
		Source:          "source",
		Subject:         "subject",
		Time:            "time",
		DataContentType: "datacontenttype",
		DataSchema:      "dataschema",
	}, DataBase64, true, DataBase64)

	v03Mapping = newMapping(V03, map[Kind]string{
		SpecVersion:     "specversion",
		ID:              "id",
		Type:            "type",
		Source:          "source",
		Subject:         "subject",
		Time:            "time",
		DataContentType: "datacontenttype",
		DataSchema:      "schemaurl",
	}, "", false, DataContentEncoding)

	mappings = map[Version]*Mapping{
		V1:  v1Mapping,
		V03: v03Mapping,
	}
)

// Lookup returns the mapping for a specversion string.
func Lookup(specversion string) (*Mapping, error) {
	if m, ok := mappings[Version(specversion)]; ok {
		return m, nil
	}
	return nil, &UnsupportedSpecVersionError{Value: specversion}
}

// Versions returns the supported versions, sorted.
func Versions() []Version {
	vs := make([]Version, 0, len(mappings))
	for v := range mappings {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })
	return vs
}

// IsReserved reports whether name is a core member name in any supported
// version. Such names can never be used for extensions.
func IsReserved(name string) bool {
	for _, m := range mappings {
		if m.IsReserved(name) {
			return true
		}
	}
	return false
}

// Version returns the spec version of the mapping.
func (m *Mapping) Version() Version { return m.version }

// Name returns the member name of the attribute kind.
func (m *Mapping) Name(k Kind) (string, bool) {
	n, ok := m.names[k]
	return n, ok
}

// MustName is Name for kinds every version defines.
func (m *Mapping) MustName(k Kind) string {
	n, ok := m.names[k]
	if !ok {
		panic(fmt.Sprintf("specversion %s has no attribute for %v", m.version, k))
	}
	return n
}

// Kind resolves a member name to the attribute kind it carries.
func (m *Mapping) Kind(name string) (Kind, bool) {
	k, ok := m.kinds[name]
	return k, ok
}

// IsReserved reports whether name is a core member of this version,
// including the payload members.
func (m *Mapping) IsReserved(name string) bool {
	_, ok := m.reserved[name]
	return ok
}

// Kinds returns the core attributes in emission order.
func (m *Mapping) Kinds() []Kind {
	return append([]Kind(nil), m.order...)
}

// Required returns the attributes every event of this version carries.
func (m *Mapping) Required() []Kind {
	return append([]Kind(nil), m.required...)
}

// Base64Member returns the member that carries base64 payloads. It returns
// false for versions that flag base64 through datacontentencoding.
func (m *Mapping) Base64Member() (string, bool) {
	return m.base64Member, m.base64Member != ""
}

// AbsoluteSchema reports whether the schema attribute must be an absolute URI.
func (m *Mapping) AbsoluteSchema() bool { return m.absoluteSchema }
