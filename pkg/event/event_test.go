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
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knative.dev/ceformat/pkg/spec"
)

func minimalDraft() Draft {
	return Draft{
		ID:     "A234-1234-1234",
		Source: "/source",
		Type:   "example.type",
	}
}

func TestNewDefaultsToV1(t *testing.T) {
	e, err := New(minimalDraft())
	require.NoError(t, err)

	assert.Equal(t, spec.V1, e.SpecVersion())
	assert.Equal(t, "A234-1234-1234", e.ID())
	assert.Equal(t, "/source", e.Source())
	assert.Equal(t, "example.type", e.Type())
	assert.True(t, e.Time().IsZero())
	assert.True(t, e.Data().IsEmpty())
	assert.Empty(t, e.Extensions())
}

func TestNewIsAllOrNothing(t *testing.T) {
	d := minimalDraft()
	d.ID = ""
	e, err := New(d)
	require.Error(t, err)
	assert.True(t, e.Equal(Event{}))
}

func TestNewPayloadChecks(t *testing.T) {
	tests := map[string]struct {
		contentType string
		data        Data
		wantKind    DataKind
		wantErr     bool
	}{
		"empty with content type": {
			contentType: "application/json",
			wantKind:    DataEmpty,
		},
		"json text under json": {
			contentType: "application/json",
			data:        TextData(`{"a":1}`),
			wantKind:    DataText,
		},
		"empty text under json": {
			contentType: "application/json",
			data:        TextData(""),
			wantErr:     true,
		},
		"plain text under json": {
			contentType: "application/json",
			data:        TextData("hello"),
			wantErr:     true,
		},
		"invalid utf8 text": {
			contentType: "text/plain",
			data:        TextData("\xff\xfe"),
			wantErr:     true,
		},
		"json string without content type": {
			data:     mustJSON(t, "hello"),
			wantKind: DataText,
		},
		"json string under xml": {
			contentType: "application/xml",
			data:        mustJSON(t, "<a/>"),
			wantKind:    DataText,
		},
		"json string under json": {
			contentType: "application/json",
			data:        mustJSON(t, "hello"),
			wantKind:    DataJSON,
		},
		"json string under octet stream": {
			contentType: "application/octet-stream",
			data:        mustJSON(t, "hello"),
			wantKind:    DataJSON,
		},
		"binary that is not utf8": {
			contentType: "text/plain",
			data:        BinaryData([]byte{0xff, 0x00}),
			wantKind:    DataBinary,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			d := minimalDraft()
			d.DataContentType = tc.contentType
			d.Data = tc.data
			e, err := New(d)
			if tc.wantErr {
				var dataErr *DataEncodingError
				require.True(t, errors.As(err, &dataErr), "want DataEncodingError, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, e.Data().Kind())
		})
	}
}

func TestJSONStringNormalizedToText(t *testing.T) {
	d := minimalDraft()
	d.Data = mustJSON(t, "hello")
	e, err := New(d)
	require.NoError(t, err)

	s, ok := e.Data().Text()
	require.True(t, ok)
	assert.Equal(t, "hello", s)
}

func TestWithDataUnchecked(t *testing.T) {
	d := minimalDraft()
	d.DataContentType = "application/json"
	d.Data = mustJSON(t, map[string]string{"hello": "world"})
	e, err := New(d)
	require.NoError(t, err)

	replaced := e.WithDataUnchecked(TextData("not json"))
	assert.Equal(t, DataText, replaced.Data().Kind())
	assert.Equal(t, DataJSON, e.Data().Kind(), "original event must not change")
	assert.Equal(t, e.DataContentType(), replaced.DataContentType())
}

func TestEqual(t *testing.T) {
	base := minimalDraft()
	base.Time = time.Date(2020, 3, 16, 11, 50, 0, 0, time.UTC)
	base.Extensions = []ExtensionAttribute{
		{Name: "a", Value: StringExtension("x")},
		{Name: "b", Value: IntegerExtension(10)},
	}
	a, err := New(base)
	require.NoError(t, err)

	reordered := base
	reordered.Time = base.Time.In(time.FixedZone("CET", 3600))
	reordered.Extensions = []ExtensionAttribute{base.Extensions[1], base.Extensions[0]}
	b, err := New(reordered)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("unexpected diff (-want, +got) = %v", diff)
	}

	retyped := base
	retyped.Extensions = []ExtensionAttribute{
		{Name: "a", Value: StringExtension("x")},
		{Name: "b", Value: StringExtension("10")},
	}
	c, err := New(retyped)
	require.NoError(t, err)
	assert.False(t, a.Equal(c), "extension type is part of equality")
}

func TestDraftRoundTrip(t *testing.T) {
	d := minimalDraft()
	d.Subject = "sub"
	d.DataContentType = "text/plain"
	d.Data = TextData("hi")
	d.Extensions = []ExtensionAttribute{{Name: "ext", Value: BooleanExtension(true)}}
	e, err := New(d)
	require.NoError(t, err)

	again, err := New(e.Draft())
	require.NoError(t, err)
	assert.True(t, e.Equal(again))
}

func TestDataAs(t *testing.T) {
	d := minimalDraft()
	d.DataContentType = "application/json"
	d.Data = mustJSON(t, map[string]int{"a": 1})
	e, err := New(d)
	require.NoError(t, err)

	var got map[string]int
	require.NoError(t, e.DataAs(&got))
	assert.Equal(t, map[string]int{"a": 1}, got)

	var raw []byte
	require.NoError(t, e.DataAs(&raw))
	assert.Equal(t, `{"a":1}`, string(raw))

	empty, err := New(minimalDraft())
	require.NoError(t, err)
	assert.Error(t, empty.DataAs(&got))
}

func TestString(t *testing.T) {
	d := minimalDraft()
	d.DataContentType = "application/json"
	d.Data = mustJSON(t, map[string]int{"a": 1})
	d.Extensions = []ExtensionAttribute{{Name: "beats", Value: BooleanExtension(true)}}
	e, err := New(d)
	require.NoError(t, err)

	s := e.String()
	assert.Contains(t, s, "  specversion: 1.0\n")
	assert.Contains(t, s, "  id: A234-1234-1234\n")
	assert.Contains(t, s, "Extensions,\n  beats: true\n")
	assert.Contains(t, s, "Data,\n  {\n    \"a\": 1\n  }\n")
}

func mustJSON(t *testing.T, v interface{}) Data {
	t.Helper()
	d, err := JSONData(v)
	require.NoError(t, err)
	return d
}
