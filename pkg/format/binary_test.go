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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/spec"
)

func TestToBinary(t *testing.T) {
	msg, err := ToBinary(fullJSONData(t))
	require.NoError(t, err)

	want := BinaryMessage{
		Headers: map[string]string{
			"ce-specversion": "1.0",
			"ce-id":          fixtureID,
			"ce-type":        fixtureType,
			"ce-source":      fixtureSource,
			"ce-subject":     fixtureSubject,
			"ce-time":        fixtureTime,
			"ce-dataschema":  fixtureDataSchema,
			"ce-stringex":    "val",
			"ce-boolex":      "true",
			"ce-intex":       "10",
		},
		ContentType: fixtureJSONType,
		Body:        []byte(fixtureJSONPayload),
	}
	if diff := cmp.Diff(want, msg); diff != "" {
		t.Errorf("unexpected message (-want, +got) = %v", diff)
	}
}

func TestToBinaryV03(t *testing.T) {
	e := mustEvent(t, event.Draft{
		SpecVersion: spec.V03,
		ID:          "1",
		Source:      "/s",
		Type:        "t",
		DataSchema:  "/schema",
	})
	msg, err := ToBinary(e)
	require.NoError(t, err)
	assert.Equal(t, "/schema", msg.Headers["ce-schemaurl"])
	assert.NotContains(t, msg.Headers, "ce-dataschema")
	assert.Nil(t, msg.Body)
}

func TestFromBinary(t *testing.T) {
	tests := map[string]struct {
		msg      BinaryMessage
		wantKind event.DataKind
		wantBody string
	}{
		"json body": {
			msg:      BinaryMessage{ContentType: "application/json", Body: []byte(` {"a":1} `)},
			wantKind: event.DataJSON,
			wantBody: `{"a":1}`,
		},
		"invalid json body": {
			msg:      BinaryMessage{ContentType: "application/json", Body: []byte(`{`)},
			wantKind: event.DataBinary,
			wantBody: `{`,
		},
		"text body": {
			msg:      BinaryMessage{ContentType: "text/plain; charset=utf-8", Body: []byte("hi")},
			wantKind: event.DataText,
			wantBody: "hi",
		},
		"opaque body": {
			msg:      BinaryMessage{ContentType: "application/octet-stream", Body: []byte{0, 1, 2}},
			wantKind: event.DataBinary,
			wantBody: "\x00\x01\x02",
		},
		"no body": {
			msg:      BinaryMessage{ContentType: "application/json"},
			wantKind: event.DataEmpty,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			tc.msg.Headers = map[string]string{
				"Ce-SpecVersion": "1.0",
				"ce-id":          "1",
				"ce-type":        "t",
				"ce-source":      "/s",
				"content-length": "7",
			}
			e, err := FromBinary(tc.msg)
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, e.Data().Kind())
			assert.Equal(t, tc.wantBody, string(e.Data().Bytes()))
			assert.Empty(t, e.Extensions())
		})
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	e := fullJSONData(t)
	msg, err := ToBinary(e)
	require.NoError(t, err)
	got, err := FromBinary(msg)
	require.NoError(t, err)

	// Extensions come back as strings, sorted by name.
	assert.Equal(t, []event.ExtensionAttribute{
		{Name: "boolex", Value: event.StringExtension("true")},
		{Name: "intex", Value: event.StringExtension("10")},
		{Name: "stringex", Value: event.StringExtension("val")},
	}, got.Extensions())
	assert.Equal(t, e.ID(), got.ID())
	assert.True(t, e.Time().Equal(got.Time()))
	assert.True(t, e.Data().Equal(got.Data()))
	assert.Equal(t, e.DataSchema(), got.DataSchema())
}

func TestFromBinaryErrors(t *testing.T) {
	_, err := FromBinary(BinaryMessage{Headers: map[string]string{"ce-id": "1"}})
	var missing *event.MissingRequiredAttributeError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "specversion", missing.Name)

	_, err = FromBinary(BinaryMessage{Headers: map[string]string{"ce-specversion": "0.1"}})
	var versionErr *spec.UnsupportedSpecVersionError
	assert.True(t, errors.As(err, &versionErr))

	_, err = FromBinary(BinaryMessage{Headers: map[string]string{
		"ce-specversion": "1.0", "ce-id": "1", "ce-type": "t", "ce-source": "/s", "ce-time": "noon",
	}})
	var attrErr *event.InvalidAttributeValueError
	assert.True(t, errors.As(err, &attrErr))
}
