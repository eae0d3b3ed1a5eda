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
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/spec"
)

const (
	fixtureID          = "0001"
	fixtureType        = "test_event.test_application"
	fixtureSource      = "http://localhost/"
	fixtureSubject     = "cloudevents-sdk"
	fixtureTime        = "2018-04-26T14:48:09+02:00"
	fixtureDataSchema  = "http://localhost/schema"
	fixtureJSONType    = "application/json"
	fixtureXMLType     = "application/xml"
	fixtureJSONPayload = `{"hello":"world"}`
	fixtureXMLPayload  = "<hello>world</hello>"
)

func fixtureExtensions() []event.ExtensionAttribute {
	return []event.ExtensionAttribute{
		{Name: "stringex", Value: event.StringExtension("val")},
		{Name: "boolex", Value: event.BooleanExtension(true)},
		{Name: "intex", Value: event.IntegerExtension(10)},
	}
}

func fixtureTimestamp(t *testing.T) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, fixtureTime)
	require.NoError(t, err)
	return ts
}

func mustEvent(t *testing.T, d event.Draft) event.Event {
	t.Helper()
	e, err := event.New(d)
	require.NoError(t, err)
	return e
}

func mustJSONData(t *testing.T, raw string) event.Data {
	t.Helper()
	d, err := event.RawJSONData([]byte(raw))
	require.NoError(t, err)
	return d
}

func minimalEvent(t *testing.T) event.Event {
	return mustEvent(t, event.Draft{
		ID:     "A234-1234-1234",
		Source: "/source",
		Type:   "example.type",
	})
}

func fullDraft(t *testing.T) event.Draft {
	return event.Draft{
		SpecVersion: spec.V1,
		ID:          fixtureID,
		Source:      fixtureSource,
		Type:        fixtureType,
		Subject:     fixtureSubject,
		Time:        fixtureTimestamp(t),
		Extensions:  fixtureExtensions(),
	}
}

func fullNoData(t *testing.T) event.Event {
	return mustEvent(t, fullDraft(t))
}

const fullNoDataJSON = `{
	"specversion": "1.0",
	"id": "0001",
	"type": "test_event.test_application",
	"source": "http://localhost/",
	"subject": "cloudevents-sdk",
	"time": "2018-04-26T14:48:09+02:00",
	"stringex": "val",
	"boolex": true,
	"intex": 10
}`

func fullJSONData(t *testing.T) event.Event {
	d := fullDraft(t)
	d.DataContentType = fixtureJSONType
	d.DataSchema = fixtureDataSchema
	d.Data = mustJSONData(t, fixtureJSONPayload)
	return mustEvent(t, d)
}

const fullJSONDataJSON = `{
	"specversion": "1.0",
	"id": "0001",
	"type": "test_event.test_application",
	"source": "http://localhost/",
	"subject": "cloudevents-sdk",
	"time": "2018-04-26T14:48:09+02:00",
	"stringex": "val",
	"boolex": true,
	"intex": 10,
	"datacontenttype": "application/json",
	"dataschema": "http://localhost/schema",
	"data": {"hello": "world"}
}`

// fullNonJSONData replaces the JSON payload of fullJSONData with bytes that
// are not JSON, keeping the declared content type.
func fullNonJSONData(t *testing.T) event.Event {
	return fullJSONData(t).WithDataUnchecked(event.BinaryData([]byte("hello world")))
}

var fullNonJSONBase64JSON = `{
	"specversion": "1.0",
	"id": "0001",
	"type": "test_event.test_application",
	"source": "http://localhost/",
	"subject": "cloudevents-sdk",
	"time": "2018-04-26T14:48:09+02:00",
	"stringex": "val",
	"boolex": true,
	"intex": 10,
	"datacontenttype": "application/json",
	"dataschema": "http://localhost/schema",
	"data_base64": "` + base64.StdEncoding.EncodeToString([]byte("hello world")) + `"
}`

func fullXMLStringData(t *testing.T) event.Event {
	d := fullDraft(t)
	d.DataContentType = fixtureXMLType
	d.Data = event.TextData(fixtureXMLPayload)
	return mustEvent(t, d)
}

func fullXMLBinaryData(t *testing.T) event.Event {
	d := fullDraft(t)
	d.DataContentType = fixtureXMLType
	d.Data = event.BinaryData([]byte(fixtureXMLPayload))
	return mustEvent(t, d)
}

const fullXMLStringDataJSON = `{
	"specversion": "1.0",
	"id": "0001",
	"type": "test_event.test_application",
	"source": "http://localhost/",
	"subject": "cloudevents-sdk",
	"time": "2018-04-26T14:48:09+02:00",
	"stringex": "val",
	"boolex": true,
	"intex": 10,
	"datacontenttype": "application/xml",
	"data": "<hello>world</hello>"
}`

var fullXMLBase64DataJSON = `{
	"specversion": "1.0",
	"id": "0001",
	"type": "test_event.test_application",
	"source": "http://localhost/",
	"subject": "cloudevents-sdk",
	"time": "2018-04-26T14:48:09+02:00",
	"stringex": "val",
	"boolex": true,
	"intex": 10,
	"datacontenttype": "application/xml",
	"data_base64": "` + base64.StdEncoding.EncodeToString([]byte(fixtureXMLPayload)) + `"
}`
