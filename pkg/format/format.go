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

// Package format implements the CloudEvents structured-mode JSON format, its
// batch variant and the header+body projection used by binary-mode
// transports.
package format

import (
	"errors"
	"strings"

	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/mediatype"
)

const (
	// Prefix for event-format media types.
	Prefix = "application/cloudevents"

	MediaTypeJSON      = "application/cloudevents+json"
	MediaTypeBatchJSON = "application/cloudevents-batch+json"
)

var (
	// ErrAmbiguousPayloadEncoding is returned for documents carrying both
	// data and data_base64.
	ErrAmbiguousPayloadEncoding = errors.New("both data and data_base64 are present")
	// ErrInvalidBase64Payload is returned when data_base64 is not a string of
	// standard base64.
	ErrInvalidBase64Payload = errors.New("invalid base64 payload")
	// ErrMalformedDocument is returned when the input is not a single JSON
	// object with unique member names.
	ErrMalformedDocument = errors.New("malformed event document")
)

// Format marshals and unmarshals structured events.
type Format interface {
	// MediaType identifies the format.
	MediaType() string
	Marshal(event.Event) ([]byte, error)
	Unmarshal([]byte) (event.Event, error)
}

// JSON is the application/cloudevents+json format.
var JSON Format = jsonFmt{}

type jsonFmt struct{}

func (jsonFmt) MediaType() string { return MediaTypeJSON }

func (jsonFmt) Marshal(e event.Event) ([]byte, error) { return Marshal(e) }

func (jsonFmt) Unmarshal(b []byte) (event.Event, error) { return Unmarshal(b) }

// IsFormat returns true if mediaType begins with "application/cloudevents".
func IsFormat(mediaType string) bool {
	return strings.HasPrefix(mediatype.Of(mediaType), Prefix)
}

// Lookup returns the single-event format for a content type. Parameters such
// as charset are ignored.
func Lookup(contentType string) (Format, bool) {
	if mediatype.Of(contentType) == MediaTypeJSON {
		return JSON, true
	}
	return nil, false
}
