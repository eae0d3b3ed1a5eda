/*
Copyright 2020 The Knative Authors

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

package attributes

import (
	"context"
	"time"

	"go.uber.org/zap"

	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/eventfilter"
	"knative.dev/ceformat/pkg/logging"
	"knative.dev/ceformat/pkg/mediatype"
)

// AnyValue in a filter matches any non-empty attribute value.
const AnyValue = ""

type attributesFilter map[string]string

// NewAttributesFilter returns an event filter which performs the exact match on the attributes
func NewAttributesFilter(attrs map[string]string) eventfilter.Filter {
	return attributesFilter(attrs)
}

func (attrs attributesFilter) Filter(ctx context.Context, e event.Event) eventfilter.FilterResult {
	if attrs == nil {
		return eventfilter.NoFilter
	}
	logger := logging.FromContext(ctx)
	for k, v := range attrs {
		value, ok := LookupAttribute(e, k)
		// Missing extensions and unset optional attributes never match.
		if !ok || (v == AnyValue && value == "") {
			logger.Debug("Attribute not found", zap.String("attribute", k))
			return eventfilter.FailFilter
		}
		if v != AnyValue && v != value {
			logger.Debug("Attribute had non-matching value", zap.String("attribute", k), zap.String("filter", v), zap.String("received", value))
			return eventfilter.FailFilter
		}
	}
	return eventfilter.PassFilter
}

func (attrs attributesFilter) Cleanup() {}

// LookupAttribute returns the string form of a context attribute. Core
// attributes answer to the names of every supported spec version; unset
// optional attributes are found with an empty value. Extensions use their
// string-coerced form.
func LookupAttribute(e event.Event, attr string) (string, bool) {
	switch attr {
	case "specversion":
		return string(e.SpecVersion()), true
	case "type":
		return e.Type(), true
	case "source":
		return e.Source(), true
	case "subject":
		return e.Subject(), true
	case "id":
		return e.ID(), true
	case "time":
		if e.Time().IsZero() {
			return "", true
		}
		return e.Time().Format(time.RFC3339Nano), true
	case "dataschema", "schemaurl":
		return e.DataSchema(), true
	case "datacontenttype":
		return e.DataContentType(), true
	case "datamediatype":
		return mediatype.Of(e.DataContentType()), true
	default:
		x, ok := e.Extension(attr)
		if !ok {
			return "", false
		}
		return x.String(), true
	}
}

var _ eventfilter.Filter = attributesFilter{}
