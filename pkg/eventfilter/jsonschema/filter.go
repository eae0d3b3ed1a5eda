/*
Copyright 2021 The Knative Authors

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

// Package jsonschema filters events by validating their context attributes
// against a JSON schema.
package jsonschema

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/qri-io/jsonschema"
	"go.uber.org/zap"

	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/eventfilter"
	"knative.dev/ceformat/pkg/logging"
	"knative.dev/ceformat/pkg/spec"
)

type jsonSchemaFilter jsonschema.Schema

// NewJSONSchemaFilter returns a filter which passes when the event's
// attributes and extensions, seen as one JSON object, validate against the
// schema. The payload is not part of the validated object.
func NewJSONSchemaFilter(schema map[string]interface{}) (eventfilter.Filter, error) {
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("error while marshalling the schema: %w", err)
	}
	return ParseJSONSchemaFilter(schemaBytes)
}

// ParseJSONSchemaFilter is NewJSONSchemaFilter for an encoded schema.
func ParseJSONSchemaFilter(schema []byte) (eventfilter.Filter, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(schema, rs); err != nil {
		return nil, fmt.Errorf("error while parsing the schema: %w", err)
	}
	return (*jsonSchemaFilter)(rs), nil
}

func (j *jsonSchemaFilter) Filter(ctx context.Context, e event.Event) eventfilter.FilterResult {
	result := (*jsonschema.Schema)(j).Validate(ctx, attributesObject(e))
	if result.IsValid() {
		return eventfilter.PassFilter
	}
	if errs := *result.Errs; len(errs) > 0 {
		logging.FromContext(ctx).Debug("Event attributes do not match the schema", zap.String("error", errs[0].Error()))
	}
	return eventfilter.FailFilter
}

func (j *jsonSchemaFilter) Cleanup() {}

var _ eventfilter.Filter = (*jsonSchemaFilter)(nil)

// attributesObject maps the attributes that are set onto their member names.
// Values take the types the CloudEvents JSON schema expects: strings for core
// attributes, typed values for extensions.
func attributesObject(e event.Event) map[string]interface{} {
	m, err := spec.Lookup(string(e.SpecVersion()))
	if err != nil {
		return map[string]interface{}{}
	}
	obj := make(map[string]interface{}, 4+len(e.Extensions()))
	set := func(k spec.Kind, v string) {
		if v != "" {
			obj[m.MustName(k)] = v
		}
	}
	set(spec.SpecVersion, string(e.SpecVersion()))
	set(spec.ID, e.ID())
	set(spec.Type, e.Type())
	set(spec.Source, e.Source())
	set(spec.Subject, e.Subject())
	if !e.Time().IsZero() {
		set(spec.Time, e.Time().Format(time.RFC3339Nano))
	}
	set(spec.DataContentType, e.DataContentType())
	set(spec.DataSchema, e.DataSchema())
	for _, x := range e.Extensions() {
		obj[x.Name] = x.Value.Value()
	}
	return obj
}
