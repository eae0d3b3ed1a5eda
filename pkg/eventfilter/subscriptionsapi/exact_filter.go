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

package subscriptionsapi

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/eventfilter"
	"knative.dev/ceformat/pkg/eventfilter/attributes"
	"knative.dev/ceformat/pkg/logging"
)

type exactFilter struct {
	filters     map[string]string
	attrsFilter eventfilter.Filter
}

// NewExactFilter returns an event filter which passes if every value exactly
// matches the value of its context attribute in the event.
func NewExactFilter(filters map[string]string) (eventfilter.Filter, error) {
	for attribute, value := range filters {
		if attribute == "" || value == "" {
			return nil, fmt.Errorf("invalid arguments, attribute and value can't be empty")
		}
	}
	return &exactFilter{
		filters: filters,
		// we're creating this filter to leverage the same filter logic of the existing attributes filter
		attrsFilter: attributes.NewAttributesFilter(filters),
	}, nil
}

func (f *exactFilter) Filter(ctx context.Context, e event.Event) eventfilter.FilterResult {
	if f == nil || len(f.filters) == 0 {
		return eventfilter.NoFilter
	}
	logging.FromContext(ctx).Debug("Performing an exact match", zap.Any("filters", f.filters), zap.Stringer("event", e))
	return f.attrsFilter.Filter(ctx, e)
}

func (f *exactFilter) Cleanup() {}
