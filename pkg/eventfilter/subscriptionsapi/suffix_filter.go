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
	"strings"

	"go.uber.org/zap"

	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/eventfilter"
	"knative.dev/ceformat/pkg/eventfilter/attributes"
	"knative.dev/ceformat/pkg/logging"
)

type suffixFilter struct {
	filters map[string]string
}

// NewSuffixFilter returns an event filter which passes if the value of the context
// attribute in the CloudEvent ends with suffix.
func NewSuffixFilter(filters map[string]string) (eventfilter.Filter, error) {
	for attribute, value := range filters {
		if attribute == "" || value == "" {
			return nil, fmt.Errorf("invalid arguments, attribute and suffix can't be empty")
		}
	}
	return &suffixFilter{
		filters: filters,
	}, nil
}

func (filter *suffixFilter) Filter(ctx context.Context, e event.Event) eventfilter.FilterResult {
	if filter == nil || len(filter.filters) == 0 {
		return eventfilter.NoFilter
	}
	logger := logging.FromContext(ctx)
	logger.Debug("Performing a suffix match", zap.Any("filters", filter.filters), zap.Stringer("event", e))
	for k, v := range filter.filters {
		value, ok := attributes.LookupAttribute(e, k)
		if !ok {
			logger.Debug("Couldn't find attribute in event. Suffix match failed.", zap.String("attribute", k), zap.String("suffix", v))
			return eventfilter.FailFilter
		}
		if !strings.HasSuffix(value, v) {
			return eventfilter.FailFilter
		}
	}
	return eventfilter.PassFilter
}

func (filter *suffixFilter) Cleanup() {}
