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

package subscriptionsapi

import (
	"context"

	"go.uber.org/zap"

	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/eventfilter"
	"knative.dev/ceformat/pkg/logging"
)

type allFilter struct {
	filters eventfilter.Filters
}

// NewAllFilter returns an event filter which passes if all the contained filters pass
func NewAllFilter(filters ...eventfilter.Filter) eventfilter.Filter {
	return &allFilter{filters: filters}
}

func (filter *allFilter) Filter(ctx context.Context, e event.Event) eventfilter.FilterResult {
	logging.FromContext(ctx).Debug("Performing an ALL match", zap.Int("filters", len(filter.filters)))
	return filter.filters.Filter(ctx, e)
}

func (filter *allFilter) Cleanup() {
	filter.filters.Cleanup()
}

type anyFilter struct {
	filters []eventfilter.Filter
}

// NewAnyFilter returns an event filter which passes if any of the contained filters passes.
func NewAnyFilter(filters ...eventfilter.Filter) eventfilter.Filter {
	return &anyFilter{filters: filters}
}

func (filter *anyFilter) Filter(ctx context.Context, e event.Event) eventfilter.FilterResult {
	logging.FromContext(ctx).Debug("Performing an ANY match", zap.Int("filters", len(filter.filters)))
	res := eventfilter.NoFilter
	for _, f := range filter.filters {
		res = res.Or(f.Filter(ctx, e))
		if res == eventfilter.PassFilter {
			return eventfilter.PassFilter
		}
	}
	return res
}

func (filter *anyFilter) Cleanup() {
	for _, f := range filter.filters {
		f.Cleanup()
	}
}

type notFilter struct {
	filter eventfilter.Filter
}

// NewNotFilter returns an event filter which passes if the contained filter fails.
func NewNotFilter(f eventfilter.Filter) eventfilter.Filter {
	return &notFilter{filter: f}
}

func (filter *notFilter) Filter(ctx context.Context, e event.Event) eventfilter.FilterResult {
	logging.FromContext(ctx).Debug("Performing a NOT match")
	switch filter.filter.Filter(ctx, e) {
	case eventfilter.FailFilter:
		return eventfilter.PassFilter
	case eventfilter.PassFilter:
		return eventfilter.FailFilter
	}
	return eventfilter.NoFilter
}

func (filter *notFilter) Cleanup() {
	filter.filter.Cleanup()
}
