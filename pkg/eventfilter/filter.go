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

// Package eventfilter defines filters that decide whether an event is
// selected, and the rules for combining their results.
package eventfilter

import (
	"context"

	"knative.dev/ceformat/pkg/event"
)

// FilterResult is the outcome of applying a filter to an event.
type FilterResult string

const (
	PassFilter FilterResult = "pass"
	FailFilter FilterResult = "fail"
	// NoFilter is returned by filters that have nothing to check.
	NoFilter FilterResult = "no_filter"
)

// And combines two results: a failure wins, NoFilter is neutral.
func (x FilterResult) And(y FilterResult) FilterResult {
	if x == NoFilter {
		return y
	}
	if y == NoFilter {
		return x
	}
	if x == PassFilter && y == PassFilter {
		return PassFilter
	}
	return FailFilter
}

// Or combines two results: a pass wins, NoFilter is neutral.
func (x FilterResult) Or(y FilterResult) FilterResult {
	if x == NoFilter {
		return y
	}
	if y == NoFilter {
		return x
	}
	if x == PassFilter || y == PassFilter {
		return PassFilter
	}
	return FailFilter
}

// Filter is an interface representing an event filter.
type Filter interface {
	// Filter compute the predicate on the provided event and returns the result of the matching
	Filter(ctx context.Context, e event.Event) FilterResult
	// Cleanup cleans up any resources/goroutines used by the filter
	Cleanup()
}

// Filters is a wrapper that runs each filter and performs the and
type Filters []Filter

func (filters Filters) Filter(ctx context.Context, e event.Event) FilterResult {
	res := NoFilter
	for _, f := range filters {
		res = res.And(f.Filter(ctx, e))
		// Short-circuit to optimize it
		if res == FailFilter {
			return FailFilter
		}
	}
	return res
}

func (filters Filters) Cleanup() {
	for _, f := range filters {
		f.Cleanup()
	}
}

var _ Filter = Filters{}
