/*
Copyright 2022 The Knative Authors

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

package benchmarks

import (
	"context"
	"testing"
	"time"

	"github.com/wavesoftware/go-ensure"

	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/eventfilter"
)

type FilterBenchmark struct {
	name   string
	arg    interface{}
	events []event.Event
}

// Avoid DCE
var Filter eventfilter.Filter
var Result eventfilter.FilterResult

// RunFilterBenchmarks executes 2 benchmark runs for each of the provided bench cases:
// 1. "Creation: ..." benchmark measures the time/mem to create the filter, given the filter constructor and the argument
// 2. "Run: ..." benchmark measures the time/mem to execute the filter, given a pre-built filter instance and the provided events
func RunFilterBenchmarks(b *testing.B, filterCtor func(interface{}) eventfilter.Filter, filterBenchmarks ...FilterBenchmark) {
	for _, fb := range filterBenchmarks {
		b.Run("Creation: "+fb.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				Filter = filterCtor(fb.arg)
			}
		})
		// Filter to use for the run
		f := filterCtor(fb.arg)
		b.Run("Run: "+fb.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				Result = f.Filter(context.TODO(), fb.events[i%len(fb.events)])
			}
		})
	}
}

// fullEvent has every attribute set and one extension of each type.
func fullEvent() event.Event {
	data, err := event.JSONData(map[string]string{"hello": "world"})
	ensure.NoError(err)
	e, err := event.New(event.Draft{
		ID:              "full-event-0123456789",
		Source:          "http://example.com/source",
		Type:            "com.example.full.event",
		Subject:         "topic/subject",
		Time:            time.Date(2020, 3, 21, 12, 34, 56, 780000000, time.UTC),
		DataContentType: "application/json",
		DataSchema:      "http://example.com/schema",
		Extensions: []event.ExtensionAttribute{
			{Name: "exstring", Value: event.StringExtension("value")},
			{Name: "exbool", Value: event.BooleanExtension(true)},
			{Name: "exint", Value: event.IntegerExtension(42)},
		},
		Data: data,
	})
	ensure.NoError(err)
	return e
}

func withType(e event.Event, typ string) event.Event {
	d := e.Draft()
	d.Type = typ
	out, err := event.New(d)
	ensure.NoError(err)
	return out
}
