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

package subscriptionsapi

import (
	"context"
	"fmt"

	cesql "github.com/cloudevents/sdk-go/sql/v2"
	cesqlparser "github.com/cloudevents/sdk-go/sql/v2/parser"
	"go.uber.org/zap"

	"knative.dev/ceformat/pkg/ceinterop"
	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/eventfilter"
	"knative.dev/ceformat/pkg/logging"
)

type ceSQLFilter struct {
	rawExpression    string
	parsedExpression cesql.Expression
}

// NewCESQLFilter returns an event filter which passes if the provided CESQL expression
// evaluates to true.
func NewCESQLFilter(expr string) (eventfilter.Filter, error) {
	var parsed cesql.Expression
	var err error
	if expr != "" {
		parsed, err = cesqlparser.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("error while parsing expression %s. Error: %w", expr, err)
		}
	}
	return &ceSQLFilter{
		rawExpression:    expr,
		parsedExpression: parsed,
	}, nil
}

func (filter *ceSQLFilter) Filter(ctx context.Context, e event.Event) eventfilter.FilterResult {
	if filter == nil || filter.rawExpression == "" {
		return eventfilter.NoFilter
	}
	logger := logging.FromContext(ctx).With(zap.String("expression", filter.rawExpression))
	logger.Debug("Performing a CESQL match", zap.Stringer("event", e))

	// CESQL evaluates over the SDK's event model.
	ce, err := ceinterop.ToCloudEvent(e)
	if err != nil {
		logger.Debug("Event cannot be evaluated by CESQL.", zap.Error(err))
		return eventfilter.FailFilter
	}

	res, err := filter.parsedExpression.Evaluate(ce)
	if err != nil {
		logger.Debug("Error evaluating expression on event.", zap.Error(err))
		return eventfilter.FailFilter
	}

	if matched, ok := res.(bool); !ok || !matched {
		logger.Debug("CESQL match failed.", zap.Any("result", res))
		return eventfilter.FailFilter
	}
	return eventfilter.PassFilter
}

func (filter *ceSQLFilter) Cleanup() {}
