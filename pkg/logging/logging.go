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

// Package logging carries desugared zap loggers in a context, on top of
// knative/pkg's logging package.
package logging

import (
	"context"

	"go.uber.org/zap"
	"knative.dev/pkg/logging"
)

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return logging.WithLogger(ctx, logger.Sugar())
}

// FromContext returns the logger in ctx, or knative's fallback logger when
// there is none.
func FromContext(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx).Desugar()
}

// With returns a copy of ctx whose logger carries the extra fields.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(fields...))
}

// Named returns a copy of ctx whose logger has name appended to its name.
func Named(ctx context.Context, name string) context.Context {
	return WithLogger(ctx, FromContext(ctx).Named(name))
}
