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

package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithAndNamed(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := WithLogger(context.Background(), zap.New(core))
	ctx = With(ctx, zap.String("input", "stdin"))
	ctx = Named(ctx, "validate")

	FromContext(ctx).Info("decoded")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "validate", entries[0].LoggerName)
	assert.Equal(t, "stdin", entries[0].ContextMap()["input"])
}

func TestFromContextFallback(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}
