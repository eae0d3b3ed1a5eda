/*
Copyright 2023 The Knative Authors

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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knative.dev/ceformat/pkg/eventfilter"
)

func TestFiltersMap(t *testing.T) {
	fm := NewFiltersMap()
	exact, err := NewExactFilter(map[string]string{"type": "sample.event.type"})
	require.NoError(t, err)
	prefix, err := NewPrefixFilter(map[string]string{"source": "github.com"})
	require.NoError(t, err)

	fm.Set("exact", exact)
	fm.Set("prefix", prefix)

	newExact, ok := fm.Get("exact")
	assert.True(t, ok)
	assert.Equal(t, exact, newExact)

	newPrefix, ok := fm.Get("prefix")
	assert.True(t, ok)
	assert.Equal(t, prefix, newPrefix)
	assert.Len(t, fm.All(), 2)

	fm.Delete("prefix")
	_, ok = fm.Get("prefix")
	assert.False(t, ok)
	assert.Equal(t, eventfilter.FailFilter, fm.All().Filter(context.TODO(), *makeEvent()))
}

func TestFiltersMapCleansUpReplacedFilters(t *testing.T) {
	fm := NewFiltersMap()
	first := &cleanupCounter{}
	fm.Set("key", first)
	fm.Set("key", &passFilter{})
	assert.Equal(t, 1, first.cleanups)

	second := &cleanupCounter{}
	fm.Set("other", second)
	fm.Delete("other")
	assert.Equal(t, 1, second.cleanups)
}

func TestFiltersMapConcurrentAccess(t *testing.T) {
	fm := NewFiltersMap()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				fm.Set("shared", &passFilter{})
				if f, ok := fm.Get("shared"); ok {
					f.Filter(context.TODO(), *makeEvent())
				}
				_ = fm.All()
			}
		}()
	}
	wg.Wait()
	_, ok := fm.Get("shared")
	assert.True(t, ok)
}
