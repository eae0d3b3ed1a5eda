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

package logconfig

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"knative.dev/pkg/logging"
)

const (
	// Component is the name of the cejson command's root logger.
	Component = "cejson"

	// DefaultLevel is used when neither the environment nor the config file
	// names a level.
	DefaultLevel = "info"
)

// ValidateLevel reports whether level is a zap level name.
func ValidateLevel(level string) error {
	if _, err := zapcore.ParseLevel(level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return nil
}

// NewLogger builds the command's logger from a zap JSON config, using knative's
// production defaults when configJSON is empty. A non-empty level overrides the
// configured one.
func NewLogger(configJSON, level string) (*zap.Logger, zap.AtomicLevel) {
	logger, atomicLevel := logging.NewLogger(configJSON, level)
	return logger.Desugar().Named(Component), atomicLevel
}
