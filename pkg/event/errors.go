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

package event

import (
	"fmt"
)

// MissingRequiredAttributeError reports a required context attribute that is
// absent or empty.
type MissingRequiredAttributeError struct {
	Name string
}

func (e *MissingRequiredAttributeError) Error() string {
	return fmt.Sprintf("%s: MUST be a non-empty string", e.Name)
}

// InvalidURIError reports an attribute that does not hold a valid URI or
// URI-reference.
type InvalidURIError struct {
	Attribute string
	Value     string
	Err       error
}

func (e *InvalidURIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid URI %q: %v", e.Attribute, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: invalid URI %q", e.Attribute, e.Value)
}

func (e *InvalidURIError) Unwrap() error { return e.Err }

// InvalidExtensionNameError reports an extension name that breaks the naming
// rules or collides with a core attribute.
type InvalidExtensionNameError struct {
	Name   string
	Reason string
}

func (e *InvalidExtensionNameError) Error() string {
	return fmt.Sprintf("extension %q: %s", e.Name, e.Reason)
}

// InvalidExtensionValueTypeError reports an extension whose JSON value is not
// a string, a boolean or an integer.
type InvalidExtensionValueTypeError struct {
	Name     string
	JSONType string
}

func (e *InvalidExtensionValueTypeError) Error() string {
	return fmt.Sprintf("extension %q: unsupported value type %s", e.Name, e.JSONType)
}

// InvalidAttributeValueError reports a core attribute whose value cannot be
// accepted, such as a non-string JSON value or a malformed timestamp.
type InvalidAttributeValueError struct {
	Name   string
	Value  string
	Reason string
}

func (e *InvalidAttributeValueError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %q", e.Name, e.Reason, e.Value)
}

// DataEncodingError reports a payload that cannot be represented under its
// declared content type.
type DataEncodingError struct {
	ContentType string
	Reason      string
}

func (e *DataEncodingError) Error() string {
	if e.ContentType == "" {
		return "data: " + e.Reason
	}
	return fmt.Sprintf("data (%s): %s", e.ContentType, e.Reason)
}
