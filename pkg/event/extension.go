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
	"strconv"
)

// ExtensionKind is the declared type of an extension value.
type ExtensionKind int8

const (
	ExtensionString ExtensionKind = iota
	ExtensionBoolean
	ExtensionInteger
)

func (k ExtensionKind) String() string {
	switch k {
	case ExtensionBoolean:
		return "Boolean"
	case ExtensionInteger:
		return "Integer"
	default:
		return "String"
	}
}

// Extension is a typed extension attribute value. The zero value is the empty
// string.
type Extension struct {
	kind ExtensionKind
	s    string
	b    bool
	i    int64
}

// StringExtension returns a String extension value.
func StringExtension(s string) Extension { return Extension{kind: ExtensionString, s: s} }

// BooleanExtension returns a Boolean extension value.
func BooleanExtension(b bool) Extension { return Extension{kind: ExtensionBoolean, b: b} }

// IntegerExtension returns an Integer extension value.
func IntegerExtension(i int64) Extension { return Extension{kind: ExtensionInteger, i: i} }

// Kind returns the declared type of the value.
func (x Extension) Kind() ExtensionKind { return x.kind }

func (x Extension) AsString() (string, bool) { return x.s, x.kind == ExtensionString }

func (x Extension) AsBoolean() (bool, bool) { return x.b, x.kind == ExtensionBoolean }

func (x Extension) AsInteger() (int64, bool) { return x.i, x.kind == ExtensionInteger }

// Value returns the typed Go value: string, bool or int64.
func (x Extension) Value() interface{} {
	switch x.kind {
	case ExtensionBoolean:
		return x.b
	case ExtensionInteger:
		return x.i
	default:
		return x.s
	}
}

// String returns the string-coerced form used by transports that carry every
// attribute as a header string.
func (x Extension) String() string {
	switch x.kind {
	case ExtensionBoolean:
		return strconv.FormatBool(x.b)
	case ExtensionInteger:
		return strconv.FormatInt(x.i, 10)
	default:
		return x.s
	}
}

// ExtensionAttribute is a named extension value.
type ExtensionAttribute struct {
	Name  string
	Value Extension
}
