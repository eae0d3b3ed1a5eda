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

// Package mediatype classifies datacontenttype values.
package mediatype

import (
	"mime"
	"strings"
)

const (
	ApplicationJSON        = "application/json"
	ApplicationXML         = "application/xml"
	ApplicationOctetStream = "application/octet-stream"
	TextPlain              = "text/plain"
)

var textTypes = map[string]struct{}{
	ApplicationXML:                      {},
	"application/javascript":            {},
	"application/ecmascript":            {},
	"application/x-www-form-urlencoded": {},
	"application/yaml":                  {},
	"application/x-yaml":                {},
	"application/toml":                  {},
}

// Of returns the lower-cased media type of a content type with its
// parameters removed. Values that do not parse are cut at the first ';'.
func Of(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
		mt = strings.ToLower(strings.TrimSpace(mt))
	}
	return mt
}

// IsJSON reports whether the content type declares JSON: application/json,
// text/json or a +json structured suffix.
func IsJSON(contentType string) bool {
	mt := Of(contentType)
	return mt == ApplicationJSON || mt == "text/json" || strings.HasSuffix(mt, "+json")
}

// IsText reports whether payloads of the content type can be carried as
// UTF-8 text. JSON types are not included; check IsJSON first.
func IsText(contentType string) bool {
	mt := Of(contentType)
	if mt == "" || IsJSON(mt) {
		return false
	}
	if strings.HasPrefix(mt, "text/") {
		return true
	}
	if _, ok := textTypes[mt]; ok {
		return true
	}
	return strings.HasSuffix(mt, "+xml") || strings.HasSuffix(mt, "+yaml")
}
