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
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"knative.dev/ceformat/pkg/spec"
)

// String returns a multi-line, human readable dump of the event.
func (e Event) String() string {
	b := strings.Builder{}

	m, err := spec.Lookup(string(e.specVersion))
	if err != nil {
		return fmt.Sprintf("invalid event: %v\n", err)
	}

	b.WriteString("Context Attributes,\n")
	b.WriteString("  " + m.MustName(spec.SpecVersion) + ": " + string(e.specVersion) + "\n")
	b.WriteString("  " + m.MustName(spec.Type) + ": " + e.typ + "\n")
	b.WriteString("  " + m.MustName(spec.Source) + ": " + e.source + "\n")
	if e.subject != "" {
		b.WriteString("  " + m.MustName(spec.Subject) + ": " + e.subject + "\n")
	}
	b.WriteString("  " + m.MustName(spec.ID) + ": " + e.id + "\n")
	if !e.time.IsZero() {
		b.WriteString("  " + m.MustName(spec.Time) + ": " + e.time.Format(time.RFC3339Nano) + "\n")
	}
	if e.dataSchema != "" {
		b.WriteString("  " + m.MustName(spec.DataSchema) + ": " + e.dataSchema + "\n")
	}
	if e.dataContentType != "" {
		b.WriteString("  " + m.MustName(spec.DataContentType) + ": " + e.dataContentType + "\n")
	}

	if len(e.extensions) > 0 {
		b.WriteString("Extensions,\n")
		for _, x := range e.extensions {
			b.WriteString(fmt.Sprintf("  %s: %s\n", x.Name, x.Value))
		}
	}

	if !e.data.IsEmpty() {
		b.WriteString("Data,\n  ")
		switch {
		case e.data.kind == DataJSON:
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, e.data.raw(), "  ", "  "); err != nil {
				b.Write(e.data.raw())
			} else {
				b.Write(pretty.Bytes())
			}
		case utf8.Valid(e.data.raw()):
			b.Write(e.data.raw())
		default:
			b.WriteString(fmt.Sprintf("<%d bytes>", e.data.Len()))
		}
		b.WriteString("\n")
	}
	return b.String()
}
