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

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/format"
)

const stdinName = "-"

// input is one document read from a file or stdin.
type input struct {
	name string
	doc  []byte
}

func readInputs(files []string, stdin io.Reader) ([]input, error) {
	if len(files) == 0 {
		files = []string{stdinName}
	}
	inputs := make([]input, 0, len(files))
	for _, name := range files {
		var b []byte
		var err error
		if name == stdinName {
			b, err = io.ReadAll(stdin)
		} else {
			b, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", name)
		}
		inputs = append(inputs, input{name: name, doc: b})
	}
	return inputs, nil
}

// normalize returns the document as JSON. Anything that is not already a JSON
// object or array is read as YAML.
func normalize(doc []byte) ([]byte, error) {
	doc = bytes.TrimSpace(doc)
	if len(doc) == 0 {
		return nil, errors.New("empty document")
	}
	if doc[0] == '{' || doc[0] == '[' {
		return doc, nil
	}
	converted, err := yaml.YAMLToJSON(doc)
	if err != nil {
		return nil, errors.Wrap(err, "document is neither JSON nor YAML")
	}
	return converted, nil
}

func isBatch(doc []byte) bool {
	return len(doc) > 0 && doc[0] == '['
}

// entry is one event document with its position in the inputs.
type entry struct {
	name string
	doc  json.RawMessage
}

// entries splits every input into single event documents. Batch members are
// named after their input and index.
func entries(inputs []input) ([]entry, error) {
	var out []entry
	for _, in := range inputs {
		doc, err := normalize(in.doc)
		if err != nil {
			return nil, errors.Wrap(err, in.name)
		}
		if !isBatch(doc) {
			out = append(out, entry{name: in.name, doc: doc})
			continue
		}
		var members []json.RawMessage
		if err := json.Unmarshal(doc, &members); err != nil {
			return nil, errors.Wrapf(err, "%s: malformed batch", in.name)
		}
		for i, m := range members {
			out = append(out, entry{name: fmt.Sprintf("%s[%d]", in.name, i), doc: m})
		}
	}
	return out, nil
}

// decodeAll decodes every input, failing on the first invalid event.
func decodeAll(inputs []input) ([]event.Event, error) {
	es, err := entries(inputs)
	if err != nil {
		return nil, err
	}
	events := make([]event.Event, 0, len(es))
	for _, en := range es {
		e, err := format.Unmarshal(en.doc)
		if err != nil {
			return nil, errors.Wrap(err, en.name)
		}
		events = append(events, e)
	}
	return events, nil
}
