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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"sigs.k8s.io/yaml"

	"knative.dev/ceformat/pkg/event"
	"knative.dev/ceformat/pkg/eventfilter"
	"knative.dev/ceformat/pkg/eventfilter/jsonschema"
	"knative.dev/ceformat/pkg/eventfilter/subscriptionsapi"
	"knative.dev/ceformat/pkg/format"
	"knative.dev/ceformat/pkg/logging"
	"knative.dev/ceformat/pkg/mediatype"
	"knative.dev/ceformat/pkg/spec"
)

func validateCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("validate", a.stderr)
	quiet := fs.Bool("q", false, "only report invalid events")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	inputs, err := readInputs(fs.Args(), a.stdin)
	if err != nil {
		return err
	}

	// Split every input first so that the report keeps the input order.
	type result struct {
		name string
		doc  json.RawMessage
		err  error
	}
	var results []result
	for _, in := range inputs {
		es, err := entries([]input{in})
		if err != nil {
			results = append(results, result{name: in.name, err: err})
			continue
		}
		for _, en := range es {
			results = append(results, result{name: en.name, doc: en.doc})
		}
	}

	invalid := atomic.NewInt64(0)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range results {
		r := &results[i]
		if r.err != nil {
			invalid.Inc()
			continue
		}
		g.Go(func() error {
			if _, err := format.Unmarshal(r.doc); err != nil {
				r.err = err
				invalid.Inc()
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs error
	for _, r := range results {
		if r.err == nil {
			if !*quiet {
				fmt.Fprintf(a.stdout, "%s: valid\n", r.name)
			}
			continue
		}
		// Report every violation the validator found.
		for _, e := range multierr.Errors(r.err) {
			fmt.Fprintf(a.stdout, "%s: invalid: %v\n", r.name, e)
		}
		errs = multierr.Append(errs, errors.Wrap(r.err, r.name))
	}
	if n := invalid.Load(); n > 0 {
		logging.FromContext(ctx).Debug("Validation failed", zap.Error(errs))
		return fmt.Errorf("%d invalid document(s)", n)
	}
	return nil
}

func formatCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("format", a.stderr)
	batch := fs.Bool("batch", false, "write a single batch array")
	indent := fs.Bool("indent", a.cfg.Indent, "pretty-print the output")
	version := fs.String("specversion", "", "convert events to this spec version")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	events, err := readEvents(a, fs.Args())
	if err != nil {
		return err
	}
	if *version != "" {
		if events, err = convert(events, spec.Version(*version)); err != nil {
			return err
		}
	}
	logging.FromContext(ctx).Debug("Formatting events", zap.Int("count", len(events)))
	return writeEvents(a.stdout, events, *batch, *indent)
}

func binaryCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("binary", a.stderr)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	events, err := readEvents(a, fs.Args())
	if err != nil {
		return err
	}
	for i, e := range events {
		msg, err := format.ToBinary(e)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(a.stdout, "---")
		}
		writeBinary(a.stdout, msg)
	}
	return nil
}

func writeBinary(w io.Writer, msg format.BinaryMessage) {
	names := make([]string, 0, len(msg.Headers))
	for name := range msg.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	if msg.ContentType != "" {
		fmt.Fprintf(w, "content-type: %s\n", msg.ContentType)
	}
	for _, name := range names {
		fmt.Fprintf(w, "%s: %s\n", name, msg.Headers[name])
	}
	fmt.Fprintln(w)
	if len(msg.Body) > 0 {
		_, _ = w.Write(msg.Body)
		fmt.Fprintln(w)
	}
}

/*
Example Output:

☁️  cloudevents.Event
Validation: valid
Context Attributes,
  specversion: 1.0
  type: dev.knative.eventing.samples.heartbeat
  source: https://knative.dev/eventing/cmd/heartbeats/#event-test/mypod
  id: 2b72d7bf-c38f-4a98-a433-608fbcdd2596
  time: 2019-10-18T15:23:20.809775386Z
  datacontenttype: application/json
Extensions,
  beats: true
  the: 42
Data,
  {
    "id": 2,
    "label": ""
  }
*/
func displayCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("display", a.stderr)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	events, err := readEvents(a, fs.Args())
	if err != nil {
		return err
	}
	for _, e := range events {
		fmt.Fprintf(a.stdout, "☁️  cloudevents.Event\nValidation: valid\n%s", e)
	}
	return nil
}

func filterCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("filter", a.stderr)
	expr := fs.String("expr", "", "CESQL expression")
	schema := fs.String("schema", "", "JSON or YAML schema file the attributes must satisfy")
	exact, prefix, suffix := keyValues{}, keyValues{}, keyValues{}
	fs.Var(exact, "exact", "attribute=value exact match (repeatable)")
	fs.Var(prefix, "prefix", "attribute=prefix match (repeatable)")
	fs.Var(suffix, "suffix", "attribute=suffix match (repeatable)")
	batch := fs.Bool("batch", false, "write matching events as a single batch array")
	indent := fs.Bool("indent", a.cfg.Indent, "pretty-print the output")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	filters := subscriptionsapi.NewFiltersMap()
	if err := addFilters(filters, *expr, *schema, exact, prefix, suffix); err != nil {
		return usageError{err}
	}
	filter := subscriptionsapi.NewAllFilter(filters.All()...)
	defer filter.Cleanup()

	events, err := readEvents(a, fs.Args())
	if err != nil {
		return err
	}
	logger := logging.FromContext(ctx)
	var matched []event.Event
	for _, e := range events {
		res := filter.Filter(ctx, e)
		logger.Debug("Filtered event", zap.String("id", e.ID()), zap.String("result", string(res)))
		if res != eventfilter.FailFilter {
			matched = append(matched, e)
		}
	}
	return writeEvents(a.stdout, matched, *batch, *indent)
}

func addFilters(filters *subscriptionsapi.FiltersMap, expr, schemaFile string, exact, prefix, suffix keyValues) error {
	if expr != "" {
		f, err := subscriptionsapi.NewCESQLFilter(expr)
		if err != nil {
			return err
		}
		filters.Set("cesql", f)
	}
	if schemaFile != "" {
		b, err := os.ReadFile(schemaFile)
		if err != nil {
			return errors.Wrap(err, "reading schema")
		}
		b, err = yaml.YAMLToJSON(b)
		if err != nil {
			return errors.Wrap(err, "decoding schema")
		}
		f, err := jsonschema.ParseJSONSchemaFilter(b)
		if err != nil {
			return err
		}
		filters.Set("schema", f)
	}
	for name, kv := range map[string]keyValues{"exact": exact, "prefix": prefix, "suffix": suffix} {
		if len(kv) == 0 {
			continue
		}
		var f eventfilter.Filter
		var err error
		switch name {
		case "exact":
			f, err = subscriptionsapi.NewExactFilter(kv)
		case "prefix":
			f, err = subscriptionsapi.NewPrefixFilter(kv)
		case "suffix":
			f, err = subscriptionsapi.NewSuffixFilter(kv)
		}
		if err != nil {
			return errors.Wrapf(err, "-%s", name)
		}
		filters.Set(name, f)
	}
	return nil
}

func newCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("new", a.stderr)
	d := event.Draft{}
	version := fs.String("specversion", a.cfg.SpecVersion, "spec version of the event")
	fs.StringVar(&d.ID, "id", "", "event id; a random UUID when empty")
	fs.StringVar(&d.Type, "type", "", "event type")
	fs.StringVar(&d.Source, "source", a.cfg.Source, "event source")
	fs.StringVar(&d.Subject, "subject", "", "event subject")
	fs.StringVar(&d.DataContentType, "datacontenttype", "", "content type of -data")
	fs.StringVar(&d.DataSchema, "dataschema", "", "schema of -data")
	ts := fs.String("time", "now", `occurrence time in RFC 3339, "now" or "" for none`)
	data := fs.String("data", "", "event payload")
	var exts orderedKeyValues
	fs.Var(&exts, "ext", "name=value extension; true/false and integers keep their type (repeatable)")
	indent := fs.Bool("indent", a.cfg.Indent, "pretty-print the output")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return usageError{fmt.Errorf("new takes no arguments, got %q", fs.Args())}
	}

	d.SpecVersion = spec.Version(*version)
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Source == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "localhost"
		}
		d.Source = "//" + host
	}
	switch *ts {
	case "":
	case "now":
		d.Time = time.Now().UTC()
	default:
		t, err := time.Parse(time.RFC3339Nano, *ts)
		if err != nil {
			return usageError{errors.Wrap(err, "-time")}
		}
		d.Time = t
	}
	for _, kv := range exts {
		d.Extensions = append(d.Extensions, event.ExtensionAttribute{Name: kv[0], Value: extensionFromFlag(kv[1])})
	}
	if *data != "" {
		var err error
		if d.Data, err = dataFromFlag(d.DataContentType, *data); err != nil {
			return err
		}
	}

	e, err := event.New(d)
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Debug("Built event", zap.String("id", e.ID()))
	return writeEvents(a.stdout, []event.Event{e}, false, *indent)
}

func extensionFromFlag(v string) event.Extension {
	if v == "true" || v == "false" {
		return event.BooleanExtension(v == "true")
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return event.IntegerExtension(i)
	}
	return event.StringExtension(v)
}

// dataFromFlag takes the payload as JSON when the content type says so, or
// when there is no content type and the value parses as JSON.
func dataFromFlag(contentType, data string) (event.Data, error) {
	if mediatype.IsJSON(contentType) {
		return event.RawJSONData([]byte(data))
	}
	if contentType == "" && json.Valid([]byte(data)) {
		return event.RawJSONData([]byte(data))
	}
	return event.TextData(data), nil
}

func readEvents(a *app, files []string) ([]event.Event, error) {
	inputs, err := readInputs(files, a.stdin)
	if err != nil {
		return nil, err
	}
	return decodeAll(inputs)
}

func convert(events []event.Event, v spec.Version) ([]event.Event, error) {
	out := make([]event.Event, 0, len(events))
	for i, e := range events {
		d := e.Draft()
		d.SpecVersion = v
		c, err := event.New(d)
		if err != nil {
			return nil, errors.Wrapf(err, "converting event %d to %s", i, v)
		}
		out = append(out, c)
	}
	return out, nil
}

func writeEvents(w io.Writer, events []event.Event, batch, indent bool) error {
	if batch {
		b, err := format.MarshalBatch(events)
		if err != nil {
			return err
		}
		return writeJSON(w, b, indent)
	}
	for _, e := range events {
		b, err := format.Marshal(e)
		if err != nil {
			return errors.Wrapf(err, "encoding event %s", e.ID())
		}
		if err := writeJSON(w, b, indent); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, b []byte, indent bool) error {
	if indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, b, "", "  "); err != nil {
			return err
		}
		b = buf.Bytes()
	}
	_, err := fmt.Fprintf(w, "%s\n", strings.TrimSpace(string(b)))
	return err
}
