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

// cejson validates, converts and inspects CloudEvents in the structured JSON
// format.
//
// Usage:
//
//	cejson <command> [flags] [files...]
//
// Events are read from the named files, or from stdin when none is given. A
// file may hold a single event, a batch array or the YAML rendition of either.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"
	"knative.dev/pkg/signals"

	"knative.dev/ceformat/pkg/logconfig"
	"knative.dev/ceformat/pkg/logging"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// app carries the configuration and streams of one invocation.
type app struct {
	cfg    Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"validate": {usage: "report whether each event is valid", run: validateCmd},
	"format":   {usage: "re-encode events as structured JSON", run: formatCmd},
	"binary":   {usage: "print the binary-mode headers and body of each event", run: binaryCmd},
	"display":  {usage: "print events in a human-readable form", run: displayCmd},
	"filter":   {usage: "print the events matching every given filter", run: filterCmd},
	"new":      {usage: "build an event from flags", run: newCmd},
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cejson:", err)
		os.Exit(exitUsage)
	}
	logger, _ := logconfig.NewLogger("", cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx := logging.WithLogger(signals.NewContext(), logger)
	code := run(ctx, &app{cfg: cfg, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}, os.Args[1:])
	_ = logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, a *app, args []string) int {
	if len(args) == 0 {
		usage(a.stderr)
		return exitUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		if args[0] != "help" && args[0] != "-h" && args[0] != "--help" {
			fmt.Fprintf(a.stderr, "cejson: unknown command %q\n", args[0])
		}
		usage(a.stderr)
		return exitUsage
	}

	ctx = logging.Named(ctx, args[0])
	err := cmd.run(ctx, a, args[1:])
	switch {
	case err == nil:
		return exitOK
	case err == flag.ErrHelp:
		return exitUsage
	case isUsageError(err):
		fmt.Fprintln(a.stderr, "cejson:", err)
		return exitUsage
	default:
		logging.FromContext(ctx).Debug("Command failed", zap.Error(err))
		fmt.Fprintln(a.stderr, "cejson:", err)
		return exitFailure
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cejson <command> [flags] [files...]")
	fmt.Fprintln(w, "\nCommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-9s %s\n", name, commands[name].usage)
	}
	fmt.Fprintln(w, "\nRun 'cejson <command> -h' for the flags of a command.")
}

type usageError struct{ err error }

func (u usageError) Error() string { return u.err.Error() }

func isUsageError(err error) bool {
	_, ok := err.(usageError)
	return ok
}
