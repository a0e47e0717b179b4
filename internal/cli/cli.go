// Copyright 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

// Package cli contains the bits and pieces shared by the applecpus commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/spf13/pflag"

	"github.com/thediveo/applecpus"
	"github.com/thediveo/applecpus/ioreg"
)

// DebugEnvVar is the name of the environment variable that, when set to a
// non-empty value, enables debug logging.
const DebugEnvVar = "APPLECPUS_DEBUG"

// Registry is an [applecpus.Registry] that needs to be closed after use.
type Registry interface {
	applecpus.Registry
	Close() error
}

// OpenRegistry opens this system's I/O Registry.
func OpenRegistry() (Registry, error) {
	reg, err := ioreg.Open()
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// NewLogger returns a text logger writing to w, logging at debug level when
// the environment variable [DebugEnvVar] is set, and at info level
// otherwise.
func NewLogger(w io.Writer, getenv func(string) string) *slog.Logger {
	level := slog.LevelInfo
	if getenv(DebugEnvVar) != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// Version returns the module version this command was built from, or
// “(devel)” if unknown.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "(devel)"
	}
	return info.Main.Version
}

// NewFlagSet returns a new flag set for the named command that reports
// parsing errors instead of exiting, with the usual --help and --version
// flags already defined.
func NewFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.BoolP("help", "h", false, "show help")
	flags.Bool("version", false, "show version")
	return flags
}

// ParseFlags parses the command line arguments and handles --help and
// --version. It returns false if the command should not carry on, together
// with the exit code: 0 after showing help or version, 2 on malformed
// arguments.
func ParseFlags(flags *pflag.FlagSet, args []string, usage string, stdout, stderr io.Writer) (bool, int) {
	flags.SetOutput(stderr)
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flags, usage, stdout)
			return false, 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return false, 2
	}
	if help, _ := flags.GetBool("help"); help {
		printHelp(flags, usage, stdout)
		return false, 0
	}
	if version, _ := flags.GetBool("version"); version {
		fmt.Fprintf(stdout, "%s %s\n", flags.Name(), Version())
		return false, 0
	}
	if flags.NArg() > 0 {
		fmt.Fprintf(stderr, "error: unexpected arguments %q\n", flags.Args())
		return false, 2
	}
	return true, 0
}

func printHelp(flags *pflag.FlagSet, usage string, w io.Writer) {
	fmt.Fprintf(w, "%s - %s\n\nUsage:\n  %s [flags]\n\nFlags:\n%s",
		flags.Name(), usage, flags.Name(), flags.FlagUsages())
}

// Fatal reports a fatal error as a single line and returns the exit code to
// terminate with.
func Fatal(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 1
}
