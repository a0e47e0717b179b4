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

// probecpus dumps the properties of the CPU nodes found directly below
// “/cpus” in the device tree of the I/O Registry, such as:
//
//	looking at cpu0
//	logical-cpu-id type is: CFNumber
//	got logical-cpu-id 0
//	...
//	compatible type is: CFData
//	got compatible apple,icestorm
//
// Missing properties are reported on stderr.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/thediveo/applecpus"
	"github.com/thediveo/applecpus/internal/cli"
)

// environment is what the command needs from the outside world.
type environment struct {
	stdout, stderr io.Writer
	getenv         func(string) string
	open           func() (cli.Registry, error)
}

func main() {
	os.Exit(run(os.Args[1:], environment{
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
		open:   cli.OpenRegistry,
	}))
}

func run(args []string, env environment) int {
	flags := cli.NewFlagSet("probecpus")
	if ok, code := cli.ParseFlags(flags, args,
		"dump the device tree properties of the CPUs of Apple Silicon Macs", env.stdout, env.stderr); !ok {
		return code
	}

	logger := cli.NewLogger(env.stderr, env.getenv)

	reg, err := env.open()
	if err != nil {
		return cli.Fatal(env.stderr, err)
	}
	logger.Debug("opened I/O Registry")
	defer func() {
		if err := reg.Close(); err != nil {
			logger.Debug("closing I/O Registry failed", slog.String("err", err.Error()))
		}
	}()

	count := 0
	err = applecpus.Probe(reg, func(report applecpus.Report) error {
		count++
		for _, property := range report.Missing() {
			logger.Warn("failed to find "+property, slog.String("cpu", report.Name))
		}
		_, err := report.WriteTo(env.stdout)
		return err
	})
	if err != nil {
		return cli.Fatal(env.stderr, err)
	}
	logger.Debug("probed CPUs", slog.Int("count", count))
	return 0
}
