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

// lscpuclusters lists the logical CPUs of Apple Silicon Macs together with
// their clusters and compatible strings, as found in the device tree of the
// I/O Registry:
//
//	cpu0@0(E): apple,icestorm
//	cpu1@0(E): apple,icestorm
//	...
//	cpu4@1(P): apple,firestorm
//
// Each line has the form “name@cluster(type): compatible”, with the cluster
// type being either “E” for Efficiency or “P” for Performance.
package main

import (
	"fmt"
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
	perfLevels     func() ([]applecpus.PerfLevel, error)
}

func main() {
	os.Exit(run(os.Args[1:], environment{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		getenv:     os.Getenv,
		open:       cli.OpenRegistry,
		perfLevels: applecpus.PerfLevels,
	}))
}

func run(args []string, env environment) int {
	var showClusters, showTree bool
	var cpusFilter string

	flags := cli.NewFlagSet("lscpuclusters")
	flags.BoolVar(&showClusters, "clusters", false, "show a summary of the CPU clusters after the CPUs")
	flags.StringVar(&cpusFilter, "cpus", "", "only show the CPUs with logical ids in `LIST`, such as 0-3,6")
	flags.BoolVar(&showTree, "tree", false, "show the whole device tree instead of the CPUs")
	if ok, code := cli.ParseFlags(flags, args,
		"list the CPUs of Apple Silicon Macs with their clusters", env.stdout, env.stderr); !ok {
		return code
	}

	var filter applecpus.List
	if flags.Changed("cpus") {
		var err error
		if filter, err = applecpus.NewList([]byte(cpusFilter)); err != nil {
			fmt.Fprintf(env.stderr, "error: invalid --cpus list %q: %v\n", cpusFilter, err)
			return 2
		}
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

	if showTree {
		if err := printTree(reg, env.stdout); err != nil {
			return cli.Fatal(env.stderr, err)
		}
		return 0
	}

	var cpus []applecpus.CPU
	err = applecpus.Scan(reg, func(cpu applecpus.CPU) error {
		cpus = append(cpus, cpu)
		if filter != nil && (cpu.LogicalID < 0 || !filter.Contains(uint(cpu.LogicalID))) {
			return nil
		}
		_, err := fmt.Fprintln(env.stdout, cpu)
		return err
	})
	if err != nil {
		return cli.Fatal(env.stderr, err)
	}
	logger.Debug("scanned CPUs", slog.Int("count", len(cpus)))

	if showClusters {
		printClusters(cpus, env, logger)
	}
	return 0
}

// printTree prints the names of all nodes in the device tree plane, indented
// according to their depth.
func printTree(reg applecpus.Registry, w io.Writer) error {
	return applecpus.WalkRegistry(reg, applecpus.DeviceTreePlane,
		func(node *applecpus.Node) error {
			_, err := fmt.Fprintf(w, "%s%s\n", node.Indent(true), node.Name)
			return err
		}, nil)
}

// printClusters prints a summary line per cluster and warns about any
// disagreement with the kernel's idea of the performance levels.
func printClusters(cpus []applecpus.CPU, env environment, logger *slog.Logger) {
	clusters := applecpus.Clusters(cpus)
	for _, cluster := range clusters {
		fmt.Fprintln(env.stdout, cluster)
	}
	levels, err := env.perfLevels()
	if err != nil {
		logger.Debug("skipping performance level cross check", slog.String("err", err.Error()))
		return
	}
	for _, mismatch := range applecpus.CrossCheck(clusters, levels) {
		logger.Warn("CPU count mismatch",
			slog.String("type", mismatch.Type.String()),
			slog.Int("registry", mismatch.Registry),
			slog.Int("kernel", mismatch.Kernel))
	}
}
