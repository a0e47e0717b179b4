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

package main

import (
	"errors"
	"strings"

	"github.com/thediveo/applecpus"
	"github.com/thediveo/applecpus/internal/cli"
	"github.com/thediveo/applecpus/internal/fakeioreg"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/gomega"
)

var _ = Describe("lscpuclusters", func() {

	var (
		stdout, stderr strings.Builder
		reg            *fakeioreg.Registry
		levels         []applecpus.PerfLevel
		env            environment
	)

	BeforeEach(func() {
		stdout.Reset()
		stderr.Reset()
		reg = fakeioreg.New(fakeioreg.M1())
		levels = []applecpus.PerfLevel{
			{Name: "Performance", LogicalCPUs: 4, PhysicalCPUs: 4},
			{Name: "Efficiency", LogicalCPUs: 4, PhysicalCPUs: 4},
		}
		env = environment{
			stdout: &stdout,
			stderr: &stderr,
			getenv: func(string) string { return "" },
			open:   func() (cli.Registry, error) { return reg, nil },
			perfLevels: func() ([]applecpus.PerfLevel, error) {
				return levels, nil
			},
		}
	})

	lines := func(s string) []string {
		return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	}

	It("lists the CPUs", func() {
		Expect(run(nil, env)).To(BeZero())
		Expect(stdout.String()).To(Equal(`cpu0@0(E): apple,icestorm
cpu1@0(E): apple,icestorm
cpu2@0(E): apple,icestorm
cpu3@0(E): apple,icestorm
cpu4@1(P): apple,firestorm
cpu5@1(P): apple,firestorm
cpu6@1(P): apple,firestorm
cpu7@1(P): apple,firestorm
`))
		Expect(stderr.String()).To(BeEmpty())
		Expect(reg.Leaks()).To(BeEmpty())
		Expect(reg.Closed()).To(Equal(1))
	})

	It("filters CPUs", func() {
		Expect(run([]string{"--cpus", "3-4"}, env)).To(BeZero())
		Expect(lines(stdout.String())).To(Equal([]string{
			"cpu3@0(E): apple,icestorm",
			"cpu4@1(P): apple,firestorm",
		}))
	})

	It("rejects invalid filters", func() {
		Expect(run([]string{"--cpus", "4-3"}, env)).To(Equal(2))
		Expect(stdout.String()).To(BeEmpty())
		Expect(stderr.String()).To(ContainSubstring("invalid --cpus list"))
		Expect(reg.Acquired()).To(BeZero())
	})

	It("rejects unknown flags and arguments", func() {
		Expect(run([]string{"--foo"}, env)).To(Equal(2))
		Expect(run([]string{"foo"}, env)).To(Equal(2))
		Expect(stdout.String()).To(BeEmpty())
	})

	It("shows help and version", func() {
		Expect(run([]string{"--help"}, env)).To(BeZero())
		Expect(stdout.String()).To(ContainSubstring("--clusters"))
		stdout.Reset()
		Expect(run([]string{"--version"}, env)).To(BeZero())
		Expect(stdout.String()).To(HavePrefix("lscpuclusters "))
		Expect(reg.Acquired()).To(BeZero())
	})

	It("summarizes clusters", func() {
		Expect(run([]string{"--clusters"}, env)).To(BeZero())
		out := lines(stdout.String())
		Expect(out).To(HaveLen(10))
		Expect(out[8:]).To(Equal([]string{
			"cluster 0 (Efficiency, apple,icestorm): 0-3",
			"cluster 1 (Performance, apple,firestorm): 4-7",
		}))
		Expect(stderr.String()).To(BeEmpty())
	})

	It("summarizes all clusters even when filtering", func() {
		Expect(run([]string{"--clusters", "--cpus=0"}, env)).To(BeZero())
		Expect(lines(stdout.String())).To(Equal([]string{
			"cpu0@0(E): apple,icestorm",
			"cluster 0 (Efficiency, apple,icestorm): 0-3",
			"cluster 1 (Performance, apple,firestorm): 4-7",
		}))
	})

	It("warns about mismatching performance levels", func() {
		levels[0].LogicalCPUs = 6
		Expect(run([]string{"--clusters"}, env)).To(BeZero())
		Expect(stderr.String()).To(ContainSubstring("CPU count mismatch"))
		Expect(lines(stderr.String())).To(HaveLen(1))
	})

	It("skips the cross check when there are no performance levels", func() {
		env.perfLevels = func() ([]applecpus.PerfLevel, error) { return nil, applecpus.ErrUnsupported }
		Expect(run([]string{"--clusters"}, env)).To(BeZero())
		Expect(stderr.String()).To(BeEmpty())

		env.getenv = func(name string) string {
			if name == cli.DebugEnvVar {
				return "1"
			}
			return ""
		}
		Expect(run([]string{"--clusters"}, env)).To(BeZero())
		Expect(stderr.String()).To(ContainSubstring("skipping performance level cross check"))
	})

	It("dumps the device tree", func() {
		Expect(run([]string{"--tree"}, env)).To(BeZero())
		out := lines(stdout.String())
		Expect(out[0]).To(Equal("+-o Root"))
		Expect(out).To(ContainElement("    | +-o cpu7"))
		Expect(out[len(out)-1]).To(Equal("    +-o memory"))
		Expect(reg.Leaks()).To(BeEmpty())
	})

	It("fails without a root, with a single diagnostic", func() {
		reg = fakeioreg.New(nil)
		Expect(run(nil, env)).To(Equal(1))
		Expect(stdout.String()).To(BeEmpty())
		Expect(lines(stderr.String())).To(ConsistOf(
			HavePrefix("error: can't obtain I/O Kit's root service")))
		Expect(reg.Closed()).To(Equal(1))
	})

	It("fails when the registry cannot be opened", func() {
		env.open = func() (cli.Registry, error) { return nil, errors.New("no IOKit") }
		Expect(run(nil, env)).To(Equal(1))
		Expect(stderr.String()).To(Equal("error: no IOKit\n"))
	})

	It("fails on missing property dictionaries, after the CPUs so far", func() {
		root := fakeioreg.M1()
		root.Children[0].Children[1].Children[2].FailProperties = true
		reg = fakeioreg.New(root)
		Expect(run(nil, env)).To(Equal(1))
		Expect(lines(stdout.String())).To(HaveLen(2))
		Expect(stderr.String()).To(HavePrefix("error: can't obtain properties of cpu2"))
		Expect(reg.Leaks()).To(BeEmpty())
	})

})
