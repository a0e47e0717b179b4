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

package cli

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/ginkgo/v2/dsl/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("command line", func() {

	DescribeTable("parsing flags",
		func(args []string, carryOn bool, code int, stdout, stderr string) {
			flags := NewFlagSet("foo")
			flags.Bool("bar", false, "bar it")
			var out, errout strings.Builder
			ok, exitCode := ParseFlags(flags, args, "does foo", &out, &errout)
			Expect(ok).To(Equal(carryOn))
			Expect(exitCode).To(Equal(code))
			Expect(out.String()).To(ContainSubstring(stdout))
			Expect(errout.String()).To(ContainSubstring(stderr))
		},
		Entry("no args", []string{}, true, 0, "", ""),
		Entry("known flag", []string{"--bar"}, true, 0, "", ""),
		Entry("help", []string{"-h"}, false, 0, "foo - does foo", ""),
		Entry("version", []string{"--version"}, false, 0, "foo ", ""),
		Entry("unknown flag", []string{"--baz"}, false, 2, "", "error: unknown flag: --baz"),
		Entry("extra args", []string{"baz"}, false, 2, "", "error: unexpected arguments"),
	)

	It("lists the flags in the help", func() {
		flags := NewFlagSet("foo")
		var out strings.Builder
		_, _ = ParseFlags(flags, []string{"--help"}, "does foo", &out, &out)
		Expect(out.String()).To(And(
			ContainSubstring("Usage:\n  foo [flags]"),
			ContainSubstring("--version"),
			ContainSubstring("-h, --help")))
	})

	It("reports fatal errors as a single line", func() {
		var errout strings.Builder
		Expect(Fatal(&errout, errors.New("D'oh!"))).To(Equal(1))
		Expect(errout.String()).To(Equal("error: D'oh!\n"))
	})

	It("returns a version", func() {
		Expect(Version()).NotTo(BeEmpty())
	})

	DescribeTable("logging at the configured level",
		func(env string, debug bool) {
			var out strings.Builder
			log := NewLogger(&out, func(name string) string {
				if name == DebugEnvVar {
					return env
				}
				return ""
			})
			log.Debug("hidden in plain sight")
			log.Info("hello")
			Expect(out.String()).To(ContainSubstring("level=INFO msg=hello"))
			if debug {
				Expect(out.String()).To(ContainSubstring("level=DEBUG"))
				return
			}
			Expect(out.String()).NotTo(ContainSubstring("level=DEBUG"))
		},
		Entry("default", "", false),
		Entry("debug", "1", true),
	)

})
