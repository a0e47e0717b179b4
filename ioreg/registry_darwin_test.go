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

//go:build darwin && arm64

package ioreg

import (
	"github.com/thediveo/applecpus"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("I/O Registry", func() {

	var reg *Registry

	BeforeEach(func() {
		reg = Successful(Open())
		DeferCleanup(func() {
			Expect(reg.Close()).To(Succeed())
		})
	})

	It("converts Mac Roman", func() {
		Expect(fromMacRoman("cpu0")).To(Equal("cpu0"))
		Expect(fromMacRoman("\x8aa")).To(Equal("äa"))
	})

	It("scans for CPUs", func() {
		var cpus []applecpus.CPU
		Expect(applecpus.Scan(reg, func(cpu applecpus.CPU) error {
			cpus = append(cpus, cpu)
			return nil
		})).To(Succeed())
		Expect(cpus).NotTo(BeEmpty())
		for _, cpu := range cpus {
			Expect(cpu.ClusterID).To(BeNumerically(">=", 0))
			Expect(cpu.LogicalID).To(BeNumerically(">=", 0))
			Expect(cpu.ClusterType).To(Or(Equal(applecpus.Efficiency), Equal(applecpus.Performance)))
			Expect(cpu.Compatible).To(HavePrefix("apple,"))
		}
	})

	It("probes the same CPUs as it scans", func() {
		scanned := 0
		Expect(applecpus.Scan(reg, func(applecpus.CPU) error {
			scanned++
			return nil
		})).To(Succeed())
		var reports []applecpus.Report
		Expect(applecpus.Probe(reg, func(report applecpus.Report) error {
			reports = append(reports, report)
			return nil
		})).To(Succeed())
		Expect(reports).To(HaveLen(scanned))
		Expect(reports[0].Missing()).To(BeEmpty())
	})

	It("agrees with the kernel's performance levels", func() {
		var cpus []applecpus.CPU
		Expect(applecpus.Scan(reg, func(cpu applecpus.CPU) error {
			cpus = append(cpus, cpu)
			return nil
		})).To(Succeed())
		levels := Successful(applecpus.PerfLevels())
		Expect(levels).NotTo(BeEmpty())
		Expect(applecpus.CrossCheck(applecpus.Clusters(cpus), levels)).To(BeEmpty())
	})

})
