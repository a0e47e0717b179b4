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

package applecpus

import (
	"math"
	"strconv"

	"github.com/onsi/ginkgo/v2/dsl/table"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/gomega"
)

var _ = Describe("CPU descriptors", func() {

	table.DescribeTable("naming cluster types",
		func(t ClusterType, expected string) {
			Expect(t.String()).To(Equal(expected))
		},
		table.Entry(nil, Efficiency, "Efficiency"),
		table.Entry(nil, Performance, "Performance"),
		table.Entry(nil, UnknownClusterType, "unknown"),
		table.Entry(nil, ClusterType('X'), "unknown"),
	)

	It("starts with unknown sentinels", func() {
		cpu := NewCPU("cpu42")
		Expect(cpu).To(Equal(CPU{
			Name:        "cpu42",
			ClusterID:   -1,
			ClusterType: UnknownClusterType,
			LogicalID:   -1,
		}))
		Expect(cpu.String()).To(Equal("cpu42@-1(?): "))
	})

	It("renders a single line", func() {
		Expect(CPU{
			Name:        "cpu0",
			ClusterID:   0,
			ClusterType: Efficiency,
			LogicalID:   0,
			Compatible:  "apple,icestorm",
		}.String()).To(Equal("cpu0@0(E): apple,icestorm"))
	})

	It("sets fields from properties", func() {
		cpu := NewCPU("cpu4")
		cpu.set(LogicalCPUIDProperty, Number{Int: 4, Exact: true})
		cpu.set(LogicalClusterIDProperty, Number{Int: 1, Exact: true})
		cpu.set(ClusterTypeProperty, Data("P\x00"))
		cpu.set(CompatibleProperty, Data("apple,firestorm\x00ARM,v8\x00"))
		cpu.set("device_type", Data("cpu\x00"))
		Expect(cpu).To(Equal(CPU{
			Name:        "cpu4",
			ClusterID:   1,
			ClusterType: Performance,
			LogicalID:   4,
			Compatible:  "apple,firestorm",
		}))
	})

	It("tolerates undecodable properties", func() {
		cpu := NewCPU("cpu0")
		cpu.set(LogicalCPUIDProperty, Number{Int: 4})
		cpu.set(LogicalClusterIDProperty, Data{1})
		cpu.set(CompatibleProperty, Number{Int: 1, Exact: true})
		Expect(cpu).To(Equal(NewCPU("cpu0")))

		cpu.set(ClusterTypeProperty, Data("E\x00"))
		Expect(cpu.ClusterType).To(Equal(Efficiency))
		cpu.set(ClusterTypeProperty, Data("EP"))
		Expect(cpu.ClusterType).To(Equal(UnknownClusterType))
	})

	It("only accepts ids fitting an int", func() {
		large := int64(math.MaxInt32) + 1
		expected := -1
		if strconv.IntSize == 64 {
			expected = int(large)
		}
		cpu := NewCPU("cpu0")
		cpu.set(LogicalCPUIDProperty, Number{Int: large, Exact: true})
		cpu.set(LogicalClusterIDProperty, Number{Int: large, Exact: true})
		Expect(cpu.LogicalID).To(Equal(expected))
		Expect(cpu.ClusterID).To(Equal(expected))
	})

})
