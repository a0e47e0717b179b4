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
	"cmp"
	"fmt"
	"slices"
)

// Cluster is a group of logical CPUs sharing the same microarchitecture tier.
type Cluster struct {
	ID         int
	Type       ClusterType
	Compatible string
	CPUs       List
}

// String returns a one-line cluster summary, such as
// “cluster 0 (Efficiency, apple,icestorm): 0-3”.
func (c Cluster) String() string {
	return fmt.Sprintf("cluster %d (%s, %s): %s", c.ID, c.Type, c.Compatible, c.CPUs)
}

// Clusters groups the specified CPUs into their clusters, ordered by cluster
// id. The type and compatible string of a cluster are taken from its first
// CPU. CPUs without a known logical CPU id are not added to their cluster's
// list of CPUs.
func Clusters(cpus []CPU) []Cluster {
	var clusters []Cluster
	for _, cpu := range cpus {
		idx := slices.IndexFunc(clusters, func(c Cluster) bool { return c.ID == cpu.ClusterID })
		if idx < 0 {
			clusters = append(clusters, Cluster{
				ID:         cpu.ClusterID,
				Type:       cpu.ClusterType,
				Compatible: cpu.Compatible,
				CPUs:       List{},
			})
			idx = len(clusters) - 1
		}
		if cpu.LogicalID >= 0 {
			clusters[idx].CPUs = clusters[idx].CPUs.Add(uint(cpu.LogicalID))
		}
	}
	slices.SortStableFunc(clusters, func(a, b Cluster) int { return cmp.Compare(a.ID, b.ID) })
	return clusters
}

// PerfLevel describes a CPU performance level as reported by the kernel,
// independent of the I/O Registry.
type PerfLevel struct {
	Name         string // such as “Performance”
	LogicalCPUs  int
	PhysicalCPUs int
}

// Mismatch reports a disagreement between the number of logical CPUs of a
// particular cluster type found in the I/O Registry and the number reported
// for the corresponding performance level.
type Mismatch struct {
	Type     ClusterType
	Registry int
	Kernel   int
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s CPUs: %d in I/O Registry, %d reported by kernel",
		m.Type, m.Registry, m.Kernel)
}

// CrossCheck compares the logical CPUs per cluster type with the performance
// levels, returning the mismatches found, if any. Performance levels with
// names other than “Performance” or “Efficiency” are ignored.
func CrossCheck(clusters []Cluster, levels []PerfLevel) []Mismatch {
	var mismatches []Mismatch
	for _, level := range levels {
		var t ClusterType
		switch level.Name {
		case Performance.String():
			t = Performance
		case Efficiency.String():
			t = Efficiency
		default:
			continue
		}
		count := 0
		for _, c := range clusters {
			if c.Type == t {
				count += c.CPUs.Len()
			}
		}
		if count != level.LogicalCPUs {
			mismatches = append(mismatches, Mismatch{Type: t, Registry: count, Kernel: level.LogicalCPUs})
		}
	}
	return mismatches
}
