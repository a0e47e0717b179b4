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

package fakeioreg

import (
	"strconv"

	"github.com/thediveo/applecpus"
)

// CPU returns a CPU node with the properties as found on Apple Silicon Macs:
// the cluster type and name are zero-terminated, and the compatible
// property is a list of multiple zero-terminated strings.
func CPU(name string, logicalID, clusterID int, clusterType applecpus.ClusterType, compatible string) *Node {
	return &Node{
		Name: name,
		Properties: map[string]applecpus.Value{
			applecpus.NameProperty:             applecpus.Data(name + "\x00"),
			applecpus.LogicalCPUIDProperty:     applecpus.Number{Int: int64(logicalID), Exact: true},
			applecpus.LogicalClusterIDProperty: applecpus.Number{Int: int64(clusterID), Exact: true},
			applecpus.ClusterTypeProperty:      applecpus.Data{byte(clusterType), 0},
			applecpus.CompatibleProperty:       applecpus.Data(compatible + "\x00ARM,v8\x00"),
			"device_type":                      applecpus.Data("cpu\x00"),
			"state":                            applecpus.Data("running\x00"),
		},
	}
}

// DeviceTree returns a registry root with a device tree containing the
// specified CPU nodes below “/cpus”, surrounded by some other nodes.
func DeviceTree(cpus ...*Node) *Node {
	return &Node{
		Name: "Root",
		Children: []*Node{
			{
				Name: "device-tree",
				Children: []*Node{
					{Name: "chosen", Children: []*Node{{Name: "memory-map"}, {Name: "iBoot"}}},
					{Name: "cpus", Children: cpus},
					{Name: "arm-io", Children: []*Node{{Name: "uart0"}, {Name: "pmgr"}}},
					{Name: "memory"},
				},
			},
		},
	}
}

// M1 returns a registry root with the device tree of an M1 Mac, having four
// Efficiency cores followed by four Performance cores.
func M1() *Node {
	var cpus []*Node
	for idx := range 8 {
		if idx < 4 {
			cpus = append(cpus, CPU(cpuName(idx), idx, 0, applecpus.Efficiency, "apple,icestorm"))
			continue
		}
		cpus = append(cpus, CPU(cpuName(idx), idx, 1, applecpus.Performance, "apple,firestorm"))
	}
	return DeviceTree(cpus...)
}

func cpuName(idx int) string {
	return "cpu" + strconv.Itoa(idx)
}
