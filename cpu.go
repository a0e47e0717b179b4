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

import "fmt"

// ClusterType is the single character code of a CPU cluster's
// microarchitecture tier, as found in the “cluster-type” property.
type ClusterType byte

// Known cluster types; see also [Tuning Your Code's Performance for Apple
// Silicon].
//
// [Tuning Your Code's Performance for Apple Silicon]: https://developer.apple.com/news/?id=vk3m204o
const (
	Efficiency         ClusterType = 'E'
	Performance        ClusterType = 'P'
	UnknownClusterType ClusterType = '?'
)

// String returns the descriptive name of the cluster type.
func (t ClusterType) String() string {
	switch t {
	case Efficiency:
		return "Efficiency"
	case Performance:
		return "Performance"
	default:
		return "unknown"
	}
}

// Names of the CPU node properties.
const (
	LogicalClusterIDProperty = "logical-cluster-id"
	LogicalCPUIDProperty     = "logical-cpu-id"
	ClusterTypeProperty      = "cluster-type"
	CompatibleProperty       = "compatible"
	NameProperty             = "name"
)

// CPU describes a single logical CPU as found in the device tree.
// ClusterID and LogicalID are -1 if unknown.
type CPU struct {
	Name        string
	ClusterID   int
	ClusterType ClusterType
	LogicalID   int
	Compatible  string
}

// NewCPU returns a CPU descriptor with the specified name and all other
// fields set to their “unknown” sentinels.
func NewCPU(name string) CPU {
	return CPU{
		Name:        name,
		ClusterID:   -1,
		ClusterType: UnknownClusterType,
		LogicalID:   -1,
	}
}

// String returns the CPU description in the form
// “name@cluster(type): compatible”, such as “cpu0@0(E): apple,icestorm”.
func (c CPU) String() string {
	return fmt.Sprintf("%s@%d(%c): %s", c.Name, c.ClusterID, byte(c.ClusterType), c.Compatible)
}

// set updates the field corresponding with the named property, silently
// ignoring unknown properties as well as values that fail to decode.
func (c *CPU) set(key string, value Value) {
	switch key {
	case CompatibleProperty:
		if s, err := DecodeFirstString(value); err == nil {
			c.Compatible = s
		}
	case LogicalClusterIDProperty:
		if id, ok := decodeID(value); ok {
			c.ClusterID = id
		}
	case LogicalCPUIDProperty:
		if id, ok := decodeID(value); ok {
			c.LogicalID = id
		}
	case ClusterTypeProperty:
		// a malformed cluster type still decodes into the unknown marker.
		c.ClusterType, _ = DecodeClusterType(value)
	}
}

// decodeID returns the id of an exact number value, unless it doesn't fit an
// int.
func decodeID(value Value) (int, bool) {
	n, err := DecodeInt(value)
	if err != nil || int64(int(n)) != n {
		return 0, false
	}
	return int(n), true
}
