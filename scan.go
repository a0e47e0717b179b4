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

// CPUsNodeName is the name of the device tree node containing the CPU nodes.
const CPUsNodeName = "cpus"

// ScanState tells where a [Scan] currently is in relation to the “cpus”
// subtree. The state only ever advances.
type ScanState int

const (
	NotStarted ScanState = iota // still looking for the “cpus” node
	InCPUs                      // inside the “cpus” subtree
	Done                        // left the “cpus” subtree again
)

func (s ScanState) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case InCPUs:
		return "in cpus"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("ScanState(%d)", int(s))
	}
}

// Scan walks the device tree plane of the registry from its root and calls
// fn for each CPU node found, in the registry's iteration order. Every node
// below the first node named “cpus” is considered to be a CPU; the walk
// stops as soon as it leaves the “cpus” node again.
//
// Properties of a CPU node that are missing or fail to decode leave the
// corresponding [CPU] field at its “unknown” sentinel. Failing to obtain
// the root entry, a child iterator, a node name or a CPU node's property
// dictionary aborts the scan with an error. An error returned from fn
// aborts the scan too and gets returned as is.
func Scan(reg Registry, fn func(CPU) error) error {
	s := &scanner{fn: fn}
	return WalkRegistry(reg, DeviceTreePlane, s.enter, s.leave)
}

type scanner struct {
	state     ScanState
	cpusDepth uint
	fn        func(CPU) error
}

func (s *scanner) enter(node *Node) error {
	switch s.state {
	case NotStarted:
		if node.Name == CPUsNodeName {
			s.state = InCPUs
			s.cpusDepth = node.Depth
		}
		return nil
	case InCPUs:
		cpu, err := readCPU(node.Entry, node.Name)
		if err != nil {
			return err
		}
		return s.fn(cpu)
	default:
		return SkipAll
	}
}

func (s *scanner) leave(node *Node) error {
	if s.state == InCPUs && node.Depth == s.cpusDepth {
		s.state = Done
		return SkipAll
	}
	return nil
}

// readCPU returns the CPU descriptor decoded from the property dictionary of
// the specified entry.
func readCPU(entry Entry, name string) (CPU, error) {
	props, err := entry.Properties()
	if err != nil {
		return CPU{}, fmt.Errorf("%w of %s: %w", ErrNoProperties, name, err)
	}
	defer props.Release()
	cpu := NewCPU(name)
	props.Each(cpu.set)
	return cpu, nil
}
