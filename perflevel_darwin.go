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

//go:build darwin

package applecpus

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PerfLevels returns the CPU performance levels as reported by the kernel
// through the “hw.perflevelN.*” sysctls, with the highest performance level
// first. Intel-based Macs don't have performance levels and thus an error is
// returned.
//
// NB: we do not cache the levels, as the available CPUs can change with the
// power management mode.
func PerfLevels() ([]PerfLevel, error) {
	n, err := unix.SysctlUint32("hw.nperflevels")
	if err != nil {
		return nil, fmt.Errorf("cannot determine number of performance levels: %w", err)
	}
	levels := make([]PerfLevel, 0, n)
	for idx := range n {
		prefix := fmt.Sprintf("hw.perflevel%d.", idx)
		name, err := unix.Sysctl(prefix + "name")
		if err != nil {
			return nil, fmt.Errorf("cannot determine name of performance level %d: %w", idx, err)
		}
		logical, err := unix.SysctlUint32(prefix + "logicalcpu")
		if err != nil {
			return nil, fmt.Errorf("cannot determine logical CPUs of performance level %d: %w", idx, err)
		}
		physical, err := unix.SysctlUint32(prefix + "physicalcpu")
		if err != nil {
			return nil, fmt.Errorf("cannot determine physical CPUs of performance level %d: %w", idx, err)
		}
		levels = append(levels, PerfLevel{
			Name:         name,
			LogicalCPUs:  int(logical),
			PhysicalCPUs: int(physical),
		})
	}
	return levels, nil
}
