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
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/thediveo/faf"
)

// List is a list of logical CPU [from...to] ranges, such as the logical CPUs
// of a cluster. CPU numbers are starting from zero. A canonical List has its
// ranges ordered from lowest to highest, without overlaps and without
// adjacent ranges.
type List [][2]uint

// String returns the CPU list in textual format, with the individual ranges
// “x-y” separated by “,” and single CPU ranges collapsed into “x” (instead
// of “x-x”).
func (l List) String() string {
	var b strings.Builder
	for idx, cpurange := range l {
		if idx > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(cpurange[0]), 10))
		if cpurange[0] != cpurange[1] {
			b.WriteByte('-')
			b.WriteString(strconv.FormatUint(uint64(cpurange[1]), 10))
		}
	}
	return b.String()
}

// NewList returns a new canonical CPU List for the given textual list format,
// such as “0-3,8”. The ranges in the text might come in any order and even
// overlap. If the text is malformed then an error is returned instead.
func NewList(b []byte) (List, error) {
	bs := faf.NewBytestring(b)
	l := List{}
	for {
		if bs.EOL() {
			return l, nil
		}
		from, ok := bs.Uint64()
		if !ok {
			return nil, errors.New("expected unsigned integer number")
		}
		if bs.EOL() {
			return l.Add(uint(from)), nil
		}
		switch ch, _ := bs.Next(); ch {
		case '-':
			to, ok := bs.Uint64()
			if !ok {
				return nil, errors.New("expected unsigned integer number")
			}
			if to < from {
				return nil, errors.New("expected ascending range")
			}
			l = l.AddRange(uint(from), uint(to))
			if bs.EOL() {
				return l, nil
			}
			if ch, _ = bs.Next(); ch != ',' {
				return nil, errors.New("expected ','")
			}
		case ',':
			l = l.Add(uint(from))
		default:
			return nil, errors.New("expected '-' or ','")
		}
	}
}

// Add returns a canonical List with cpu added to it; l must be canonical.
func (l List) Add(cpu uint) List {
	return l.AddRange(cpu, cpu)
}

// AddRange returns a canonical List with the CPUs from the specified range
// added to it; l must be canonical. The returned List never shares its
// ranges with l.
func (l List) AddRange(from, to uint) List {
	if from > to {
		panic(fmt.Sprintf("invalid range %d-%d", from, to))
	}
	merged := make(List, 0, len(l)+1)
	idx := 0
	// copy over all ranges completely below the new range, that is, not
	// even touching it.
	for ; idx < len(l) && from > 0 && l[idx][1] < from-1; idx++ {
		merged = append(merged, l[idx])
	}
	// swallow all ranges overlapping or touching the new range.
	for ; idx < len(l) && (l[idx][0] == 0 || l[idx][0]-1 <= to); idx++ {
		from = min(from, l[idx][0])
		to = max(to, l[idx][1])
	}
	merged = append(merged, [2]uint{from, to})
	return append(merged, l[idx:]...)
}

// Contains reports whether cpu is in this List.
func (l List) Contains(cpu uint) bool {
	for _, cpurange := range l {
		if cpu >= cpurange[0] && cpu <= cpurange[1] {
			return true
		}
	}
	return false
}

// Len returns the number of CPUs in this List.
func (l List) Len() int {
	n := 0
	for _, cpurange := range l {
		n += int(cpurange[1]-cpurange[0]) + 1
	}
	return n
}
