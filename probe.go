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
	"fmt"
	"io"
	"strings"
)

// Finding is the outcome of looking up a single property of a CPU node.
type Finding struct {
	Property string
	Found    bool
	Value    Value
	// Message describes the decoded value, or why it could not be decoded.
	// It is empty if the property is not of the expected type.
	Message string
}

// Report lists the findings for a single CPU node, as returned by [Probe].
type Report struct {
	Name     string
	Findings []Finding
}

// Missing returns the names of the properties not found.
func (r Report) Missing() []string {
	var missing []string
	for _, f := range r.Findings {
		if !f.Found {
			missing = append(missing, f.Property)
		}
	}
	return missing
}

// WriteTo writes the verbose textual report to w, one line per fact. Missing
// properties are left out; see [Report.Missing].
func (r Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "looking at %s\n", r.Name)
	for _, f := range r.Findings {
		if !f.Found {
			continue
		}
		fmt.Fprintf(&b, "%s type is: %s\n", f.Property, f.Value.TypeName())
		if f.Message != "" {
			b.WriteString(f.Message)
			b.WriteByte('\n')
		}
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// probedProperties lists the CPU node properties looked up by Probe, in
// order, together with how to describe their values.
var probedProperties = []struct {
	key      string
	describe func(key string, value Value) string
}{
	{LogicalCPUIDProperty, describeNumber},
	{LogicalClusterIDProperty, describeNumber},
	{ClusterTypeProperty, describeClusterType},
	{CompatibleProperty, describeString},
	{NameProperty, describeString},
}

// Probe iterates over the direct children of the “/cpus” node in the
// device tree plane and calls fn with a [Report] for each child, in the
// registry's iteration order.
//
// Failing to find “/cpus”, to iterate its children or to obtain a child's
// name aborts the probe with an error. Missing or malformed properties
// never abort, but are noted in the reports instead.
func Probe(reg Registry, fn func(Report) error) error {
	cpus, err := reg.EntryFromPath(DeviceTreePlane, CPUsPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoCPUs, err)
	}
	defer cpus.Release()

	children, err := cpus.Children(DeviceTreePlane)
	if err != nil {
		return fmt.Errorf("%w of %s: %w", ErrNoChildren, CPUsPath, err)
	}
	defer children.Release()

	for {
		child, ok := children.Next()
		if !ok {
			return nil
		}
		err := probeCPU(child, fn)
		child.Release()
		if err != nil {
			return err
		}
	}
}

func probeCPU(entry Entry, fn func(Report) error) error {
	name, err := entry.Name(DeviceTreePlane)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoName, err)
	}
	report := Report{
		Name:     name,
		Findings: make([]Finding, 0, len(probedProperties)),
	}
	for _, prop := range probedProperties {
		finding := Finding{Property: prop.key}
		finding.Value, finding.Found = entry.Property(DeviceTreePlane, prop.key)
		if finding.Found {
			finding.Message = prop.describe(prop.key, finding.Value)
		}
		report.Findings = append(report.Findings, finding)
	}
	return fn(report)
}

func describeNumber(key string, value Value) string {
	if _, ok := value.(Number); !ok {
		return ""
	}
	n, err := DecodeInt(value)
	if err != nil {
		return "failed to get " + key
	}
	return fmt.Sprintf("got %s %d", key, n)
}

func describeClusterType(key string, value Value) string {
	data, ok := value.(Data)
	if !ok {
		return ""
	}
	if t, err := DecodeClusterType(data); err == nil {
		return fmt.Sprintf("got %s %c", key, byte(t))
	}
	switch {
	case len(data) == 0:
		return fmt.Sprintf("got only %d bytes in %s data", len(data), key)
	case data[0] == 0:
		return key + " is empty"
	case data[1] != 0:
		return fmt.Sprintf("got more than one character in %s data %c%c...", key, data[0], data[1])
	default:
		return fmt.Sprintf("got %d bytes in %s data", len(data), key)
	}
}

func describeString(key string, value Value) string {
	if _, ok := value.(Data); !ok {
		return ""
	}
	s, _ := DecodeFirstString(value)
	if s == "" {
		return key + " is empty"
	}
	return fmt.Sprintf("got %s %s", key, s)
}
