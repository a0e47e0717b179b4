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

import "errors"

// DeviceTreePlane is the I/O Registry plane holding the device tree, as
// opposed to the IOService and other planes.
const DeviceTreePlane = "IODeviceTree"

// CPUsPath is the path of the CPU container node inside the device tree
// plane.
const CPUsPath = "/cpus"

// Errors returned when the registry fails to deliver something the scan
// cannot do without. They are wrapped with further context, so use
// [errors.Is] to check for them.
var (
	ErrNoRoot       = errors.New("can't obtain I/O Kit's root service")
	ErrNoCPUs       = errors.New("failed to find " + DeviceTreePlane + ":" + CPUsPath)
	ErrNoChildren   = errors.New("can't obtain children")
	ErrNoName       = errors.New("can't obtain name")
	ErrNoProperties = errors.New("can't obtain properties")
	ErrUnsupported  = errors.New("I/O Registry not supported on this platform")
)

// Registry is a hardware registry service, such as the macOS I/O Registry.
type Registry interface {
	// Root returns the root entry of the registry. The caller must release
	// the returned entry.
	Root() (Entry, error)
	// EntryFromPath looks up the entry at the specified path inside a plane.
	// The caller must release the returned entry.
	EntryFromPath(plane, path string) (Entry, error)
}

// Entry is a node inside the registry. Entries are reference counted by
// the registry and thus must be released exactly once when no longer
// needed.
type Entry interface {
	// Name returns the name of this entry in the specified plane.
	Name(plane string) (string, error)
	// Children returns an iterator over the children of this entry in the
	// specified plane. The caller must release the iterator.
	Children(plane string) (Iterator, error)
	// Properties returns the property dictionary of this entry. The
	// caller must release the returned properties.
	Properties() (Properties, error)
	// Property looks up a single property of this entry by its key,
	// reporting false if there is no such property.
	Property(plane, key string) (Value, bool)
	// Release gives up this entry.
	Release()
}

// Iterator iterates over the child entries of a registry entry.
type Iterator interface {
	// Next returns the next child entry, or false when there are no more
	// children. Each child returned must be released by the caller.
	Next() (Entry, bool)
	// Release gives up this iterator; it does not release any child
	// entries already returned.
	Release()
}

// Properties is the property dictionary of a registry entry.
type Properties interface {
	// Each calls fn for each property, in no particular order.
	Each(fn func(key string, value Value))
	// Release gives up this property dictionary.
	Release()
}
