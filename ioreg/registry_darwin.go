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

package ioreg

import (
	"bytes"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/text/encoding/charmap"

	"github.com/thediveo/applecpus"
)

// Registry gives access to the I/O Registry of this Mac. It must be closed
// after use, but only after all entries, iterators and property dictionaries
// obtained from it have been released.
type Registry struct {
	iokit *ioKit
	cf    *coreFoundation

	dataTypeID       uintptr
	numberTypeID     uintptr
	stringTypeID     uintptr
	dictionaryTypeID uintptr
}

var _ applecpus.Registry = (*Registry)(nil)

// Open loads the IOKit and CoreFoundation frameworks and returns a new
// Registry.
func Open() (*Registry, error) {
	iokit, err := newIOKit()
	if err != nil {
		return nil, err
	}
	cf, err := newCoreFoundation()
	if err != nil {
		_ = iokit.close()
		return nil, err
	}
	return &Registry{
		iokit:            iokit,
		cf:               cf,
		dataTypeID:       cf.dataGetTypeID(),
		numberTypeID:     cf.numberGetTypeID(),
		stringTypeID:     cf.stringGetTypeID(),
		dictionaryTypeID: cf.dictionaryGetTypeID(),
	}, nil
}

// Close unloads the frameworks.
func (r *Registry) Close() error {
	return errors.Join(r.cf.close(), r.iokit.close())
}

// Root returns the root entry of the I/O Registry.
func (r *Registry) Root() (applecpus.Entry, error) {
	obj := r.iokit.registryGetRootEntry(mainPortDefault)
	if obj == 0 {
		return nil, errors.New("IORegistryGetRootEntry returned no entry")
	}
	return &entry{reg: r, obj: obj}, nil
}

// EntryFromPath returns the entry at the specified path in the specified
// plane, such as “/cpus” in the “IODeviceTree” plane.
func (r *Registry) EntryFromPath(plane, path string) (applecpus.Entry, error) {
	obj := r.iokit.registryEntryFromPath(mainPortDefault, plane+":"+path)
	if obj == 0 {
		return nil, fmt.Errorf("no entry at %s:%s", plane, path)
	}
	return &entry{reg: r, obj: obj}, nil
}

type entry struct {
	reg *Registry
	obj uint32
}

func (e *entry) Name(plane string) (string, error) {
	var name [ioNameSize]byte
	if kr := e.reg.iokit.registryEntryGetNameInPlane(e.obj, plane, &name[0]); kr != kernSuccess {
		return "", kernError("IORegistryEntryGetNameInPlane", kr)
	}
	if idx := bytes.IndexByte(name[:], 0); idx >= 0 {
		return string(name[:idx]), nil
	}
	return string(name[:]), nil
}

func (e *entry) Children(plane string) (applecpus.Iterator, error) {
	var it uint32
	if kr := e.reg.iokit.registryEntryGetChildIterator(e.obj, plane, &it); kr != kernSuccess {
		return nil, kernError("IORegistryEntryGetChildIterator", kr)
	}
	return &iterator{reg: e.reg, obj: it}, nil
}

func (e *entry) Properties() (applecpus.Properties, error) {
	var dict uintptr
	if kr := e.reg.iokit.registryEntryCreateCFProperties(e.obj, &dict, allocDefault, nilOptions); kr != kernSuccess {
		return nil, kernError("IORegistryEntryCreateCFProperties", kr)
	}
	if dict == 0 {
		return nil, errors.New("IORegistryEntryCreateCFProperties returned no properties")
	}
	if e.reg.cf.getTypeID(dict) != e.reg.dictionaryTypeID {
		e.reg.cf.release(dict)
		return nil, errors.New("IORegistryEntryCreateCFProperties returned a non-dictionary")
	}
	return &properties{reg: e.reg, dict: dict}, nil
}

func (e *entry) Property(plane, key string) (applecpus.Value, bool) {
	cfkey := e.reg.cf.stringCreateWithCString(allocDefault, key, cfStringEncodingUTF8)
	if cfkey == 0 {
		return nil, false
	}
	defer e.reg.cf.release(cfkey)
	ref := e.reg.iokit.registryEntrySearchCFProperty(e.obj, plane, cfkey, allocDefault, nilOptions)
	if ref == 0 {
		return nil, false
	}
	defer e.reg.cf.release(ref)
	return e.reg.value(ref), true
}

func (e *entry) Release() {
	e.reg.iokit.objectRelease(e.obj)
}

type iterator struct {
	reg *Registry
	obj uint32
}

func (i *iterator) Next() (applecpus.Entry, bool) {
	obj := i.reg.iokit.iteratorNext(i.obj)
	if obj == 0 {
		return nil, false
	}
	return &entry{reg: i.reg, obj: obj}, true
}

func (i *iterator) Release() {
	i.reg.iokit.objectRelease(i.obj)
}

type properties struct {
	reg  *Registry
	dict uintptr
}

// Each calls fn for each property with a string key; the values passed to fn
// are copies and thus stay valid after releasing the property dictionary.
func (p *properties) Each(fn func(key string, value applecpus.Value)) {
	count := p.reg.cf.dictionaryGetCount(p.dict)
	if count <= 0 {
		return
	}
	keys := make([]uintptr, count)
	values := make([]uintptr, count)
	p.reg.cf.dictionaryGetKeysAndValues(p.dict, &keys[0], &values[0])
	for idx := range keys {
		if p.reg.cf.getTypeID(keys[idx]) != p.reg.stringTypeID {
			continue
		}
		fn(p.reg.cfString(keys[idx]), p.reg.value(values[idx]))
	}
}

func (p *properties) Release() {
	p.reg.cf.release(p.dict)
}

// value returns a copy of the CF property value referenced by ref, which is
// not released.
func (r *Registry) value(ref uintptr) applecpus.Value {
	switch typeID := r.cf.getTypeID(ref); typeID {
	case r.dataTypeID:
		length := r.cf.dataGetLength(ref)
		if length <= 0 {
			return applecpus.Data{}
		}
		ptr := r.cf.dataGetBytePtr(ref)
		return applecpus.Data(bytes.Clone(unsafe.Slice((*byte)(unsafe.Pointer(ptr)), length)))
	case r.numberTypeID:
		var n int64
		exact := r.cf.numberGetValue(ref, cfNumberSInt64Type, &n)
		return applecpus.Number{Int: n, Exact: exact}
	case r.stringTypeID:
		return applecpus.String(r.cfString(ref))
	default:
		desc := r.cf.copyTypeIDDescription(typeID)
		if desc == 0 {
			return applecpus.Other{}
		}
		defer r.cf.release(desc)
		return applecpus.Other{Type: r.cfString(desc)}
	}
}

// cfString returns the contents of a CFString. It first tries the fast path of
// directly accessing the string's internal buffer, falling back to copying
// the string into a buffer of our own. Either way, the string is in the
// system encoding and thus gets converted into UTF-8.
func (r *Registry) cfString(str uintptr) string {
	if cstr := r.cf.stringGetCStringPtr(str, cfStringEncodingMacRoman); cstr != 0 {
		return fromMacRoman(goString(cstr))
	}
	size := r.cf.stringGetMaximumSizeForEncoding(
		r.cf.stringGetLength(str), cfStringEncodingMacRoman) + 1
	if size <= 1 {
		return ""
	}
	buf := make([]byte, size)
	if !r.cf.stringGetCString(str, &buf[0], size, cfStringEncodingMacRoman) {
		return ""
	}
	if idx := bytes.IndexByte(buf, 0); idx >= 0 {
		buf = buf[:idx]
	}
	return fromMacRoman(string(buf))
}

// goString returns a copy of the zero-terminated C string at cstr.
func goString(cstr uintptr) string {
	ptr := unsafe.Pointer(cstr)
	n := 0
	for *(*byte)(unsafe.Add(ptr, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(ptr), n))
}

// fromMacRoman converts a Mac Roman encoded string into UTF-8; pure ASCII
// strings are returned as is.
func fromMacRoman(s string) string {
	for idx := 0; idx < len(s); idx++ {
		if s[idx] >= 0x80 {
			utf8, err := charmap.Macintosh.NewDecoder().String(s)
			if err != nil {
				return s
			}
			return utf8
		}
	}
	return s
}

func kernError(fn string, kr int32) error {
	return fmt.Errorf("%s failed with kern_return_t %#x", fn, uint32(kr))
}
