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
	"fmt"

	"github.com/ebitengine/purego"
)

const (
	ioKitPath          = "/System/Library/Frameworks/IOKit.framework/IOKit"
	coreFoundationPath = "/System/Library/Frameworks/CoreFoundation.framework/CoreFoundation"
)

const (
	kernSuccess     = 0
	mainPortDefault = 0 // kIOMainPortDefault
	nilOptions      = 0 // kNilOptions
	allocDefault    = 0 // kCFAllocatorDefault

	cfStringEncodingMacRoman = 0          // kCFStringEncodingMacRoman
	cfStringEncodingUTF8     = 0x08000100 // kCFStringEncodingUTF8
	cfNumberSInt64Type       = 4          // kCFNumberSInt64Type

	ioNameSize = 128 // sizeof(io_name_t)
)

// ioKit binds the IOKit functions we need; registry entries and iterators
// are Mach port names, thus uint32.
type ioKit struct {
	handle uintptr

	registryGetRootEntry            func(mainPort uint32) uint32
	registryEntryFromPath           func(mainPort uint32, path string) uint32
	registryEntryGetChildIterator   func(entry uint32, plane string, iterator *uint32) int32
	iteratorNext                    func(iterator uint32) uint32
	registryEntryGetNameInPlane     func(entry uint32, plane string, name *byte) int32
	registryEntryCreateCFProperties func(entry uint32, properties *uintptr, allocator uintptr, options uint32) int32
	registryEntrySearchCFProperty   func(entry uint32, plane string, key uintptr, allocator uintptr, options uint32) uintptr
	objectRelease                   func(object uint32) int32
}

func newIOKit() (*ioKit, error) {
	handle, err := purego.Dlopen(ioKitPath, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("cannot load IOKit: %w", err)
	}
	lib := &ioKit{handle: handle}
	purego.RegisterLibFunc(&lib.registryGetRootEntry, handle, "IORegistryGetRootEntry")
	purego.RegisterLibFunc(&lib.registryEntryFromPath, handle, "IORegistryEntryFromPath")
	purego.RegisterLibFunc(&lib.registryEntryGetChildIterator, handle, "IORegistryEntryGetChildIterator")
	purego.RegisterLibFunc(&lib.iteratorNext, handle, "IOIteratorNext")
	purego.RegisterLibFunc(&lib.registryEntryGetNameInPlane, handle, "IORegistryEntryGetNameInPlane")
	purego.RegisterLibFunc(&lib.registryEntryCreateCFProperties, handle, "IORegistryEntryCreateCFProperties")
	purego.RegisterLibFunc(&lib.registryEntrySearchCFProperty, handle, "IORegistryEntrySearchCFProperty")
	purego.RegisterLibFunc(&lib.objectRelease, handle, "IOObjectRelease")
	return lib, nil
}

func (lib *ioKit) close() error {
	return purego.Dlclose(lib.handle)
}

// coreFoundation binds the CoreFoundation functions we need; CF objects are
// opaque references, CFIndex is a signed long.
type coreFoundation struct {
	handle uintptr

	getTypeID                       func(cf uintptr) uintptr
	copyTypeIDDescription           func(typeID uintptr) uintptr
	dataGetTypeID                   func() uintptr
	numberGetTypeID                 func() uintptr
	stringGetTypeID                 func() uintptr
	dictionaryGetTypeID             func() uintptr
	dataGetLength                   func(data uintptr) int
	dataGetBytePtr                  func(data uintptr) uintptr
	numberGetValue                  func(number uintptr, numberType int, value *int64) bool
	stringCreateWithCString         func(allocator uintptr, cstr string, encoding uint32) uintptr
	stringGetCStringPtr             func(str uintptr, encoding uint32) uintptr
	stringGetLength                 func(str uintptr) int
	stringGetMaximumSizeForEncoding func(length int, encoding uint32) int
	stringGetCString                func(str uintptr, buffer *byte, size int, encoding uint32) bool
	dictionaryGetCount              func(dict uintptr) int
	dictionaryGetKeysAndValues      func(dict uintptr, keys *uintptr, values *uintptr)
	release                         func(cf uintptr)
}

func newCoreFoundation() (*coreFoundation, error) {
	handle, err := purego.Dlopen(coreFoundationPath, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("cannot load CoreFoundation: %w", err)
	}
	lib := &coreFoundation{handle: handle}
	purego.RegisterLibFunc(&lib.getTypeID, handle, "CFGetTypeID")
	purego.RegisterLibFunc(&lib.copyTypeIDDescription, handle, "CFCopyTypeIDDescription")
	purego.RegisterLibFunc(&lib.dataGetTypeID, handle, "CFDataGetTypeID")
	purego.RegisterLibFunc(&lib.numberGetTypeID, handle, "CFNumberGetTypeID")
	purego.RegisterLibFunc(&lib.stringGetTypeID, handle, "CFStringGetTypeID")
	purego.RegisterLibFunc(&lib.dictionaryGetTypeID, handle, "CFDictionaryGetTypeID")
	purego.RegisterLibFunc(&lib.dataGetLength, handle, "CFDataGetLength")
	purego.RegisterLibFunc(&lib.dataGetBytePtr, handle, "CFDataGetBytePtr")
	purego.RegisterLibFunc(&lib.numberGetValue, handle, "CFNumberGetValue")
	purego.RegisterLibFunc(&lib.stringCreateWithCString, handle, "CFStringCreateWithCString")
	purego.RegisterLibFunc(&lib.stringGetCStringPtr, handle, "CFStringGetCStringPtr")
	purego.RegisterLibFunc(&lib.stringGetLength, handle, "CFStringGetLength")
	purego.RegisterLibFunc(&lib.stringGetMaximumSizeForEncoding, handle, "CFStringGetMaximumSizeForEncoding")
	purego.RegisterLibFunc(&lib.stringGetCString, handle, "CFStringGetCString")
	purego.RegisterLibFunc(&lib.dictionaryGetCount, handle, "CFDictionaryGetCount")
	purego.RegisterLibFunc(&lib.dictionaryGetKeysAndValues, handle, "CFDictionaryGetKeysAndValues")
	purego.RegisterLibFunc(&lib.release, handle, "CFRelease")
	return lib, nil
}

func (lib *coreFoundation) close() error {
	return purego.Dlclose(lib.handle)
}
