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

//go:build !darwin

package ioreg

import "github.com/thediveo/applecpus"

// Registry is a stand-in for the I/O Registry on platforms other than macOS.
type Registry struct{}

var _ applecpus.Registry = (*Registry)(nil)

// Open always fails with [applecpus.ErrUnsupported].
func Open() (*Registry, error) {
	return nil, applecpus.ErrUnsupported
}

func (*Registry) Close() error { return nil }

func (*Registry) Root() (applecpus.Entry, error) {
	return nil, applecpus.ErrUnsupported
}

func (*Registry) EntryFromPath(plane, path string) (applecpus.Entry, error) {
	return nil, applecpus.ErrUnsupported
}
