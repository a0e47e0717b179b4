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

/*
Package fakeioreg provides an in-memory [applecpus.Registry] for testing,
keeping track of the entries, iterators and property dictionaries handed
out, so that tests can check that each of them gets released exactly once.
*/
package fakeioreg

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/thediveo/applecpus"
)

// ErrInjected is returned by the registry for failures injected by tests.
var ErrInjected = errors.New("injected failure")

// Node is a registry entry of the fake registry.
type Node struct {
	Name       string
	Properties map[string]applecpus.Value
	Children   []*Node

	FailName       bool // fail obtaining the node's name
	FailChildren   bool // fail obtaining the child iterator
	FailProperties bool // fail obtaining the property dictionary
}

// Registry is a fake registry serving a tree of [Node]s in the device tree
// plane only.
type Registry struct {
	root    *Node
	handles []*handle
	closed  int
}

var _ applecpus.Registry = (*Registry)(nil)

// New returns a new fake registry with the specified root node; if root is
// nil, the registry won't have any root entry.
func New(root *Node) *Registry {
	return &Registry{root: root}
}

// handle tracks a single acquired entry, iterator or property dictionary.
type handle struct {
	what     string
	released int
}

func (r *Registry) acquire(what string) *handle {
	h := &handle{what: what}
	r.handles = append(r.handles, h)
	return h
}

func (h *handle) release() {
	h.released++
}

// Acquired returns the number of entries, iterators and property
// dictionaries handed out so far.
func (r *Registry) Acquired() int {
	return len(r.handles)
}

// Leaks returns descriptions of the handed out entries, iterators and
// property dictionaries that haven't been released yet.
func (r *Registry) Leaks() []string {
	var leaks []string
	for _, h := range r.handles {
		if h.released == 0 {
			leaks = append(leaks, h.what)
		}
	}
	return leaks
}

// Overreleased returns descriptions of the entries, iterators and property
// dictionaries that have been released more than once.
func (r *Registry) Overreleased() []string {
	var over []string
	for _, h := range r.handles {
		if h.released > 1 {
			over = append(over, fmt.Sprintf("%s (%d times)", h.what, h.released))
		}
	}
	return over
}

// Close counts how often the registry has been closed.
func (r *Registry) Close() error {
	r.closed++
	return nil
}

// Closed returns how often the registry has been closed.
func (r *Registry) Closed() int {
	return r.closed
}

func (r *Registry) Root() (applecpus.Entry, error) {
	if r.root == nil {
		return nil, fmt.Errorf("no root entry: %w", ErrInjected)
	}
	return r.newEntry(r.root, ""), nil
}

func (r *Registry) EntryFromPath(plane, path string) (applecpus.Entry, error) {
	if plane != applecpus.DeviceTreePlane {
		return nil, fmt.Errorf("unsupported plane %q", plane)
	}
	if r.root == nil || !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("no entry at %s:%s", plane, path)
	}
	// The root of the registry sits above the device tree's root node, so
	// "/" refers to the root node's only child.
	node := r.root
	elements := append([]string{""}, strings.Split(strings.Trim(path, "/"), "/")...)
	if path == "/" {
		elements = elements[:1]
	}
	for _, element := range elements {
		idx := slices.IndexFunc(node.Children, func(child *Node) bool {
			return element == "" || child.Name == element
		})
		if idx < 0 {
			return nil, fmt.Errorf("no entry at %s:%s", plane, path)
		}
		node = node.Children[idx]
	}
	return r.newEntry(node, path), nil
}

func (r *Registry) newEntry(node *Node, path string) *entry {
	return &entry{
		reg:    r,
		node:   node,
		handle: r.acquire("entry " + cmp.Or(path, "(root)")),
		path:   path,
	}
}

type entry struct {
	reg    *Registry
	node   *Node
	handle *handle
	path   string
}

func (e *entry) Name(plane string) (string, error) {
	if e.node.FailName {
		return "", fmt.Errorf("name of %s: %w", e.path, ErrInjected)
	}
	return e.node.Name, nil
}

func (e *entry) Children(plane string) (applecpus.Iterator, error) {
	if e.node.FailChildren {
		return nil, fmt.Errorf("children of %s: %w", e.path, ErrInjected)
	}
	return &iterator{
		reg:    e.reg,
		parent: e,
		handle: e.reg.acquire("iterator " + cmp.Or(e.path, "(root)")),
	}, nil
}

func (e *entry) Properties() (applecpus.Properties, error) {
	if e.node.FailProperties {
		return nil, fmt.Errorf("properties of %s: %w", e.path, ErrInjected)
	}
	return &properties{
		node:   e.node,
		handle: e.reg.acquire("properties " + cmp.Or(e.path, "(root)")),
	}, nil
}

func (e *entry) Property(plane, key string) (applecpus.Value, bool) {
	value, ok := e.node.Properties[key]
	return value, ok
}

func (e *entry) Release() {
	e.handle.release()
}

type iterator struct {
	reg    *Registry
	parent *entry
	handle *handle
	next   int
}

func (i *iterator) Next() (applecpus.Entry, bool) {
	if i.next >= len(i.parent.node.Children) {
		return nil, false
	}
	child := i.parent.node.Children[i.next]
	i.next++
	return i.reg.newEntry(child, i.parent.path+"/"+child.Name), true
}

func (i *iterator) Release() {
	i.handle.release()
}

type properties struct {
	node   *Node
	handle *handle
}

// Each calls fn for the properties in the order of their keys.
func (p *properties) Each(fn func(key string, value applecpus.Value)) {
	keys := make([]string, 0, len(p.node.Properties))
	for key := range p.node.Properties {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		fn(key, p.node.Properties[key])
	}
}

func (p *properties) Release() {
	p.handle.release()
}
