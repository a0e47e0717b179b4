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
	"strings"
)

// SkipSubtree is used as a return value from an enter [WalkFunc] to indicate
// that the children of the node just entered are to be skipped. It is not
// returned as an error by any function.
var SkipSubtree = errors.New("skip this subtree")

// SkipAll is used as a return value from a [WalkFunc] to indicate that all
// remaining nodes are to be skipped. It is not returned as an error by any
// function.
var SkipAll = errors.New("skip everything and stop the walk")

// Node is a registry entry as visited by [Walk]. The Node and its Entry are
// only valid for the duration of the [WalkFunc] call.
type Node struct {
	Entry           Entry
	Name            string
	Depth           uint
	HasMoreSiblings bool
	HasChildren     bool
	// Lineage stores for each depth i up to and including this node's depth
	// whether the node at depth i has more siblings still to be visited (bit
	// i), and whether this node has children (bit Depth+1).
	Lineage uint64
}

// Indent returns the indentation prefix for this node when drawing the
// registry plane as a tree in the style of ioreg(8). If isNode is false, the
// prefix is for the lines below the node, such as its properties.
func (n *Node) Indent(isNode bool) string {
	var b strings.Builder
	depth := n.Depth
	if !isNode {
		depth += 2
	}
	for idx := uint(0); idx < depth; idx++ {
		if n.Lineage&(uint64(1)<<idx) != 0 {
			b.WriteString("| ")
		} else {
			b.WriteString("  ")
		}
	}
	if isNode {
		b.WriteString("+-o ")
	}
	return b.String()
}

// WalkFunc is called by [Walk] when entering and leaving nodes. Returning
// [SkipSubtree] when entering a node skips its children, returning [SkipAll]
// stops the walk. Any other non-nil error aborts the walk and is returned by
// Walk.
type WalkFunc func(node *Node) error

// Walk visits the entries of the specified registry plane, starting at root,
// depth-first and in pre-order. Both enter and leave are optional. Walk never
// releases root, but releases all entries and iterators it acquires itself.
//
// Failing to obtain the child iterator or the name of a node aborts the walk
// with an error wrapping [ErrNoChildren] or [ErrNoName].
func Walk(root Entry, plane string, enter, leave WalkFunc) error {
	err := walk(root, plane, enter, leave, 0, false, 0)
	if err == SkipAll {
		return nil
	}
	return err
}

func walk(entry Entry, plane string, enter, leave WalkFunc,
	depth uint, hasMoreSiblings bool, lineage uint64,
) error {
	children, err := entry.Children(plane)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoChildren, err)
	}
	defer children.Release()

	// We always need to know the next child in advance in order to tell
	// whether a child has more siblings; the child we're looking ahead at is
	// still ours and needs to be released even when bailing out early.
	upnext, hasChildren := children.Next()
	if !hasChildren {
		upnext = nil
	}
	defer func() {
		if upnext != nil {
			upnext.Release()
		}
	}()

	if hasMoreSiblings {
		lineage |= uint64(1) << depth
	} else {
		lineage &^= uint64(1) << depth
	}
	if hasChildren {
		lineage |= uint64(2) << depth
	} else {
		lineage &^= uint64(2) << depth
	}

	name, err := entry.Name(plane)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoName, err)
	}
	node := &Node{
		Entry:           entry,
		Name:            name,
		Depth:           depth,
		HasMoreSiblings: hasMoreSiblings,
		HasChildren:     hasChildren,
		Lineage:         lineage,
	}
	skipChildren := false
	if enter != nil {
		switch err := enter(node); err {
		case nil:
		case SkipSubtree:
			skipChildren = true
		default:
			return err
		}
	}

	for !skipChildren && upnext != nil {
		child := upnext
		var more bool
		upnext, more = children.Next()
		if !more {
			upnext = nil
		}
		err := walk(child, plane, enter, leave, depth+1, upnext != nil, lineage)
		child.Release()
		if err != nil {
			return err
		}
	}

	if leave != nil {
		if err := leave(node); err != nil && err != SkipSubtree {
			return err
		}
	}
	return nil
}

// WalkRegistry walks the specified plane of a registry, starting at the
// registry's root entry; see also [Walk].
func WalkRegistry(reg Registry, plane string, enter, leave WalkFunc) error {
	root, err := reg.Root()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoRoot, err)
	}
	defer root.Release()
	return Walk(root, plane, enter, leave)
}
