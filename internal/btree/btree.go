// Copyright 2014 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package btree implements in-memory B-trees of arbitrary degree.
//
// The tree is an insert-only ordered container: items are kept in the strict
// weak ordering given by their Less method, and equivalent items replace one
// another.  It has a flatter structure than an equivalent red-black or other
// binary tree, which yields better memory usage when ordering the large index
// sets of a dataset.
package btree

import "sort"

// DefaultDegree is the degree used when ordering dataset indices.
const DefaultDegree = 32

// Item represents a single object in the tree.
type Item[T any] interface {
	// Less tests whether the current item is less than the given argument.
	//
	// This must provide a strict weak ordering; if !a.Less(b) && !b.Less(a),
	// we treat this to mean a == b (i.e., we can only hold one of either a or b
	// in the tree).
	Less(than T) bool
}

// ItemIterator allows callers of Ascend and Descend to iterate in-order over
// the tree.  When this function returns false, iteration will stop and the
// associated function will immediately return.
type ItemIterator[T any] func(item T) bool

// BTree is a generic implementation of a B-tree.
type BTree[T Item[T]] struct {
	degree int
	length int
	root   *node[T]
}

// New creates a new B-tree with the given degree.
//
// New(2), for example, will create a 2-3-4 tree (each node contains 1-3 items
// and 2-4 children).
func New[T Item[T]](degree int) *BTree[T] {
	if degree <= 1 {
		panic("bad degree")
	}
	return &BTree[T]{
		degree: degree,
	}
}

// maxItems returns the max number of items to allow per node.
func (t *BTree[T]) maxItems() int {
	return t.degree*2 - 1
}

// items stores items in a node.
type items[T Item[T]] []T

// insertAt inserts a value into the given index, pushing all subsequent values
// forward.
func (s *items[T]) insertAt(index int, item T) {
	var zero T
	*s = append(*s, zero)
	if index < len(*s) {
		copy((*s)[index+1:], (*s)[index:])
	}
	(*s)[index] = item
}

// find returns the index where the given item should be inserted into this
// list.  'found' is true if the item already exists in the list at the given
// index.
func (s items[T]) find(item T) (index int, found bool) {
	i := sort.Search(len(s), func(i int) bool {
		return item.Less(s[i])
	})
	if 0 < i && !s[i-1].Less(item) {
		return i - 1, true
	}
	return i, false
}

// node is an internal node in a tree.
//
// It must at all times maintain the invariant that either
//   - len(children) == 0, len(items) unconstrained
//   - len(children) == len(items) + 1
type node[T Item[T]] struct {
	items    items[T]
	children []*node[T]
}

// split splits the given node at the given index.  The current node shrinks,
// and this function returns the item that existed at that index and a new node
// containing all items/children after it.
func (n *node[T]) split(i int) (T, *node[T]) {
	item := n.items[i]
	next := new(node[T])
	next.items = append(next.items, n.items[i+1:]...)
	n.items = n.items[:i:i]
	if 0 < len(n.children) {
		next.children = append(next.children, n.children[i+1:]...)
		n.children = n.children[: i+1 : i+1]
	}
	return item, next
}

// maybeSplitChild checks if a child should be split, and if so splits it.
// Returns whether or not a split occurred.
func (n *node[T]) maybeSplitChild(i, maxItems int) bool {
	if len(n.children[i].items) < maxItems {
		return false
	}
	item, second := n.children[i].split(maxItems / 2)
	n.items.insertAt(i, item)
	n.children = append(n.children, nil)
	copy(n.children[i+2:], n.children[i+1:])
	n.children[i+1] = second
	return true
}

// insert inserts an item into the subtree rooted at this node, making sure
// no nodes in the subtree exceed maxItems items.  Should an equivalent item
// be found/replaced by insert, it will be returned.
func (n *node[T]) insert(item T, maxItems int) (_ T, _ bool) {
	i, found := n.items.find(item)
	if found {
		out := n.items[i]
		n.items[i] = item
		return out, true
	}
	if len(n.children) == 0 {
		n.items.insertAt(i, item)
		return
	}
	if n.maybeSplitChild(i, maxItems) {
		inTree := n.items[i]
		switch {
		case item.Less(inTree):
			// no change, we want first split node
		case inTree.Less(item):
			i++ // we want second split node
		default:
			out := n.items[i]
			n.items[i] = item
			return out, true
		}
	}
	return n.children[i].insert(item, maxItems)
}

// get finds the given key in the subtree and returns it.
func (n *node[T]) get(key T) (_ T, _ bool) {
	i, found := n.items.find(key)
	if found {
		return n.items[i], true
	} else if 0 < len(n.children) {
		return n.children[i].get(key)
	}
	return
}

// ascend visits the subtree in ascending order.
func (n *node[T]) ascend(iterator ItemIterator[T]) bool {
	for i, item := range n.items {
		if 0 < len(n.children) && !n.children[i].ascend(iterator) {
			return false
		}
		if !iterator(item) {
			return false
		}
	}
	if 0 < len(n.children) {
		return n.children[len(n.children)-1].ascend(iterator)
	}
	return true
}

// descend visits the subtree in descending order.
func (n *node[T]) descend(iterator ItemIterator[T]) bool {
	if 0 < len(n.children) && !n.children[len(n.children)-1].descend(iterator) {
		return false
	}
	for i := len(n.items) - 1; 0 <= i; i-- {
		if !iterator(n.items[i]) {
			return false
		}
		if 0 < len(n.children) && !n.children[i].descend(iterator) {
			return false
		}
	}
	return true
}

// ReplaceOrInsert adds the given item to the tree.  If an item in the tree
// already equals the given one, it is removed from the tree and returned,
// and the second return value is true.  Otherwise, (zeroValue, false)
//
// nil cannot be added to the tree (will panic).
func (t *BTree[T]) ReplaceOrInsert(item T) (_ T, _ bool) {
	if t.root == nil {
		t.root = new(node[T])
		t.root.items = append(t.root.items, item)
		t.length++
		return
	}
	if t.maxItems() <= len(t.root.items) {
		item2, second := t.root.split(t.maxItems() / 2)
		oldroot := t.root
		t.root = new(node[T])
		t.root.items = append(t.root.items, item2)
		t.root.children = append(t.root.children, oldroot, second)
	}
	out, found := t.root.insert(item, t.maxItems())
	if !found {
		t.length++
	}
	return out, found
}

// Get looks for the key item in the tree, returning it.  It returns
// (zeroValue, false) if unable to find that item.
func (t *BTree[T]) Get(key T) (_ T, _ bool) {
	if t.root == nil {
		return
	}
	return t.root.get(key)
}

// Has returns true if the given key is in the tree.
func (t *BTree[T]) Has(key T) bool {
	_, ok := t.Get(key)
	return ok
}

// Min returns the smallest item in the tree, or (zeroValue, false) if the tree
// is empty.
func (t *BTree[T]) Min() (min T, found bool) {
	t.Ascend(func(item T) bool {
		min, found = item, true
		return false
	})
	return
}

// Max returns the largest item in the tree, or (zeroValue, false) if the tree
// is empty.
func (t *BTree[T]) Max() (max T, found bool) {
	t.Descend(func(item T) bool {
		max, found = item, true
		return false
	})
	return
}

// Ascend calls the iterator for every value in the tree in ascending order,
// until iterator returns false.
func (t *BTree[T]) Ascend(iterator ItemIterator[T]) {
	if t.root == nil {
		return
	}
	t.root.ascend(iterator)
}

// Descend calls the iterator for every value in the tree in descending order,
// until iterator returns false.
func (t *BTree[T]) Descend(iterator ItemIterator[T]) {
	if t.root == nil {
		return
	}
	t.root.descend(iterator)
}

// Len returns the number of items currently in the tree.
func (t *BTree[T]) Len() int {
	return t.length
}

// Clear removes all items from the btree.
func (t *BTree[T]) Clear() {
	t.root, t.length = nil, 0
}
