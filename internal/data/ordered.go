// Copyright 2022 Sogang University
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

package data

import (
	"github.com/9rum/dlcm/internal/btree"
	"golang.org/x/exp/constraints"
)

// keyed is a parent index tagged with its sort key.  Equal keys are ordered
// by index, which keeps the ordering stable.
type keyed[K constraints.Ordered] struct {
	key   K
	index int
}

func (k keyed[K]) Less(than keyed[K]) bool {
	switch {
	case k.key < than.key:
		return true
	case than.key < k.key:
		return false
	default:
		return k.index < than.index
	}
}

// OrderedItemsDataset exposes the parent items in ascending order of a key.
type OrderedItemsDataset struct {
	Composition
	sorted []int
}

// NewOrderedItemsDataset computes the key of every parent item and orders
// the parent indices by ascending key, ties broken by parent index.
func NewOrderedItemsDataset[K constraints.Ordered](parent Dataset, key func(item any) K, opts ...Option) (*OrderedItemsDataset, error) {
	o := newOptions(opts)
	tree := btree.New[keyed[K]](btree.DefaultDegree)
	for index := 0; index < parent.Len(); index++ {
		item, err := parent.Getitem(index)
		if err != nil {
			return nil, err
		}
		tree.ReplaceOrInsert(keyed[K]{key(item), index})
	}

	dataset := &OrderedItemsDataset{
		sorted: make([]int, 0, tree.Len()),
	}
	tree.Ascend(func(k keyed[K]) bool {
		dataset.sorted = append(dataset.sorted, k.index)
		return true
	})

	dataset.init(parent, o)
	if err := o.registry.register(dataset, "OrderedItemsDataset", o.name); err != nil {
		return nil, err
	}
	return dataset, nil
}

func (d *OrderedItemsDataset) Getitem(index int) (any, error) {
	return getitem(d, index)
}

func (d *OrderedItemsDataset) Len() int {
	return len(d.sorted)
}

func (d *OrderedItemsDataset) ParentIndex(index int) (int, error) {
	if index < 0 || len(d.sorted) <= index {
		return 0, outOfRange(index, len(d.sorted))
	}
	return d.sorted[index], nil
}

// SortedIndices returns the parent indices in key order.
func (d *OrderedItemsDataset) SortedIndices() []int {
	return d.sorted
}

func (d *OrderedItemsDataset) Copy() Dataset {
	return &OrderedItemsDataset{
		Composition: d.duplicate(),
		sorted:      d.sorted,
	}
}
