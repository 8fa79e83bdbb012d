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

// FilterFunc reports whether an item is retained.
type FilterFunc func(item any) bool

// FilteredItemsDataset exposes the parent items satisfying a predicate, in
// parent order.  The parent must be in memory.
type FilteredItemsDataset struct {
	Composition
	retained []int
}

// NewFilteredItemsDataset scans every parent item through fn and keeps the
// indices of those it accepts.
func NewFilteredItemsDataset(parent Dataset, fn FilterFunc, opts ...Option) (*FilteredItemsDataset, error) {
	o := newOptions(opts)
	dataset := &FilteredItemsDataset{
		retained: make([]int, 0),
	}
	if err := Scan(parent, func(index int, item any) error {
		if fn(item) {
			dataset.retained = append(dataset.retained, index)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	dataset.init(parent, o)
	if err := o.registry.register(dataset, "FilteredItemsDataset", o.name); err != nil {
		return nil, err
	}
	return dataset, nil
}

func (d *FilteredItemsDataset) Getitem(index int) (any, error) {
	return getitem(d, index)
}

func (d *FilteredItemsDataset) Len() int {
	return len(d.retained)
}

func (d *FilteredItemsDataset) ParentIndex(index int) (int, error) {
	if index < 0 || len(d.retained) <= index {
		return 0, outOfRange(index, len(d.retained))
	}
	return d.retained[index], nil
}

func (d *FilteredItemsDataset) Copy() Dataset {
	return &FilteredItemsDataset{
		Composition: d.duplicate(),
		retained:    d.retained,
	}
}
