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

import "github.com/pkg/errors"

// CrossDataset joins several in-memory datasets on their hash keys.  Item i
// is the list of the items of every dataset sharing the i-th matched key, in
// the order the keys first appear in the first dataset.
type CrossDataset struct {
	DatasetBase
	datasets []Dataset
	uniques  []*UniqueItemsDataset
	relative [][]int
}

// NewCrossDataset creates a new join of the given datasets.  hashes holds one
// HashFunc per dataset; a single HashFunc, or none for Hash, is shared by all.
// Each dataset is deduplicated first, keeping first-seen items.
func NewCrossDataset(datasets []Dataset, hashes []HashFunc, opts ...Option) (*CrossDataset, error) {
	o := newOptions(opts)
	if len(datasets) == 0 {
		return nil, errors.Wrap(ErrLengthMismatch, "no datasets to cross")
	}
	switch len(hashes) {
	case 0:
		hashes = []HashFunc{Hash}
		fallthrough
	case 1:
		broadcast := make([]HashFunc, len(datasets))
		for k := range broadcast {
			broadcast[k] = hashes[0]
		}
		hashes = broadcast
	case len(datasets):
	default:
		return nil, errors.Wrapf(ErrLengthMismatch, "%d hash functions for %d datasets", len(hashes), len(datasets))
	}

	dataset := &CrossDataset{
		datasets: datasets,
		uniques:  make([]*UniqueItemsDataset, 0, len(datasets)),
		relative: make([][]int, 0),
	}

	// the deduplicated views are internal and stay out of the loaded datasets
	scratch := NewRegistry()
	shortest := -1
	for k, d := range datasets {
		unique, err := NewUniqueItemsDataset(d, hashes[k], WithRegistry(scratch))
		if err != nil {
			return nil, err
		}
		if o.strictLength && 0 < k && unique.Len() != dataset.uniques[0].Len() {
			return nil, errors.Wrapf(ErrLengthMismatch, "dataset %d holds %d unique items, dataset 0 holds %d", k, unique.Len(), dataset.uniques[0].Len())
		}
		if shortest < 0 || unique.Len() < shortest {
			shortest = unique.Len()
		}
		dataset.uniques = append(dataset.uniques, unique)
	}

	first := dataset.uniques[0]
	for _, index := range first.Indices() {
		item, err := datasets[0].Getitem(index)
		if err != nil {
			return nil, err
		}
		key := hashes[0](item)
		tuple := make([]int, 1, len(datasets))
		tuple[0] = index
		for _, unique := range dataset.uniques[1:] {
			position, found := unique.lookup(key)
			if !found {
				break
			}
			tuple = append(tuple, unique.indices[position])
		}
		if len(tuple) == len(datasets) {
			dataset.relative = append(dataset.relative, tuple)
		}
	}

	if o.strictMatch && len(dataset.relative) < shortest {
		return nil, errors.Wrapf(ErrLengthMismatch, "%d items matched out of %d", len(dataset.relative), shortest)
	}

	if err := o.registry.register(dataset, "CrossDataset", o.name); err != nil {
		return nil, err
	}
	return dataset, nil
}

// Getitem returns the matched items of every dataset as a []any.
func (d *CrossDataset) Getitem(index int) (any, error) {
	if index < 0 || len(d.relative) <= index {
		return nil, outOfRange(index, len(d.relative))
	}
	items := make([]any, 0, len(d.datasets))
	for k, i := range d.relative[index] {
		item, err := d.datasets[k].Getitem(i)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Slice returns the matched items at the indices in [start, end).
func (d *CrossDataset) Slice(start, end int) ([]any, error) {
	if start < 0 || end < start || len(d.relative) < end {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "slice [%d:%d] with length %d", start, end, len(d.relative))
	}
	out := make([]any, 0, end-start)
	for index := start; index < end; index++ {
		items, err := d.Getitem(index)
		if err != nil {
			return nil, err
		}
		out = append(out, items)
	}
	return out, nil
}

func (d *CrossDataset) Len() int {
	return len(d.relative)
}

func (d *CrossDataset) InMemory() bool {
	return true
}

// RelativeIndices returns the matched index tuples; element k of a tuple
// indexes dataset k.
func (d *CrossDataset) RelativeIndices() [][]int {
	return d.relative
}

// Datasets returns the crossed datasets in order.
func (d *CrossDataset) Datasets() []Dataset {
	return d.datasets
}

func (d *CrossDataset) Copy() Dataset {
	return &CrossDataset{
		DatasetBase: d.DatasetBase,
		datasets:    d.datasets,
		uniques:     d.uniques,
		relative:    d.relative,
	}
}
