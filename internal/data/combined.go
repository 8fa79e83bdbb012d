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

import "sort"

// CombinedDataset concatenates several datasets into one contiguous index
// space.  Global index i belongs to the dataset k with
// cumulative[k] <= i < cumulative[k+1].
type CombinedDataset struct {
	DatasetBase
	datasets   []Dataset
	lengths    []int
	cumulative []int
}

// NewCombinedDataset creates a new concatenation of the given datasets.
func NewCombinedDataset(datasets []Dataset, opts ...Option) (*CombinedDataset, error) {
	o := newOptions(opts)
	dataset := &CombinedDataset{
		datasets:   datasets,
		lengths:    make([]int, 0, len(datasets)),
		cumulative: make([]int, 1, len(datasets)+1),
	}
	for _, d := range datasets {
		dataset.lengths = append(dataset.lengths, d.Len())
		dataset.cumulative = append(dataset.cumulative, dataset.cumulative[len(dataset.cumulative)-1]+d.Len())
	}

	if err := o.registry.register(dataset, "CombinedDataset", o.name); err != nil {
		return nil, err
	}
	return dataset, nil
}

// Len returns the total length, i.e. the last entry of the cumulative table.
func (d *CombinedDataset) Len() int {
	return d.cumulative[len(d.cumulative)-1]
}

// RespectiveDatasetIndex returns the position of the dataset that owns the
// given global index.  On an equal cumulative boundary the index belongs to
// the dataset that starts there, which skips over empty datasets.
func (d *CombinedDataset) RespectiveDatasetIndex(index int) (int, error) {
	if index < 0 || d.Len() <= index {
		return 0, outOfRange(index, d.Len())
	}
	return sort.Search(len(d.cumulative), func(k int) bool {
		return index < d.cumulative[k]
	}) - 1, nil
}

// Getitem retrieves the item at the given global index.  Negative indices
// count from the end.
func (d *CombinedDataset) Getitem(index int) (any, error) {
	if index < 0 {
		index += d.Len()
	}
	k, err := d.RespectiveDatasetIndex(index)
	if err != nil {
		return nil, err
	}
	return d.datasets[k].Getitem(index - d.cumulative[k])
}

// InMemory reports whether every child is in memory.
func (d *CombinedDataset) InMemory() bool {
	for _, dataset := range d.datasets {
		if !IsInMemory(dataset) {
			return false
		}
	}
	return true
}

// Datasets returns the concatenated datasets in order.
func (d *CombinedDataset) Datasets() []Dataset {
	return d.datasets
}

// Lengths returns the length of each concatenated dataset.
func (d *CombinedDataset) Lengths() []int {
	return d.lengths
}

// CumulativeLengths returns the cumulative length table; entry 0 is 0 and
// entry k is the sum of the first k lengths.
func (d *CombinedDataset) CumulativeLengths() []int {
	return d.cumulative
}

func (d *CombinedDataset) Copy() Dataset {
	return &CombinedDataset{
		DatasetBase: d.DatasetBase,
		datasets:    d.datasets,
		lengths:     d.lengths,
		cumulative:  d.cumulative,
	}
}
