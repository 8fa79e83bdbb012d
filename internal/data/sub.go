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
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// SubDataset exposes the parent items at an ordered list of parent indices.
type SubDataset struct {
	Composition
	indices []int
}

// NewSubDataset creates a new subset of the parent at the given indices.  If
// indices is nil, the subset covers the whole parent.
func NewSubDataset(parent Dataset, indices []int, opts ...Option) (*SubDataset, error) {
	o := newOptions(opts)
	dataset, err := newSubDataset(parent, indices, o)
	if err != nil {
		return nil, err
	}
	if err = o.registry.register(dataset, "SubDataset", o.name); err != nil {
		return nil, err
	}
	return dataset, nil
}

// NewSubDatasetFromBounds creates a new subset of the parent covering
// [start, end).  A bound in (-1, 1) other than 0 is a fraction of the parent
// length, and a negative bound counts from the parent end.
func NewSubDatasetFromBounds(parent Dataset, start, end float64, opts ...Option) (*SubDataset, error) {
	from, err := normalizeBound(start, parent.Len())
	if err != nil {
		return nil, err
	}
	to, err := normalizeBound(end, parent.Len())
	if err != nil {
		return nil, err
	}
	if to <= from {
		return nil, errors.Wrapf(ErrInvalidBounds, "end %d does not exceed start %d", to, from)
	}
	return NewSubDataset(parent, span(from, to), opts...)
}

// newSubDataset creates an unregistered subset.
func newSubDataset(parent Dataset, indices []int, o options) (*SubDataset, error) {
	if indices == nil {
		glog.Warningf("no indices provided for the subset of %q, using all indices", parent.ReferenceName())
		indices = span(0, parent.Len())
	}
	for _, index := range indices {
		if index < 0 || parent.Len() <= index {
			return nil, outOfRange(index, parent.Len())
		}
	}

	dataset := &SubDataset{
		indices: indices,
	}
	dataset.init(parent, o)
	return dataset, nil
}

// normalizeBound converts the given bound into an index in [0, length].
func normalizeBound(bound float64, length int) (int, error) {
	if bound != 0 && -1 < bound && bound < 1 {
		bound = math.Round(bound * float64(length))
	} else if bound != math.Trunc(bound) {
		return 0, errors.Wrapf(ErrInvalidBounds, "bound %v is neither a fraction nor an integer", bound)
	}

	index := int(bound)
	if index < 0 {
		index += length
	}
	if index < 0 || length < index {
		return 0, errors.Wrapf(ErrInvalidBounds, "bound %v with length %d", bound, length)
	}
	return index, nil
}

// span returns the indices in [start, end).
func span(start, end int) []int {
	indices := make([]int, 0, end-start)
	for index := start; index < end; index++ {
		indices = append(indices, index)
	}
	return indices
}

// Indices converts the given integer slice into a slice of indices.
func Indices[T constraints.Integer](slice []T) []int {
	if slice == nil {
		return nil
	}
	indices := make([]int, len(slice))
	for i, v := range slice {
		indices[i] = int(v)
	}
	return indices
}

func (d *SubDataset) Getitem(index int) (any, error) {
	return getitem(d, index)
}

func (d *SubDataset) Len() int {
	return len(d.indices)
}

func (d *SubDataset) ParentIndex(index int) (int, error) {
	if index < 0 || len(d.indices) <= index {
		return 0, outOfRange(index, len(d.indices))
	}
	return d.indices[index], nil
}

// Indices returns the parent indices of the subset in order.
func (d *SubDataset) Indices() []int {
	return d.indices
}

func (d *SubDataset) Copy() Dataset {
	return &SubDataset{
		Composition: d.duplicate(),
		indices:     d.indices,
	}
}
