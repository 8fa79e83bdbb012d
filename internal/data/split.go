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

	"github.com/pkg/errors"
)

// tolerance absorbs the rounding error of summing fractions such as
// 0.1 + 0.2 + 0.7.
const tolerance = 1e-9

// SplitDataset partitions its parent into named, contiguous and
// non-overlapping subsets.  The partition follows the parent order; compose
// with a ShuffledDataset first for a random split.
type SplitDataset struct {
	Composition
	splits []*SubDataset
	names  map[string]*SubDataset
}

// NewSplitDataset splits the parent according to the given fractions.  Split
// j holds floor(fractions[j] * parent.Len()) items and is registered under
// names[j].
func NewSplitDataset(parent Dataset, names []string, fractions []float64, opts ...Option) (*SplitDataset, error) {
	o := newOptions(opts)
	if len(names) != len(fractions) {
		return nil, errors.Wrapf(ErrLengthMismatch, "%d names for %d fractions", len(names), len(fractions))
	}
	sum := 0.
	for _, fraction := range fractions {
		if fraction < 0 {
			return nil, errors.Wrapf(ErrInvalidBounds, "negative fraction %v", fraction)
		}
		sum += fraction
	}
	if 1+tolerance < sum {
		return nil, errors.Wrapf(ErrInvalidBounds, "fractions sum to %v", sum)
	}

	dataset := &SplitDataset{
		splits: make([]*SubDataset, 0, len(fractions)),
		names:  make(map[string]*SubDataset, len(names)),
	}
	dataset.init(parent, o)

	// the splits share the parent the split dataset holds
	sub := o
	sub.copyParent = false

	// release undoes the registrations made so far.
	release := func() {
		for _, split := range dataset.splits {
			o.registry.Release(split.ReferenceName())
		}
	}

	start := 0
	for j, fraction := range fractions {
		end := start + int(math.Floor(fraction*float64(dataset.parent.Len())))
		if dataset.parent.Len() < end {
			end = dataset.parent.Len()
		}
		split, err := newSubDataset(dataset.parent, span(start, end), sub)
		if err != nil {
			release()
			return nil, err
		}
		if err = o.registry.register(split, "SubDataset", names[j]); err != nil {
			release()
			return nil, err
		}
		dataset.splits = append(dataset.splits, split)
		dataset.names[split.ReferenceName()] = split
		start = end
	}

	if err := o.registry.register(dataset, "SplitDataset", o.name); err != nil {
		release()
		return nil, err
	}
	return dataset, nil
}

func (d *SplitDataset) Getitem(index int) (any, error) {
	return getitem(d, index)
}

// Split returns the subset registered under the given name.
func (d *SplitDataset) Split(name string) (*SubDataset, bool) {
	split, ok := d.names[name]
	return split, ok
}

// Splits returns the subsets in order.
func (d *SplitDataset) Splits() []*SubDataset {
	return d.splits
}

// Copy returns a duplicate sharing the registered splits.
func (d *SplitDataset) Copy() Dataset {
	return &SplitDataset{
		Composition: d.duplicate(),
		splits:      d.splits,
		names:       d.names,
	}
}
