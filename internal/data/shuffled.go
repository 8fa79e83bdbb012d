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
	"math/rand"

	"github.com/pkg/errors"
)

// ShuffledDataset exposes the parent items in a permuted order.
type ShuffledDataset struct {
	Composition
	permutation []int
}

// NewShuffledDataset creates a new shuffled view of the parent.  If
// permutation is nil, a uniform random permutation is generated from the
// random source given by WithSeed or WithRand, or from the global source.
// The given permutation is assumed to be a bijection on [0, parent.Len()).
func NewShuffledDataset(parent Dataset, permutation []int, opts ...Option) (*ShuffledDataset, error) {
	o := newOptions(opts)
	if permutation == nil {
		if o.rand != nil {
			permutation = o.rand.Perm(parent.Len())
		} else {
			permutation = rand.Perm(parent.Len())
		}
	} else if len(permutation) != parent.Len() {
		return nil, errors.Wrapf(ErrLengthMismatch, "permutation of length %d for parent of length %d", len(permutation), parent.Len())
	}

	dataset := &ShuffledDataset{
		permutation: permutation,
	}
	dataset.init(parent, o)
	if err := o.registry.register(dataset, "ShuffledDataset", o.name); err != nil {
		return nil, err
	}
	return dataset, nil
}

func (d *ShuffledDataset) Getitem(index int) (any, error) {
	return getitem(d, index)
}

func (d *ShuffledDataset) Len() int {
	return len(d.permutation)
}

func (d *ShuffledDataset) ParentIndex(index int) (int, error) {
	if index < 0 || len(d.permutation) <= index {
		return 0, outOfRange(index, len(d.permutation))
	}
	return d.permutation[index], nil
}

// ShuffledIndices returns the permutation of the parent indices.
func (d *ShuffledDataset) ShuffledIndices() []int {
	return d.permutation
}

func (d *ShuffledDataset) Copy() Dataset {
	return &ShuffledDataset{
		Composition: d.duplicate(),
		permutation: d.permutation,
	}
}
