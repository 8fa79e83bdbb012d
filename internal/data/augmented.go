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

// AugmentedDataset expands every parent item into one item per
// transformation.  Indices [i*K, i*K+K) all map to parent item i, each under
// a different transformation.
type AugmentedDataset struct {
	Composition
	augmentations []Transform
}

// NewAugmentedDataset creates a new augmentation of the parent.  Without
// augmentations the identity is used alone.
func NewAugmentedDataset(parent Dataset, augmentations []Transform, opts ...Option) (*AugmentedDataset, error) {
	o := newOptions(opts)
	if len(augmentations) == 0 {
		augmentations = []Transform{Identity}
	}

	dataset := &AugmentedDataset{
		augmentations: augmentations,
	}
	dataset.init(parent, o)
	if err := o.registry.register(dataset, "AugmentedDataset", o.name); err != nil {
		return nil, err
	}
	return dataset, nil
}

// Getitem applies the transformation index % K to parent item index / K.
func (d *AugmentedDataset) Getitem(index int) (any, error) {
	item, err := getitem(d, index)
	if err != nil {
		return nil, err
	}
	return d.augmentations[index%len(d.augmentations)].Apply(item)
}

func (d *AugmentedDataset) Len() int {
	return d.parent.Len() * len(d.augmentations)
}

func (d *AugmentedDataset) ParentIndex(index int) (int, error) {
	if index < 0 || d.Len() <= index {
		return 0, outOfRange(index, d.Len())
	}
	return index / len(d.augmentations), nil
}

// Augmentations returns the transformations in order.
func (d *AugmentedDataset) Augmentations() []Transform {
	return d.augmentations
}

func (d *AugmentedDataset) Copy() Dataset {
	return &AugmentedDataset{
		Composition:   d.duplicate(),
		augmentations: d.augmentations,
	}
}
