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

// PreprocessedDataset applies a single transformation to every parent item.
type PreprocessedDataset struct {
	Composition
	preprocessing Transform
}

// NewPreprocessedDataset creates a new preprocessed view of the parent.  A nil
// preprocessing is the identity.
func NewPreprocessedDataset(parent Dataset, preprocessing Transform, opts ...Option) (*PreprocessedDataset, error) {
	o := newOptions(opts)
	if preprocessing == nil {
		preprocessing = Identity
	}

	dataset := &PreprocessedDataset{
		preprocessing: preprocessing,
	}
	dataset.init(parent, o)
	if err := o.registry.register(dataset, "PreprocessedDataset", o.name); err != nil {
		return nil, err
	}
	return dataset, nil
}

func (d *PreprocessedDataset) Getitem(index int) (any, error) {
	item, err := getitem(d, index)
	if err != nil {
		return nil, err
	}
	return d.preprocessing.Apply(item)
}

func (d *PreprocessedDataset) Copy() Dataset {
	return &PreprocessedDataset{
		Composition:   d.duplicate(),
		preprocessing: d.preprocessing,
	}
}
