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

import "math/rand"

// Option configures the construction of a dataset.
type Option func(*options)

type options struct {
	name         string
	registry     *Registry
	copyParent   bool
	rand         *rand.Rand
	strictLength bool
	strictMatch  bool
}

func newOptions(opts []Option) options {
	o := options{
		registry: Loaded,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithReferenceName registers the dataset under the given name.  Construction
// fails with ErrDuplicateReferenceName if the name is taken.
func WithReferenceName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithRegistry registers the dataset into the given registry instead of
// Loaded.
func WithRegistry(registry *Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithCopyParent makes a composition hold a shallow duplicate of its parent
// rather than sharing it, if the parent implements Copier.
func WithCopyParent(copy bool) Option {
	return func(o *options) {
		o.copyParent = copy
	}
}

// WithSeed seeds the random source used to generate permutations.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// WithRand sets the random source used to generate permutations.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rand = rng
	}
}

// WithStrictLength makes a CrossDataset fail unless all deduplicated datasets
// have the same length.
func WithStrictLength() Option {
	return func(o *options) {
		o.strictLength = true
	}
}

// WithStrictMatch makes a CrossDataset fail if fewer items matched than the
// shortest deduplicated dataset holds.
func WithStrictMatch() Option {
	return func(o *options) {
		o.strictMatch = true
	}
}
