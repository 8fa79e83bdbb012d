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
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Descriptor describes a dataset to construct: the name of a constructor and
// its parameters.  Parameters that are themselves datasets accept nested
// descriptors, bare names or existing instances.
type Descriptor struct {
	Name   string         `yaml:"name" mapstructure:"name"`
	Params map[string]any `yaml:"params" mapstructure:"params"`
}

// Constructor builds a dataset from decoded parameters.
type Constructor func(f *Factory, params map[string]any, opts []Option) (Dataset, error)

// Factory creates datasets from descriptors.
type Factory struct {
	constructors *constructors
	functions    *Functions
	registry     *Registry
	fs           afero.Fs
	staged       bool
}

type constructors struct {
	mu sync.RWMutex
	m  map[string]Constructor
}

// NewFactory creates a new factory holding the built-in constructors.
// Created datasets are registered into registry, named callables are resolved
// through functions and folder datasets read fs.  Nil arguments default to
// Loaded, NewFunctions() and the OS filesystem.
func NewFactory(registry *Registry, functions *Functions, fs afero.Fs) *Factory {
	if registry == nil {
		registry = Loaded
	}
	if functions == nil {
		functions = NewFunctions()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Factory{
		constructors: &constructors{
			m: map[string]Constructor{
				"ItemsDataset":                newItems,
				"ListDirectoryDataset":        newListDirectory,
				"FilesWithinDirectoryDataset": newFilesWithinDirectory,
				"CompositionDataset":          newComposition,
				"CombinedDataset":             newCombined,
				"SubDataset":                  newSub,
				"ShuffledDataset":             newShuffled,
				"FilteredItemsDataset":        newFiltered,
				"OrderedItemsDataset":         newOrdered,
				"AugmentedDataset":            newAugmented,
				"PreprocessedDataset":         newPreprocessed,
				"SplitDataset":                newSplit,
				"UniqueItemsDataset":          newUnique,
				"CrossDataset":                newCross,
			},
		},
		functions: functions,
		registry:  registry,
		fs:        fs,
	}
}

// Register adds a constructor under the given name.
func (f *Factory) Register(name string, c Constructor) error {
	f.constructors.mu.Lock()
	defer f.constructors.mu.Unlock()
	if _, found := f.constructors.m[name]; found {
		return errors.Errorf("constructor %q already registered", name)
	}
	f.constructors.m[name] = c
	return nil
}

// Functions returns the table of named callables.
func (f *Factory) Functions() *Functions {
	return f.functions
}

// Registry returns the registry created datasets are loaded into.
func (f *Factory) Registry() *Registry {
	return f.registry
}

func (f *Factory) constructor(name string) (Constructor, bool) {
	f.constructors.mu.RLock()
	defer f.constructors.mu.RUnlock()
	c, ok := f.constructors.m[name]
	return c, ok
}

// Atomic calls fn with a factory whose datasets are registered into a stage
// of the registry.  The stage is committed if fn succeeds and dropped
// otherwise, so a failed construction leaves no name behind.  Nested calls
// join the enclosing stage.
func (f *Factory) Atomic(fn func(tx *Factory) error) error {
	if f.staged {
		return fn(f)
	}
	tx := &Factory{
		constructors: f.constructors,
		functions:    f.functions,
		registry:     f.registry.Stage(),
		fs:           f.fs,
		staged:       true,
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.registry.Commit()
}

// Create returns the dataset v denotes.  v is an existing
// Dataset, a Descriptor, a map holding a descriptor, or a bare name.  A bare
// name is a constructor called without parameters or, failing that, the
// reference name of a loaded dataset.  Datasets nested in v are registered
// only if the whole construction succeeds.
func (f *Factory) Create(v any) (d Dataset, err error) {
	err = f.Atomic(func(tx *Factory) error {
		d, err = tx.create(v)
		return err
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (f *Factory) create(v any) (Dataset, error) {
	switch s := v.(type) {
	case Dataset:
		return s, nil
	case Descriptor:
		return f.build(s)
	case *Descriptor:
		return f.build(*s)
	case map[string]any:
		var d Descriptor
		if err := decode(s, &d); err != nil {
			return nil, err
		}
		return f.build(d)
	case string:
		if _, ok := f.constructor(s); ok {
			return f.build(Descriptor{Name: s})
		}
		if d, ok := f.registry.Lookup(s); ok {
			return d, nil
		}
		return nil, errors.Wrapf(ErrUnknownName, "dataset %q", s)
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "cannot create a dataset from %T", v)
}

// CreateAll creates a dataset for each of the given values, all or none.
func (f *Factory) CreateAll(values []any) (datasets []Dataset, err error) {
	err = f.Atomic(func(tx *Factory) error {
		datasets = make([]Dataset, 0, len(values))
		for _, v := range values {
			d, err := tx.create(v)
			if err != nil {
				return err
			}
			datasets = append(datasets, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return datasets, nil
}

// build runs the constructor of the given descriptor.  The reference_name
// and copy_parent parameters are common to every constructor.
func (f *Factory) build(d Descriptor) (Dataset, error) {
	c, ok := f.constructor(d.Name)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownName, "constructor %q", d.Name)
	}

	var common struct {
		ReferenceName string `mapstructure:"reference_name"`
		CopyParent    bool   `mapstructure:"copy_parent"`
	}
	params := make(map[string]any, len(d.Params))
	for key, value := range d.Params {
		switch key {
		case "reference_name", "copy_parent":
		default:
			params[key] = value
			continue
		}
		if err := mapstructure.Decode(map[string]any{key: value}, &common); err != nil {
			return nil, errors.Wrapf(err, "%s: %s", d.Name, key)
		}
	}

	dataset, err := c(f, params, []Option{
		WithReferenceName(common.ReferenceName),
		WithCopyParent(common.CopyParent),
		WithRegistry(f.registry),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", d.Name)
	}
	return dataset, nil
}

// decode decodes params into the given struct, rejecting unknown keys.
func decode(params map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(params)
}

func newItems(f *Factory, params map[string]any, opts []Option) (Dataset, error) {
	var p struct {
		Items []any `mapstructure:"items"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Items == nil {
		p.Items = make([]any, 0)
	}
	return NewItemsDataset(p.Items, opts...)
}

func newListDirectory(f *Factory, params map[string]any, opts []Option) (Dataset, error) {
	var p struct {
		DirectoryPath string `mapstructure:"directory_path"`
		Pattern       string `mapstructure:"pattern"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return NewListDirectoryDataset(f.fs, p.DirectoryPath, p.Pattern, opts...)
}

func newFilesWithinDirectory(f *Factory, params map[string]any, opts []Option) (Dataset, error) {
	var p struct {
		DirectoryPath      string            `mapstructure:"directory_path"`
		ExtensionLoaderMap map[string]any    `mapstructure:"extension_loader_map"`
		ExtensionKeyMap    map[string]string `mapstructure:"extension_key_map"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	loaders := make(map[string]Loader, len(p.ExtensionLoaderMap))
	for ext, v := range p.ExtensionLoaderMap {
		loader, err := f.functions.Loader(v)
		if err != nil {
			return nil, err
		}
		loaders[ext] = loader
	}
	return NewFilesWithinDirectoryDataset(f.fs, p.DirectoryPath, loaders, p.ExtensionKeyMap, opts...)
}

func newComposition(f *Factory, params map[string]any, opts []Option) (Dataset, error) {
	var p struct {
		ParentDataset any `mapstructure:"parent_dataset"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	parent, err := f.Create(p.ParentDataset)
	if err != nil {
		return nil, err
	}
	return NewComposition(parent, opts...)
}

func newCombined(f *Factory, params map[string]any, opts []Option) (Dataset, error) {
	var p struct {
		Datasets []any `mapstructure:"datasets"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	datasets, err := f.CreateAll(p.Datasets)
	if err != nil {
		return nil, err
	}
	return NewCombinedDataset(datasets, opts...)
}

func newSub(f *Factory, params map[string]any, opts []Option) (Dataset, error) {
	var p struct {
		ParentDataset any      `mapstructure:"parent_dataset"`
		Indices       []int    `mapstructure:"indices"`
		Start         *float64 `mapstructure:"start"`
		End           *float64 `mapstructure:"end"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	parent, err := f.Create(p.ParentDataset)
	if err != nil {
		return nil, err
	}
	if p.Start == nil && p.End == nil {
		return NewSubDataset(parent, p.Indices, opts...)
	}
	if p.Indices != nil {
		return nil, errors.Wrap(ErrInvalidBounds, "indices and bounds are mutually exclusive")
	}
	start, end := 0., float64(parent.Len())
	if p.Start != nil {
		start = *p.Start
	}
	if p.End != nil {
		end = *p.End
	}
	return NewSubDatasetFromBounds(parent, start, end, opts...)
}

func newShuffled(f *Factory, params map[string]any, opts []Option) (Dataset, error) {
	var p struct {
		ParentDataset   any    `mapstructure:"parent_dataset"`
		ShuffledIndices []int  `mapstructure:"shuffled_indices"`
		Seed            *int64 `mapstructure:"seed"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	parent, err := f.Create(p.ParentDataset)
	if err != nil {
		return nil, err
	}
	if p.Seed != nil {
		opts = append(opts, WithSeed(*p.Seed))
	}
	return NewShuffledDataset(parent, p.ShuffledIndices, opts...)
}

func newFiltered(f *Factory, params map[string]any, opts []Option) (Dataset, error) {
	var p struct {
		ParentDataset any `mapstructure:"parent_dataset"`
		FilterFn      any `mapstructure:"filter_fn"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	parent, err := f.Create(p.ParentDataset)
	if err != nil {
		return nil, err
	}
	fn, err := f.functions.Filter(p.FilterFn)
	if err != nil {
		return nil, err
	}
	return NewFilteredItemsDataset(parent, fn, opts...)
}

func newOrdered(f *Factory, params map[string]any, opts []Option) (Dataset, error) {
	var p struct {
		ParentDataset any `mapstructure:"parent_dataset"`
		OrderFn       any `mapstructure:"order_fn"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	parent, err := f.Create(p.ParentDataset)
	if err != nil {
		return nil, err
	}
	fn, err := f.functions.Key(p.OrderFn)
	if err != nil {
		return nil, err
	}
	switch key := fn.(type) {
	case func(any) int:
		return NewOrderedItemsDataset(parent, key, opts...)
	case func(any) float64:
		return NewOrderedItemsDataset(parent, key, opts...)
	default:
		return NewOrderedItemsDataset(parent, key.(func(any) string), opts...)
	}
}

func newAugmented(f *Factory, params map[string]any, opts []Option) (Dataset, error) {
	var p struct {
		ParentDataset any   `mapstructure:"parent_dataset"`
		Augmentations []any `mapstructure:"augmentations"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	parent, err := f.Create(p.ParentDataset)
	if err != nil {
		return nil, err
	}
	augmentations := make([]Transform, 0, len(p.Augmentations))
	for _, v := range p.Augmentations {
		augmentation, err := f.functions.Transform(v)
		if err != nil {
			return nil, err
		}
		augmentations = append(augmentations, augmentation)
	}
	return NewAugmentedDataset(parent, augmentations, opts...)
}

func newPreprocessed(f *Factory, params map[string]any, opts []Option) (Dataset, error) {
	var p struct {
		ParentDataset   any `mapstructure:"parent_dataset"`
		PreprocessingFn any `mapstructure:"preprocessing_fn"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	parent, err := f.Create(p.ParentDataset)
	if err != nil {
		return nil, err
	}
	preprocessing, err := f.functions.Transform(p.PreprocessingFn)
	if err != nil {
		return nil, err
	}
	return NewPreprocessedDataset(parent, preprocessing, opts...)
}

func newSplit(f *Factory, params map[string]any, opts []Option) (Dataset, error) {
	var p struct {
		ParentDataset  any       `mapstructure:"parent_dataset"`
		ReferenceNames []string  `mapstructure:"reference_names"`
		SplitRatios    []float64 `mapstructure:"split_ratios"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	parent, err := f.Create(p.ParentDataset)
	if err != nil {
		return nil, err
	}
	return NewSplitDataset(parent, p.ReferenceNames, p.SplitRatios, opts...)
}

func newUnique(f *Factory, params map[string]any, opts []Option) (Dataset, error) {
	var p struct {
		ParentDataset any `mapstructure:"parent_dataset"`
		HashFn        any `mapstructure:"hash_fn"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	parent, err := f.Create(p.ParentDataset)
	if err != nil {
		return nil, err
	}
	hash, err := f.functions.Hash(p.HashFn)
	if err != nil {
		return nil, err
	}
	return NewUniqueItemsDataset(parent, hash, opts...)
}

func newCross(f *Factory, params map[string]any, opts []Option) (Dataset, error) {
	var p struct {
		Datasets     []any `mapstructure:"datasets"`
		HashFns      any   `mapstructure:"hash_fns"`
		StrictLength bool  `mapstructure:"strict_length"`
		StrictMatch  bool  `mapstructure:"strict_match"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	datasets, err := f.CreateAll(p.Datasets)
	if err != nil {
		return nil, err
	}

	var hashes []HashFunc
	if list, ok := p.HashFns.([]any); ok {
		for _, v := range list {
			hash, err := f.functions.Hash(v)
			if err != nil {
				return nil, err
			}
			hashes = append(hashes, hash)
		}
	} else if p.HashFns != nil {
		hash, err := f.functions.Hash(p.HashFns)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, hash)
	}

	if p.StrictLength {
		opts = append(opts, WithStrictLength())
	}
	if p.StrictMatch {
		opts = append(opts, WithStrictMatch())
	}
	return NewCrossDataset(datasets, hashes, opts...)
}
