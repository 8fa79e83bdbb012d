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

// Package data provides primitives for composing datasets through pure index
// arithmetic.  Independently defined data sources can be concatenated,
// subset, reordered, deduplicated, cross-referenced and augmented without
// copying or eagerly materializing their items; every composition only
// translates its own indices into the indices of the dataset it wraps.
package data

import "github.com/pkg/errors"

// Dataset represents an indexable sequence of items.
// All implementations must embed DatasetBase for forward compatibility.
type Dataset interface {
	// Getitem retrieves the item at the given index.  This must fail with
	// ErrIndexOutOfRange for indices outside [0, Len()).
	Getitem(index int) (any, error)

	// Len returns the number of items in the dataset.
	Len() int

	// ReferenceName returns the name under which the dataset is registered.
	ReferenceName() string
}

// DatasetBase must be embedded to have forward compatible implementations.
type DatasetBase struct {
	name string
}

func (d DatasetBase) ReferenceName() string {
	return d.name
}

func (d *DatasetBase) setReferenceName(name string) {
	d.name = name
}

// registrable is a dataset whose reference name can be assigned by a Registry.
type registrable interface {
	Dataset
	setReferenceName(name string)
}

// InMemory is implemented by datasets that know whether their full extent can
// be enumerated cheaply.  Datasets that do not implement it are lazy.
type InMemory interface {
	InMemory() bool
}

// IsInMemory reports whether the given dataset can be scanned eagerly.
func IsInMemory(d Dataset) bool {
	m, ok := d.(InMemory)
	return ok && m.InMemory()
}

// Copier is implemented by datasets that can produce a shallow duplicate of
// themselves.  The duplicate shares heavy backing data but owns its
// bookkeeping, so that per-worker copies need no deep copy.
type Copier interface {
	Copy() Dataset
}

// Scan visits every item of an in-memory dataset in index order.  It stops at
// the first error returned by fn.
func Scan(d Dataset, fn func(index int, item any) error) error {
	if !IsInMemory(d) {
		return errors.Wrapf(ErrTypeMismatch, "dataset %q is not in memory", d.ReferenceName())
	}
	for index := 0; index < d.Len(); index++ {
		item, err := d.Getitem(index)
		if err != nil {
			return err
		}
		if err = fn(index, item); err != nil {
			return err
		}
	}
	return nil
}

// ItemsDataset represents an in-memory sequence of items.
type ItemsDataset struct {
	DatasetBase
	items []any
}

// NewItemsDataset creates a new in-memory dataset with the given items.
func NewItemsDataset(items []any, opts ...Option) (*ItemsDataset, error) {
	o := newOptions(opts)
	dataset := &ItemsDataset{
		items: items,
	}
	if err := o.registry.register(dataset, "ItemsDataset", o.name); err != nil {
		return nil, err
	}
	return dataset, nil
}

// Items converts a typed slice into the item slice expected by NewItemsDataset.
func Items[T any](slice []T) []any {
	items := make([]any, 0, len(slice))
	for _, v := range slice {
		items = append(items, v)
	}
	return items
}

func (d *ItemsDataset) Getitem(index int) (any, error) {
	if index < 0 || len(d.items) <= index {
		return nil, outOfRange(index, len(d.items))
	}
	return d.items[index], nil
}

func (d *ItemsDataset) Len() int {
	return len(d.items)
}

func (d *ItemsDataset) InMemory() bool {
	return true
}

// Range calls fn sequentially for each item in the dataset.  If fn returns
// false, Range stops the iteration.
func (d *ItemsDataset) Range(fn func(index int, item any) bool) {
	for index, item := range d.items {
		if !fn(index, item) {
			return
		}
	}
}

// Copy returns a shallow duplicate sharing the backing items.  The duplicate
// keeps the reference name but is not registered again.
func (d *ItemsDataset) Copy() Dataset {
	return &ItemsDataset{
		DatasetBase: d.DatasetBase,
		items:       d.items,
	}
}
