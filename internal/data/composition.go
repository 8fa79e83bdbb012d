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

	"github.com/golang/glog"
)

// Composed represents a dataset that wraps exactly one parent dataset and
// translates its own indices into the indices of the parent.
type Composed interface {
	Dataset

	// Parent returns the wrapped dataset.
	Parent() Dataset

	// ParentIndex maps an index of this dataset to an index of the parent.
	// The mapping is total on [0, Len()) and lands in [0, Parent().Len()).
	ParentIndex(index int) (int, error)
}

// Composition is the identity composition over a parent dataset.  Concrete
// compositions embed it and override Len, ParentIndex and, if they transform
// items, Getitem.
type Composition struct {
	DatasetBase
	parent Dataset
	once   sync.Once
	top    Dataset
}

// NewComposition creates a new identity composition over the given parent.
func NewComposition(parent Dataset, opts ...Option) (*Composition, error) {
	o := newOptions(opts)
	dataset := new(Composition)
	dataset.init(parent, o)
	if err := o.registry.register(dataset, "CompositionDataset", o.name); err != nil {
		return nil, err
	}
	return dataset, nil
}

// init links the composition to its parent, duplicating the parent when
// requested and possible.
func (c *Composition) init(parent Dataset, o options) {
	if o.copyParent {
		if copier, ok := parent.(Copier); ok {
			parent = copier.Copy()
		} else {
			glog.Warningf("%T %q cannot be copied, sharing it", parent, parent.ReferenceName())
		}
	}
	c.parent = parent
}

// duplicate returns a composition over the same parent.  The top dataset is
// memoized anew.
func (c *Composition) duplicate() Composition {
	return Composition{
		DatasetBase: c.DatasetBase,
		parent:      c.parent,
	}
}

func (c *Composition) Copy() Dataset {
	return &Composition{
		DatasetBase: c.DatasetBase,
		parent:      c.parent,
	}
}

// Parent returns the wrapped dataset.
func (c *Composition) Parent() Dataset {
	return c.parent
}

func (c *Composition) ParentIndex(index int) (int, error) {
	if index < 0 || c.parent.Len() <= index {
		return 0, outOfRange(index, c.parent.Len())
	}
	return index, nil
}

func (c *Composition) Getitem(index int) (any, error) {
	return getitem(c, index)
}

func (c *Composition) Len() int {
	return c.parent.Len()
}

// InMemory reports whether the parent is in memory; compositions only
// translate indices and inherit the cost of their parent.
func (c *Composition) InMemory() bool {
	return IsInMemory(c.parent)
}

// TopDataset returns the non-composition dataset at the root of the chain.
// The chain topology is immutable, so the result is computed once.
func (c *Composition) TopDataset() Dataset {
	c.once.Do(func() {
		c.top = walk(c.parent)
	})
	return c.top
}

// getitem fetches the item of the parent the given index maps to.
func getitem(c Composed, index int) (any, error) {
	parentIndex, err := c.ParentIndex(index)
	if err != nil {
		return nil, err
	}
	return c.Parent().Getitem(parentIndex)
}

// walk follows parent links until a non-composition dataset is reached.
func walk(d Dataset) Dataset {
	for {
		c, ok := d.(Composed)
		if !ok {
			return d
		}
		d = c.Parent()
	}
}

// TopDataset returns the non-composition dataset at the root of the chain
// the given dataset belongs to.  A non-composition dataset is its own top.
func TopDataset(d Dataset) Dataset {
	if c, ok := d.(interface{ TopDataset() Dataset }); ok {
		return c.TopDataset()
	}
	return walk(d)
}

// TopParentIndex translates the given index through every composition of the
// chain down to an index of the top dataset.
func TopParentIndex(d Dataset, index int) (int, error) {
	for {
		c, ok := d.(Composed)
		if !ok {
			return index, nil
		}
		var err error
		if index, err = c.ParentIndex(index); err != nil {
			return 0, err
		}
		d = c.Parent()
	}
}
