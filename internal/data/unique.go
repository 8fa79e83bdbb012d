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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// HashFunc maps an item to its hash key.  Items with equal keys are
// considered the same item.
type HashFunc func(item any) uint64

// Hash is the default HashFunc.  It hashes the dynamic type of the item
// followed by the item itself: strings and byte slices directly and any other
// item through its %v rendering, which is deterministic for maps as their
// keys are printed in sorted order.  Items of distinct types never share a
// key through their rendering alone, so "1", 1 and []byte("1") differ.
func Hash(item any) uint64 {
	digest := xxhash.New()
	digest.WriteString(fmt.Sprintf("%T", item))
	digest.Write([]byte{0})
	switch v := item.(type) {
	case string:
		digest.WriteString(v)
	case []byte:
		digest.Write(v)
	default:
		fmt.Fprintf(digest, "%v", v)
	}
	return digest.Sum64()
}

// HashID hashes the "id" entry of map[string]any items, such as the items of
// a FilesWithinDirectoryDataset, and falls back to Hash otherwise.
func HashID(item any) uint64 {
	if m, ok := item.(map[string]any); ok {
		if id, found := m["id"]; found {
			return Hash(id)
		}
	}
	return Hash(item)
}

// HashStem hashes the stem of path items, so that files named alike in
// different folders, such as images/x.png and labels/x.txt, share a key.  Map
// items are hashed by the stem of their "id" entry; other items fall back to
// Hash.
func HashStem(item any) uint64 {
	if m, ok := item.(map[string]any); ok {
		if id, found := m["id"]; found {
			item = id
		}
	}
	if path, ok := item.(string); ok {
		return Hash(Stem(path))
	}
	return Hash(item)
}

// Stem returns the last element of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// UniqueItemsDataset is the subset of an in-memory parent holding the first
// item seen for each hash key; later duplicates are dropped.
type UniqueItemsDataset struct {
	SubDataset
	hash      HashFunc
	positions map[uint64]int
}

// NewUniqueItemsDataset scans the parent and keeps the first-seen index of
// every hash key, in parent order.  A nil hash defaults to Hash.
func NewUniqueItemsDataset(parent Dataset, hash HashFunc, opts ...Option) (*UniqueItemsDataset, error) {
	o := newOptions(opts)
	if hash == nil {
		hash = Hash
	}

	dataset := &UniqueItemsDataset{
		hash:      hash,
		positions: make(map[uint64]int),
	}
	dataset.indices = make([]int, 0)
	if err := Scan(parent, func(index int, item any) error {
		key := hash(item)
		if _, found := dataset.positions[key]; !found {
			dataset.positions[key] = len(dataset.indices)
			dataset.indices = append(dataset.indices, index)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	dataset.init(parent, o)
	if err := o.registry.register(dataset, "UniqueItemsDataset", o.name); err != nil {
		return nil, err
	}
	return dataset, nil
}

// lookup returns the index of the item with the given hash key.
func (d *UniqueItemsDataset) lookup(key uint64) (int, bool) {
	index, ok := d.positions[key]
	return index, ok
}

// Contains reports whether an item with the same hash key as the given item
// is in the dataset.
func (d *UniqueItemsDataset) Contains(item any) bool {
	_, ok := d.lookup(d.hash(item))
	return ok
}

// IndexOf returns the index of the item with the same hash key as the given
// item.
func (d *UniqueItemsDataset) IndexOf(item any) (int, bool) {
	return d.lookup(d.hash(item))
}

func (d *UniqueItemsDataset) Copy() Dataset {
	return &UniqueItemsDataset{
		SubDataset: SubDataset{
			Composition: d.duplicate(),
			indices:     d.indices,
		},
		hash:      d.hash,
		positions: d.positions,
	}
}
