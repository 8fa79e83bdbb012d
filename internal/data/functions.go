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
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Functions maps names to the callables descriptors refer to: filters, order
// keys, hash functions, transforms and file loaders.  A Functions is safe for
// concurrent use.
type Functions struct {
	mu  sync.RWMutex
	fns map[string]any
}

// NewFunctions creates a new table holding the built-in callables.
func NewFunctions() *Functions {
	return &Functions{
		fns: map[string]any{
			"id":         Identity,
			"xxhash":     HashFunc(Hash),
			"hash_id":    HashFunc(HashID),
			"stem":       HashFunc(HashStem),
			"not_nil":    FilterFunc(func(item any) bool { return item != nil }),
			"len":        length,
			"string":     func(item any) string { return fmt.Sprintf("%v", item) },
			"read_bytes": Loader(ReadBytes),
			"read_text":  Loader(ReadText),
			"read_yaml":  Loader(ReadYAML),
		},
	}
}

// length is the order key of items by their length; items without a length
// come first.
func length(item any) int {
	switch v := item.(type) {
	case string:
		return len(v)
	case []byte:
		return len(v)
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	default:
		return -1
	}
}

// Register adds a callable under the given name.
func (f *Functions) Register(name string, fn any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, found := f.fns[name]; found {
		return errors.Errorf("function %q already registered", name)
	}
	f.fns[name] = fn
	return nil
}

// resolve looks up v if it is a name and returns it unchanged otherwise.
func (f *Functions) resolve(v any) (any, error) {
	name, ok := v.(string)
	if !ok {
		return v, nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	fn, found := f.fns[name]
	if !found {
		return nil, errors.Wrapf(ErrUnknownName, "function %q", name)
	}
	return fn, nil
}

// Filter resolves v into a FilterFunc.
func (f *Functions) Filter(v any) (FilterFunc, error) {
	fn, err := f.resolve(v)
	if err != nil {
		return nil, err
	}
	switch fn := fn.(type) {
	case FilterFunc:
		return fn, nil
	case func(any) bool:
		return fn, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "%T is not a filter", fn)
}

// Hash resolves v into a HashFunc; nil resolves to Hash.
func (f *Functions) Hash(v any) (HashFunc, error) {
	if v == nil {
		return Hash, nil
	}
	fn, err := f.resolve(v)
	if err != nil {
		return nil, err
	}
	switch fn := fn.(type) {
	case HashFunc:
		return fn, nil
	case func(any) uint64:
		return fn, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "%T is not a hash function", fn)
}

// Transform resolves v into a Transform; nil resolves to Identity.
func (f *Functions) Transform(v any) (Transform, error) {
	if v == nil {
		return Identity, nil
	}
	fn, err := f.resolve(v)
	if err != nil {
		return nil, err
	}
	switch fn := fn.(type) {
	case Transform:
		return fn, nil
	case func(any) (any, error):
		return TransformFunc(fn), nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "%T is not a transform", fn)
}

// Loader resolves v into a Loader.
func (f *Functions) Loader(v any) (Loader, error) {
	fn, err := f.resolve(v)
	if err != nil {
		return nil, err
	}
	switch fn := fn.(type) {
	case Loader:
		return fn, nil
	case func(afero.Fs, string) (any, error):
		return fn, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "%T is not a loader", fn)
}

// Key resolves v into an order key function.  The result is one of
// func(any) int, func(any) float64 or func(any) string.
func (f *Functions) Key(v any) (any, error) {
	fn, err := f.resolve(v)
	if err != nil {
		return nil, err
	}
	switch fn.(type) {
	case func(any) int, func(any) float64, func(any) string:
		return fn, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "%T is not an order key", fn)
}
