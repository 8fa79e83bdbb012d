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

import "github.com/pkg/errors"

// Transform maps an item to a transformed item.
type Transform interface {
	Apply(item any) (any, error)
}

// TransformFunc adapts an ordinary function to a Transform.
type TransformFunc func(item any) (any, error)

func (f TransformFunc) Apply(item any) (any, error) {
	return f(item)
}

// Reversible is a transform with a known inverse, e.g. a flip used for
// test-time augmentation whose predictions must be mapped back.
type Reversible interface {
	Transform

	// Reverse applies the inverse transform.
	Reverse(item any) (any, error)
}

// ReversibleFunc pairs a forward and a reverse function.
type ReversibleFunc struct {
	Forward  TransformFunc
	Backward TransformFunc
}

func (r ReversibleFunc) Apply(item any) (any, error) {
	return r.Forward(item)
}

func (r ReversibleFunc) Reverse(item any) (any, error) {
	return r.Backward(item)
}

// Invert returns the transform that applies r backwards.
func (r ReversibleFunc) Invert() ReversibleFunc {
	return ReversibleFunc{
		Forward:  r.Backward,
		Backward: r.Forward,
	}
}

// Identity returns its input unchanged in both directions.
var Identity = ReversibleFunc{
	Forward:  identity,
	Backward: identity,
}

func identity(item any) (any, error) {
	return item, nil
}

// KeysTransform applies a reversible transform to the values of selected keys
// of map[string]any items and copies the other values through.  Keys are
// selected by an include list or an ignore list; with neither, every key is
// transformed.
type KeysTransform struct {
	parent   Reversible
	included map[string]struct{}
	ignored  map[string]struct{}
}

// NewKeysTransform creates a new per-key transform.  Giving both included and
// ignored keys is an error.
func NewKeysTransform(parent Reversible, included, ignored []string) (*KeysTransform, error) {
	if included != nil && ignored != nil {
		return nil, errors.New("included and ignored keys are mutually exclusive")
	}
	return &KeysTransform{
		parent:   parent,
		included: set(included),
		ignored:  set(ignored),
	}, nil
}

func set(keys []string) map[string]struct{} {
	if keys == nil {
		return nil
	}
	s := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		s[key] = struct{}{}
	}
	return s
}

// selected reports whether the value under key is transformed.
func (t *KeysTransform) selected(key string) bool {
	if t.included != nil {
		_, ok := t.included[key]
		return ok
	}
	_, ok := t.ignored[key]
	return !ok
}

func (t *KeysTransform) apply(item any, fn TransformFunc) (any, error) {
	in, ok := item.(map[string]any)
	if !ok {
		return nil, errors.Wrapf(ErrTypeMismatch, "item of type %T is not a map", item)
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		if !t.selected(key) {
			out[key] = value
			continue
		}
		v, err := fn(value)
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", key)
		}
		out[key] = v
	}
	return out, nil
}

func (t *KeysTransform) Apply(item any) (any, error) {
	return t.apply(item, t.parent.Apply)
}

func (t *KeysTransform) Reverse(item any) (any, error) {
	return t.apply(item, t.parent.Reverse)
}
