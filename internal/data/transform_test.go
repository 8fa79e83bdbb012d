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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var scale = ReversibleFunc{
	Forward:  func(item any) (any, error) { return item.(float64) * 2, nil },
	Backward: func(item any) (any, error) { return item.(float64) / 2, nil },
}

func TestReversibleFunc(t *testing.T) {
	v, err := scale.Apply(3.)
	require.NoError(t, err)
	require.Equal(t, 6., v)

	v, err = scale.Invert().Apply(v)
	require.NoError(t, err)
	require.Equal(t, 3., v)

	v, err = Identity.Reverse("x")
	require.NoError(t, err)
	require.Equal(t, "x", v)
}

func TestKeysTransform(t *testing.T) {
	item := map[string]any{"id": "a", "x": 1., "y": 2.}

	included, err := NewKeysTransform(scale, []string{"x"}, nil)
	require.NoError(t, err)
	out, err := included.Apply(item)
	require.NoError(t, err)
	if diff := cmp.Diff(map[string]any{"id": "a", "x": 2., "y": 2.}, out); diff != "" {
		t.Fatalf("included keys mismatch (-want +got):\n%s", diff)
	}
	back, err := included.Reverse(out)
	require.NoError(t, err)
	require.Equal(t, item, back)

	ignored, err := NewKeysTransform(scale, nil, []string{"id"})
	require.NoError(t, err)
	out, err = ignored.Apply(item)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": "a", "x": 2., "y": 4.}, out)

	// the input item is left untouched
	require.Equal(t, 1., item["x"])

	_, err = NewKeysTransform(scale, []string{"x"}, []string{"y"})
	require.Error(t, err)

	_, err = included.Apply([]any{1.})
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFunctions(t *testing.T) {
	fns := NewFunctions()

	hash, err := fns.Hash(nil)
	require.NoError(t, err)
	require.Equal(t, Hash("a"), hash("a"))

	hash, err = fns.Hash("hash_id")
	require.NoError(t, err)
	require.Equal(t, hash(map[string]any{"id": "a", "v": 1}), hash(map[string]any{"id": "a", "v": 2}))

	hash, err = fns.Hash("stem")
	require.NoError(t, err)
	require.Equal(t, hash("images/x.png"), hash(map[string]any{"id": "labels/x.yaml"}))
	require.Equal(t, hash("x"), hash("x.tar"))
	require.NotEqual(t, hash("images/x.png"), hash("images/y.png"))
	require.Equal(t, "x.tar", Stem("/data/x.tar.gz"))

	transform, err := fns.Transform(nil)
	require.NoError(t, err)
	v, err := transform.Apply(7)
	require.NoError(t, err)
	require.Equal(t, 7, v)

	filter, err := fns.Filter("not_nil")
	require.NoError(t, err)
	require.False(t, filter(nil))

	key, err := fns.Key("len")
	require.NoError(t, err)
	require.Equal(t, 3, key.(func(any) int)("abc"))

	_, err = fns.Key("xxhash")
	require.ErrorIs(t, err, ErrTypeMismatch)
	_, err = fns.Loader("missing")
	require.ErrorIs(t, err, ErrUnknownName)
	require.Error(t, fns.Register("id", Identity))
}
