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
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("github.com/golang/glog.(*fileSink).flushDaemon"),
		goleak.IgnoreAnyFunction("github.com/golang/glog.(*loggingT).flushDaemon"),
	)
}

// items creates an ItemsDataset in the given registry.
func items[T any](t testing.TB, registry *Registry, slice []T, opts ...Option) *ItemsDataset {
	d, err := NewItemsDataset(Items(slice), append([]Option{WithRegistry(registry)}, opts...)...)
	require.NoError(t, err)
	return d
}

// collect returns every item of the given dataset.
func collect(t testing.TB, d Dataset) []any {
	out := make([]any, 0, d.Len())
	for index := 0; index < d.Len(); index++ {
		item, err := d.Getitem(index)
		require.NoError(t, err)
		out = append(out, item)
	}
	return out
}

func TestItemsDataset(t *testing.T) {
	d := items(t, NewRegistry(), []string{"a", "b", "c"})
	require.Equal(t, 3, d.Len())
	require.True(t, IsInMemory(d))
	require.Equal(t, []any{"a", "b", "c"}, collect(t, d))

	_, err := d.Getitem(3)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = d.Getitem(-1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	a := items(t, registry, []int{1})
	b := items(t, registry, []int{2})
	c := items(t, registry, []int{3}, WithReferenceName("c"))
	require.Equal(t, "ItemsDataset", a.ReferenceName())
	require.Equal(t, "ItemsDataset_1", b.ReferenceName())
	require.Equal(t, []string{"ItemsDataset", "ItemsDataset_1", "c"}, registry.Names())

	_, err := NewItemsDataset(Items([]int{4}), WithRegistry(registry), WithReferenceName("c"))
	require.ErrorIs(t, err, ErrDuplicateReferenceName)

	d, ok := registry.Lookup("c")
	require.True(t, ok)
	require.Same(t, Dataset(c), d)

	registry.Release("c")
	_, ok = registry.Lookup("c")
	require.False(t, ok)
	require.Equal(t, 2, registry.Len())

	stage := registry.Stage()
	staged := items(t, stage, []int{5})
	require.Equal(t, "ItemsDataset_2", staged.ReferenceName())
	_, err = NewItemsDataset(Items([]int{6}), WithRegistry(stage), WithReferenceName("ItemsDataset"))
	require.ErrorIs(t, err, ErrDuplicateReferenceName)
	_, ok = registry.Lookup("ItemsDataset_2")
	require.False(t, ok)
	require.NoError(t, stage.Commit())
	_, ok = registry.Lookup("ItemsDataset_2")
	require.True(t, ok)

	// names taken while staging fail the commit as a whole
	stage = registry.Stage()
	items(t, stage, []int{7}, WithReferenceName("late"))
	items(t, stage, []int{8}, WithReferenceName("x"))
	items(t, registry, []int{9}, WithReferenceName("late"))
	require.ErrorIs(t, stage.Commit(), ErrDuplicateReferenceName)
	_, ok = registry.Lookup("x")
	require.False(t, ok)
	require.Error(t, registry.Commit())
}

func TestComposition(t *testing.T) {
	registry := NewRegistry()
	leaf := items(t, registry, []int{10, 20, 30, 40})
	c, err := NewComposition(leaf, WithRegistry(registry))
	require.NoError(t, err)
	sub, err := NewSubDataset(c, []int{3, 1}, WithRegistry(registry))
	require.NoError(t, err)
	shuffled, err := NewShuffledDataset(sub, []int{1, 0}, WithRegistry(registry))
	require.NoError(t, err)

	require.Same(t, Dataset(leaf), TopDataset(shuffled))
	require.Same(t, Dataset(leaf), shuffled.TopDataset())
	require.Same(t, Dataset(leaf), TopDataset(leaf))

	top, err := TopParentIndex(shuffled, 0)
	require.NoError(t, err)
	require.Equal(t, 1, top)
	top, err = TopParentIndex(shuffled, 1)
	require.NoError(t, err)
	require.Equal(t, 3, top)

	_, err = TopParentIndex(shuffled, 2)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	require.Equal(t, []any{20, 40}, collect(t, shuffled))
}

func TestCopyParent(t *testing.T) {
	registry := NewRegistry()
	leaf := items(t, registry, []int{1, 2})

	shared, err := NewComposition(leaf, WithRegistry(registry))
	require.NoError(t, err)
	require.Same(t, Dataset(leaf), shared.Parent())

	copied, err := NewComposition(leaf, WithRegistry(registry), WithCopyParent(true))
	require.NoError(t, err)
	require.NotSame(t, Dataset(leaf), copied.Parent())
	require.Equal(t, collect(t, leaf), collect(t, copied))

	// composed parents are duplicated down to their own bookkeeping
	sub, err := NewSubDataset(leaf, []int{1, 0}, WithRegistry(registry))
	require.NoError(t, err)
	require.Same(t, Dataset(leaf), sub.TopDataset())
	shuffled, err := NewShuffledDataset(sub, nil, WithRegistry(registry), WithCopyParent(true))
	require.NoError(t, err)
	duplicate, ok := shuffled.Parent().(*SubDataset)
	require.True(t, ok)
	require.NotSame(t, sub, duplicate)
	require.Equal(t, sub.ReferenceName(), duplicate.ReferenceName())
	require.Equal(t, []any{2, 1}, collect(t, duplicate))
	require.Same(t, Dataset(leaf), duplicate.TopDataset())

	combined, err := NewCombinedDataset([]Dataset{leaf, sub}, WithRegistry(registry))
	require.NoError(t, err)
	for _, parent := range []Dataset{shuffled, combined} {
		c, err := NewComposition(parent, WithRegistry(registry), WithCopyParent(true))
		require.NoError(t, err)
		require.NotSame(t, parent, c.Parent())
		require.IsType(t, parent, c.Parent())
		require.Equal(t, collect(t, parent), collect(t, c))
	}
}

func TestScanRejectsLazy(t *testing.T) {
	registry := NewRegistry()
	leaf := items(t, registry, []int{1, 2, 3})
	lazy := &lazyDataset{leaf}

	_, err := NewFilteredItemsDataset(lazy, func(any) bool { return true }, WithRegistry(registry))
	require.ErrorIs(t, err, ErrTypeMismatch)
	_, err = NewUniqueItemsDataset(lazy, nil, WithRegistry(registry))
	require.ErrorIs(t, err, ErrTypeMismatch)
}

// lazyDataset hides the in-memory marker of the wrapped dataset.
type lazyDataset struct {
	d Dataset
}

func (l *lazyDataset) Getitem(index int) (any, error) { return l.d.Getitem(index) }
func (l *lazyDataset) Len() int                       { return l.d.Len() }
func (l *lazyDataset) ReferenceName() string          { return "lazy" }

func TestCombinedDataset(t *testing.T) {
	registry := NewRegistry()
	lengths := []int{5, 0, 3, 7, 0, 1}
	datasets := make([]Dataset, 0, len(lengths))
	for k, length := range lengths {
		slice := make([]int, length)
		for i := range slice {
			slice[i] = k*100 + i
		}
		datasets = append(datasets, items(t, registry, slice))
	}
	combined, err := NewCombinedDataset(datasets, WithRegistry(registry))
	require.NoError(t, err)

	total := 0
	for _, length := range lengths {
		total += length
	}
	require.Equal(t, total, combined.Len())
	require.Equal(t, []int{0, 5, 5, 8, 15, 15, 16}, combined.CumulativeLengths())

	// linear scan reference
	for index := 0; index < combined.Len(); index++ {
		k, offset := 0, index
		for lengths[k] <= offset {
			offset -= lengths[k]
			k++
		}
		got, err := combined.RespectiveDatasetIndex(index)
		require.NoError(t, err)
		require.Equal(t, k, got)

		item, err := combined.Getitem(index)
		require.NoError(t, err)
		require.Equal(t, k*100+offset, item)
	}

	item, err := combined.Getitem(-1)
	require.NoError(t, err)
	require.Equal(t, 500, item)

	_, err = combined.Getitem(combined.Len())
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = combined.Getitem(-combined.Len() - 1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestCombinedDatasetEndToEnd(t *testing.T) {
	registry := NewRegistry()
	a := items(t, registry, []string{"a0", "a1", "a2"})
	b := items(t, registry, []string{"b0", "b1"})
	combined, err := NewCombinedDataset([]Dataset{a, b}, WithRegistry(registry))
	require.NoError(t, err)

	require.Equal(t, 5, combined.Len())
	require.Equal(t, []any{"a0", "a1", "a2", "b0", "b1"}, collect(t, combined))
	k, err := combined.RespectiveDatasetIndex(3)
	require.NoError(t, err)
	require.Equal(t, 1, k)
}

func TestSubDataset(t *testing.T) {
	registry := NewRegistry()
	parent := items(t, registry, rand.Perm(10))

	half, err := NewSubDatasetFromBounds(parent, 0, .5, WithRegistry(registry))
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3, 4}, half.Indices())

	tail, err := NewSubDatasetFromBounds(parent, -3, -1, WithRegistry(registry))
	require.NoError(t, err)
	require.Equal(t, []int{7, 8}, tail.Indices())

	all, err := NewSubDataset(parent, nil, WithRegistry(registry))
	require.NoError(t, err)
	require.Equal(t, collect(t, parent), collect(t, all))

	for _, bounds := range [][2]float64{{5, 5}, {6, 2}, {0, 11}, {1.5, 3}, {-11, 2}} {
		_, err = NewSubDatasetFromBounds(parent, bounds[0], bounds[1], WithRegistry(registry))
		require.ErrorIs(t, err, ErrInvalidBounds, "bounds %v", bounds)
	}

	_, err = NewSubDataset(parent, []int{0, 10}, WithRegistry(registry))
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	sub, err := NewSubDataset(parent, Indices([]int64{9, 0}), WithRegistry(registry))
	require.NoError(t, err)
	_, err = sub.Getitem(2)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestShuffledDataset(t *testing.T) {
	registry := NewRegistry()
	const length = 1 << 10
	parent := items(t, registry, rand.Perm(length))

	shuffled, err := NewShuffledDataset(parent, nil, WithRegistry(registry), WithSeed(1))
	require.NoError(t, err)
	require.Equal(t, length, shuffled.Len())

	perm := append([]int(nil), shuffled.ShuffledIndices()...)
	sort.Ints(perm)
	for index, v := range perm {
		require.Equal(t, index, v)
	}

	again, err := NewShuffledDataset(parent, nil, WithRegistry(registry), WithSeed(1))
	require.NoError(t, err)
	require.Equal(t, shuffled.ShuffledIndices(), again.ShuffledIndices())

	_, err = NewShuffledDataset(parent, []int{0, 1}, WithRegistry(registry))
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestFilteredItemsDataset(t *testing.T) {
	registry := NewRegistry()
	parent := items(t, registry, []int{1, 2, 3, 4, 5, 6})
	even, err := NewFilteredItemsDataset(parent, func(item any) bool { return item.(int)%2 == 0 }, WithRegistry(registry))
	require.NoError(t, err)
	require.Equal(t, []any{2, 4, 6}, collect(t, even))

	index, err := even.ParentIndex(2)
	require.NoError(t, err)
	require.Equal(t, 5, index)
}

func TestOrderedItemsDataset(t *testing.T) {
	registry := NewRegistry()
	words := []string{"pear", "fig", "apple", "kiwi", "plum", "date", "banana"}
	parent := items(t, registry, words)

	ordered, err := NewOrderedItemsDataset(parent, func(item any) int { return len(item.(string)) }, WithRegistry(registry))
	require.NoError(t, err)

	// stable: ties keep parent order
	want := []any{"fig", "pear", "kiwi", "plum", "date", "apple", "banana"}
	if diff := cmp.Diff(want, collect(t, ordered)); diff != "" {
		t.Fatalf("ordered items mismatch (-want +got):\n%s", diff)
	}

	byName, err := NewOrderedItemsDataset(parent, func(item any) string { return item.(string) }, WithRegistry(registry))
	require.NoError(t, err)
	got := collect(t, byName)
	require.True(t, sort.SliceIsSorted(got, func(i, j int) bool { return got[i].(string) < got[j].(string) }))
}

func TestAugmentedDataset(t *testing.T) {
	registry := NewRegistry()
	parent := items(t, registry, []int{1, 2, 3})
	double := TransformFunc(func(item any) (any, error) { return item.(int) * 2, nil })
	negate := TransformFunc(func(item any) (any, error) { return -item.(int), nil })

	augmented, err := NewAugmentedDataset(parent, []Transform{Identity, double, negate}, WithRegistry(registry))
	require.NoError(t, err)
	require.Equal(t, parent.Len()*3, augmented.Len())
	for index := 0; index < augmented.Len(); index++ {
		parentIndex, err := augmented.ParentIndex(index)
		require.NoError(t, err)
		require.Equal(t, index/3, parentIndex)
	}
	require.Equal(t, []any{1, 2, -1, 2, 4, -2, 3, 6, -3}, collect(t, augmented))

	plain, err := NewAugmentedDataset(parent, nil, WithRegistry(registry))
	require.NoError(t, err)
	require.Equal(t, collect(t, parent), collect(t, plain))
}

func TestPreprocessedDataset(t *testing.T) {
	registry := NewRegistry()
	parent := items(t, registry, []int{1, 2, 3})
	square := TransformFunc(func(item any) (any, error) { return item.(int) * item.(int), nil })

	preprocessed, err := NewPreprocessedDataset(parent, square, WithRegistry(registry))
	require.NoError(t, err)
	require.Equal(t, 3, preprocessed.Len())
	require.Equal(t, []any{1, 4, 9}, collect(t, preprocessed))
}

func TestSplitDataset(t *testing.T) {
	registry := NewRegistry()
	parent := items(t, registry, rand.Perm(100))

	split, err := NewSplitDataset(parent, []string{"train", "valid", "test"}, []float64{.7, .2, .1}, WithRegistry(registry))
	require.NoError(t, err)
	require.Equal(t, 100, split.Len())

	sizes, next := []int{70, 20, 10}, 0
	for j, sub := range split.Splits() {
		require.Equal(t, sizes[j], sub.Len())
		for _, index := range sub.Indices() {
			require.Equal(t, next, index)
			next++
		}
	}
	require.Equal(t, 100, next)

	valid, ok := split.Split("valid")
	require.True(t, ok)
	d, ok := registry.Lookup("valid")
	require.True(t, ok)
	require.Same(t, Dataset(valid), d)

	_, err = NewSplitDataset(parent, []string{"a"}, []float64{.5, .5}, WithRegistry(registry))
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = NewSplitDataset(parent, []string{"a", "b"}, []float64{.7, .7}, WithRegistry(registry))
	require.ErrorIs(t, err, ErrInvalidBounds)

	// a failed split leaves no registrations behind
	before := registry.Names()
	_, err = NewSplitDataset(parent, []string{"fresh", "train"}, []float64{.5, .5}, WithRegistry(registry))
	require.ErrorIs(t, err, ErrDuplicateReferenceName)
	require.Equal(t, before, registry.Names())
}

func TestUniqueItemsDataset(t *testing.T) {
	registry := NewRegistry()
	parent := items(t, registry, []string{"a", "b", "a", "c", "b", "d"})
	unique, err := NewUniqueItemsDataset(parent, nil, WithRegistry(registry))
	require.NoError(t, err)

	require.Equal(t, []any{"a", "b", "c", "d"}, collect(t, unique))
	require.Equal(t, []int{0, 1, 3, 5}, unique.Indices())
	require.True(t, unique.Contains("c"))
	require.False(t, unique.Contains("e"))
	index, ok := unique.IndexOf("d")
	require.True(t, ok)
	require.Equal(t, 3, index)

	// items rendered alike but typed differently stay distinct
	mixed, err := NewItemsDataset([]any{"1", 1, []byte("1"), 1}, WithRegistry(registry))
	require.NoError(t, err)
	unique, err = NewUniqueItemsDataset(mixed, nil, WithRegistry(registry))
	require.NoError(t, err)
	require.Equal(t, 3, unique.Len())
	require.Equal(t, []int{0, 1, 2}, unique.Indices())
}

func TestCrossDataset(t *testing.T) {
	registry := NewRegistry()
	a := items(t, registry, []string{"a", "b", "c"})
	b := items(t, registry, []string{"b", "c", "d"})

	cross, err := NewCrossDataset([]Dataset{a, b}, nil, WithRegistry(registry))
	require.NoError(t, err)
	require.Equal(t, 2, cross.Len())
	require.Equal(t, [][]int{{1, 0}, {2, 1}}, cross.RelativeIndices())

	item, err := cross.Getitem(1)
	require.NoError(t, err)
	require.Equal(t, []any{"c", "c"}, item)

	slice, err := cross.Slice(0, 2)
	require.NoError(t, err)
	require.Equal(t, []any{[]any{"b", "b"}, []any{"c", "c"}}, slice)
	_, err = cross.Slice(1, 3)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = NewCrossDataset([]Dataset{a, b}, nil, WithRegistry(registry), WithStrictMatch())
	require.ErrorIs(t, err, ErrLengthMismatch)

	c := items(t, registry, []string{"a", "b"})
	_, err = NewCrossDataset([]Dataset{a, c}, nil, WithRegistry(registry), WithStrictLength())
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = NewCrossDataset([]Dataset{a, b}, []HashFunc{Hash, Hash, Hash}, WithRegistry(registry))
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestCrossDatasetByID(t *testing.T) {
	registry := NewRegistry()
	images := items(t, registry, []map[string]any{{"id": "x", "png": 1}, {"id": "y", "png": 2}})
	labels := items(t, registry, []map[string]any{{"id": "y", "txt": "b"}, {"id": "x", "txt": "a"}, {"id": "x", "txt": "dup"}})

	cross, err := NewCrossDataset([]Dataset{images, labels}, []HashFunc{HashID}, WithRegistry(registry), WithStrictMatch())
	require.NoError(t, err)
	require.Equal(t, [][]int{{0, 1}, {1, 0}}, cross.RelativeIndices())
}

func BenchmarkCombinedDataset(b *testing.B) {
	b.StopTimer()
	registry := NewRegistry()
	datasets := make([]Dataset, 0, 1<<6)
	for len(datasets) < cap(datasets) {
		datasets = append(datasets, items(b, registry, rand.Perm(1<<10)))
	}
	combined, _ := NewCombinedDataset(datasets, WithRegistry(registry))
	b.StartTimer()

	for n := 0; n < b.N; n++ {
		combined.Getitem(n % combined.Len())
	}
}
