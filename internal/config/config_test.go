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

package config

import (
	"strings"
	"testing"

	"github.com/9rum/dlcm/internal/data"
	"github.com/stretchr/testify/require"
)

const module = `
datasets:
  corpus:
    name: ItemsDataset
    params:
      items: [a, b, c, d, e, f, g, h]
  train:
    name: SubDataset
    params:
      parent_dataset: corpus
      start: 0
      end: 0.75
  valid:
    name: SubDataset
    params:
      parent_dataset: corpus
      start: -2
      end: 8
`

func newFactory() *data.Factory {
	return data.NewFactory(data.NewRegistry(), nil, nil)
}

func TestLoadKeepsOrder(t *testing.T) {
	config, err := Load(strings.NewReader(module))
	require.NoError(t, err)
	require.Len(t, config.Datasets, 3)

	names := make([]string, 0, len(config.Datasets))
	for _, entry := range config.Datasets {
		names = append(names, entry.Name)
	}
	require.Equal(t, []string{"corpus", "train", "valid"}, names)
	require.Equal(t, "SubDataset", config.Datasets[1].Descriptor.Name)
	require.Nil(t, config.Preprocessing)
	require.Nil(t, config.Augmentation)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("datasets: {}\nschedule: static\n"))
	require.Error(t, err)
}

func TestLoadEmpty(t *testing.T) {
	config, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, config.Datasets)
}

func TestBuild(t *testing.T) {
	config, err := Load(strings.NewReader(module))
	require.NoError(t, err)

	factory := newFactory()
	datasets, err := config.Build(factory)
	require.NoError(t, err)
	require.Equal(t, 8, datasets["corpus"].Len())
	require.Equal(t, 6, datasets["train"].Len())
	require.Equal(t, 2, datasets["valid"].Len())

	item, err := datasets["valid"].Getitem(0)
	require.NoError(t, err)
	require.Equal(t, "g", item)

	for _, name := range []string{"corpus", "train", "valid"} {
		d, ok := factory.Registry().Lookup(name)
		require.True(t, ok, name)
		require.Same(t, datasets[name], d)
	}
}

func TestBuildWrapped(t *testing.T) {
	config, err := Load(strings.NewReader(`
datasets:
  corpus:
    name: ItemsDataset
    params:
      items: [a, b, c, d, e, f, g, h]
  head:
    name: SubDataset
    params:
      parent_dataset: corpus
      end: 3
preprocessing:
  fn: id
  apply: true
augmentation:
  augmentations: [id, id, id]
  apply: true
`))
	require.NoError(t, err)

	factory := newFactory()
	datasets, err := config.Build(factory)
	require.NoError(t, err)

	corpus, ok := datasets["corpus"].(*data.AugmentedDataset)
	require.True(t, ok)
	require.Equal(t, 24, corpus.Len())

	preprocessed, ok := corpus.Parent().(*data.PreprocessedDataset)
	require.True(t, ok)

	// the key names the dataset as created, the wrappers are named automatically
	raw, ok := factory.Registry().Lookup("corpus")
	require.True(t, ok)
	require.Same(t, raw, preprocessed.Parent())
	require.NotEqual(t, "corpus", corpus.ReferenceName())

	item, err := corpus.Getitem(5)
	require.NoError(t, err)
	require.Equal(t, "b", item)

	// head selects from the unwrapped corpus and is wrapped once
	require.Equal(t, 9, datasets["head"].Len())
	require.Same(t, raw, data.TopDataset(datasets["head"]))
}

func TestBuildUnknownConstructor(t *testing.T) {
	config, err := Load(strings.NewReader("datasets:\n  x:\n    name: NoSuchDataset\n"))
	require.NoError(t, err)

	_, err = config.Build(newFactory())
	require.ErrorIs(t, err, data.ErrUnknownName)
}

func TestBuildChained(t *testing.T) {
	config, err := Load(strings.NewReader(`
datasets:
  corpus:
    name: ItemsDataset
    params:
      items: [a, b, c, d]
  train:
    name: SubDataset
    params:
      parent_dataset: corpus
      start: 0
      end: 0.75
augmentation:
  augmentations: [id, id]
`))
	require.NoError(t, err)

	datasets, err := config.Build(newFactory())
	require.NoError(t, err)
	require.Equal(t, 8, datasets["corpus"].Len())
	require.Equal(t, 6, datasets["train"].Len())

	var items []any
	for i := 0; i < datasets["train"].Len(); i++ {
		item, err := datasets["train"].Getitem(i)
		require.NoError(t, err)
		items = append(items, item)
	}
	require.Equal(t, []any{"a", "a", "b", "b", "c", "c"}, items)
}

func TestBuildSplits(t *testing.T) {
	config, err := Load(strings.NewReader(`
datasets:
  corpus:
    name: SplitDataset
    params:
      parent_dataset:
        name: ItemsDataset
        params:
          items: [1, 2, 3, 4, 5, 6, 7, 8, 9, 10]
      reference_names: [tr, va]
      split_ratios: [0.8, 0.2]
preprocessing:
  fn: id
augmentation:
  augmentations: [id, id]
  apply: true
`))
	require.NoError(t, err)

	factory := newFactory()
	datasets, err := config.Build(factory)
	require.NoError(t, err)
	require.Len(t, datasets, 3)
	require.Equal(t, 20, datasets["corpus"].Len())
	require.Equal(t, 16, datasets["tr"].Len())
	require.Equal(t, 4, datasets["va"].Len())

	for _, name := range []string{"tr", "va"} {
		augmented, ok := datasets[name].(*data.AugmentedDataset)
		require.True(t, ok, name)
		preprocessed, ok := augmented.Parent().(*data.PreprocessedDataset)
		require.True(t, ok, name)

		split, ok := factory.Registry().Lookup(name)
		require.True(t, ok, name)
		require.Same(t, split, preprocessed.Parent())
	}

	item, err := datasets["va"].Getitem(2)
	require.NoError(t, err)
	require.Equal(t, 10, item)
}

func TestBuildApply(t *testing.T) {
	for _, tt := range []struct {
		name  string
		apply string
		want  int
	}{
		{"omitted", "", 4},
		{"true", "  apply: true\n", 4},
		{"false", "  apply: false\n", 2},
	} {
		t.Run(tt.name, func(t *testing.T) {
			config, err := Load(strings.NewReader(
				"datasets:\n  x:\n    name: ItemsDataset\n    params: {items: [1, 2]}\n" +
					"augmentation:\n  augmentations: [id, id]\n" + tt.apply))
			require.NoError(t, err)

			datasets, err := config.Build(newFactory())
			require.NoError(t, err)
			require.Equal(t, tt.want, datasets["x"].Len())
		})
	}
}

func TestBuildAtomic(t *testing.T) {
	config, err := Load(strings.NewReader(`
datasets:
  corpus:
    name: ItemsDataset
    params:
      items: [a, b, c, d]
  broken:
    name: SubDataset
    params:
      parent_dataset: corpus
      start: 3
      end: 1
`))
	require.NoError(t, err)

	factory := newFactory()
	_, err = config.Build(factory)
	require.ErrorIs(t, err, data.ErrInvalidBounds)
	require.Zero(t, factory.Registry().Len())

	// a fixed module builds into the same registry
	config.Datasets[1].Descriptor.Params["start"] = 1
	config.Datasets[1].Descriptor.Params["end"] = 4
	datasets, err := config.Build(factory)
	require.NoError(t, err)
	require.Equal(t, 3, datasets["broken"].Len())
}
