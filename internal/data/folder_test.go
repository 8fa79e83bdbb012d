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
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// tree creates a filesystem holding the given files.
func tree(t *testing.T, files map[string]string) afero.Fs {
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.FromSlash(path), []byte(content), 0o644))
	}
	return fs
}

func TestListDirectoryDataset(t *testing.T) {
	fs := tree(t, map[string]string{
		"data/b.txt":       "b",
		"data/a.txt":       "a",
		"data/c.png":       "c",
		"data/sub/d.txt":   "d",
		"data/sub/e/f.txt": "f",
	})
	registry := NewRegistry()

	flat, err := NewListDirectoryDataset(fs, "data", "", WithRegistry(registry))
	require.NoError(t, err)
	require.Equal(t, []any{
		filepath.Join("data", "a.txt"),
		filepath.Join("data", "b.txt"),
		filepath.Join("data", "c.png"),
	}, collect(t, flat))
	require.True(t, IsInMemory(flat))

	deep, err := NewListDirectoryDataset(fs, "data", "**/*.txt", WithRegistry(registry))
	require.NoError(t, err)
	require.Equal(t, 4, deep.Len())

	_, err = NewListDirectoryDataset(fs, "data/a.txt", "", WithRegistry(registry))
	require.Error(t, err)
	_, err = NewListDirectoryDataset(fs, "missing", "", WithRegistry(registry))
	require.Error(t, err)
}

func TestFilesWithinDirectoryDataset(t *testing.T) {
	fs := tree(t, map[string]string{
		"data/x.txt":  "hello",
		"data/x.yaml": "label: 1",
		"data/y.TXT":  "world",
		"data/y.yml":  "label: 2",
		"data/z.bin":  "skipped",
	})
	registry := NewRegistry()

	files, err := NewFilesWithinDirectoryDataset(fs, "data",
		map[string]Loader{".txt": ReadText, ".yaml,.yml": ReadYAML},
		map[string]string{".yaml,.yml": "label"},
		WithRegistry(registry))
	require.NoError(t, err)
	require.Equal(t, 4, files.Len())
	require.False(t, IsInMemory(files))

	item, err := files.Getitem(0)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": filepath.Join("data", "x.txt"), ".txt": "hello"}, item)

	item, err = files.Getitem(3)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": filepath.Join("data", "y.yml"), "label": map[string]any{"label": 2}}, item)

	// lazy datasets cannot be scanned
	_, err = NewUniqueItemsDataset(files, HashID, WithRegistry(registry))
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFolderFactory(t *testing.T) {
	fs := tree(t, map[string]string{
		"images/1.png": "\x89PNG",
		"images/2.png": "\x89PNG",
	})
	f := NewFactory(NewRegistry(), nil, fs)

	d, err := f.Create(Descriptor{Name: "FilesWithinDirectoryDataset", Params: map[string]any{
		"directory_path":       "images",
		"extension_loader_map": map[string]any{".png": "read_bytes"},
	}})
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())

	item, err := d.Getitem(1)
	require.NoError(t, err)
	require.Equal(t, []byte("\x89PNG"), item.(map[string]any)[".png"])
}

func TestCrossFoldersByStem(t *testing.T) {
	fs := tree(t, map[string]string{
		"img/x.png": "x",
		"img/y.png": "y",
		"img/z.txt": "notes",
		"lbl/x.png": "1",
		"lbl/w.png": "0",
	})
	registry := NewRegistry()

	images, err := NewListDirectoryDataset(fs, "img", "*.png", WithRegistry(registry))
	require.NoError(t, err)
	labels, err := NewListDirectoryDataset(fs, "lbl", "", WithRegistry(registry))
	require.NoError(t, err)

	cross, err := NewCrossDataset([]Dataset{images, labels}, []HashFunc{HashStem}, WithRegistry(registry))
	require.NoError(t, err)
	require.Equal(t, 1, cross.Len())

	item, err := cross.Getitem(0)
	require.NoError(t, err)
	require.Equal(t, []any{filepath.Join("img", "x.png"), filepath.Join("lbl", "x.png")}, item)

	// full paths never match across folders
	cross, err = NewCrossDataset([]Dataset{images, labels}, nil, WithRegistry(registry))
	require.NoError(t, err)
	require.Zero(t, cross.Len())
}

func TestCrossFoldersByStemFactory(t *testing.T) {
	fs := tree(t, map[string]string{
		"voc/JPEGImages/2007_000032.jpg":  "a",
		"voc/JPEGImages/2007_000039.jpg":  "b",
		"voc/JPEGImages/2007_000063.jpg":  "c",
		"voc/Annotations/2007_000032.xml": "<a/>",
		"voc/Annotations/2007_000063.xml": "<c/>",
		"voc/Annotations/README":          "",
	})
	f := NewFactory(NewRegistry(), nil, fs)
	require.NoError(t, f.Functions().Register("xml", func(item any) bool { return filepath.Ext(item.(string)) == ".xml" }))

	d, err := f.Create(Descriptor{Name: "CrossDataset", Params: map[string]any{
		"datasets": []any{
			Descriptor{Name: "ListDirectoryDataset", Params: map[string]any{"directory_path": "voc/JPEGImages"}},
			Descriptor{Name: "FilteredItemsDataset", Params: map[string]any{
				"parent_dataset": Descriptor{Name: "ListDirectoryDataset", Params: map[string]any{"directory_path": "voc/Annotations"}},
				"filter_fn":      "xml",
			}},
		},
		"hash_fns":     "stem",
		"strict_match": true,
	}})
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())

	item, err := d.Getitem(1)
	require.NoError(t, err)
	require.Equal(t, []any{
		filepath.Join("voc", "JPEGImages", "2007_000063.jpg"),
		filepath.Join("voc", "Annotations", "2007_000063.xml"),
	}, item)
}
