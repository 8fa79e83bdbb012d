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
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ListDirectoryDataset holds the paths of the files of a directory matching
// a pattern, in lexical order.
type ListDirectoryDataset struct {
	ItemsDataset
	directory string
}

// NewListDirectoryDataset lists the files under directory matching the given
// doublestar pattern ("*" when empty; "**/*" descends into subdirectories).
func NewListDirectoryDataset(fs afero.Fs, directory, pattern string, opts ...Option) (*ListDirectoryDataset, error) {
	o := newOptions(opts)
	if pattern == "" {
		pattern = "*"
	}
	if ok, err := afero.IsDir(fs, directory); err != nil {
		return nil, errors.Wrapf(err, "stat %q", directory)
	} else if !ok {
		return nil, errors.Errorf("%q is not a directory", directory)
	}

	matches, err := doublestar.Glob(afero.NewIOFS(afero.NewBasePathFs(fs, directory)), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrapf(err, "glob %q in %q", pattern, directory)
	}
	sort.Strings(matches)
	paths := make([]string, 0, len(matches))
	for _, match := range matches {
		paths = append(paths, filepath.Join(directory, filepath.FromSlash(match)))
	}

	dataset := &ListDirectoryDataset{
		ItemsDataset: ItemsDataset{items: Items(paths)},
		directory:    directory,
	}
	if err = o.registry.register(dataset, "ListDirectoryDataset", o.name); err != nil {
		return nil, err
	}
	return dataset, nil
}

// Directory returns the listed directory.
func (d *ListDirectoryDataset) Directory() string {
	return d.directory
}

// Loader reads the file at the given path.
type Loader func(fs afero.Fs, path string) (any, error)

// ReadBytes loads a file as a byte slice.
func ReadBytes(fs afero.Fs, path string) (any, error) {
	return afero.ReadFile(fs, path)
}

// ReadText loads a file as a string.
func ReadText(fs afero.Fs, path string) (any, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ReadYAML loads a YAML or JSON document.
func ReadYAML(fs afero.Fs, path string) (any, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	var v any
	if err = yaml.Unmarshal(b, &v); err != nil {
		return nil, errors.Wrapf(err, "decode %q", path)
	}
	return v, nil
}

// FilesWithinDirectoryDataset loads the files of a directory whose extension
// has a loader.  Item i is a map holding the file path under "id" and the
// loaded content under the key mapped to its extension (the extension itself
// by default).
//
// Items are loaded on demand, so the dataset cannot be deduplicated or
// crossed.  To pair files across folders, cross ListDirectoryDataset listings
// with HashStem and load the matched paths instead.
type FilesWithinDirectoryDataset struct {
	Composition
	fs      afero.Fs
	loaders map[string]Loader
	keys    map[string]string
}

// NewFilesWithinDirectoryDataset creates a new dataset over the files of the
// given directory.  Keys of loaders and keys are extensions such as ".png";
// a comma-separated key such as ".jpg,.jpeg" applies to each extension.
func NewFilesWithinDirectoryDataset(fs afero.Fs, directory string, loaders map[string]Loader, keys map[string]string, opts ...Option) (*FilesWithinDirectoryDataset, error) {
	o := newOptions(opts)
	dataset := &FilesWithinDirectoryDataset{
		fs:      fs,
		loaders: flatten(loaders),
		keys:    flatten(keys),
	}

	scratch := NewRegistry()
	list, err := NewListDirectoryDataset(fs, directory, "*", WithRegistry(scratch))
	if err != nil {
		return nil, err
	}
	filtered, err := NewFilteredItemsDataset(list, func(item any) bool {
		_, ok := dataset.loaders[strings.ToLower(filepath.Ext(item.(string)))]
		return ok
	}, WithRegistry(scratch))
	if err != nil {
		return nil, err
	}
	if skipped := list.Len() - filtered.Len(); 0 < skipped {
		glog.Warningf("skipped %d files without a loader in %q", skipped, directory)
	}

	dataset.init(filtered, o)
	if err = o.registry.register(dataset, "FilesWithinDirectoryDataset", o.name); err != nil {
		return nil, err
	}
	return dataset, nil
}

// flatten splits comma-separated extension keys and lower-cases them.
func flatten[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for key, value := range m {
		for _, ext := range strings.Split(key, ",") {
			out[strings.ToLower(strings.TrimSpace(ext))] = value
		}
	}
	return out
}

func (d *FilesWithinDirectoryDataset) Getitem(index int) (any, error) {
	item, err := getitem(d, index)
	if err != nil {
		return nil, err
	}
	path := item.(string)
	ext := strings.ToLower(filepath.Ext(path))
	value, err := d.loaders[ext](d.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "load %q", path)
	}
	key, ok := d.keys[ext]
	if !ok {
		key = ext
	}
	return map[string]any{
		"id": path,
		key:  value,
	}, nil
}

// InMemory reports false: items are read from the filesystem on demand.
func (d *FilesWithinDirectoryDataset) InMemory() bool {
	return false
}

func (d *ListDirectoryDataset) Copy() Dataset {
	return &ListDirectoryDataset{
		ItemsDataset: ItemsDataset{
			DatasetBase: d.DatasetBase,
			items:       d.items,
		},
		directory: d.directory,
	}
}

func (d *FilesWithinDirectoryDataset) Copy() Dataset {
	return &FilesWithinDirectoryDataset{
		Composition: d.duplicate(),
		fs:          d.fs,
		loaders:     d.loaders,
		keys:        d.keys,
	}
}
