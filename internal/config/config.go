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

// Package config loads data modules: named dataset descriptors with optional
// preprocessing and augmentation applied to each of them.
//
// A data module reads as follows:
//
//	datasets:
//	  corpus:
//	    name: ItemsDataset
//	    params: {items: [a, b, c, d]}
//	  train:
//	    name: SubDataset
//	    params: {parent_dataset: corpus, start: 0, end: 0.75}
//	preprocessing:
//	  fn: id
//	  apply: true
//	augmentation:
//	  augmentations: [id, id]
//	  apply: false
//
// Datasets are created in the order they are listed, so a dataset may refer
// to the ones listed before it by name.  Such a reference resolves to the
// dataset as created: preprocessing and augmentation are applied once to
// every dataset of the module after all of them are created.  An omitted
// apply flag means true.
//
// The named splits of a SplitDataset join the module alongside the split
// dataset itself.
package config

import (
	"io"

	"github.com/9rum/dlcm/internal/data"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Entry is a dataset descriptor under its reference name.
type Entry struct {
	Name       string
	Descriptor data.Descriptor
}

// Datasets is an ordered list of named descriptors.
type Datasets []Entry

// UnmarshalYAML decodes a mapping while keeping the order of its keys.
func (d *Datasets) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: datasets must be a mapping", value.Line)
	}
	*d = make(Datasets, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var entry Entry
		if err := value.Content[i].Decode(&entry.Name); err != nil {
			return err
		}
		if err := value.Content[i+1].Decode(&entry.Descriptor); err != nil {
			return errors.Wrapf(err, "dataset %q", entry.Name)
		}
		*d = append(*d, entry)
	}
	return nil
}

// Preprocessing wraps every dataset with a PreprocessedDataset.
type Preprocessing struct {
	Fn    string `yaml:"fn"`
	Apply *bool  `yaml:"apply"`
}

func (p *Preprocessing) applies() bool {
	return p != nil && (p.Apply == nil || *p.Apply)
}

// Augmentation wraps every dataset with an AugmentedDataset.
type Augmentation struct {
	Augmentations []string `yaml:"augmentations"`
	Apply         *bool    `yaml:"apply"`
}

func (a *Augmentation) applies() bool {
	return a != nil && (a.Apply == nil || *a.Apply)
}

// Config is a data module.
type Config struct {
	Datasets      Datasets       `yaml:"datasets"`
	Preprocessing *Preprocessing `yaml:"preprocessing"`
	Augmentation  *Augmentation  `yaml:"augmentation"`
}

// Load parses a data module, rejecting unknown fields.
func Load(r io.Reader) (*Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	config := new(Config)
	if err := decoder.Decode(config); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "parse data module")
	}
	return config, nil
}

// Build creates the datasets of the data module in order, registering each
// under its key, then wraps every dataset of the module with preprocessing
// and augmentation.  The returned module maps keys and split names to the
// wrapped datasets; the wrappers themselves are named automatically.  Build
// registers either all datasets or none.
func (c *Config) Build(factory *data.Factory) (datasets map[string]data.Dataset, err error) {
	err = factory.Atomic(func(tx *data.Factory) error {
		datasets, err = c.build(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return datasets, nil
}

func (c *Config) build(factory *data.Factory) (map[string]data.Dataset, error) {
	type member struct {
		name    string
		dataset data.Dataset
	}
	members := make([]member, 0, len(c.Datasets))

	for _, entry := range c.Datasets {
		params := make(map[string]any, len(entry.Descriptor.Params)+1)
		for key, value := range entry.Descriptor.Params {
			params[key] = value
		}
		params["reference_name"] = entry.Name

		dataset, err := factory.Create(data.Descriptor{Name: entry.Descriptor.Name, Params: params})
		if err != nil {
			return nil, errors.Wrapf(err, "dataset %q", entry.Name)
		}
		members = append(members, member{entry.Name, dataset})

		if split, ok := dataset.(*data.SplitDataset); ok {
			for _, sub := range split.Splits() {
				members = append(members, member{sub.ReferenceName(), sub})
			}
		}
	}

	datasets := make(map[string]data.Dataset, len(members))
	for _, m := range members {
		dataset, err := c.wrap(factory, m.dataset)
		if err != nil {
			return nil, errors.Wrapf(err, "dataset %q", m.name)
		}
		glog.Infof("built dataset %q with %d items", m.name, dataset.Len())
		datasets[m.name] = dataset
	}
	return datasets, nil
}

// wrap applies preprocessing, then augmentation, to the given dataset.
func (c *Config) wrap(factory *data.Factory, dataset data.Dataset) (data.Dataset, error) {
	var err error
	if c.Preprocessing.applies() {
		params := map[string]any{"parent_dataset": dataset}
		if c.Preprocessing.Fn != "" {
			params["preprocessing_fn"] = c.Preprocessing.Fn
		}
		if dataset, err = factory.Create(data.Descriptor{Name: "PreprocessedDataset", Params: params}); err != nil {
			return nil, errors.Wrap(err, "preprocess")
		}
	}

	if c.Augmentation.applies() {
		augmentations := make([]any, 0, len(c.Augmentation.Augmentations))
		for _, name := range c.Augmentation.Augmentations {
			augmentations = append(augmentations, name)
		}
		dataset, err = factory.Create(data.Descriptor{Name: "AugmentedDataset", Params: map[string]any{
			"parent_dataset": dataset,
			"augmentations":  augmentations,
		}})
		if err != nil {
			return nil, errors.Wrap(err, "augment")
		}
	}
	return dataset, nil
}
