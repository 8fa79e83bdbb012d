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

// Package sampler provides batch samplers over composed datasets.  Batches
// hold global indices of the sampled dataset and are stratified by the source
// dataset of a CombinedDataset each index resolves to, so that every batch
// draws from a single source.
package sampler

import (
	"math/rand"
	"sync"

	"github.com/9rum/dlcm/internal/data"
	"github.com/pkg/errors"
)

// Sampler represents the batch sampler.
// All implementations must embed SamplerBase for forward compatibility.
type Sampler interface {
	// Sample selects data samples for the next batch.  This returns nil once
	// the current epoch is exhausted.
	Sample() []int

	// Len returns the number of full batches in each training epoch.
	Len() int

	// OnEpochEnd is called at the end of an epoch during training.
	OnEpochEnd(epoch int64)

	// OnTrainEnd terminates the training environment.
	OnTrainEnd()
}

// SamplerBase must be embedded to have forward compatible implementations.
type SamplerBase struct {
}

func (SamplerBase) Sample() (_ []int) {
	return
}
func (SamplerBase) Len() (_ int) {
	return
}
func (SamplerBase) OnEpochEnd(epoch int64) {}
func (SamplerBase) OnTrainEnd()            {}

// HeteroDatasetsBatchSampler yields batches whose indices all resolve to the
// same source of the CombinedDataset at the top of the sampled dataset.  Each
// source has its own batch size.
type HeteroDatasetsBatchSampler struct {
	SamplerBase
	dataset    data.Dataset
	combined   *data.CombinedDataset
	batchSizes []int
	shuffle    bool
	dropLast   bool
	seed       int64

	// owners maps each global index to its source.
	owners []int
	counts []int

	mu   sync.Mutex
	iter *Iterator
}

// NewHeteroDatasetsBatchSampler creates a new batch sampler over the given
// dataset, which must resolve through its composition chain to a
// CombinedDataset.  batchSizes holds one batch size per source.
func NewHeteroDatasetsBatchSampler(dataset data.Dataset, batchSizes []int, shuffle, dropLast bool, seed int64) (*HeteroDatasetsBatchSampler, error) {
	combined, ok := data.TopDataset(dataset).(*data.CombinedDataset)
	if !ok {
		return nil, errors.Wrapf(data.ErrTypeMismatch, "dataset %q does not resolve to a CombinedDataset", dataset.ReferenceName())
	}
	if len(batchSizes) != len(combined.Datasets()) {
		return nil, errors.Wrapf(data.ErrLengthMismatch, "%d batch sizes for %d datasets", len(batchSizes), len(combined.Datasets()))
	}
	for k, batchSize := range batchSizes {
		if batchSize <= 0 {
			return nil, errors.Wrapf(data.ErrInvalidBounds, "batch size %d of dataset %d", batchSize, k)
		}
	}

	sampler := &HeteroDatasetsBatchSampler{
		dataset:    dataset,
		combined:   combined,
		batchSizes: batchSizes,
		shuffle:    shuffle,
		dropLast:   dropLast,
		seed:       seed,
		owners:     make([]int, dataset.Len()),
		counts:     make([]int, len(batchSizes)),
	}
	for index := range sampler.owners {
		top, err := data.TopParentIndex(dataset, index)
		if err != nil {
			return nil, err
		}
		k, err := combined.RespectiveDatasetIndex(top)
		if err != nil {
			return nil, err
		}
		sampler.owners[index] = k
		sampler.counts[k]++
	}
	return sampler, nil
}

// Sample returns the next batch of the current epoch.
func (s *HeteroDatasetsBatchSampler) Sample() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.iter == nil {
		s.iter = s.Iter(rand.New(rand.NewSource(s.seed)))
	}
	batch, ok := s.iter.Next()
	if !ok {
		return nil
	}
	return batch
}

// Len returns the number of full batches per epoch.  Under-sized batches
// flushed at the end of an epoch are not counted.
func (s *HeteroDatasetsBatchSampler) Len() int {
	steps := 0
	for k, count := range s.counts {
		steps += count / s.batchSizes[k]
	}
	return steps
}

// OnEpochEnd starts a new pass, seeded with the given epoch.
func (s *HeteroDatasetsBatchSampler) OnEpochEnd(epoch int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.iter = s.Iter(rand.New(rand.NewSource(s.seed + epoch)))
}

// OnTrainEnd drops the current pass.
func (s *HeteroDatasetsBatchSampler) OnTrainEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.iter = nil
}

// Source returns the source of the given global index.
func (s *HeteroDatasetsBatchSampler) Source(index int) int {
	return s.owners[index]
}

// Counts returns the number of global indices of each source.
func (s *HeteroDatasetsBatchSampler) Counts() []int {
	return s.counts
}

// Iter starts a new single-pass iteration.  Global indices are traversed in
// the order of a permutation drawn from rng when shuffling, sequentially
// otherwise.  Incomplete batches left at the end of the traversal are
// emitted by ascending source index, not in the order their sources were
// first met.  An Iterator is not safe for concurrent use.
func (s *HeteroDatasetsBatchSampler) Iter(rng *rand.Rand) *Iterator {
	var order []int
	if s.shuffle {
		if rng != nil {
			order = rng.Perm(len(s.owners))
		} else {
			order = rand.Perm(len(s.owners))
		}
	} else {
		order = make([]int, len(s.owners))
		for index := range order {
			order[index] = index
		}
	}

	buffers := make([][]int, len(s.batchSizes))
	for k := range buffers {
		buffers[k] = make([]int, 0, s.batchSizes[k])
	}
	return &Iterator{
		sampler: s,
		order:   order,
		buffers: buffers,
	}
}

// Iterator walks one pass over the global indices.
type Iterator struct {
	sampler *HeteroDatasetsBatchSampler
	order   []int
	next    int
	buffers [][]int
	flushed int
}

// Next returns the next batch.  Once the traversal is exhausted, the pending
// incomplete batches are flushed unless the sampler drops them: source 0
// first, then source 1 and so on, whatever order the sources were met in
// during the traversal.
func (it *Iterator) Next() ([]int, bool) {
	for it.next < len(it.order) {
		index := it.order[it.next]
		it.next++

		k := it.sampler.owners[index]
		it.buffers[k] = append(it.buffers[k], index)
		if len(it.buffers[k]) == it.sampler.batchSizes[k] {
			batch := it.buffers[k]
			it.buffers[k] = make([]int, 0, it.sampler.batchSizes[k])
			return batch, true
		}
	}

	if it.sampler.dropLast {
		return nil, false
	}
	for it.flushed < len(it.buffers) {
		batch := it.buffers[it.flushed]
		it.buffers[it.flushed] = nil
		it.flushed++
		if 0 < len(batch) {
			return batch, true
		}
	}
	return nil, false
}
