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
	"sort"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Loaded is the process-wide table of loaded datasets.  Constructors register
// into it unless WithRegistry is given.
var Loaded = NewRegistry()

// Registry maps reference names to loaded datasets.  Names are unique at any
// instant; a Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	datasets map[string]Dataset
	parent   *Registry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		datasets: make(map[string]Dataset),
	}
}

// register assigns a reference name to the given dataset and records it.
// An empty name is derived from kind: the first instance takes kind itself,
// later ones kind_1, kind_2 and so on.
func (r *Registry) register(d registrable, kind, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		name = kind
		for n := 1; r.taken(name); n++ {
			name = fmt.Sprintf("%s_%d", kind, n)
		}
	} else if r.taken(name) {
		return errors.Wrapf(ErrDuplicateReferenceName, "%q", name)
	}

	d.setReferenceName(name)
	r.datasets[name] = d
	glog.V(1).Infof("loaded %s %q with %d items", kind, name, d.Len())
	return nil
}

// taken reports whether the given name is in use.  The caller holds r.mu.
func (r *Registry) taken(name string) bool {
	if _, found := r.datasets[name]; found {
		return true
	}
	if r.parent != nil {
		_, found := r.parent.Lookup(name)
		return found
	}
	return false
}

// Lookup returns the dataset registered under the given name.  A staged
// registry falls back to the registry it was staged from.
func (r *Registry) Lookup(name string) (Dataset, bool) {
	r.mu.RLock()
	d, ok := r.datasets[name]
	r.mu.RUnlock()
	if !ok && r.parent != nil {
		return r.parent.Lookup(name)
	}
	return d, ok
}

// Stage returns an empty registry layered over r.  Names registered into the
// stage are checked against r but stay invisible to it until Commit; a stage
// that is never committed is simply dropped.
func (r *Registry) Stage() *Registry {
	stage := NewRegistry()
	stage.parent = r
	return stage
}

// Commit moves the datasets registered into a stage to the registry it was
// staged from.  If a staged name was taken there in the meantime, nothing is
// moved and ErrDuplicateReferenceName is returned.
func (r *Registry) Commit() error {
	if r.parent == nil {
		return errors.New("registry is not staged")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()

	for name := range r.datasets {
		if r.parent.taken(name) {
			return errors.Wrapf(ErrDuplicateReferenceName, "%q", name)
		}
	}
	for name, d := range r.datasets {
		r.parent.datasets[name] = d
	}
	r.datasets = make(map[string]Dataset)
	return nil
}

// Release removes the given name from the registry, making it available
// again.  The dataset itself stays usable by whoever holds it.
func (r *Registry) Release(name string) {
	r.mu.Lock()
	delete(r.datasets, name)
	r.mu.Unlock()
}

// Names returns the reference names registered directly into r in ascending
// order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.datasets))
	for name := range r.datasets {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of registered datasets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.datasets)
}

// Lookup returns the dataset registered in Loaded under the given name.
func Lookup(name string) (Dataset, bool) {
	return Loaded.Lookup(name)
}
