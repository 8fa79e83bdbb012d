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

var (
	// ErrIndexOutOfRange is returned when an index falls outside [0, Len()).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidBounds is returned when subset bounds or split fractions are
	// malformed.
	ErrInvalidBounds = errors.New("invalid bounds")

	// ErrLengthMismatch is returned when two lengths that must agree differ.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrTypeMismatch is returned when a dataset of the wrong kind is given,
	// e.g. a lazy parent to an operator that scans its items.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrDuplicateReferenceName is returned when a reference name is already
	// taken in the registry.
	ErrDuplicateReferenceName = errors.New("duplicate reference name")

	// ErrUnknownName is returned when a constructor, function or reference
	// name cannot be resolved.
	ErrUnknownName = errors.New("unknown name")
)

// outOfRange wraps ErrIndexOutOfRange with the offending index.
func outOfRange(index, length int) error {
	return errors.Wrapf(ErrIndexOutOfRange, "index %d with length %d", index, length)
}
