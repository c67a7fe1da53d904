/*
Copyright 2024 The Queued Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package queue

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is a queue identifier: a 128-bit value rendered as the canonical
// 36-character hyphenated hex string.
type ID [16]byte

// NewID generates a random version-4 queue identifier.
func NewID() (ID, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return ID{}, fmt.Errorf("generate queue id: %w", err)
	}
	return ID(u), nil
}

// ParseID parses a client-supplied identifier. It must decode to exactly
// 16 bytes; anything else is rejected as malformed.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return ID(u), nil
}

// String renders the identifier in 8-4-4-4-12 hyphenated hex form.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// EqualFold compares two queue identifiers. Identifiers are fixed-size
// byte arrays so comparison is always exact; the name mirrors the
// case-insensitive lookup performed on the string form in the registry.
func (id ID) EqualFold(other ID) bool {
	return id == other
}
