// Copyright 2021 Torben Schinke
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package registry is the process-wide, concurrent type registry: a
// NamedItemContext-keyed map from qualified name to resolved definition plus
// provenance (spec §3 Type registry, §4.5.1 Pass 1).
package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/token"
)

// Entry is one registered definition plus where it came from.
type Entry struct {
	Def        core.Definition
	Span       token.Span
	SourcePath string
}

// Registry is the concurrent map keyed by NamedItemContext. Insertion is the
// only mutation; reads race freely. Insert is idempotent under identical
// re-insertion and returns an error on conflicting re-insertion (spec §3
// invariant "exactly one source position").
type Registry struct {
	mu      sync.RWMutex
	entries map[core.NamedItemContext]Entry
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[core.NamedItemContext]Entry)}
}

// Insert registers def under key. Re-inserting an identical definition is a
// no-op; inserting a conflicting definition under an already-claimed key is
// an error.
func (r *Registry) Insert(key core.NamedItemContext, def core.Definition, span token.Span, sourcePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[key]; ok {
		if reflect.DeepEqual(existing.Def, def) {
			return nil
		}

		return token.NewPosError(token.KindNamespace, span,
			fmt.Sprintf("conflicting redefinition of %q", key),
			token.NewErrDetail(existing.Span, "first declared here"))
	}

	r.entries[key] = Entry{Def: def, Span: span, SourcePath: sourcePath}

	return nil
}

// Lookup returns the entry for key and whether it exists.
func (r *Registry) Lookup(key core.NamedItemContext) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[key]
	return e, ok
}

// Contains reports whether key is registered.
func (r *Registry) Contains(key core.NamedItemContext) bool {
	_, ok := r.Lookup(key)
	return ok
}

// All returns a snapshot of every registered key. The order is unspecified;
// callers needing determinism should sort with core.SortNamedItemContexts.
func (r *Registry) All() []core.NamedItemContext {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.NamedItemContext, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}

	return out
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
