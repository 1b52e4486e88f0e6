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

package ctx

import (
	"sort"
	"sync"

	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/manifest"
)

// SchemaCtx is one loaded package: its manifest plus every namespace it
// declares, keyed by fully-qualified namespace name (spec §3 Schema context).
type SchemaCtx struct {
	mu sync.RWMutex

	Manifest *manifest.Manifest

	// ContentHash is the hash of every source file in this package,
	// computed once loading completes; it is the third key of the schema
	// cache tuple (package, version, content-hash) (spec §4.4).
	ContentHash string

	namespaces map[string]*NamespaceCtx

	// Dependencies maps the import path used in the manifest to a loaded
	// SchemaCtx. NewSchemaCtx creates it empty and nothing in this module
	// fills it in.
	Dependencies map[string]*SchemaCtx
}

// NewSchemaCtx creates an empty schema context for m.
func NewSchemaCtx(m *manifest.Manifest) *SchemaCtx {
	return &SchemaCtx{
		Manifest:     m,
		namespaces:   map[string]*NamespaceCtx{},
		Dependencies: map[string]*SchemaCtx{},
	}
}

// Namespace returns the namespace context for name, creating it (with the
// given ref) on first access. Namespaces are discovered incrementally as
// files are loaded, so the ref is only consulted on a cache miss.
func (s *SchemaCtx) Namespace(name string, ref core.RefContext) *NamespaceCtx {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.namespaces[name]; ok {
		return n
	}

	n := NewNamespaceCtx(ref)
	s.namespaces[name] = n

	return n
}

// Lookup returns an existing namespace by name without creating one.
func (s *SchemaCtx) Lookup(name string) (*NamespaceCtx, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.namespaces[name]

	return n, ok
}

// Put installs a fully-built namespace context under name.
func (s *SchemaCtx) Put(name string, n *NamespaceCtx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.namespaces[name] = n
}

// NamespaceNames returns every namespace name in this package, sorted, for
// deterministic iteration during scheduling and emission (spec §5).
func (s *SchemaCtx) NamespaceNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.namespaces))
	for k := range s.namespaces {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}

// Namespaces returns the full name -> context map. Callers must not mutate
// the returned map.
func (s *SchemaCtx) Namespaces() map[string]*NamespaceCtx {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.namespaces
}
