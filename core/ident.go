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

// Package core holds the data model shared by every compiler phase: the
// spanned identifier and qualified-reference types, the Type and Definition
// sum types, and the ordering/equality rules that make a NamedItemContext
// the canonical key for anything definable (spec §3).
package core

import (
	"sort"
	"strings"

	"github.com/kintsu-lang/kintsu/token"
)

// Ident is a non-empty, case-preserving name token with its source span.
// Equality is byte-equality.
type Ident struct {
	Name string
	Span token.Span
}

func (i Ident) String() string {
	return i.Name
}

func (i Ident) Begin() token.Pos { return i.Span.Start }
func (i Ident) End() token.Pos   { return i.Span.End }

// RefContext is (package, namespace segments) — everything needed to locate
// a namespace inside a dependency graph.
type RefContext struct {
	Package   string
	Namespace []string
}

// Join returns the RefContext for a nested namespace segment.
func (r RefContext) Join(segment string) RefContext {
	ns := make([]string, len(r.Namespace)+1)
	copy(ns, r.Namespace)
	ns[len(r.Namespace)] = segment

	return RefContext{Package: r.Package, Namespace: ns}
}

func (r RefContext) String() string {
	if len(r.Namespace) == 0 {
		return r.Package
	}

	return r.Package + "::" + strings.Join(r.Namespace, "::")
}

// Equal reports whether two RefContexts name the same namespace.
func (r RefContext) Equal(o RefContext) bool {
	if r.Package != o.Package || len(r.Namespace) != len(o.Namespace) {
		return false
	}

	for i := range r.Namespace {
		if r.Namespace[i] != o.Namespace[i] {
			return false
		}
	}

	return true
}

// Less implements the canonical lexicographic ordering on (package,
// namespace) used for deterministic iteration (spec §5 Determinism).
func (r RefContext) Less(o RefContext) bool {
	if r.Package != o.Package {
		return r.Package < o.Package
	}

	a := strings.Join(r.Namespace, "::")
	b := strings.Join(o.Namespace, "::")

	return a < b
}

// NamedItemContext is RefContext + Ident: the canonical key for every
// definable thing. Two references are equal iff package, namespace and name
// all match exactly.
type NamedItemContext struct {
	RefContext
	Name string
}

func NewNamedItemContext(ref RefContext, name string) NamedItemContext {
	return NamedItemContext{RefContext: ref, Name: name}
}

func (n NamedItemContext) String() string {
	return n.RefContext.String() + "::" + n.Name
}

// Equal reports exact equality of package, namespace path and name.
func (n NamedItemContext) Equal(o NamedItemContext) bool {
	return n.RefContext.Equal(o.RefContext) && n.Name == o.Name
}

// Less implements the canonical ordering: lexicographic on (package,
// namespace, name).
func (n NamedItemContext) Less(o NamedItemContext) bool {
	if !n.RefContext.Equal(o.RefContext) {
		return n.RefContext.Less(o.RefContext)
	}

	return n.Name < o.Name
}

// SortNamedItemContexts sorts refs in-place using the canonical ordering.
func SortNamedItemContexts(refs []NamedItemContext) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
}
