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

// Package ctx aggregates AST items of one namespace (possibly across files)
// and bundles namespaces into schema (package) contexts (spec §3 Namespace
// context, §4.3).
package ctx

import (
	"sort"
	"sync"

	"github.com/kintsu-lang/kintsu/ast"
	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/token"
)

// NamespaceCtx is one fully-qualified namespace, possibly assembled from
// multiple source files.
type NamespaceCtx struct {
	Ref core.RefContext

	mu sync.Mutex

	// Sources maps source path to its raw text, for diagnostic rendering.
	Sources map[string]string

	// Items holds every parsed item keyed by name; duplicates within a
	// namespace are rejected at insertion (spec §4.3).
	Items map[string]ast.Item

	// itemOrder preserves first-seen insertion order for deterministic
	// iteration (spec §5 Determinism).
	itemOrder []string

	Imports []ast.UseDecl

	Version *int
	VersionSpan token.Span

	ErrType     *core.NamedItemContext
	ErrTypeSpan token.Span

	Tag     *core.TagSpec
	Parent  *NamespaceCtx
	Children map[string]*NamespaceCtx

	// Populated by the resolver (spec §4.6 output).
	ResolvedAliases  map[string]core.Type
	ResolvedVersions map[string]int
	ResolvedErrors   map[string]core.NamedItemContext
	LiftedStructs    []LiftedItem
	MergedUnions     []LiftedItem
}

// LiftedItem is a synthesized definition produced mid-resolution (an
// anonymous struct lifted to a name, or a merged union struct) that must be
// re-registered (spec §4.5.2 Pass 2).
type LiftedItem struct {
	Name   string
	Fields []core.Field
	Span   token.Span
}

// NewNamespaceCtx creates an empty namespace context for ref.
func NewNamespaceCtx(ref core.RefContext) *NamespaceCtx {
	return &NamespaceCtx{
		Ref:      ref,
		Sources:  map[string]string{},
		Items:    map[string]ast.Item{},
		Children: map[string]*NamespaceCtx{},
	}
}

// Lock/Unlock expose the per-namespace mutex the resolver holds for the
// duration of integration (spec §5 Shared mutable state).
func (n *NamespaceCtx) Lock()   { n.mu.Lock() }
func (n *NamespaceCtx) Unlock() { n.mu.Unlock() }

// AddFile merges one parsed file's top-level items into this namespace,
// applying the merge rules from spec §4.3: `use` directives accumulate,
// version/err meta may appear at most once across all files. A `namespace`
// declaration item is not checked here; callers group files by the
// namespace they declare before calling AddFile.
func (n *NamespaceCtx) AddFile(path, src string, file *ast.File) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.Sources[path] = src

	for _, attr := range file.ModuleAttrs {
		if err := n.applyModuleAttr(attr); err != nil {
			return err
		}
	}

	for _, item := range file.Items {
		if err := n.addItem(item); err != nil {
			return err
		}
	}

	return nil
}

func (n *NamespaceCtx) applyModuleAttr(attr ast.Attr) error {
	switch attr.Name {
	case "version":
		if n.Version != nil {
			return token.NewPosError(token.KindNamespace, attr.Span, "duplicate #![version(...)] for namespace "+n.Ref.String(),
				token.NewErrDetail(n.VersionSpan, "first declared here"))
		}

		v := parseIntArg(attr)
		n.Version = &v
		n.VersionSpan = attr.Span
	case "err":
		if n.ErrType != nil {
			return token.NewPosError(token.KindNamespace, attr.Span, "duplicate #![err(...)] for namespace "+n.Ref.String(),
				token.NewErrDetail(n.ErrTypeSpan, "first declared here"))
		}

		if len(attr.Args) == 0 {
			return token.NewPosError(token.KindNamespace, attr.Span, "#![err(...)] requires an argument")
		}

		ref := core.NewNamedItemContext(n.Ref, attr.Args[0])
		n.ErrType = &ref
		n.ErrTypeSpan = attr.Span
	case "tag":
		spec, err := parseTagAttr(attr)
		if err != nil {
			return err
		}

		n.Tag = &spec
	}

	return nil
}

func parseIntArg(attr ast.Attr) int {
	if len(attr.Args) == 0 {
		return 1
	}

	n := 0
	for _, c := range attr.Args[0] {
		if c < '0' || c > '9' {
			return 1
		}

		n = n*10 + int(c-'0')
	}

	return n
}

// parseTagAttr turns a parsed #[tag(...)] attribute into a core.TagSpec
// (spec §4.6 Phase 4.5).
func parseTagAttr(attr ast.Attr) (core.TagSpec, error) {
	style := core.TagTypeHint

	if len(attr.Args) > 0 {
		style = core.TagStyle(attr.Args[0])
	}

	switch style {
	case core.TagTypeHint, core.TagExternal, core.TagInternal, core.TagAdjacent, core.TagUntagged, core.TagIndex:
	default:
		return core.TagSpec{}, token.NewPosError(token.KindTagging, attr.Span, "unknown tag style "+string(style))
	}

	return core.TagSpec{
		Style:   style,
		Name:    attr.KV.GetString("name"),
		Content: attr.KV.GetString("content"),
		Span:    attr.Span,
	}, nil
}

func (n *NamespaceCtx) addItem(item ast.Item) error {
	switch item.Kind {
	case ast.INamespace:
		// Name agreement is enforced by the caller assembling namespaces by
		// name; nothing further to merge here.
		return nil
	case ast.IUse:
		n.Imports = append(n.Imports, *item.Use)
		return nil
	case ast.INestedNamespace:
		// Handled by the caller, which recurses into a child NamespaceCtx.
		return nil
	}

	name := itemName(item)

	if existing, ok := n.Items[name]; ok {
		return token.NewPosError(token.KindNamespace, item.Span, "duplicate item "+name+" in namespace "+n.Ref.String(),
			token.NewErrDetail(existing.Span, "first declared here"))
	}

	n.Items[name] = item
	n.itemOrder = append(n.itemOrder, name)

	return nil
}

func itemName(item ast.Item) string {
	switch item.Kind {
	case ast.IStruct:
		return item.StructName
	case ast.IEnum:
		return item.EnumName
	case ast.IType:
		return item.AliasName
	case ast.IOneOf, ast.IError:
		return item.SumName
	case ast.IOperation:
		return item.OpName
	}

	return ""
}

// OrderedNames returns item names in deterministic (first-seen) order.
func (n *NamespaceCtx) OrderedNames() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := append([]string{}, n.itemOrder...)

	return out
}

// SortedChildNames returns child namespace segment names, sorted, for
// deterministic recursion into nested namespace blocks.
func (n *NamespaceCtx) SortedChildNames() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]string, 0, len(n.Children))
	for k := range n.Children {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}

// EffectiveTag returns this namespace's own tag if set, else walks up to the
// innermost enclosing namespace that declares one (spec §9 Open Questions:
// "nested inherits from innermost-enclosing namespace that declares one").
func (n *NamespaceCtx) EffectiveTag() *core.TagSpec {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Tag != nil {
			return cur.Tag
		}
	}

	return nil
}
