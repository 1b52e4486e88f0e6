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

// Package resolve implements the multi-phase semantic resolver (spec §4.6):
// alias flattening, anonymous-struct extraction, union identification and
// merging, type-expression evaluation, tagging validation, version and
// error-type resolution, and final reference validation. Phases run in a
// fixed order per namespace because later phases depend on the normal forms
// earlier phases establish (spec §9 "Phase ordering rationale").
package resolve

import (
	"github.com/kintsu-lang/kintsu/ast"
	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/ctx"
	"github.com/kintsu-lang/kintsu/registry"
	"github.com/kintsu-lang/kintsu/token"
)

// Result bundles everything a namespace resolution pass produces, for the
// scheduler to integrate back into the namespace context and registry
// (spec §4.6 "resolver's output").
type Result struct {
	LiftedStructs    []ctx.LiftedItem
	MergedUnions     []ctx.LiftedItem
	ResolvedAliases  map[string]core.Type
	ResolvedVersions map[string]int
	ResolvedErrors   map[string]core.NamedItemContext

	// Items holds the fully rewritten Definition for every item the
	// namespace originally declared (struct/enum/oneof/error/type-alias/
	// operation), reflecting every phase's rewrites — ready for the
	// scheduler to register (spec §4.5.2 "re-register").
	Items map[string]core.Definition

	// Order preserves the namespace's original declaration order, for
	// deterministic registration (spec §5 Determinism).
	Order []string
}

// resolver is the mutable working set one Resolve call operates over: the
// namespace's own items (which Phase 1-5 may rewrite in place) plus
// accumulated resolver output.
type resolver struct {
	ref   core.RefContext
	items map[string]*itemState
	order []string

	tag *core.TagSpec // namespace-level default, from EffectiveTag()
	ns  *ctx.NamespaceCtx

	reg *registry.Registry

	result Result

	// nameCounters tracks the numeric suffix counter per generated-name
	// stack position for union naming (spec §9 "Generated naming").
	nameCounters map[string]int
}

// itemState is the mutable per-item working copy threaded through phases.
type itemState struct {
	kind ItemKind
	name string
	span token.Span

	// struct
	fields []core.Field

	// enum
	enumKind     core.EnumVariantKind
	enumVariants []core.EnumVariant

	// oneof / error
	variants []core.OneOfVariant
	tag      *core.TagSpec
	isError  bool

	// type alias
	aliasTarget core.Type

	// operation
	params   []core.Arg
	ret      core.Type
	fallible bool
	errAttr  string // #[err(Ident)] item-level override, if any

	versionAttr *int
}

// ItemKind mirrors ast.ItemKind but restricted to registerable kinds.
type ItemKind int

const (
	KStruct ItemKind = iota
	KEnum
	KOneOf
	KError
	KTypeAlias
	KOperation
)

// Resolve runs all eight phases over ns in order and returns the bundled
// output. reg is consulted (read-only during this pass) for cross-namespace
// lookups in Phase 8; this namespace's own items are tracked locally since
// they are only registered by Pass 2 after Resolve returns.
func Resolve(ns *ctx.NamespaceCtx, reg *registry.Registry) (*Result, error) {
	r := &resolver{
		ref:          ns.Ref,
		items:        map[string]*itemState{},
		tag:          ns.EffectiveTag(),
		ns:           ns,
		reg:          reg,
		nameCounters: map[string]int{},
		result: Result{
			ResolvedAliases:  map[string]core.Type{},
			ResolvedVersions: map[string]int{},
			ResolvedErrors:   map[string]core.NamedItemContext{},
		},
	}

	if err := r.load(); err != nil {
		return nil, err
	}

	if err := r.phase1ExtractAnonStructs(); err != nil {
		return nil, err
	}

	if err := r.phase2ResolveAliases(); err != nil {
		return nil, err
	}

	r.phase3NormalizeUnionOr()

	if err := r.phase3_6ResolveTypeExprs(); err != nil {
		return nil, err
	}

	unions, err := r.phase4IdentifyUnions()
	if err != nil {
		return nil, err
	}

	if err := r.phase4_5ValidateTagging(); err != nil {
		return nil, err
	}

	r.phase5MergeUnions(unions)

	r.phase6ResolveVersions()

	if err := r.phase7ResolveErrorTypes(); err != nil {
		return nil, err
	}

	if err := r.phase8ValidateReferences(); err != nil {
		return nil, err
	}

	r.finalize()

	return &r.result, nil
}

// finalize converts every item's final mutable state into the Definition
// the registry stores, after all eight phases have rewritten it in place.
func (r *resolver) finalize() {
	r.result.Items = map[string]core.Definition{}
	r.result.Order = append([]string{}, r.order...)

	for _, name := range r.order {
		st := r.items[name]

		def := core.Definition{
			Name:    name,
			Span:    st.span,
			Version: r.result.ResolvedVersions[name],
		}

		switch st.kind {
		case KStruct:
			def.Kind = core.DefStruct
			def.Fields = st.fields
		case KEnum:
			def.Kind = core.DefEnum
			def.EnumKind = st.enumKind
			def.EnumVariants = st.enumVariants
		case KOneOf:
			if st.isError {
				def.Kind = core.DefError
			} else {
				def.Kind = core.DefOneOf
			}

			def.Variants = st.variants

			tag := st.tag
			if tag == nil {
				tag = r.tag
			}

			def.Tag = tag
		case KTypeAlias:
			def.Kind = core.DefTypeAlias
			def.Target = st.aliasTarget
		case KOperation:
			def.Kind = core.DefOperation
			def.Params = st.params
			def.Return = st.ret

			if ref, ok := r.result.ResolvedErrors[name]; ok {
				errRef := ref
				def.ErrRef = &errRef
			}
		}

		r.result.Items[name] = def
	}
}

// load copies the namespace's parsed items into mutable working state.
func (r *resolver) load() error {
	for _, name := range r.ns.OrderedNames() {
		item := r.ns.Items[name]

		st := &itemState{name: name, span: item.Span}

		switch item.Kind {
		case ast.IStruct:
			st.kind = KStruct
			st.fields = append([]core.Field{}, item.Fields...)

			for i := range st.fields {
				st.fields[i].Type = r.bindType(st.fields[i].Type)
			}
		case ast.IEnum:
			st.kind = KEnum
			st.enumKind = item.EnumKind
			st.enumVariants = item.EnumVariants
		case ast.IType:
			st.kind = KTypeAlias
			st.aliasTarget = r.bindType(item.AliasType)
		case ast.IOneOf, ast.IError:
			st.kind = KOneOf
			st.isError = item.Kind == ast.IError
			st.variants = append([]core.OneOfVariant{}, item.SumVariants...)

			for i := range st.variants {
				st.variants[i].Type = r.bindType(st.variants[i].Type)
			}
		case ast.IOperation:
			st.kind = KOperation
			st.params = append([]core.Arg{}, item.Params...)
			st.ret = r.bindType(item.Return)
			st.fallible = item.Fallible

			for i := range st.params {
				st.params[i].Type = r.bindType(st.params[i].Type)
			}
		default:
			continue
		}

		for _, attr := range item.Attrs {
			switch attr.Name {
			case "version":
				v := parseAttrInt(attr.Args)
				st.versionAttr = &v
			case "err":
				if len(attr.Args) > 0 {
					st.errAttr = attr.Args[0]
				}
			case "tag":
				if st.tag != nil {
					return token.NewPosError(token.KindTagging, attr.Span,
						"duplicate #[tag(...)] on "+name,
						token.NewErrDetail(st.tag.Span, "first declared here"))
				}

				spec, err := tagFromAttrArgs(attr)
				if err != nil {
					return err
				}

				st.tag = &spec
			}
		}

		r.items[name] = st
		r.order = append(r.order, name)
	}

	return nil
}

func parseAttrInt(args []string) int {
	if len(args) == 0 {
		return 1
	}

	n := 0
	for _, c := range args[0] {
		if c < '0' || c > '9' {
			return 1
		}

		n = n*10 + int(c-'0')
	}

	return n
}
