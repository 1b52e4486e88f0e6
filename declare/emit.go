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

package declare

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/ctx"
	"github.com/kintsu-lang/kintsu/registry"
)

// Emit walks the resolved registry bottom-up and flattens it into a
// DeclarationBundle (spec §4.7). rootName/root describe the package being
// compiled; deps holds every loaded dependency package keyed by name.
func Emit(rootName string, root *ctx.SchemaCtx, deps map[string]*ctx.SchemaCtx, reg *registry.Registry) DeclarationBundle {
	bundle := DeclarationBundle{Dependencies: map[string]TypeRegistryDeclaration{}}

	bundle.Root = emitPackage(rootName, root, reg)

	for name, sc := range deps {
		bundle.Dependencies[name] = emitPackage(name, sc, reg)
	}

	return bundle
}

func emitPackage(pkgName string, schema *ctx.SchemaCtx, reg *registry.Registry) TypeRegistryDeclaration {
	trd := TypeRegistryDeclaration{Package: pkgName}

	for _, nsName := range schema.NamespaceNames() {
		ns, ok := schema.Lookup(nsName)
		if !ok {
			continue
		}

		trd.Namespaces = append(trd.Namespaces, emitNamespace(ns, reg))
	}

	return trd
}

func emitNamespace(ns *ctx.NamespaceCtx, reg *registry.Registry) NamespaceDeclaration {
	nd := NamespaceDeclaration{Name: ns.Ref.String()}

	ext := map[string]bool{}

	names := ns.OrderedNames()
	for _, lifted := range ns.LiftedStructs {
		names = append(names, lifted.Name)
	}

	for _, merged := range ns.MergedUnions {
		names = append(names, merged.Name)
	}

	for _, name := range names {
		key := core.NewNamedItemContext(ns.Ref, name)

		entry, ok := reg.Lookup(key)
		if !ok {
			continue
		}

		nd.Items = append(nd.Items, convertDefinition(entry.Def, ns, ext))
	}

	nd.ExternalRefs = sortedKeys(ext)

	return nd
}

// convertDefinition turns one registry Definition into a Declaration,
// recursively flattening its type references (spec §4.7).
func convertDefinition(def core.Definition, ns *ctx.NamespaceCtx, ext map[string]bool) Declaration {
	var comments []string
	if item, ok := ns.Items[def.Name]; ok {
		comments = item.Doc
	}

	switch def.Kind {
	case core.DefStruct:
		return Declaration{
			Kind: DeclStruct, Name: def.Name, Version: def.Version, Comments: comments,
			Fields: convertFields(def.Fields, ns, ext),
		}
	case core.DefEnum:
		return Declaration{
			Kind: DeclEnum, Name: def.Name, Version: def.Version, Comments: comments,
			EnumKind: def.EnumKind, EnumVariants: convertEnumVariants(def.EnumVariants),
		}
	case core.DefOneOf, core.DefError:
		kind := DeclOneOf
		if def.Kind == core.DefError {
			kind = DeclError
		}

		return Declaration{
			Kind: kind, Name: def.Name, Version: def.Version, Comments: comments,
			Variants: convertOneOfVariants(def.Variants, ns, ext), Tag: def.Tag,
		}
	case core.DefTypeAlias:
		// Anonymous oneofs inside a type alias are hoisted into a
		// declaration oneof carrying the alias's own name (spec §4.7).
		if def.Target.Kind == core.TKOneOf {
			return hoistOneOf(def, ns, ext, comments)
		}

		target := toDeclType(def.Target, ns, ext)

		return Declaration{Kind: DeclTypeAlias, Name: def.Name, Version: def.Version, Comments: comments, Target: &target}
	case core.DefOperation:
		ret := toDeclTypeErr(def.Return, def.ErrRef, ns, ext)

		decl := Declaration{
			Kind: DeclOperation, Name: def.Name, Version: def.Version, Comments: comments,
			Params: convertArgs(def.Params, ns, ext), Return: &ret,
		}

		if def.ErrRef != nil {
			decl.ErrRef = def.ErrRef.String()

			if def.ErrRef.Package != ns.Ref.Package {
				ext[decl.ErrRef] = true
			}
		}

		return decl
	}

	return Declaration{Name: def.Name}
}

func convertFields(fields []core.Field, ns *ctx.NamespaceCtx, ext map[string]bool) []Field {
	out := make([]Field, 0, len(fields))

	for _, f := range fields {
		out = append(out, Field{
			Name: f.Name, Type: toDeclType(f.Type, ns, ext), Optional: f.Optional, Comments: f.Comments,
		})
	}

	return out
}

func convertArgs(args []core.Arg, ns *ctx.NamespaceCtx, ext map[string]bool) []Field {
	out := make([]Field, 0, len(args))

	for _, a := range args {
		out = append(out, Field{
			Name: a.Name, Type: toDeclType(a.Type, ns, ext), Optional: a.Optional, Comments: a.Comments,
		})
	}

	return out
}

func convertEnumVariants(variants []core.EnumVariant) []EnumVariant {
	out := make([]EnumVariant, 0, len(variants))

	for _, v := range variants {
		out = append(out, EnumVariant{Name: v.Name, IntVal: v.IntVal, StrVal: v.StrVal})
	}

	return out
}

func convertOneOfVariants(variants []core.OneOfVariant, ns *ctx.NamespaceCtx, ext map[string]bool) []OneOfVariant {
	out := make([]OneOfVariant, 0, len(variants))

	for _, v := range variants {
		out = append(out, OneOfVariant{Name: v.Name, Type: toDeclType(v.Type, ns, ext)})
	}

	return out
}

// toDeclType flattens a resolved core.Type. By the time Definitions reach
// the emitter, Phase 1-8 have already eliminated Struct/Union/UnionOr/
// TypeExpr (spec §8 universal invariant); the one surviving anonymous shape,
// TKOneOf inside a type alias target, is special-cased by the caller before
// recursing here, so only the five flattened kinds are expected in practice.
func toDeclType(t core.Type, ns *ctx.NamespaceCtx, ext map[string]bool) DeclType {
	switch t.Kind {
	case core.TKBuiltin:
		return DeclType{Kind: DKBuiltin, Builtin: t.Builtin}
	case core.TKIdent:
		if t.Ref.Package != "" && t.Ref.Package != ns.Ref.Package {
			ext[t.Ref.String()] = true
		}

		return DeclType{Kind: DKNamed, Ref: t.Ref.String()}
	case core.TKArray:
		elem := toDeclType(*t.Elem, ns, ext)
		return DeclType{Kind: DKArray, Elem: &elem, Size: t.Size}
	case core.TKParen:
		inner := toDeclType(*t.Inner, ns, ext)
		return DeclType{Kind: DKParen, Inner: &inner}
	case core.TKResult:
		return toDeclTypeErr(t, nil, ns, ext)
	default:
		// Unreachable for a fully-resolved registry; fall back to a named
		// reference by identifier rather than dropping the shape silently.
		return DeclType{Kind: DKNamed, Ref: t.Ref.String()}
	}
}

// toDeclTypeErr flattens a Result type, preferring errRef (the specific
// operation's own resolved error, from an item-level #[err(E)] override)
// over the namespace's default #![err(E)] when both are known (spec §4.6
// Phase 7, §4.7). Only an operation's own Return type carries a non-nil
// errRef; nested Result types (inside a field or array element) fall back
// to the namespace default via the nil branch.
func toDeclTypeErr(t core.Type, errRef *core.NamedItemContext, ns *ctx.NamespaceCtx, ext map[string]bool) DeclType {
	if t.Kind != core.TKResult {
		return toDeclType(t, ns, ext)
	}

	ok := toDeclType(*t.Inner, ns, ext)

	ref := errRef
	if ref == nil {
		ref = ns.ErrType
	}

	out := ""
	if ref != nil {
		out = ref.String()

		if ref.Package != ns.Ref.Package {
			ext[out] = true
		}
	}

	return DeclType{Kind: DKResult, Ok: &ok, ErrRef: out}
}

// hoistOneOf converts a type-alias-wrapped anonymous oneof into a standalone
// oneof declaration under the alias's own name, generating variant names
// from each variant's type (spec §4.7).
func hoistOneOf(def core.Definition, ns *ctx.NamespaceCtx, ext map[string]bool, comments []string) Declaration {
	counters := map[string]int{}
	variants := make([]OneOfVariant, 0, len(def.Target.Variants))

	for i, vt := range def.Target.Variants {
		base := variantNameForType(vt, i)

		name := base
		if n, seen := counters[base]; seen {
			n++
			counters[base] = n
			name = base + strconv.Itoa(n)
		} else {
			counters[base] = 0
		}

		variants = append(variants, OneOfVariant{Name: name, Type: toDeclType(vt, ns, ext)})
	}

	return Declaration{
		Kind: DeclOneOf, Name: def.Name, Version: def.Version, Comments: comments,
		Variants: variants, Synthesized: true,
	}
}

// variantNameForType derives a generated variant name from a variant's type
// (spec §4.7: "e.g. I32, Str, or the identifier's last segment").
func variantNameForType(t core.Type, idx int) string {
	switch t.Kind {
	case core.TKBuiltin:
		return capitalize(string(t.Builtin))
	case core.TKIdent:
		if t.Ref.Name != "" {
			return capitalize(t.Ref.Name)
		}
	case core.TKArray:
		return "Array" + variantNameForType(*t.Elem, idx)
	case core.TKParen:
		return variantNameForType(*t.Inner, idx)
	}

	return "Variant" + strconv.Itoa(idx)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}
