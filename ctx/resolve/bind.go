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

package resolve

import "github.com/kintsu-lang/kintsu/core"

// bindType rewrites every Type::Ident leaf reachable from t, binding its
// parsed (namespace-less) reference to a full RefContext, so that every
// later "is this local?" check (ref.Equal(r.ref)) and every cross-package
// registry.Lookup gets a key that can actually exist (spec §4.8). parseType
// never produces a Package-qualified ref itself — parsePathText defers that
// to this step, once `use` imports are known.
func (r *resolver) bindType(t core.Type) core.Type {
	switch t.Kind {
	case core.TKIdent:
		t.Ref = r.bindRef(t.Ref)
		return t
	case core.TKArray:
		elem := r.bindType(*t.Elem)
		t.Elem = &elem

		return t
	case core.TKParen:
		inner := r.bindType(*t.Inner)
		t.Inner = &inner

		return t
	case core.TKResult:
		inner := r.bindType(*t.Inner)
		t.Inner = &inner

		return t
	case core.TKUnion:
		ops := make([]core.Type, len(t.UnionOperands))
		for i, op := range t.UnionOperands {
			ops[i] = r.bindType(op)
		}

		t.UnionOperands = ops

		return t
	case core.TKUnionOr:
		lhs := r.bindType(*t.Lhs)
		rhs := r.bindType(*t.Rhs)
		t.Lhs = &lhs
		t.Rhs = &rhs

		return t
	case core.TKOneOf:
		variants := make([]core.Type, len(t.Variants))
		for i, v := range t.Variants {
			variants[i] = r.bindType(v)
		}

		t.Variants = variants

		return t
	case core.TKStruct:
		fields := make([]core.Field, len(t.Fields))
		for i, f := range t.Fields {
			f.Type = r.bindType(f.Type)
			fields[i] = f
		}

		t.Fields = fields

		return t
	case core.TKTypeExpr:
		args := make([]core.Type, len(t.ExprArgs))
		for i, a := range t.ExprArgs {
			args[i] = r.bindType(a)
		}

		t.ExprArgs = args

		return t
	default:
		return t
	}
}

// bindRef resolves one parsed reference to its owning package and
// namespace. A bare identifier (no "::" at all) binds to the current
// namespace unless it names a singly `use`-imported item; a path (one or
// more "::" segments) binds through a namespace-form `use` import matching
// its last segment as an alias, falling back to treating the path literally
// as package::namespace...::name when no import matches (spec §4.3 Imports,
// §4.8).
func (r *resolver) bindRef(ref core.NamedItemContext) core.NamedItemContext {
	if ref.Package != "" {
		return ref
	}

	if len(ref.Namespace) == 0 {
		if target, ok := r.importedItem(ref.Name); ok {
			return target
		}

		return core.NewNamedItemContext(r.ref, ref.Name)
	}

	alias := ref.Namespace[len(ref.Namespace)-1]

	if target, ok := r.importedNamespace(alias); ok {
		return core.NewNamedItemContext(target, ref.Name)
	}

	return core.NewNamedItemContext(
		core.RefContext{Package: ref.Namespace[0], Namespace: ref.Namespace[1:]},
		ref.Name,
	)
}

// importedItem looks for a single-item `use pkg::ns::Item;` import whose
// last path segment matches name, letting the item be referenced bare.
func (r *resolver) importedItem(name string) (core.NamedItemContext, bool) {
	for _, use := range r.ns.Imports {
		if !use.IsItem || len(use.Path) < 2 || use.Path[len(use.Path)-1] != name {
			continue
		}

		return core.NewNamedItemContext(
			core.RefContext{Package: use.Path[0], Namespace: use.Path[1 : len(use.Path)-1]},
			name,
		), true
	}

	return core.NamedItemContext{}, false
}

// importedNamespace looks for a whole-namespace `use pkg::ns;` import whose
// last path segment matches alias, the short name code refers to that
// namespace's items by.
func (r *resolver) importedNamespace(alias string) (core.RefContext, bool) {
	for _, use := range r.ns.Imports {
		if use.IsItem || len(use.Path) == 0 || use.Path[len(use.Path)-1] != alias {
			continue
		}

		return core.RefContext{Package: use.Path[0], Namespace: use.Path[1:]}, true
	}

	return core.RefContext{}, false
}
