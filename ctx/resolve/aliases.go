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

import (
	"sort"

	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/token"
)

// phase2ResolveAliases builds the alias dependency graph, rejects cycles
// (reporting the lexicographically-normalized chain), and resolves every
// alias to its fully-expanded target by substitution (spec §4.6 Phase 2).
func (r *resolver) phase2ResolveAliases() error {
	aliasNames := map[string]bool{}

	for _, name := range r.order {
		if r.items[name].kind == KTypeAlias {
			aliasNames[name] = true
		}
	}

	visiting := map[string]bool{}
	done := map[string]bool{}

	var visit func(name string, chain []string) error

	visit = func(name string, chain []string) error {
		if done[name] {
			return nil
		}

		if visiting[name] {
			cycleStart := 0
			for i, n := range chain {
				if n == name {
					cycleStart = i
					break
				}
			}

			cycle := append([]string{}, chain[cycleStart:]...)

			return circularAliasError(r, cycle)
		}

		visiting[name] = true
		chain = append(chain, name)

		st := r.items[name]

		for _, dep := range identsIn(st.aliasTarget) {
			if aliasNames[dep] {
				if err := visit(dep, chain); err != nil {
					return err
				}
			}
		}

		st.aliasTarget = r.substitute(st.aliasTarget, map[string]bool{})
		r.result.ResolvedAliases[name] = st.aliasTarget

		visiting[name] = false
		done[name] = true

		return nil
	}

	names := make([]string, 0, len(aliasNames))
	for n := range aliasNames {
		names = append(names, n)
	}

	sort.Strings(names)

	for _, name := range names {
		if err := visit(name, nil); err != nil {
			return err
		}
	}

	return nil
}

// substitute recursively replaces every TKIdent reference to a local alias
// with that alias's own fully-resolved target; seen guards against
// re-entering a name already being substituted on this path (defense in
// depth; phase2's DFS already rejects true cycles before this runs).
func (r *resolver) substitute(t core.Type, seen map[string]bool) core.Type {
	switch t.Kind {
	case core.TKIdent:
		name := t.Ref.Name

		st, ok := r.items[name]
		if !ok || st.kind != KTypeAlias || seen[name] || !t.Ref.RefContext.Equal(r.ref) {
			return t
		}

		seen[name] = true
		resolved := r.substitute(st.aliasTarget, seen)
		delete(seen, name)

		return resolved
	case core.TKArray:
		elem := r.substitute(*t.Elem, seen)
		return core.ArrayType(elem, t.Size, t.Span)
	case core.TKParen:
		inner := r.substitute(*t.Inner, seen)
		return core.ParenType(inner, t.Span)
	case core.TKResult:
		inner := r.substitute(*t.Inner, seen)
		return core.ResultType(inner, t.Span)
	case core.TKUnion:
		ops := make([]core.Type, len(t.UnionOperands))
		for i, op := range t.UnionOperands {
			ops[i] = r.substitute(op, seen)
		}

		return core.UnionType(ops, t.Span)
	case core.TKUnionOr:
		lhs := r.substitute(*t.Lhs, seen)
		rhs := r.substitute(*t.Rhs, seen)

		return core.UnionOrType(lhs, rhs, t.Span)
	case core.TKOneOf:
		vs := make([]core.Type, len(t.Variants))
		for i, v := range t.Variants {
			vs[i] = r.substitute(v, seen)
		}

		return core.OneOfType(vs, t.Span)
	case core.TKStruct:
		fields := make([]core.Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = f
			fields[i].Type = r.substitute(f.Type, seen)
		}

		return core.StructType(fields, t.Span)
	case core.TKTypeExpr:
		args := make([]core.Type, len(t.ExprArgs))
		for i, a := range t.ExprArgs {
			args[i] = r.substitute(a, seen)
		}

		return core.TypeExprType(t.ExprOp, args, t.ExprSel, t.Span)
	default:
		return t
	}
}

// identsIn collects every TKIdent name reachable from t, for alias-graph
// edge construction.
func identsIn(t core.Type) []string {
	var out []string

	var walk func(t core.Type)

	walk = func(t core.Type) {
		switch t.Kind {
		case core.TKIdent:
			out = append(out, t.Ref.Name)
		case core.TKArray:
			walk(*t.Elem)
		case core.TKParen:
			walk(*t.Inner)
		case core.TKResult:
			walk(*t.Inner)
		case core.TKUnion:
			for _, op := range t.UnionOperands {
				walk(op)
			}
		case core.TKUnionOr:
			walk(*t.Lhs)
			walk(*t.Rhs)
		case core.TKOneOf:
			for _, v := range t.Variants {
				walk(v)
			}
		case core.TKStruct:
			for _, f := range t.Fields {
				walk(f.Type)
			}
		case core.TKTypeExpr:
			for _, a := range t.ExprArgs {
				walk(a)
			}
		}
	}

	walk(t)

	return out
}

// circularAliasError builds the CircularAlias diagnostic: the chain
// rotated to start at its lexicographically smallest member, with a
// secondary label on every participant (spec §4.6 Phase 2, §8 boundary
// scenario 4).
func circularAliasError(r *resolver, cycle []string) error {
	normalized := normalizeCycle(cycle)

	details := make([]token.ErrDetail, 0, len(normalized))
	for _, name := range normalized {
		details = append(details, token.NewErrDetail(r.items[name].span, "participates in alias cycle"))
	}

	first := normalized[0]

	return token.NewPosError(token.KindResolution, r.items[first].span,
		"circular type alias: "+joinChain(normalized), details...).
		SetHint("break the cycle by resolving one alias to a concrete type")
}

// normalizeCycle rotates cycle so its lexicographically smallest element
// comes first, preserving cycle order otherwise.
func normalizeCycle(cycle []string) []string {
	if len(cycle) == 0 {
		return cycle
	}

	minIdx := 0

	for i, n := range cycle {
		if n < cycle[minIdx] {
			minIdx = i
		}
	}

	out := make([]string, len(cycle))
	for i := range cycle {
		out[i] = cycle[(minIdx+i)%len(cycle)]
	}

	return out
}

func joinChain(chain []string) string {
	out := ""
	for i, c := range chain {
		if i > 0 {
			out += " -> "
		}

		out += c
	}

	return out
}
