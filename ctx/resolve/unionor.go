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

// phase3NormalizeUnionOr rewrites every `A &| B` into `Union{A & B}` so every
// downstream phase sees exactly one union representation (spec §4.6 Phase 3).
func (r *resolver) phase3NormalizeUnionOr() {
	for _, name := range r.order {
		st := r.items[name]

		switch st.kind {
		case KStruct:
			for i := range st.fields {
				st.fields[i].Type = normalizeUnionOr(st.fields[i].Type)
			}
		case KOneOf:
			for i := range st.variants {
				st.variants[i].Type = normalizeUnionOr(st.variants[i].Type)
			}
		case KTypeAlias:
			st.aliasTarget = normalizeUnionOr(st.aliasTarget)
		case KOperation:
			for i := range st.params {
				st.params[i].Type = normalizeUnionOr(st.params[i].Type)
			}

			st.ret = normalizeUnionOr(st.ret)
		}
	}
}

func normalizeUnionOr(t core.Type) core.Type {
	switch t.Kind {
	case core.TKUnionOr:
		lhs := normalizeUnionOr(*t.Lhs)
		rhs := normalizeUnionOr(*t.Rhs)

		return core.UnionType(flattenUnionOperands(lhs, rhs), t.Span)
	case core.TKUnion:
		ops := make([]core.Type, len(t.UnionOperands))
		for i, op := range t.UnionOperands {
			ops[i] = normalizeUnionOr(op)
		}

		return core.UnionType(ops, t.Span)
	case core.TKArray:
		e := normalizeUnionOr(*t.Elem)
		return core.ArrayType(e, t.Size, t.Span)
	case core.TKParen:
		i := normalizeUnionOr(*t.Inner)
		return core.ParenType(i, t.Span)
	case core.TKResult:
		i := normalizeUnionOr(*t.Inner)
		return core.ResultType(i, t.Span)
	case core.TKOneOf:
		vs := make([]core.Type, len(t.Variants))
		for i, v := range t.Variants {
			vs[i] = normalizeUnionOr(v)
		}

		return core.OneOfType(vs, t.Span)
	case core.TKStruct:
		fields := make([]core.Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = f
			fields[i].Type = normalizeUnionOr(f.Type)
		}

		return core.StructType(fields, t.Span)
	case core.TKTypeExpr:
		args := make([]core.Type, len(t.ExprArgs))
		for i, a := range t.ExprArgs {
			args[i] = normalizeUnionOr(a)
		}

		return core.TypeExprType(t.ExprOp, args, t.ExprSel, t.Span)
	default:
		return t
	}
}

// flattenUnionOperands merges lhs/rhs into one flat operand list, absorbing
// any nested TKUnion on either side so `(A & B) &| C` yields operands
// [A, B, C] rather than a nested union-of-unions.
func flattenUnionOperands(lhs, rhs core.Type) []core.Type {
	var out []core.Type

	if lhs.Kind == core.TKUnion {
		out = append(out, lhs.UnionOperands...)
	} else {
		out = append(out, lhs)
	}

	if rhs.Kind == core.TKUnion {
		out = append(out, rhs.UnionOperands...)
	} else {
		out = append(out, rhs)
	}

	return out
}
