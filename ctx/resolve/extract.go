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
	"strings"
	"unicode"

	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/ctx"
)

// phase1ExtractAnonStructs lifts every inline Struct{...} field type to a
// named struct, recursively, naming each ParentPascal+FieldPascal (spec §4.6
// Phase 1).
func (r *resolver) phase1ExtractAnonStructs() error {
	for _, name := range r.order {
		st := r.items[name]

		switch st.kind {
		case KStruct:
			st.fields = r.extractFields(pascal(name), st.fields)
		case KOneOf:
			for i, v := range st.variants {
				st.variants[i].Type = r.extractType(pascal(name)+pascal(v.Name), v.Type)
			}
		case KTypeAlias:
			st.aliasTarget = r.extractType(pascal(name), st.aliasTarget)
		case KOperation:
			for i, p := range st.params {
				st.params[i].Type = r.extractType(pascal(name)+pascal(p.Name), p.Type)
			}

			st.ret = r.extractType(pascal(name)+"Return", st.ret)
		}
	}

	return nil
}

// extractFields lifts any TKStruct-typed field within fields, using prefix
// as the naming base, and returns the rewritten field list (each lifted
// field's type becomes a TKIdent reference to the new name).
func (r *resolver) extractFields(prefix string, fields []core.Field) []core.Field {
	out := make([]core.Field, len(fields))

	for i, f := range fields {
		out[i] = f
		out[i].Type = r.extractType(prefix+pascal(f.Name), f.Type)
	}

	return out
}

// extractType recursively lifts anonymous structs reachable from t, using
// name as the generated name for t itself if it is a TKStruct.
func (r *resolver) extractType(name string, t core.Type) core.Type {
	switch t.Kind {
	case core.TKStruct:
		lifted := r.extractFields(name, t.Fields)
		r.result.LiftedStructs = append(r.result.LiftedStructs, ctx.LiftedItem{
			Name:   name,
			Fields: lifted,
			Span:   t.Span,
		})

		return core.IdentType(core.NewNamedItemContext(r.ref, name), t.Span)
	case core.TKArray:
		elem := r.extractType(name, *t.Elem)
		return core.ArrayType(elem, t.Size, t.Span)
	case core.TKParen:
		inner := r.extractType(name, *t.Inner)
		return core.ParenType(inner, t.Span)
	case core.TKResult:
		inner := r.extractType(name, *t.Inner)
		return core.ResultType(inner, t.Span)
	case core.TKUnion:
		operands := make([]core.Type, len(t.UnionOperands))
		for i, op := range t.UnionOperands {
			operands[i] = r.extractType(name+ordinalSuffix(i), op)
		}

		return core.UnionType(operands, t.Span)
	case core.TKUnionOr:
		lhs := r.extractType(name, *t.Lhs)
		rhs := r.extractType(name, *t.Rhs)

		return core.UnionOrType(lhs, rhs, t.Span)
	case core.TKOneOf:
		variants := make([]core.Type, len(t.Variants))
		for i, v := range t.Variants {
			variants[i] = r.extractType(name+ordinalSuffix(i), v)
		}

		return core.OneOfType(variants, t.Span)
	case core.TKTypeExpr:
		args := make([]core.Type, len(t.ExprArgs))
		for i, a := range t.ExprArgs {
			args[i] = r.extractType(name, a)
		}

		return core.TypeExprType(t.ExprOp, args, t.ExprSel, t.Span)
	default:
		return t
	}
}

func ordinalSuffix(i int) string {
	if i == 0 {
		return ""
	}

	return itoa(i + 1)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}

	return string(b)
}

// pascal upper-cases the first rune of each underscore/hyphen separated
// word and concatenates (matching the generated-name rule in spec §4.6
// Phase 1 / §9 "Generated naming").
func pascal(s string) string {
	var b strings.Builder

	upperNext := true

	for _, r := range s {
		if r == '_' || r == '-' {
			upperNext = true
			continue
		}

		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		} else {
			b.WriteRune(r)
		}
	}

	return b.String()
}
