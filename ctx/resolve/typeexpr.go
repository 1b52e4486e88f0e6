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
	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/token"
)

// phase3_6ResolveTypeExprs evaluates Pick/Omit/Partial/Required/Exclude/
// Extract/ArrayItem against their resolved target shapes (spec §4.6 Phase
// 3.6). Operators compose, so evaluation recurses into nested operators
// before evaluating the outer one; a "resolving" set guards against a
// type-expression operator referencing itself through an alias cycle.
func (r *resolver) phase3_6ResolveTypeExprs() error {
	resolving := map[string]bool{}

	var walk func(t core.Type) (core.Type, error)

	walk = func(t core.Type) (core.Type, error) {
		switch t.Kind {
		case core.TKTypeExpr:
			args := make([]core.Type, len(t.ExprArgs))

			for i, a := range t.ExprArgs {
				w, err := walk(a)
				if err != nil {
					return t, err
				}

				args[i] = w
			}

			return r.evalTypeExpr(t.ExprOp, args, t.ExprSel, t.Span, resolving)
		case core.TKArray:
			e, err := walk(*t.Elem)
			if err != nil {
				return t, err
			}

			return core.ArrayType(e, t.Size, t.Span), nil
		case core.TKParen:
			i, err := walk(*t.Inner)
			if err != nil {
				return t, err
			}

			return core.ParenType(i, t.Span), nil
		case core.TKResult:
			i, err := walk(*t.Inner)
			if err != nil {
				return t, err
			}

			return core.ResultType(i, t.Span), nil
		case core.TKUnion:
			ops := make([]core.Type, len(t.UnionOperands))

			for i, op := range t.UnionOperands {
				w, err := walk(op)
				if err != nil {
					return t, err
				}

				ops[i] = w
			}

			return core.UnionType(ops, t.Span), nil
		case core.TKOneOf:
			vs := make([]core.Type, len(t.Variants))

			for i, v := range t.Variants {
				w, err := walk(v)
				if err != nil {
					return t, err
				}

				vs[i] = w
			}

			return core.OneOfType(vs, t.Span), nil
		case core.TKStruct:
			fields := make([]core.Field, len(t.Fields))

			for i, f := range t.Fields {
				w, err := walk(f.Type)
				if err != nil {
					return t, err
				}

				fields[i] = f
				fields[i].Type = w
			}

			return core.StructType(fields, t.Span), nil
		default:
			return t, nil
		}
	}

	walkOneOfVariants := func(variants []core.OneOfVariant) error {
		for i, v := range variants {
			w, err := walk(v.Type)
			if err != nil {
				return err
			}

			variants[i].Type = w
		}

		return nil
	}

	for _, name := range r.order {
		st := r.items[name]

		switch st.kind {
		case KStruct:
			for i, f := range st.fields {
				w, err := walk(f.Type)
				if err != nil {
					return err
				}

				st.fields[i].Type = w
			}
		case KOneOf:
			if err := walkOneOfVariants(st.variants); err != nil {
				return err
			}
		case KTypeAlias:
			w, err := walk(st.aliasTarget)
			if err != nil {
				return err
			}

			st.aliasTarget = w
			r.result.ResolvedAliases[name] = w
		case KOperation:
			for i, p := range st.params {
				w, err := walk(p.Type)
				if err != nil {
					return err
				}

				st.params[i].Type = w
			}

			w, err := walk(st.ret)
			if err != nil {
				return err
			}

			st.ret = w
		}
	}

	return nil
}

// evalTypeExpr evaluates one type-expression operator given its already
// recursively-resolved args (args[0] is always the target).
func (r *resolver) evalTypeExpr(op core.TypeExprOp, args []core.Type, sel []string, span token.Span, resolving map[string]bool) (core.Type, error) {
	if len(args) == 0 {
		return core.Type{}, token.NewPosError(token.KindResolution, span, string(op)+" requires a target type")
	}

	target := args[0]

	key := string(op) + "@" + target.Ref.String()
	if resolving[key] {
		return core.Type{}, token.NewPosError(token.KindResolution, span, "type expression cycle evaluating "+string(op))
	}

	resolving[key] = true
	defer delete(resolving, key)

	switch op {
	case core.OpArrayItem:
		elem, ok := r.resolveArrayElem(target)
		if !ok {
			return core.Type{}, token.NewPosError(token.KindResolution, span, "ArrayItem target is not an array").SetHint("ArrayItem requires an array-typed target")
		}

		return elem, nil
	case core.OpPick, core.OpOmit, core.OpPartial, core.OpRequired:
		fields, ok := r.resolveStructFields(target)
		if !ok {
			return core.Type{}, token.NewPosError(token.KindResolution, span, string(op)+" target must resolve to a struct")
		}

		return r.evalStructOp(op, fields, sel, span)
	case core.OpExclude, core.OpExtract:
		variants, ok := r.resolveOneOfVariants(target)
		if !ok {
			return core.Type{}, token.NewPosError(token.KindResolution, span, string(op)+" target must resolve to a oneof")
		}

		return r.evalOneOfOp(op, variants, sel, span)
	default:
		return core.Type{}, token.NewPosError(token.KindResolution, span, "unknown type expression operator "+string(op))
	}
}

func (r *resolver) evalStructOp(op core.TypeExprOp, fields []core.Field, sel []string, span token.Span) (core.Type, error) {
	selected := func(name string) bool {
		if len(sel) == 0 {
			return true
		}

		for _, s := range sel {
			if s == name {
				return true
			}
		}

		return false
	}

	if (op == core.OpPick || op == core.OpOmit) && len(sel) == 0 {
		return core.Type{}, token.NewPosError(token.KindResolution, span, string(op)+" requires a non-empty field selector")
	}

	if op == core.OpPick || op == core.OpOmit {
		known := map[string]bool{}
		for _, f := range fields {
			known[f.Name] = true
		}

		for _, s := range sel {
			if !known[s] {
				return core.Type{}, token.NewPosError(token.KindResolution, span, "unknown field selector "+s)
			}
		}
	}

	var out []core.Field

	for _, f := range fields {
		switch op {
		case core.OpPick:
			if !selected(f.Name) {
				continue
			}

			out = append(out, f)
		case core.OpOmit:
			if selected(f.Name) && len(sel) > 0 {
				continue
			}

			out = append(out, f)
		case core.OpPartial:
			cp := f
			if selected(f.Name) {
				cp.Optional = true
			}

			out = append(out, cp)
		case core.OpRequired:
			cp := f
			if selected(f.Name) {
				cp.Optional = false
			}

			out = append(out, cp)
		}
	}

	if len(out) == 0 {
		return core.Type{}, token.NewPosError(token.KindResolution, span, string(op)+" produced an empty struct")
	}

	return core.StructType(out, span), nil
}

func (r *resolver) evalOneOfOp(op core.TypeExprOp, variants []core.OneOfVariant, sel []string, span token.Span) (core.Type, error) {
	if len(sel) == 0 {
		return core.Type{}, token.NewPosError(token.KindResolution, span, string(op)+" requires a non-empty variant selector")
	}

	known := map[string]bool{}
	for _, v := range variants {
		known[v.Name] = true
	}

	for _, s := range sel {
		if !known[s] {
			return core.Type{}, token.NewPosError(token.KindResolution, span, "unknown variant selector "+s)
		}
	}

	selected := func(name string) bool {
		for _, s := range sel {
			if s == name {
				return true
			}
		}

		return false
	}

	var out []core.Type

	for _, v := range variants {
		switch op {
		case core.OpExclude:
			if selected(v.Name) {
				continue
			}

			out = append(out, v.Type)
		case core.OpExtract:
			if !selected(v.Name) {
				continue
			}

			out = append(out, v.Type)
		}
	}

	if len(out) == 0 {
		return core.Type{}, token.NewPosError(token.KindResolution, span, string(op)+" produced an empty oneof")
	}

	return core.OneOfType(out, span), nil
}

// resolveStructFields dereferences target (through local/cross-package type
// aliases) down to a concrete field list, if target ultimately names or is
// a struct.
func (r *resolver) resolveStructFields(target core.Type) ([]core.Field, bool) {
	switch target.Kind {
	case core.TKStruct:
		return target.Fields, true
	case core.TKIdent:
		return r.resolveNamedStructFields(target.Ref, 0)
	default:
		return nil, false
	}
}

func (r *resolver) resolveNamedStructFields(ref core.NamedItemContext, depth int) ([]core.Field, bool) {
	if depth > 64 {
		return nil, false
	}

	if ref.RefContext.Equal(r.ref) {
		st, ok := r.items[ref.Name]
		if !ok {
			for _, lifted := range r.result.LiftedStructs {
				if lifted.Name == ref.Name {
					return lifted.Fields, true
				}
			}

			return nil, false
		}

		switch st.kind {
		case KStruct:
			return st.fields, true
		case KTypeAlias:
			return r.resolveStructFieldsByDepth(st.aliasTarget, depth+1)
		default:
			return nil, false
		}
	}

	e, ok := r.reg.Lookup(ref)
	if !ok {
		return nil, false
	}

	switch e.Def.Kind {
	case core.DefStruct:
		return e.Def.Fields, true
	case core.DefTypeAlias:
		return r.resolveStructFieldsByDepth(e.Def.Target, depth+1)
	default:
		return nil, false
	}
}

func (r *resolver) resolveStructFieldsByDepth(t core.Type, depth int) ([]core.Field, bool) {
	switch t.Kind {
	case core.TKStruct:
		return t.Fields, true
	case core.TKIdent:
		return r.resolveNamedStructFields(t.Ref, depth)
	default:
		return nil, false
	}
}

// resolveOneOfVariants is the Exclude/Extract analogue of
// resolveStructFields.
func (r *resolver) resolveOneOfVariants(target core.Type) ([]core.OneOfVariant, bool) {
	switch target.Kind {
	case core.TKOneOf:
		variants := make([]core.OneOfVariant, len(target.Variants))
		for i, v := range target.Variants {
			variants[i] = core.OneOfVariant{Name: variantDefaultName(v, i), Type: v}
		}

		return variants, true
	case core.TKIdent:
		if target.Ref.RefContext.Equal(r.ref) {
			st, ok := r.items[target.Ref.Name]
			if ok && st.kind == KOneOf {
				return st.variants, true
			}

			return nil, false
		}

		e, ok := r.reg.Lookup(target.Ref)
		if ok && (e.Def.Kind == core.DefOneOf || e.Def.Kind == core.DefError) {
			return e.Def.Variants, true
		}

		return nil, false
	default:
		return nil, false
	}
}

func variantDefaultName(t core.Type, i int) string {
	if t.Kind == core.TKIdent {
		return t.Ref.Name
	}

	return "Variant" + itoa(i+1)
}

// resolveArrayElem dereferences target down to an array element type
// (spec §4.6 Phase 3.6 "ArrayItem"; §9 drops the size annotation on the
// result).
func (r *resolver) resolveArrayElem(target core.Type) (core.Type, bool) {
	switch target.Kind {
	case core.TKArray:
		return *target.Elem, true
	case core.TKIdent:
		if target.Ref.RefContext.Equal(r.ref) {
			st, ok := r.items[target.Ref.Name]
			if ok && st.kind == KTypeAlias {
				return r.resolveArrayElem(st.aliasTarget)
			}

			return core.Type{}, false
		}

		e, ok := r.reg.Lookup(target.Ref)
		if ok && e.Def.Kind == core.DefTypeAlias {
			return r.resolveArrayElem(e.Def.Target)
		}

		return core.Type{}, false
	default:
		return core.Type{}, false
	}
}
