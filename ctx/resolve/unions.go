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
	"github.com/kintsu-lang/kintsu/ctx"
	"github.com/kintsu-lang/kintsu/token"
)

// unionSite is one Union{&} found during Phase 4, with its generated name
// and the field it will eventually replace.
type unionSite struct {
	name     string
	typ      core.Type
	setField func(core.Type)
}

// phase4IdentifyUnions walks every field, parameter, return type, oneof
// variant and alias target, collecting every Union node with a generated
// name derived from the accumulating context stack (spec §4.6 Phase 4).
// Each operand is validated to resolve to a struct.
func (r *resolver) phase4IdentifyUnions() ([]unionSite, error) {
	var sites []unionSite

	stack := []string{}

	push := func(seg string) { stack = append(stack, pascal(seg)) }
	pop := func() { stack = stack[:len(stack)-1] }

	genName := func() string {
		base := ""
		for _, s := range stack {
			base += s
		}

		r.nameCounters[base]++
		n := r.nameCounters[base]

		if n == 1 {
			return base
		}

		return base + itoa(n)
	}

	var walk func(t core.Type, setField func(core.Type)) error

	walk = func(t core.Type, setField func(core.Type)) error {
		switch t.Kind {
		case core.TKUnion:
			for _, op := range t.UnionOperands {
				if !r.isStructOperand(op) {
					return token.NewPosError(token.KindResolution, op.Span, "union operand must resolve to a struct")
				}
			}

			name := genName()
			sites = append(sites, unionSite{name: name, typ: t, setField: setField})
			setField(core.IdentType(core.NewNamedItemContext(r.ref, name), t.Span))

			return nil
		case core.TKArray:
			return walk(*t.Elem, func(nt core.Type) {
				setField(core.ArrayType(nt, t.Size, t.Span))
			})
		case core.TKParen:
			return walk(*t.Inner, func(nt core.Type) {
				setField(core.ParenType(nt, t.Span))
			})
		case core.TKResult:
			return walk(*t.Inner, func(nt core.Type) {
				setField(core.ResultType(nt, t.Span))
			})
		case core.TKOneOf:
			for i := range t.Variants {
				i := i
				push(itoa(i + 1))

				if err := walk(t.Variants[i], func(nt core.Type) { t.Variants[i] = nt }); err != nil {
					pop()
					return err
				}

				pop()
			}

			setField(t)

			return nil
		case core.TKStruct:
			for i := range t.Fields {
				i := i
				push(t.Fields[i].Name)

				if err := walk(t.Fields[i].Type, func(nt core.Type) { t.Fields[i].Type = nt }); err != nil {
					pop()
					return err
				}

				pop()
			}

			setField(t)

			return nil
		default:
			return nil
		}
	}

	for _, name := range r.order {
		st := r.items[name]
		push(name)

		var err error

		switch st.kind {
		case KStruct:
			for i := range st.fields {
				i := i
				push(st.fields[i].Name)
				err = walk(st.fields[i].Type, func(nt core.Type) { st.fields[i].Type = nt })
				pop()

				if err != nil {
					break
				}
			}
		case KOneOf:
			for i := range st.variants {
				i := i
				push(st.variants[i].Name)
				err = walk(st.variants[i].Type, func(nt core.Type) { st.variants[i].Type = nt })
				pop()

				if err != nil {
					break
				}
			}
		case KTypeAlias:
			// "Value" keeps a whole-alias union's generated name ("FooValue")
			// distinct from the alias item's own name ("Foo"); without it
			// genName() would return the alias's bare name and the merged
			// struct would collide with the alias in the registry.
			push("Value")
			err = walk(st.aliasTarget, func(nt core.Type) { st.aliasTarget = nt })
			pop()
		case KOperation:
			for i := range st.params {
				i := i
				push(st.params[i].Name)
				err = walk(st.params[i].Type, func(nt core.Type) { st.params[i].Type = nt })
				pop()

				if err != nil {
					break
				}
			}

			if err == nil {
				push("Return")
				err = walk(st.ret, func(nt core.Type) { st.ret = nt })
				pop()
			}
		}

		pop()

		if err != nil {
			return nil, err
		}
	}

	return sites, nil
}

// isStructOperand reports whether t resolves to a struct, either a named
// struct definition or an anonymous struct literal (spec §4.6 Phase 4
// operand validation).
func (r *resolver) isStructOperand(t core.Type) bool {
	switch t.Kind {
	case core.TKStruct:
		return true
	case core.TKIdent:
		_, ok := r.resolveNamedStructFields(t.Ref, 0)
		return ok
	default:
		return false
	}
}

// phase5MergeUnions produces a merged struct for every identified union
// site: fields collected left-to-right, left operand wins on name conflict,
// nested unions flattened, anonymous operands contribute fields directly
// (spec §4.6 Phase 5).
func (r *resolver) phase5MergeUnions(sites []unionSite) {
	for _, site := range sites {
		merged := r.mergeUnionFields(site.typ)
		r.result.MergedUnions = append(r.result.MergedUnions, ctx.LiftedItem{
			Name:   site.name,
			Fields: merged,
			Span:   site.typ.Span,
		})
	}
}

func (r *resolver) mergeUnionFields(t core.Type) []core.Field {
	var out []core.Field

	seen := map[string]bool{}

	add := func(fields []core.Field) {
		for _, f := range fields {
			if seen[f.Name] {
				continue
			}

			seen[f.Name] = true
			out = append(out, f)
		}
	}

	var operandFields func(op core.Type) []core.Field

	operandFields = func(op core.Type) []core.Field {
		switch op.Kind {
		case core.TKStruct:
			return op.Fields
		case core.TKUnion:
			var nested []core.Field

			nestedSeen := map[string]bool{}

			for _, o := range op.UnionOperands {
				for _, f := range operandFields(o) {
					if nestedSeen[f.Name] {
						continue
					}

					nestedSeen[f.Name] = true
					nested = append(nested, f)
				}
			}

			return nested
		case core.TKIdent:
			fields, _ := r.resolveNamedStructFields(op.Ref, 0)
			return fields
		default:
			return nil
		}
	}

	if t.Kind == core.TKUnion {
		for _, op := range t.UnionOperands {
			add(operandFields(op))
		}
	}

	return out
}
