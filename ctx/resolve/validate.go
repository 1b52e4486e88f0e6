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

// phase8ValidateReferences confirms every Type::Ident resolves to a
// registered type, in this namespace, a lifted/merged synthetic item, or a
// loaded dependency; also flags duplicate field names within a struct
// (spec §4.6 Phase 8). This runs last because earlier phases synthesize new
// named types that must themselves be considered valid targets.
func (r *resolver) phase8ValidateReferences() error {
	known := map[string]bool{}

	for name, st := range r.items {
		if st.kind == KOperation {
			continue
		}

		known[name] = true
	}

	for _, lifted := range r.result.LiftedStructs {
		known[lifted.Name] = true
	}

	for _, merged := range r.result.MergedUnions {
		known[merged.Name] = true
	}

	var checkType func(t core.Type) error

	checkType = func(t core.Type) error {
		switch t.Kind {
		case core.TKIdent:
			if _, ok := core.Builtins[t.Ref.Name]; ok {
				return nil
			}

			if t.Ref.RefContext.Equal(r.ref) {
				if known[t.Ref.Name] {
					return nil
				}

				return token.NewPosError(token.KindResolution, t.Span, "undefined type "+t.Ref.Name)
			}

			if _, ok := r.reg.Lookup(t.Ref); !ok {
				return token.NewPosError(token.KindResolution, t.Span, "undefined type "+t.Ref.String())
			}

			return nil
		case core.TKArray:
			return checkType(*t.Elem)
		case core.TKParen:
			return checkType(*t.Inner)
		case core.TKResult:
			return checkType(*t.Inner)
		case core.TKUnion:
			for _, op := range t.UnionOperands {
				if err := checkType(op); err != nil {
					return err
				}
			}

			return nil
		case core.TKOneOf:
			for _, v := range t.Variants {
				if err := checkType(v); err != nil {
					return err
				}
			}

			return nil
		case core.TKStruct:
			return checkFields(t.Fields)
		default:
			return nil
		}
	}

	for _, name := range r.order {
		st := r.items[name]

		switch st.kind {
		case KStruct:
			if err := checkFields(st.fields); err != nil {
				return err
			}

			for _, f := range st.fields {
				if err := checkType(f.Type); err != nil {
					return err
				}
			}
		case KOneOf:
			for _, v := range st.variants {
				if err := checkType(v.Type); err != nil {
					return err
				}
			}
		case KTypeAlias:
			if err := checkType(st.aliasTarget); err != nil {
				return err
			}
		case KOperation:
			for _, p := range st.params {
				if err := checkType(p.Type); err != nil {
					return err
				}
			}

			if err := checkType(st.ret); err != nil {
				return err
			}
		}
	}

	for _, lifted := range r.result.LiftedStructs {
		if err := checkFields(lifted.Fields); err != nil {
			return err
		}
	}

	for _, merged := range r.result.MergedUnions {
		if err := checkFields(merged.Fields); err != nil {
			return err
		}
	}

	return nil
}

// checkFields detects duplicate field names within a struct, reporting a
// secondary label on the first declaration (spec §4.6 Phase 8).
func checkFields(fields []core.Field) error {
	seen := map[string]token.Span{}

	for _, f := range fields {
		if first, ok := seen[f.Name]; ok {
			return token.NewPosError(token.KindResolution, f.Span,
				"duplicate field "+f.Name,
				token.NewErrDetail(first, "first declared here"))
		}

		seen[f.Name] = f.Span
	}

	return nil
}
