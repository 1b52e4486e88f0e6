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

	"github.com/kintsu-lang/kintsu/ast"
	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/token"
)

// tagFromAttrArgs parses a parsed #[tag(...)] attribute into a core.TagSpec,
// defaulting to type_hint when no style argument is given (spec §4.6 Phase
// 4.5).
func tagFromAttrArgs(attr ast.Attr) (core.TagSpec, error) {
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

// phase4_5ValidateTagging checks every oneof/error's #[tag(...)] against its
// per-style constraints (spec §4.6 Phase 4.5). Items that don't override
// inherit the namespace-level default via EffectiveTag().
func (r *resolver) phase4_5ValidateTagging() error {
	for _, name := range r.order {
		st := r.items[name]

		if st.kind != KOneOf {
			continue
		}

		tag := st.tag
		if tag == nil {
			tag = r.tag
		}

		if tag == nil {
			continue // default type_hint, no structural constraint
		}

		if err := r.validateTagStyle(name, st, *tag); err != nil {
			return err
		}
	}

	// Non-variant types (struct, enum) may not carry #[tag(...)] at all.
	for _, name := range r.order {
		st := r.items[name]

		if st.kind != KStruct && st.kind != KEnum {
			continue
		}

		if st.tag != nil {
			return token.NewPosError(token.KindTagging, st.tag.Span,
				"#[tag(...)] is only valid on oneof/error, not on "+name)
		}
	}

	return nil
}

func (r *resolver) validateTagStyle(name string, st *itemState, tag core.TagSpec) error {
	switch tag.Style {
	case core.TagAdjacent:
		if tag.Name == tag.Content {
			return token.NewPosError(token.KindTagging, tag.Span, "adjacent tagging requires name != content")
		}
	case core.TagInternal:
		return r.validateInternalTag(name, st, tag)
	case core.TagUntagged:
		return r.validateUntagged(st)
	}

	return nil
}

// validateInternalTag ensures the injected tag field name doesn't collide
// with any existing field in any variant, and that every tuple-variant's
// referenced type is itself a struct (spec §4.6 Phase 4.5 "internal").
func (r *resolver) validateInternalTag(name string, st *itemState, tag core.TagSpec) error {
	for _, v := range st.variants {
		fields, ok := r.resolveStructFields(v.Type)
		if !ok {
			return token.NewPosError(token.KindTagging, v.Span,
				"internal tagging requires every variant's payload to be a struct").SetHint("variant " + v.Name + " of " + name)
		}

		for _, f := range fields {
			if f.Name == tag.Name {
				return token.NewPosError(token.KindTagging, f.Span,
					"internal tag field \""+tag.Name+"\" conflicts with existing field in variant "+v.Name).
					SetHint("rename the field or choose a different tag name")
			}
		}
	}

	return nil
}

// validateUntagged requires every variant have a distinguishable structural
// signature: primitive type, or struct signature = sorted required-field
// names (spec §4.6 Phase 4.5 "untagged").
func (r *resolver) validateUntagged(st *itemState) error {
	sigs := map[string][]int{}

	for i, v := range st.variants {
		sig := r.structuralSignature(v.Type)
		sigs[sig] = append(sigs[sig], i)
	}

	var dupGroups [][]int

	for _, idxs := range sigs {
		if len(idxs) > 1 {
			sort.Ints(idxs)
			dupGroups = append(dupGroups, idxs)
		}
	}

	if len(dupGroups) == 0 {
		return nil
	}

	sort.Slice(dupGroups, func(i, j int) bool { return dupGroups[i][0] < dupGroups[j][0] })

	first := dupGroups[0]

	return token.NewPosError(token.KindTagging, st.variants[first[0]].Span,
		"untagged oneof has structurally indistinguishable variants").
		SetHint("give the conflicting variants distinct required fields")
}

// structuralSignature computes a comparable signature: the builtin name for
// primitives, or the sorted required-field-name list for structs.
func (r *resolver) structuralSignature(t core.Type) string {
	if t.Kind == core.TKBuiltin {
		return "builtin:" + string(t.Builtin)
	}

	fields, ok := r.resolveStructFields(t)
	if !ok {
		return "opaque"
	}

	var required []string

	for _, f := range fields {
		if !f.Optional {
			required = append(required, f.Name)
		}
	}

	sort.Strings(required)

	sig := "struct:"
	for _, n := range required {
		sig += n + ","
	}

	return sig
}
