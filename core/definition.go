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

package core

import "github.com/kintsu-lang/kintsu/token"

// DefKind discriminates the Definition sum type (spec §3 Definition).
type DefKind int

const (
	DefStruct DefKind = iota
	DefEnum
	DefOneOf
	DefError
	DefTypeAlias
	DefOperation
)

// EnumVariantKind tells whether an enum's variants are integers or strings.
type EnumVariantKind int

const (
	EnumInt EnumVariantKind = iota
	EnumStr
)

// EnumVariant is one member of an Enum definition.
type EnumVariant struct {
	Name     string
	Span     token.Span
	IntVal   int64
	StrVal   string
}

// OneOfVariant is one member of a OneOf or Error definition: a name plus the
// payload type (usually a struct reference, possibly anonymous).
type OneOfVariant struct {
	Name string
	Span token.Span
	Type Type
}

// Definition is what the type registry stores: the fully-typed shape of a
// registerable item, independent of where it came from.
type Definition struct {
	Kind DefKind
	Name string
	Span token.Span

	// DefStruct
	Fields []Field

	// DefEnum
	EnumKind     EnumVariantKind
	EnumVariants []EnumVariant

	// DefOneOf, DefError
	Variants []OneOfVariant
	Tag      *TagSpec // nil => default type_hint style

	// DefTypeAlias
	Target Type

	// DefOperation
	Params     []Arg
	Return     Type
	ErrRef     *NamedItemContext // resolved error type, nil for non-fallible ops
	ErrSpan    token.Span

	// Version resolved per spec §4.6 Phase 6; default 1.
	Version int
}

// TagStyle enumerates the oneof/union/error discriminant styles (spec §4.6
// Phase 4.5).
type TagStyle string

const (
	TagTypeHint TagStyle = "type_hint"
	TagExternal TagStyle = "external"
	TagInternal TagStyle = "internal"
	TagAdjacent TagStyle = "adjacent"
	TagUntagged TagStyle = "untagged"
	TagIndex    TagStyle = "index"
)

// TagSpec is a parsed #[tag(...)] attribute.
type TagSpec struct {
	Style   TagStyle
	Name    string // internal/adjacent: tag field name
	Content string // adjacent: content field name
	Span    token.Span
}
