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

// Package declare defines the flattened declaration tree the emitter
// produces from a fully-resolved registry (spec §4.7): a serializable
// mirror of every registered definition, stripped of the resolver's working
// state (no TypeExpr, no UnionOr — those never survive resolution).
package declare

import "github.com/kintsu-lang/kintsu/core"

// DeclTypeKind discriminates DeclType.
type DeclTypeKind int

const (
	DKBuiltin DeclTypeKind = iota
	DKNamed
	DKArray
	DKParen
	DKResult
)

// DeclType is the flattened type-reference shape; every Type the resolver
// can still hold (builtin, ident, array, paren, result) maps onto it
// one-to-one. Anonymous structs and oneofs never reach this stage — Phase 1
// and the emitter's own hoisting step replace them with DKNamed references.
type DeclType struct {
	Kind DeclTypeKind

	Builtin core.BuiltinKind // DKBuiltin

	Ref string // DKNamed: fully-qualified "package::ns::Name"

	Elem *DeclType // DKArray
	Size *int      // DKArray

	Inner *DeclType // DKParen

	Ok     *DeclType // DKResult
	ErrRef string    // DKResult: fully-qualified error type name
}

// Field is a named, typed struct member or operation parameter.
type Field struct {
	Name     string
	Type     DeclType
	Optional bool
	Comments []string
}

// EnumVariant mirrors core.EnumVariant without the span.
type EnumVariant struct {
	Name   string
	IntVal int64
	StrVal string
}

// OneOfVariant is one member of a OneOf or Error declaration.
type OneOfVariant struct {
	Name string
	Type DeclType
}

// Kind discriminates Declaration.
type Kind int

const (
	DeclStruct Kind = iota
	DeclEnum
	DeclOneOf
	DeclError
	DeclTypeAlias
	DeclOperation
)

// Declaration is one item-level node in the flattened tree: exactly one
// definition kind's fields below are populated, per Kind.
type Declaration struct {
	Kind     Kind
	Name     string
	Version  int
	Comments []string

	// DeclStruct
	Fields []Field

	// DeclEnum
	EnumKind     core.EnumVariantKind
	EnumVariants []EnumVariant

	// DeclOneOf, DeclError
	Variants []OneOfVariant
	Tag      *core.TagSpec

	// DeclTypeAlias
	Target *DeclType

	// DeclOperation
	Params []Field
	Return *DeclType
	ErrRef string // resolved error type, empty for non-fallible ops

	// Synthesized marks a declaration the emitter hoisted (anonymous oneof
	// lifted out of a type alias), rather than one the source declared.
	Synthesized bool
}

// NamespaceDeclaration is one namespace's flattened items, plus every
// cross-package reference it makes.
type NamespaceDeclaration struct {
	Name         string
	Items        []Declaration
	ExternalRefs []string // sorted, deduplicated qualified names
}

// TypeRegistryDeclaration is one package's full declaration tree.
type TypeRegistryDeclaration struct {
	Package    string
	Namespaces []NamespaceDeclaration // sorted by name
}

// DeclarationBundle is the emitter's final output (spec §4.7): the root
// package's tree plus every dependency's, keyed by package name.
type DeclarationBundle struct {
	Root         TypeRegistryDeclaration
	Dependencies map[string]TypeRegistryDeclaration
}
