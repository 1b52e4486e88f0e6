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

// Package ast holds the spanned abstract syntax tree the parser produces: a
// file is a sequence of items preceded by optional module-level metadata
// (spec §4.2). Item is a sealed sum discriminated by Kind, matching the
// "exhaustive match over a tagged union" shape the design favors over
// simulated vtables (spec §9).
package ast

import (
	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/token"
	"github.com/kintsu-lang/kintsu/util"
)

// File is the root AST node for one parsed source file.
type File struct {
	Path       string
	ModuleAttrs []Attr // #![...] attributes at file scope
	Items      []Item
}

// ItemKind discriminates the Item sum type.
type ItemKind int

const (
	INamespace ItemKind = iota
	IUse
	IStruct
	IEnum
	IType
	IOneOf
	IError
	IOperation
	INestedNamespace
)

// Item is one top-level (or nested-namespace) declaration.
type Item struct {
	Kind  ItemKind
	Span  token.Span
	Attrs []Attr
	Doc   []string

	// INamespace
	NamespaceName string

	// IUse
	Use *UseDecl

	// IStruct
	StructName string
	Fields     []core.Field

	// IEnum
	EnumName     string
	EnumKind     core.EnumVariantKind
	EnumVariants []core.EnumVariant

	// IType
	AliasName string
	AliasType core.Type

	// IOneOf, IError
	SumName     string
	SumVariants []core.OneOfVariant

	// IOperation
	OpName   string
	Params   []core.Arg
	Return   core.Type
	Fallible bool

	// INestedNamespace
	NestedName  string
	NestedItems []Item
}

// UseDecl is a `use` import; it names either a whole namespace (Ref form,
// `use pkg::ns;`) or a single item (Item form, `use pkg::ns::Item;`).
type UseDecl struct {
	Path     []string
	IsItem   bool // true: last path segment names an item, not a namespace
	Span     token.Span
}

// Attr is a parsed `#[name(args...)]` or `#![name(args...)]` attribute.
// Recognized names are version, err, tag, rename; unrecognized ones are kept
// verbatim and silently passed through (spec §4.2 Metadata).
type Attr struct {
	Name string
	Args []string
	Span token.Span
	// KV holds named arguments like tag(name="k", content="c"), in
	// source order, so pretty-printing round-trips deterministically.
	KV util.AttributeList
}
