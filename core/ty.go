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

// BuiltinKind enumerates the fixed set of primitive types the IDL knows
// about (spec §3 Builtin kind).
type BuiltinKind string

const (
	I8      BuiltinKind = "i8"
	I16     BuiltinKind = "i16"
	I32     BuiltinKind = "i32"
	I64     BuiltinKind = "i64"
	U8      BuiltinKind = "u8"
	U16     BuiltinKind = "u16"
	U32     BuiltinKind = "u32"
	U64     BuiltinKind = "u64"
	USize   BuiltinKind = "usize"
	F16     BuiltinKind = "f16"
	F32     BuiltinKind = "f32"
	F64     BuiltinKind = "f64"
	Bool    BuiltinKind = "bool"
	Str     BuiltinKind = "str"
	Dt      BuiltinKind = "datetime"
	Complex BuiltinKind = "complex"
	Binary  BuiltinKind = "binary"
	Base64  BuiltinKind = "base64"
	Never   BuiltinKind = "never"
)

// Builtins is the complete set of recognized builtin spellings, used by the
// parser and by reference validation (spec §4.8, §8 "isBuiltin").
var Builtins = map[string]BuiltinKind{
	"i8": I8, "i16": I16, "i32": I32, "i64": I64,
	"u8": U8, "u16": U16, "u32": U32, "u64": U64,
	"usize": USize, "f16": F16, "f32": F32, "f64": F64,
	"bool": Bool, "str": Str, "datetime": Dt,
	"complex": Complex, "binary": Binary, "base64": Base64, "never": Never,
}

// TypeExprOp names a compile-time type-expression operator (spec §4.6
// Phase 3.6).
type TypeExprOp string

const (
	OpPick     TypeExprOp = "Pick"
	OpOmit     TypeExprOp = "Omit"
	OpPartial  TypeExprOp = "Partial"
	OpRequired TypeExprOp = "Required"
	OpExclude  TypeExprOp = "Exclude"
	OpExtract  TypeExprOp = "Extract"
	OpArrayItem TypeExprOp = "ArrayItem"
)

// TypeExprOps is the recognized set of type-expression operator spellings.
var TypeExprOps = map[string]TypeExprOp{
	"Pick": OpPick, "Omit": OpOmit, "Partial": OpPartial,
	"Required": OpRequired, "Exclude": OpExclude, "Extract": OpExtract,
	"ArrayItem": OpArrayItem,
}

// Type is the sum type for every type expression the grammar can produce.
// Exactly one of the exported fields is non-nil/non-zero; TypeKind reports
// which.
type Type struct {
	Kind TypeKind
	Span token.Span

	Builtin BuiltinKind // TKBuiltin

	Ref NamedItemContext // TKIdent: unresolved paths carry only Name/Package populated as parsed; resolved after lookup.

	Elem *Type // TKArray: element type
	Size *int  // TKArray: optional fixed size

	Inner *Type // TKParen, TKResult: wrapped type

	UnionOperands []Type // TKUnion: rep of IdentOrUnion, flattened "&" chain

	Lhs *Type // TKUnionOr
	Rhs *Type // TKUnionOr

	Variants []Type // TKOneOf: anonymous oneof variant types

	Fields []Field // TKStruct: anonymous struct

	ExprOp   TypeExprOp // TKTypeExpr
	ExprArgs []Type     // TKTypeExpr: first arg is always the target type
	ExprSel  []string   // TKTypeExpr: field/variant selector, if any
}

// TypeKind discriminates the Type sum type.
type TypeKind int

const (
	TKBuiltin TypeKind = iota
	TKIdent
	TKArray
	TKParen
	TKResult
	TKUnion
	TKUnionOr
	TKOneOf
	TKStruct
	TKTypeExpr
)

func Builtin(kind BuiltinKind, span token.Span) Type {
	return Type{Kind: TKBuiltin, Builtin: kind, Span: span}
}

func IdentType(ref NamedItemContext, span token.Span) Type {
	return Type{Kind: TKIdent, Ref: ref, Span: span}
}

func ArrayType(elem Type, size *int, span token.Span) Type {
	e := elem
	return Type{Kind: TKArray, Elem: &e, Size: size, Span: span}
}

func ParenType(inner Type, span token.Span) Type {
	i := inner
	return Type{Kind: TKParen, Inner: &i, Span: span}
}

func ResultType(inner Type, span token.Span) Type {
	i := inner
	return Type{Kind: TKResult, Inner: &i, Span: span}
}

func UnionType(operands []Type, span token.Span) Type {
	return Type{Kind: TKUnion, UnionOperands: operands, Span: span}
}

func UnionOrType(lhs, rhs Type, span token.Span) Type {
	l, r := lhs, rhs
	return Type{Kind: TKUnionOr, Lhs: &l, Rhs: &r, Span: span}
}

func OneOfType(variants []Type, span token.Span) Type {
	return Type{Kind: TKOneOf, Variants: variants, Span: span}
}

func StructType(fields []Field, span token.Span) Type {
	return Type{Kind: TKStruct, Fields: fields, Span: span}
}

func TypeExprType(op TypeExprOp, args []Type, sel []string, span token.Span) Type {
	return Type{Kind: TKTypeExpr, ExprOp: op, ExprArgs: args, ExprSel: sel, Span: span}
}

// Field is a named member of a struct, with optionality a property of the
// field separator rather than of the type (spec §3 Field/Arg).
type Field struct {
	Name     string
	Span     token.Span
	Type     Type
	Optional bool
	Comments []string
}

// Arg is an operation parameter; same shape as Field.
type Arg struct {
	Name     string
	Span     token.Span
	Type     Type
	Optional bool
	Comments []string
}
