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

package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kintsu-lang/kintsu/ast"
	"github.com/kintsu-lang/kintsu/core"
)

// Print is a pretty-printer from AST to source, the inverse of Parse. It
// exists to support the roundtrip law parse(print(ast)) == ast for every
// AST the printer emits (spec §8 Roundtrip laws); it does not attempt to
// reproduce the original formatting byte-for-byte, only a normalized,
// re-parseable rendering.
func Print(f *ast.File) string {
	var sb strings.Builder

	for _, a := range f.ModuleAttrs {
		sb.WriteString(printAttr(a, true))
		sb.WriteString("\n")
	}

	for _, item := range f.Items {
		printItem(&sb, item, 0)
	}

	return sb.String()
}

func indent(n int) string { return strings.Repeat("    ", n) }

func printAttr(a ast.Attr, inner bool) string {
	bang := ""
	if inner {
		bang = "!"
	}

	args := append([]string{}, a.Args...)

	for _, kv := range a.KV.All() {
		args = append(args, fmt.Sprintf("%s=%q", kv.Key, kv.Value))
	}

	if len(args) == 0 {
		return fmt.Sprintf("#%s[%s]", bang, a.Name)
	}

	return fmt.Sprintf("#%s[%s(%s)]", bang, a.Name, strings.Join(args, ", "))
}

func printItem(sb *strings.Builder, item ast.Item, depth int) {
	for _, d := range item.Doc {
		sb.WriteString(indent(depth) + "//" + d + "\n")
	}

	for _, a := range item.Attrs {
		sb.WriteString(indent(depth) + printAttr(a, false) + "\n")
	}

	sb.WriteString(indent(depth))

	switch item.Kind {
	case ast.INamespace:
		sb.WriteString("namespace " + item.NamespaceName + ";\n")
	case ast.IUse:
		sb.WriteString("use " + strings.Join(item.Use.Path, "::") + ";\n")
	case ast.IStruct:
		sb.WriteString("struct " + item.StructName + " {\n")
		for _, f := range item.Fields {
			sb.WriteString(indent(depth+1) + printField(f) + ",\n")
		}
		sb.WriteString(indent(depth) + "}\n")
	case ast.IEnum:
		sb.WriteString("enum " + item.EnumName + " {\n")
		for _, v := range item.EnumVariants {
			if item.EnumKind == core.EnumStr {
				sb.WriteString(indent(depth+1) + strconv.Quote(v.StrVal) + ",\n")
			} else {
				sb.WriteString(fmt.Sprintf("%s%s = %d,\n", indent(depth+1), v.Name, v.IntVal))
			}
		}
		sb.WriteString(indent(depth) + "}\n")
	case ast.IType:
		sb.WriteString("type " + item.AliasName + " = " + printType(item.AliasType) + ";\n")
	case ast.IOneOf, ast.IError:
		kw := "oneof"
		if item.Kind == ast.IError {
			kw = "error"
		}

		sb.WriteString(kw + " " + item.SumName + " {\n")

		for _, v := range item.SumVariants {
			if v.Type.Kind == core.TKStruct {
				sb.WriteString(indent(depth+1) + v.Name + " " + printType(v.Type) + ",\n")
			} else {
				sb.WriteString(indent(depth+1) + v.Name + "(" + printType(v.Type) + "),\n")
			}
		}

		sb.WriteString(indent(depth) + "}\n")
	case ast.IOperation:
		var ps []string
		for _, a := range item.Params {
			ps = append(ps, printField(core.Field{Name: a.Name, Type: a.Type, Optional: a.Optional}))
		}

		sb.WriteString("operation " + item.OpName + "(" + strings.Join(ps, ", ") + ") -> " + printType(item.Return) + ";\n")
	case ast.INestedNamespace:
		sb.WriteString("namespace " + item.NestedName + " {\n")
		for _, child := range item.NestedItems {
			printItem(sb, child, depth+1)
		}
		sb.WriteString(indent(depth) + "}\n")
	}
}

func printField(f core.Field) string {
	q := ""
	if f.Optional {
		q = "?"
	}

	return f.Name + q + ": " + printType(f.Type)
}

func printType(t core.Type) string {
	switch t.Kind {
	case core.TKBuiltin:
		return string(t.Builtin)
	case core.TKIdent:
		return refString(t.Ref)
	case core.TKArray:
		size := ""
		if t.Size != nil {
			size = strconv.Itoa(*t.Size)
		}

		return printType(*t.Elem) + "[" + size + "]"
	case core.TKParen:
		return "(" + printType(*t.Inner) + ")"
	case core.TKResult:
		return printType(*t.Inner) + "!"
	case core.TKUnion:
		parts := make([]string, len(t.UnionOperands))
		for i, o := range t.UnionOperands {
			parts[i] = printType(o)
		}

		return strings.Join(parts, " & ")
	case core.TKUnionOr:
		return printType(*t.Lhs) + " &| " + printType(*t.Rhs)
	case core.TKOneOf:
		parts := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			parts[i] = printType(v)
		}

		return "oneof " + strings.Join(parts, " | ")
	case core.TKStruct:
		var sb strings.Builder

		sb.WriteString("{ ")

		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(printField(f))
		}

		sb.WriteString(" }")

		return sb.String()
	case core.TKTypeExpr:
		args := printType(t.ExprArgs[0])
		if len(t.ExprSel) > 0 {
			args += ", " + strings.Join(t.ExprSel, " | ")
		}

		return string(t.ExprOp) + "[" + args + "]"
	}

	return "<?>"
}

func refString(ref core.NamedItemContext) string {
	if len(ref.Namespace) == 0 {
		return ref.Name
	}

	return strings.Join(ref.Namespace, "::") + "::" + ref.Name
}
