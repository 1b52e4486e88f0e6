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
	"github.com/kintsu-lang/kintsu/ast"
	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/token"
)

func (p *parser) parseItem() (ast.Item, error) {
	docs := p.collectDocs(p.s.PeekTok(0).Span.Start.Line)
	attrs, err := p.parseOuterAttrs()

	if err != nil {
		return ast.Item{}, err
	}

	tok := p.s.PeekTok(0)

	var item ast.Item

	switch tok.Type {
	case token.KwNamespace:
		item, err = p.parseNamespaceDecl()
	case token.KwUse:
		item, err = p.parseUseDecl()
	case token.KwStruct:
		item, err = p.parseStructDecl()
	case token.KwEnum:
		item, err = p.parseEnumDecl()
	case token.KwType:
		item, err = p.parseTypeAliasDecl()
	case token.KwOneof:
		item, err = p.parseSumDecl(ast.IOneOf, token.KwOneof)
	case token.KwError:
		item, err = p.parseSumDecl(ast.IError, token.KwError)
	case token.KwOperation:
		item, err = p.parseOperationDecl()
	default:
		return ast.Item{}, token.NewPosError(token.KindParsing, tok.Span,
			"expected an item (namespace, use, struct, enum, type, oneof, error, operation), found "+string(tok.Type))
	}

	if err != nil {
		return ast.Item{}, err
	}

	item.Attrs = attrs
	item.Doc = docs

	return item, nil
}

func (p *parser) parseNamespaceDecl() (ast.Item, error) {
	start, _ := p.s.Parse(token.KwNamespace)

	nameTok, err := p.s.Parse(token.Ident, token.Path)
	if err != nil {
		return ast.Item{}, err
	}

	if p.s.Peek(0, token.LBrace) {
		inner, err := p.s.Bracket(token.LBrace)
		if err != nil {
			return ast.Item{}, err
		}

		sub := &parser{s: inner, path: p.path, docByEndLine: p.docByEndLine}

		var items []ast.Item
		for !sub.s.AtEOF() {
			it, err := sub.parseItem()
			if err != nil {
				return ast.Item{}, err
			}

			items = append(items, it)
		}

		return ast.Item{
			Kind:        ast.INestedNamespace,
			Span:        token.Join(start.Span, nameTok.Span),
			NestedName:  nameTok.Text,
			NestedItems: items,
		}, nil
	}

	end, err := p.s.Parse(token.Semi)
	if err != nil {
		return ast.Item{}, err
	}

	return ast.Item{
		Kind:          ast.INamespace,
		Span:          token.Join(start.Span, end.Span),
		NamespaceName: nameTok.Text,
	}, nil
}

func (p *parser) parseUseDecl() (ast.Item, error) {
	start, _ := p.s.Parse(token.KwUse)

	pathTok, err := p.s.Parse(token.Ident, token.Path)
	if err != nil {
		return ast.Item{}, err
	}

	end, err := p.s.Parse(token.Semi)
	if err != nil {
		return ast.Item{}, err
	}

	segs := splitPath(pathTok.Text)
	last := segs[len(segs)-1]
	isItem := len(last) > 0 && last[0] >= 'A' && last[0] <= 'Z'

	return ast.Item{
		Kind: ast.IUse,
		Span: token.Join(start.Span, end.Span),
		Use: &ast.UseDecl{
			Path:   segs,
			IsItem: isItem,
			Span:   token.Join(start.Span, end.Span),
		},
	}, nil
}

func (p *parser) parseStructDecl() (ast.Item, error) {
	start, _ := p.s.Parse(token.KwStruct)

	nameTok, err := p.s.Parse(token.Ident)
	if err != nil {
		return ast.Item{}, err
	}

	body, err := p.s.Bracket(token.LBrace)
	if err != nil {
		return ast.Item{}, err
	}

	sub := &parser{s: body, path: p.path, docByEndLine: p.docByEndLine}

	var fields []core.Field

	for !sub.s.AtEOF() {
		f, err := sub.parseField()
		if err != nil {
			return ast.Item{}, err
		}

		fields = append(fields, f)

		if sub.s.Peek(0, token.Comma) {
			sub.s.Parse(token.Comma)
		}
	}

	return ast.Item{
		Kind:       ast.IStruct,
		Span:       token.Join(start.Span, nameTok.Span),
		StructName: nameTok.Text,
		Fields:     fields,
	}, nil
}

func (p *parser) parseEnumDecl() (ast.Item, error) {
	start, _ := p.s.Parse(token.KwEnum)

	nameTok, err := p.s.Parse(token.Ident)
	if err != nil {
		return ast.Item{}, err
	}

	body, err := p.s.Bracket(token.LBrace)
	if err != nil {
		return ast.Item{}, err
	}

	var variants []core.EnumVariant

	kind := core.EnumInt
	nextInt := int64(0)

	for !body.AtEOF() {
		if body.Peek(0, token.Str) {
			kind = core.EnumStr

			tok, _ := body.Parse(token.Str)
			variants = append(variants, core.EnumVariant{Name: tok.Text, Span: tok.Span, StrVal: tok.Text})
		} else {
			tok, err := body.Parse(token.Ident)
			if err != nil {
				return ast.Item{}, err
			}

			v := core.EnumVariant{Name: tok.Text, Span: tok.Span, IntVal: nextInt}

			if body.Peek(0, token.Equals) {
				body.Parse(token.Equals)

				numTok, err := body.Parse(token.Int)
				if err != nil {
					return ast.Item{}, err
				}

				v.IntVal = parseInt(numTok.Text)
			}

			nextInt = v.IntVal + 1
			variants = append(variants, v)
		}

		if body.Peek(0, token.Comma) {
			body.Parse(token.Comma)
		}
	}

	return ast.Item{
		Kind:         ast.IEnum,
		Span:         token.Join(start.Span, nameTok.Span),
		EnumName:     nameTok.Text,
		EnumKind:     kind,
		EnumVariants: variants,
	}, nil
}

func parseInt(s string) int64 {
	var n int64
	for _, c := range s {
		n = n*10 + int64(c-'0')
	}

	return n
}

func (p *parser) parseTypeAliasDecl() (ast.Item, error) {
	start, _ := p.s.Parse(token.KwType)

	nameTok, err := p.s.Parse(token.Ident)
	if err != nil {
		return ast.Item{}, err
	}

	if _, err := p.s.Parse(token.Equals); err != nil {
		return ast.Item{}, err
	}

	typ, err := p.parseType()
	if err != nil {
		return ast.Item{}, err
	}

	end, err := p.s.Parse(token.Semi)
	if err != nil {
		return ast.Item{}, err
	}

	return ast.Item{
		Kind:      ast.IType,
		Span:      token.Join(start.Span, end.Span),
		AliasName: nameTok.Text,
		AliasType: typ,
	}, nil
}

// parseSumDecl parses both `oneof` and `error` declarations, which share a
// grammar: a name plus a brace-delimited list of variants, each either an
// inline struct `{ fields }` or a tuple-style `(Type)` payload.
func (p *parser) parseSumDecl(kind ast.ItemKind, kw token.Type) (ast.Item, error) {
	start, _ := p.s.Parse(kw)

	nameTok, err := p.s.Parse(token.Ident)
	if err != nil {
		return ast.Item{}, err
	}

	body, err := p.s.Bracket(token.LBrace)
	if err != nil {
		return ast.Item{}, err
	}

	sub := &parser{s: body, path: p.path, docByEndLine: p.docByEndLine}

	var variants []core.OneOfVariant

	for !sub.s.AtEOF() {
		vNameTok, err := sub.s.Parse(token.Ident)
		if err != nil {
			return ast.Item{}, err
		}

		var payload core.Type

		switch {
		case sub.s.Peek(0, token.LBrace):
			payload, err = sub.parseAnonStruct()
			if err != nil {
				return ast.Item{}, err
			}
		case sub.s.Peek(0, token.LParen):
			inner, err := sub.s.Bracket(token.LParen)
			if err != nil {
				return ast.Item{}, err
			}

			innerP := &parser{s: inner, path: p.path, docByEndLine: p.docByEndLine}

			payload, err = innerP.parseType()
			if err != nil {
				return ast.Item{}, err
			}
		default:
			payload = core.StructType(nil, vNameTok.Span)
		}

		variants = append(variants, core.OneOfVariant{Name: vNameTok.Text, Span: vNameTok.Span, Type: payload})

		if sub.s.Peek(0, token.Comma) {
			sub.s.Parse(token.Comma)
		} else if sub.s.Peek(0, token.Pipe) {
			sub.s.Parse(token.Pipe)
		}
	}

	return ast.Item{
		Kind:        kind,
		Span:        token.Join(start.Span, nameTok.Span),
		SumName:     nameTok.Text,
		SumVariants: variants,
	}, nil
}

func (p *parser) parseOperationDecl() (ast.Item, error) {
	start, _ := p.s.Parse(token.KwOperation)

	nameTok, err := p.s.Parse(token.Ident)
	if err != nil {
		return ast.Item{}, err
	}

	paramsBody, err := p.s.Bracket(token.LParen)
	if err != nil {
		return ast.Item{}, err
	}

	var params []core.Arg

	for !paramsBody.AtEOF() {
		sub := &parser{s: paramsBody, path: p.path, docByEndLine: p.docByEndLine}

		f, err := sub.parseField()
		if err != nil {
			return ast.Item{}, err
		}

		params = append(params, core.Arg{Name: f.Name, Span: f.Span, Type: f.Type, Optional: f.Optional, Comments: f.Comments})

		if paramsBody.Peek(0, token.Comma) {
			paramsBody.Parse(token.Comma)
		}
	}

	if _, err := p.s.Parse(token.Arrow); err != nil {
		return ast.Item{}, err
	}

	ret, err := p.parseType()
	if err != nil {
		return ast.Item{}, err
	}

	end, err := p.s.Parse(token.Semi)
	if err != nil {
		return ast.Item{}, err
	}

	fallible := ret.Kind == core.TKResult

	return ast.Item{
		Kind:     ast.IOperation,
		Span:     token.Join(start.Span, end.Span),
		OpName:   nameTok.Text,
		Params:   params,
		Return:   ret,
		Fallible: fallible,
	}, nil
}
