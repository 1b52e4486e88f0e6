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
	"strconv"

	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/token"
)

// parseType implements the full type grammar, descending by prefix and then
// applying suffix operators left-to-right, tightest to loosest (spec §4.2
// Type parsing):
//   1. atoms
//   2. "&" union chain
//   3. array suffixes (repeatable)
//   4. "&|" binary operator, left-associative
//   5. trailing "!" (result)
func (p *parser) parseType() (core.Type, error) {
	t, err := p.parseUnionChain()
	if err != nil {
		return core.Type{}, err
	}

	t, err = p.parseArraySuffixes(t)
	if err != nil {
		return core.Type{}, err
	}

	for p.s.Peek(0, token.AmpPipe) {
		opTok, _ := p.s.Parse(token.AmpPipe)

		rhs, err := p.parseUnionChain()
		if err != nil {
			return core.Type{}, err
		}

		rhs, err = p.parseArraySuffixes(rhs)
		if err != nil {
			return core.Type{}, err
		}

		t = core.UnionOrType(t, rhs, token.Join(opTok.Span, rhs.Span))
	}

	if p.s.Peek(0, token.Bang) {
		bangTok, _ := p.s.Parse(token.Bang)
		t = core.ResultType(t, token.Join(t.Span, bangTok.Span))
	}

	return t, nil
}

// parseUnionChain parses a single atom and, if followed by "&", keeps
// consuming "& atom" to build an anonymous struct-intersection Union.
func (p *parser) parseUnionChain() (core.Type, error) {
	first, err := p.parseAtom()
	if err != nil {
		return core.Type{}, err
	}

	if !p.s.Peek(0, token.Amp) {
		return first, nil
	}

	operands := []core.Type{first}

	for p.s.Peek(0, token.Amp) {
		p.s.Parse(token.Amp)

		next, err := p.parseAtom()
		if err != nil {
			return core.Type{}, err
		}

		operands = append(operands, next)
	}

	span := operands[0].Span
	for _, o := range operands[1:] {
		span = token.Join(span, o.Span)
	}

	return core.UnionType(operands, span), nil
}

// parseArraySuffixes consumes zero or more "[N?]" suffixes.
func (p *parser) parseArraySuffixes(t core.Type) (core.Type, error) {
	for p.s.Peek(0, token.LBrack) {
		start, _ := p.s.Parse(token.LBrack)

		var size *int

		if p.s.Peek(0, token.Int) {
			numTok, _ := p.s.Parse(token.Int)

			n, err := strconv.Atoi(numTok.Text)
			if err != nil {
				return core.Type{}, token.NewPosError(token.KindParsing, numTok.Span, "invalid array size")
			}

			size = &n
		}

		end, err := p.s.Parse(token.RBrack)
		if err != nil {
			return core.Type{}, err
		}

		t = core.ArrayType(t, size, token.Join(start.Span, end.Span))
		_ = start
	}

	return t, nil
}

// parseAtom parses the tightest-binding type forms: paren group, builtin
// keyword, type-expression operator application, path/identifier reference,
// anonymous oneof, and anonymous struct.
func (p *parser) parseAtom() (core.Type, error) {
	switch {
	case p.s.Peek(0, token.LParen):
		inner, err := p.s.Bracket(token.LParen)
		if err != nil {
			return core.Type{}, err
		}

		sub := &parser{s: inner, path: p.path}

		t, err := sub.parseType()
		if err != nil {
			return core.Type{}, err
		}

		return core.ParenType(t, t.Span), nil

	case p.s.Peek(0, token.KwOneof):
		return p.parseAnonOneOf()

	case p.s.Peek(0, token.LBrace):
		return p.parseAnonStruct()

	case p.s.Peek(0, token.Ident) && p.isTypeExprStart():
		return p.parseTypeExpr()

	case p.s.Peek(0, token.Ident):
		identTok := p.s.PeekTok(0)
		if kind, ok := core.Builtins[identTok.Text]; ok {
			p.s.Parse(token.Ident)
			return core.Builtin(kind, identTok.Span), nil
		}

		return p.parsePathOrIdent()

	case p.s.Peek(0, token.Path):
		return p.parsePathOrIdent()
	}

	tok := p.s.PeekTok(0)

	return core.Type{}, token.NewPosError(token.KindParsing, tok.Span, "expected a type, found "+string(tok.Type))
}

// isTypeExprStart peeks two tokens ahead (identifier followed by "[") to
// disambiguate a type-expression operator application from a plain
// identifier before attempting a PathOrIdent parse (spec §4.2).
func (p *parser) isTypeExprStart() bool {
	tok := p.s.PeekTok(0)

	if _, ok := core.TypeExprOps[tok.Text]; !ok {
		return false
	}

	return p.s.Peek(1, token.LBrack)
}

func (p *parser) parseTypeExpr() (core.Type, error) {
	opTok, err := p.s.Parse(token.Ident)
	if err != nil {
		return core.Type{}, err
	}

	op := core.TypeExprOps[opTok.Text]

	inner, err := p.s.Bracket(token.LBrack)
	if err != nil {
		return core.Type{}, err
	}

	sub := &parser{s: inner, path: p.path}

	target, err := sub.parseType()
	if err != nil {
		return core.Type{}, err
	}

	args := []core.Type{target}
	var sel []string

	if sub.s.Peek(0, token.Comma) {
		sub.s.Parse(token.Comma)

		for !sub.s.AtEOF() {
			nameTok, err := sub.s.Parse(token.Ident)
			if err != nil {
				return core.Type{}, err
			}

			sel = append(sel, nameTok.Text)

			if sub.s.Peek(0, token.Pipe) {
				sub.s.Parse(token.Pipe)
				continue
			}

			break
		}
	}

	end := opTok.Span
	if len(sel) > 0 {
		end = target.Span
	}

	return core.TypeExprType(op, args, sel, token.Join(opTok.Span, end)), nil
}

func (p *parser) parsePathOrIdent() (core.Type, error) {
	tok, err := p.s.Parse(token.Ident, token.Path)
	if err != nil {
		return core.Type{}, err
	}

	ref := parsePathText(tok.Text)

	return core.IdentType(ref, tok.Span), nil
}

func (p *parser) parseAnonOneOf() (core.Type, error) {
	start, err := p.s.Parse(token.KwOneof)
	if err != nil {
		return core.Type{}, err
	}

	var variants []core.Type

	for {
		v, err := p.parseUnionChain()
		if err != nil {
			return core.Type{}, err
		}

		v, err = p.parseArraySuffixes(v)
		if err != nil {
			return core.Type{}, err
		}

		variants = append(variants, v)

		if p.s.Peek(0, token.Pipe) {
			p.s.Parse(token.Pipe)
			continue
		}

		break
	}

	end := variants[len(variants)-1].Span

	return core.OneOfType(variants, token.Join(start.Span, end)), nil
}

func (p *parser) parseAnonStruct() (core.Type, error) {
	start, err := p.s.Parse(token.LBrace)
	if err != nil {
		return core.Type{}, err
	}

	var fields []core.Field

	for !p.s.Peek(0, token.RBrace) {
		f, err := p.parseField()
		if err != nil {
			return core.Type{}, err
		}

		fields = append(fields, f)

		if p.s.Peek(0, token.Comma) {
			p.s.Parse(token.Comma)
		}
	}

	end, err := p.s.Parse(token.RBrace)
	if err != nil {
		return core.Type{}, err
	}

	return core.StructType(fields, token.Join(start.Span, end.Span)), nil
}

func (p *parser) parseField() (core.Field, error) {
	docs := p.collectDocs(p.s.PeekTok(0).Span.Start.Line)

	nameTok, err := p.s.Parse(token.Ident)
	if err != nil {
		return core.Field{}, err
	}

	optional := false

	if p.s.Peek(0, token.Question) {
		p.s.Parse(token.Question)
		optional = true
	}

	if _, err := p.s.Parse(token.Colon); err != nil {
		return core.Field{}, err
	}

	typ, err := p.parseType()
	if err != nil {
		return core.Field{}, err
	}

	return core.Field{
		Name:     nameTok.Text,
		Span:     token.Join(nameTok.Span, typ.Span),
		Type:     typ,
		Optional: optional,
		Comments: docs,
	}, nil
}

// parsePathText splits a lexed Path token's text ("pkg::ns::Name" or just
// "Name") into a NamedItemContext. A bare identifier has an empty Package
// and Namespace; namespace binding happens during reference resolution once
// `use` imports are known (spec §4.8).
func parsePathText(text string) core.NamedItemContext {
	segs := splitPath(text)
	name := segs[len(segs)-1]
	ns := segs[:len(segs)-1]

	return core.NewNamedItemContext(core.RefContext{Namespace: ns}, name)
}

func splitPath(text string) []string {
	var out []string
	cur := ""

	for i := 0; i < len(text); i++ {
		if i+1 < len(text) && text[i] == ':' && text[i+1] == ':' {
			out = append(out, cur)
			cur = ""
			i++

			continue
		}

		cur += string(text[i])
	}

	out = append(out, cur)

	return out
}
