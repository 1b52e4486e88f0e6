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
	"strings"

	"github.com/kintsu-lang/kintsu/ast"
	"github.com/kintsu-lang/kintsu/token"
	"github.com/kintsu-lang/kintsu/util"
)

// parseInnerAttr parses a module/namespace-level `#![name(args)]` attribute.
func (p *parser) parseInnerAttr() (ast.Attr, error) {
	start, err := p.s.Parse(token.Hash)
	if err != nil {
		return ast.Attr{}, err
	}

	if _, err := p.s.Parse(token.Bang); err != nil {
		return ast.Attr{}, err
	}

	return p.parseAttrBody(start.Span)
}

// parseOuterAttrs parses zero or more item-level `#[name(args)]` attributes
// preceding an item.
func (p *parser) parseOuterAttrs() ([]ast.Attr, error) {
	var attrs []ast.Attr

	for p.s.Peek(0, token.Hash) && !p.s.Peek(1, token.Bang) {
		start, err := p.s.Parse(token.Hash)
		if err != nil {
			return nil, err
		}

		attr, err := p.parseAttrBody(start.Span)
		if err != nil {
			return nil, err
		}

		attrs = append(attrs, attr)
	}

	return attrs, nil
}

func (p *parser) parseAttrBody(start token.Span) (ast.Attr, error) {
	if _, err := p.s.Parse(token.LBrack); err != nil {
		return ast.Attr{}, err
	}

	nameTok, err := p.s.Parse(token.Ident)
	if err != nil {
		return ast.Attr{}, err
	}

	attr := ast.Attr{Name: nameTok.Text, KV: util.NewAttributeList()}

	if p.s.Peek(0, token.LParen) {
		inner, err := p.s.Bracket(token.LParen)
		if err != nil {
			return ast.Attr{}, err
		}

		for !inner.AtEOF() {
			argTok, err := inner.Parse(token.Ident, token.Int, token.Str)
			if err != nil {
				return ast.Attr{}, err
			}

			arg := argTok.Text

			if inner.Peek(0, token.Equals) {
				inner.Parse(token.Equals)

				valTok, err := inner.Parse(token.Str, token.Ident, token.Int)
				if err != nil {
					return ast.Attr{}, err
				}

				attr.KV.Set(strings.TrimSpace(arg), valTok.Text)
			} else {
				attr.Args = append(attr.Args, arg)
			}

			if inner.Peek(0, token.Comma) {
				inner.Parse(token.Comma)
			}
		}
	}

	closeTok, err := p.s.Parse(token.RBrack)
	if err != nil {
		return ast.Attr{}, err
	}

	attr.Span = token.Join(start, closeTok.Span)

	return attr, nil
}
