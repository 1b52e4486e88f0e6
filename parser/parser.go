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

// Package parser is the recursive-descent parser over the Kintsu IDL (spec
// §4.2). It consumes the token.Stream built by the lexer and produces a
// spanned ast.File. Parse errors abort the current file's parse.
package parser

import (
	"github.com/kintsu-lang/kintsu/ast"
	"github.com/kintsu-lang/kintsu/token"
)

// Parse lexes and parses a single source file into an *ast.File.
func Parse(path, src string) (*ast.File, error) {
	toks, err := token.Lex(path, src)
	if err != nil {
		return nil, err
	}

	s := token.NewStream(toks)
	p := &parser{s: s, path: path, docByEndLine: docCommentsByEndLine(toks)}

	return p.parseFile()
}

type parser struct {
	s    *token.Stream
	path string

	// docByEndLine maps the line a `//` doc comment ends on to its text,
	// used to associate contiguous leading comments with the item that
	// immediately follows them.
	docByEndLine map[int]string
}

// docCommentsByEndLine scans the raw (unfiltered) token vector for line
// comments and records the text keyed by the line each comment ends on.
func docCommentsByEndLine(toks []token.Token) map[int]string {
	out := make(map[int]string)

	for _, t := range toks {
		if t.Type != token.LineCmt {
			continue
		}

		text := t.Text
		if len(text) >= 2 && text[:2] == "//" {
			text = text[2:]
		}

		out[t.Span.End.Line] = text
	}

	return out
}

// collectDocs gathers the contiguous run of `//` comments ending on the
// lines immediately preceding startLine, oldest first.
func (p *parser) collectDocs(startLine int) []string {
	var lines []string

	for line := startLine - 1; ; line-- {
		text, ok := p.docByEndLine[line]
		if !ok {
			break
		}

		lines = append([]string{text}, lines...)
	}

	return lines
}

func (p *parser) parseFile() (*ast.File, error) {
	f := &ast.File{Path: p.path}

	for p.s.Peek(0, token.Hash) && p.s.Peek(1, token.Bang) {
		attr, err := p.parseInnerAttr()
		if err != nil {
			return nil, err
		}

		f.ModuleAttrs = append(f.ModuleAttrs, attr)
	}

	for !p.s.AtEOF() {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}

		f.Items = append(f.Items, item)
	}

	return f, nil
}
