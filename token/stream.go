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

package token

// Stream is a cursor over a flat token vector with peek/parse primitives and
// non-committing forks for speculative parsing (spec §4.1). Comments and
// newlines are filtered out before the stream is built; callers only ever
// see significant tokens.
type Stream struct {
	toks []Token
	pos  int
}

// NewStream builds a Stream over toks, dropping comment and newline tokens.
func NewStream(toks []Token) *Stream {
	sig := make([]Token, 0, len(toks))

	for _, t := range toks {
		if t.Type == LineCmt || t.Type == BlockCmt || t.Type == Newline {
			continue
		}

		sig = append(sig, t)
	}

	return &Stream{toks: sig}
}

// Cursor returns the index of the next unread token.
func (s *Stream) Cursor() int {
	return s.pos
}

// Seek resets the cursor to a previously observed Cursor() value.
func (s *Stream) Seek(pos int) {
	s.pos = pos
}

func (s *Stream) current() Token {
	if s.pos < len(s.toks) {
		return s.toks[s.pos]
	}

	if len(s.toks) > 0 {
		last := s.toks[len(s.toks)-1]
		return Token{Type: EOF, Span: last.Span}
	}

	return Token{Type: EOF}
}

// Peek reports whether the token at the given lookahead offset (0 = next
// token) has one of the given types.
func (s *Stream) Peek(offset int, types ...Type) bool {
	idx := s.pos + offset
	var tok Token

	if idx < len(s.toks) {
		tok = s.toks[idx]
	} else {
		tok = Token{Type: EOF}
	}

	for _, t := range types {
		if tok.Type == t {
			return true
		}
	}

	return false
}

// PeekTok returns the token at the given lookahead offset without consuming
// it.
func (s *Stream) PeekTok(offset int) Token {
	idx := s.pos + offset
	if idx < len(s.toks) {
		return s.toks[idx]
	}

	return s.current()
}

// Parse consumes and returns the next token if it is one of the expected
// types, failing with a precise diagnostic naming the expected set and the
// actual token otherwise.
func (s *Stream) Parse(expected ...Type) (Token, error) {
	tok := s.current()

	for _, t := range expected {
		if tok.Type == t {
			s.pos++
			return tok, nil
		}
	}

	return Token{}, s.unexpected(tok, expected)
}

func (s *Stream) unexpected(tok Token, expected []Type) error {
	msg := "unexpected " + string(tok.Type) + ", expected "

	for i, t := range expected {
		if i > 0 {
			if i == len(expected)-1 {
				msg += " or "
			} else {
				msg += ", "
			}
		}

		msg += string(t)
	}

	return NewPosError(KindParsing, tok.Span, msg)
}

// Fork returns a non-committing clone of the stream for speculative parsing:
// callers can attempt a parse on the fork and discard it on failure without
// disturbing the original cursor.
func (s *Stream) Fork() *Stream {
	return &Stream{toks: s.toks, pos: s.pos}
}

// Adopt commits the position reached on a fork obtained from this stream
// back into the receiver.
func (s *Stream) Adopt(fork *Stream) {
	s.pos = fork.pos
}

// AtEOF reports whether the stream has been fully consumed.
func (s *Stream) AtEOF() bool {
	return s.current().Type == EOF
}

var brackets = map[Type]Type{
	LParen: RParen,
	LBrack: RBrack,
	LBrace: RBrace,
}

// Bracket consumes the opening delimiter open, locates its matching closing
// delimiter (respecting nesting) and returns a sub-stream bounded to the
// content between them. Callers parsing within the sub-stream are
// guaranteed never to read past the close; the outer stream's cursor is left
// positioned just after the closing delimiter.
func (s *Stream) Bracket(open Type) (*Stream, error) {
	close, ok := brackets[open]
	if !ok {
		return nil, NewPosError(KindParsing, s.current().Span, "not a bracket type: "+string(open))
	}

	openTok, err := s.Parse(open)
	if err != nil {
		return nil, err
	}

	depth := 1
	start := s.pos

	for {
		tok := s.current()

		if tok.Type == EOF {
			return nil, NewPosError(KindParsing, openTok.Span, "unterminated "+string(open)+" ... "+string(close))
		}

		if tok.Type == open {
			depth++
		} else if tok.Type == close {
			depth--
			if depth == 0 {
				break
			}
		}

		s.pos++
	}

	inner := &Stream{toks: append([]Token{}, s.toks[start:s.pos]...)}
	s.pos++ // consume the matching close

	return inner, nil
}
