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

import "fmt"

// Kind discriminates the broad category of a compiler error, per spec §7.
type Kind string

const (
	KindLexing      Kind = "lexing"
	KindParsing     Kind = "parsing"
	KindNamespace   Kind = "namespace"
	KindResolution  Kind = "resolution"
	KindTagging     Kind = "tagging"
	KindDependency  Kind = "dependency"
	KindLockfile    Kind = "lockfile"
	KindIO          Kind = "io"
)

// ErrDetail is a secondary diagnostic label attached to a PosError, e.g.
// "first declaration here".
type ErrDetail struct {
	Span    Span
	Message string
}

// NewErrDetail creates a secondary diagnostic label.
func NewErrDetail(span Span, msg string) ErrDetail {
	return ErrDetail{Span: span, Message: msg}
}

// PosError is a positional diagnostic. Every error the core raises is one of
// these: a primary span, a kind, optional secondary labels and an optional
// wrapped cause.
type PosError struct {
	Kind    Kind
	Span    Span
	Message string
	Details []ErrDetail
	Cause   error
	Hint    string
}

// NewPosError creates a new PosError with the given kind, primary span and
// message, plus any secondary labels.
func NewPosError(kind Kind, span Span, msg string, details ...ErrDetail) *PosError {
	return &PosError{
		Kind:    kind,
		Span:    span,
		Message: msg,
		Details: details,
	}
}

// SetCause attaches a wrapped cause and returns the receiver for chaining.
func (p *PosError) SetCause(err error) *PosError {
	p.Cause = err
	return p
}

// SetHint attaches a human hint and returns the receiver for chaining.
func (p *PosError) SetHint(hint string) *PosError {
	p.Hint = hint
	return p
}

func (p *PosError) Unwrap() error {
	return p.Cause
}

func (p *PosError) Error() string {
	msg := fmt.Sprintf("%s: %s (%s)", p.Span, p.Message, p.Kind)
	if p.Cause != nil {
		msg += ": " + p.Cause.Error()
	}

	for _, d := range p.Details {
		msg += fmt.Sprintf("\n  %s: %s", d.Span, d.Message)
	}

	if p.Hint != "" {
		msg += "\nhint: " + p.Hint
	}

	return msg
}

// Is allows errors.Is(err, token.KindX) style matching against a bare Kind
// value wrapped as an error via KindError.
func (p *PosError) Is(target error) bool {
	ke, ok := target.(kindError)
	return ok && ke.kind == p.Kind
}

type kindError struct{ kind Kind }

func (k kindError) Error() string { return string(k.kind) }

// KindError returns a sentinel error usable with errors.Is(err, KindError(k))
// to test the Kind of a PosError without type-asserting.
func KindError(k Kind) error {
	return kindError{kind: k}
}
