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

// Package progress defines the ProgressBar capability injected into the
// core (spec §6 CLI surface): a no-op by default, wired up by a real
// terminal renderer when the CLI wants one.
package progress

// Bar is the capability the core calls into while compiling. Implementations
// must no-op safely when progress reporting is disabled.
type Bar interface {
	SetMessage(msg string)
	Inc(delta int)
	FinishWithMessage(msg string)
}

// Noop is a Bar that discards everything; it is the default passed to the
// compiler when no CLI is driving it.
type Noop struct{}

func (Noop) SetMessage(string)        {}
func (Noop) Inc(int)                  {}
func (Noop) FinishWithMessage(string) {}
