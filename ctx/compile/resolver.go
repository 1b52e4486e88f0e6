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

// Package compile implements the parallel dependency loader and two-pass
// schema/namespace scheduler (spec §4.4, §4.5): it walks a package's
// transitive dependency closure under a bounded work-stealing task pool,
// enforces lockfile consistency and version compatibility, then runs type
// registration and type resolution over the resulting schema DAG.
package compile

import (
	"path"

	"github.com/kintsu-lang/kintsu/fs"
	"github.com/kintsu-lang/kintsu/manifest"
	"github.com/kintsu-lang/kintsu/token"
)

// ResolvedDependency is what a Resolver hands back for one dependency
// request: the filesystem it lives on, its root path on that filesystem,
// and its declared version (spec §6 "Package resolver (consumed)").
type ResolvedDependency struct {
	FS      fs.FileSystem
	Path    string
	Version string
}

// Resolver encapsulates git/registry/path-dependency fetching; the core
// treats its output uniformly and never fetches over the network itself
// (spec §6 — deliberately an external collaborator).
type Resolver interface {
	Resolve(parentPath, name string, dep manifest.Dependency) (ResolvedDependency, error)
}

// PathResolver is the one dependency source the core can satisfy on its
// own: a `path = "…"` dependency resolved relative to the requesting
// package's root on a shared FileSystem. Git and registry dependencies are
// out of scope (spec §1) and are rejected with a Dependency-kind error so a
// caller can substitute its own Resolver for those sources.
type PathResolver struct {
	FS fs.FileSystem
}

func (p PathResolver) Resolve(parentPath, name string, dep manifest.Dependency) (ResolvedDependency, error) {
	switch dep.Source() {
	case manifest.SourcePath:
		return ResolvedDependency{
			FS:      p.FS,
			Path:    path.Join(parentPath, dep.Path),
			Version: dep.Version,
		}, nil
	default:
		return ResolvedDependency{}, token.NewPosError(token.KindDependency, token.Span{},
			"unresolved dependency \""+name+"\": git/registry sources require an injected Resolver")
	}
}
