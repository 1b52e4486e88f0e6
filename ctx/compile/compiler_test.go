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

package compile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/ctx/compile"
	"github.com/kintsu-lang/kintsu/fs"
	"github.com/kintsu-lang/kintsu/manifest"
)

func TestCompileEndToEndAcrossDependency(t *testing.T) {
	mem := fs.NewMemory(map[string]string{
		"/app/kintsu.toml": `
[package]
name = "app"
version = "1.0.0"

[dependencies]
lib = { path = "../lib" }
`,
		"/app/root.kintsu": `struct Root { x: i32 }`,
		"/lib/kintsu.toml": `
[package]
name = "lib"
version = "1.0.0"
`,
		"/lib/lib.kintsu": `struct Shared { y: i32 }`,
	})

	opts := compile.Options{
		Resolver:    compile.PathResolver{FS: mem},
		MaxTasks:    4,
		MaxSchedule: 4,
		Lockfile:    manifest.NewLockfile(),
	}

	result, err := compile.Compile(context.Background(), compile.ResolvedDependency{FS: mem, Path: "/app"}, "app", opts)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Registry.Contains(core.NewNamedItemContext(core.RefContext{Package: "app"}, "Root")))
	// A fresh, empty lockfile has no prior entry for "lib", so recording its
	// observed hash for the first time counts as invalidation.
	assert.True(t, result.Lock.Invalidated())
}

func TestCompilePropagatesLoaderError(t *testing.T) {
	mem := fs.NewMemory(map[string]string{
		"/app/kintsu.toml": `
[package]
name = "app"
version = "1.0.0"

[dependencies]
lib = { path = "../missing" }
`,
		"/app/root.kintsu": `struct Root { x: i32 }`,
	})

	opts := compile.Options{
		Resolver: compile.PathResolver{FS: mem},
		MaxTasks: 4,
		Lockfile: manifest.NewLockfile(),
	}

	_, err := compile.Compile(context.Background(), compile.ResolvedDependency{FS: mem, Path: "/app"}, "app", opts)
	require.Error(t, err)
}
