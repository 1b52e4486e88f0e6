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

	"github.com/kintsu-lang/kintsu/ctx/compile"
	"github.com/kintsu-lang/kintsu/fs"
	"github.com/kintsu-lang/kintsu/manifest"
)

func twoPackageMemFS() *fs.Memory {
	return fs.NewMemory(map[string]string{
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
		"/lib/lib.kintsu": `struct LibThing { y: i32 }`,
	})
}

func TestLoaderLoadRootResolvesTransitiveDependency(t *testing.T) {
	mem := twoPackageMemFS()
	resolver := compile.PathResolver{FS: mem}
	lockState := manifest.NewState(manifest.NewLockfile())

	loader := compile.NewLoader(resolver, 4, lockState, nil)

	root, deps, err := loader.LoadRoot(context.Background(), compile.ResolvedDependency{FS: mem, Path: "/app"}, "app")
	require.NoError(t, err)
	require.NotNil(t, root)

	require.Contains(t, deps, "lib")
	assert.Equal(t, "lib", deps["lib"].Manifest.Package.Name)
	assert.Equal(t, "app", root.Manifest.Package.Name)
}

func TestLoaderLoadRootIsIdempotentUnderConcurrentDuplicateImport(t *testing.T) {
	mem := fs.NewMemory(map[string]string{
		"/app/kintsu.toml": `
[package]
name = "app"
version = "1.0.0"

[dependencies]
a = { path = "../a" }
b = { path = "../b" }
`,
		"/app/root.kintsu": `struct Root { x: i32 }`,
		"/a/kintsu.toml": `
[package]
name = "a"
version = "1.0.0"

[dependencies]
shared = { path = "../shared" }
`,
		"/a/a.kintsu": `struct A { x: i32 }`,
		"/b/kintsu.toml": `
[package]
name = "b"
version = "1.0.0"

[dependencies]
shared = { path = "../shared" }
`,
		"/b/b.kintsu":      `struct B { x: i32 }`,
		"/shared/kintsu.toml": `
[package]
name = "shared"
version = "1.0.0"
`,
		"/shared/shared.kintsu": `struct Shared { x: i32 }`,
	})

	resolver := compile.PathResolver{FS: mem}
	lockState := manifest.NewState(manifest.NewLockfile())
	loader := compile.NewLoader(resolver, 4, lockState, nil)

	root, deps, err := loader.LoadRoot(context.Background(), compile.ResolvedDependency{FS: mem, Path: "/app"}, "app")
	require.NoError(t, err)
	require.NotNil(t, root)
	require.Contains(t, deps, "shared")
}

func TestLoaderRejectsVersionIncompatibility(t *testing.T) {
	mem := fs.NewMemory(map[string]string{
		"/app/kintsu.toml": `
[package]
name = "app"
version = "1.0.0"

[dependencies]
lib = { path = "../lib", version = "2.0.0" }
`,
		"/app/root.kintsu": `struct Root { x: i32 }`,
		"/lib/kintsu.toml": `
[package]
name = "lib"
version = "1.0.0"
`,
		"/lib/lib.kintsu": `struct LibThing { y: i32 }`,
	})

	resolver := compile.PathResolver{FS: mem}
	lockState := manifest.NewState(manifest.NewLockfile())
	loader := compile.NewLoader(resolver, 4, lockState, nil)

	_, _, err := loader.LoadRoot(context.Background(), compile.ResolvedDependency{FS: mem, Path: "/app"}, "app")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version incompatibility")
}

func TestLoaderRejectsCircularDependency(t *testing.T) {
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

[dependencies]
app = { path = "../app" }
`,
		"/lib/lib.kintsu": `struct LibThing { y: i32 }`,
	})

	resolver := compile.PathResolver{FS: mem}
	lockState := manifest.NewState(manifest.NewLockfile())
	loader := compile.NewLoader(resolver, 4, lockState, nil)

	_, _, err := loader.LoadRoot(context.Background(), compile.ResolvedDependency{FS: mem, Path: "/app"}, "app")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency")
}

func TestLoaderRejectsUnresolvableGitDependency(t *testing.T) {
	mem := fs.NewMemory(map[string]string{
		"/app/kintsu.toml": `
[package]
name = "app"
version = "1.0.0"

[dependencies]
remote = { git = "https://example.com/remote.git" }
`,
		"/app/root.kintsu": `struct Root { x: i32 }`,
	})

	resolver := compile.PathResolver{FS: mem}
	lockState := manifest.NewState(manifest.NewLockfile())
	loader := compile.NewLoader(resolver, 4, lockState, nil)

	_, _, err := loader.LoadRoot(context.Background(), compile.ResolvedDependency{FS: mem, Path: "/app"}, "app")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git/registry sources require an injected Resolver")
}
