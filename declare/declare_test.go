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

package declare_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/ctx"
	"github.com/kintsu-lang/kintsu/ctx/resolve"
	"github.com/kintsu-lang/kintsu/declare"
	"github.com/kintsu-lang/kintsu/manifest"
	"github.com/kintsu-lang/kintsu/parser"
	"github.com/kintsu-lang/kintsu/registry"
)

// buildSchema parses src into a single-namespace package, resolves it and
// registers the result, mirroring compile.Scheduler.pass2 without pulling in
// the full scheduler/loader machinery.
func buildSchema(t *testing.T, pkgName, src string) (*ctx.SchemaCtx, *registry.Registry) {
	t.Helper()

	return buildSchemaInto(t, pkgName, src, registry.New())
}

func buildSchemaInto(t *testing.T, pkgName, src string, reg *registry.Registry) (*ctx.SchemaCtx, *registry.Registry) {
	t.Helper()

	f, err := parser.Parse("t.kintsu", src)
	require.NoError(t, err)

	ref := core.RefContext{Package: pkgName}
	ns := ctx.NewNamespaceCtx(ref)
	require.NoError(t, ns.AddFile("t.kintsu", src, f))

	result, err := resolve.Resolve(ns, reg)
	require.NoError(t, err)

	ns.ResolvedAliases = result.ResolvedAliases
	ns.ResolvedVersions = result.ResolvedVersions
	ns.ResolvedErrors = result.ResolvedErrors
	ns.LiftedStructs = result.LiftedStructs
	ns.MergedUnions = result.MergedUnions

	for _, name := range result.Order {
		def := result.Items[name]
		key := core.NewNamedItemContext(ns.Ref, name)
		require.NoError(t, reg.Insert(key, def, def.Span, ""))
	}

	m := &manifest.Manifest{Package: manifest.PackageInfo{Name: pkgName, Version: "1.0.0"}}
	schema := ctx.NewSchemaCtx(m)
	schema.Put(ref.String(), ns)

	return schema, reg
}

func TestEmitFlattensStructFields(t *testing.T) {
	schema, reg := buildSchema(t, "app", `struct Point { x: i32, y?: str }`)

	bundle := declare.Emit("app", schema, nil, reg)
	require.Len(t, bundle.Root.Namespaces, 1)

	ns := bundle.Root.Namespaces[0]
	require.Len(t, ns.Items, 1)

	point := ns.Items[0]
	assert.Equal(t, declare.DeclStruct, point.Kind)
	assert.Equal(t, "Point", point.Name)
	require.Len(t, point.Fields, 2)
	assert.Equal(t, declare.DKBuiltin, point.Fields[0].Type.Kind)
	assert.False(t, point.Fields[0].Optional)
	assert.True(t, point.Fields[1].Optional)
}

func TestEmitHoistsAnonymousOneOfFromTypeAlias(t *testing.T) {
	schema, reg := buildSchema(t, "app", `type Scalar = oneof i32 | str;`)

	bundle := declare.Emit("app", schema, nil, reg)
	ns := bundle.Root.Namespaces[0]
	require.Len(t, ns.Items, 1)

	decl := ns.Items[0]
	assert.Equal(t, declare.DeclOneOf, decl.Kind)
	assert.Equal(t, "Scalar", decl.Name)
	assert.True(t, decl.Synthesized)
	require.Len(t, decl.Variants, 2)
	assert.Equal(t, "I32", decl.Variants[0].Name)
	assert.Equal(t, "Str", decl.Variants[1].Name)
}

func TestEmitTracksExternalRefsAcrossPackages(t *testing.T) {
	src := `
#![err(MyError)]
error MyError { NotFound }
operation DoThing(x: i32) -> i32!;
`
	f, err := parser.Parse("t.kintsu", src)
	require.NoError(t, err)

	ref := core.RefContext{Package: "app"}
	ns := ctx.NewNamespaceCtx(ref)
	require.NoError(t, ns.AddFile("t.kintsu", src, f))

	reg := registry.New()

	result, err := resolve.Resolve(ns, reg)
	require.NoError(t, err)

	ns.ResolvedAliases = result.ResolvedAliases
	ns.ResolvedVersions = result.ResolvedVersions
	ns.ResolvedErrors = result.ResolvedErrors
	ns.LiftedStructs = result.LiftedStructs
	ns.MergedUnions = result.MergedUnions

	// Simulate a cross-package error resolution the way scheduler.pass2 would
	// have left it, by overriding the namespace's resolved error type, and the
	// operation's own resolved error ref, to one belonging to another package
	// before either ever reaches the shared registry.
	other := core.NewNamedItemContext(core.RefContext{Package: "lib"}, "LibError")
	ns.ErrType = &other

	for _, name := range result.Order {
		def := result.Items[name]
		if name == "DoThing" {
			def.ErrRef = &other
		}

		key := core.NewNamedItemContext(ns.Ref, name)
		require.NoError(t, reg.Insert(key, def, def.Span, ""))
	}

	m := &manifest.Manifest{Package: manifest.PackageInfo{Name: "app", Version: "1.0.0"}}
	schema := ctx.NewSchemaCtx(m)
	schema.Put(ref.String(), ns)

	bundle := declare.Emit("app", schema, nil, reg)
	nd := bundle.Root.Namespaces[0]

	assert.Contains(t, nd.ExternalRefs, "lib::LibError")
}

func TestEmitBundlesDependenciesByName(t *testing.T) {
	shared := registry.New()
	rootSchema, _ := buildSchemaInto(t, "app", `struct Root { x: i32 }`, shared)
	libSchema, _ := buildSchemaInto(t, "lib", `struct Shared { y: i32 }`, shared)

	bundle := declare.Emit("app", rootSchema, map[string]*ctx.SchemaCtx{"lib": libSchema}, shared)

	assert.Equal(t, "app", bundle.Root.Package)
	require.Contains(t, bundle.Dependencies, "lib")
	assert.Equal(t, "lib", bundle.Dependencies["lib"].Package)
}
