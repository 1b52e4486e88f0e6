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

package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/ctx"
	"github.com/kintsu-lang/kintsu/ctx/resolve"
	"github.com/kintsu-lang/kintsu/parser"
	"github.com/kintsu-lang/kintsu/registry"
)

func resolveSrc(t *testing.T, src string) (*resolve.Result, *ctx.NamespaceCtx) {
	t.Helper()

	f, err := parser.Parse("t.kintsu", src)
	require.NoError(t, err)

	ref := core.RefContext{Package: "pkg", Namespace: []string{"ns"}}
	ns := ctx.NewNamespaceCtx(ref)
	require.NoError(t, ns.AddFile("t.kintsu", src, f))

	reg := registry.New()

	res, err := resolve.Resolve(ns, reg)
	require.NoError(t, err)

	return res, ns
}

func TestResolveAnonStructLifted(t *testing.T) {
	res, _ := resolveSrc(t, `
struct Order {
    shipping: { street: str, city: str },
}
`)

	def := res.Items["Order"]
	require.Len(t, def.Fields, 1)
	assert.Equal(t, core.TKIdent, def.Fields[0].Type.Kind)
	assert.Equal(t, "OrderShipping", def.Fields[0].Type.Ref.Name)

	require.Len(t, res.LiftedStructs, 1)
	assert.Equal(t, "OrderShipping", res.LiftedStructs[0].Name)
	require.Len(t, res.LiftedStructs[0].Fields, 2)
}

func TestResolveAliasChainFlattened(t *testing.T) {
	res, _ := resolveSrc(t, `
type A = i32;
type B = A;
type C = B;
`)

	assert.Equal(t, core.TKBuiltin, res.ResolvedAliases["C"].Kind)
	assert.Equal(t, core.I32, res.ResolvedAliases["C"].Builtin)
}

func TestResolveCircularAliasRejected(t *testing.T) {
	_, err := resolveRaw(t, `
type A = B;
type B = A;
`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular type alias")
}

func TestResolveUnionOrNormalizedToUnion(t *testing.T) {
	res, _ := resolveSrc(t, `
struct A { x: i32 }
struct B { y: i32 }
type T = A &| B;
`)

	// The normalized union is merged into a struct and the alias refers to it.
	target := res.Items["T"].Target
	assert.Equal(t, core.TKIdent, target.Kind)
	assert.Equal(t, "TValue", target.Ref.Name)
}

func TestResolveUnionMergeLeftBiased(t *testing.T) {
	res, _ := resolveSrc(t, `
struct A { id: i32, name: str }
struct B { id: str, active: bool }
type Merged = A & B;
`)

	require.Len(t, res.MergedUnions, 1)

	fieldByName := map[string]core.Field{}
	for _, f := range res.MergedUnions[0].Fields {
		fieldByName[f.Name] = f
	}

	require.Contains(t, fieldByName, "id")
	assert.Equal(t, core.TKBuiltin, fieldByName["id"].Type.Kind)
	assert.Equal(t, core.I32, fieldByName["id"].Type.Builtin) // left (A) wins on conflict
	assert.Contains(t, fieldByName, "name")
	assert.Contains(t, fieldByName, "active")
}

func TestResolveVersionDefaultsAndOverrides(t *testing.T) {
	res, _ := resolveSrc(t, `
#![version(3)]
struct Default { x: i32 }

#[version(7)]
struct Overridden { y: i32 }
`)

	assert.Equal(t, 3, res.ResolvedVersions["Default"])
	assert.Equal(t, 7, res.ResolvedVersions["Overridden"])
}

func TestResolveFallibleOperationMissingErrType(t *testing.T) {
	_, err := resolveRaw(t, `operation DoThing(x: i32) -> i32!;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no resolvable error type")
}

func TestResolveFallibleOperationNamespaceErrType(t *testing.T) {
	res, _ := resolveSrc(t, `
#![err(MyError)]
error MyError { NotFound }
operation DoThing(x: i32) -> i32!;
`)

	ref, ok := res.ResolvedErrors["DoThing"]
	require.True(t, ok)
	assert.Equal(t, "MyError", ref.Name)
}

func TestResolveUntaggedDuplicateSignatureRejected(t *testing.T) {
	_, err := resolveRaw(t, `
#[tag(untagged)]
oneof E {
    A { x: i32 },
    B { x: i32 },
}
`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "indistinguishable")
}

func TestResolveUndefinedTypeRejected(t *testing.T) {
	_, err := resolveRaw(t, `struct S { x: DoesNotExist }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined type")
}

func TestResolveDuplicateFieldNameRejected(t *testing.T) {
	_, err := resolveRaw(t, `struct S { x: i32, x: str }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate field")
}

func resolveRaw(t *testing.T, src string) (*resolve.Result, error) {
	t.Helper()

	f, err := parser.Parse("t.kintsu", src)
	require.NoError(t, err)

	ref := core.RefContext{Package: "pkg", Namespace: []string{"ns"}}
	ns := ctx.NewNamespaceCtx(ref)
	require.NoError(t, ns.AddFile("t.kintsu", src, f))

	reg := registry.New()

	return resolve.Resolve(ns, reg)
}
