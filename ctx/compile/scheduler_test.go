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
	"github.com/kintsu-lang/kintsu/ctx"
	"github.com/kintsu-lang/kintsu/ctx/compile"
	"github.com/kintsu-lang/kintsu/manifest"
	"github.com/kintsu-lang/kintsu/parser"
	"github.com/kintsu-lang/kintsu/registry"
)

func schemaFromSource(t *testing.T, pkgName, src string) *ctx.SchemaCtx {
	t.Helper()

	m := &manifest.Manifest{Package: manifest.PackageInfo{Name: pkgName, Version: "1.0.0"}}
	schema := ctx.NewSchemaCtx(m)

	f, err := parser.Parse("t.kintsu", src)
	require.NoError(t, err)

	ref := core.RefContext{Package: pkgName}
	ns := schema.Namespace(ref.String(), ref)
	require.NoError(t, ns.AddFile("t.kintsu", src, f))

	return schema
}

func TestSchedulerRunRegistersResolvedItems(t *testing.T) {
	schema := schemaFromSource(t, "app", `struct Point { x: i32, y: i32 }`)

	reg := registry.New()
	sched := compile.NewScheduler(reg, 4)

	err := sched.Run(context.Background(), "app", schema, nil)
	require.NoError(t, err)

	key := core.NewNamedItemContext(core.RefContext{Package: "app"}, "Point")
	assert.True(t, reg.Contains(key))
}

func TestSchedulerRunRejectsNonTerminatingTypeCycle(t *testing.T) {
	schema := schemaFromSource(t, "app", `
struct A { b: B }
struct B { a: A }
`)

	reg := registry.New()
	sched := compile.NewScheduler(reg, 4)

	err := sched.Run(context.Background(), "app", schema, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-terminating type cycle")
}

func TestSchedulerRunAllowsTerminatingTypeCycle(t *testing.T) {
	schema := schemaFromSource(t, "app", `
struct A { b?: B }
struct B { a: A }
`)

	reg := registry.New()
	sched := compile.NewScheduler(reg, 4)

	err := sched.Run(context.Background(), "app", schema, nil)
	require.NoError(t, err)
}

func TestSchedulerRunAcrossDependentSchemas(t *testing.T) {
	lib := schemaFromSource(t, "lib", `struct Shared { x: i32 }`)
	app := schemaFromSource(t, "app", `struct Root { x: i32 }`)
	app.Manifest.Dependencies = map[string]manifest.Dependency{"lib": {Path: "../lib"}}

	reg := registry.New()
	sched := compile.NewScheduler(reg, 4)

	err := sched.Run(context.Background(), "app", app, map[string]*ctx.SchemaCtx{"lib": lib})
	require.NoError(t, err)

	assert.True(t, reg.Contains(core.NewNamedItemContext(core.RefContext{Package: "app"}, "Root")))
	assert.True(t, reg.Contains(core.NewNamedItemContext(core.RefContext{Package: "lib"}, "Shared")))
}
