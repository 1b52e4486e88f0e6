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

package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/registry"
	"github.com/kintsu-lang/kintsu/token"
)

func key(name string) core.NamedItemContext {
	return core.NewNamedItemContext(core.RefContext{Package: "app"}, name)
}

func TestRegistryInsertAndLookup(t *testing.T) {
	r := registry.New()
	def := core.Definition{Kind: core.DefStruct, Name: "Point"}

	require.NoError(t, r.Insert(key("Point"), def, token.Span{}, "a.kintsu"))

	e, ok := r.Lookup(key("Point"))
	require.True(t, ok)
	assert.Equal(t, "Point", e.Def.Name)
	assert.Equal(t, "a.kintsu", e.SourcePath)
	assert.True(t, r.Contains(key("Point")))
}

func TestRegistryInsertIdempotentOnIdenticalRedefinition(t *testing.T) {
	r := registry.New()
	def := core.Definition{Kind: core.DefStruct, Name: "Point"}

	require.NoError(t, r.Insert(key("Point"), def, token.Span{}, ""))
	require.NoError(t, r.Insert(key("Point"), def, token.Span{}, ""))

	assert.Equal(t, 1, r.Len())
}

func TestRegistryInsertRejectsConflictingRedefinition(t *testing.T) {
	r := registry.New()

	require.NoError(t, r.Insert(key("Point"), core.Definition{Kind: core.DefStruct, Name: "Point"}, token.Span{}, ""))

	err := r.Insert(key("Point"), core.Definition{Kind: core.DefEnum, Name: "Point"}, token.Span{}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflicting redefinition")
}

func TestRegistryContainsFalseForMissingKey(t *testing.T) {
	r := registry.New()
	assert.False(t, r.Contains(key("Missing")))
}

func TestRegistryAllReturnsEveryInsertedKey(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Insert(key("A"), core.Definition{Name: "A"}, token.Span{}, ""))
	require.NoError(t, r.Insert(key("B"), core.Definition{Name: "B"}, token.Span{}, ""))

	all := r.All()
	require.Len(t, all, 2)

	core.SortNamedItemContexts(all)
	assert.Equal(t, "A", all[0].Name)
	assert.Equal(t, "B", all[1].Name)
}
