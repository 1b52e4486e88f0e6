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

package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kintsu-lang/kintsu/core"
)

func TestRefContextStringNoNamespace(t *testing.T) {
	r := core.RefContext{Package: "app"}
	assert.Equal(t, "app", r.String())
}

func TestRefContextStringWithNamespace(t *testing.T) {
	r := core.RefContext{Package: "app", Namespace: []string{"a", "b"}}
	assert.Equal(t, "app::a::b", r.String())
}

func TestRefContextJoinAppendsSegment(t *testing.T) {
	r := core.RefContext{Package: "app", Namespace: []string{"a"}}
	j := r.Join("b")

	assert.Equal(t, []string{"a", "b"}, j.Namespace)
	assert.Equal(t, []string{"a"}, r.Namespace) // original untouched
}

func TestRefContextEqual(t *testing.T) {
	a := core.RefContext{Package: "app", Namespace: []string{"a"}}
	b := core.RefContext{Package: "app", Namespace: []string{"a"}}
	c := core.RefContext{Package: "app", Namespace: []string{"b"}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestRefContextLessOrdersByPackageThenNamespace(t *testing.T) {
	a := core.RefContext{Package: "a"}
	b := core.RefContext{Package: "b"}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))

	x := core.RefContext{Package: "p", Namespace: []string{"a"}}
	y := core.RefContext{Package: "p", Namespace: []string{"b"}}
	assert.True(t, x.Less(y))
}

func TestNamedItemContextStringAndEqual(t *testing.T) {
	ref := core.RefContext{Package: "app", Namespace: []string{"ns"}}
	n := core.NewNamedItemContext(ref, "Item")

	assert.Equal(t, "app::ns::Item", n.String())

	n2 := core.NewNamedItemContext(ref, "Item")
	assert.True(t, n.Equal(n2))

	n3 := core.NewNamedItemContext(ref, "Other")
	assert.False(t, n.Equal(n3))
}

func TestSortNamedItemContextsDeterministic(t *testing.T) {
	pkg := core.RefContext{Package: "app"}
	refs := []core.NamedItemContext{
		core.NewNamedItemContext(pkg, "Zeta"),
		core.NewNamedItemContext(pkg, "Alpha"),
		core.NewNamedItemContext(pkg, "Mid"),
	}

	core.SortNamedItemContexts(refs)

	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, []string{refs[0].Name, refs[1].Name, refs[2].Name})
}
