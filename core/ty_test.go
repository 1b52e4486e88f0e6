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
	"github.com/stretchr/testify/require"

	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/token"
)

func TestArrayTypeDoesNotAliasElementArgument(t *testing.T) {
	elem := core.Builtin(core.I32, token.Span{})
	size := 4

	arr := core.ArrayType(elem, &size, token.Span{})
	elem.Builtin = core.I64
	require.Equal(t, core.TKArray, arr.Kind)
	require.NotNil(t, arr.Elem)
	assert.Equal(t, core.I32, arr.Elem.Builtin)
	require.NotNil(t, arr.Size)
	assert.Equal(t, 4, *arr.Size)
}

func TestUnionOrTypeWrapsBothOperands(t *testing.T) {
	lhs := core.IdentType(core.NamedItemContext{Name: "A"}, token.Span{})
	rhs := core.IdentType(core.NamedItemContext{Name: "B"}, token.Span{})

	u := core.UnionOrType(lhs, rhs, token.Span{})
	require.Equal(t, core.TKUnionOr, u.Kind)
	assert.Equal(t, "A", u.Lhs.Ref.Name)
	assert.Equal(t, "B", u.Rhs.Ref.Name)
}

func TestBuiltinsRecognizesEveryPrimitiveSpelling(t *testing.T) {
	for spelling, kind := range core.Builtins {
		assert.Equal(t, spelling, string(kind))
	}
	assert.Equal(t, core.I32, core.Builtins["i32"])
	assert.Equal(t, core.Never, core.Builtins["never"])
}

func TestTypeExprOpsRecognizesArrayItem(t *testing.T) {
	op, ok := core.TypeExprOps["ArrayItem"]
	require.True(t, ok)
	assert.Equal(t, core.OpArrayItem, op)
}

func TestOneOfTypeWithEmptyVariantsIsUnitLike(t *testing.T) {
	ty := core.OneOfType(nil, token.Span{})
	assert.Equal(t, core.TKOneOf, ty.Kind)
	assert.Empty(t, ty.Variants)
}
