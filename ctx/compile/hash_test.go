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

package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHashStableRegardlessOfMapIterationOrder(t *testing.T) {
	files := map[string][]byte{
		"b.kintsu": []byte("struct B {}"),
		"a.kintsu": []byte("struct A {}"),
	}

	h1 := contentHash(files)
	h2 := contentHash(files)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // hex sha256
}

func TestContentHashChangesWithContent(t *testing.T) {
	h1 := contentHash(map[string][]byte{"a.kintsu": []byte("struct A {}")})
	h2 := contentHash(map[string][]byte{"a.kintsu": []byte("struct A { x: i32 }")})

	assert.NotEqual(t, h1, h2)
}

func TestContentHashChangesWithPath(t *testing.T) {
	h1 := contentHash(map[string][]byte{"a.kintsu": []byte("struct A {}")})
	h2 := contentHash(map[string][]byte{"b.kintsu": []byte("struct A {}")})

	assert.NotEqual(t, h1, h2)
}
