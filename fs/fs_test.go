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

package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintsu-lang/kintsu/fs"
)

func TestMemoryReadWriteRoundtrip(t *testing.T) {
	m := fs.NewMemory(map[string]string{"/a.kintsu": "struct A {}"})

	data, err := m.Read(context.Background(), "/a.kintsu")
	require.NoError(t, err)
	assert.Equal(t, "struct A {}", string(data))

	assert.True(t, m.Exists("/a.kintsu"))
	assert.False(t, m.Exists("/missing.kintsu"))

	require.NoError(t, m.Write(context.Background(), "/b.kintsu", []byte("struct B {}")))
	s, err := m.ReadToString(context.Background(), "/b.kintsu")
	require.NoError(t, err)
	assert.Equal(t, "struct B {}", s)
}

func TestMemoryReadMissingFile(t *testing.T) {
	m := fs.NewMemory(nil)
	_, err := m.Read(context.Background(), "/nope.kintsu")
	require.Error(t, err)
}

func TestMemoryNormalizePathVariants(t *testing.T) {
	assert.Equal(t, "/a/b.kintsu", fs.Normalize("/a/./b.kintsu"))
	assert.Equal(t, "/b.kintsu", fs.Normalize("/a/../b.kintsu"))
}

func TestMemoryFindGlobIncludeExclude(t *testing.T) {
	m := fs.NewMemory(map[string]string{
		"/src/a.kintsu":      "",
		"/src/b.kintsu":      "",
		"/src/gen/c.kintsu":  "",
		"/README.md":         "",
	})

	matches, err := m.FindGlob([]string{"**/*.kintsu"}, []string{"src/gen/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/a.kintsu", "/src/b.kintsu"}, matches)
}

func TestOSReadWriteRoundtrip(t *testing.T) {
	dir := t.TempDir()
	o := fs.NewOS(dir)

	require.NoError(t, o.Write(context.Background(), "/nested/file.kintsu", []byte("struct A {}")))

	data, err := o.Read(context.Background(), "/nested/file.kintsu")
	require.NoError(t, err)
	assert.Equal(t, "struct A {}", string(data))

	assert.True(t, o.Exists("/nested/file.kintsu"))
	assert.False(t, o.Exists("/nope.kintsu"))
}

func TestOSFindGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "gen"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.kintsu"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gen", "b.kintsu"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte(""), 0o644))

	o := fs.NewOS(dir)

	matches, err := o.FindGlob([]string{"**/*.kintsu"}, []string{"gen/**"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "/a.kintsu", matches[0])
}
