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

package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintsu-lang/kintsu/manifest"
)

func TestParseManifestValid(t *testing.T) {
	data := []byte(`
[package]
name = "demo"
version = "1.2.3"

[dependencies]
other = { path = "../other" }
`)

	m, err := manifest.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "demo", m.Package.Name)
	assert.Equal(t, "1.2.3", m.Package.Version)

	dep, ok := m.Dependencies["other"]
	require.True(t, ok)
	assert.Equal(t, manifest.SourcePath, dep.Source())
}

func TestParseManifestMissingName(t *testing.T) {
	_, err := manifest.Parse([]byte(`
[package]
version = "1.0.0"
`))
	require.Error(t, err)
}

func TestParseManifestInvalidVersion(t *testing.T) {
	_, err := manifest.Parse([]byte(`
[package]
name = "demo"
version = "not-semver"
`))
	require.Error(t, err)
}

func TestDependencySourceKinds(t *testing.T) {
	assert.Equal(t, manifest.SourcePath, (manifest.Dependency{Path: "../x"}).Source())
	assert.Equal(t, manifest.SourceGit, (manifest.Dependency{Git: "https://example.com/x"}).Source())
	assert.Equal(t, manifest.SourceRegistry, (manifest.Dependency{Version: "1.0.0"}).Source())
}

func TestCompatibleVersions(t *testing.T) {
	assert.True(t, manifest.CompatibleVersions("1.0.0", "1.2.0"))
	assert.True(t, manifest.CompatibleVersions("1.2.0", "1.2.0"))
	assert.False(t, manifest.CompatibleVersions("1.3.0", "1.2.0"))
	assert.False(t, manifest.CompatibleVersions("2.0.0", "1.9.9"))
}

func TestMaxVersion(t *testing.T) {
	assert.Equal(t, "1.2.0", manifest.MaxVersion("1.0.0", "1.2.0"))
	assert.Equal(t, "1.2.0", manifest.MaxVersion("1.2.0", "1.0.0"))
}

func TestLockfileRoundtrip(t *testing.T) {
	lf := manifest.NewLockfile()
	lf.Put(manifest.LockEntry{
		Name:     "other",
		Version:  "1.0.0",
		Checksum: "abc123",
		Source:   manifest.LockSource{Kind: "path", Path: "../other"},
	})

	data, err := lf.Encode()
	require.NoError(t, err)

	lf2, err := manifest.ParseLockfile(data)
	require.NoError(t, err)

	e, ok := lf2.Get("other", "1.0.0")
	require.True(t, ok)
	assert.Equal(t, "abc123", e.Checksum)
}

func TestLockfileStateInvalidationOnDrift(t *testing.T) {
	lf := manifest.NewLockfile()
	lf.Put(manifest.LockEntry{Name: "other", Version: "1.0.0", Checksum: "old"})

	st := manifest.NewState(lf)
	assert.False(t, st.Invalidated())

	st.CheckAndRecord("other", "1.0.0", "new", manifest.LockSource{Kind: "path"})
	assert.True(t, st.Invalidated())
}

func TestLockfileStateNotInvalidatedOnMatch(t *testing.T) {
	lf := manifest.NewLockfile()
	lf.Put(manifest.LockEntry{Name: "other", Version: "1.0.0", Checksum: "same"})

	st := manifest.NewState(lf)
	st.CheckAndRecord("other", "1.0.0", "same", manifest.LockSource{Kind: "path"})

	assert.False(t, st.Invalidated())
}

func TestLockfileSortedKeysDeterministic(t *testing.T) {
	lf := manifest.NewLockfile()
	lf.Put(manifest.LockEntry{Name: "zeta", Version: "1.0.0"})
	lf.Put(manifest.LockEntry{Name: "alpha", Version: "1.0.0"})

	keys := lf.SortedKeys()
	assert.Equal(t, []string{"alpha@1.0.0", "zeta@1.0.0"}, keys)
}
