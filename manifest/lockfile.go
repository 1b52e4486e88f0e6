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

package manifest

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
)

// LockfileVersion is the versioned lockfile format tag (spec §6 Lockfile
// format: "Versioned (V1)").
const LockfileVersion = "V1"

// LockSource mirrors Dependency.Source but as a serializable tagged value
// for the lockfile.
type LockSource struct {
	Kind string `toml:"kind"` // "path" | "git" | "registry"
	Path string `toml:"path,omitempty"`
	Git  string `toml:"git,omitempty"`
	Ref  string `toml:"ref,omitempty"`
	URL  string `toml:"url,omitempty"`
}

// LockEntry is one resolved-and-pinned dependency.
type LockEntry struct {
	Name     string     `toml:"name"`
	Version  string     `toml:"version"`
	Checksum string     `toml:"checksum"`
	Source   LockSource `toml:"source"`
}

// Lockfile is the on-disk `kintsu.lock` structure: a map of "<name>@<version>"
// to its pinned entry (spec §6 Lockfile format).
type Lockfile struct {
	Version string               `toml:"version"`
	Entries map[string]LockEntry `toml:"entries"`
}

func NewLockfile() *Lockfile {
	return &Lockfile{Version: LockfileVersion, Entries: map[string]LockEntry{}}
}

func lockKey(name, version string) string {
	return name + "@" + version
}

func (l *Lockfile) Get(name, version string) (LockEntry, bool) {
	e, ok := l.Entries[lockKey(name, version)]
	return e, ok
}

func (l *Lockfile) Put(e LockEntry) {
	if l.Entries == nil {
		l.Entries = map[string]LockEntry{}
	}

	l.Entries[lockKey(e.Name, e.Version)] = e
}

// ParseLockfile decodes a lockfile from TOML bytes.
func ParseLockfile(data []byte) (*Lockfile, error) {
	var l Lockfile

	if _, err := toml.Decode(string(data), &l); err != nil {
		return nil, fmt.Errorf("parse lockfile: %w", err)
	}

	if l.Entries == nil {
		l.Entries = map[string]LockEntry{}
	}

	return &l, nil
}

// Encode serializes the lockfile deterministically (spec §5 Determinism).
func (l *Lockfile) Encode() ([]byte, error) {
	var buf bytes.Buffer

	if err := toml.NewEncoder(&buf).Encode(l); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// State tracks whether the lockfile was invalidated during a compile run.
// Invalidation is not an error (spec §4.4 step 5, §7 Lockfile): it only
// signals that a fresh lockfile should be written at the end.
type State struct {
	mu          sync.Mutex
	Lockfile    *Lockfile
	invalidated bool
}

func NewState(lf *Lockfile) *State {
	if lf == nil {
		lf = NewLockfile()
	}

	return &State{Lockfile: lf}
}

// CheckAndRecord compares the observed content hash for (name, version)
// against the lockfile, marking invalidation on drift or on a new
// dependency not yet present.
func (s *State) CheckAndRecord(name, version, contentHash string, src LockSource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.Lockfile.Get(name, version)
	if !ok || existing.Checksum != contentHash {
		s.invalidated = true
	}

	s.Lockfile.Put(LockEntry{Name: name, Version: version, Checksum: contentHash, Source: src})
}

func (s *State) Invalidated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.invalidated
}

// SortedKeys returns the lockfile's entry keys in deterministic order, used
// when rendering diagnostics or tests that must not depend on map iteration
// order.
func (l *Lockfile) SortedKeys() []string {
	keys := make([]string, 0, len(l.Entries))
	for k := range l.Entries {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
