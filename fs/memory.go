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

package fs

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Memory is an in-memory FileSystem, the test double required by spec §6.
// It honors path normalization: "./" segments collapse, ".." segments pop,
// and a leading "/" is retained as the root marker.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemory creates an empty in-memory filesystem, optionally seeded with
// path -> content pairs.
func NewMemory(seed map[string]string) *Memory {
	m := &Memory{files: make(map[string][]byte)}

	for p, content := range seed {
		m.files[Normalize(p)] = []byte(content)
	}

	return m
}

// Normalize collapses "./" and ".." path segments while retaining an
// absolute-root leading "/" (spec §6 FileSystem capability).
func Normalize(p string) string {
	abs := strings.HasPrefix(p, "/")
	cleaned := path.Clean(p)

	if abs && !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}

	return cleaned
}

func (m *Memory) Read(_ context.Context, p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[Normalize(p)]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", p)
	}

	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}

func (m *Memory) ReadToString(ctx context.Context, p string) (string, error) {
	data, err := m.Read(ctx, p)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func (m *Memory) Exists(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.files[Normalize(p)]

	return ok
}

func (m *Memory) Write(_ context.Context, p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	m.files[Normalize(p)] = cp

	return nil
}

// FindGlob matches every stored path against the include patterns, dropping
// anything matched by an exclude pattern, using doublestar's `**` glob
// semantics (spec §6 `find_glob`).
func (m *Memory) FindGlob(include, exclude []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []string

	for p := range m.files {
		rel := strings.TrimPrefix(p, "/")

		included := false

		for _, pat := range include {
			ok, err := doublestar.Match(pat, rel)
			if err != nil {
				return nil, err
			}

			if ok {
				included = true
				break
			}
		}

		if !included {
			continue
		}

		excluded := false

		for _, pat := range exclude {
			ok, err := doublestar.Match(pat, rel)
			if err != nil {
				return nil, err
			}

			if ok {
				excluded = true
				break
			}
		}

		if !excluded {
			matches = append(matches, p)
		}
	}

	sort.Strings(matches)

	return matches, nil
}
