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
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// OS is a FileSystem backed by the real filesystem, rooted at Root. Every
// path it accepts is relative to Root; Normalize still applies so "./" and
// ".." segments behave the same way the in-memory double does.
type OS struct {
	Root string
}

// NewOS creates an OS filesystem rooted at root.
func NewOS(root string) *OS {
	return &OS{Root: root}
}

func (o *OS) abs(p string) string {
	return filepath.Join(o.Root, Normalize(p))
}

func (o *OS) Read(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.ReadFile(o.abs(p))
}

func (o *OS) ReadToString(ctx context.Context, p string) (string, error) {
	data, err := o.Read(ctx, p)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func (o *OS) Exists(p string) bool {
	_, err := os.Stat(o.abs(p))
	return err == nil
}

func (o *OS) Write(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs := o.abs(p)

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}

	return os.WriteFile(abs, data, 0o644)
}

// FindGlob walks Root, matching every regular file against include/exclude
// patterns with doublestar's `**` semantics, mirroring Memory.FindGlob.
func (o *OS) FindGlob(include, exclude []string) ([]string, error) {
	var matches []string

	err := filepath.WalkDir(o.Root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(o.Root, p)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)

		included := false

		for _, pat := range include {
			ok, err := doublestar.Match(pat, rel)
			if err != nil {
				return err
			}

			if ok {
				included = true
				break
			}
		}

		if !included {
			return nil
		}

		for _, pat := range exclude {
			ok, err := doublestar.Match(pat, rel)
			if err != nil {
				return err
			}

			if ok {
				return nil
			}
		}

		matches = append(matches, "/"+rel)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return matches, nil
}
