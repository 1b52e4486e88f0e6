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

// Package manifest parses the TOML package manifest and lockfile formats
// (spec §6). It uses github.com/BurntSushi/toml, the pack's one real TOML
// dependency, for both codecs.
package manifest

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/semver"
)

// Manifest is the parsed `kintsu.toml` package manifest.
type Manifest struct {
	Package      PackageInfo             `toml:"package"`
	Dependencies map[string]Dependency   `toml:"dependencies"`
}

// PackageInfo is the `[package]` table.
type PackageInfo struct {
	Name        string   `toml:"name"`
	Version     string   `toml:"version"`
	Description string   `toml:"description"`
	License     string   `toml:"license"`
	Repository  string   `toml:"repository"`
	Readme      string   `toml:"readme"`
	Authors     []string `toml:"authors"`
	Keywords    []string `toml:"keywords"`
}

// Dependency is one `[dependencies]` entry. Exactly one of Path, Git or
// Version-without-Path/Git is populated, matching the three manifest forms
// (spec §6 Package manifest format).
type Dependency struct {
	Path     string `toml:"path"`
	Git      string `toml:"git"`
	Ref      string `toml:"ref"`
	Version  string `toml:"version"`
	Registry string `toml:"registry"`
}

// Source classifies how a dependency is fetched.
type Source int

const (
	SourcePath Source = iota
	SourceGit
	SourceRegistry
)

func (d Dependency) Source() Source {
	switch {
	case d.Path != "":
		return SourcePath
	case d.Git != "":
		return SourceGit
	default:
		return SourceRegistry
	}
}

// Parse decodes manifest TOML bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest

	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if m.Package.Name == "" {
		return nil, fmt.Errorf("parse manifest: missing [package].name")
	}

	if !semver.IsValid("v" + m.Package.Version) {
		return nil, fmt.Errorf("parse manifest: invalid package version %q", m.Package.Version)
	}

	return &m, nil
}

// CompatibleVersions reports whether caller (the version a dependent
// requires) is satisfiable by candidate (a version already loaded or
// pinned): same major, caller's minor/patch <= candidate's (spec §4.4 step
// 3 Version resolution).
func CompatibleVersions(caller, candidate string) bool {
	cv, kv := "v"+caller, "v"+candidate

	if !semver.IsValid(cv) || !semver.IsValid(kv) {
		return false
	}

	if semver.Major(cv) != semver.Major(kv) {
		return false
	}

	return semver.Compare(cv, kv) <= 0
}

// MaxVersion returns the greater of two compatible semver strings (without
// the leading "v").
func MaxVersion(a, b string) string {
	if semver.Compare("v"+a, "v"+b) >= 0 {
		return a
	}

	return b
}
