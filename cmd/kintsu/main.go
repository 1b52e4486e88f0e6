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

// Command kintsu is the CLI surface around the compiler core (spec §6 CLI
// surface): it fetches the root manifest, invokes the core, and persists
// the declaration bundle and lockfile. Everything here is a thin
// orchestration layer — the core itself never touches os.Exit or stdout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"

	"github.com/alecthomas/kong"

	"github.com/kintsu-lang/kintsu/ctx/compile"
	"github.com/kintsu-lang/kintsu/declare"
	"github.com/kintsu-lang/kintsu/fs"
	"github.com/kintsu-lang/kintsu/manifest"
)

// CLI is the top-level kong command tree.
type CLI struct {
	Compile CompileCmd `cmd:"" help:"Compile a package and its dependencies into a declaration bundle."`
}

// CompileCmd builds the root package at Path and writes the resulting
// declaration bundle and lockfile.
type CompileCmd struct {
	Path        string `arg:"" help:"Root package directory (must contain kintsu.toml)." type:"existingdir"`
	Output      string `help:"Declaration bundle output path." default:"kintsu.bundle.json"`
	MaxTasks    int64  `help:"Maximum concurrent dependency-load tasks." default:"8"`
	MaxSchedule int64  `help:"Maximum concurrent namespace resolution tasks." default:"8"`
	NoLockfile  bool   `help:"Skip writing a refreshed kintsu.lock."`
}

func (c *CompileCmd) Run(ctx context.Context) error {
	fsys := fs.NewOS(c.Path)

	manifestBytes, err := fsys.Read(ctx, "kintsu.toml")
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	m, err := manifest.Parse(manifestBytes)
	if err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}

	var lockfile *manifest.Lockfile

	if fsys.Exists("kintsu.lock") {
		lockBytes, err := fsys.Read(ctx, "kintsu.lock")
		if err != nil {
			return fmt.Errorf("reading lockfile: %w", err)
		}

		lockfile, err = manifest.ParseLockfile(lockBytes)
		if err != nil {
			return fmt.Errorf("parsing lockfile: %w", err)
		}
	}

	root := compile.ResolvedDependency{FS: fsys, Path: "/", Version: m.Package.Version}

	result, err := compile.Compile(ctx, root, m.Package.Name, compile.Options{
		Resolver:    compile.PathResolver{FS: fsys},
		MaxTasks:    c.MaxTasks,
		MaxSchedule: c.MaxSchedule,
		Lockfile:    lockfile,
	})
	if err != nil {
		return err
	}

	bundle := declare.Emit(m.Package.Name, result.Root, result.Deps, result.Registry)

	bundleBytes, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding declaration bundle: %w", err)
	}

	if err := fsys.Write(ctx, c.Output, bundleBytes); err != nil {
		return fmt.Errorf("writing declaration bundle: %w", err)
	}

	if !c.NoLockfile {
		lockBytes, err := result.Lock.Lockfile.Encode()
		if err != nil {
			return fmt.Errorf("encoding lockfile: %w", err)
		}

		if err := fsys.Write(ctx, "kintsu.lock", lockBytes); err != nil {
			return fmt.Errorf("writing lockfile: %w", err)
		}
	}

	fmt.Fprintf(os.Stdout, "compiled %s -> %s\n", m.Package.Name, path.Join(c.Path, c.Output))

	return nil
}

func main() {
	var cli CLI

	ctx := context.Background()

	parser := kong.Must(&cli,
		kong.Name("kintsu"),
		kong.Description("Compiler core for the Kintsu schema language and package registry."),
		kong.UsageOnError(),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
	)

	kongCtx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	parser.FatalIfErrorf(kongCtx.Run())
}
