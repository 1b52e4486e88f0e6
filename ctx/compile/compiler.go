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
	"context"

	kctx "github.com/kintsu-lang/kintsu/ctx"
	"github.com/kintsu-lang/kintsu/manifest"
	"github.com/kintsu-lang/kintsu/progress"
	"github.com/kintsu-lang/kintsu/registry"
)

// Result is everything a compile produces: the root schema, every loaded
// dependency, the shared type registry, and the lockfile state for the
// caller to persist (spec §4.4, §4.5).
type Result struct {
	Root     *kctx.SchemaCtx
	Deps     map[string]*kctx.SchemaCtx
	Registry *registry.Registry
	Lock     *manifest.State
}

// Options configures one Compile call.
type Options struct {
	Resolver    Resolver
	MaxTasks    int64 // concurrency bound for dependency loading (spec §4.4)
	MaxSchedule int64 // concurrency bound for type registration/resolution (spec §4.5)
	Lockfile    *manifest.Lockfile
	Progress    progress.Bar
}

// Compile loads root (and its transitive dependency closure) and runs the
// two-pass scheduler over the resulting schema DAG, returning a fully
// resolved registry ready for declare.Emit.
func Compile(ctx context.Context, root ResolvedDependency, rootName string, opts Options) (*Result, error) {
	lockState := manifest.NewState(opts.Lockfile)

	loader := NewLoader(opts.Resolver, opts.MaxTasks, lockState, opts.Progress)

	rootSchema, deps, err := loader.LoadRoot(ctx, root, rootName)
	if err != nil {
		return nil, err
	}

	reg := registry.New()

	sched := NewScheduler(reg, opts.MaxSchedule)

	if err := sched.Run(ctx, rootName, rootSchema, deps); err != nil {
		return nil, err
	}

	return &Result{
		Root:     rootSchema,
		Deps:     deps,
		Registry: reg,
		Lock:     lockState,
	}, nil
}
