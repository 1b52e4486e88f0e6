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
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/kintsu-lang/kintsu/ast"
	"github.com/kintsu-lang/kintsu/core"
	kctx "github.com/kintsu-lang/kintsu/ctx"
	"github.com/kintsu-lang/kintsu/manifest"
	"github.com/kintsu-lang/kintsu/parser"
	"github.com/kintsu-lang/kintsu/progress"
	"github.com/kintsu-lang/kintsu/token"
)

// compilationTask is one unit of dependency-loading work (spec §4.4
// "CompilationTask").
type compilationTask struct {
	packageName     string
	dep             manifest.Dependency
	parentPath      string
	dependencyChain []string
}

// pkgResult is the outcome of loading one package, shared with every
// concurrent requester of the same package name (spec §4.4 step 1
// "idempotent under concurrent duplicate submission").
type pkgResult struct {
	done    chan struct{}
	schema  *kctx.SchemaCtx
	version string
	err     error
}

// Loader is the parallel dependency loader (spec §4.4): it walks a root
// manifest's transitive import closure under a bounded concurrent task
// pool, resolving, version-checking, hashing and caching each package
// exactly once.
type Loader struct {
	Resolver    Resolver
	MaxTasks    int64
	LockState   *manifest.State
	Progress    progress.Bar

	mu       sync.Mutex
	inflight map[string]*pkgResult
	cache    map[string]*kctx.SchemaCtx // key: name@version@hash

	sem *semaphore.Weighted
}

// NewLoader creates a Loader bounded to maxTasks concurrent package loads.
func NewLoader(resolver Resolver, maxTasks int64, lockState *manifest.State, bar progress.Bar) *Loader {
	if maxTasks <= 0 {
		maxTasks = 1
	}

	if bar == nil {
		bar = progress.Noop{}
	}

	return &Loader{
		Resolver:  resolver,
		MaxTasks:  maxTasks,
		LockState: lockState,
		Progress:  bar,
		inflight:  map[string]*pkgResult{},
		cache:     map[string]*kctx.SchemaCtx{},
		sem:       semaphore.NewWeighted(maxTasks),
	}
}

// LoadRoot loads the root package (no dependency-source indirection — it's
// already on the given filesystem at rootPath) and its full transitive
// closure, returning the root SchemaCtx and every loaded dependency keyed
// by package name.
func (l *Loader) LoadRoot(ctxBg context.Context, root ResolvedDependency, name string) (*kctx.SchemaCtx, map[string]*kctx.SchemaCtx, error) {
	deps := map[string]*kctx.SchemaCtx{}
	var depsMu sync.Mutex

	// A bare errgroup.Group, deliberately not context-cancelling: other
	// in-flight loads must drain to completion even after the first error
	// (spec §7 Propagation).
	var g errgroup.Group

	rootSchema, err := l.loadOne(ctxBg, &g, root, name, root.Version, []string{name}, deps, &depsMu)
	if err != nil {
		return nil, nil, err
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return rootSchema, deps, nil
}

// loadOne performs the per-task steps of spec §4.4 for one package and
// fans out g.Go calls for every newly-discovered transitive import.
func (l *Loader) loadOne(ctx context.Context, g *errgroup.Group, rd ResolvedDependency, name, requestedVersion string, chain []string, deps map[string]*kctx.SchemaCtx, depsMu *sync.Mutex) (*kctx.SchemaCtx, error) {
	// Step 1 + idempotency: claim or join.
	l.mu.Lock()

	if existing, ok := l.inflight[name]; ok {
		l.mu.Unlock()
		<-existing.done

		if existing.err != nil {
			return nil, existing.err
		}

		if !manifest.CompatibleVersions(requestedVersion, existing.version) {
			return nil, token.NewPosError(token.KindDependency, token.Span{},
				fmt.Sprintf("version incompatibility: %s requires %s, resolved to %s", name, requestedVersion, existing.version))
		}

		return existing.schema, nil
	}

	result := &pkgResult{done: make(chan struct{})}
	l.inflight[name] = result
	l.mu.Unlock()

	schema, version, err := l.loadAndRegister(ctx, g, rd, name, requestedVersion, chain, deps, depsMu)

	result.schema, result.version, result.err = schema, version, err
	close(result.done)

	if err != nil {
		return nil, err
	}

	if name != chain[0] {
		depsMu.Lock()
		deps[name] = schema
		depsMu.Unlock()
	}

	return schema, nil
}

func (l *Loader) loadAndRegister(ctx context.Context, g *errgroup.Group, rd ResolvedDependency, name, requestedVersion string, chain []string, deps map[string]*kctx.SchemaCtx, depsMu *sync.Mutex) (*kctx.SchemaCtx, string, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, "", err
	}
	defer l.sem.Release(1)

	l.Progress.SetMessage("loading " + name)
	defer l.Progress.Inc(1)

	manifestBytes, err := rd.FS.Read(ctx, path.Join(rd.Path, "kintsu.toml"))
	if err != nil {
		return nil, "", token.NewPosError(token.KindIO, token.Span{}, "reading manifest for "+name).SetCause(err)
	}

	m, err := manifest.Parse(manifestBytes)
	if err != nil {
		return nil, "", token.NewPosError(token.KindIO, token.Span{}, "invalid manifest for "+name).SetCause(err)
	}

	// Step 3: version resolution. The requested version must be compatible
	// with the version the package declares. The lockfile is consulted only
	// for an entry recorded under that same version, so pinned entries for
	// other versions, and versions of this package loaded earlier, do not
	// change the result.
	resolvedVersion := m.Package.Version
	if requestedVersion != "" && !manifest.CompatibleVersions(requestedVersion, resolvedVersion) {
		return nil, "", token.NewPosError(token.KindDependency, token.Span{},
			fmt.Sprintf("version incompatibility: %s requires %s, package declares %s", name, requestedVersion, resolvedVersion))
	}

	if pinned, ok := l.LockState.Lockfile.Get(name, resolvedVersion); ok {
		if !manifest.CompatibleVersions(pinned.Version, resolvedVersion) {
			return nil, "", token.NewPosError(token.KindDependency, token.Span{},
				fmt.Sprintf("version incompatibility: lockfile pins %s at %s, resolved %s", name, pinned.Version, resolvedVersion))
		}

		resolvedVersion = manifest.MaxVersion(pinned.Version, resolvedVersion)
	}

	paths, err := rd.FS.FindGlob([]string{path.Join(relGlob(rd.Path), "**/*.kintsu")}, nil)
	if err != nil {
		return nil, "", token.NewPosError(token.KindIO, token.Span{}, "listing sources for "+name).SetCause(err)
	}

	files := map[string][]byte{}

	for _, p := range paths {
		data, err := rd.FS.Read(ctx, p)
		if err != nil {
			return nil, "", token.NewPosError(token.KindIO, token.Span{}, "reading "+p).SetCause(err)
		}

		files[p] = data
	}

	hash := contentHash(files)

	// Step 5: lockfile invalidation is recorded but is not itself an error.
	l.LockState.CheckAndRecord(name, resolvedVersion, hash, manifest.LockSource{Kind: "path", Path: rd.Path})

	cacheKey := name + "@" + resolvedVersion + "@" + hash

	l.mu.Lock()
	if cached, ok := l.cache[cacheKey]; ok {
		l.mu.Unlock()
		return cached, resolvedVersion, nil
	}
	l.mu.Unlock()

	schema, err := l.parseSchema(m, files)
	if err != nil {
		return nil, "", err
	}

	schema.ContentHash = hash

	l.mu.Lock()
	l.cache[cacheKey] = schema
	l.mu.Unlock()

	// Step 7: enqueue transitive dependencies, guarding against cycles.
	depNames := make([]string, 0, len(m.Dependencies))
	for depName := range m.Dependencies {
		depNames = append(depNames, depName)
	}

	sort.Strings(depNames)

	for _, depName := range depNames {
		depName := depName
		dep := m.Dependencies[depName]

		for _, c := range chain {
			if c == depName {
				full := append(append([]string{}, chain...), depName)
				return nil, "", token.NewPosError(token.KindDependency, token.Span{},
					"circular dependency: "+strings.Join(full, " -> "))
			}
		}

		childResolved, err := l.Resolver.Resolve(rd.Path, depName, dep)
		if err != nil {
			return nil, "", err
		}

		childChain := append(append([]string{}, chain...), depName)

		g.Go(func() error {
			_, err := l.loadOne(ctx, g, childResolved, depName, dep.Version, childChain, deps, depsMu)
			return err
		})
	}

	return schema, resolvedVersion, nil
}

// parseSchema parses every source file and merges items into per-namespace
// contexts (spec §4.3).
func (l *Loader) parseSchema(m *manifest.Manifest, files map[string][]byte) (*kctx.SchemaCtx, error) {
	schema := kctx.NewSchemaCtx(m)

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	for _, p := range paths {
		data := files[p]

		file, err := parser.Parse(p, string(data))
		if err != nil {
			return nil, err
		}

		if err := integrateFile(schema, m.Package.Name, p, string(data), file, nil); err != nil {
			return nil, err
		}
	}

	return schema, nil
}

// integrateFile adds one parsed file's top-level items (and, recursively,
// nested namespace blocks) into schema, creating namespace contexts on
// first reference.
func integrateFile(schema *kctx.SchemaCtx, pkg, path, src string, file *ast.File, parentRef *core.RefContext) error {
	var nsName string

	for _, item := range file.Items {
		if item.Kind == ast.INamespace {
			nsName = item.NamespaceName
			break
		}
	}

	ref := core.RefContext{Package: pkg}
	if parentRef != nil {
		ref = *parentRef
	}

	if nsName != "" {
		for _, seg := range strings.Split(nsName, "::") {
			ref = ref.Join(seg)
		}
	}

	ns := schema.Namespace(ref.String(), ref)

	if err := ns.AddFile(path, src, file); err != nil {
		return err
	}

	for _, item := range file.Items {
		if item.Kind != ast.INestedNamespace {
			continue
		}

		childRef := ref.Join(item.NestedName)
		child := schema.Namespace(childRef.String(), childRef)
		child.Parent = ns
		ns.Children[item.NestedName] = child

		nested := &ast.File{Path: path, Items: item.NestedItems}
		if err := integrateFile(schema, pkg, path, src, nested, &childRef); err != nil {
			return err
		}
	}

	return nil
}

func relGlob(p string) string {
	return strings.TrimPrefix(p, "/")
}
