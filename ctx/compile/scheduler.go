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
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/kintsu-lang/kintsu/ast"
	"github.com/kintsu-lang/kintsu/core"
	kctx "github.com/kintsu-lang/kintsu/ctx"
	"github.com/kintsu-lang/kintsu/ctx/resolve"
	"github.com/kintsu-lang/kintsu/registry"
	"github.com/kintsu-lang/kintsu/token"
)

// Scheduler runs the two-pass type registration and resolution sweep over a
// root schema and its loaded dependencies (spec §4.5).
type Scheduler struct {
	Registry       *registry.Registry
	MaxConcurrency int64
}

// NewScheduler creates a Scheduler bounded to maxConcurrency concurrent
// per-level tasks.
func NewScheduler(reg *registry.Registry, maxConcurrency int64) *Scheduler {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	return &Scheduler{Registry: reg, MaxConcurrency: maxConcurrency}
}

// Run groups root+deps into schema DAG levels and, for each level
// (concurrently within, strictly ordered between), runs Pass 1 then Pass 2
// over every namespace (spec §4.5.1, §4.5.2).
func (s *Scheduler) Run(ctx context.Context, rootName string, root *kctx.SchemaCtx, deps map[string]*kctx.SchemaCtx) error {
	schemas := map[string]*kctx.SchemaCtx{rootName: root}
	for name, sc := range deps {
		schemas[name] = sc
	}

	g := newDigraph()
	g.addNode(rootName)

	for name, sc := range schemas {
		g.addNode(name)

		for depName := range sc.Manifest.Dependencies {
			if _, ok := schemas[depName]; ok {
				g.addEdge(name, depName)
			}
		}
	}

	levels := g.topoLevels()

	for _, level := range levels {
		if err := s.runLevel(ctx, level, schemas); err != nil {
			return err
		}
	}

	return nil
}

func (s *Scheduler) runLevel(ctx context.Context, names []string, schemas map[string]*kctx.SchemaCtx) error {
	var eg errgroup.Group

	sem := semaphore.NewWeighted(s.MaxConcurrency)

	for _, name := range names {
		name := name
		schema := schemas[name]

		eg.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			return s.runSchema(ctx, schema)
		})
	}

	return eg.Wait()
}

// runSchema groups a schema's own namespaces by intra-schema namespace
// dependency depth (spec §4.5.1 "namespaces are additionally grouped by
// intra-schema namespace dependency depth") and runs Pass 1 then Pass 2 over
// each depth group in order.
func (s *Scheduler) runSchema(ctx context.Context, schema *kctx.SchemaCtx) error {
	g := newDigraph()

	for _, name := range schema.NamespaceNames() {
		g.addNode(name)
	}

	for _, name := range schema.NamespaceNames() {
		ns, _ := schema.Lookup(name)

		for _, imp := range ns.Imports {
			depName := strings.Join(imp.Path[:len(imp.Path)-boolToInt(imp.IsItem)], "::")
			if _, ok := schema.Lookup(depName); ok {
				g.addEdge(name, depName)
			}
		}
	}

	levels := g.topoLevels()

	for _, level := range levels {
		var eg errgroup.Group

		sem := semaphore.NewWeighted(s.MaxConcurrency)

		for _, name := range level {
			name := name

			eg.Go(func() error {
				if err := sem.Acquire(ctx, 1); err != nil {
					return err
				}
				defer sem.Release(1)

				ns, _ := schema.Lookup(name)

				return s.runNamespace(ns)
			})
		}

		if err := eg.Wait(); err != nil {
			return err
		}
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

// runNamespace runs Pass 1 (type-dependency cycle check) then Pass 2
// (resolver + registration) for one namespace.
func (s *Scheduler) runNamespace(ns *kctx.NamespaceCtx) error {
	if err := s.pass1(ns); err != nil {
		return err
	}

	return s.pass2(ns)
}

// pass1 builds the namespace's type dependency graph and rejects any
// strongly-connected component of size > 1 with no terminating edge
// (spec §4.5.1 Pass 1).
func (s *Scheduler) pass1(ns *kctx.NamespaceCtx) error {
	g, terminating := buildTypeGraph(ns)

	for _, comp := range g.tarjanSCCs() {
		if len(comp.members) <= 1 {
			continue
		}

		if sccHasTerminatingEdge(comp, terminating) {
			continue
		}

		sortedMembers := append([]string{}, comp.members...)
		sortStrings(sortedMembers)

		first := sortedMembers[0]
		item := ns.Items[first]

		return token.NewPosError(token.KindResolution, item.Span,
			fmt.Sprintf("non-terminating type cycle: %s", strings.Join(sortedMembers, ", ")))
	}

	return nil
}

func sccHasTerminatingEdge(comp scc, terminating map[string]bool) bool {
	members := map[string]bool{}
	for _, m := range comp.members {
		members[m] = true
	}

	for key, term := range terminating {
		if !term {
			continue
		}

		parts := strings.SplitN(key, "\x00", 2)
		if members[parts[0]] && members[parts[1]] {
			return true
		}
	}

	return false
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// buildTypeGraph builds the namespace-local type dependency graph: nodes
// are struct/enum/oneof/error/type-alias item names, edges point from an
// item to every local item name its shape references, and the returned map
// records whether each edge is terminating (optional field, array, oneof
// variant payload, result payload — spec GLOSSARY "Terminating edge").
func buildTypeGraph(ns *kctx.NamespaceCtx) (*digraph, map[string]bool) {
	g := newDigraph()
	terminating := map[string]bool{}

	localNames := map[string]bool{}

	for _, name := range ns.OrderedNames() {
		item := ns.Items[name]
		if item.Kind == ast.IOperation || item.Kind == ast.INestedNamespace {
			continue
		}

		localNames[name] = true
		g.addNode(name)
	}

	addEdge := func(from string, t core.Type, term bool) {
		walkTypeEdges(t, term, func(to string, edgeTerm bool) {
			if !localNames[to] || to == from {
				return
			}

			g.addEdge(from, to)

			key := from + "\x00" + to
			if edgeTerm {
				terminating[key] = true
			} else if _, ok := terminating[key]; !ok {
				terminating[key] = false
			}
		})
	}

	for name := range localNames {
		item := ns.Items[name]

		switch item.Kind {
		case ast.IStruct:
			for _, f := range item.Fields {
				addEdge(name, f.Type, f.Optional)
			}
		case ast.IOneOf, ast.IError:
			for _, v := range item.SumVariants {
				addEdge(name, v.Type, true)
			}
		case ast.IType:
			addEdge(name, item.AliasType, false)
		}
	}

	return g, terminating
}

// walkTypeEdges visits every local-identifier leaf reachable from t,
// calling visit(name, terminating) once per occurrence. term tracks whether
// any terminating wrapper (array, oneof variant, result, or the field's own
// optionality) has been crossed so far on the path to this leaf.
func walkTypeEdges(t core.Type, term bool, visit func(name string, term bool)) {
	switch t.Kind {
	case core.TKIdent:
		visit(t.Ref.Name, term)
	case core.TKArray:
		walkTypeEdges(*t.Elem, true, visit)
	case core.TKParen:
		walkTypeEdges(*t.Inner, term, visit)
	case core.TKResult:
		walkTypeEdges(*t.Inner, true, visit)
	case core.TKUnion:
		for _, op := range t.UnionOperands {
			walkTypeEdges(op, term, visit)
		}
	case core.TKUnionOr:
		walkTypeEdges(*t.Lhs, term, visit)
		walkTypeEdges(*t.Rhs, term, visit)
	case core.TKOneOf:
		for _, v := range t.Variants {
			walkTypeEdges(v, true, visit)
		}
	case core.TKStruct:
		for _, f := range t.Fields {
			walkTypeEdges(f.Type, term || f.Optional, visit)
		}
	case core.TKTypeExpr:
		for _, a := range t.ExprArgs {
			walkTypeEdges(a, term, visit)
		}
	}
}

// pass2 runs the resolver over ns and integrates its output into both the
// namespace context and the shared registry (spec §4.5.2).
func (s *Scheduler) pass2(ns *kctx.NamespaceCtx) error {
	result, err := resolve.Resolve(ns, s.Registry)
	if err != nil {
		return err
	}

	ns.Lock()
	ns.ResolvedAliases = result.ResolvedAliases
	ns.ResolvedVersions = result.ResolvedVersions
	ns.ResolvedErrors = result.ResolvedErrors
	ns.LiftedStructs = result.LiftedStructs
	ns.MergedUnions = result.MergedUnions
	ns.Unlock()

	for _, name := range result.Order {
		def := result.Items[name]
		key := core.NewNamedItemContext(ns.Ref, name)

		if err := s.Registry.Insert(key, def, def.Span, ""); err != nil {
			return err
		}
	}

	for _, lifted := range result.LiftedStructs {
		def := core.Definition{Kind: core.DefStruct, Name: lifted.Name, Span: lifted.Span, Fields: lifted.Fields}
		key := core.NewNamedItemContext(ns.Ref, lifted.Name)

		if err := s.Registry.Insert(key, def, lifted.Span, ""); err != nil {
			return err
		}
	}

	for _, merged := range result.MergedUnions {
		def := core.Definition{Kind: core.DefStruct, Name: merged.Name, Span: merged.Span, Fields: merged.Fields}
		key := core.NewNamedItemContext(ns.Ref, merged.Name)

		if err := s.Registry.Insert(key, def, merged.Span, ""); err != nil {
			return err
		}
	}

	return nil
}
