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

import "sort"

// digraph is a small adjacency-list directed graph over string node names,
// shared by the schema dependency DAG (spec §4.5 "topological grouping of
// the schema dependency graph") and the per-namespace type dependency graph
// (spec §4.5.1 Pass 1).
type digraph struct {
	nodes map[string]bool
	edges map[string][]string // from -> [to]
}

func newDigraph() *digraph {
	return &digraph{nodes: map[string]bool{}, edges: map[string][]string{}}
}

func (g *digraph) addNode(n string) {
	g.nodes[n] = true
}

func (g *digraph) addEdge(from, to string) {
	g.addNode(from)
	g.addNode(to)
	g.edges[from] = append(g.edges[from], to)
}

func (g *digraph) sortedNodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}

	sort.Strings(out)

	return out
}

// scc is one strongly-connected component.
type scc struct {
	members []string
}

// tarjanSCCs computes strongly-connected components via Tarjan's algorithm,
// returning them in reverse-topological order (a component's dependencies
// come before it in the slice, matching Tarjan's natural output order).
func (g *digraph) tarjanSCCs() []scc {
	index := 0
	indices := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}

	var stack []string
	var result []scc

	var strongconnect func(v string)

	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++

		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, seen := indices[w]; !seen {
				strongconnect(w)

				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var members []string

			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				members = append(members, w)

				if w == v {
					break
				}
			}

			result = append(result, scc{members: members})
		}
	}

	for _, n := range g.sortedNodes() {
		if _, seen := indices[n]; !seen {
			strongconnect(n)
		}
	}

	return result
}

// topoLevels groups nodes into concurrency levels: level 0 has no
// dependencies among the graph's edges, level N depends only on levels
// < N. Used to run "groups of schemas at the same DAG level... concurrently"
// (spec §4.5.1) and analogously for intra-schema namespace depth. The graph
// passed in must already be acyclic (SCCs collapsed to a single
// representative node by the caller where cycles are permitted).
func (g *digraph) topoLevels() [][]string {
	depth := map[string]int{}

	var computeDepth func(n string, visiting map[string]bool) int

	computeDepth = func(n string, visiting map[string]bool) int {
		if d, ok := depth[n]; ok {
			return d
		}

		if visiting[n] {
			return 0 // caller guarantees acyclicity; guard against pathological input
		}

		visiting[n] = true

		max := -1
		for _, to := range g.edges[n] {
			if d := computeDepth(to, visiting); d > max {
				max = d
			}
		}

		visiting[n] = false

		d := max + 1
		depth[n] = d

		return d
	}

	maxDepth := 0

	for _, n := range g.sortedNodes() {
		d := computeDepth(n, map[string]bool{})
		if d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]string, maxDepth+1)
	for _, n := range g.sortedNodes() {
		levels[depth[n]] = append(levels[depth[n]], n)
	}

	return levels
}
