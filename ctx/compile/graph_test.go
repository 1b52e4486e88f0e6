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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigraphTopoLevelsOrdersByDependencyDepth(t *testing.T) {
	g := newDigraph()
	g.addEdge("app", "lib")
	g.addEdge("lib", "core")
	g.addNode("standalone")

	levels := g.topoLevels()
	require.Len(t, levels, 3)

	assert.ElementsMatch(t, []string{"core", "standalone"}, levels[0])
	assert.ElementsMatch(t, []string{"lib"}, levels[1])
	assert.ElementsMatch(t, []string{"app"}, levels[2])
}

func TestDigraphTopoLevelsNoEdges(t *testing.T) {
	g := newDigraph()
	g.addNode("a")
	g.addNode("b")

	levels := g.topoLevels()
	require.Len(t, levels, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, levels[0])
}

func TestDigraphTarjanSCCsFindsCycle(t *testing.T) {
	g := newDigraph()
	g.addEdge("a", "b")
	g.addEdge("b", "a")
	g.addEdge("c", "a")

	sccs := g.tarjanSCCs()

	var found bool
	for _, comp := range sccs {
		if len(comp.members) == 2 {
			found = true
			assert.ElementsMatch(t, []string{"a", "b"}, comp.members)
		}
	}
	assert.True(t, found, "expected a 2-member SCC for the a<->b cycle")
}

func TestDigraphTarjanSCCsAcyclicGraphAllSingletons(t *testing.T) {
	g := newDigraph()
	g.addEdge("a", "b")
	g.addEdge("b", "c")

	for _, comp := range g.tarjanSCCs() {
		assert.Len(t, comp.members, 1)
	}
}
