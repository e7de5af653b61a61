// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dag implements a small directed acyclic graph used to order schema elements for
// evaluation.
//
// An edge from a to b means that a must be evaluated before b. Node labels are opaque strings;
// the insertion order of the nodes is remembered and used to break ties, so that the
// topological order returned by TopoSort is deterministic.
package dag

import (
	"fmt"
	"sort"
	"strings"
)

type Graph struct {
	Nodes   []string
	byLabel map[string]int
	edges   map[string]map[string]bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{byLabel: map[string]int{}, edges: map[string]map[string]bool{}}
}

func (g *Graph) AddNode(label string) bool {
	if _, ok := g.byLabel[label]; ok {
		return false
	}
	g.byLabel[label] = len(g.Nodes)
	g.Nodes = append(g.Nodes, label)
	g.edges[label] = map[string]bool{}
	return true
}

func (g *Graph) HasNode(label string) bool {
	_, ok := g.byLabel[label]
	return ok
}

// AddEdge adds an edge from a node to another. Both nodes must exist.
func (g *Graph) AddEdge(from, to string) error {
	if !g.HasNode(from) {
		return fmt.Errorf("source node not found: %s", from)
	}
	if !g.HasNode(to) {
		return fmt.Errorf("destination node not found: %s", to)
	}
	if from == to {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", from, to)
	}
	g.edges[from][to] = true
	return nil
}

func (g *Graph) HasEdge(from, to string) bool {
	return g.edges[from] != nil && g.edges[from][to]
}

// Edges returns the successors of a node in insertion order.
func (g *Graph) Edges(from string) []string {
	edges := make([]string, 0, 16)
	for k := range g.edges[from] {
		edges = append(edges, k)
	}
	sort.Slice(edges, func(i, j int) bool { return g.byLabel[edges[i]] < g.byLabel[edges[j]] })
	return edges
}

// Roots returns the roots of the DAG, i.e., the nodes without an incoming edge.
func (g *Graph) Roots() []string {
	indeg := g.indegrees()
	roots := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if indeg[n] == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

// TopoSort returns the nodes in an order where every node comes after all of its
// predecessors. Among the nodes that are ready at the same time, the one added first comes
// first. An error is returned if the graph contains a cycle.
func (g *Graph) TopoSort() ([]string, error) {
	indeg := g.indegrees()

	ready := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if indeg[n] == 0 {
			ready = append(ready, n)
		}
	}

	order := make([]string, 0, len(g.Nodes))
	for len(ready) > 0 {
		// pick the earliest inserted ready node
		sort.Slice(ready, func(i, j int) bool { return g.byLabel[ready[i]] < g.byLabel[ready[j]] })
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		for _, m := range g.Edges(n) {
			indeg[m]--
			if indeg[m] == 0 {
				ready = append(ready, m)
			}
		}
	}

	if len(order) != len(g.Nodes) {
		cyclic := []string{}
		for _, n := range g.Nodes {
			if indeg[n] > 0 {
				cyclic = append(cyclic, n)
			}
		}
		return nil, fmt.Errorf("cycle detected involving nodes [%s]", strings.Join(cyclic, ", "))
	}

	return order, nil
}

func (g *Graph) indegrees() map[string]int {
	indeg := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		indeg[n] += 0
		for m := range g.edges[n] {
			indeg[m]++
		}
	}
	return indeg
}
