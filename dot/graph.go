// Package dot writes directed graphs in the Graphviz dot language.
package dot

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Graph is a directed graph. Nodes may be grouped into named subgraphs, which
// Graphviz draws as boxes around them
type Graph struct {
	SubGraph
}

func New() *Graph {
	return &Graph{}
}

type SubGraph struct {
	name      string
	nodes     map[string]*Node
	subgraphs map[string]*SubGraph
}

type Node struct {
	name  string
	edges []string
}

func (n *Node) Name() string {
	return n.name
}

// Edges returns the names of the nodes that this node points to
func (n *Node) Edges() []string {
	return n.edges
}

func (g *SubGraph) Name() string {
	return g.name
}

func (g *SubGraph) HasSubgraph(name string) bool {
	_, has := g.subgraphs[name]
	return has
}

// Subgraph returns the named subgraph, adding it if necessary
func (g *SubGraph) Subgraph(name string) *SubGraph {
	if g.subgraphs == nil {
		g.subgraphs = make(map[string]*SubGraph)
	}
	if _, in := g.subgraphs[name]; !in {
		g.subgraphs[name] = &SubGraph{name: name}
	}
	return g.subgraphs[name]
}

// AddNode adds a node, or adds edges to it if it is already in the subgraph
func (g *SubGraph) AddNode(name string, edges ...string) *Node {
	if g.nodes == nil {
		g.nodes = make(map[string]*Node)
	}
	node, in := g.nodes[name]
	if !in {
		node = &Node{name: name}
		g.nodes[name] = node
	}
	for _, edge := range edges {
		if !slices.Contains(node.edges, edge) {
			node.edges = append(node.edges, edge)
		}
	}
	return node
}

func (g *SubGraph) HasNode(name string) bool {
	_, in := g.nodes[name]
	return in
}

// HasEdge reports whether a node of this subgraph, or of any subgraph inside
// of it, points to another node
func (g *SubGraph) HasEdge(node string, edge string) bool {
	if n, in := g.nodes[node]; in && slices.Contains(n.edges, edge) {
		return true
	}
	for _, sub := range g.subgraphs {
		if sub.HasEdge(node, edge) {
			return true
		}
	}
	return false
}

// WriteTo writes the graph in the dot language. Nodes, subgraphs and edges are
// sorted by name, so the same graph is always written the same way
func (g *Graph) WriteTo(w io.Writer) (int64, error) {
	buf := bufio.NewWriter(w)
	cw := &countingWriter{w: buf}
	var edges []*Node

	cw.printf("digraph {\n")
	for _, name := range sortedKeys(g.subgraphs) {
		edges = append(edges, g.subgraphs[name].write(cw, 1)...)
	}
	for _, name := range sortedKeys(g.nodes) {
		node := g.nodes[name]
		cw.printf("  %s\n", quote(name))
		edges = append(edges, node)
	}

	for _, node := range edges {
		// Skip creating edges that don't point anywhere
		if len(node.edges) == 0 {
			continue
		}
		targets := make([]string, len(node.edges))
		for i, edge := range node.edges {
			targets[i] = quote(edge)
		}
		cw.printf("  %s -> {%s}\n", quote(node.name), strings.Join(targets, ", "))
	}
	cw.printf("}\n")

	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, buf.Flush()
}

// write writes the subgraph's nodes, and returns them so that their edges can
// be written after every node has been declared
func (g *SubGraph) write(cw *countingWriter, depth int) []*Node {
	indent := strings.Repeat("  ", depth)
	var edges []*Node

	cw.printf("%ssubgraph %s {\n", indent, quote("cluster_"+g.name))
	cw.printf("%s  label=%s\n", indent, quote(g.name))
	for _, name := range sortedKeys(g.nodes) {
		cw.printf("%s  %s\n", indent, quote(name))
		edges = append(edges, g.nodes[name])
	}
	for _, name := range sortedKeys(g.subgraphs) {
		edges = append(edges, g.subgraphs[name].write(cw, depth+1)...)
	}
	cw.printf("%s}\n", indent)
	return edges
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// countingWriter remembers the first error, so that writes can be chained
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) printf(format string, args ...any) {
	if cw.err != nil {
		return
	}
	n, err := fmt.Fprintf(cw.w, format, args...)
	cw.n += int64(n)
	cw.err = err
}
