// Package callgraph maintains a directed multigraph of (file, function)
// call sites discovered during a source walk, plus the entry-point and
// vulnerability bindings the reachability and taint engines traverse.
package callgraph

import (
	"sync"
)

// CallType is the closed set of edge kinds the call graph records.
type CallType string

const (
	Direct       CallType = "direct"
	Dynamic      CallType = "dynamic"
	DirectMethod CallType = "direct-method"
)

// Confidence returns the fixed per-type edge confidence.
func (c CallType) Confidence() float64 {
	switch c {
	case Dynamic:
		return 0.7
	default:
		return 1.0
	}
}

// Edge is one directed call-graph edge.
type Edge struct {
	From, To   string
	Type       CallType
	Confidence float64
}

// EntryPointRef binds a graph node to the entry-point metadata the
// detector produced for it.
type EntryPointRef struct {
	Node       string
	Type       string
	Confidence float64
}

// Vulnerability binds a graph node to the package/advisory it represents
// a known vulnerable location for.
type Vulnerability struct {
	Node     string
	Package  string
	Advisory string
}

// Statistics summarizes graph size for logging/telemetry.
type Statistics struct {
	Nodes          int
	Edges          int
	EntryPoints    int
	Vulnerabilities int
}

// Graph is a directed multigraph of "file:function" nodes. The zero
// value is not usable; construct with [New]. Safe for concurrent use:
// mutation happens only during the single-threaded build phases (source
// walk, entry-point registration) but readers in the analysis phases may
// run concurrently.
type Graph struct {
	mu sync.RWMutex

	nodes   map[string]struct{}
	forward map[string][]Edge
	reverse map[string][]Edge

	entryPoints map[string]EntryPointRef
	vulns       map[string][]Vulnerability

	reachableFiles map[string]struct{} // memoized by computeReachableFiles
	reachableDirty bool
}

// New returns an empty call graph.
func New() *Graph {
	return &Graph{
		nodes:          make(map[string]struct{}),
		forward:        make(map[string][]Edge),
		reverse:        make(map[string][]Edge),
		entryPoints:    make(map[string]EntryPointRef),
		vulns:          make(map[string][]Vulnerability),
		reachableDirty: true,
	}
}

func (g *Graph) addNode(n string) {
	if _, ok := g.nodes[n]; !ok {
		g.nodes[n] = struct{}{}
	}
}

// AddEntryPoint registers file:function as an entry point with its
// detector-assigned type and confidence.
func (g *Graph) AddEntryPoint(file, function string, typ string, confidence float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	node := file + ":" + function
	g.addNode(node)
	g.entryPoints[node] = EntryPointRef{Node: node, Type: typ, Confidence: confidence}
	g.reachableDirty = true
}

// AddCall records a directed call edge and its symmetric reverse edge.
// Per the call-graph invariant, every forward edge has a matching
// reverse edge with identical type and confidence.
func (g *Graph) AddCall(fromFile, fromFn, toFile, toFn string, typ CallType) {
	g.mu.Lock()
	defer g.mu.Unlock()

	from := fromFile + ":" + fromFn
	to := toFile + ":" + toFn
	g.addNode(from)
	g.addNode(to)

	conf := typ.Confidence()
	g.forward[from] = append(g.forward[from], Edge{From: from, To: to, Type: typ, Confidence: conf})
	g.reverse[to] = append(g.reverse[to], Edge{From: to, To: from, Type: typ, Confidence: conf})
	g.reachableDirty = true
}

// AddVulnerability binds a graph node to a package/advisory pair
// representing a known vulnerable location.
func (g *Graph) AddVulnerability(pkg, file, fn, advisory string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	node := file + ":" + fn
	g.addNode(node)
	g.vulns[node] = append(g.vulns[node], Vulnerability{Node: node, Package: pkg, Advisory: advisory})
}

// ForwardEdges returns a copy of the outgoing edges from node.
func (g *Graph) ForwardEdges(node string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	edges := g.forward[node]
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// ReverseEdges returns a copy of the incoming edges into node (i.e. the
// edges of callers of node).
func (g *Graph) ReverseEdges(node string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	edges := g.reverse[node]
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// EntryPoints returns a copy of the registered entry-point set.
func (g *Graph) EntryPoints() []EntryPointRef {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]EntryPointRef, 0, len(g.entryPoints))
	for _, ep := range g.entryPoints {
		out = append(out, ep)
	}
	return out
}

// HasNode reports whether node has been created (by an edge or entry
// point registration).
func (g *Graph) HasNode(node string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[node]
	return ok
}

// Statistics reports current graph size.
func (g *Graph) Statistics() Statistics {
	g.mu.RLock()
	defer g.mu.RUnlock()
	edges := 0
	for _, es := range g.forward {
		edges += len(es)
	}
	vulns := 0
	for _, vs := range g.vulns {
		vulns += len(vs)
	}
	return Statistics{
		Nodes:          len(g.nodes),
		Edges:          edges,
		EntryPoints:    len(g.entryPoints),
		Vulnerabilities: vulns,
	}
}

// Clear resets the graph to empty.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = make(map[string]struct{})
	g.forward = make(map[string][]Edge)
	g.reverse = make(map[string][]Edge)
	g.entryPoints = make(map[string]EntryPointRef)
	g.vulns = make(map[string][]Vulnerability)
	g.reachableFiles = nil
	g.reachableDirty = true
}

// maxReachableDepth caps the BFS used to precompute the reachable-file
// set, guarding against cycles and pathological fan-out.
const maxReachableDepth = 100

// GetReachableFiles returns the set of file paths reachable by BFS from
// any registered entry point, each node visited contributing its file
// path. The result is memoized until the next graph mutation.
func (g *Graph) GetReachableFiles() map[string]struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.reachableDirty && g.reachableFiles != nil {
		out := make(map[string]struct{}, len(g.reachableFiles))
		for f := range g.reachableFiles {
			out[f] = struct{}{}
		}
		return out
	}

	files := make(map[string]struct{})
	visited := make(map[string]struct{})
	type queued struct {
		node  string
		depth int
	}
	var queue []queued
	for node := range g.entryPoints {
		queue = append(queue, queued{node: node, depth: 0})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := visited[cur.node]; ok {
			continue
		}
		visited[cur.node] = struct{}{}
		files[fileOf(cur.node)] = struct{}{}
		if cur.depth >= maxReachableDepth {
			continue
		}
		for _, e := range g.forward[cur.node] {
			if _, ok := visited[e.To]; !ok {
				queue = append(queue, queued{node: e.To, depth: cur.depth + 1})
			}
		}
	}

	g.reachableFiles = files
	g.reachableDirty = false

	out := make(map[string]struct{}, len(files))
	for f := range files {
		out[f] = struct{}{}
	}
	return out
}

// fileOf splits a "file:function" node key back to its file component.
// Function names never contain ':', so the last colon is the delimiter
// (Windows drive letters are not supported node keys; callers use
// forward-slash relative paths).
func fileOf(node string) string {
	for i := len(node) - 1; i >= 0; i-- {
		if node[i] == ':' {
			return node[:i]
		}
	}
	return node
}
