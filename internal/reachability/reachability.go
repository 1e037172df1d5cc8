// Package reachability decides, for a given vulnerable location, whether
// an entry point can actually reach it — combining four strategies of
// decreasing confidence: call-graph BFS, import detection, dangerous-
// pattern matching, and transitive import-graph fallback.
package reachability

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/kennethkcox/depguard/internal/callgraph"
	"github.com/kennethkcox/depguard/internal/importscan"
)

// DetectionMethod is the closed set of ways a location was judged
// reachable (or not).
type DetectionMethod string

const (
	MethodCallGraph       DetectionMethod = "call-graph"
	MethodImportDetection DetectionMethod = "import-detection"
	MethodPatternMatching DetectionMethod = "pattern-matching"
	MethodTransitiveImport DetectionMethod = "transitive-import"
	MethodNone            DetectionMethod = "none"
	MethodComposite       DetectionMethod = "composite" // "<prior>+pattern" uses this shape, see Result.DetectionMethod string
)

// Result is the reachability verdict for one vulnerable location.
type Result struct {
	IsReachable        bool
	Confidence         float64
	ShortestPathLength int
	Paths              [][]string // top 3 highest-confidence paths
	DetectionMethod    string
}

// Config tunes the engine; zero value is not valid, use [DefaultConfig].
type Config struct {
	MaxDepth              int
	MinConfidence         float64
	IncludeIndirectPaths  bool
	BackwardConfidenceCap float64
	UseImportHeuristics   bool
	UsePatternMatching    bool
	UseTransitiveImports  bool
}

// DefaultConfig matches the specification's documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxDepth:              10,
		MinConfidence:         0.5,
		IncludeIndirectPaths:  true,
		BackwardConfidenceCap: 0.8,
		UseImportHeuristics:   true,
		UsePatternMatching:    true,
		UseTransitiveImports:  true,
	}
}

// FileSource gives the engine best-effort access to file content and
// language for strategies S2-S4. Returning ok=false skips the file.
type FileSource interface {
	Content(path string) (content []byte, lang importscan.Language, ok bool)
	// Files enumerates every scanned source file (used by S4 to build the
	// transitive import graph, and by S2/S3 when the reachable-file set
	// is smaller than the threshold below).
	Files() []string
}

// smallReachableSetThreshold: below this size S2 scans the whole project
// instead of just the reachable-file set, per the specification.
const smallReachableSetThreshold = 10

// Location is a vulnerable (module-path, function-name) pair, its graph
// node key is ModulePath + ":" + FunctionName.
type Location struct {
	Package      string
	ModulePath   string
	FunctionName string
}

func (l Location) node() string { return l.ModulePath + ":" + l.FunctionName }

// Engine runs the four strategies against a call graph and a file
// source. Results are cached per target location for the engine's
// lifetime (one scan).
type Engine struct {
	graph  *callgraph.Graph
	source FileSource
	cfg    Config

	cache map[string]Result

	// transitive is the file -> imported-package-name set used by S4,
	// built lazily and cached for the engine's lifetime.
	transitive     map[string]map[string]bool
	transitiveBuilt bool
}

// New constructs an Engine bound to graph and source.
func New(graph *callgraph.Graph, source FileSource, cfg Config) *Engine {
	return &Engine{graph: graph, source: source, cfg: cfg, cache: make(map[string]Result)}
}

// Analyze decides reachability of loc. It runs S1 first and merges S3
// into S1's result right after (S3 boosts a reachable S1 result or
// replaces a miss); S2 and then S4 run only while the result is still
// unreachable. Results are cached by loc's package and node key.
func (e *Engine) Analyze(ctx context.Context, loc Location) Result {
	key := loc.Package + "|" + loc.node()
	if r, ok := e.cache[key]; ok {
		return r
	}

	result := e.strategyS1(ctx, loc)

	if e.cfg.UsePatternMatching {
		if s3, ok := e.strategyS3(ctx, loc); ok {
			result = combineS3(result, s3)
		}
	}

	if !result.IsReachable && e.cfg.UseImportHeuristics {
		if s2, ok := e.strategyS2(ctx, loc); ok {
			result = s2
		}
	}

	if !result.IsReachable && e.cfg.UseTransitiveImports {
		if s4, ok := e.strategyS4(ctx, loc); ok {
			result = s4
		}
	}

	if !result.IsReachable {
		result = Result{IsReachable: false, Confidence: 0, DetectionMethod: string(MethodNone)}
	}

	e.cache[key] = result
	return result
}

// Clear drops the per-target result cache and the cached transitive
// import graph.
func (e *Engine) Clear() {
	e.cache = make(map[string]Result)
	e.transitive = nil
	e.transitiveBuilt = false
}

// --- Strategy S1: call-graph BFS ---

type bfsPath struct {
	nodes      []string
	confidence float64
}

func (e *Engine) strategyS1(ctx context.Context, loc Location) Result {
	target := loc.node()
	if !e.graph.HasNode(target) {
		return Result{DetectionMethod: string(MethodNone)}
	}

	var paths []bfsPath

	for _, ep := range e.graph.EntryPoints() {
		if p, ok := forwardBFS(ep.Node, target, e.graph, e.cfg.MaxDepth); ok {
			paths = append(paths, p)
		}
	}

	if e.cfg.IncludeIndirectPaths {
		entrySet := make(map[string]bool)
		for _, ep := range e.graph.EntryPoints() {
			entrySet[ep.Node] = true
		}
		if p, ok := backwardBFS(target, entrySet, e.graph, e.cfg.MaxDepth, e.cfg.BackwardConfidenceCap); ok {
			paths = append(paths, p)
		}
	}

	if len(paths) == 0 {
		return Result{DetectionMethod: string(MethodNone)}
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i].confidence > paths[j].confidence })

	maxConf := paths[0].confidence
	shortest := len(paths[0].nodes)
	for _, p := range paths {
		if len(p.nodes) < shortest {
			shortest = len(p.nodes)
		}
	}

	top := paths
	if len(top) > 3 {
		top = top[:3]
	}
	var topNodes [][]string
	for _, p := range top {
		topNodes = append(topNodes, p.nodes)
	}

	reachable := maxConf >= e.cfg.MinConfidence
	method := string(MethodNone)
	if reachable {
		method = string(MethodCallGraph)
	}

	return Result{
		IsReachable:        reachable,
		Confidence:         clamp01(maxConf),
		ShortestPathLength: shortest,
		Paths:              topNodes,
		DetectionMethod:    method,
	}
}

// pathConfidence applies the length penalty and short-path boost from
// the specification: product of edge confidences × 0.95^(nodes-1),
// boosted ×1.1 if the path has ≤3 nodes, clamped to [0,1].
func pathConfidence(edgeConfidences []float64, nodeCount int) float64 {
	prod := 1.0
	for _, c := range edgeConfidences {
		prod *= c
	}
	conf := prod * math.Pow(0.95, float64(nodeCount-1))
	if nodeCount <= 3 {
		conf *= 1.1
	}
	return clamp01(conf)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// forwardBFS searches forward from start to target. Its visited set is
// keyed by node alone, so cycles never cause revisitation: each node is
// expanded once, at the shallowest depth BFS reaches it, and is not
// expanded again at a greater depth.
func forwardBFS(start, target string, g *callgraph.Graph, maxDepth int) (bfsPath, bool) {
	if start == target {
		return bfsPath{nodes: []string{start}, confidence: 1.0}, true
	}

	type state struct {
		node  string
		path  []string
		edges []float64
		depth int
	}
	visited := map[string]bool{start: true}
	queue := []state{{node: start, path: []string{start}, depth: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		for _, e := range g.ForwardEdges(cur.node) {
			nextPath := append(append([]string{}, cur.path...), e.To)
			nextEdges := append(append([]float64{}, cur.edges...), e.Confidence)
			if e.To == target {
				return bfsPath{nodes: nextPath, confidence: pathConfidence(nextEdges, len(nextPath))}, true
			}
			key := e.To
			if visited[key] {
				continue
			}
			visited[key] = true
			queue = append(queue, state{node: e.To, path: nextPath, edges: nextEdges, depth: cur.depth + 1})
		}
	}
	return bfsPath{}, false
}

// backwardBFS searches backward from target toward any node in
// entrySet, over reverse edges, capping the resulting path confidence at
// confidenceCap (Open Question (b): default 0.8).
func backwardBFS(target string, entrySet map[string]bool, g *callgraph.Graph, maxDepth int, confidenceCap float64) (bfsPath, bool) {
	if entrySet[target] {
		return bfsPath{nodes: []string{target}, confidence: confidenceCap}, true
	}

	type state struct {
		node  string
		path  []string
		edges []float64
		depth int
	}
	visited := map[string]bool{target: true}
	queue := []state{{node: target, path: []string{target}, depth: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		for _, e := range g.ReverseEdges(cur.node) {
			nextPath := append(append([]string{}, cur.path...), e.To)
			nextEdges := append(append([]float64{}, cur.edges...), e.Confidence)
			if entrySet[e.To] {
				// path is target..entry; reverse to entry..target for display.
				rev := make([]string, len(nextPath))
				for i, n := range nextPath {
					rev[len(nextPath)-1-i] = n
				}
				conf := math.Min(pathConfidence(nextEdges, len(nextPath)), confidenceCap)
				return bfsPath{nodes: rev, confidence: conf}, true
			}
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			queue = append(queue, state{node: e.To, path: nextPath, edges: nextEdges, depth: cur.depth + 1})
		}
	}
	return bfsPath{}, false
}

// --- Strategy S2: import detection ---

func (e *Engine) strategyS2(ctx context.Context, loc Location) (Result, bool) {
	files := e.candidateFiles()

	var matchedFiles []string
	var sumConf float64
	for _, f := range files {
		content, lang, ok := e.source.Content(f)
		if !ok {
			continue
		}
		if im, found := importscan.ImportsOf(content, lang, f, loc.Package); found {
			matchedFiles = append(matchedFiles, f)
			sumConf += im.Confidence
		}
	}

	if len(matchedFiles) == 0 {
		return Result{}, false
	}

	base := 0.6 + 0.05*float64(len(matchedFiles)-1)
	if base > 0.8 {
		base = 0.8
	}
	meanConf := sumConf / float64(len(matchedFiles))
	conf := (base + meanConf*0.9) / 2
	if conf > 0.85 {
		conf = 0.85
	}

	paths := [][]string{{matchedFiles[0], loc.Package + " (imported)"}}

	return Result{
		IsReachable:        conf >= e.cfg.MinConfidence,
		Confidence:         clamp01(conf),
		ShortestPathLength: 2,
		Paths:              paths,
		DetectionMethod:    string(MethodImportDetection),
	}, true
}

func (e *Engine) candidateFiles() []string {
	reachable := e.graph.GetReachableFiles()
	if len(reachable) >= smallReachableSetThreshold {
		out := make([]string, 0, len(reachable))
		for f := range reachable {
			out = append(out, f)
		}
		sort.Strings(out)
		return out
	}
	return e.source.Files()
}

// --- Strategy S3: dangerous-pattern matching ---

func (e *Engine) strategyS3(ctx context.Context, loc Location) (Result, bool) {
	entry, ok := dangerousCatalog[loc.Package]
	if !ok {
		return Result{}, false
	}

	reachable := e.graph.GetReachableFiles()
	var best Result
	found := false

	candidates := e.candidateFiles()
	for _, f := range candidates {
		content, lang, ok := e.source.Content(f)
		if !ok {
			continue
		}
		_, inReachable := reachable[f]

		if entry.re != nil && entry.re.Match(content) {
			conf := 0.70
			if inReachable {
				conf = 0.85
			}
			best = maxResult(best, Result{
				IsReachable:     conf >= e.cfg.MinConfidence,
				Confidence:      conf,
				Paths:           [][]string{{f, entry.funcName + " (pattern)"}},
				DetectionMethod: string(MethodPatternMatching),
			}, found)
			found = true
			continue
		}

		if entry.funcName != "" && strings.Contains(string(content), entry.funcName) {
			if _, imported := importscan.ImportsOf(content, lang, f, loc.Package); imported {
				best = maxResult(best, Result{
					IsReachable:     0.75 >= e.cfg.MinConfidence,
					Confidence:      0.75,
					Paths:           [][]string{{f, entry.funcName + " (function+import)"}},
					DetectionMethod: string(MethodPatternMatching),
				}, found)
				found = true
			}
		}
	}

	if !found {
		return Result{}, false
	}
	best.ShortestPathLength = 2
	return best, true
}

func maxResult(best, candidate Result, hasBest bool) Result {
	if !hasBest || candidate.Confidence > best.Confidence {
		return candidate
	}
	return best
}

// combineS3 applies the specification's strict combination rule: if S1
// already flagged reachable, an S3 hit boosts confidence and tags the
// method "<prior>+pattern"; if S1 missed, S3 replaces it outright.
func combineS3(s1 Result, s3 Result) Result {
	if s1.IsReachable {
		conf := s1.Confidence + s3.Confidence*0.2
		if conf > 1.0 {
			conf = 1.0
		}
		s1.Confidence = conf
		s1.DetectionMethod = s1.DetectionMethod + "+pattern"
		return s1
	}
	return s3
}

// --- Strategy S4: transitive import graph ---

func (e *Engine) strategyS4(ctx context.Context, loc Location) (Result, bool) {
	e.buildTransitive()

	reachable := e.graph.GetReachableFiles()
	var files []string
	for f := range reachable {
		files = append(files, f)
	}
	sort.Strings(files)

	var best Result
	found := false
	for _, f := range files {
		imports := e.transitive[f]
		if imports == nil {
			continue
		}
		if imports[loc.Package] {
			best = maxResult(best, Result{
				IsReachable:     0.55 >= e.cfg.MinConfidence,
				Confidence:      0.55,
				Paths:           [][]string{{f, loc.Package + " (transitive)"}},
				DetectionMethod: string(MethodTransitiveImport),
			}, found)
			found = true
			continue
		}
		for imp := range imports {
			if isPathAffix(imp, loc.Package) {
				best = maxResult(best, Result{
					IsReachable:     0.45 >= e.cfg.MinConfidence,
					Confidence:      0.45,
					Paths:           [][]string{{f, imp + " (transitive, related)"}},
					DetectionMethod: string(MethodTransitiveImport),
				}, found)
				found = true
			}
		}
	}

	if !found {
		return Result{}, false
	}
	best.ShortestPathLength = 2
	return best, true
}

// isPathAffix reports whether a is a path-segment prefix or suffix of b
// (e.g. "@org/core" vs "@org/core/sub").
func isPathAffix(a, b string) bool {
	if a == b {
		return false
	}
	return strings.HasPrefix(b, a+"/") || strings.HasSuffix(b, "/"+a)
}

func (e *Engine) buildTransitive() {
	if e.transitiveBuilt {
		return
	}
	e.transitive = make(map[string]map[string]bool)
	for _, f := range e.source.Files() {
		content, lang, ok := e.source.Content(f)
		if !ok {
			continue
		}
		imports := importscan.Scan(content, lang, f)
		set := make(map[string]bool, len(imports))
		for _, im := range imports {
			set[im.Package] = true
		}
		e.transitive[f] = set
	}
	e.transitiveBuilt = true
}
