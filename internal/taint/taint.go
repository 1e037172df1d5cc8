// Package taint tracks user-controlled data from known sources through
// propagators and sanitizers to vulnerable sinks, over the same call
// graph the reachability engine walks.
package taint

import (
	"context"
	"sort"
	"strings"

	"github.com/kennethkcox/depguard/internal/callgraph"
)

// RiskLabel is the closed set of data-flow risk labels.
type RiskLabel string

const (
	RiskCritical RiskLabel = "CRITICAL"
	RiskHigh     RiskLabel = "HIGH"
	RiskMedium   RiskLabel = "MEDIUM"
	RiskLow      RiskLabel = "LOW"
)

// sourceRisk is HIGH or MEDIUM per the specification's source catalog.
type sourceRisk string

const (
	sourceHigh   sourceRisk = "HIGH"
	sourceMedium sourceRisk = "MEDIUM"
)

type source struct {
	substr string
	risk   sourceRisk
}

// sources is matched by substring containment against a location key
// (file:function), since the engine has no AST-level variable binding.
var sources = []source{
	{"req.body", sourceHigh}, {"req.query", sourceHigh}, {"req.params", sourceHigh},
	{"req.headers", sourceHigh}, {"req.cookies", sourceHigh},
	{"request.body", sourceHigh}, {"request.query", sourceHigh}, {"request.params", sourceHigh},
	{"ctx.request", sourceHigh},
	{"process.argv", sourceMedium}, {"process.env", sourceMedium},
	{"fs.readFile", sourceMedium}, {"fs.readdir", sourceMedium},
	{"socket.data", sourceHigh}, {"ws.message", sourceHigh},
	{"db.query", sourceMedium},
}

// sanitizers is matched the same way: substring containment on the
// location key.
var sanitizers = []string{
	"validator.escape", "validator.isEmail", "validator.isURL", "validator.normalizeEmail",
	"DOMPurify.sanitize", "xss(", "sanitize-html",
	"mysql.escape", "pg.escape", "sequelize.escape",
	"path.normalize", "path.resolve",
	"parseInt(", "parseFloat(", "Number(", "String(",
	"JSON.parse",
}

// SourceSubstrings returns the taint-source substring catalog, for
// callers (the call-graph builder) that need to recognize the same
// evidence this engine later matches by substring containment on a
// location key.
func SourceSubstrings() []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = s.substr
	}
	return out
}

// propagators always propagate taint through their call; an unknown
// target also propagates by default (fail-open, per the specification).
var propagators = []string{
	"concat", "replace", "slice", "substring", "trim", "toLowerCase", "toUpperCase",
	"map", "filter", "reduce", "join",
	"Object.assign", "Object.values", "Object.keys",
	"_.map", "_.filter", "_.merge", "_.clone", "_.cloneDeep",
}

const maxPathLength = 20

// State is a BFS frontier entry: the current location, the path taken to
// reach it, the set of tainted variable names encountered, and whether
// any sanitizer fired along the path.
type State struct {
	Location  string
	Path      []string
	Tainted   map[string]bool
	Sanitized bool
}

// Result is the data-flow verdict for one sink location.
type Result struct {
	IsTainted   bool
	Confidence  float64
	Sources     []string
	Sanitizers  []string
	Risk        RiskLabel
	Paths       [][]string
	Propagators []string // known-propagator operations observed on a traced path; diagnostic only
}

// Engine runs taint BFS over a call graph.
type Engine struct {
	graph *callgraph.Graph
}

// New constructs a taint Engine bound to graph.
func New(graph *callgraph.Graph) *Engine {
	return &Engine{graph: graph}
}

// Analyze searches from every entry point for a path to sink (a
// "file:function" node key) along which tainted data could flow,
// returning the zero-paths confidence (0.30) if the sink is never
// reached during the search.
func (e *Engine) Analyze(ctx context.Context, sink string) Result {
	var paths [][]string
	var sourcesHit = map[string]bool{}
	var sanitizersHit = map[string]bool{}
	var propagatorsHit = map[string]bool{}
	anySanitized := false
	anyHighSource := false
	anySource := false

	type frontier struct {
		location  string
		path      []string
		tainted   map[string]bool
		sanitized bool
	}

	visited := map[string]bool{}
	var queue []frontier
	for _, ep := range e.graph.EntryPoints() {
		queue = append(queue, frontier{location: ep.Node, path: []string{ep.Node}, tainted: map[string]bool{}})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		visitKey := cur.location + "|" + sortedKeys(cur.tainted)
		if visited[visitKey] {
			continue
		}
		visited[visitKey] = true

		hitSources := sourcesAt(cur.location)
		for _, s := range hitSources {
			sourcesHit[s.substr] = true
			anySource = true
			if s.risk == sourceHigh {
				anyHighSource = true
			}
			cur.tainted[s.substr] = true
		}

		sanitizedHere := sanitizersAt(cur.location)
		for _, s := range sanitizedHere {
			sanitizersHit[s] = true
		}
		if len(sanitizedHere) > 0 {
			cur.sanitized = true
			anySanitized = true
		}

		if cur.location == sink && len(cur.path) > 0 {
			paths = append(paths, cur.path)
			continue
		}

		if len(cur.path) >= maxPathLength {
			continue
		}

		for _, edge := range e.graph.ForwardEdges(cur.location) {
			if p, ok := isKnownPropagator(edge.To); ok {
				propagatorsHit[p] = true
			}
			// An edge whose target isn't a known propagator still
			// propagates taint (fail-open, per the specification); the
			// isKnownPropagator lookup above only records which named
			// propagator operations appeared on the path, for diagnostics.
			nextTainted := make(map[string]bool, len(cur.tainted))
			for k := range cur.tainted {
				nextTainted[k] = true
			}
			queue = append(queue, frontier{
				location:  edge.To,
				path:      append(append([]string{}, cur.path...), edge.To),
				tainted:   nextTainted,
				sanitized: cur.sanitized,
			})
		}
	}

	return buildResult(paths, sourcesHit, sanitizersHit, propagatorsHit, anySanitized, anyHighSource, anySource)
}

func sortedKeys(m map[string]bool) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func sourcesAt(location string) []source {
	var hit []source
	for _, s := range sources {
		if strings.Contains(location, s.substr) {
			hit = append(hit, s)
		}
	}
	return hit
}

func sanitizersAt(location string) []string {
	var hit []string
	for _, s := range sanitizers {
		if strings.Contains(location, s) {
			hit = append(hit, s)
		}
	}
	return hit
}

// isKnownPropagator reports whether target (a call-graph edge's "to"
// node key) contains one of the catalog's propagator operations, and
// which one. It does not gate traversal — an unknown target still
// propagates taint by default, per the specification's fail-open rule —
// it only records which named propagator fired, for the diagnostic
// Result.Propagators list.
func isKnownPropagator(target string) (string, bool) {
	for _, p := range propagators {
		if strings.Contains(target, p) {
			return p, true
		}
	}
	return "", false
}

// buildResult applies the specification's confidence formula and risk
// cross-table.
func buildResult(paths [][]string, sourcesHit, sanitizersHit, propagatorsHit map[string]bool, anySanitized, anyHighSource, anySource bool) Result {
	srcList := sortedSet(sourcesHit)
	sanList := sortedSet(sanitizersHit)
	propList := sortedSet(propagatorsHit)

	if len(paths) == 0 {
		return Result{
			IsTainted:   false,
			Confidence:  0.30,
			Sources:     srcList,
			Sanitizers:  sanList,
			Risk:        riskLabel(anySource, anyHighSource, anySanitized),
			Propagators: propList,
		}
	}

	shortest := len(paths[0])
	for _, p := range paths {
		if len(p) < shortest {
			shortest = len(p)
		}
	}

	conf := 0.50
	if len(paths) > 1 {
		conf += 0.10
	}
	if shortest <= 3 {
		conf += 0.20
	} else if shortest <= 5 {
		conf += 0.10
	}
	if anySanitized {
		conf -= 0.30
	}
	hasReqBodyOrQuery := sourcesHit["req.body"] || sourcesHit["req.query"]
	if hasReqBodyOrQuery {
		conf += 0.15
	}
	if conf < 0.10 {
		conf = 0.10
	}
	if conf > 0.98 {
		conf = 0.98
	}

	top := paths
	if len(top) > 3 {
		top = top[:3]
	}

	return Result{
		IsTainted:   true,
		Confidence:  conf,
		Sources:     srcList,
		Sanitizers:  sanList,
		Risk:        riskLabel(anySource, anyHighSource, anySanitized),
		Paths:       top,
		Propagators: propList,
	}
}

func sortedSet(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// riskLabel applies the sources×sanitizers cross-table.
func riskLabel(anySource, highSource, sanitized bool) RiskLabel {
	switch {
	case !anySource:
		return RiskLow
	case highSource && !sanitized:
		return RiskCritical
	case highSource && sanitized:
		return RiskHigh
	case anySource && !sanitized:
		return RiskHigh
	default: // anySource && sanitized
		return RiskMedium
	}
}

// MergeWithReachability applies the specification's merge rule: when
// taint confidence exceeds 0.60, the final confidence blends it into the
// reachability confidence; otherwise the reachability confidence passes
// through unchanged.
func MergeWithReachability(reachabilityConf float64, taint Result) float64 {
	if taint.Confidence > 0.60 {
		merged := reachabilityConf + 0.4*taint.Confidence
		if merged > 0.98 {
			merged = 0.98
		}
		return merged
	}
	return reachabilityConf
}
