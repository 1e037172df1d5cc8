package depguard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/kennethkcox/depguard/internal/advisorymatch"
	"github.com/kennethkcox/depguard/internal/callgraph"
	"github.com/kennethkcox/depguard/internal/entrypoint"
	"github.com/kennethkcox/depguard/internal/importscan"
	internallog "github.com/kennethkcox/depguard/internal/log"
	"github.com/kennethkcox/depguard/internal/manifest"
	"github.com/kennethkcox/depguard/internal/reachability"
	"github.com/kennethkcox/depguard/internal/taint"
	"github.com/kennethkcox/depguard/internal/telemetry"
	"github.com/kennethkcox/depguard/internal/walker"
)

// AdvisoryProvider is the injected collaborator that resolves a batch of
// (ecosystem, name, version) packages to the advisories affecting them.
// The orchestrator calls Query with batches of at most 20 packages, per
// spec.md §6.
type AdvisoryProvider interface {
	Query(ctx context.Context, packages []Dependency) ([]Advisory, error)
}

// EcosystemParser parses one manifest's raw content into its declared
// dependency list. Registered per ecosystem by the orchestrator's caller.
type EcosystemParser interface {
	Parse(ctx context.Context, content []byte, m Manifest) ([]Dependency, error)
}

// TransitiveResolver invokes ecosystem tooling (npm, pip, mvn, cargo, ...)
// to enumerate a manifest's full transitive dependency set. Optional: a
// nil resolver means only declared (direct) dependencies are analyzed.
type TransitiveResolver interface {
	Resolve(ctx context.Context, manifestPath string) ([]Dependency, error)
}

// SourceFile is one walked source file's content, lazily read by the
// orchestrator and handed to the import scanner, entry-point detector,
// and reachability/taint engines.
type SourceFile struct {
	Path     string
	Content  []byte
	Language importscan.Language
}

// Reader supplies file content for a project root; the default
// implementation reads from the local filesystem, but callers may inject
// one backed by a VFS or an in-memory fixture for testing.
type Reader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// ScanConfig controls one Scan invocation. Construct with [NewScanConfig]
// and functional options; the zero value is not valid.
type ScanConfig struct {
	maxDepth             int
	minConfidence        float64
	includeIndirectPaths bool
	useImportHeuristics  bool
	usePatternMatching   bool
	useTransitiveImports bool
	trackDynamicCalls    bool
	onlyReachable        bool
	parallelAnalysisLimit int64

	advisoryProvider AdvisoryProvider
	parsers          map[Ecosystem]EcosystemParser
	resolvers        map[Ecosystem]TransitiveResolver
	reader           Reader
	logger           *slog.Logger
}

// Option configures a [ScanConfig].
type Option func(*ScanConfig)

// NewScanConfig builds a ScanConfig from the specification's documented
// defaults (maxDepth 10, minConfidence 0.5, PARALLEL_ANALYSIS_LIMIT 4,
// all heuristic strategies enabled) plus any options.
func NewScanConfig(provider AdvisoryProvider, reader Reader, opts ...Option) *ScanConfig {
	cfg := &ScanConfig{
		maxDepth:              walker.DefaultMaxDepth,
		minConfidence:         reachability.DefaultConfig().MinConfidence,
		includeIndirectPaths:  true,
		useImportHeuristics:   true,
		usePatternMatching:    true,
		useTransitiveImports:  true,
		trackDynamicCalls:     true,
		onlyReachable:         false,
		parallelAnalysisLimit: 4,
		advisoryProvider:      provider,
		parsers:               make(map[Ecosystem]EcosystemParser),
		resolvers:             make(map[Ecosystem]TransitiveResolver),
		reader:                reader,
		logger:                slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func WithMaxDepth(d int) Option { return func(c *ScanConfig) { c.maxDepth = d } }
func WithMinConfidence(v float64) Option { return func(c *ScanConfig) { c.minConfidence = v } }
func WithIncludeIndirectPaths(b bool) Option { return func(c *ScanConfig) { c.includeIndirectPaths = b } }
func WithImportHeuristics(b bool) Option { return func(c *ScanConfig) { c.useImportHeuristics = b } }
func WithPatternMatching(b bool) Option { return func(c *ScanConfig) { c.usePatternMatching = b } }
func WithTransitiveImports(b bool) Option { return func(c *ScanConfig) { c.useTransitiveImports = b } }
func WithTrackDynamicCalls(b bool) Option { return func(c *ScanConfig) { c.trackDynamicCalls = b } }
func WithOnlyReachable(b bool) Option { return func(c *ScanConfig) { c.onlyReachable = b } }
func WithParallelAnalysisLimit(n int64) Option { return func(c *ScanConfig) { c.parallelAnalysisLimit = n } }
func WithLogger(l *slog.Logger) Option { return func(c *ScanConfig) { c.logger = l } }

// WithEcosystemParser registers the parser for eco's manifests.
func WithEcosystemParser(eco Ecosystem, p EcosystemParser) Option {
	return func(c *ScanConfig) { c.parsers[eco] = p }
}

// WithTransitiveResolver registers the optional transitive resolver for eco.
func WithTransitiveResolver(eco Ecosystem, r TransitiveResolver) Option {
	return func(c *ScanConfig) { c.resolvers[eco] = r }
}

// ScanResult is the complete output of one Scan: every advisory bound to
// a scanned dependency, emitted exactly once, ranked reachable-first and
// by descending confidence.
type ScanResult struct {
	ScanID   string
	Findings []Finding
}

// Scan drives the seven-phase pipeline against projectRoot:
// manifest discovery, dependency extraction, advisory matching, source
// walk + call-graph construction, entry-point detection, reachability +
// taint analysis, and ranking/emission. Each phase is total-failure
// tolerant per spec.md §7: a failed phase logs and produces zero output
// for that phase rather than aborting the scan, except when zero
// manifests are found and no source files exist to analyze either.
func Scan(ctx context.Context, projectRoot string, cfg *ScanConfig) (*ScanResult, error) {
	scanID := uuid.NewString()
	ctx = internallog.With(ctx, "scan_id", scanID)
	log := cfg.logger.With("scan_id", scanID)

	// Phase 1: manifest discovery.
	ctx1, span1 := telemetry.StartPhase(ctx, "manifest_discovery")
	manifests := discoverManifests(ctx1, projectRoot, cfg)
	span1.End()
	log.InfoContext(ctx, "manifest discovery complete", "count", len(manifests))

	// Phase 2: dependency extraction.
	ctx2, span2 := telemetry.StartPhase(ctx, "dependency_extraction")
	deps := extractDependencies(ctx2, manifests, cfg, log)
	span2.End()

	sourceFiles := walkSources(ctx, projectRoot, cfg, log)

	if len(manifests) == 0 && len(sourceFiles) == 0 {
		return nil, AnalysisError("Scan", fmt.Errorf("no manifests and no source files found under %s", projectRoot))
	}

	// Phase 3: advisory matching.
	ctx3, span3 := telemetry.StartPhase(ctx, "advisory_matching")
	advisories := matchAdvisories(ctx3, deps, cfg, log)
	span3.End()

	// Phase 4: source walk + call-graph construction (source walk already
	// ran above so its content can feed both this phase and phase 5).
	ctx4, span4 := telemetry.StartPhase(ctx, "call_graph_construction")
	graph := callgraph.New()
	buildCallGraph(ctx4, graph, sourceFiles, advisories, cfg)
	span4.End()

	// Phase 5: entry-point detection, registered with the call graph.
	ctx5, span5 := telemetry.StartPhase(ctx, "entry_point_detection")
	detectEntryPoints(ctx5, graph, sourceFiles, manifests, cfg)
	span5.End()

	// Phase 6: reachability + taint analysis per advisory.
	ctx6, span6 := telemetry.StartPhase(ctx, "reachability_and_taint")
	src := &fileSourceAdapter{files: sourceFiles}
	reachEngine := reachability.New(graph, src, reachability.Config{
		MaxDepth:              cfg.maxDepth,
		MinConfidence:         cfg.minConfidence,
		IncludeIndirectPaths:  cfg.includeIndirectPaths,
		BackwardConfidenceCap: 0.8,
		UseImportHeuristics:   cfg.useImportHeuristics,
		UsePatternMatching:    cfg.usePatternMatching,
		UseTransitiveImports:  cfg.useTransitiveImports,
	})
	taintEngine := taint.New(graph)
	findings := analyzeFindings(ctx6, deps, advisories, graph, reachEngine, taintEngine, cfg)
	span6.End()

	// Phase 7: ranking and emission.
	rankFindings(findings)
	if cfg.onlyReachable {
		findings = filterReachable(findings)
	}

	for _, f := range findings {
		telemetry.FindingsEmitted.WithLabelValues(boolLabel(f.IsReachable)).Inc()
	}

	return &ScanResult{ScanID: scanID, Findings: findings}, nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func discoverManifests(ctx context.Context, root string, cfg *ScanConfig) []Manifest {
	var out []Manifest
	for path := range walker.Walk(ctx, root, walker.ModeManifest, walker.Options{MaxDepth: cfg.maxDepth}) {
		content, err := cfg.reader.ReadFile(ctx, path)
		if err != nil {
			continue
		}
		filename := base(path)
		m, ok := manifest.Classify(ctx, path, filename, content)
		if !ok {
			continue
		}
		out = append(out, m)
	}
	return out
}

func extractDependencies(ctx context.Context, manifests []Manifest, cfg *ScanConfig, log *slog.Logger) []Dependency {
	var mu sync.Mutex
	var all []Dependency

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(int(cfg.parallelAnalysisLimit))

	for _, m := range manifests {
		m := m
		g.Go(func() error {
			parser, ok := cfg.parsers[m.Ecosystem]
			if !ok {
				return nil
			}
			content, err := cfg.reader.ReadFile(gctx, m.Path)
			if err != nil {
				log.WarnContext(gctx, "manifest unreadable", "path", m.Path, "error", err)
				return nil
			}
			deps, err := parser.Parse(gctx, content, m)
			if err != nil {
				log.WarnContext(gctx, "manifest parsing failed", "path", m.Path, "error", err)
				return nil
			}
			mu.Lock()
			all = append(all, deps...)
			mu.Unlock()

			if resolver, ok := cfg.resolvers[m.Ecosystem]; ok {
				transitive, err := resolver.Resolve(gctx, m.Path)
				if err == nil {
					for i := range transitive {
						transitive[i].Transitive = true
					}
					mu.Lock()
					all = append(all, transitive...)
					mu.Unlock()
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	return all
}

func matchAdvisories(ctx context.Context, deps []Dependency, cfg *ScanConfig, log *slog.Logger) []Advisory {
	if cfg.advisoryProvider == nil || len(deps) == 0 {
		return nil
	}
	const batchSize = 20
	var all []Advisory
	for i := 0; i < len(deps); i += batchSize {
		end := i + batchSize
		if end > len(deps) {
			end = len(deps)
		}
		batch := deps[i:end]
		advisories, err := cfg.advisoryProvider.Query(ctx, batch)
		if err != nil {
			log.WarnContext(ctx, "advisory fetch failed", "batch_start", i, "error", err)
			continue
		}
		all = append(all, advisories...)
	}
	return all
}

func walkSources(ctx context.Context, root string, cfg *ScanConfig, log *slog.Logger) []SourceFile {
	var files []SourceFile
	for path := range walker.Walk(ctx, root, walker.ModeSource, walker.Options{MaxDepth: cfg.maxDepth}) {
		lang, ok := importscan.LanguageForFile(path)
		if !ok {
			continue
		}
		content, err := cfg.reader.ReadFile(ctx, path)
		if err != nil {
			log.WarnContext(ctx, "source unreadable", "path", path, "error", err)
			continue
		}
		files = append(files, SourceFile{Path: path, Content: content, Language: lang})
	}
	return files
}

// buildCallGraph wires each file into the call graph's node space and, for
// every import of a package on the dangerous-sink catalog whose pattern
// the file's content matches, records a call edge from the file into the
// package's "package:function" sink node — the same node key a Finding's
// VulnerableLocation resolves to (see [Location]), so strategy S1's BFS
// has a real edge to walk instead of relying on S2-S4 alone. When the
// same file also contains a known taint-source substring, an
// intermediate node embedding that substring is inserted on the path so
// the taint engine (which matches sources by substring containment on a
// location key) can detect it during its own BFS. This is deliberately
// file-granular, not a real per-function call extractor: per spec.md §1
// the analyzer is "best-effort regex/AST-light", and true interprocedural
// call extraction across eleven languages is out of scope.
func buildCallGraph(ctx context.Context, graph *callgraph.Graph, files []SourceFile, advisories []Advisory, cfg *ScanConfig) {
	_ = ctx
	if !cfg.usePatternMatching {
		return
	}
	advisoriesByPackage := make(map[string][]Advisory)
	for _, a := range advisories {
		advisoriesByPackage[a.Package] = append(advisoriesByPackage[a.Package], a)
	}

	for _, f := range files {
		imports := importscan.Scan(f.Content, f.Language, f.Path)
		if len(imports) == 0 {
			continue
		}
		imported := make(map[string]bool, len(imports))
		for _, im := range imports {
			imported[im.Package] = true
		}

		sourceHit := firstSubstring(f.Content, taint.SourceSubstrings())

		for pkg := range imported {
			fn, ok := reachability.DangerousSink(f.Content, pkg)
			if !ok {
				continue
			}
			if sourceHit != "" {
				mid := "source(" + sourceHit + ")"
				graph.AddCall(f.Path, "", f.Path, mid, callgraph.Direct)
				graph.AddCall(f.Path, mid, pkg, fn, callgraph.Dynamic)
			} else {
				graph.AddCall(f.Path, "", pkg, fn, callgraph.Dynamic)
			}
			for _, adv := range advisoriesByPackage[pkg] {
				graph.AddVulnerability(pkg, pkg, fn, adv.ID)
			}
		}
	}
}

// firstSubstring returns the first of candidates that occurs in content,
// or "" if none do. Order follows the caller's catalog, which lists
// higher-risk sources first.
func firstSubstring(content []byte, candidates []string) string {
	s := string(content)
	for _, c := range candidates {
		if strings.Contains(s, c) {
			return c
		}
	}
	return ""
}

// detectEntryPoints scores every source file's regex/filename signals
// (entrypoint.Detect) plus two signals that need cross-referencing state
// Detect alone can't see: PACKAGE_EXPORT, resolved from each npm
// manifest's "main"/"exports" field against the file it names (spec.md
// §4.4), and NO_CALLERS, added when the call graph already built in
// phase 4 shows zero incoming edges into the file's node and at least one
// other signal already fired (so an isolated file with no other evidence
// doesn't get promoted on absence of callers alone).
func detectEntryPoints(ctx context.Context, graph *callgraph.Graph, files []SourceFile, manifests []Manifest, cfg *ScanConfig) {
	exportTargets := packageExportTargets(ctx, manifests, cfg)

	for _, f := range files {
		signals := entrypoint.Detect(ctx, f.Path, f.Content)

		if exportTargets[f.Path] {
			signals = append(signals, entrypoint.Signal{
				Type:       entrypoint.PackageExport,
				Confidence: 0.8,
				Reason:     "package.json main/exports entry point",
			})
		}

		if len(signals) > 0 && len(graph.ReverseEdges(f.Path+":")) == 0 {
			signals = append(signals, entrypoint.Signal{
				Type:       entrypoint.NoCallers,
				Confidence: 0.3,
				Reason:     "no incoming call-graph edges",
			})
		}

		ep := entrypoint.Aggregate(f.Path, "", signals)
		if entrypoint.IsEntryPoint(ep, entrypoint.ConfidenceThreshold) {
			graph.AddEntryPoint(f.Path, "", string(ep.Type), ep.AggregateConfidence)
		}
	}
}

// packageExportTargets resolves every npm manifest's "main"/"exports"
// field to the source-file path it names, joined onto the manifest's
// directory (so absolute, like the walker's source paths), for
// detectEntryPoints' PACKAGE_EXPORT signal.
func packageExportTargets(ctx context.Context, manifests []Manifest, cfg *ScanConfig) map[string]bool {
	out := make(map[string]bool)
	for _, m := range manifests {
		if m.Ecosystem != NPM || m.Kind != KindManifest {
			continue
		}
		content, err := cfg.reader.ReadFile(ctx, m.Path)
		if err != nil {
			continue
		}
		if target, ok := entrypoint.PackageExportTarget(m.Directory, content); ok {
			out[target] = true
		}
	}
	return out
}

type fileSourceAdapter struct {
	files []SourceFile
}

func (a *fileSourceAdapter) Content(path string) ([]byte, importscan.Language, bool) {
	for _, f := range a.files {
		if f.Path == path {
			return f.Content, f.Language, true
		}
	}
	return nil, "", false
}

func (a *fileSourceAdapter) Files() []string {
	out := make([]string, len(a.files))
	for i, f := range a.files {
		out[i] = f.Path
	}
	return out
}

func analyzeFindings(
	ctx context.Context,
	deps []Dependency,
	advisories []Advisory,
	graph *callgraph.Graph,
	reachEngine *reachability.Engine,
	taintEngine *taint.Engine,
	cfg *ScanConfig,
) []Finding {
	var mu sync.Mutex
	var findings []Finding

	sem := semaphore.NewWeighted(cfg.parallelAnalysisLimit)
	var wg sync.WaitGroup

	for _, dep := range deps {
		for _, adv := range boundAdvisories(dep, advisories) {
			dep, adv := dep, adv
			wg.Add(1)
			_ = sem.Acquire(ctx, 1)
			go func() {
				defer wg.Done()
				defer sem.Release(1)

				_, span := telemetry.StartAnalysis(ctx, adv.ID)
				defer span.End()

				loc := Location(adv, dep)
				result := reachEngine.Analyze(ctx, reachability.Location{
					Package:      dep.Name,
					ModulePath:   loc.ModulePath,
					FunctionName: loc.FunctionName,
				})

				finding := Finding{
					Package:  dep.Name,
					Advisory: adv,
					Location: loc,
					Reachability: ReachabilitySummary{
						IsReachable:        result.IsReachable,
						Confidence:         result.Confidence,
						ShortestPathLength: result.ShortestPathLength,
						Paths:              result.Paths,
						DetectionMethod:    result.DetectionMethod,
					},
					IsReachable: result.IsReachable,
					Confidence:  result.Confidence,
				}

				if result.IsReachable {
					taintResult := taintEngine.Analyze(ctx, loc.Key())
					df := DataFlowSummary{
						IsTainted:  taintResult.IsTainted,
						Confidence: taintResult.Confidence,
						Sources:    taintResult.Sources,
						Sanitizers: taintResult.Sanitizers,
						Risk:       string(taintResult.Risk),
					}
					finding.DataFlow = &df
					finding.Confidence = taint.MergeWithReachability(result.Confidence, taintResult)
				}

				mu.Lock()
				findings = append(findings, finding)
				mu.Unlock()
			}()
		}
	}
	wg.Wait()
	return findings
}

// Location builds the VulnerableLocation a Finding binds to. The module
// path is the dependency's package name and the function name is the
// advisory's affected-function hint (empty when the advisory gives none),
// so the location's node key matches the "package:function" sink nodes
// buildCallGraph adds.
func Location(adv Advisory, dep Dependency) VulnerableLocation {
	fn := adv.AffectedFunction
	return VulnerableLocation{
		Package:      dep.Name,
		ModulePath:   dep.Name,
		FunctionName: fn,
		Advisory:     adv,
	}
}

// boundAdvisories filters advisories to the ones whose package name
// matches dep and whose affected-range dep's declared version actually
// falls inside, delegating to [advisorymatch.Match] so the ecosystem's
// real version comparator (not a name-only check) gates every Finding.
func boundAdvisories(dep Dependency, advisories []Advisory) []Advisory {
	return advisorymatch.Match(dep, advisories)
}

func rankFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].IsReachable != findings[j].IsReachable {
			return findings[i].IsReachable
		}
		return findings[i].Confidence > findings[j].Confidence
	})
}

func filterReachable(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.IsReachable {
			out = append(out, f)
		}
	}
	return out
}

func base(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}
