package reachability

import (
	"context"
	"testing"

	"github.com/kennethkcox/depguard/internal/callgraph"
	"github.com/kennethkcox/depguard/internal/importscan"
)

type fakeSource struct {
	files map[string]string
	lang  importscan.Language
}

func (f *fakeSource) Content(path string) ([]byte, importscan.Language, bool) {
	s, ok := f.files[path]
	if !ok {
		return nil, f.lang, false
	}
	return []byte(s), f.lang, true
}

func (f *fakeSource) Files() []string {
	out := make([]string, 0, len(f.files))
	for p := range f.files {
		out = append(out, p)
	}
	return out
}

func TestAnalyzeCallGraphReachable(t *testing.T) {
	g := callgraph.New()
	g.AddEntryPoint("routes.js", "handler", "HTTP_HANDLER", 0.9)
	g.AddCall("routes.js", "handler", "vuln.js", "sink", callgraph.Direct)
	g.AddVulnerability("lodash", "vuln.js", "sink", "CVE-2021-1234")

	src := &fakeSource{files: map[string]string{}, lang: importscan.JavaScript}
	eng := New(g, src, DefaultConfig())

	res := eng.Analyze(context.Background(), Location{Package: "lodash", ModulePath: "vuln.js", FunctionName: "sink"})
	if !res.IsReachable {
		t.Fatalf("expected reachable, got %+v", res)
	}
	if res.DetectionMethod != string(MethodCallGraph) {
		t.Errorf("detection method = %q, want call-graph", res.DetectionMethod)
	}
}

func TestAnalyzeUnreachableYieldsZeroConfidenceNone(t *testing.T) {
	g := callgraph.New()
	src := &fakeSource{files: map[string]string{}, lang: importscan.JavaScript}
	eng := New(g, src, DefaultConfig())

	res := eng.Analyze(context.Background(), Location{Package: "leftpad", ModulePath: "nowhere.js", FunctionName: "f"})
	if res.IsReachable || res.Confidence != 0 || res.DetectionMethod != string(MethodNone) {
		t.Fatalf("got %+v", res)
	}
}

func TestAnalyzeImportDetectionFallback(t *testing.T) {
	g := callgraph.New()
	src := &fakeSource{
		files: map[string]string{"a.js": "const _ = require('lodash');"},
		lang:  importscan.JavaScript,
	}
	eng := New(g, src, DefaultConfig())

	res := eng.Analyze(context.Background(), Location{Package: "lodash", ModulePath: "vuln.js", FunctionName: "sink"})
	if !res.IsReachable || res.DetectionMethod != string(MethodImportDetection) {
		t.Fatalf("got %+v", res)
	}
}

func TestAnalyzeCachesResult(t *testing.T) {
	g := callgraph.New()
	src := &fakeSource{files: map[string]string{}, lang: importscan.JavaScript}
	eng := New(g, src, DefaultConfig())
	loc := Location{Package: "x", ModulePath: "m", FunctionName: "f"}

	r1 := eng.Analyze(context.Background(), loc)
	r2 := eng.Analyze(context.Background(), loc)
	if r1.Confidence != r2.Confidence || r1.DetectionMethod != r2.DetectionMethod {
		t.Errorf("expected cached identical result, got %+v and %+v", r1, r2)
	}
}

func TestCombineS3BoostsExistingReachable(t *testing.T) {
	s1 := Result{IsReachable: true, Confidence: 0.5, DetectionMethod: string(MethodCallGraph)}
	s3 := Result{IsReachable: true, Confidence: 0.8}
	combined := combineS3(s1, s3)
	if combined.DetectionMethod != "call-graph+pattern" {
		t.Errorf("got %q", combined.DetectionMethod)
	}
	want := 0.5 + 0.8*0.2
	if combined.Confidence != want {
		t.Errorf("confidence = %v, want %v", combined.Confidence, want)
	}
}

func TestCombineS3ReplacesWhenS1Missed(t *testing.T) {
	s1 := Result{IsReachable: false}
	s3 := Result{IsReachable: true, Confidence: 0.7, DetectionMethod: string(MethodPatternMatching)}
	combined := combineS3(s1, s3)
	if combined.DetectionMethod != string(MethodPatternMatching) {
		t.Errorf("got %q", combined.DetectionMethod)
	}
}

func TestIsPathAffix(t *testing.T) {
	if !isPathAffix("@org/core", "@org/core/sub") {
		t.Error("expected prefix match")
	}
	if isPathAffix("@org/core", "@org/core") {
		t.Error("identical strings should not match")
	}
}

func TestDangerousSinkMatchesCatalogPackages(t *testing.T) {
	pkgs := KnownDangerousPackages()
	if len(pkgs) == 0 {
		t.Fatal("expected a non-empty dangerous-sink catalog")
	}
	fn, ok := DangerousSink([]byte("const x = _.template(input);"), "lodash")
	if !ok || fn != "_.template" {
		t.Errorf("DangerousSink(lodash) = (%q, %v), want (_.template, true)", fn, ok)
	}
	if _, ok := DangerousSink([]byte("nothing interesting"), "left-pad"); ok {
		t.Error("expected no match for a package outside the catalog")
	}
}
