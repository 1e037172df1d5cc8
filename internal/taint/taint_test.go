package taint

import (
	"context"
	"testing"

	"github.com/kennethkcox/depguard/internal/callgraph"
)

func TestAnalyzeTaintedPathFromHighRiskSource(t *testing.T) {
	g := callgraph.New()
	g.AddEntryPoint("routes.js", "handler(req.body)", "HTTP_HANDLER", 0.9)
	g.AddCall("routes.js", "handler(req.body)", "sink.js", "exec", callgraph.Direct)

	eng := New(g)
	res := eng.Analyze(context.Background(), "sink.js:exec")

	if !res.IsTainted {
		t.Fatalf("expected tainted, got %+v", res)
	}
	if res.Risk != RiskCritical {
		t.Errorf("risk = %v, want CRITICAL", res.Risk)
	}
}

func TestAnalyzeSanitizedPathLowersRisk(t *testing.T) {
	g := callgraph.New()
	g.AddEntryPoint("routes.js", "handler(req.body)", "HTTP_HANDLER", 0.9)
	g.AddCall("routes.js", "handler(req.body)", "mid.js", "validator.escape(x)", callgraph.Direct)
	g.AddCall("mid.js", "validator.escape(x)", "sink.js", "exec", callgraph.Direct)

	eng := New(g)
	res := eng.Analyze(context.Background(), "sink.js:exec")

	if !res.IsTainted {
		t.Fatalf("expected tainted, got %+v", res)
	}
	if res.Risk != RiskHigh {
		t.Errorf("risk = %v, want HIGH (high source + sanitizer), got %+v", res.Risk, res)
	}
}

func TestAnalyzeNoPathYieldsZeroPathConfidence(t *testing.T) {
	g := callgraph.New()
	g.AddEntryPoint("a.js:f", "f", "HTTP_HANDLER", 0.9)

	eng := New(g)
	res := eng.Analyze(context.Background(), "nowhere.js:sink")
	if res.IsTainted || res.Confidence != 0.30 {
		t.Fatalf("got %+v", res)
	}
}

func TestAnalyzeRecordsKnownPropagatorsOnPath(t *testing.T) {
	g := callgraph.New()
	g.AddEntryPoint("routes.js", "handler(req.body)", "HTTP_HANDLER", 0.9)
	g.AddCall("routes.js", "handler(req.body)", "mid.js", "_.merge(x)", callgraph.Direct)
	g.AddCall("mid.js", "_.merge(x)", "sink.js", "exec", callgraph.Direct)

	eng := New(g)
	res := eng.Analyze(context.Background(), "sink.js:exec")

	if !res.IsTainted {
		t.Fatalf("expected tainted, got %+v", res)
	}
	found := false
	for _, p := range res.Propagators {
		if p == "_.merge" {
			found = true
		}
	}
	if !found {
		t.Errorf("Propagators = %v, want it to include _.merge", res.Propagators)
	}
}

func TestMergeWithReachabilityBlendsAboveThreshold(t *testing.T) {
	got := MergeWithReachability(0.5, Result{Confidence: 0.8})
	want := 0.5 + 0.4*0.8
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMergeWithReachabilityPassesThroughBelowThreshold(t *testing.T) {
	got := MergeWithReachability(0.5, Result{Confidence: 0.5})
	if got != 0.5 {
		t.Errorf("got %v, want unchanged 0.5", got)
	}
}

func TestRiskLabelCrossTable(t *testing.T) {
	cases := []struct {
		anySource, highSource, sanitized bool
		want                             RiskLabel
	}{
		{false, false, false, RiskLow},
		{true, true, false, RiskCritical},
		{true, true, true, RiskHigh},
		{true, false, false, RiskHigh},
		{true, false, true, RiskMedium},
	}
	for _, c := range cases {
		got := riskLabel(c.anySource, c.highSource, c.sanitized)
		if got != c.want {
			t.Errorf("riskLabel(%v,%v,%v) = %v, want %v", c.anySource, c.highSource, c.sanitized, got, c.want)
		}
	}
}
