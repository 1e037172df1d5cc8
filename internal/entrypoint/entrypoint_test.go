package entrypoint

import (
	"context"
	"testing"
)

func TestDetectHTTPHandler(t *testing.T) {
	src := []byte(`app.get('/users', (req, res) => { res.send(users) });`)
	signals := Detect(context.Background(), "routes/users.js", src)
	if len(signals) != 1 || signals[0].Type != HTTPHandler {
		t.Fatalf("got %+v", signals)
	}
}

func TestDetectPythonMainGuard(t *testing.T) {
	src := []byte("def main():\n    pass\n\nif __name__ == '__main__':\n    main()\n")
	signals := Detect(context.Background(), "app.py", src)
	found := false
	for _, s := range signals {
		if s.Type == MainFunction {
			found = true
		}
	}
	if !found {
		t.Fatalf("got %+v, want MAIN_FUNCTION", signals)
	}
}

func TestDetectTestFileNegativeSignal(t *testing.T) {
	src := []byte(`app.get('/x', h);`)
	signals := Detect(context.Background(), "routes/__tests__/users.test.js", src)
	var hasNegative bool
	for _, s := range signals {
		if s.Type == TestFile && s.Confidence < 0 {
			hasNegative = true
		}
	}
	if !hasNegative {
		t.Fatalf("got %+v, want a TEST_FILE negative signal", signals)
	}
}

func TestAggregateMeanAndBonus(t *testing.T) {
	signals := []Signal{
		{Type: HTTPHandler, Confidence: 0.90},
		{Type: ServerInit, Confidence: 0.85},
	}
	ep := Aggregate("app.js", "", signals)
	want := 0.875 + 0.1
	if diff := ep.AggregateConfidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("aggregate = %v, want %v", ep.AggregateConfidence, want)
	}
	if !IsEntryPoint(ep, ConfidenceThreshold) {
		t.Errorf("expected entry point above threshold")
	}
}

func TestAggregateFloorsAtZero(t *testing.T) {
	signals := []Signal{
		{Type: HTTPHandler, Confidence: 0.2},
		{Type: TestFile, Confidence: -0.8},
	}
	ep := Aggregate("x.test.js", "", signals)
	if ep.AggregateConfidence != 0 {
		t.Errorf("aggregate = %v, want 0", ep.AggregateConfidence)
	}
}

func TestAggregateEmptySignals(t *testing.T) {
	ep := Aggregate("x.js", "", nil)
	if ep.AggregateConfidence != 0 {
		t.Errorf("aggregate = %v, want 0", ep.AggregateConfidence)
	}
}

func TestPackageExportTargetMain(t *testing.T) {
	got, ok := PackageExportTarget(".", []byte(`{"name": "app", "main": "src/index.js"}`))
	if !ok || got != "src/index.js" {
		t.Fatalf("got (%q, %v), want (src/index.js, true)", got, ok)
	}
}

func TestPackageExportTargetExportsString(t *testing.T) {
	got, ok := PackageExportTarget("pkg", []byte(`{"main": "fallback.js", "exports": "./lib/entry.js"}`))
	if !ok || got != "pkg/lib/entry.js" {
		t.Fatalf("got (%q, %v), want (pkg/lib/entry.js, true)", got, ok)
	}
}

func TestPackageExportTargetExportsConditional(t *testing.T) {
	got, ok := PackageExportTarget(".", []byte(`{"exports": {".": {"import": "./esm/index.js", "require": "./cjs/index.js"}}}`))
	if !ok || got != "esm/index.js" {
		t.Fatalf("got (%q, %v), want (esm/index.js, true)", got, ok)
	}
}

func TestPackageExportTargetNeitherField(t *testing.T) {
	if _, ok := PackageExportTarget(".", []byte(`{"name": "app"}`)); ok {
		t.Error("expected ok=false when neither main nor exports is declared")
	}
}

func TestPackageExportTargetInvalidJSON(t *testing.T) {
	if _, ok := PackageExportTarget(".", []byte(`not json`)); ok {
		t.Error("expected ok=false for invalid JSON")
	}
}
