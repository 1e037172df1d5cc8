package callgraph

import "testing"

func TestAddCallCreatesSymmetricReverseEdge(t *testing.T) {
	g := New()
	g.AddCall("a.js", "handler", "b.js", "query", Direct)

	fwd := g.ForwardEdges("a.js:handler")
	if len(fwd) != 1 || fwd[0].To != "b.js:query" || fwd[0].Confidence != 1.0 {
		t.Fatalf("forward edges = %+v", fwd)
	}

	rev := g.ReverseEdges("b.js:query")
	if len(rev) != 1 || rev[0].To != "a.js:handler" || rev[0].Type != Direct {
		t.Fatalf("reverse edges = %+v", rev)
	}
}

func TestDynamicEdgeConfidence(t *testing.T) {
	g := New()
	g.AddCall("a.js", "f", "b.js", "g", Dynamic)
	fwd := g.ForwardEdges("a.js:f")
	if fwd[0].Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", fwd[0].Confidence)
	}
}

func TestGetReachableFilesBFS(t *testing.T) {
	g := New()
	g.AddEntryPoint("routes.js", "handler", "HTTP_HANDLER", 0.9)
	g.AddCall("routes.js", "handler", "service.js", "process", Direct)
	g.AddCall("service.js", "process", "db.js", "query", Direct)

	files := g.GetReachableFiles()
	for _, f := range []string{"routes.js", "service.js", "db.js"} {
		if _, ok := files[f]; !ok {
			t.Errorf("expected %s reachable, got %+v", f, files)
		}
	}
}

func TestGetReachableFilesHandlesCycles(t *testing.T) {
	g := New()
	g.AddEntryPoint("a.js", "f", "HTTP_HANDLER", 0.9)
	g.AddCall("a.js", "f", "b.js", "g", Direct)
	g.AddCall("b.js", "g", "a.js", "f", Direct)

	done := make(chan map[string]struct{})
	go func() { done <- g.GetReachableFiles() }()
	files := <-done
	if len(files) != 2 {
		t.Fatalf("got %+v", files)
	}
}

func TestClearResetsGraph(t *testing.T) {
	g := New()
	g.AddCall("a.js", "f", "b.js", "g", Direct)
	g.Clear()
	stats := g.Statistics()
	if stats.Nodes != 0 || stats.Edges != 0 {
		t.Fatalf("got %+v after clear", stats)
	}
}

func TestStatistics(t *testing.T) {
	g := New()
	g.AddEntryPoint("a.js", "f", "HTTP_HANDLER", 0.9)
	g.AddCall("a.js", "f", "b.js", "g", Direct)
	g.AddVulnerability("lodash", "b.js", "g", "CVE-2021-1234")

	stats := g.Statistics()
	if stats.Nodes != 2 || stats.Edges != 1 || stats.EntryPoints != 1 || stats.Vulnerabilities != 1 {
		t.Fatalf("got %+v", stats)
	}
}
