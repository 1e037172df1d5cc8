package manifest

import (
	"context"
	"testing"

	"github.com/kennethkcox/depguard/internal/model"
)

func TestClassifyPackageJSON(t *testing.T) {
	content := []byte(`{"name": "app", "dependencies": {"lodash": "^4.17.20"}}`)
	m, ok := Classify(context.Background(), "/p/package.json", "package.json", content)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Ecosystem != model.NPM || m.Kind != model.KindManifest {
		t.Errorf("got %+v", m)
	}
}

func TestClassifyPackageJSONRejectsWithoutMarker(t *testing.T) {
	content := []byte(`{"name": "app"}`)
	_, ok := Classify(context.Background(), "/p/package.json", "package.json", content)
	if ok {
		t.Fatal("expected validation to reject a package.json with no dependency keys")
	}
}

func TestClassifyGoMod(t *testing.T) {
	content := []byte("module example.com/app\n\ngo 1.22\n")
	m, ok := Classify(context.Background(), "/p/go.mod", "go.mod", content)
	if !ok || m.Ecosystem != model.Go {
		t.Fatalf("got %+v, ok=%v", m, ok)
	}
}

func TestClassifyGoModRejectsBadContent(t *testing.T) {
	_, ok := Classify(context.Background(), "/p/go.mod", "go.mod", []byte("not a go.mod"))
	if ok {
		t.Fatal("expected rejection")
	}
}

func TestClassifyPatternFilenameSkipsValidation(t *testing.T) {
	m, ok := Classify(context.Background(), "/p/App.csproj", "App.csproj", []byte("garbage"))
	if !ok || m.Ecosystem != model.NuGet {
		t.Fatalf("got %+v, ok=%v", m, ok)
	}
}

func TestDetectNPMWorkspaces(t *testing.T) {
	content := []byte(`{"workspaces": ["packages/*", "apps/*"]}`)
	refs := DetectNPMWorkspaces("/p/package.json", content)
	if len(refs) != 2 {
		t.Fatalf("got %+v", refs)
	}
}

func TestDetectCargoWorkspace(t *testing.T) {
	content := []byte("[workspace]\nmembers = [\"crates/a\", \"crates/b\"]\n")
	refs := DetectCargoWorkspace("/p/Cargo.toml", content)
	if len(refs) != 2 {
		t.Fatalf("got %+v", refs)
	}
}

func TestDetectGoWork(t *testing.T) {
	content := []byte("go 1.22\n\nuse (\n\t./a\n\t./b\n)\n")
	refs := DetectGoWork("/p/go.work", content)
	if len(refs) != 2 {
		t.Fatalf("got %+v", refs)
	}
}
