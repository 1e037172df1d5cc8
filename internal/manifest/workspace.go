package manifest

import (
	"encoding/json"
	"regexp"
	"strings"
)

// WorkspaceRef is a single discovered workspace-member pattern. Consumers
// expand any globs themselves; this package only locates the declaration.
type WorkspaceRef struct {
	Pattern string
	Source  string // the file the reference was found in
	Ecosystem string
}

// npmPackageJSON is the minimal shape needed to read the "workspaces" key,
// which may be either an array or an object with a "packages" array.
type npmPackageJSON struct {
	Workspaces json.RawMessage `json:"workspaces"`
}

// DetectNPMWorkspaces reads a root package.json's "workspaces" field,
// handling both array and {"packages": [...]} object forms.
func DetectNPMWorkspaces(path string, content []byte) []WorkspaceRef {
	var pkg npmPackageJSON
	if err := json.Unmarshal(content, &pkg); err != nil || len(pkg.Workspaces) == 0 {
		return nil
	}
	var patterns []string
	if err := json.Unmarshal(pkg.Workspaces, &patterns); err != nil {
		var obj struct {
			Packages []string `json:"packages"`
		}
		if err := json.Unmarshal(pkg.Workspaces, &obj); err != nil {
			return nil
		}
		patterns = obj.Packages
	}
	refs := make([]WorkspaceRef, 0, len(patterns))
	for _, p := range patterns {
		refs = append(refs, WorkspaceRef{Pattern: p, Source: path, Ecosystem: "npm"})
	}
	return refs
}

var pnpmWorkspaceLine = regexp.MustCompile(`^\s*-\s*['"]?([^'"\s]+)['"]?\s*$`)

// DetectPNPMWorkspaces parses a pnpm-workspace.yaml's "packages:" list
// without a full YAML parser: a flat block-sequence of glob strings.
func DetectPNPMWorkspaces(path string, content []byte) []WorkspaceRef {
	lines := strings.Split(string(content), "\n")
	var refs []WorkspaceRef
	inPackages := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "packages:" {
			inPackages = true
			continue
		}
		if inPackages {
			if m := pnpmWorkspaceLine.FindStringSubmatch(line); m != nil {
				refs = append(refs, WorkspaceRef{Pattern: m[1], Source: path, Ecosystem: "npm"})
				continue
			}
			inPackages = false
		}
	}
	return refs
}

// DetectLerna parses lerna.json's "packages" array.
func DetectLerna(path string, content []byte) []WorkspaceRef {
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(content, &obj); err != nil {
		return nil
	}
	refs := make([]WorkspaceRef, 0, len(obj.Packages))
	for _, p := range obj.Packages {
		refs = append(refs, WorkspaceRef{Pattern: p, Source: path, Ecosystem: "npm"})
	}
	return refs
}

var cargoWorkspaceMembers = regexp.MustCompile(`(?s)\[workspace\].*?members\s*=\s*\[([^\]]*)\]`)
var quotedString = regexp.MustCompile(`"([^"]+)"`)

// DetectCargoWorkspace parses a root Cargo.toml's [workspace] members list.
func DetectCargoWorkspace(path string, content []byte) []WorkspaceRef {
	m := cargoWorkspaceMembers.FindSubmatch(content)
	if m == nil {
		return nil
	}
	var refs []WorkspaceRef
	for _, sm := range quotedString.FindAllSubmatch(m[1], -1) {
		refs = append(refs, WorkspaceRef{Pattern: string(sm[1]), Source: path, Ecosystem: "cargo"})
	}
	return refs
}

var goWorkUse = regexp.MustCompile(`(?s)use\s*\(([^)]*)\)`)
var goWorkUseLine = regexp.MustCompile(`^\s*([^\s#]+)`)

// DetectGoWork parses a go.work's use(...) block.
func DetectGoWork(path string, content []byte) []WorkspaceRef {
	m := goWorkUse.FindSubmatch(content)
	if m == nil {
		return nil
	}
	var refs []WorkspaceRef
	for _, line := range strings.Split(string(m[1]), "\n") {
		if sm := goWorkUseLine.FindStringSubmatch(line); sm != nil {
			refs = append(refs, WorkspaceRef{Pattern: sm[1], Source: path, Ecosystem: "go"})
		}
	}
	return refs
}

var slnProjectRef = regexp.MustCompile(`Project\([^)]*\)\s*=\s*"[^"]*",\s*"([^"]+)"`)

// DetectSolutionReferences parses a Visual Studio .sln's Project(...)
// entries for referenced .csproj/.fsproj/.vbproj paths.
func DetectSolutionReferences(path string, content []byte) []WorkspaceRef {
	var refs []WorkspaceRef
	for _, m := range slnProjectRef.FindAllSubmatch(content, -1) {
		refs = append(refs, WorkspaceRef{Pattern: string(m[1]), Source: path, Ecosystem: "nuget"})
	}
	return refs
}

// DetectWorkspaces dispatches to the right detector by filename.
func DetectWorkspaces(path, filename string, content []byte) []WorkspaceRef {
	switch {
	case filename == "package.json":
		return DetectNPMWorkspaces(path, content)
	case filename == "pnpm-workspace.yaml":
		return DetectPNPMWorkspaces(path, content)
	case filename == "lerna.json":
		return DetectLerna(path, content)
	case filename == "Cargo.toml":
		return DetectCargoWorkspace(path, content)
	case filename == "go.work":
		return DetectGoWork(path, content)
	case strings.HasSuffix(filename, ".sln"):
		return DetectSolutionReferences(path, content)
	default:
		return nil
	}
}
