// Package manifest maps manifest/lockfile filenames to their ecosystem,
// validates their content against an ecosystem-specific marker, and
// detects best-effort workspace membership.
package manifest

import (
	"context"
	"regexp"
	"strings"

	"github.com/kennethkcox/depguard/internal/model"
)

// Validator rejects a file whose content lacks the expected semantic
// marker for its filename pattern (e.g. a package.json with neither
// "dependencies" nor "devDependencies").
type Validator func(content []byte) bool

// entry is one row of the filename -> ecosystem table.
type entry struct {
	// match reports whether filename matches this entry. Exact-filename
	// entries are the common case; pattern entries (e.g. "*.csproj") use
	// a compiled regex instead and are never content-validated.
	match      func(filename string) bool
	ecosystem  model.Ecosystem
	kind       model.ManifestKind
	confidence float64
	validator  Validator // nil for pattern-matched filenames
}

func exact(name string) func(string) bool {
	return func(filename string) bool { return filename == name }
}

func suffix(sfx string) func(string) bool {
	return func(filename string) bool { return strings.HasSuffix(filename, sfx) }
}

func regex(pat string) func(string) bool {
	re := regexp.MustCompile(pat)
	return func(filename string) bool { return re.MatchString(filename) }
}

func hasAny(content []byte, markers ...string) bool {
	s := string(content)
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

var registry = []entry{
	{exact("package.json"), model.NPM, model.KindManifest, 0.95,
		func(c []byte) bool { return hasAny(c, `"dependencies"`, `"devDependencies"`) }},
	{exact("package-lock.json"), model.NPM, model.KindLockfile, 0.98, nil},
	{exact("yarn.lock"), model.NPM, model.KindLockfile, 0.98, nil},
	{exact("pnpm-lock.yaml"), model.NPM, model.KindLockfile, 0.98, nil},

	{exact("requirements.txt"), model.PyPI, model.KindManifest, 0.85, nil},
	{exact("Pipfile"), model.PyPI, model.KindManifest, 0.9, nil},
	{exact("Pipfile.lock"), model.PyPI, model.KindLockfile, 0.95, nil},
	{exact("poetry.lock"), model.PyPI, model.KindLockfile, 0.98, nil},
	{exact("pyproject.toml"), model.PyPI, model.KindManifest, 0.9,
		func(c []byte) bool {
			return hasAny(c, "[tool.poetry.dependencies]", "[project.dependencies]", "[project]")
		}},

	{exact("pom.xml"), model.Maven, model.KindManifest, 0.95, nil},
	{suffix("build.gradle"), model.Maven, model.KindManifest, 0.9, nil},
	{suffix("build.gradle.kts"), model.Maven, model.KindManifest, 0.9, nil},

	{exact("go.mod"), model.Go, model.KindManifest, 0.98,
		func(c []byte) bool { return strings.HasPrefix(strings.TrimSpace(string(c)), "module ") }},
	{exact("go.sum"), model.Go, model.KindLockfile, 0.95, nil},

	{exact("Cargo.toml"), model.Cargo, model.KindManifest, 0.95,
		func(c []byte) bool { return hasAny(c, "[package]", "[dependencies]", "[workspace]") }},
	{exact("Cargo.lock"), model.Cargo, model.KindLockfile, 0.98, nil},

	{exact("Gemfile"), model.RubyGems, model.KindManifest, 0.9, nil},
	{exact("Gemfile.lock"), model.RubyGems, model.KindLockfile, 0.98, nil},
	{regex(`\.gemspec$`), model.RubyGems, model.KindManifest, 0.85, nil},

	{exact("composer.json"), model.Packagist, model.KindManifest, 0.9, nil},
	{exact("composer.lock"), model.Packagist, model.KindLockfile, 0.98, nil},

	{regex(`\.csproj$`), model.NuGet, model.KindManifest, 0.85, nil},
	{regex(`\.fsproj$`), model.NuGet, model.KindManifest, 0.85, nil},
	{regex(`\.vbproj$`), model.NuGet, model.KindManifest, 0.85, nil},
	{regex(`\.nuspec$`), model.NuGet, model.KindManifest, 0.85, nil},
	{exact("packages.config"), model.NuGet, model.KindManifest, 0.85, nil},

	{exact("pubspec.yaml"), model.Pub, model.KindManifest, 0.9, nil},
	{exact("pubspec.lock"), model.Pub, model.KindLockfile, 0.98, nil},

	{exact("Package.swift"), model.Swift, model.KindManifest, 0.9, nil},

	{exact("mix.exs"), model.Hex, model.KindManifest, 0.9, nil},
	{exact("mix.lock"), model.Hex, model.KindLockfile, 0.98, nil},

	{regex(`\.cabal$`), model.Hackage, model.KindManifest, 0.85, nil},
	{exact("stack.yaml"), model.Hackage, model.KindManifest, 0.85, nil},
}

// Classify matches filename against the registry and, if a content
// validator is registered for the matched entry, validates content
// against it. It returns a zero-confidence, empty-ecosystem Manifest and
// ok=false when nothing matches or validation fails.
func Classify(ctx context.Context, path, filename string, content []byte) (model.Manifest, bool) {
	for _, e := range registry {
		if !e.match(filename) {
			continue
		}
		if e.validator != nil && !e.validator(content) {
			continue
		}
		return model.Manifest{
			Path:       path,
			Filename:   filename,
			Ecosystem:  e.ecosystem,
			Kind:       e.kind,
			Directory:  dirOf(path),
			Confidence: e.confidence,
		}, true
	}
	return model.Manifest{}, false
}

func dirOf(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[:i]
	}
	return "."
}
