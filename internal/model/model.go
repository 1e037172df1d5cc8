// Package model holds the domain types shared between the root depguard
// package and its internal collaborators (internal/manifest,
// internal/advisorymatch, internal/semverx). They live here, rather than
// in the root package, so those collaborators can depend on the types
// without the root package importing them back — the root package
// re-exports everything in this file as type aliases and constant
// aliases, so this split is invisible to callers of the public API.
package model

import (
	"strings"

	"github.com/package-url/packageurl-go"
)

// Ecosystem identifies the packaging ecosystem a [Manifest] or
// [Dependency] belongs to.
type Ecosystem string

// The closed set of ecosystems this engine recognizes.
const (
	NPM        Ecosystem = "npm"
	PyPI       Ecosystem = "pypi"
	Maven      Ecosystem = "maven"
	Go         Ecosystem = "go"
	Cargo      Ecosystem = "cargo"
	RubyGems   Ecosystem = "rubygems"
	Packagist  Ecosystem = "packagist"
	NuGet      Ecosystem = "nuget"
	Pub        Ecosystem = "pub"
	Swift      Ecosystem = "swift"
	Hex        Ecosystem = "hex"
	Hackage    Ecosystem = "hackage"
	Unresolved Ecosystem = ""

	// RPM, Debian, and Alpine are OS-package ecosystems: not part of the
	// manifest registry's filename table, but recognized by the advisory
	// matcher's version comparator so OS-level advisories (the teacher's
	// original domain) can still be bound when a caller supplies them.
	RPM    Ecosystem = "rpm"
	Debian Ecosystem = "deb"
	Alpine Ecosystem = "apk"
)

// ManifestKind distinguishes a hand-authored manifest from a generated
// lockfile.
type ManifestKind string

const (
	KindManifest ManifestKind = "manifest"
	KindLockfile ManifestKind = "lockfile"
)

// Manifest is a discovered dependency manifest or lockfile. Manifests are
// created during the walk phase of a scan and are immutable afterward.
type Manifest struct {
	Path       string
	Filename   string
	Ecosystem  Ecosystem
	Kind       ManifestKind
	Directory  string
	Confidence float64
}

// Dependency is a single declared or transitive dependency extracted from
// a [Manifest]. The uniqueness key within an ecosystem is (Ecosystem,
// Name); Version may legitimately vary across manifests that declare the
// same package.
type Dependency struct {
	Name       string
	Version    string
	Ecosystem  Ecosystem
	Transitive bool
	Dev        bool
	Scope      string
}

// PackageURL returns the canonical package URL for the dependency,
// following the package-url spec's per-ecosystem type names. The scan
// pipeline does not call it: advisory matching compares names and
// versions directly, and [Finding] carries no package URL.
func (d Dependency) PackageURL() packageurl.PackageURL {
	name := d.Name
	namespace := ""
	switch d.Ecosystem {
	case NPM:
		if idx := strings.LastIndex(name, "/"); idx >= 0 && strings.HasPrefix(name, "@") {
			namespace = name[:idx]
			name = name[idx+1:]
		}
	case Maven:
		if idx := strings.Index(name, ":"); idx >= 0 {
			namespace = name[:idx]
			name = name[idx+1:]
		}
	}
	return packageurl.PackageURL{
		Type:      purlType(d.Ecosystem),
		Namespace: namespace,
		Name:      name,
		Version:   d.Version,
	}
}

func purlType(e Ecosystem) string {
	switch e {
	case NPM:
		return packageurl.TypeNPM
	case PyPI:
		return packageurl.TypePyPi
	case Maven:
		return packageurl.TypeMaven
	case Go:
		return packageurl.TypeGolang
	case Cargo:
		return packageurl.TypeCargo
	case RubyGems:
		return packageurl.TypeGem
	case Packagist:
		return packageurl.TypeComposer
	case NuGet:
		return packageurl.TypeNuget
	case Swift:
		return packageurl.TypeSwift
	case Hex:
		return "hex"
	case Hackage:
		return "hackage"
	case Pub:
		return "pub"
	default:
		return "generic"
	}
}

// NormalizeDependencyName normalizes a raw import/require specifier into
// the canonical dependency name for the given ecosystem:
//
//   - npm: a subpath import ("lodash/merge") collapses to its package
//     root ("lodash"); a scoped subpath ("@scope/pkg/sub") collapses to
//     "@scope/pkg".
//   - cargo: underscores normalize to hyphens ("foo_bar" -> "foo-bar"),
//     since crates.io treats the two as the same name.
//   - everything else: returned unchanged.
func NormalizeDependencyName(eco Ecosystem, name string) string {
	switch eco {
	case NPM:
		return normalizeNPMName(name)
	case Cargo:
		return strings.ReplaceAll(name, "_", "-")
	default:
		return name
	}
}

func normalizeNPMName(name string) string {
	if strings.HasPrefix(name, "@") {
		parts := strings.SplitN(name, "/", 3)
		if len(parts) >= 2 {
			return parts[0] + "/" + parts[1]
		}
		return name
	}
	if idx := strings.Index(name, "/"); idx >= 0 {
		return name[:idx]
	}
	return name
}

// Advisory is a single vulnerability record bound to a package and
// affected version range, sourced from an external advisory provider.
type Advisory struct {
	ID               string
	Package          string
	AffectedRange    string
	Severity         Severity
	CVSS             *float64
	EPSS             *float64
	KEV              bool
	AffectedFunction string
}

// VulnerableLocation is the (package, file:function) pair the
// reachability and taint engines test for exploitability.
type VulnerableLocation struct {
	Package      string
	ModulePath   string
	FunctionName string
	Advisory     Advisory
}

// Key returns the call-graph node key "module:function" this location
// binds to.
func (v VulnerableLocation) Key() string {
	return v.ModulePath + ":" + v.FunctionName
}

// ReachabilitySummary is the reachability verdict attached to a
// [Finding], mirroring internal/reachability.Result without importing
// that package from the public API surface.
type ReachabilitySummary struct {
	IsReachable        bool
	Confidence         float64
	ShortestPathLength int
	Paths              [][]string
	DetectionMethod    string
}

// DataFlowSummary is the optional taint-analysis verdict attached to a
// [Finding], present only when taint tracking ran for the location.
type DataFlowSummary struct {
	IsTainted  bool
	Confidence float64
	Sources    []string
	Sanitizers []string
	Risk       string
}

// Finding is the per-advisory output record a scan emits. Every advisory
// bound to a scanned dependency produces exactly one Finding, whether or
// not it turned out to be reachable: unreachable advisories carry
// Confidence 0 and DetectionMethod "none" rather than being omitted.
type Finding struct {
	Package      string
	Advisory     Advisory
	Location     VulnerableLocation
	Reachability ReachabilitySummary
	DataFlow     *DataFlowSummary
	IsReachable  bool
	Confidence   float64
}
