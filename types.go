// Package depguard implements the reachability and exploitability engine
// of a dependency vulnerability scanner: manifest discovery, entry-point
// detection, a multi-strategy reachability analyzer, and a taint-flow
// analyzer, driven by a seven-phase [Scan] orchestrator.
//
// Vulnerability feed acquisition, ecosystem lockfile parsing, and
// transitive dependency resolution are treated as external collaborators
// injected through the [AdvisoryProvider], [EcosystemParser], and
// [TransitiveResolver] contracts.
//
// The domain types below (Ecosystem, Manifest, Dependency, Advisory, ...)
// are aliases of internal/model's types. They live there, not here, so
// internal/manifest, internal/advisorymatch, and internal/semverx can
// depend on them without this package importing those collaborators
// back into an import cycle; the alias makes the split invisible to
// callers of this package.
package depguard

import "github.com/kennethkcox/depguard/internal/model"

// Ecosystem identifies the packaging ecosystem a [Manifest] or
// [Dependency] belongs to.
type Ecosystem = model.Ecosystem

// The closed set of ecosystems this engine recognizes.
const (
	NPM        = model.NPM
	PyPI       = model.PyPI
	Maven      = model.Maven
	Go         = model.Go
	Cargo      = model.Cargo
	RubyGems   = model.RubyGems
	Packagist  = model.Packagist
	NuGet      = model.NuGet
	Pub        = model.Pub
	Swift      = model.Swift
	Hex        = model.Hex
	Hackage    = model.Hackage
	Unresolved = model.Unresolved

	// RPM, Debian, and Alpine are OS-package ecosystems: not part of the
	// manifest registry's filename table, but recognized by the advisory
	// matcher's version comparator so OS-level advisories (the teacher's
	// original domain) can still be bound when a caller supplies them.
	RPM    = model.RPM
	Debian = model.Debian
	Alpine = model.Alpine
)

// ManifestKind distinguishes a hand-authored manifest from a generated
// lockfile.
type ManifestKind = model.ManifestKind

const (
	KindManifest = model.KindManifest
	KindLockfile = model.KindLockfile
)

// Manifest is a discovered dependency manifest or lockfile. Manifests are
// created during the walk phase of a [Scan] and are immutable afterward.
type Manifest = model.Manifest

// Dependency is a single declared or transitive dependency extracted from
// a [Manifest]. The uniqueness key within an ecosystem is (Ecosystem,
// Name); Version may legitimately vary across manifests that declare the
// same package.
type Dependency = model.Dependency

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
	return model.NormalizeDependencyName(eco, name)
}

// Advisory is a single vulnerability record bound to a package and
// affected version range, sourced from an external [AdvisoryProvider].
type Advisory = model.Advisory

// VulnerableLocation is the (package, file:function) pair the
// reachability and taint engines test for exploitability.
type VulnerableLocation = model.VulnerableLocation

// ReachabilitySummary is the reachability verdict attached to a
// [Finding], mirroring [reachability.Result] without importing that
// package from the public API surface.
type ReachabilitySummary = model.ReachabilitySummary

// DataFlowSummary is the optional taint-analysis verdict attached to a
// [Finding], present only when taint tracking ran for the location.
type DataFlowSummary = model.DataFlowSummary

// Finding is the per-advisory output record a [Scan] emits. Every
// advisory bound to a scanned dependency produces exactly one Finding,
// whether or not it turned out to be reachable: unreachable advisories
// carry Confidence 0 and DetectionMethod "none" rather than being
// omitted.
type Finding = model.Finding
