// Package advisorymatch binds a (package, version) pair to the
// advisories an external provider returned for it. It is deliberately
// thin — the provider contract itself lives in the root package and
// does the actual fetching; this package only applies ecosystem-aware
// version-range matching to the provider's response.
package advisorymatch

import (
	"github.com/kennethkcox/depguard/internal/model"
	"github.com/kennethkcox/depguard/internal/semverx"
)

// Match filters candidates to the advisories whose package name matches
// dep and whose affected-range expression dep's version falls inside. An
// advisory with no declared affected range applies unconditionally (a
// feed that omits the field makes no claim it doesn't apply). A
// candidate with an unparsable range or version is skipped rather than
// failing the whole batch, matching the specification's per-advisory
// fault isolation (§7: AnalysisError recovers locally).
func Match(dep model.Dependency, candidates []model.Advisory) []model.Advisory {
	cmp := semverx.For(dep.Ecosystem)
	var matched []model.Advisory
	for _, adv := range candidates {
		if !namesMatch(dep, adv) {
			continue
		}
		if adv.AffectedRange == "" {
			matched = append(matched, adv)
			continue
		}
		ok, err := cmp.Satisfies(dep.Version, adv.AffectedRange)
		if err != nil || !ok {
			continue
		}
		matched = append(matched, adv)
	}
	return matched
}

func namesMatch(dep model.Dependency, adv model.Advisory) bool {
	return adv.Package == dep.Name || adv.Package == model.NormalizeDependencyName(dep.Ecosystem, dep.Name)
}
