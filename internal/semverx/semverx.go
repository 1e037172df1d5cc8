// Package semverx binds the package ecosystems this engine recognizes to
// their native version-ordering libraries behind one small capability
// interface, so the advisory matcher never branches on ecosystem itself.
package semverx

import (
	"fmt"
	"strings"

	mmsemver "github.com/Masterminds/semver"
	apkversion "github.com/knqyf263/go-apk-version"
	debversion "github.com/knqyf263/go-deb-version"
	rpmversion "github.com/knqyf263/go-rpm-version"

	"github.com/kennethkcox/depguard/internal/model"
)

// Comparator orders two version strings for one ecosystem's scheme and
// reports whether a version satisfies an affected-range expression.
type Comparator interface {
	Compare(a, b string) (int, error)
	Satisfies(version, affectedRange string) (bool, error)
}

// For returns the comparator bound to eco. Ecosystems without a native
// comparator in the pack (Hackage, Hex, Swift, Pub) fall back to semver,
// since each of those schemes is semver-compatible in practice for the
// version strings advisory feeds publish.
func For(eco model.Ecosystem) Comparator {
	switch eco {
	case model.RPM:
		return rpmComparator{}
	case model.Debian:
		return debComparator{}
	case model.Alpine:
		return apkComparator{}
	default:
		return semverComparator{}
	}
}

// semverComparator wraps github.com/Masterminds/semver for npm, go,
// cargo, packagist, pub, swift, hex, maven (best-effort), and rubygems
// version strings.
type semverComparator struct{}

func (semverComparator) Compare(a, b string) (int, error) {
	va, err := mmsemver.NewVersion(normalizeForSemver(a))
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", a, err)
	}
	vb, err := mmsemver.NewVersion(normalizeForSemver(b))
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", b, err)
	}
	return va.Compare(vb), nil
}

func (semverComparator) Satisfies(version, affectedRange string) (bool, error) {
	v, err := mmsemver.NewVersion(normalizeForSemver(version))
	if err != nil {
		return false, fmt.Errorf("parse %q: %w", version, err)
	}
	c, err := mmsemver.NewConstraint(affectedRange)
	if err != nil {
		return false, fmt.Errorf("parse range %q: %w", affectedRange, err)
	}
	return c.Check(v), nil
}

// normalizeForSemver strips a leading "v" (common in go.mod-style
// versions and git tags) since Masterminds/semver v1 is strict about the
// three-numeric-component form otherwise.
func normalizeForSemver(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

type rpmComparator struct{}

func (rpmComparator) Compare(a, b string) (int, error) {
	va := rpmversion.NewVersion(a)
	vb := rpmversion.NewVersion(b)
	switch {
	case va.LessThan(vb):
		return -1, nil
	case va.GreaterThan(vb):
		return 1, nil
	default:
		return 0, nil
	}
}

func (c rpmComparator) Satisfies(version, affectedRange string) (bool, error) {
	return evaluateRange(c, version, affectedRange)
}

type debComparator struct{}

func (debComparator) Compare(a, b string) (int, error) {
	va, err := debversion.NewVersion(a)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", a, err)
	}
	vb, err := debversion.NewVersion(b)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", b, err)
	}
	return va.Compare(vb), nil
}

func (c debComparator) Satisfies(version, affectedRange string) (bool, error) {
	return evaluateRange(c, version, affectedRange)
}

type apkComparator struct{}

func (apkComparator) Compare(a, b string) (int, error) {
	va, err := apkversion.NewVersion(a)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", a, err)
	}
	vb, err := apkversion.NewVersion(b)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", b, err)
	}
	return va.Compare(vb), nil
}

func (c apkComparator) Satisfies(version, affectedRange string) (bool, error) {
	return evaluateRange(c, version, affectedRange)
}

// evaluateRange parses a comma-separated affected-range expression of
// operator-prefixed bounds (e.g. ">=1.2.3-1,<1.4.0-1") against the
// ecosystem comparators, which have no native constraint-expression
// parser of their own (unlike Masterminds/semver's Constraint type).
func evaluateRange(c Comparator, version, affectedRange string) (bool, error) {
	clauses := strings.Split(affectedRange, ",")
	for _, clause := range clauses {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		op, bound := splitOperator(clause)
		cmp, err := c.Compare(version, bound)
		if err != nil {
			return false, err
		}
		if !satisfiesOp(op, cmp) {
			return false, nil
		}
	}
	return true, nil
}

func splitOperator(clause string) (op, bound string) {
	for _, candidate := range []string{">=", "<=", "==", "!=", ">", "<", "="} {
		if strings.HasPrefix(clause, candidate) {
			return candidate, strings.TrimSpace(clause[len(candidate):])
		}
	}
	return "=", clause
}

func satisfiesOp(op string, cmp int) bool {
	switch op {
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	case "==", "=":
		return cmp == 0
	case "!=":
		return cmp != 0
	default:
		return false
	}
}
