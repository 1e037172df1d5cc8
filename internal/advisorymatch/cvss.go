package advisorymatch

import (
	"fmt"
	"math"
	"strings"
)

// CVSSv3 is the decoded form of a CVSS v3.1 base vector string, used to
// recompute or cross-check the numeric score an advisory provider
// attaches. Temporal and environmental metric groups are not modeled;
// only the base vector is parsed, matching what advisory feeds publish.
type CVSSv3 struct {
	AttackVector       string // N, A, L, P
	AttackComplexity   string // L, H
	PrivilegesRequired string // N, L, H
	UserInteraction    string // N, R
	Scope              string // U, C
	Confidentiality    string // N, L, H
	Integrity          string // N, L, H
	Availability       string // N, L, H
	BaseScore          float64
}

var cvssMetricOrder = []string{"AV", "AC", "PR", "UI", "S", "C", "I", "A"}

// ParseCVSSVector parses a "CVSS:3.1/AV:N/AC:L/..." string and computes
// its base score per the published CVSS v3.1 formula.
func ParseCVSSVector(vector string) (CVSSv3, error) {
	vector = strings.TrimSpace(vector)
	parts := strings.Split(vector, "/")
	if len(parts) == 0 || !strings.HasPrefix(parts[0], "CVSS:3") {
		return CVSSv3{}, fmt.Errorf("not a CVSS v3 vector: %q", vector)
	}

	metrics := make(map[string]string, len(cvssMetricOrder))
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, ":", 2)
		if len(kv) != 2 {
			continue
		}
		metrics[kv[0]] = kv[1]
	}

	for _, m := range cvssMetricOrder {
		if _, ok := metrics[m]; !ok {
			return CVSSv3{}, fmt.Errorf("missing base metric %s in vector %q", m, vector)
		}
	}

	v := CVSSv3{
		AttackVector:       metrics["AV"],
		AttackComplexity:   metrics["AC"],
		PrivilegesRequired: metrics["PR"],
		UserInteraction:    metrics["UI"],
		Scope:              metrics["S"],
		Confidentiality:    metrics["C"],
		Integrity:          metrics["I"],
		Availability:       metrics["A"],
	}
	v.BaseScore = computeBaseScore(v)
	return v, nil
}

func computeBaseScore(v CVSSv3) float64 {
	changed := v.Scope == "C"

	av := map[string]float64{"N": 0.85, "A": 0.62, "L": 0.55, "P": 0.2}[v.AttackVector]
	ac := map[string]float64{"L": 0.77, "H": 0.44}[v.AttackComplexity]
	ui := map[string]float64{"N": 0.85, "R": 0.62}[v.UserInteraction]

	var pr float64
	if changed {
		pr = map[string]float64{"N": 0.85, "L": 0.68, "H": 0.5}[v.PrivilegesRequired]
	} else {
		pr = map[string]float64{"N": 0.85, "L": 0.62, "H": 0.27}[v.PrivilegesRequired]
	}

	cia := map[string]float64{"N": 0, "L": 0.22, "H": 0.56}
	c, i, a := cia[v.Confidentiality], cia[v.Integrity], cia[v.Availability]

	iss := 1 - (1-c)*(1-i)*(1-a)

	var impact float64
	if changed {
		impact = 7.52*(iss-0.029) - 3.25*math.Pow(iss-0.02, 15)
	} else {
		impact = 6.42 * iss
	}
	if impact <= 0 {
		return 0
	}

	exploitability := 8.22 * av * ac * pr * ui

	var base float64
	if changed {
		base = math.Min(1.08*(impact+exploitability), 10)
	} else {
		base = math.Min(impact+exploitability, 10)
	}
	return roundUp(base)
}

// roundUp applies CVSS's specified "round up to one decimal" behavior.
func roundUp(x float64) float64 {
	if x == 0 {
		return 0
	}
	intInput := math.Round(x * 100000)
	if math.Mod(intInput, 10000) == 0 {
		return intInput / 100000
	}
	return (math.Floor(intInput/10000) + 1) / 10
}
