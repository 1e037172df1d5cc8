package semverx

import (
	"testing"

	"github.com/kennethkcox/depguard/internal/model"
)

func TestSemverCompare(t *testing.T) {
	c := For(model.NPM)
	got, err := c.Compare("1.2.3", "1.3.0")
	if err != nil {
		t.Fatal(err)
	}
	if got != -1 {
		t.Errorf("got %d, want -1", got)
	}
}

func TestSemverSatisfiesRange(t *testing.T) {
	c := For(model.Go)
	ok, err := c.Satisfies("1.2.5", ">= 1.2.0, < 1.3.0")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Errorf("expected 1.2.5 to satisfy [1.2.0, 1.3.0)")
	}
}

func TestSemverVPrefixNormalized(t *testing.T) {
	c := For(model.Go)
	got, err := c.Compare("v1.2.3", "1.2.3")
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestRPMRangeSatisfies(t *testing.T) {
	c := For(model.RPM)
	ok, err := c.Satisfies("2.4.6-1.el8", "<2.4.7-1.el8")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Errorf("expected 2.4.6-1 < 2.4.7-1 to satisfy")
	}
}

func TestEvaluateRangeRejectsOutOfBounds(t *testing.T) {
	c := For(model.Debian)
	ok, err := c.Satisfies("5.0.0-1", ">=1.0.0-1,<2.0.0-1")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Errorf("expected 5.0.0 outside [1.0.0,2.0.0) to fail")
	}
}
