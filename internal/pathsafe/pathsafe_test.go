package pathsafe

import "testing"

func TestResolveAllowsPathWithinRoot(t *testing.T) {
	_, err := Resolve("/scan/root", "src/app.js")
	if err != nil {
		t.Fatal(err)
	}
}

func TestResolveRejectsTraversalEscape(t *testing.T) {
	_, err := Resolve("/scan/root", "../../etc/passwd")
	if err == nil {
		t.Fatal("expected traversal escape to be rejected")
	}
}

func TestResolveRejectsAbsoluteEscape(t *testing.T) {
	_, err := Resolve("/scan/root", "/etc/passwd")
	if err == nil {
		t.Fatal("expected absolute escape to be rejected")
	}
}

func TestResolveAllowsRootItself(t *testing.T) {
	got, err := Resolve("/scan/root", ".")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/scan/root" {
		t.Errorf("got %q", got)
	}
}
