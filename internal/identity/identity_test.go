package identity_test

import (
	"testing"

	"wavebench/internal/identity"
	"wavebench/internal/payload"
)

func TestComputeJoinsResolvedParts(t *testing.T) {
	p := payload.Map{
		"meta": payload.Map{
			"shot":  payload.Number(123),
			"scope": payload.String("S1"),
		},
	}

	got := identity.Compute(p, identity.NewSpec("meta.shot", "meta.scope"))
	if got != "123__S1" {
		t.Fatalf("Compute = %q, want 123__S1", got)
	}
}

func TestComputeSkipsUnresolvableAndNullParts(t *testing.T) {
	p := payload.Map{
		"meta": payload.Map{
			"file": nil,
			"shot": payload.Number(7),
		},
	}

	got := identity.Compute(p, identity.NewSpec("meta.missing", "meta.file", "meta.shot"))
	if got != "7" {
		t.Fatalf("Compute = %q, want 7", got)
	}
}

func TestComputeFallsBack(t *testing.T) {
	got := identity.Compute(payload.Map{}, identity.NewSpec("meta.shot"))
	if got != "payload" {
		t.Fatalf("Compute with nothing resolvable = %q, want payload", got)
	}
}

func TestComputePrefersUID(t *testing.T) {
	p := payload.Map{
		"meta": payload.Map{
			"__uid__": payload.String("abc"),
			"file":    payload.String("run.json"),
		},
	}
	got := identity.Compute(p, identity.Default())
	if got != "abc__run.json" {
		t.Fatalf("Compute = %q, want abc__run.json", got)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	p := payload.Map{
		"meta": payload.Map{
			"file":  payload.String("a b.json"),
			"shot":  payload.Number(5),
			"scope": payload.String("left"),
		},
	}
	spec := identity.OperatorDefault()

	first := identity.Compute(p, spec)
	for i := 0; i < 10; i++ {
		if got := identity.Compute(p, spec); got != first {
			t.Fatalf("Compute varied across calls: %q vs %q", got, first)
		}
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"has space", "has_space"},
		{"a/b\\c", "a_b_c"},
		{"__trimmed__", "trimmed"},
		{"??!", "part"},
		{"file-1.json", "file-1.json"},
	}
	for _, tc := range cases {
		if got := identity.Sanitize(tc.in); got != tc.want {
			t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStringify(t *testing.T) {
	if got := identity.Stringify(payload.Number(123)); got != "123" {
		t.Fatalf("Stringify(123) = %q, want 123 without decimal point", got)
	}
	if got := identity.Stringify(payload.Number(1.5)); got != "1.5" {
		t.Fatalf("Stringify(1.5) = %q", got)
	}
	if got := identity.Stringify(payload.Bool(true)); got != "true" {
		t.Fatalf("Stringify(true) = %q", got)
	}
	if got := identity.Stringify(payload.String("x")); got != "x" {
		t.Fatalf("Stringify(x) = %q", got)
	}
}
