package id

import (
	"strings"
	"testing"
)

func TestUUIDGenerator_PrefixAndOrder(t *testing.T) {
	t.Parallel()

	gen := NewUUIDGenerator("tm_")
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := gen.NewID()
	if !strings.HasPrefix(first, "tm_") {
		t.Fatalf("missing prefix: %s", first)
	}
	if first == second {
		t.Fatalf("expected unique ids")
	}
	if first > second {
		t.Fatalf("expected time-ordered ids got=%s then %s", first, second)
	}
}

func TestSequence(t *testing.T) {
	t.Parallel()

	seq := NewSequence("pl_")
	a, _ := seq.NewID()
	b, _ := seq.NewID()
	if a != "pl_000001" || b != "pl_000002" {
		t.Fatalf("unexpected ids: %s %s", a, b)
	}
}
