package actionset

import (
	"testing"

	"github.com/jsfix-ci/react-router-dispatcher/internal/route"
)

func mustStatic(t *testing.T, v any) Set {
	t.Helper()
	s, err := Static(v)
	if err != nil {
		t.Fatalf("static %v: %v", v, err)
	}
	return s
}

func TestStaticSingleIdentifier(t *testing.T) {
	s := mustStatic(t, "loadUser")

	groups := s.Groups()
	if len(groups) != 1 || len(groups[0]) != 1 || groups[0][0] != "loadUser" {
		t.Fatalf("expected [[loadUser]], got %v", groups)
	}
}

func TestStaticIdentifierList(t *testing.T) {
	s := mustStatic(t, []string{"loadUser", "loadPosts"})

	groups := s.Groups()
	if len(groups) != 1 || len(groups[0]) != 2 {
		t.Fatalf("expected one group of two, got %v", groups)
	}
	if groups[0][0] != "loadUser" || groups[0][1] != "loadPosts" {
		t.Fatalf("group order not preserved: %v", groups[0])
	}
}

func TestStaticGroupListPassthrough(t *testing.T) {
	in := [][]string{{"loadUser"}, {"loadPosts", "loadComments"}}
	s := mustStatic(t, in)

	groups := s.Groups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[1][1] != "loadComments" {
		t.Fatalf("groups not passed through: %v", groups)
	}
}

func TestStaticDecodedFlatList(t *testing.T) {
	s := mustStatic(t, []any{"a", "b"})

	groups := s.Groups()
	if len(groups) != 1 || len(groups[0]) != 2 {
		t.Fatalf("expected [[a b]], got %v", groups)
	}
}

func TestStaticDecodedGroupList(t *testing.T) {
	s := mustStatic(t, []any{[]any{"a"}, []any{"b"}})

	groups := s.Groups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %v", groups)
	}
}

func TestStaticRejectsUnsupportedShape(t *testing.T) {
	if _, err := Static(42); err == nil {
		t.Fatal("expected error for int")
	}
	if _, err := Static([]any{"a", []any{"b"}}); err == nil {
		t.Fatal("expected error for mixed list")
	}
	if _, err := Static([]any{[]any{"a"}, "b"}); err == nil {
		t.Fatal("expected error for mixed group list")
	}
}

func TestDynamicStoredUnchanged(t *testing.T) {
	provider := func(rctx route.Context) [][]string {
		return [][]string{{"fromProvider"}}
	}
	s := Dynamic(provider)

	if !s.IsDynamic() {
		t.Fatal("expected dynamic set")
	}
	if s.Groups() != nil {
		t.Fatalf("dynamic set must not have pre-normalized groups, got %v", s.Groups())
	}

	groups := s.Resolve(route.Context{})
	if len(groups) != 1 || groups[0][0] != "fromProvider" {
		t.Fatalf("provider not invoked at resolve time: %v", groups)
	}
}

func TestEqualStaticStructural(t *testing.T) {
	a := mustStatic(t, []string{"x", "y"})
	b := mustStatic(t, []any{"x", "y"})

	if !Equal(a, b) {
		t.Fatal("structurally equal static sets must compare equal")
	}

	c := mustStatic(t, []string{"x", "z"})
	if Equal(a, c) {
		t.Fatal("different identifiers must not compare equal")
	}

	d := mustStatic(t, [][]string{{"x"}, {"y"}})
	if Equal(a, d) {
		t.Fatal("different grouping must not compare equal")
	}
}

func TestEqualDynamicByIdentity(t *testing.T) {
	p1 := func(rctx route.Context) [][]string { return nil }
	p2 := func(rctx route.Context) [][]string { return nil }

	if !Equal(Dynamic(p1), Dynamic(p1)) {
		t.Fatal("same provider reference must compare equal")
	}
	if Equal(Dynamic(p1), Dynamic(p2)) {
		t.Fatal("distinct provider references must not compare equal")
	}
}

func TestEqualDynamicVsStatic(t *testing.T) {
	p := func(rctx route.Context) [][]string { return [][]string{{"a"}} }
	s := mustStatic(t, "a")

	if Equal(Dynamic(p), s) {
		t.Fatal("dynamic set must never equal a static one")
	}
}

func TestResolveStatic(t *testing.T) {
	s := mustStatic(t, "a")
	groups := s.Resolve(route.Context{Location: "/ignored"})
	if len(groups) != 1 || groups[0][0] != "a" {
		t.Fatalf("expected [[a]], got %v", groups)
	}
}
