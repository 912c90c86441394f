package render

import "testing"

func TestZeroNodeIsEmptyOutput(t *testing.T) {
	var n Node
	if !n.IsZero() {
		t.Fatal("zero node must be empty output")
	}
	if n.String() != "" {
		t.Fatalf("expected empty string, got %q", n.String())
	}
}

func TestNodeString(t *testing.T) {
	n := Node{Tag: "section", Children: []Node{
		{Tag: "h1", Text: "Users"},
		{Text: "loading"},
	}}
	want := "<section><h1>Users</h1>loading</section>"
	if n.String() != want {
		t.Fatalf("expected %q, got %q", want, n.String())
	}
}

func TestFromNodeRendersAsIs(t *testing.T) {
	n := Node{Tag: "spinner"}
	got := FromNode(n).Render()
	if got.Tag != "spinner" {
		t.Fatalf("expected spinner node, got %+v", got)
	}
}

func TestFromFactoryInvokedAtRenderTime(t *testing.T) {
	calls := 0
	r := FromFactory(func() Node {
		calls++
		return Node{Tag: "spinner"}
	})
	if calls != 0 {
		t.Fatal("factory must not run at configuration time")
	}

	got := r.Render()
	if got.Tag != "spinner" || calls != 1 {
		t.Fatalf("expected one factory call producing spinner, got %+v after %d calls", got, calls)
	}
}

func TestFromMarkupWrappedInContainer(t *testing.T) {
	got := FromMarkup("Loading...").Render()
	if got.Tag != "div" || got.Text != "Loading..." {
		t.Fatalf("markup not wrapped in container: %+v", got)
	}
}

func TestNilFactoryRendersEmpty(t *testing.T) {
	got := FromFactory(nil).Render()
	if !got.IsZero() {
		t.Fatalf("expected empty output, got %+v", got)
	}
}
