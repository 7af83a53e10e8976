package matcher

import (
	"context"
	"testing"

	"github.com/xxxsen/sshgen/internal/hosts"
)

type fakeMatcher struct {
	name   string
	result bool
}

func (f fakeMatcher) Name() string {
	return f.name
}

func (f fakeMatcher) Type() string {
	return "fake"
}

func (f fakeMatcher) Match(ctx context.Context, entry *hosts.HostEntry) (bool, error) {
	return f.result, nil
}

func TestBuildExpressionMatcherBasic(t *testing.T) {
	registry := map[string]IHostMatcher{
		"one": fakeMatcher{name: "one", result: true},
		"two": fakeMatcher{name: "two", result: false},
	}

	expr, err := BuildExpressionMatcher("one && !two", registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := expr.Match(context.Background(), &hosts.HostEntry{})
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected true got false")
	}
}

func TestBuildExpressionMatcherPrecedence(t *testing.T) {
	registry := map[string]IHostMatcher{
		"one":   fakeMatcher{name: "one", result: false},
		"two":   fakeMatcher{name: "two", result: true},
		"three": fakeMatcher{name: "three", result: true},
	}

	expr, err := BuildExpressionMatcher("one || two && three", registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := expr.Match(context.Background(), &hosts.HostEntry{})
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected true got false")
	}
}

func TestBuildExpressionMatcherParenthesesOverride(t *testing.T) {
	registry := map[string]IHostMatcher{
		"one":   fakeMatcher{name: "one", result: false},
		"two":   fakeMatcher{name: "two", result: true},
		"three": fakeMatcher{name: "three", result: false},
	}

	expr, err := BuildExpressionMatcher("(one || two) && three", registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := expr.Match(context.Background(), &hosts.HostEntry{})
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if ok {
		t.Fatalf("expected false got true")
	}
}

func TestBuildExpressionMatcherKeywords(t *testing.T) {
	registry := map[string]IHostMatcher{
		"alpha": fakeMatcher{name: "alpha", result: true},
		"beta":  fakeMatcher{name: "beta", result: false},
	}

	expr, err := BuildExpressionMatcher("alpha and not beta", registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := expr.Match(context.Background(), &hosts.HostEntry{})
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected true got false")
	}
}

func TestBuildExpressionMatcherDoubleNot(t *testing.T) {
	registry := map[string]IHostMatcher{
		"alpha": fakeMatcher{name: "alpha", result: true},
	}
	expr, err := BuildExpressionMatcher("!!alpha", registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, err := expr.Match(context.Background(), &hosts.HostEntry{})
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected true got false")
	}
}

func TestBuildExpressionMatcherUnknownIdentifier(t *testing.T) {
	registry := map[string]IHostMatcher{}
	if _, err := BuildExpressionMatcher("missing", registry); err == nil {
		t.Fatalf("expected error for missing matcher")
	}
}

func TestBuildExpressionMatcherInvalidSyntax(t *testing.T) {
	registry := map[string]IHostMatcher{
		"alpha": fakeMatcher{name: "alpha", result: true},
	}
	if _, err := BuildExpressionMatcher("(alpha", registry); err == nil {
		t.Fatalf("expected error for invalid syntax")
	}
}

func TestBuildExpressionMatcherTrailingOperand(t *testing.T) {
	registry := map[string]IHostMatcher{
		"alpha": fakeMatcher{name: "alpha", result: true},
		"beta":  fakeMatcher{name: "beta", result: true},
	}
	for _, expr := range []string{"alpha beta", "alpha &&", "&& alpha", "alpha)"} {
		if _, err := BuildExpressionMatcher(expr, registry); err == nil {
			t.Fatalf("expected error for expression %q", expr)
		}
	}
}

func TestBuildExpressionMatcherAny(t *testing.T) {
	anyM, err := MakeMatcher("any", "any", nil)
	if err != nil {
		t.Fatalf("MakeMatcher error: %v", err)
	}
	expr, err := BuildExpressionMatcher("not any", map[string]IHostMatcher{"any": anyM})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, err := expr.Match(context.Background(), &hosts.HostEntry{Alias: "web01", Address: "10.0.0.1"})
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if ok {
		t.Fatalf("expected false got true")
	}
	if expr.Name() != "not any" || expr.Type() != "expression" {
		t.Fatalf("unexpected name/type: %s/%s", expr.Name(), expr.Type())
	}
}
