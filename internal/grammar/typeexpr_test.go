package grammar_test

import (
	"strings"
	"testing"

	"github.com/g5becks/apidoc/internal/grammar"
	"github.com/g5becks/apidoc/internal/md"
)

func declarationItem(t *testing.T, markdown string) *md.Node {
	t.Helper()

	nodes := md.Parse([]byte(markdown))
	if len(nodes) != 1 {
		t.Fatalf("expected one node, got %d", len(nodes))
	}
	return nodes[0]
}

func TestParseDeclaration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		line             string
		wantName         string
		wantType         string
		wantOptional     bool
		wantExperimental bool
		wantTrailing     string
	}{
		{
			name:     "simple string",
			line:     "- `url` <[string]> target url",
			wantName: "url", wantType: "[string]", wantTrailing: "target url",
		},
		{
			name:     "optional flag",
			line:     "- `timeout` ?<[number]> maximum time",
			wantName: "timeout", wantType: "[number]", wantOptional: true, wantTrailing: "maximum time",
		},
		{
			name:     "experimental flag",
			line:     "- `mask` e<[Array]<[Locator]>>",
			wantName: "mask", wantType: "[Array]<[Locator]>", wantExperimental: true,
		},
		{
			name:     "combined flags",
			line:     "- `clip` ?e<[Object]>",
			wantName: "clip", wantType: "[Object]", wantOptional: true, wantExperimental: true,
		},
		{
			name:     "returns placeholder",
			line:     "- returns: <[Response]>",
			wantName: "returns", wantType: "[Response]",
		},
		{
			name:     "type placeholder",
			line:     "- type: <[string]>",
			wantName: "type", wantType: "[string]",
		},
		{
			name:     "argument placeholder",
			line:     "- argument: <[Frame]>",
			wantName: "argument", wantType: "[Frame]",
		},
		{
			name:     "union type",
			line:     "- returns: <[null]|[Response]>",
			wantName: "returns", wantType: "[null]|[Response]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decl, err := grammar.ParseDeclaration(declarationItem(t, tt.line+"\n"))
			if err != nil {
				t.Fatalf("ParseDeclaration() error = %v", err)
			}

			if decl.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", decl.Name, tt.wantName)
			}
			if decl.Type.Name != tt.wantType {
				t.Errorf("Type.Name = %q, want %q", decl.Type.Name, tt.wantType)
			}
			if decl.Optional != tt.wantOptional {
				t.Errorf("Optional = %v, want %v", decl.Optional, tt.wantOptional)
			}
			if decl.Experimental != tt.wantExperimental {
				t.Errorf("Experimental = %v, want %v", decl.Experimental, tt.wantExperimental)
			}
			if decl.Trailing != tt.wantTrailing {
				t.Errorf("Trailing = %q, want %q", decl.Trailing, tt.wantTrailing)
			}
		})
	}
}

func TestParseDeclarationNestingRoundTrips(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"depth one", "[Array]<[string]>"},
		{"depth two", "[Map]<[string], [Array]<[number]>>"},
		{"depth three", "[A]<[B]<[C]<[D]>>>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decl, err := grammar.ParseDeclaration(declarationItem(t, "- `value` <"+tt.body+">\n"))
			if err != nil {
				t.Fatalf("ParseDeclaration() error = %v", err)
			}
			if decl.Type.Name != tt.body {
				t.Errorf("Type.Name = %q, want %q", decl.Type.Name, tt.body)
			}
		})
	}
}

func TestParseDeclarationUnbalancedBrackets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{"missing close", "- `value` <[Array]<[string]>"},
		{"no close at all", "- `value` <[string]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := grammar.ParseDeclaration(declarationItem(t, tt.line+"\n"))
			if err == nil {
				t.Fatal("ParseDeclaration() error = nil, want unbalanced brackets error")
			}
			if !strings.Contains(err.Error(), "unbalanced") {
				t.Errorf("error = %v, want unbalanced brackets", err)
			}
		})
	}
}

func TestParseDeclarationMalformedLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{"unterminated name", "- `value <[string]>"},
		{"missing type body", "- `value` just text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			item := &md.Node{Kind: md.KindListItem, ListKind: md.ListDefault, Text: strings.TrimPrefix(tt.line, "- ")}

			if _, err := grammar.ParseDeclaration(item); err == nil {
				t.Fatal("ParseDeclaration() error = nil, want malformed declaration error")
			}
		})
	}
}

func TestParseDeclarationNestedProperties(t *testing.T) {
	t.Parallel()

	content := "- `options` <[Object]>\n" +
		"  - `timeout` ?<[number]> maximum time\n" +
		"  - `position` <[Object]>\n" +
		"    - `x` <[number]>\n" +
		"    - `y` <[number]>\n"

	decl, err := grammar.ParseDeclaration(declarationItem(t, content))
	if err != nil {
		t.Fatalf("ParseDeclaration() error = %v", err)
	}

	if len(decl.Type.Properties) != 2 {
		t.Fatalf("properties = %d, want 2", len(decl.Type.Properties))
	}

	timeout := decl.Type.Property("timeout")
	if timeout == nil {
		t.Fatal("timeout property missing")
	}
	if timeout.Required {
		t.Error("timeout should be optional")
	}

	position := decl.Type.Property("position")
	if position == nil {
		t.Fatal("position property missing")
	}
	if len(position.Type.Properties) != 2 {
		t.Errorf("position nested properties = %d, want 2", len(position.Type.Properties))
	}
}
