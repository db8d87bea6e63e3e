package grammar

import (
	"strings"

	"github.com/samber/oops"

	"github.com/g5becks/apidoc/internal/md"
	"github.com/g5becks/apidoc/internal/model"
)

// Declaration is one parsed type-expression line together with its recursive
// nested properties: `name` ?e <TYPE-BODY> trailing text. The placeholders
// returns:, type: and argument: are accepted in place of a quoted name for
// return and positional slots.
type Declaration struct {
	Name         string
	Optional     bool
	Experimental bool
	Type         *model.Type
	Trailing     string
}

var placeholders = []string{"returns:", "type:", "argument:"}

// ParseDeclaration parses a declaration list item, descending into nested
// "default" items to build object-shaped types of arbitrary depth.
func ParseDeclaration(item *md.Node) (*Declaration, error) {
	decl, body, err := parseDeclarationLine(item.Text)
	if err != nil {
		return nil, err
	}

	typ := &model.Type{Name: body}

	for _, child := range item.Children {
		if !child.IsListItem(md.ListDefault) {
			continue
		}

		nested, nestedErr := ParseDeclaration(child)
		if nestedErr != nil {
			return nil, nestedErr
		}

		typ.Properties = append(typ.Properties, &model.Member{
			Kind:     model.KindProperty,
			Name:     nested.Name,
			Type:     nested.Type,
			Required: !nested.Optional,
			Metainfo: model.Metainfo{Experimental: nested.Experimental},
			Comments: nested.comments(child),
		})
	}

	decl.Type = typ

	return decl, nil
}

// comments collects the prose attached to a nested property: its trailing
// text plus any non-declaration children.
func (d *Declaration) comments(item *md.Node) []string {
	var comments []string

	if d.Trailing != "" {
		comments = append(comments, d.Trailing)
	}

	for _, child := range item.Children {
		if child.Kind == md.KindListItem && child.ListKind == md.ListDefault {
			continue
		}
		if child.Text != "" {
			comments = append(comments, child.Text)
		}
	}

	return comments
}

func parseDeclarationLine(text string) (*Declaration, string, error) {
	decl := &Declaration{}

	rest, err := parseName(decl, strings.TrimSpace(text))
	if err != nil {
		return nil, "", err
	}

	rest = strings.TrimLeft(rest, " ")

	rest, err = parseFlags(decl, rest, text)
	if err != nil {
		return nil, "", err
	}

	body, trailing, err := parseTypeBody(rest, text)
	if err != nil {
		return nil, "", err
	}

	decl.Trailing = strings.TrimSpace(trailing)

	return decl, body, nil
}

func parseName(decl *Declaration, text string) (string, error) {
	if strings.HasPrefix(text, "`") {
		end := strings.Index(text[1:], "`")
		if end < 0 {
			return "", oops.
				Code("INVALID_TYPE").
				With("line", text).
				Errorf("unterminated name quote in type declaration")
		}

		decl.Name = text[1 : 1+end]

		return text[end+2:], nil
	}

	for _, placeholder := range placeholders {
		if strings.HasPrefix(text, placeholder) {
			decl.Name = strings.TrimSuffix(placeholder, ":")
			return text[len(placeholder):], nil
		}
	}

	return "", oops.
		Code("INVALID_TYPE").
		With("line", text).
		Hint("Declarations start with a `name` or a returns:/type:/argument: placeholder").
		Errorf("malformed type declaration line")
}

// parseFlags consumes the one-character flag run (? optional, e experimental)
// immediately preceding the opening angle bracket.
func parseFlags(decl *Declaration, rest, line string) (string, error) {
	i := 0
	for i < len(rest) && (rest[i] == '?' || rest[i] == 'e') {
		i++
	}

	if i >= len(rest) || rest[i] != '<' {
		// Not a flag run after all; the type body must open here.
		i = 0
	}

	if i == len(rest) || rest[i] != '<' {
		return "", oops.
			Code("INVALID_TYPE").
			With("line", line).
			Errorf("type declaration is missing a <type> body")
	}

	for _, flag := range rest[:i] {
		switch flag {
		case '?':
			decl.Optional = true
		case 'e':
			decl.Experimental = true
		}
	}

	return rest[i:], nil
}

// parseTypeBody scans from the opening angle bracket, tracking nesting depth
// so generics inside the body keep their brackets balanced.
func parseTypeBody(rest, line string) (string, string, error) {
	depth := 0

	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return rest[1:i], rest[i+1:], nil
			}
		}
	}

	return "", "", oops.
		Code("UNBALANCED_TYPE").
		With("line", line).
		Hint("Every < in a type body needs a matching >").
		Errorf("unbalanced angle brackets in type declaration")
}
