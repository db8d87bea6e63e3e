// Package grammar parses the constrained markdown grammar describing an API
// surface into the documentation model. Parsing runs three strictly ordered
// passes over the macro-expanded tree: classes (heading level 1), members
// (level 2), arguments and options (level 3). Later passes attach to objects
// created by earlier ones, so the ordering is a hard invariant.
package grammar

import (
	"regexp"
	"slices"
	"strings"

	"github.com/samber/oops"

	"github.com/g5becks/apidoc/internal/macros"
	"github.com/g5becks/apidoc/internal/md"
	"github.com/g5becks/apidoc/internal/model"
)

// Options tunes parsing. An empty Languages list accepts any language name in
// langs: bullets; a non-empty list makes unknown names fatal.
type Options struct {
	Languages []string
}

func (o Options) checkLanguage(lang, heading string) error {
	if len(o.Languages) == 0 || slices.Contains(o.Languages, lang) {
		return nil
	}

	return oops.
		Code("UNKNOWN_LANGUAGE").
		With("language", lang).
		With("heading", heading).
		With("known", o.Languages).
		Errorf("unknown language %q in %q", lang, heading)
}

var (
	classHeadingRegex  = regexp.MustCompile(`^class: (\S+)$`)
	extendsRegex       = regexp.MustCompile(`^extends: \[([^\]]+)\]`)
	memberHeadingRegex = regexp.MustCompile(`^(event|property|optional async method|async method|optional method|method): ([^.\s]+)\.(\S+)$`)
	argHeadingRegex    = regexp.MustCompile(`^(param|option): ([^.\s]+)\.([^.\s]+)\.(\S+)$`)
)

// Parse expands templates against params and runs the three structural
// passes, returning the fully indexed documentation model. The input trees
// are not mutated; expansion works on a deep copy of body. Every grammar
// violation is fatal and aborts the parse.
func Parse(body, params []*md.Node, opts Options) (*model.Documentation, error) {
	expanded, err := macros.Expand(md.CloneAll(body), params)
	if err != nil {
		return nil, err
	}

	doc := model.New()

	if err := parseClasses(doc, expanded, opts); err != nil {
		return nil, err
	}
	if err := parseMembers(doc, expanded, opts); err != nil {
		return nil, err
	}
	if err := parseArguments(doc, expanded, opts); err != nil {
		return nil, err
	}

	doc.Index()

	return doc, nil
}

// parseClasses handles every level-1 `class:` heading. Other level-1
// headings (prose pages) are skipped.
func parseClasses(doc *model.Documentation, nodes []*md.Node, opts Options) error {
	for _, node := range nodes {
		if !node.IsHeading(1) {
			continue
		}

		match := classHeadingRegex.FindStringSubmatch(node.Text)
		if match == nil {
			continue
		}

		info, comments, err := extractMetainfo(node, opts)
		if err != nil {
			return err
		}

		class := &model.Class{
			Name:     match[1],
			Extends:  findExtends(node),
			Metainfo: info,
			Comments: comments,
		}

		if !doc.AddClass(class) {
			return oops.
				Code("DUPLICATE_CLASS").
				With("class", class.Name).
				Errorf("duplicate class declaration %q", class.Name)
		}
	}

	return nil
}

// findExtends scans the immediate bullet children for an extends
// declaration; the first match wins.
func findExtends(heading *md.Node) string {
	for _, child := range heading.Children {
		if !child.IsListItem(md.ListBullet) {
			continue
		}
		if match := extendsRegex.FindStringSubmatch(child.Text); match != nil {
			return match[1]
		}
	}
	return ""
}

// parseMembers visits level-2 headings under every class heading, plus any
// orphan level-2 heading outside a class, so a member referencing a class
// that was never declared still fails instead of being skipped.
func parseMembers(doc *model.Documentation, nodes []*md.Node, opts Options) error {
	for _, node := range nodes {
		if node.IsHeading(2) {
			if err := parseMember(doc, node, opts); err != nil {
				return err
			}
			continue
		}

		if !node.IsHeading(1) || !classHeadingRegex.MatchString(node.Text) {
			continue
		}

		for _, child := range node.Children {
			if !child.IsHeading(2) {
				continue
			}

			if err := parseMember(doc, child, opts); err != nil {
				return err
			}
		}
	}

	return nil
}

func parseMember(doc *model.Documentation, heading *md.Node, opts Options) error {
	match := memberHeadingRegex.FindStringSubmatch(heading.Text)
	if match == nil {
		return oops.
			Code("INVALID_MEMBER").
			With("heading", heading.Text).
			Hint("Member headings look like `method: Class.name`").
			Errorf("invalid member heading %q", heading.Text)
	}

	keyword, className, memberName := match[1], match[2], match[3]

	class := doc.Class(className)
	if class == nil {
		return oops.
			Code("UNKNOWN_CLASS").
			With("heading", heading.Text).
			With("class", className).
			Errorf("member %q references unknown class %q", heading.Text, className)
	}

	info, comments, err := extractMetainfo(heading, opts)
	if err != nil {
		return err
	}

	member := &model.Member{
		Name:     memberName,
		Required: true,
		Metainfo: info,
		Comments: comments,
	}
	applyKeyword(member, keyword)

	decl, err := memberDeclaration(heading)
	if err != nil {
		return err
	}

	if decl == nil {
		member.Type = &model.Type{Name: "void"}
	} else {
		member.Type = decl.Type
		if member.Kind == model.KindProperty && decl.Optional {
			member.Required = false
		}
		if decl.Experimental {
			member.Metainfo.Experimental = true
		}
	}

	return attachMember(class, member)
}

// applyKeyword maps the heading keyword onto kind, async flag and required
// flag. The async and optional variants are metadata only.
func applyKeyword(member *model.Member, keyword string) {
	switch keyword {
	case "event":
		member.Kind = model.KindEvent
	case "property":
		member.Kind = model.KindProperty
	default:
		member.Kind = model.KindMethod
		member.Async = strings.Contains(keyword, "async")
		member.Required = !strings.Contains(keyword, "optional")
	}
}

// memberDeclaration parses the first "default" list item under the heading
// as the return or value type. Absence is not an error; the member defaults
// to void.
func memberDeclaration(heading *md.Node) (*Declaration, error) {
	for _, child := range heading.Children {
		if child.IsListItem(md.ListDefault) {
			return ParseDeclaration(child)
		}
	}
	return nil, nil
}

// attachMember inserts the member or merges it into an existing declaration
// of the same identity as a language-specific type override.
func attachMember(class *model.Class, member *model.Member) error {
	existing := class.FindMember(member.Kind, member.Name)
	if existing == nil {
		class.Members = append(class.Members, member)
		return nil
	}

	action, err := resolveOverride(existing, member, false)
	if err != nil {
		return err
	}

	if action == actionInsert {
		class.Members = append(class.Members, member)
		return nil
	}

	applyOverride(existing, member, action)

	return nil
}

// parseArguments visits level-3 headings under class members, plus orphan
// level-3 headings (top-level or under an orphan member heading), mirroring
// parseMembers' policy that misplaced declarations fail loudly.
func parseArguments(doc *model.Documentation, nodes []*md.Node, opts Options) error {
	for _, node := range nodes {
		switch {
		case node.IsHeading(3):
			if err := parseArgument(doc, node, opts); err != nil {
				return err
			}

		case node.IsHeading(2):
			if err := parseArgumentHeadings(doc, node, opts); err != nil {
				return err
			}

		case node.IsHeading(1) && classHeadingRegex.MatchString(node.Text):
			for _, memberNode := range node.Children {
				if !memberNode.IsHeading(2) {
					continue
				}

				if err := parseArgumentHeadings(doc, memberNode, opts); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func parseArgumentHeadings(doc *model.Documentation, memberNode *md.Node, opts Options) error {
	for _, node := range memberNode.Children {
		if !node.IsHeading(3) {
			continue
		}

		if err := parseArgument(doc, node, opts); err != nil {
			return err
		}
	}

	return nil
}

func parseArgument(doc *model.Documentation, heading *md.Node, opts Options) error {
	match := argHeadingRegex.FindStringSubmatch(heading.Text)
	if match == nil {
		return oops.
			Code("INVALID_ARGUMENT").
			With("heading", heading.Text).
			Hint("Argument headings look like `param: Class.method.name`").
			Errorf("invalid argument heading %q", heading.Text)
	}

	keyword, className, methodName, argName := match[1], match[2], match[3], match[4]

	class := doc.Class(className)
	if class == nil {
		return oops.
			Code("UNKNOWN_CLASS").
			With("heading", heading.Text).
			With("class", className).
			Errorf("argument %q references unknown class %q", heading.Text, className)
	}

	method := class.FindMember(model.KindMethod, methodName)
	if method == nil {
		return oops.
			Code("UNKNOWN_METHOD").
			With("heading", heading.Text).
			With("class", className).
			With("method", methodName).
			Errorf("argument %q references unknown method %q.%q", heading.Text, className, methodName)
	}

	info, comments, err := extractMetainfo(heading, opts)
	if err != nil {
		return err
	}

	decl, err := memberDeclaration(heading)
	if err != nil {
		return err
	}
	if decl == nil {
		return oops.
			Code("INVALID_ARGUMENT").
			With("heading", heading.Text).
			Hint("Declare the argument type in a `name` <Type> list item").
			Errorf("argument %q has no type declaration", heading.Text)
	}

	name := declaredName(decl, argName)

	if keyword == "option" {
		return attachOption(method, name, decl, info, comments)
	}

	candidate := &model.Member{
		Kind:     model.KindArgument,
		Name:     name,
		Type:     decl.Type,
		Required: !decl.Optional,
		Metainfo: info,
		Comments: comments,
	}
	if decl.Experimental {
		candidate.Metainfo.Experimental = true
	}

	return attachArgument(method, candidate)
}

// declaredName prefers the backtick-quoted name from the type declaration;
// placeholder names fall back to the heading's trailing segment.
func declaredName(decl *Declaration, headingName string) string {
	switch decl.Name {
	case "returns", "type", "argument":
		return headingName
	}
	return decl.Name
}

func attachArgument(method *model.Member, candidate *model.Member) error {
	existing := method.Argument(candidate.Name)
	if existing == nil {
		method.Args = append(method.Args, candidate)
		return nil
	}

	action, err := resolveOverride(existing, candidate, true)
	if err != nil {
		return err
	}

	if action == actionInsert {
		method.Args = append(method.Args, candidate)
		return nil
	}

	applyOverride(existing, candidate, action)

	return nil
}

// attachOption folds an option: declaration into the method's synthetic
// `options` argument, creating it on first use. Options are properties of a
// single object-typed argument and are never required.
func attachOption(method *model.Member, name string, decl *Declaration, info model.Metainfo, comments []string) error {
	options := method.Argument("options")
	if options != nil && !options.Synthetic {
		return oops.
			Code("INVALID_ARGUMENT").
			With("method", method.Name).
			With("option", name).
			Hint("Rename the explicit options argument or declare its fields as option: entries").
			Errorf("option %q conflicts with an explicitly declared options argument on %q", name, method.Name)
	}

	if options == nil {
		options = &model.Member{
			Kind:      model.KindArgument,
			Name:      "options",
			Type:      &model.Type{Name: "Object"},
			Required:  false,
			Metainfo:  model.Metainfo{Since: method.Metainfo.Since},
			Synthetic: true,
		}
		method.Args = append(method.Args, options)
	}

	candidate := &model.Member{
		Kind:     model.KindProperty,
		Name:     name,
		Type:     decl.Type,
		Required: false,
		Metainfo: info,
		Comments: comments,
	}
	if decl.Experimental {
		candidate.Metainfo.Experimental = true
	}

	existing := options.Type.Property(name)
	if existing == nil {
		options.Type.Properties = append(options.Type.Properties, candidate)
		return nil
	}

	action, err := resolveOverride(existing, candidate, true)
	if err != nil {
		return err
	}

	if action == actionInsert {
		options.Type.Properties = append(options.Type.Properties, candidate)
		return nil
	}

	applyOverride(existing, candidate, action)

	return nil
}
