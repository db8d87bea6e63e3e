// Package macros rewrites the documentation tree before structural parsing,
// substituting %%-key-%% references with fragments defined in the params
// tree.
package macros

import (
	"regexp"
	"strings"

	"github.com/samber/oops"

	"github.com/g5becks/apidoc/internal/md"
)

const inlineMarker = "-inline- = "

var (
	appendRefRegex   = regexp.MustCompile(`^(.*\S) = (%%-[\w-]+-%%)$`)
	templateRefRegex = regexp.MustCompile(`%%-template-[\w-]+-%%`)
	refOnlyRegex     = regexp.MustCompile(`^%%-[\w-]+-%%$`)
	backtickName     = regexp.MustCompile("^`([^`]+)`")
)

// Expand resolves every template reference in body against params and
// returns the rewritten tree. The params tree is only read; every fragment
// spliced into the body is a deep copy.
func Expand(body, params []*md.Node) ([]*md.Node, error) {
	index, err := buildParamIndex(params)
	if err != nil {
		return nil, err
	}

	return expandNodes(body, index)
}

// buildParamIndex keys each top-level params entry as %%-<header text>-%%.
// Duplicate keys would make resolution ambiguous and are fatal.
func buildParamIndex(params []*md.Node) (map[string]*md.Node, error) {
	index := make(map[string]*md.Node, len(params))

	for _, entry := range params {
		key := "%%-" + entry.Text + "-%%"
		if _, exists := index[key]; exists {
			return nil, oops.
				Code("DUPLICATE_PARAM").
				With("key", entry.Text).
				Hint("Rename one of the duplicate entries in the params file").
				Errorf("duplicate param entry %q", entry.Text)
		}

		index[key] = entry
	}

	return index, nil
}

func expandNodes(nodes []*md.Node, index map[string]*md.Node) ([]*md.Node, error) {
	var out []*md.Node

	for _, node := range nodes {
		replacements, err := expandNode(node, index)
		if err != nil {
			return nil, err
		}

		out = append(out, replacements...)
	}

	return out, nil
}

// expandNode returns the nodes that stand in for node after substitution.
// Expansion recurses into every produced node so templates may reference
// other templates transitively.
func expandNode(node *md.Node, index map[string]*md.Node) ([]*md.Node, error) {
	if label, key, found := strings.Cut(node.Text, inlineMarker); found {
		return expandInline(node, label, key, index)
	}

	if match := appendRefRegex.FindStringSubmatch(node.Text); match != nil {
		if err := expandAppend(node, match[1], match[2], index); err != nil {
			return nil, err
		}
		return finishNode(node, index)
	}

	if key := templateRefRegex.FindString(node.Text); key != "" {
		return expandSplice(node, key, index)
	}

	return finishNode(node, index)
}

func finishNode(node *md.Node, index map[string]*md.Node) ([]*md.Node, error) {
	children, err := expandNodes(node.Children, index)
	if err != nil {
		return nil, err
	}

	node.Children = children

	return []*md.Node{node}, nil
}

// expandInline replaces `<label>-inline- = %%<key>%%` with one sibling per
// template entry under key. Each sibling's text is the label concatenated
// with the entry's declared name; its children merge the original node's
// children with a deep copy of the entry's children.
func expandInline(node *md.Node, label, key string, index map[string]*md.Node) ([]*md.Node, error) {
	list, err := lookup(index, key, node.Text)
	if err != nil {
		return nil, err
	}

	var siblings []*md.Node

	for _, ref := range list.Children {
		name, children, entryErr := resolveEntry(ref, key, index)
		if entryErr != nil {
			return nil, entryErr
		}

		sibling := &md.Node{
			Kind:     node.Kind,
			Level:    node.Level,
			ListKind: node.ListKind,
			Text:     label + name,
			Children: append(md.CloneAll(node.Children), children...),
		}

		expanded, expandErr := expandNode(sibling, index)
		if expandErr != nil {
			return nil, expandErr
		}

		siblings = append(siblings, expanded...)
	}

	return siblings, nil
}

// resolveEntry turns one template entry into its declared name and the deep
// copy of the nodes to merge. An entry is either a declaration item itself
// or a %%-ref-%% to another template whose children hold the declaration.
func resolveEntry(entry *md.Node, key string, index map[string]*md.Node) (string, []*md.Node, error) {
	declaration := entry
	merged := []*md.Node{entry.Clone()}

	if refOnlyRegex.MatchString(entry.Text) {
		target, err := lookup(index, entry.Text, entry.Text)
		if err != nil {
			return "", nil, err
		}

		if len(target.Children) == 0 {
			return "", nil, oops.
				Code("BAD_TEMPLATE").
				With("key", entry.Text).
				Errorf("template %q has no content", entry.Text)
		}

		declaration = target.Children[0]
		merged = md.CloneAll(target.Children)
	}

	name := backtickName.FindStringSubmatch(declaration.Text)
	if name == nil {
		return "", nil, oops.
			Code("BAD_TEMPLATE").
			With("key", key).
			With("entry", declaration.Text).
			Errorf("template entry under %q has no declared name", key)
	}

	return name[1], merged, nil
}

// expandAppend keeps the node but rewrites `<label> = %%<key>%%` to the label
// alone and appends a deep copy of the template's children.
func expandAppend(node *md.Node, label, key string, index map[string]*md.Node) error {
	template, err := lookup(index, key, node.Text)
	if err != nil {
		return err
	}

	node.Text = label
	node.Children = append(node.Children, md.CloneAll(template.Children)...)

	return nil
}

// expandSplice replaces a node containing a %%-template-<name>-%% reference
// by splicing the referenced template's children at its position.
func expandSplice(node *md.Node, key string, index map[string]*md.Node) ([]*md.Node, error) {
	template, err := lookup(index, key, node.Text)
	if err != nil {
		return nil, err
	}

	return expandNodes(md.CloneAll(template.Children), index)
}

func lookup(index map[string]*md.Node, key, source string) (*md.Node, error) {
	template, ok := index[key]
	if !ok {
		return nil, oops.
			Code("BAD_TEMPLATE").
			With("key", key).
			With("node", source).
			Hint("Define the template in the params file").
			Errorf("bad template %q", key)
	}

	return template, nil
}
