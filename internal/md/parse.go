package md

import (
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// Parse converts raw markdown into the normalized node tree. Headings are
// nested by level so each class heading owns its member headings and each
// member heading owns its argument headings.
func Parse(content []byte) []*Node {
	content = StripBOM(content)

	mdParser := parser.NewWithExtensions(parser.CommonExtensions)
	doc := mdParser.Parse(content)

	flat := convertBlocks(doc.GetChildren())

	return nestByHeading(flat)
}

// StripBOM removes a UTF-8 BOM (0xEF, 0xBB, 0xBF) if present.
func StripBOM(content []byte) []byte {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:]
	}
	return content
}

func convertBlocks(blocks []ast.Node) []*Node {
	var nodes []*Node

	for _, block := range blocks {
		switch block := block.(type) {
		case *ast.Heading:
			nodes = append(nodes, &Node{
				Kind:  KindHeading,
				Level: block.Level,
				Text:  inlineText(block),
			})

		case *ast.List:
			nodes = append(nodes, convertListItems(block)...)

		case *ast.Paragraph:
			if text := inlineText(block); text != "" {
				nodes = append(nodes, &Node{Kind: KindText, Text: text})
			}

		case *ast.CodeBlock:
			nodes = append(nodes, &Node{
				Kind: KindCode,
				Text: strings.TrimRight(string(block.Literal), "\n"),
			})

		case *ast.BlockQuote:
			nodes = append(nodes, convertBlocks(block.GetChildren())...)
		}
	}

	return nodes
}

func convertListItems(list *ast.List) []*Node {
	var items []*Node

	for _, child := range list.GetChildren() {
		item, isItem := child.(*ast.ListItem)
		if !isItem {
			continue
		}

		items = append(items, convertListItem(item))
	}

	return items
}

func convertListItem(item *ast.ListItem) *Node {
	node := &Node{Kind: KindListItem}

	for _, child := range item.GetChildren() {
		switch child := child.(type) {
		case *ast.List:
			node.Children = append(node.Children, convertListItems(child)...)

		case *ast.CodeBlock:
			node.Children = append(node.Children, &Node{
				Kind: KindCode,
				Text: strings.TrimRight(string(child.Literal), "\n"),
			})

		default:
			text := inlineText(child)
			if text == "" {
				continue
			}
			if node.Text == "" {
				node.Text = text
			} else {
				node.Children = append(node.Children, &Node{Kind: KindText, Text: text})
			}
		}
	}

	node.ListKind = classifyListItem(node.Text)

	return node
}

// classifyListItem tags type-declaration items "default" and everything else
// (metainfo bullets, prose) "bullet".
func classifyListItem(text string) ListKind {
	if strings.HasPrefix(text, "`") ||
		strings.HasPrefix(text, "returns:") ||
		strings.HasPrefix(text, "type:") ||
		strings.HasPrefix(text, "argument:") {
		return ListDefault
	}
	return ListBullet
}

// inlineText reassembles the source text of an inline run. Code spans keep
// their backticks because the type-expression grammar depends on them.
func inlineText(node ast.Node) string {
	var buf strings.Builder

	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}

		switch n := n.(type) {
		case *ast.Text:
			buf.Write(n.Literal)
		case *ast.Code:
			buf.WriteByte('`')
			buf.Write(n.Literal)
			buf.WriteByte('`')
		case *ast.HTMLSpan:
			buf.Write(n.Literal)
		}

		return ast.GoToNext
	})

	// Collapse hard-wrapped lines into single-space separated text.
	return strings.Join(strings.Fields(buf.String()), " ")
}

func nestByHeading(flat []*Node) []*Node {
	var root []*Node
	var open []*Node

	for _, node := range flat {
		if node.Kind == KindHeading {
			for len(open) > 0 && open[len(open)-1].Level >= node.Level {
				open = open[:len(open)-1]
			}
			attach(&root, open, node)
			open = append(open, node)
			continue
		}

		attach(&root, open, node)
	}

	return root
}

func attach(root *[]*Node, open []*Node, node *Node) {
	if len(open) == 0 {
		*root = append(*root, node)
		return
	}

	parent := open[len(open)-1]
	parent.Children = append(parent.Children, node)
}
