package md

// NodeKind identifies the closed set of node shapes the grammar consumes.
type NodeKind int

const (
	KindHeading NodeKind = iota
	KindListItem
	KindText
	KindCode
)

// ListKind tags list items by their grammatical role. Declaration items
// (backtick-quoted name or a returns:/type:/argument: placeholder) are
// "default"; everything else is "bullet".
type ListKind string

const (
	ListBullet  ListKind = "bullet"
	ListDefault ListKind = "default"
)

// Node is one node of the normalized markdown tree. Headings own every
// following node up to the next heading of the same or higher level, so the
// grammar passes can walk class -> member -> argument structure directly.
type Node struct {
	Kind     NodeKind
	Level    int      // headings only, 1-3
	ListKind ListKind // list items only
	Text     string
	Children []*Node
}

func (n *Node) IsHeading(level int) bool {
	return n != nil && n.Kind == KindHeading && n.Level == level
}

func (n *Node) IsListItem(kind ListKind) bool {
	return n != nil && n.Kind == KindListItem && n.ListKind == kind
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	clone := &Node{
		Kind:     n.Kind,
		Level:    n.Level,
		ListKind: n.ListKind,
		Text:     n.Text,
	}
	clone.Children = CloneAll(n.Children)

	return clone
}

// CloneAll deep-copies a node list.
func CloneAll(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}

	clones := make([]*Node, len(nodes))
	for i, node := range nodes {
		clones[i] = node.Clone()
	}

	return clones
}
