// Package ast builds an arena-backed tree mirroring S-expression structure
// out of a token stream. Nodes are indices into a single slice rather than
// pointers, avoiding cyclic ownership between parent/child/sibling links.
package ast

import "github.com/sexpvm/sexpvm/internal/token"

// NodeID indexes into a Tree's node arena. The zero value is the tree's
// synthetic root.
type NodeID int

// Root is always the NodeID of the synthetic top-level node.
const Root NodeID = 0

const noNode NodeID = -1

// Node carries the token that produced it and its position within the
// arena: a parent link, a first-child link, and a next-sibling link. Nodes
// are created once during parsing and never mutated afterward except to
// link in their children.
type Node struct {
	Token      token.Token
	Parent     NodeID
	FirstChild NodeID
	NextSib    NodeID
}

// Tree is an arena of Nodes rooted at Root. Root always has Kind NOOP and
// holds one child per top-level expression.
type Tree struct {
	nodes []Node
}

// NewTree allocates a tree containing only the synthetic NOOP root.
func NewTree() *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, Node{
		Token:      token.Token{Kind: token.NOOP},
		Parent:     noNode,
		FirstChild: noNode,
		NextSib:    noNode,
	})
	return t
}

// Node returns the node stored at id.
func (t *Tree) Node(id NodeID) Node {
	return t.nodes[id]
}

// NewNode appends a node carrying tok to the arena and returns its id. The
// node is not yet linked into the tree; call AppendChild to attach it.
func (t *Tree) NewNode(tok token.Token) NodeID {
	t.nodes = append(t.nodes, Node{
		Token:      tok,
		Parent:     noNode,
		FirstChild: noNode,
		NextSib:    noNode,
	})
	return NodeID(len(t.nodes) - 1)
}

// AppendChild links child as the last child of parent.
func (t *Tree) AppendChild(parent, child NodeID) {
	t.nodes[child].Parent = parent

	first := t.nodes[parent].FirstChild
	if first == noNode {
		t.nodes[parent].FirstChild = child
		return
	}
	sib := first
	for t.nodes[sib].NextSib != noNode {
		sib = t.nodes[sib].NextSib
	}
	t.nodes[sib].NextSib = child
}

// Children returns the ordered list of ids of node's direct children.
func (t *Tree) Children(node NodeID) []NodeID {
	var out []NodeID
	for c := t.nodes[node].FirstChild; c != noNode; c = t.nodes[c].NextSib {
		out = append(out, c)
	}
	return out
}

// IsLeaf reports whether node has no children recorded.
func (t *Tree) IsLeaf(node NodeID) bool {
	return t.nodes[node].FirstChild == noNode
}

// Len returns the number of nodes in the arena, including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}
