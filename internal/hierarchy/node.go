package hierarchy

import (
	"fmt"

	"github.com/statsight/sic-cli/internal/meta"
)

// Node holds all data associated with one code. The hierarchy is a
// forest: each section is the root of its own tree.
type Node struct {
	Code        Code
	Description string
	Activities  []string
	Meta        meta.Meta
	Parent      *Node
	Children    []*Node
}

func (n *Node) String() string {
	return fmt.Sprintf("%s: %q", n.Code, n.Description)
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// NumericPadded returns the node's numeric code padded to five digits.
// A 4-digit class that is itself a leaf stands in for its implicit
// 5-digit subclass, so it gains a trailing zero.
func (n *Node) NumericPadded() string {
	numeric := n.Code.Trimmed()[1:]
	if n.Code.Digits == 4 && n.IsLeaf() {
		numeric += "0"
	}
	return numeric
}
