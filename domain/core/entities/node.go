package entities

import (
	"strings"

	"ideaboard/domain/core/valueobjects"
)

// Node is a single idea on the canvas.
// Its JSON form is the durable and export format, so tags must stay stable.
type Node struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// NodePatch is a partial update. Nil fields are left untouched.
type NodePatch struct {
	Content *string
	X       *float64
	Y       *float64
}

// NewNode builds a node from user text. It returns false when the trimmed
// text is empty; such nodes are never created.
func NewNode(id, text string, position valueobjects.Position) (Node, bool) {
	content := strings.TrimSpace(text)
	if content == "" {
		return Node{}, false
	}
	return Node{
		ID:      id,
		Content: content,
		X:       position.X,
		Y:       position.Y,
	}, true
}

// Position returns the node's canvas position
func (n Node) Position() valueobjects.Position {
	return valueobjects.Position{X: n.X, Y: n.Y}
}

// Apply merges the patch into the node. The id never changes and the
// content is not validated, so an update may leave it empty.
func (n Node) Apply(patch NodePatch) Node {
	if patch.Content != nil {
		n.Content = *patch.Content
	}
	if patch.X != nil {
		n.X = *patch.X
	}
	if patch.Y != nil {
		n.Y = *patch.Y
	}
	return n
}

// IsEmpty reports whether the patch changes nothing
func (p NodePatch) IsEmpty() bool {
	return p.Content == nil && p.X == nil && p.Y == nil
}
