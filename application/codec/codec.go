// Package codec converts the node collection to and from the portable JSON
// document used for export files and imports.
package codec

import (
	"encoding/json"

	"ideaboard/domain/core/entities"
	pkgerrors "ideaboard/pkg/errors"
)

const (
	// ContentType of an exported document
	ContentType = "application/json"

	// Filename offered for downloads
	Filename = "ideas.json"
)

// Export renders nodes as a pretty-printed JSON array
func Export(nodes []entities.Node) ([]byte, error) {
	if nodes == nil {
		nodes = []entities.Node{}
	}
	data, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "export nodes")
	}
	return data, nil
}

// Import parses a JSON document into nodes.
//
// Only the top-level shape is checked: it must be an array. Elements are
// passed through without schema validation. Fields of the right JSON type
// are read, anything else is left zero, and non-object elements become zero
// nodes.
func Import(data []byte) ([]entities.Node, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, pkgerrors.NewParseError(err)
	}

	elements, ok := doc.([]interface{})
	if !ok {
		return nil, pkgerrors.NewInvalidFormatError("import document must be a JSON array of nodes").
			WithDetails(map[string]interface{}{"found": jsonKind(doc)})
	}

	nodes := make([]entities.Node, 0, len(elements))
	for _, el := range elements {
		nodes = append(nodes, decodeNode(el))
	}
	return nodes, nil
}

func decodeNode(el interface{}) entities.Node {
	var node entities.Node
	obj, ok := el.(map[string]interface{})
	if !ok {
		return node
	}
	if v, ok := obj["id"].(string); ok {
		node.ID = v
	}
	if v, ok := obj["content"].(string); ok {
		node.Content = v
	}
	if v, ok := obj["x"].(float64); ok {
		node.X = v
	}
	if v, ok := obj["y"].(float64); ok {
		node.Y = v
	}
	return node
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]interface{}:
		return "object"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return "unknown"
	}
}
