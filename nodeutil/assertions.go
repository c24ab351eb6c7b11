package nodeutil

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// AssertTypeIs panics if the node is not of the expected type. The frontend
// recovers these panics and reports them as syntax errors
func AssertTypeIs(node *sitter.Node, expectedType string) {
	if node.Type() != expectedType {
		panic(fmt.Sprintf("assertion failed: Type of node differs from expected: %s, got: %s", expectedType, node.Type()))
	}
}
