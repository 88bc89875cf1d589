package tree

import (
	"strings"

	"github.com/temirov/copier/internal/types"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchIndent    = "│   "
	treeLastIndent      = "    "
	directoryMarker     = "/"
)

// Render draws root depth-first, one line per node. The root itself prints nothing and
// its children start without indentation.
func Render(root *types.TreeNode) string {
	if root == nil {
		return ""
	}
	var builder strings.Builder
	renderChildren(&builder, root, "")
	return builder.String()
}

func renderChildren(builder *strings.Builder, node *types.TreeNode, indent string) {
	for index, child := range node.Children {
		isLast := index == len(node.Children)-1
		connector, childIndent := treeBranchConnector, treeBranchIndent
		if isLast {
			connector, childIndent = treeLastConnector, treeLastIndent
		}
		builder.WriteString(indent)
		builder.WriteString(connector)
		builder.WriteString(child.Name)
		if child.IsDirectory {
			builder.WriteString(directoryMarker)
		}
		builder.WriteString("\n")
		if child.IsDirectory {
			renderChildren(builder, child, indent+childIndent)
		}
	}
}
