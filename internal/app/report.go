package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/buildmodelgo/internal/model"
	"github.com/vk/buildmodelgo/internal/modeltype"
)

// writeModelReport renders the realized graph as an indented tree, one line
// per node with its type and lifecycle state.
func writeModelReport(w io.Writer, root *model.Node) {
	fmt.Fprintln(w, "model")
	for _, child := range root.Links(modeltype.Token{}) {
		writeNodeReport(w, child, 1)
	}
}

func writeNodeReport(w io.Writer, n *model.Node, depth int) {
	line := strings.Repeat("  ", depth) + "+ " + n.Path().Name()
	if t := n.TypeToken(); !t.IsZero() {
		line += " (" + t.String() + ")"
	}
	line += " [" + n.State().String() + "]"
	fmt.Fprintln(w, line)

	for _, child := range n.Links(modeltype.Token{}) {
		writeNodeReport(w, child, depth+1)
	}
}
