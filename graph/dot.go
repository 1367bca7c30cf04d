package graph

import (
	"fmt"
	"io"

	"github.com/ar90n/kdtree"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

func render(w io.Writer, build func(*cgraph.Graph) error) (err error) {
	g := graphviz.New()
	graph, err := g.Graph()
	if err != nil {
		return errors.Wrap(err, "create graph")
	}
	defer func() {
		if cerr := graph.Close(); cerr != nil && err == nil {
			err = cerr
		}
		g.Close()
	}()

	if err := build(graph); err != nil {
		return err
	}
	return g.Render(graph, graphviz.XDOT, w)
}

// WriteDOT renders g as a directed graph in DOT format.
func WriteDOT(w io.Writer, g Graph) error {
	return render(w, func(graph *cgraph.Graph) error {
		gn := make([]*cgraph.Node, len(g.Nodes))
		for i := range g.Nodes {
			node, err := graph.CreateNode(fmt.Sprintf("n%d", i))
			if err != nil {
				return err
			}
			gn[i] = node
		}

		for i := range g.Nodes {
			for _, j := range g.Nodes[i].Neighbors {
				if int(j) >= len(gn) {
					return errors.Newf("node %d links to unknown node %d", i, j)
				}
				if _, err := graph.CreateEdge(fmt.Sprintf("e%d_%d", i, j), gn[i], gn[j]); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// WriteTreeDOT renders the structure of tree in DOT format. Edges are
// labeled "L" or "R" and every node shows its split dimension.
func WriteTreeDOT[P any, K comparable](w io.Writer, tree *kdtree.Tree[P, K], label func(P) string) error {
	dims := tree.Dimensions()
	return render(w, func(graph *cgraph.Graph) error {
		ids := map[*kdtree.Node[P]]*cgraph.Node{}
		var walkErr error
		tree.Walk(func(node *kdtree.Node[P], depth int) bool {
			if walkErr != nil {
				return false
			}
			gn, err := graph.CreateNode(fmt.Sprintf("n%d", len(ids)))
			if err != nil {
				walkErr = err
				return false
			}
			gn.SetLabel(fmt.Sprintf("%s\n%v", label(node.Data()), dims[node.Dimension()]))
			ids[node] = gn

			parent := node.Parent()
			if parent == nil {
				return true
			}
			side := "R"
			if parent.Left() == node {
				side = "L"
			}
			edge, err := graph.CreateEdge(fmt.Sprintf("e%d", len(ids)), ids[parent], gn)
			if err != nil {
				walkErr = err
				return false
			}
			edge.SetLabel(side)
			return true
		})
		return walkErr
	})
}
