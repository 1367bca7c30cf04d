package graph

import "sort"

type Graph struct {
	Nodes []Node
}

type Node struct {
	Neighbors []uint
}

// ConvertToUndirected adds the reverse of every edge. Neighbor lists come out
// sorted and without duplicates.
func ConvertToUndirected(g Graph) Graph {
	sets := make([]map[uint]struct{}, len(g.Nodes))
	for i := range sets {
		sets[i] = map[uint]struct{}{}
	}
	for i, node := range g.Nodes {
		for _, j := range node.Neighbors {
			if j == uint(i) {
				continue
			}
			sets[i][j] = struct{}{}
			sets[j][uint(i)] = struct{}{}
		}
	}

	nodes := make([]Node, len(g.Nodes))
	for i, set := range sets {
		neighbors := make([]uint, 0, len(set))
		for j := range set {
			neighbors = append(neighbors, j)
		}
		sort.Slice(neighbors, func(a, b int) bool { return neighbors[a] < neighbors[b] })
		nodes[i].Neighbors = neighbors
	}

	return Graph{Nodes: nodes}
}
