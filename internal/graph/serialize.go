package graph

import "codelens/internal/model"

// Serializable is the wire form of a graph, suitable for visualization by a
// UI layer.
type Serializable struct {
	Nodes        []string             `json:"nodes"`
	Edges        []model.Relationship `json:"edges"`
	Cycles       [][]string           `json:"cycles,omitempty"`
	DroppedEdges int                  `json:"dropped_edges"`
}

// Serialize flattens the graph into its wire form.
func (g *DependencyGraph) Serialize() Serializable {
	return Serializable{
		Nodes:        g.Nodes(),
		Edges:        g.Edges(),
		Cycles:       g.Cycles(),
		DroppedEdges: g.DroppedEdges(),
	}
}
