package diagram

// StarterNodes returns the default starter set shown on a fresh canvas.
// Each call returns new slices and maps.
func StarterNodes() []Node {
	return []Node{
		starter("svc", NodeService, 220, 120),
		starter("db", NodeDB, 600, 200),
		starter("ext", NodeExternal, 140, 380),
		starter("q", NodeQueue, 420, 420),
	}
}

func starter(id string, t NodeType, x, y float64) Node {
	return Node{
		ID:         id,
		Type:       t,
		Name:       t.Label(),
		Properties: Properties{},
		Position:   Position{X: x, Y: y},
	}
}

// NewStarter returns [New] populated with [StarterNodes] and no edges.
func NewStarter(name string) *Diagram {
	d := New(name)
	d.Nodes = StarterNodes()
	return d
}
