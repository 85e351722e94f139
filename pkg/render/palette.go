package render

import "github.com/matzehuels/archboard/pkg/diagram"

// Style is the fill and border colour of a node kind.
type Style struct {
	Fill   string
	Border string
	Dashed bool
}

var styles = map[diagram.NodeType]Style{
	diagram.NodeService:  {Fill: "#E3F2FD", Border: "#64B5F6"},
	diagram.NodeDB:       {Fill: "#E8F5E9", Border: "#81C784"},
	diagram.NodeQueue:    {Fill: "#FFF3E0", Border: "#FFB74D"},
	diagram.NodeExternal: {Fill: "#F3E5F5", Border: "#BA68C8"},
	diagram.NodeWorker:   {Fill: "#ECEFF1", Border: "#90A4AE", Dashed: true},
}

// fallbackStyle is used for node types outside the known set.
var fallbackStyle = Style{Fill: "#FFFFFF", Border: "#9E9E9E"}

// Colours shared by the renderers.
const (
	EdgeColor  = "#546E7A"
	TextColor  = "#263238"
	Background = "#FAFAFA"
)

// Default node extent, in canvas pixels, for nodes without a recorded size.
const (
	DefaultNodeWidth  = 150.0
	DefaultNodeHeight = 44.0
)

// StyleFor returns the palette entry for t.
func StyleFor(t diagram.NodeType) Style {
	if s, ok := styles[t]; ok {
		return s
	}
	return fallbackStyle
}

// NodeSize returns the node's recorded size, or the default extent.
func NodeSize(n diagram.Node) diagram.Size {
	if n.Size != nil && n.Size.W > 0 && n.Size.H > 0 {
		return *n.Size
	}
	return diagram.Size{W: DefaultNodeWidth, H: DefaultNodeHeight}
}
