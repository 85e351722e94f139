package diagram

import (
	"fmt"
	"strings"
)

// NodeType is the closed set of architecture node kinds.
type NodeType string

// Node types.
const (
	NodeService  NodeType = "service"
	NodeDB       NodeType = "db"
	NodeQueue    NodeType = "queue"
	NodeWorker   NodeType = "worker"
	NodeExternal NodeType = "external"
)

// NodeTypes lists every node type in palette order.
var NodeTypes = []NodeType{NodeService, NodeDB, NodeQueue, NodeExternal, NodeWorker}

var nodeLabels = map[NodeType]string{
	NodeService:  "Service",
	NodeDB:       "Database",
	NodeQueue:    "Queue",
	NodeExternal: "External",
	NodeWorker:   "Worker",
}

// Label returns the human-readable default label for the node type.
func (t NodeType) Label() string {
	if l, ok := nodeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	_, ok := nodeLabels[t]
	return ok
}

// ParseNodeType converts s to a NodeType, accepting labels
// case-insensitively ("Database" parses as db).
func ParseNodeType(s string) (NodeType, error) {
	s = strings.TrimSpace(s)
	if t := NodeType(strings.ToLower(s)); t.Valid() {
		return t, nil
	}
	for t, l := range nodeLabels {
		if strings.EqualFold(l, s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown node type %q", s)
}

// EdgeType is the closed set of connection kinds.
type EdgeType string

// Edge types.
const (
	EdgeGRPC    EdgeType = "grpc"
	EdgeREST    EdgeType = "rest"
	EdgePublish EdgeType = "publish"
	EdgeConsume EdgeType = "consume"
	EdgeRead    EdgeType = "read"
	EdgeWrite   EdgeType = "write"
)

// DefaultEdgeType is assigned to connections drawn without an explicit type.
const DefaultEdgeType = EdgeREST

// EdgeTypes lists every edge type.
var EdgeTypes = []EdgeType{EdgeGRPC, EdgeREST, EdgePublish, EdgeConsume, EdgeRead, EdgeWrite}

// Valid reports whether t is a known edge type.
func (t EdgeType) Valid() bool {
	switch t {
	case EdgeGRPC, EdgeREST, EdgePublish, EdgeConsume, EdgeRead, EdgeWrite:
		return true
	}
	return false
}

// IsAsync reports whether t is an asynchronous edge type.
func (t EdgeType) IsAsync() bool { return IsAsync(t) }

// ParseEdgeType converts s to an EdgeType. Matching is case-insensitive.
func ParseEdgeType(s string) (EdgeType, error) {
	t := EdgeType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown edge type %q", s)
	}
	return t, nil
}

// IsAsync reports whether t is asynchronous: true for publish and consume.
// The classification drives presentation only.
func IsAsync(t EdgeType) bool {
	return t == EdgePublish || t == EdgeConsume
}
