// Package diagram defines the versioned architecture-diagram schema.
//
// # Overview
//
// A [Diagram] is the unit of ownership and persistence: typed nodes
// (services, databases, queues, workers, external systems), typed edges
// between them (grpc, rest, publish, consume, read, write), free-form
// metadata and a schema version tag. Nodes and edges are never shared
// across diagrams.
//
// # JSON Format
//
//	{
//	  "id": "5f0c…",
//	  "name": "Checkout",
//	  "nodes": [
//	    {"id": "svc", "type": "service", "name": "Service",
//	     "properties": {}, "position": {"x": 220, "y": 120}}
//	  ],
//	  "edges": [
//	    {"id": "e-svc-db", "from": "svc", "to": "db", "type": "read"}
//	  ],
//	  "metadata": {},
//	  "version": 1
//	}
//
// # Properties
//
// Node properties and diagram metadata are [Properties]: string keys mapped
// to a closed [Value] variant (null, string, number, bool, list, nested map).
// Map keys are always emitted sorted, so serialization is deterministic.
//
// # Versioning
//
// Every diagram built by this package carries [SchemaVersion]. Documents
// read from storage are brought up to date with [Migrate], which applies
// one registered step per stored version and rejects versions it does not
// know.
package diagram
