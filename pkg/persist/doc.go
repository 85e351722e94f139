// Package persist bridges in-memory diagrams to durable storage and to
// downloadable export artifacts.
//
// # Storage
//
// An [Adapter] writes the diagram under a single key of a [store.Store]
// after every change (autosave) and reads it back at startup. Loading never
// fails: an absent key, an unreadable store or a corrupt document all
// produce the default starter diagram, with the reason reported in the
// [LoadResult] for logging.
//
// # Document Format
//
// Documents are the JSON form of [diagram.Diagram], written with a 2-space
// indent:
//
//	{
//	  "id": "0b6a...",
//	  "name": "Untitled Diagram",
//	  "nodes": [{"id": "svc", "type": "service", "name": "Service", ...}],
//	  "edges": [{"id": "e-svc-db", "from": "svc", "to": "db", "type": "rest"}],
//	  "metadata": {},
//	  "version": 1
//	}
//
// [Decode] accepts any JSON object whose "nodes" and "edges" members are
// arrays. Missing id, name and metadata are filled in, unversioned
// documents are migrated, and node and edge records in the canvas library
// shape ({"type":"box","data":{"label","kind"}} and {"source","target"})
// are converted.
//
// # Exports
//
// Export functions return an [Artifact]: a file name, a content type and
// the encoded bytes. JSON, YAML, HCL and SVG are produced directly; PNG
// requires a [Rasterizer] and reports EXPORT_TARGET_ABSENT without one.
package persist
