// Package tree defines the untyped, ordered document model the mapper works
// on: Null, Scalar, Sequence and Mapping nodes.
//
// Nodes are immutable values. Mappings keep insertion order and unique keys,
// which lets documents round trip through YAML, JSON and MessagePack without
// reordering.
//
// Codecs:
//   - YAML via gopkg.in/yaml.v3 nodes (comments are attached on the way out)
//   - JSON via an order preserving token walk
//   - MessagePack via github.com/vmihailenco/msgpack/v5
package tree
