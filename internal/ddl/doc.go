// Package ddl defines the structured representation of administrative
// commands: the closed command-node union the host parser produces, the
// closed command-tag taxonomy, and the classifier connecting the two.
//
// Nodes are transient. They are produced by the parser, consumed by the
// classifier and the deparser, and never persisted; only canonical tag
// strings (ddl.Tag.String) appear in storage, inside registration
// filters and the firing log.
//
// The three closed sets in this package move in lockstep:
//   - node shapes (Node implementations)
//   - object kinds (ObjectKind)
//   - command tags (Tag, bijective with canonical tag strings)
//
// Classify is total over the node union. Shapes without trigger support
// report ErrUnsupportedCommand, which callers treat as "fire nothing".
package ddl
