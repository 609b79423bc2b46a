// Package tree defines the virtual file-tree capability consumed by the
// schematics core.
//
// The core never inspects tree contents. It only needs to know whether a
// produced value is a tree, which is answered by IsTree. Concrete trees
// declare conformance by embedding Base:
//
//	type MyTree struct {
//	    tree.Base
//	    ...
//	}
//
// HostTree is a small in-memory implementation used by the built-in rules,
// the CLI and tests. Merge strategies are carried as values only; nothing
// in this package reconciles competing tree mutations.
package tree
