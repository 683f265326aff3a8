// Package document provides the primitive operations on a page's flat
// component list: lookup, insertion, removal with descendants, sibling
// reordering and order-index renumbering, plus the read-only queries used
// by the tool surface.
//
// # Sibling Groups
//
// Components sharing a relIn.id form a sibling group; components without a
// parent form the top-level group. [Document.Renumber] gives every group
// contiguous orderIndex values from 0 and must run after each structural
// change. The batch executor calls it once per batch.
//
// # Removal
//
// [Document.Remove] deletes a component and every component whose relIn
// chain leads to it:
//
//	S1 (SECTION)
//	├── T1 (relIn S1)
//	└── C1 (relIn S1)
//	    └── B1 (relIn C1)
//
// Removing S1 removes all four records. Removing T1 removes exactly one.
package document
