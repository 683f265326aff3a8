// Package engine applies create, edit, remove and reorder operations to a
// stored WSB page.
//
// # Transactions
//
// Every call, a single [Engine.Create] as much as a [Engine.Batch] of fifty
// operations, is one transaction: the page is loaded once, operations run
// in order against the in-memory copy, order indexes are renumbered once and
// the page is saved once. The first failing operation aborts the whole
// batch and nothing is written:
//
//	results, err := eng.Batch(ctx, "static/wsb/page.json", []engine.Operation{
//	    {Type: engine.OpCreate, Alias: "hero", Payload: map[string]any{
//	        "kind": "SECTION", "left": 0, "top": 90, "width": 1300, "height": 600,
//	    }},
//	    {Type: engine.OpCreate, Payload: map[string]any{
//	        "kind": "TEXT", "parent_id": "hero",
//	        "left": 185, "top": 250, "width": 680, "height": 260,
//	    }},
//	})
//
// # Aliases
//
// A CREATE may carry an Alias. Before anything runs, each create gets its id
// and every reference field of later operations (parent_id, before_id,
// after_id, component_id, relIn.id, relTo.id, order_ids and the
// auto_position ids) that names an alias is rewritten to that id.
//
// # Positioning
//
// Sections chain to the last section through relTo, or to the page anchor
// when there is none. Other components derive their relIn offsets from the
// absolute box and the parent box; auto_position computes both from a
// named strategy (see package layout).
package engine
