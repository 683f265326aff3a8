// Package page defines the WSB page document and its component records.
//
// # Overview
//
// A page is a small envelope (id, name, template id, flags) around a flat,
// ordered list of components. Hierarchy is not expressed by nesting: each
// component names its parent through [RelIn] and, optionally, the sibling it
// is stacked below through [RelTo].
//
//	{
//	  "id": "5D0C...",
//	  "type": "web.data.components.Page",
//	  "name": "Generated Page",
//	  "templateId": "A1B2...",
//	  "items": [
//	    {"id": "S1", "kind": "SECTION", "orderIndex": 0, "relIn": null,
//	     "relTo": {"id": "22FC8C5B-...", "below": 0}, "top": 90, "height": 600},
//	    {"id": "T1", "kind": "TEXT", "orderIndex": 0,
//	     "relIn": {"id": "S1", "left": 185, "top": 160, "right": -435, "bottom": -340}}
//	  ],
//	  "shareHeaderAndFirstSectionBgImg": false,
//	  "shareBgImgOffsetTop": 0
//	}
//
// # Components
//
// [Component] keeps the structural fields typed (id, kind, order index,
// relations, geometry) and every presentation or content field in Props.
// On the wire both are flattened into one JSON object with a stable key
// order, so re-encoding an unchanged document is byte-stable.
//
// Older documents may still nest components in an "items" array; those are
// decoded into [Component.Items] and remain searchable and removable.
//
// # Numbers
//
// Decoded values are canonicalized by [Canonical]: integral numbers become
// int and everything else float64, so in-memory comparisons do not depend
// on whether a value came from JSON or from Go code.
package page
