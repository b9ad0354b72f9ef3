// Package mapping reads YAML override files for a mapper registry.
//
// An override file pins field mappings that auto-mapping cannot guess,
// names the transforms (converters registered in code) that fields go
// through and tunes registry settings:
//
//	version: "1"
//	settings:
//	  max_depth: 64
//	  conversions: [safe_number, text_number]
//	mappings:
//	  - source: store.Order
//	    target: warehouse.Order
//	    121:
//	      TotalCents: TotalAmount
//	    fields:
//	      - target: Status
//	        source: Status
//	        transform: orderStatus
//	    ignore: [Currency]
//	transforms:
//	  - name: orderStatus
//
// The "121" shorthand maps source field names (keys) to target field names
// (values). Explicit "fields" entries come after it, so a field listed in
// both uses the "fields" entry. Ignored targets are applied last.
//
// Several files are combined with Layer; later files win field by field.
package mapping
