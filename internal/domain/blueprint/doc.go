// Package blueprint models site blueprints: JSON trees of nested elements with
// declarative attributes and text or element children.
//
// Wire format:
//
//	{"type": "div", "props": {"className": "p-4"}, "children": [
//	    {"type": "h1", "children": ["Hello"]},
//	    "trailing text"
//	]}
//
// Key Components:
//   - Value / Object: order-preserving decode of untrusted JSON
//   - Node: sum type with two variants, Text and *Element
//   - Parse / FromValue: parse-and-validate at the editing boundary
//   - Validate: the same shape check for trees built in Go
//
// Shape rules:
//   - a node is a string, or an object whose "type" (alias "tag") is a non-empty string
//   - "props" (alias "attributes") is optional; values are scalars or flat objects
//   - "children" is optional; entries are strings or element objects
//
// Decoding and validation walk the tree with explicit stacks, so document depth
// never grows the goroutine stack. Limits are applied through ParseOptions.
//
// Example:
//
//	root, err := blueprint.Parse(text)
//	var ve *blueprint.ValidationError
//	if errors.As(err, &ve) {
//	    fmt.Println(ve.Path, ve.Reason)
//	}
package blueprint
