// Package render turns blueprint content into a display tree and HTML.
//
// The renderer works on the loosely typed blueprint.Value so that malformed
// content stays representable: AI output and hand-typed JSON are untrusted
// even after the editing-time shape check.
//
// Dispatch per node:
//   - string: text leaf, never interpreted as markup
//   - object with a non-empty string "type" (or "tag"): element
//   - anything else: error placeholder plus a MalformedNodeError sent to the
//     diagnostics sink (zap entry with the node structure, metrics counter)
//
// Containment is per node. A malformed child never aborts its siblings or
// ancestors, and Render never panics to its caller.
//
// The HTML surface (HTMLWriter) is the security boundary for attributes:
// event handlers and unsafe URL schemes are dropped before a final
// bluemonday pass.
package render
