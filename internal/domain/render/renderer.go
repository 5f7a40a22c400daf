package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
)

// maxLoggedNode bounds the node structure copied into a log entry
const maxLoggedNode = 2048

// Recorder receives malformed-node counts
type Recorder interface {
	RecordMalformedNode()
}

// Options configures a Renderer
type Options struct {
	// MaxDepth turns subtrees nested deeper than this into error
	// placeholders. Zero means unlimited.
	MaxDepth int
	Recorder Recorder
}

// Renderer converts blueprint content into display trees.
// It is safe for concurrent use.
type Renderer struct {
	logger *zap.Logger
	opts   Options
}

// New creates a renderer that reports malformed nodes to logger
func New(logger *zap.Logger, opts Options) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		logger: logger.Named("render"),
		opts:   opts,
	}
}

// RenderNode renders an already validated tree
func (r *Renderer) RenderNode(n blueprint.Node) *Element {
	if n == nil {
		return r.Render(nil)
	}
	return r.Render(n.Value())
}

// Render converts v into a display tree. Malformed nodes become error
// placeholders in place; everything else renders normally.
func (r *Renderer) Render(v blueprint.Value) (out *Element) {
	defer func() {
		if rec := recover(); rec != nil {
			out = r.malformed(v, "$", fmt.Sprintf("renderer failure: %v", rec))
		}
	}()

	type item struct {
		value blueprint.Value
		path  string
		depth int
		slot  **Element
	}

	var root *Element
	stack := []item{{value: v, path: "$", depth: 1, slot: &root}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if r.opts.MaxDepth > 0 && it.depth > r.opts.MaxDepth {
			*it.slot = r.malformed(it.value, it.path, fmt.Sprintf("nesting exceeds %d levels", r.opts.MaxDepth))
			continue
		}

		switch val := it.value.(type) {
		case string:
			*it.slot = textLeaf(val)

		case *blueprint.Object:
			tag, reason := elementTag(val)
			if reason != "" {
				*it.slot = r.malformed(val, it.path, reason)
				continue
			}

			el := &Element{
				Kind:       KindElement,
				Tag:        tag,
				Attributes: r.attributes(val, it.path),
			}
			*it.slot = el

			kids := r.children(val, it.path)
			if len(kids) == 0 {
				continue
			}
			el.Children = make([]*Element, len(kids))
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, item{
					value: kids[i],
					path:  fmt.Sprintf("%s.%s[%d]", it.path, blueprint.KeyChildren, i),
					depth: it.depth + 1,
					slot:  &el.Children[i],
				})
			}

		default:
			*it.slot = r.malformed(val, it.path, fmt.Sprintf("node must be a string or an element object, got %s", blueprint.TypeName(val)))
		}
	}

	return root
}

// elementTag returns the element kind or the reason the object is not an element
func elementTag(obj *blueprint.Object) (string, string) {
	raw, ok := obj.Get(blueprint.KeyType)
	if !ok {
		raw, ok = obj.Get(blueprint.KeyTag)
	}
	if !ok {
		return "", "element has no type"
	}
	tag, isString := raw.(string)
	if !isString {
		return "", fmt.Sprintf("element type must be a string, got %s", blueprint.TypeName(raw))
	}
	if strings.TrimSpace(tag) == "" {
		return "", "element type is empty"
	}
	return tag, ""
}

func (r *Renderer) attributes(obj *blueprint.Object, path string) blueprint.Attributes {
	key := blueprint.KeyProps
	raw, ok := obj.Get(blueprint.KeyProps)
	if !ok {
		key = blueprint.KeyAttributes
		raw, ok = obj.Get(blueprint.KeyAttributes)
	}
	if !ok || raw == nil {
		return nil
	}
	props, isObject := raw.(*blueprint.Object)
	if !isObject {
		r.logger.Warn("Ignoring malformed attributes",
			zap.String("path", path+"."+key),
			zap.String("got", blueprint.TypeName(raw)))
		return nil
	}

	attrs := make(blueprint.Attributes, 0, props.Len())
	props.Range(func(name string, value blueprint.Value) bool {
		attrs = append(attrs, blueprint.Attribute{Name: name, Value: value})
		return true
	})
	return attrs
}

func (r *Renderer) children(obj *blueprint.Object, path string) []blueprint.Value {
	raw, ok := obj.Get(blueprint.KeyChildren)
	if !ok || raw == nil {
		return nil
	}
	kids, isArray := raw.([]blueprint.Value)
	if !isArray {
		r.logger.Warn("Ignoring malformed children",
			zap.String("path", path+"."+blueprint.KeyChildren),
			zap.String("got", blueprint.TypeName(raw)))
		return nil
	}
	return kids
}

// malformed reports a node to the diagnostics sink and returns its placeholder
func (r *Renderer) malformed(node blueprint.Value, path, reason string) *Element {
	err := &MalformedNodeError{Path: path, Reason: reason, Node: node}

	r.logger.Error("Invalid element structure found",
		zap.String("path", path),
		zap.String("reason", reason),
		zap.String("node", describe(node)))
	if r.opts.Recorder != nil {
		r.opts.Recorder.RecordMalformedNode()
	}
	return placeholder(err)
}

// describe serialises a node for logging. The walk stops once the output
// passes maxLoggedNode bytes, so cost stays bounded for any input.
func describe(node blueprint.Value) string {
	type token struct {
		lit   string
		isLit bool
		value blueprint.Value
	}
	lit := func(s string) token { return token{lit: s, isLit: true} }

	var sb strings.Builder
	stack := []token{{value: node}}
	for len(stack) > 0 && sb.Len() <= maxLoggedNode {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.isLit {
			sb.WriteString(t.lit)
			continue
		}

		switch v := t.value.(type) {
		case *blueprint.Object:
			if v == nil {
				sb.WriteString("null")
				continue
			}
			sb.WriteByte('{')
			stack = append(stack, lit("}"))
			keys := v.Keys()
			for i := len(keys) - 1; i >= 0; i-- {
				val, _ := v.Get(keys[i])
				stack = append(stack, token{value: val})
				prefix := scalarJSON(keys[i]) + ":"
				if i > 0 {
					prefix = "," + prefix
				}
				stack = append(stack, lit(prefix))
			}
		case []blueprint.Value:
			sb.WriteByte('[')
			stack = append(stack, lit("]"))
			for i := len(v) - 1; i >= 0; i-- {
				stack = append(stack, token{value: v[i]})
				if i > 0 {
					stack = append(stack, lit(","))
				}
			}
		default:
			sb.WriteString(scalarJSON(v))
		}
	}

	out := sb.String()
	if len(stack) > 0 || len(out) > maxLoggedNode {
		if len(out) > maxLoggedNode {
			out = out[:maxLoggedNode]
		}
		return out + "...(truncated)"
	}
	return out
}

func scalarJSON(v blueprint.Value) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
	return string(data)
}
