package blueprint

import (
	"fmt"
	"strings"
)

// ParseOptions bounds what the editing boundary accepts
type ParseOptions struct {
	// MaxDepth is the maximum element nesting, root = 1
	MaxDepth int
	// MaxBytes is the maximum size of blueprint JSON text
	MaxBytes int
	// MaxNodes is the maximum number of elements plus text leaves
	MaxNodes int
}

// DefaultParseOptions returns the limits used by the HTTP API
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		MaxDepth: 256,
		MaxBytes: 512 * 1024,
		MaxNodes: 20000,
	}
}

// Parse converts blueprint JSON text into a validated element tree using the
// default limits. The root must be an element.
func Parse(data []byte) (*Element, error) {
	return ParseWithOptions(data, DefaultParseOptions())
}

// ParseWithOptions converts blueprint JSON text into a validated element tree
func ParseWithOptions(data []byte, opts ParseOptions) (*Element, error) {
	v, err := Decode(data, opts)
	if err != nil {
		return nil, err
	}
	return RootFromValue(v, opts)
}

// Decode checks the size limit and decodes text into an ordered Value without
// validating the node shape. Failures are *ValidationError.
func Decode(data []byte, opts ParseOptions) (Value, error) {
	if opts.MaxBytes > 0 && len(data) > opts.MaxBytes {
		return nil, invalidAt("", "blueprint is %d bytes, maximum is %d", len(data), opts.MaxBytes)
	}

	// Each element level costs two JSON levels (object + children array);
	// the slack covers nested attribute objects.
	maxNesting := 0
	if opts.MaxDepth > 0 {
		maxNesting = 2*opts.MaxDepth + 4
	}

	v, err := decodeValue(data, maxNesting)
	if err != nil {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Err:    fmt.Errorf("%w: %v", ErrInvalidJSON, err),
		}
	}
	return v, nil
}

// RootFromValue validates v as a blueprint whose root is an element
func RootFromValue(v Value, opts ParseOptions) (*Element, error) {
	if _, ok := v.(*Object); !ok {
		return nil, invalidAt("$", "root must be an element object, got %s", TypeName(v))
	}
	n, err := FromValue(v, opts)
	if err != nil {
		return nil, err
	}
	return n.(*Element), nil
}

// FromValue validates a decoded value against the node shape and converts it
// into a Node. The first offending node is reported as a *ValidationError.
func FromValue(v Value, opts ParseOptions) (Node, error) {
	type item struct {
		value Value
		path  string
		depth int
		slot  *Node
	}

	var (
		root  Node
		count int
	)
	stack := []item{{value: v, path: "$", depth: 1, slot: &root}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		count++
		if opts.MaxNodes > 0 && count > opts.MaxNodes {
			return nil, invalidAt(it.path, "blueprint exceeds %d nodes", opts.MaxNodes)
		}
		if opts.MaxDepth > 0 && it.depth > opts.MaxDepth {
			return nil, invalidAt(it.path, "nesting exceeds %d levels", opts.MaxDepth)
		}

		switch val := it.value.(type) {
		case string:
			*it.slot = Text(val)

		case *Object:
			tag, err := tagOf(val, it.path)
			if err != nil {
				return nil, err
			}
			attrs, err := attributesOf(val, it.path)
			if err != nil {
				return nil, err
			}
			kids, err := childrenOf(val, it.path)
			if err != nil {
				return nil, err
			}

			el := &Element{Tag: tag, Attributes: attrs}
			*it.slot = el
			if len(kids) == 0 {
				continue
			}
			el.Children = make([]Node, len(kids))
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, item{
					value: kids[i],
					path:  fmt.Sprintf("%s.%s[%d]", it.path, KeyChildren, i),
					depth: it.depth + 1,
					slot:  &el.Children[i],
				})
			}

		default:
			return nil, invalidAt(it.path, "node must be a string or an element object, got %s", TypeName(val))
		}
	}

	return root, nil
}

// tagOf extracts the element kind, preferring "type" over the "tag" alias
func tagOf(obj *Object, path string) (string, error) {
	key := KeyType
	raw, ok := obj.Get(KeyType)
	if !ok {
		key = KeyTag
		raw, ok = obj.Get(KeyTag)
	}
	if !ok {
		return "", invalidAt(path, "element is missing %q", KeyType)
	}
	tag, isString := raw.(string)
	if !isString {
		return "", invalidAt(path+"."+key, "%s must be a string, got %s", key, TypeName(raw))
	}
	if strings.TrimSpace(tag) == "" {
		return "", invalidAt(path+"."+key, "%s must not be empty", key)
	}
	return tag, nil
}

func attributesOf(obj *Object, path string) (Attributes, error) {
	key := KeyProps
	raw, ok := obj.Get(KeyProps)
	if !ok {
		key = KeyAttributes
		raw, ok = obj.Get(KeyAttributes)
	}
	if !ok || raw == nil {
		return nil, nil
	}
	props, isObject := raw.(*Object)
	if !isObject {
		return nil, invalidAt(path+"."+key, "%s must be an object, got %s", key, TypeName(raw))
	}

	attrs := make(Attributes, 0, props.Len())
	var err error
	props.Range(func(name string, value Value) bool {
		attrPath := fmt.Sprintf("%s.%s[%q]", path, key, name)
		if err = checkAttribute(name, value, attrPath); err != nil {
			return false
		}
		attrs = append(attrs, Attribute{Name: name, Value: value})
		return true
	})
	if err != nil {
		return nil, err
	}
	return attrs, nil
}

func checkAttribute(name string, value Value, path string) error {
	if strings.TrimSpace(name) == "" {
		return invalidAt(path, "attribute name must not be empty")
	}
	if isScalar(value) {
		return nil
	}
	nested, ok := value.(*Object)
	if !ok {
		return invalidAt(path, "attribute must be a string, number, boolean or object, got %s", TypeName(value))
	}
	var err error
	nested.Range(func(k string, v Value) bool {
		if !isScalar(v) {
			err = invalidAt(fmt.Sprintf("%s[%q]", path, k), "structured attribute values must be strings, numbers or booleans, got %s", TypeName(v))
			return false
		}
		return true
	})
	return err
}

func childrenOf(obj *Object, path string) ([]Value, error) {
	raw, ok := obj.Get(KeyChildren)
	if !ok || raw == nil {
		return nil, nil
	}
	kids, isArray := raw.([]Value)
	if !isArray {
		return nil, invalidAt(path+"."+KeyChildren, "children must be an array, got %s", TypeName(raw))
	}
	return kids, nil
}

// Validate checks a tree built in Go against the same shape rules Parse
// enforces, using the default limits.
func Validate(n Node) error {
	return ValidateWithOptions(n, DefaultParseOptions())
}

// ValidateWithOptions checks a tree built in Go against the node shape rules
func ValidateWithOptions(n Node, opts ParseOptions) error {
	type item struct {
		node  Node
		path  string
		depth int
	}

	count := 0
	stack := []item{{node: n, path: "$", depth: 1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		count++
		if opts.MaxNodes > 0 && count > opts.MaxNodes {
			return invalidAt(it.path, "blueprint exceeds %d nodes", opts.MaxNodes)
		}
		if opts.MaxDepth > 0 && it.depth > opts.MaxDepth {
			return invalidAt(it.path, "nesting exceeds %d levels", opts.MaxDepth)
		}

		switch node := it.node.(type) {
		case Text:
			continue
		case *Element:
			if node == nil {
				return invalidAt(it.path, "element must not be nil")
			}
			if strings.TrimSpace(node.Tag) == "" {
				return invalidAt(it.path+"."+KeyType, "type must not be empty")
			}
			seen := make(map[string]bool, len(node.Attributes))
			for _, attr := range node.Attributes {
				attrPath := fmt.Sprintf("%s.%s[%q]", it.path, KeyProps, attr.Name)
				if seen[attr.Name] {
					return invalidAt(attrPath, "duplicate attribute")
				}
				seen[attr.Name] = true
				if err := checkAttribute(attr.Name, attr.Value, attrPath); err != nil {
					return err
				}
			}
			for i := len(node.Children) - 1; i >= 0; i-- {
				stack = append(stack, item{
					node:  node.Children[i],
					path:  fmt.Sprintf("%s.%s[%d]", it.path, KeyChildren, i),
					depth: it.depth + 1,
				})
			}
		default:
			return invalidAt(it.path, "node must be text or an element, got %T", it.node)
		}
	}
	return nil
}
