package blueprint

import (
	"encoding/json"
	"fmt"
)

// Wire-format keys. "tag" and "attributes" are accepted on input as aliases.
const (
	KeyType       = "type"
	KeyTag        = "tag"
	KeyProps      = "props"
	KeyAttributes = "attributes"
	KeyChildren   = "children"
)

// Node is one entry of a blueprint tree: either Text or *Element.
type Node interface {
	isNode()
	// Value converts the node back into its ordered JSON form
	Value() Value
}

// Text is a leaf rendered verbatim, never interpreted as markup
type Text string

// Element is a tagged node with declarative attributes and ordered children
type Element struct {
	Tag        string
	Attributes Attributes
	Children   []Node
}

// Attribute is a single declarative attribute. Value is a JSON scalar or an
// *Object holding structured data such as inline styles.
type Attribute struct {
	Name  string
	Value Value
}

// Attributes keeps attributes in source order
type Attributes []Attribute

func (Text) isNode()     {}
func (*Element) isNode() {}

// Value returns the text itself
func (t Text) Value() Value { return string(t) }

// Get looks up an attribute by name
func (a Attributes) Get(name string) (Value, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return nil, false
}

// Object converts the attributes into an ordered JSON object
func (a Attributes) Object() *Object {
	obj := NewObject()
	for _, attr := range a {
		obj.Set(attr.Name, attr.Value)
	}
	return obj
}

// NewElement builds an element from a tag and children
func NewElement(tag string, children ...Node) *Element {
	return &Element{Tag: tag, Children: children}
}

// WithAttr appends an attribute and returns the element for chaining
func (e *Element) WithAttr(name string, value Value) *Element {
	e.Attributes = append(e.Attributes, Attribute{Name: name, Value: value})
	return e
}

// Value converts the element tree into ordered JSON form.
// The walk uses an explicit stack, so tree depth is bounded only by memory.
func (e *Element) Value() Value {
	type item struct {
		node Node
		slot *Value
	}

	var root Value
	stack := []item{{node: e, slot: &root}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n := it.node.(type) {
		case Text:
			*it.slot = string(n)
		case *Element:
			if n == nil {
				*it.slot = nil
				continue
			}
			obj := NewObject()
			obj.Set(KeyType, n.Tag)
			obj.Set(KeyProps, n.Attributes.Object())
			kids := make([]Value, len(n.Children))
			obj.Set(KeyChildren, kids)
			*it.slot = obj
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, item{node: n.Children[i], slot: &kids[i]})
			}
		default:
			*it.slot = nil
		}
	}

	return root
}

// Clone returns a deep copy of the tree, attribute values included
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	type item struct{ src, dst *Element }

	root := &Element{}
	stack := []item{{src: e, dst: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		it.dst.Tag = it.src.Tag
		if len(it.src.Attributes) > 0 {
			it.dst.Attributes = make(Attributes, len(it.src.Attributes))
			for i, attr := range it.src.Attributes {
				it.dst.Attributes[i] = Attribute{Name: attr.Name, Value: CloneValue(attr.Value)}
			}
		}
		if len(it.src.Children) == 0 {
			continue
		}
		it.dst.Children = make([]Node, len(it.src.Children))
		for i, child := range it.src.Children {
			switch c := child.(type) {
			case *Element:
				if c == nil {
					continue
				}
				cp := &Element{}
				it.dst.Children[i] = cp
				stack = append(stack, item{src: c, dst: cp})
			default:
				it.dst.Children[i] = child
			}
		}
	}
	return root
}

// MarshalJSON writes the element in the {"type","props","children"} wire format
func (e *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Value())
}

// UnmarshalJSON parses and validates an element tree
func (e *Element) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*e = *parsed
	return nil
}

// Stats summarises a tree
type Stats struct {
	Elements int
	Texts    int
	Depth    int
}

// Measure counts the nodes of a tree and its depth
func Measure(root Node) Stats {
	type item struct {
		node  Node
		depth int
	}

	var s Stats
	stack := []item{{root, 1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.depth > s.Depth {
			s.Depth = it.depth
		}
		switch n := it.node.(type) {
		case Text:
			s.Texts++
		case *Element:
			if n == nil {
				continue
			}
			s.Elements++
			for _, c := range n.Children {
				stack = append(stack, item{c, it.depth + 1})
			}
		}
	}
	return s
}

// String returns a short description for logs
func (s Stats) String() string {
	return fmt.Sprintf("elements=%d texts=%d depth=%d", s.Elements, s.Texts, s.Depth)
}
