package render

import (
	"encoding/json"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
)

// Kind identifies the variant of a display element
type Kind int

const (
	KindText Kind = iota
	KindElement
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindElement:
		return "element"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Element is one node of the display tree.
//
// Text leaves carry Text. Elements carry Tag, Attributes (verbatim, in source
// order) and Children. Error placeholders carry Err and the visible message
// in Text.
type Element struct {
	Kind       Kind
	Tag        string
	Attributes blueprint.Attributes
	Children   []*Element
	Text       string
	Err        *MalformedNodeError
}

func textLeaf(s string) *Element {
	return &Element{Kind: KindText, Text: s}
}

func placeholder(err *MalformedNodeError) *Element {
	return &Element{Kind: KindError, Text: ErrorMessage, Err: err}
}

// Errors returns every contained failure in document order
func (e *Element) Errors() []*MalformedNodeError {
	var errs []*MalformedNodeError
	e.walk(func(el *Element) {
		if el.Kind == KindError && el.Err != nil {
			errs = append(errs, el.Err)
		}
	})
	return errs
}

// walk visits the tree in document order without recursion
func (e *Element) walk(fn func(*Element)) {
	if e == nil {
		return
	}
	stack := []*Element{e}
	for len(stack) > 0 {
		el := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(el)
		for i := len(el.Children) - 1; i >= 0; i-- {
			if el.Children[i] != nil {
				stack = append(stack, el.Children[i])
			}
		}
	}
}

// Value converts the display tree into an ordered JSON value:
//
//	{"kind":"element","tag":"p","attributes":{...},"children":[...]}
//	{"kind":"text","text":"Hi"}
//	{"kind":"error","message":"...","path":"$.children[0]","reason":"..."}
func (e *Element) Value() blueprint.Value {
	type item struct {
		el   *Element
		slot *blueprint.Value
	}

	var root blueprint.Value
	stack := []item{{el: e, slot: &root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.el == nil {
			continue
		}

		obj := blueprint.NewObject()
		obj.Set("kind", it.el.Kind.String())
		*it.slot = obj

		switch it.el.Kind {
		case KindText:
			obj.Set("text", it.el.Text)
		case KindError:
			obj.Set("message", it.el.Text)
			if it.el.Err != nil {
				obj.Set("path", it.el.Err.Path)
				obj.Set("reason", it.el.Err.Reason)
			}
		case KindElement:
			obj.Set("tag", it.el.Tag)
			obj.Set("attributes", it.el.Attributes.Object())
			kids := make([]blueprint.Value, len(it.el.Children))
			obj.Set("children", kids)
			for i := len(it.el.Children) - 1; i >= 0; i-- {
				stack = append(stack, item{el: it.el.Children[i], slot: &kids[i]})
			}
		}
	}
	return root
}

// MarshalJSON writes the display tree as ordered JSON
func (e *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Value())
}
