package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
)

var (
	tagNamePattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)
	attrNamePattern = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:.-]*$`)
)

// React-style attribute names used by generated blueprints
var attrAliases = map[string]string{
	"className": "class",
	"htmlFor":   "for",
	"tabIndex":  "tabindex",
	"readOnly":  "readonly",
	"maxLength": "maxlength",
	"colSpan":   "colspan",
	"rowSpan":   "rowspan",
}

var urlAttributes = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"formaction": true,
	"poster":     true,
	"cite":       true,
	"xlink:href": true,
}

var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"tel":    true,
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Elements whose text x/net/html writes unescaped. They are omitted with
// their subtree so text can never close them early.
var rawTextElements = map[string]bool{
	"script": true, "style": true, "xmp": true, "iframe": true,
	"noembed": true, "noframes": true, "noscript": true, "plaintext": true,
}

// CSS properties that take plain numbers
var unitlessStyles = map[string]bool{
	"opacity": true, "z-index": true, "font-weight": true, "line-height": true,
	"flex": true, "flex-grow": true, "flex-shrink": true, "order": true, "zoom": true,
}

var styleProperties = []string{
	"color", "background", "background-color", "background-image",
	"border", "border-color", "border-radius", "border-width", "border-style",
	"margin", "margin-top", "margin-right", "margin-bottom", "margin-left",
	"padding", "padding-top", "padding-right", "padding-bottom", "padding-left",
	"width", "height", "max-width", "max-height", "min-width", "min-height",
	"display", "flex", "flex-direction", "flex-wrap", "flex-grow", "flex-shrink",
	"justify-content", "align-items", "align-self", "gap", "order",
	"font-size", "font-weight", "font-style", "font-family", "line-height",
	"letter-spacing", "text-align", "text-decoration", "text-transform",
	"opacity", "z-index", "position", "top", "right", "bottom", "left",
	"overflow", "box-shadow", "cursor", "white-space", "visibility",
}

// HTMLWriter serialises display trees to sanitised HTML
type HTMLWriter struct {
	policy *bluemonday.Policy
}

// NewHTMLWriter creates a writer with the default sanitisation policy
func NewHTMLWriter() *HTMLWriter {
	return &HTMLWriter{policy: DefaultPolicy()}
}

// DefaultPolicy is bluemonday's UGC policy widened to the layout elements
// and presentational attributes generated sites use.
func DefaultPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("header", "footer", "nav", "main", "section", "article", "aside",
		"figure", "figcaption", "button", "label", "form", "input", "textarea", "select", "option")
	p.AllowAttrs("class", "role", "aria-label", "aria-hidden").Globally()
	p.AllowAttrs("type", "name", "value", "placeholder", "disabled", "for", "checked").
		OnElements("button", "label", "input", "textarea", "select", "option")
	p.AllowStyles(styleProperties...).Globally()
	p.AllowDataAttributes()
	return p
}

// Fragment renders the tree as a sanitised HTML fragment
func (w *HTMLWriter) Fragment(root *Element) (string, error) {
	if root == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, toHTML(root)); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	return w.policy.Sanitize(buf.String()), nil
}

// Page renders a complete document for the live site viewer
func (w *HTMLWriter) Page(title string, root *Element) (string, error) {
	body, err := w.Fragment(root)
	if err != nil {
		return "", err
	}
	return document(title, body), nil
}

func document(title, body string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	sb.WriteString("<title>")
	sb.WriteString(html.EscapeString(title))
	sb.WriteString("</title>\n")
	sb.WriteString("<style>.blueprint-error{color:#f87171;border:1px solid #f87171;padding:.5rem;border-radius:.25rem}</style>\n")
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString(body)
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}

// toHTML converts the display tree into x/net/html nodes without recursion
func toHTML(root *Element) *html.Node {
	type item struct {
		el     *Element
		parent *html.Node
	}

	holder := &html.Node{Type: html.DocumentNode}
	stack := []item{{el: root, parent: holder}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.el == nil {
			continue
		}

		switch it.el.Kind {
		case KindText:
			it.parent.AppendChild(&html.Node{Type: html.TextNode, Data: it.el.Text})

		case KindElement:
			tag := strings.ToLower(it.el.Tag)
			if !tagNamePattern.MatchString(it.el.Tag) {
				it.parent.AppendChild(errorNode())
				continue
			}
			if rawTextElements[tag] {
				continue
			}
			n := &html.Node{Type: html.ElementNode, Data: tag, Attr: htmlAttributes(it.el.Attributes)}
			it.parent.AppendChild(n)
			if voidElements[tag] {
				continue
			}
			for i := len(it.el.Children) - 1; i >= 0; i-- {
				stack = append(stack, item{el: it.el.Children[i], parent: n})
			}

		default:
			it.parent.AppendChild(errorNode())
		}
	}

	return holder
}

func errorNode() *html.Node {
	n := &html.Node{
		Type: html.ElementNode,
		Data: "div",
		Attr: []html.Attribute{
			{Key: "class", Val: "blueprint-error"},
			{Key: "role", Val: "alert"},
		},
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: ErrorMessage})
	return n
}

// htmlAttributes applies the attribute security control: event handlers,
// unsafe URLs and values with no HTML form are dropped.
func htmlAttributes(attrs blueprint.Attributes) []html.Attribute {
	out := make([]html.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		name := attr.Name
		if alias, ok := attrAliases[name]; ok {
			name = alias
		}
		name = strings.ToLower(name)
		if !attrNamePattern.MatchString(name) || strings.HasPrefix(name, "on") {
			continue
		}

		val, ok := attributeValue(name, attr.Value)
		if !ok {
			continue
		}
		if urlAttributes[name] && !safeURL(val) {
			continue
		}
		out = append(out, html.Attribute{Key: name, Val: val})
	}
	return out
}

func attributeValue(name string, v blueprint.Value) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		if strings.HasPrefix(name, "aria-") || strings.HasPrefix(name, "data-") {
			return fmt.Sprintf("%t", val), true
		}
		// boolean attributes are present or absent
		return "", val
	case *blueprint.Object:
		if name != "style" {
			return "", false
		}
		css := styleText(val)
		return css, css != ""
	default:
		return "", false
	}
}

// styleText serialises a structured style object to CSS declarations
func styleText(obj *blueprint.Object) string {
	var decls []string
	obj.Range(func(key string, v blueprint.Value) bool {
		prop := cssProperty(key)
		var val string
		switch x := v.(type) {
		case string:
			val = x
		case json.Number:
			val = x.String()
			if !unitlessStyles[prop] && val != "0" {
				val += "px"
			}
		default:
			return true
		}
		if strings.ContainsAny(val, ";{}<>") {
			return true
		}
		decls = append(decls, prop+": "+val)
		return true
	})
	return strings.Join(decls, "; ")
}

// cssProperty converts camelCase keys (backgroundColor) to CSS names
func cssProperty(key string) string {
	var sb strings.Builder
	for i, r := range key {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r + ('a' - 'A'))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func safeURL(raw string) bool {
	u := strings.TrimSpace(raw)
	end := strings.IndexAny(u, "/?#")
	if end < 0 {
		end = len(u)
	}
	colon := strings.Index(u[:end], ":")
	if colon < 0 {
		return true
	}
	scheme := strings.ToLower(strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, u[:colon]))
	return allowedSchemes[scheme]
}
