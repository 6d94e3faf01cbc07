// Package oxml provides an order-preserving XML tree for the narrow OOXML
// subset used by scored templates (tables, rows, cells, paragraphs, runs,
// text). Untouched subtrees serialize back byte-for-byte: element nodes keep
// their original start/end tag bytes and text nodes keep their raw character
// data, so a parse/serialize round trip with no mutation reproduces the input
// exactly. Nodes built in code serialize in a canonical form instead.
package oxml

import (
	"strconv"
	"strings"
)

// Kind discriminates node variants in the tree.
type Kind int

const (
	// KindDocument is the synthetic root holding the prolog and root element.
	KindDocument Kind = iota
	// KindElement is a tagged element with attributes and ordered children.
	KindElement
	// KindText is raw character data (entities left encoded).
	KindText
	// KindRaw is a verbatim non-element construct: XML declaration, comment,
	// processing instruction, DOCTYPE, or CDATA section.
	KindRaw
)

// Attr is one attribute parsed off a start tag. Value holds the raw source
// bytes between the quotes, entities still encoded.
type Attr struct {
	Name  string
	Value string
}

// Node is one node in the parsed tree. Sibling order is document reading
// order and is preserved through every operation except explicit child
// replacement.
type Node struct {
	Kind     Kind
	Name     string // qualified element name, e.g. "w:tbl"
	Attrs    []Attr
	Children []*Node
	Raw      string // KindText / KindRaw: verbatim source bytes

	// Original tag bytes for elements parsed from input. Empty for nodes
	// built in code, which serialize canonically.
	startTag string
	endTag   string
}

// NewElement builds an element node that serializes in canonical form.
func NewElement(name string, children ...*Node) *Node {
	return &Node{Kind: KindElement, Name: name, Children: children}
}

// NewText builds a text node from plain (unescaped) text.
func NewText(s string) *Node {
	return &Node{Kind: KindText, Raw: escapeText(s)}
}

// SetAttr adds or replaces an attribute on a code-built element. The element
// loses its original tag bytes and serializes canonically afterwards.
func (n *Node) SetAttr(name, value string) {
	n.startTag = ""
	n.endTag = ""
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = escapeText(value)
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: escapeText(value)})
}

// ReplaceChildren swaps the node's children. An element that was self-closing
// in the source loses its original tag bytes so the new children are emitted.
func (n *Node) ReplaceChildren(children ...*Node) {
	if n.startTag != "" && n.endTag == "" {
		n.startTag = ""
	}
	n.Children = children
}

// Attr returns the decoded value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return unescape(a.Value), true
		}
	}
	return "", false
}

// FindAll returns every element named name in the subtree, depth-first,
// including matches nested inside other matches.
func (n *Node) FindAll(name string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.Kind == KindElement && cur.Name == name {
			out = append(out, cur)
		}
		for _, c := range cur.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// Find returns the first element named name in the subtree, depth-first, or
// nil if none exists.
func (n *Node) Find(name string) *Node {
	if n.Kind == KindElement && n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if m := c.Find(name); m != nil {
			return m
		}
	}
	return nil
}

// ChildrenNamed returns the direct child elements named name, in order.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == KindElement && c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Text returns the concatenated decoded character data of the subtree.
// Attributes and raw constructs contribute nothing.
func (n *Node) Text() string {
	var buf strings.Builder
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.Kind == KindText {
			buf.WriteString(unescape(cur.Raw))
			return
		}
		for _, c := range cur.Children {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// escapeText encodes the characters that cannot appear literally in character
// data or double-quoted attribute values.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// unescape decodes the predefined entities and numeric character references.
// Unrecognized references are left as-is.
func unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var buf strings.Builder
	buf.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '&' {
			buf.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			buf.WriteString(s[i:])
			break
		}
		ref := s[i+1 : i+end]
		if r, ok := decodeRef(ref); ok {
			buf.WriteRune(r)
		} else {
			buf.WriteString(s[i : i+end+1])
		}
		i += end + 1
	}
	return buf.String()
}

func decodeRef(ref string) (rune, bool) {
	switch ref {
	case "amp":
		return '&', true
	case "lt":
		return '<', true
	case "gt":
		return '>', true
	case "quot":
		return '"', true
	case "apos":
		return '\'', true
	}
	if strings.HasPrefix(ref, "#x") || strings.HasPrefix(ref, "#X") {
		if n, err := strconv.ParseInt(ref[2:], 16, 32); err == nil {
			return rune(n), true
		}
		return 0, false
	}
	if strings.HasPrefix(ref, "#") {
		if n, err := strconv.ParseInt(ref[1:], 10, 32); err == nil {
			return rune(n), true
		}
	}
	return 0, false
}
