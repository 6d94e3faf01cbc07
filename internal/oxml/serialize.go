package oxml

import (
	"bytes"
)

// Serialize writes the tree back to markup. Nodes parsed from input and not
// structurally modified reproduce their source bytes exactly; nodes built in
// code are written canonically.
func Serialize(n *Node) []byte {
	var buf bytes.Buffer
	writeNode(&buf, n)
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, n *Node) {
	switch n.Kind {
	case KindDocument:
		for _, c := range n.Children {
			writeNode(buf, c)
		}
	case KindText, KindRaw:
		buf.WriteString(n.Raw)
	case KindElement:
		writeElement(buf, n)
	}
}

func writeElement(buf *bytes.Buffer, n *Node) {
	if n.startTag != "" {
		buf.WriteString(n.startTag)
		if n.endTag == "" {
			return // self-closing in the source
		}
		for _, c := range n.Children {
			writeNode(buf, c)
		}
		buf.WriteString(n.endTag)
		return
	}

	buf.WriteByte('<')
	buf.WriteString(n.Name)
	for _, a := range n.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		buf.WriteString(a.Value)
		buf.WriteByte('"')
	}
	if len(n.Children) == 0 {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	for _, c := range n.Children {
		writeNode(buf, c)
	}
	buf.WriteString("</")
	buf.WriteString(n.Name)
	buf.WriteByte('>')
}
