package oxml

import (
	"fmt"
	"strings"
)

// Parse reads a complete XML document into a tree. Malformed input is a fatal
// error; there is no partial-tree recovery.
func Parse(data []byte) (*Node, error) {
	p := &parser{src: string(data)}
	doc := &Node{Kind: KindDocument}

	for !p.eof() {
		n, err := p.next()
		if err != nil {
			return nil, err
		}
		if n == nil {
			break
		}
		if n.Kind == KindElement && hasRoot(doc) {
			return nil, p.errf("multiple root elements")
		}
		doc.Children = append(doc.Children, n)
	}

	if !hasRoot(doc) {
		return nil, fmt.Errorf("oxml: no root element")
	}
	return doc, nil
}

func hasRoot(doc *Node) bool {
	for _, c := range doc.Children {
		if c.Kind == KindElement {
			return true
		}
	}
	return false
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("oxml: %s at byte %d", fmt.Sprintf(format, args...), p.pos)
}

// next parses one node at the current position: character data, a raw
// construct, or an element with its full subtree.
func (p *parser) next() (*Node, error) {
	if p.eof() {
		return nil, nil
	}
	if p.src[p.pos] != '<' {
		return p.charData(), nil
	}
	rest := p.src[p.pos:]
	switch {
	case strings.HasPrefix(rest, "<?"):
		return p.rawUntil("?>")
	case strings.HasPrefix(rest, "<!--"):
		return p.rawUntil("-->")
	case strings.HasPrefix(rest, "<![CDATA["):
		return p.rawUntil("]]>")
	case strings.HasPrefix(rest, "<!"):
		return p.rawUntil(">")
	case strings.HasPrefix(rest, "</"):
		return nil, p.errf("unexpected end tag")
	default:
		return p.element()
	}
}

func (p *parser) charData() *Node {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '<' {
		p.pos++
	}
	return &Node{Kind: KindText, Raw: p.src[start:p.pos]}
}

func (p *parser) rawUntil(close string) (*Node, error) {
	end := strings.Index(p.src[p.pos:], close)
	if end < 0 {
		return nil, p.errf("unterminated %q construct", p.src[p.pos:min(p.pos+4, len(p.src))])
	}
	raw := p.src[p.pos : p.pos+end+len(close)]
	p.pos += end + len(close)
	return &Node{Kind: KindRaw, Raw: raw}, nil
}

func (p *parser) element() (*Node, error) {
	start := p.pos
	name, selfClosing, attrs, err := p.startTag()
	if err != nil {
		return nil, err
	}
	n := &Node{
		Kind:     KindElement,
		Name:     name,
		Attrs:    attrs,
		startTag: p.src[start:p.pos],
	}
	if selfClosing {
		return n, nil
	}

	closing := "</" + name
	for {
		if p.eof() {
			return nil, fmt.Errorf("oxml: missing end tag for <%s>", name)
		}
		if strings.HasPrefix(p.src[p.pos:], "</") {
			if !strings.HasPrefix(p.src[p.pos:], closing) {
				return nil, p.errf("mismatched end tag for <%s>", name)
			}
			endStart := p.pos
			gt := strings.IndexByte(p.src[p.pos:], '>')
			if gt < 0 {
				return nil, p.errf("unterminated end tag for <%s>", name)
			}
			// Only whitespace may follow the name before '>'.
			if trailer := p.src[endStart+len(closing) : p.pos+gt]; strings.TrimSpace(trailer) != "" {
				return nil, p.errf("mismatched end tag for <%s>", name)
			}
			p.pos += gt + 1
			n.endTag = p.src[endStart:p.pos]
			return n, nil
		}
		child, err := p.next()
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
}

// startTag consumes "<name attrs>" or "<name attrs/>" and returns the parsed
// name and attributes; the verbatim bytes are sliced off by the caller.
func (p *parser) startTag() (name string, selfClosing bool, attrs []Attr, err error) {
	p.pos++ // consume '<'
	nameStart := p.pos
	for p.pos < len(p.src) && !isTagDelim(p.src[p.pos]) {
		p.pos++
	}
	name = p.src[nameStart:p.pos]
	if name == "" {
		return "", false, nil, p.errf("empty element name")
	}

	for {
		p.skipSpace()
		if p.eof() {
			return "", false, nil, fmt.Errorf("oxml: unterminated start tag <%s>", name)
		}
		switch p.src[p.pos] {
		case '>':
			p.pos++
			return name, false, attrs, nil
		case '/':
			if !strings.HasPrefix(p.src[p.pos:], "/>") {
				return "", false, nil, p.errf("malformed start tag <%s>", name)
			}
			p.pos += 2
			return name, true, attrs, nil
		}

		attrStart := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != '=' && !isTagDelim(p.src[p.pos]) {
			p.pos++
		}
		attrName := p.src[attrStart:p.pos]
		if attrName == "" || p.eof() || p.src[p.pos] != '=' {
			return "", false, nil, p.errf("malformed attribute in <%s>", name)
		}
		p.pos++ // '='
		if p.eof() || (p.src[p.pos] != '"' && p.src[p.pos] != '\'') {
			return "", false, nil, p.errf("unquoted attribute value in <%s>", name)
		}
		quote := p.src[p.pos]
		p.pos++
		valStart := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != quote {
			p.pos++
		}
		if p.eof() {
			return "", false, nil, p.errf("unterminated attribute value in <%s>", name)
		}
		attrs = append(attrs, Attr{Name: attrName, Value: p.src[valStart:p.pos]})
		p.pos++ // closing quote
	}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func isTagDelim(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '>', '/':
		return true
	}
	return false
}
