package oxml

import (
	"strings"
	"testing"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
	<w:body>
		<w:p>
			<w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
			<w:r><w:t>Product Alpha</w:t></w:r>
		</w:p>
		<w:tbl>
			<w:tr>
				<w:tc><w:p><w:r><w:t xml:space="preserve">Questions </w:t></w:r></w:p></w:tc>
				<w:tc><w:p><w:r><w:t>Weight</w:t></w:r></w:p></w:tc>
			</w:tr>
		</w:tbl>
		<!-- trailing comment -->
	</w:body>
</w:document>
`

func TestRoundTripUntouched(t *testing.T) {
	inputs := []string{
		sampleDoc,
		`<a/>`,
		`<a b="1" c='two'><d>x &amp; y</d><!--note--><?pi data?></a>`,
		`<a><![CDATA[<raw>]]></a>`,
		"<a \n  b=\"1\"\t>text</a >",
	}
	for _, in := range inputs {
		doc, err := Parse([]byte(in))
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		out := string(Serialize(doc))
		if out != in {
			t.Fatalf("round trip mismatch:\n in: %q\nout: %q", in, out)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	inputs := []string{
		``,
		`no markup at all`,
		`<a><b></a></b>`,
		`<a`,
		`<a b=unquoted>x</a>`,
		`<a><b></a>`,
		`<a/><b/>`,
	}
	for _, in := range inputs {
		if _, err := Parse([]byte(in)); err == nil {
			t.Fatalf("Parse(%q): expected error, got nil", in)
		}
	}
}

func TestFindAllIncludesNested(t *testing.T) {
	doc, err := Parse([]byte(`<r><p id="1"><p id="2"/></p><p id="3"/></r>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ps := doc.FindAll("p")
	if len(ps) != 3 {
		t.Fatalf("expected 3 <p> nodes, got %d", len(ps))
	}
	for i, want := range []string{"1", "2", "3"} {
		got, ok := ps[i].Attr("id")
		if !ok || got != want {
			t.Fatalf("node %d: id=%q ok=%v, want %q", i, got, ok, want)
		}
	}
}

func TestChildrenNamedDirectOnly(t *testing.T) {
	doc, err := Parse([]byte(`<tbl><tr><tc><tr/></tc></tr><tr/></tbl>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tbl := doc.Find("tbl")
	if got := len(tbl.ChildrenNamed("tr")); got != 2 {
		t.Fatalf("expected 2 direct <tr> children, got %d", got)
	}
}

func TestTextDecodesEntities(t *testing.T) {
	doc, err := Parse([]byte(`<p>a &amp; b &lt;c&gt; &#65;&#x42; &apos;</p>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := doc.Find("p").Text()
	want := `a & b <c> AB '`
	if got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
}

func TestTextSkipsAttributesAndRaw(t *testing.T) {
	doc, err := Parse([]byte(`<p a="hidden"><!--hidden-->shown<b>inner</b></p>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := doc.Find("p").Text(); got != "showninner" {
		t.Fatalf("Text() = %q, want %q", got, "showninner")
	}
}

func TestReplaceChildrenSerializesNewText(t *testing.T) {
	doc, err := Parse([]byte(`<c><t>old</t><t2/></c>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	doc.Find("t").ReplaceChildren(NewText("new <1>"))
	doc.Find("t2").ReplaceChildren(NewText("x"))

	out := string(Serialize(doc))
	if !strings.Contains(out, "<t>new &lt;1&gt;</t>") {
		t.Fatalf("replaced text not serialized: %q", out)
	}
	if !strings.Contains(out, "<t2>x</t2>") {
		t.Fatalf("self-closing node not rebuilt: %q", out)
	}
}

func TestNewElementCanonicalForm(t *testing.T) {
	r := NewElement("w:r", NewElement("w:t", NewText("hi")))
	r.Children[0].SetAttr("xml:space", "preserve")
	got := string(Serialize(&Node{Kind: KindDocument, Children: []*Node{r}}))
	want := `<w:r><w:t xml:space="preserve">hi</w:t></w:r>`
	if got != want {
		t.Fatalf("Serialize = %q, want %q", got, want)
	}
}
