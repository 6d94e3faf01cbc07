package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/a11ylab/scorecard/internal/oxml"
)

var sectionPrefixRe = regexp.MustCompile(`^(\d+\.\d+):`)

// Extract walks the document body once and builds the table/product model.
// The body must contain at least one full product run of tables; anything
// less is a fatal layout error.
func Extract(doc *oxml.Node, layout Layout) (*Model, error) {
	body := doc.Find("w:body")
	if body == nil {
		return nil, &LayoutError{Reason: "document body missing"}
	}

	var (
		headings []bodyHeading
		tables   []*Table
		tablePos []int
	)
	for pos, child := range body.Children {
		if child.Kind != oxml.KindElement {
			continue
		}
		switch child.Name {
		case "w:tbl":
			t := extractTable(child, len(tables))
			tables = append(tables, t)
			tablePos = append(tablePos, pos)
		case "w:p":
			if text, top := headingText(child); text != "" {
				headings = append(headings, bodyHeading{pos: pos, text: text, top: top})
			}
		}
	}

	if len(tables) < layout.TablesPerProduct {
		return nil, &LayoutError{
			Reason: fmt.Sprintf("found %d table(s), need at least %d", len(tables), layout.TablesPerProduct),
		}
	}

	m := &Model{Tables: tables}
	productCount := len(tables) / layout.TablesPerProduct
	for i := 0; i < productCount; i++ {
		run := tables[i*layout.TablesPerProduct : (i+1)*layout.TablesPerProduct]
		p := &Product{
			Standards:  run[0],
			Categories: run[1:],
		}
		for j, cat := range p.Categories {
			if j < len(layout.Categories) {
				cat.Category = layout.Categories[j]
			}
		}

		firstTablePos := tablePos[i*layout.TablesPerProduct]
		p.Name = productName(i, productCount, firstTablePos, headings, layout)
		m.Products = append(m.Products, p)
	}
	return m, nil
}

// bodyHeading is a heading-styled paragraph recorded with its body position.
// top marks a title or level-1 heading.
type bodyHeading struct {
	pos  int
	text string
	top  bool
}

// productName resolves a product's display name from the heading paragraphs.
// A single product takes the document's first top-level heading, or the first
// heading of any level when none is. With several products sharing one
// template, the nearest heading above the product's first table wins, skipping
// headings that name the standards table; indistinguishable headings fall back
// to an ordinal default.
func productName(index, productCount, firstTablePos int, headings []bodyHeading, layout Layout) string {
	fallback := fmt.Sprintf("%s %d", layout.FallbackProductName, index+1)

	if productCount == 1 {
		for _, h := range headings {
			if h.top {
				return h.text
			}
		}
		if len(headings) > 0 {
			return headings[0].text
		}
		return fallback
	}
	for i := len(headings) - 1; i >= 0; i-- {
		h := headings[i]
		if h.pos >= firstTablePos {
			continue
		}
		if strings.Contains(strings.ToLower(h.text), "standard") {
			continue
		}
		return h.text
	}
	return fallback
}

func extractTable(node *oxml.Node, tableIndex int) *Table {
	t := &Table{TableIndex: tableIndex, node: node}
	currentPrefix := ""
	for i, tr := range node.ChildrenNamed("w:tr") {
		row := classifyRow(tr, i)
		if row.Kind == RowSection {
			currentPrefix = row.SectionPrefix
		}
		if row.Kind == RowQuestion {
			row.SectionPrefix = currentPrefix
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// classifyRow types one physical row from its cell texts. The order of the
// checks matters: header and subtotal markers win over the section pattern,
// and only a fully blank row is empty.
func classifyRow(tr *oxml.Node, index int) *Row {
	row := &Row{Index: index, node: tr}
	for _, tc := range tr.ChildrenNamed("w:tc") {
		row.Cells = append(row.Cells, tc.Text())
	}

	first := ""
	if len(row.Cells) > 0 {
		first = strings.TrimSpace(row.Cells[0])
	}

	switch {
	case strings.EqualFold(first, "Questions"):
		row.Kind = RowHeader
	case strings.Contains(strings.ToLower(first), "category subtotal"):
		row.Kind = RowSubtotal
	case sectionPrefixRe.MatchString(first):
		row.Kind = RowSection
		row.SectionName = first
		row.SectionPrefix = sectionPrefixRe.FindStringSubmatch(first)[1]
	case allBlank(row.Cells):
		row.Kind = RowEmpty
	default:
		row.Kind = RowQuestion
		row.QuestionText = first
		if len(row.Cells) > 1 {
			if w, err := strconv.Atoi(strings.TrimSpace(row.Cells[1])); err == nil {
				row.Weight = w
			}
		}
		if len(row.Cells) > 2 {
			row.Score = strings.TrimSpace(row.Cells[2])
		}
		if len(row.Cells) > 3 {
			row.WeightedScore = strings.TrimSpace(row.Cells[3])
		}
		if len(row.Cells) > 4 {
			row.Comment = strings.TrimSpace(strings.Join(row.Cells[4:], ""))
		}
	}
	return row
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// headingText returns the paragraph's text when it carries a heading or title
// style, otherwise "". The second result reports a title or level-1 heading.
func headingText(p *oxml.Node) (string, bool) {
	pPr := p.Find("w:pPr")
	if pPr == nil {
		return "", false
	}
	style := pPr.Find("w:pStyle")
	if style == nil {
		return "", false
	}
	val, _ := style.Attr("w:val")
	lower := strings.ToLower(val)
	if !strings.HasPrefix(lower, "heading") && lower != "title" {
		return "", false
	}
	top := lower == "title" || lower == "heading1" || lower == "heading 1"
	return strings.TrimSpace(p.Text()), top
}
