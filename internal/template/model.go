// Package template extracts the semantic table model from a parsed checklist
// document and writes scored values back into it. A document holds one or
// more scored products, each spanning a fixed run of tables: one standards
// table followed by the four principle tables.
package template

import (
	"fmt"

	"github.com/a11ylab/scorecard/internal/oxml"
)

// RowKind classifies one physical table row.
type RowKind int

const (
	RowHeader RowKind = iota
	RowSection
	RowQuestion
	RowSubtotal
	RowEmpty
)

func (k RowKind) String() string {
	switch k {
	case RowHeader:
		return "header"
	case RowSection:
		return "section"
	case RowQuestion:
		return "question"
	case RowSubtotal:
		return "subtotal"
	case RowEmpty:
		return "empty"
	}
	return "unknown"
}

// Row is one classified table row. Index is zero-based within its table.
type Row struct {
	Kind  RowKind
	Index int
	Cells []string

	// Section rows.
	SectionName   string // e.g. "1.1: Non-text Content"
	SectionPrefix string // e.g. "1.1"

	// Question rows. SectionPrefix is inherited from the enclosing section
	// row, empty for a question preceding any section.
	QuestionText  string
	Weight        int
	Score         string // recorded value: "1", "0", "*", or ""
	WeightedScore string
	Comment       string

	node *oxml.Node
}

// Table is one extracted table in body order.
type Table struct {
	Category   string // empty for the standards table
	TableIndex int    // zero-based first-seen order in the body
	Rows       []*Row

	node *oxml.Node
}

// Questions returns the table's question rows in order.
func (t *Table) Questions() []*Row {
	var out []*Row
	for _, r := range t.Rows {
		if r.Kind == RowQuestion {
			out = append(out, r)
		}
	}
	return out
}

// Product is one scored product: a standards table plus the category tables.
type Product struct {
	Name       string
	Standards  *Table
	Categories []*Table
}

// Model is the extracted document model.
type Model struct {
	Products []*Product
	Tables   []*Table // all tables in body order, across products
}

// Product returns the product at index, or a structural error when the index
// is out of range.
func (m *Model) Product(index int) (*Product, error) {
	if index < 0 || index >= len(m.Products) {
		return nil, &LayoutError{
			Reason: fmt.Sprintf("product index %d out of range (document has %d product(s))", index, len(m.Products)),
		}
	}
	return m.Products[index], nil
}

// Layout holds the template-family constants. The defaults describe the one
// template family currently in use; retargeting to a different layout is a
// configuration change, not a code change.
type Layout struct {
	// TablesPerProduct is the length of each product's contiguous table run,
	// including the leading standards table.
	TablesPerProduct int
	// Categories names the tables after the standards table, in order.
	Categories []string
	// SubtotalScoreCol and SubtotalMaxCol are the positional cell indexes in
	// a subtotal row receiving the weighted-score total and the max-possible
	// total. The subtotal row has a different column count than question
	// rows, so these are positions, not labels.
	SubtotalScoreCol int
	SubtotalMaxCol   int
	// FallbackProductName names products whose heading cannot be determined;
	// the 1-based product ordinal is appended.
	FallbackProductName string
}

// DefaultLayout returns the layout of the standard checklist template.
func DefaultLayout() Layout {
	return Layout{
		TablesPerProduct:    5,
		Categories:          []string{"Perceivable", "Operable", "Understandable", "Robust"},
		SubtotalScoreCol:    5,
		SubtotalMaxCol:      7,
		FallbackProductName: "Product",
	}
}

// LayoutError reports a template that does not match the expected shape.
// These are fatal: no output is written.
type LayoutError struct {
	Reason string
}

func (e *LayoutError) Error() string {
	return "template layout: " + e.Reason
}
