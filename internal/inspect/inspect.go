// Package inspect dumps a quick outline of a template: its heading
// paragraphs and table count. Useful for diagnosing a template whose table
// layout does not match the configured product shape before a scoring run.
package inspect

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// Heading is one heading-styled paragraph in body order.
type Heading struct {
	Level int
	Text  string
}

// Outline summarizes a template's structure.
type Outline struct {
	Headings   []Heading
	TableCount int
	// Products is TableCount / tablesPerProduct; the remainder, if any, is
	// tables that belong to no product.
	Products       int
	LeftoverTables int
}

// File builds the outline for a template on disk.
func File(path string, tablesPerProduct int) (*Outline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat template %s: %w", path, err)
	}
	return Read(f, info.Size(), tablesPerProduct)
}

// Read builds the outline from an open template.
func Read(r io.ReaderAt, size int64, tablesPerProduct int) (*Outline, error) {
	doc, err := docx.Parse(r, size)
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	out := &Outline{}
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Table:
			out.TableCount++
		case *docx.Paragraph:
			level := headingLevel(it)
			text := paragraphText(it)
			if level > 0 && text != "" {
				out.Headings = append(out.Headings, Heading{Level: level, Text: text})
			}
		}
	}

	if tablesPerProduct > 0 {
		out.Products = out.TableCount / tablesPerProduct
		out.LeftoverTables = out.TableCount % tablesPerProduct
	}
	return out, nil
}

// Format renders the outline as indented text for the CLI.
func (o *Outline) Format() string {
	var b strings.Builder
	for _, h := range o.Headings {
		fmt.Fprintf(&b, "%s%s\n", strings.Repeat("  ", h.Level-1), h.Text)
	}
	fmt.Fprintf(&b, "\n%d table(s), %d product(s)", o.TableCount, o.Products)
	if o.LeftoverTables > 0 {
		fmt.Fprintf(&b, ", %d table(s) outside any product run", o.LeftoverTables)
	}
	b.WriteString("\n")
	return b.String()
}

func headingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	for level := 1; level <= 6; level++ {
		if strings.EqualFold(style, fmt.Sprintf("Heading%d", level)) ||
			strings.EqualFold(style, fmt.Sprintf("heading %d", level)) {
			return level
		}
	}
	if strings.EqualFold(style, "Title") {
		return 1
	}
	return 0
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
