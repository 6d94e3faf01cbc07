package template

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/a11ylab/scorecard/internal/oxml"
)

// Cell positions within a question row. The comment region starts at
// commentCell; anything beyond it is a merged-cell fragment that gets
// cleared so the comment is not duplicated.
const (
	scoreCell    = 2
	weightedCell = 3
	commentCell  = 4
)

// ScoreUpdate is one resolved score to write into a question row. A nil
// Score means not-applicable/needs-review and is written as "*".
type ScoreUpdate struct {
	Score         *int
	Weight        int
	WeightedScore *int
	Comment       string
}

// ApplyScores rewrites the score, weighted-score, and comment cells of the
// addressed question rows and recomputes the table's trailing subtotal row.
// Row and table structure is never changed, only cell text, so mutation
// never alters a row's classification.
func ApplyScores(t *Table, updates map[int]ScoreUpdate, layout Layout) error {
	indexes := make([]int, 0, len(updates))
	for i := range updates {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	for _, idx := range indexes {
		if idx < 0 || idx >= len(t.Rows) {
			return &LayoutError{Reason: fmt.Sprintf("table %d has no row %d", t.TableIndex, idx)}
		}
		row := t.Rows[idx]
		if row.Kind != RowQuestion {
			return &LayoutError{Reason: fmt.Sprintf("table %d row %d is %s, not question", t.TableIndex, idx, row.Kind)}
		}
		if err := applyRow(t, row, updates[idx]); err != nil {
			return err
		}
	}

	return recomputeSubtotal(t, updates, layout)
}

func applyRow(t *Table, row *Row, u ScoreUpdate) error {
	cells := row.node.ChildrenNamed("w:tc")
	if len(cells) <= commentCell {
		return &LayoutError{
			Reason: fmt.Sprintf("table %d row %d has %d cell(s), need %d", t.TableIndex, row.Index, len(cells), commentCell+1),
		}
	}

	score := "*"
	if u.Score != nil {
		score = strconv.Itoa(*u.Score)
	}
	weighted := ""
	if u.WeightedScore != nil {
		weighted = strconv.Itoa(*u.WeightedScore)
	}

	setCellText(cells[scoreCell], score)
	setCellText(cells[weightedCell], weighted)
	setCellText(cells[commentCell], u.Comment)
	for _, extra := range cells[commentCell+1:] {
		setCellText(extra, "")
	}

	// Keep the in-memory row in sync with the written cells.
	row.Cells[scoreCell] = score
	row.Cells[weightedCell] = weighted
	row.Cells[commentCell] = u.Comment
	for i := commentCell + 1; i < len(row.Cells); i++ {
		row.Cells[i] = ""
	}
	row.Score = score
	row.WeightedScore = weighted
	row.Comment = u.Comment
	return nil
}

// recomputeSubtotal sums the applied scores into the table's trailing
// subtotal row: the weighted-score total over rows with a non-null score, and
// the max-possible total as the sum of those rows' weights. The subtotal row
// has its own column count, so the two totals land at configured positions.
func recomputeSubtotal(t *Table, updates map[int]ScoreUpdate, layout Layout) error {
	var subtotal *Row
	for _, r := range t.Rows {
		if r.Kind == RowSubtotal {
			subtotal = r
		}
	}
	if subtotal == nil {
		return nil
	}

	var weightedTotal, maxTotal int
	for _, u := range updates {
		if u.Score == nil {
			continue
		}
		if u.WeightedScore != nil {
			weightedTotal += *u.WeightedScore
		}
		maxTotal += u.Weight
	}

	cells := subtotal.node.ChildrenNamed("w:tc")
	writeCol := func(col, val int) error {
		if col < 0 || col >= len(cells) {
			return &LayoutError{
				Reason: fmt.Sprintf("table %d subtotal row has %d cell(s), no column %d", t.TableIndex, len(cells), col),
			}
		}
		setCellText(cells[col], strconv.Itoa(val))
		subtotal.Cells[col] = strconv.Itoa(val)
		return nil
	}
	if err := writeCol(layout.SubtotalScoreCol, weightedTotal); err != nil {
		return err
	}
	return writeCol(layout.SubtotalMaxCol, maxTotal)
}

// setCellText rewrites a table cell to hold exactly one run carrying text.
// The first run's formatting survives; redundant runs and paragraphs left
// over from merged-cell fragmentation are dropped.
func setCellText(cell *oxml.Node, text string) {
	paras := cell.ChildrenNamed("w:p")
	if len(paras) == 0 {
		p := oxml.NewElement("w:p", newRun(text))
		cell.ReplaceChildren(append(cell.Children, p)...)
		return
	}

	// Drop every paragraph after the first, keeping non-paragraph children
	// (cell properties and the like) in place.
	if len(paras) > 1 {
		kept := cell.Children[:0:0]
		seen := false
		for _, c := range cell.Children {
			if c.Kind == oxml.KindElement && c.Name == "w:p" {
				if seen {
					continue
				}
				seen = true
			}
			kept = append(kept, c)
		}
		cell.ReplaceChildren(kept...)
	}

	p := paras[0]
	runs := p.ChildrenNamed("w:r")
	if len(runs) == 0 {
		p.ReplaceChildren(append(p.Children, newRun(text))...)
		return
	}

	// Drop every run after the first.
	if len(runs) > 1 {
		kept := p.Children[:0:0]
		seen := false
		for _, c := range p.Children {
			if c.Kind == oxml.KindElement && c.Name == "w:r" {
				if seen {
					continue
				}
				seen = true
			}
			kept = append(kept, c)
		}
		p.ReplaceChildren(kept...)
	}

	setRunText(runs[0], text)
}

// setRunText replaces the run's text while leaving its properties (w:rPr)
// untouched. A run keeps exactly one text element afterwards.
func setRunText(run *oxml.Node, text string) {
	ts := run.ChildrenNamed("w:t")
	if len(ts) == 0 {
		run.ReplaceChildren(append(run.Children, newTextElement(text))...)
		return
	}

	// Drop every text element after the first.
	if len(ts) > 1 {
		kept := run.Children[:0:0]
		seen := false
		for _, c := range run.Children {
			if c.Kind == oxml.KindElement && c.Name == "w:t" {
				if seen {
					continue
				}
				seen = true
			}
			kept = append(kept, c)
		}
		run.ReplaceChildren(kept...)
	}

	t := ts[0]
	if text != strings.TrimSpace(text) {
		if _, ok := t.Attr("xml:space"); !ok {
			t.SetAttr("xml:space", "preserve")
		}
	}
	t.ReplaceChildren(oxml.NewText(text))
}

func newRun(text string) *oxml.Node {
	return oxml.NewElement("w:r", newTextElement(text))
}

func newTextElement(text string) *oxml.Node {
	t := oxml.NewElement("w:t", oxml.NewText(text))
	if text != strings.TrimSpace(text) {
		t.SetAttr("xml:space", "preserve")
	}
	return t
}
