// Package report renders a human-readable summary of a scoring pass.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/a11ylab/scorecard/internal/scoring"
	"github.com/a11ylab/scorecard/internal/template"
)

// ProductResult pairs one scored product with its resolved scores.
type ProductResult struct {
	Product *template.Product
	Scores  []scoring.Score
}

// Markdown renders the scoring results as a Markdown document: per-category
// weighted totals, the summary counts, and every question left for manual
// review with its comment.
func Markdown(results []ProductResult) string {
	var b strings.Builder
	b.WriteString("# Accessibility Scorecard\n")

	for _, res := range results {
		fmt.Fprintf(&b, "\n## %s\n\n", res.Product.Name)

		byTable := make(map[int][]scoring.Score)
		for _, sc := range res.Scores {
			byTable[sc.TableIndex] = append(byTable[sc.TableIndex], sc)
		}

		b.WriteString("| Category | Weighted Score | Max Possible |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, cat := range res.Product.Categories {
			var got, max int
			for _, sc := range byTable[cat.TableIndex] {
				if sc.Score == nil {
					continue
				}
				got += *sc.WeightedScore
				max += sc.Weight
			}
			fmt.Fprintf(&b, "| %s | %d | %d |\n", cat.Category, got, max)
		}

		summary := scoring.Summarize(res.Scores)
		fmt.Fprintf(&b, "\n%d questions: %d passing, %d failing, %d needing review (%d automatable, %d manual).\n",
			summary.Total, summary.Passing, summary.Failing, summary.NotApplicable,
			summary.Automatable, summary.Manual)

		var review []scoring.Score
		for _, sc := range res.Scores {
			if sc.Score == nil {
				review = append(review, sc)
			}
		}
		if len(review) > 0 {
			b.WriteString("\n### Needs manual review\n\n")
			for _, sc := range review {
				question := questionText(res.Product, sc)
				fmt.Fprintf(&b, "- %s: %s\n", question, sc.Comment)
			}
		}
	}
	return b.String()
}

// HTML renders the Markdown report to HTML.
func HTML(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func questionText(p *template.Product, sc scoring.Score) string {
	for _, cat := range p.Categories {
		if cat.TableIndex != sc.TableIndex {
			continue
		}
		for _, row := range cat.Rows {
			if row.Index == sc.RowIndex {
				return row.QuestionText
			}
		}
	}
	return fmt.Sprintf("table %d, row %d", sc.TableIndex, sc.RowIndex)
}
