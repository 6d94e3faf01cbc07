// Package scoring resolves a score for every extracted question row by
// combining the curated mapping, the aggregated verdicts, and any previously
// recorded or carried-forward values.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/a11ylab/scorecard/internal/mapping"
	"github.com/a11ylab/scorecard/internal/template"
	"github.com/a11ylab/scorecard/internal/verdict"
)

// Score is the resolved result for one question row. A nil Score means
// not-applicable/needs-review; WeightedScore is set iff Score is.
type Score struct {
	TableIndex    int    `json:"tableIndex"`
	RowIndex      int    `json:"rowIndex"`
	Score         *int   `json:"score"`
	Weight        int    `json:"weight"`
	WeightedScore *int   `json:"weightedScore"`
	Comment       string `json:"comment"`
	Automatable   bool   `json:"automatable"`
}

// Comments for scoring gaps surfaced for manual review.
const (
	commentNoCoverage   = "No automated test coverage for this criterion."
	commentInconclusive = "Automated checks were inconclusive for this criterion; manual review required."
	commentManual       = "Manual review required."
)

// Config carries the scoring knobs.
type Config struct {
	// MatchThreshold is the fuzzy-match overlap ratio; zero means
	// DefaultMatchThreshold.
	MatchThreshold float64
}

// Scorer scores question rows against one immutable mapping, one verdict
// set, and optional carry-forward values.
type Scorer struct {
	mapping   *mapping.Mapping
	verdicts  map[string]verdict.Verdict
	carry     mapping.CarryForward
	threshold float64
}

// New builds a Scorer. mapping may not be nil; verdicts and carry may be.
func New(m *mapping.Mapping, verdicts map[string]verdict.Verdict, carry mapping.CarryForward, cfg Config) *Scorer {
	threshold := cfg.MatchThreshold
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	return &Scorer{mapping: m, verdicts: verdicts, carry: carry, threshold: threshold}
}

// ScoreProduct scores every question row in the product's category tables.
func (s *Scorer) ScoreProduct(p *template.Product) []Score {
	var out []Score
	for _, t := range p.Categories {
		out = append(out, s.ScoreTable(t)...)
	}
	return out
}

// ScoreTable scores every question row in one table.
func (s *Scorer) ScoreTable(t *template.Table) []Score {
	var out []Score
	for _, row := range t.Questions() {
		out = append(out, s.scoreRow(t.TableIndex, row))
	}
	return out
}

func (s *Scorer) scoreRow(tableIndex int, row *template.Row) Score {
	sc := Score{TableIndex: tableIndex, RowIndex: row.Index, Weight: row.Weight}

	def := s.matchDefinition(row)
	if def != nil {
		sc.Automatable = def.Automatable
		if def.Weight > 0 {
			sc.Weight = def.Weight
		}
	}

	if def != nil && def.Automatable {
		s.scoreAutomated(&sc, row.SectionPrefix)
	} else {
		s.scoreManual(&sc, row)
	}

	if sc.Score != nil {
		w := sc.Weight * *sc.Score
		sc.WeightedScore = &w
	}
	return sc
}

// matchDefinition finds the mapping question whose recorded text fuzzy-
// matches the row's text, under the row's section prefix. nil when the
// section has no entry or nothing matches.
func (s *Scorer) matchDefinition(row *template.Row) *mapping.Question {
	sec := s.mapping.Section(row.SectionPrefix)
	if sec == nil {
		return nil
	}
	for i := range sec.Questions {
		if Match(sec.Questions[i].Text, row.QuestionText, s.threshold) {
			return &sec.Questions[i]
		}
	}
	return nil
}

// scoreAutomated derives the score from every verdict under the section
// prefix: the prefix itself or any third-level criterion below it.
func (s *Scorer) scoreAutomated(sc *Score, prefix string) {
	var ids []string
	for id := range s.verdicts {
		if id == prefix || strings.HasPrefix(id, prefix+".") {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		sc.Comment = commentNoCoverage
		return
	}
	sort.Strings(ids)

	var (
		anyFail, anyIncomplete bool
		totalViolations        int
		totalResources         int
		affected               = make(map[string]bool)
		issues                 []string
		issueSeen              = make(map[string]bool)
	)
	for _, id := range ids {
		v := s.verdicts[id]
		switch v.Status {
		case verdict.StatusFail:
			anyFail = true
		case verdict.StatusIncomplete:
			anyIncomplete = true
		}
		totalViolations += v.TotalViolations
		for _, res := range v.ViolatingResources {
			affected[res] = true
		}
		if v.TotalResources > totalResources {
			totalResources = v.TotalResources
		}
		for _, issue := range v.Issues {
			if issueSeen[issue] {
				continue
			}
			issueSeen[issue] = true
			if len(issues) < 3 {
				issues = append(issues, issue)
			}
		}
	}

	switch {
	case anyFail:
		zero := 0
		sc.Score = &zero
		comment := fmt.Sprintf("Automated checks found %d violation(s) across %d of %d scanned resource(s).",
			totalViolations, len(affected), totalResources)
		if len(issues) > 0 {
			comment += " Issues: " + strings.Join(issues, "; ")
		}
		sc.Comment = comment
	case anyIncomplete:
		sc.Comment = commentInconclusive
	default:
		one := 1
		sc.Score = &one
		sc.Comment = fmt.Sprintf("Automated checks passed on all %d scanned resource(s).", totalResources)
	}
}

// scoreManual preserves a recorded manual value, falls back to a carried-
// forward score, and otherwise leaves the question for review.
func (s *Scorer) scoreManual(sc *Score, row *template.Row) {
	switch row.Score {
	case "1":
		one := 1
		sc.Score = &one
		sc.Comment = row.Comment
		return
	case "0":
		zero := 0
		sc.Score = &zero
		sc.Comment = row.Comment
		return
	}

	if carried, ok := s.carry[mapping.Key(sc.TableIndex, sc.RowIndex)]; ok && carried.Score != nil {
		v := *carried.Score
		sc.Score = &v
		sc.Comment = carried.Comment
		return
	}

	if row.Comment != "" {
		sc.Comment = row.Comment
	} else {
		sc.Comment = commentManual
	}
}

// Updates regroups scores into per-table cell updates for the mutator.
func Updates(scores []Score) map[int]map[int]template.ScoreUpdate {
	out := make(map[int]map[int]template.ScoreUpdate)
	for _, sc := range scores {
		byRow, ok := out[sc.TableIndex]
		if !ok {
			byRow = make(map[int]template.ScoreUpdate)
			out[sc.TableIndex] = byRow
		}
		byRow[sc.RowIndex] = template.ScoreUpdate{
			Score:         sc.Score,
			Weight:        sc.Weight,
			WeightedScore: sc.WeightedScore,
			Comment:       sc.Comment,
		}
	}
	return out
}
