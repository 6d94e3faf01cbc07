package scoring

import (
	"strings"
	"testing"

	"github.com/a11ylab/scorecard/internal/mapping"
	"github.com/a11ylab/scorecard/internal/template"
	"github.com/a11ylab/scorecard/internal/verdict"
)

func testMapping() *mapping.Mapping {
	return &mapping.Mapping{Sections: []mapping.Section{
		{
			Prefix: "1.1",
			Name:   "1.1: Non-text Content",
			Questions: []mapping.Question{
				{Text: "Images have alt text", Automatable: true, Weight: 3, RuleIDs: []string{"image-alt"}},
				{Text: "CAPTCHAs offer alternatives", Automatable: false},
			},
		},
		{
			Prefix: "1.4",
			Name:   "1.4: Distinguishable",
			Questions: []mapping.Question{
				{Text: "Text has sufficient color contrast", Automatable: true, RuleIDs: []string{"color-contrast"}},
			},
		},
	}}
}

func question(tableIndex, rowIndex int, prefix, text string, weight int, score, comment string) (*template.Table, *template.Row) {
	row := &template.Row{
		Kind:          template.RowQuestion,
		Index:         rowIndex,
		SectionPrefix: prefix,
		QuestionText:  text,
		Weight:        weight,
		Score:         score,
		Comment:       comment,
	}
	tbl := &template.Table{TableIndex: tableIndex, Rows: []*template.Row{row}}
	return tbl, row
}

func scoreOne(t *testing.T, s *Scorer, tbl *template.Table) Score {
	t.Helper()
	scores := s.ScoreTable(tbl)
	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}
	return scores[0]
}

func TestAutomatableFail(t *testing.T) {
	verdicts := verdict.Aggregate([]verdict.ResourceResult{
		{ResourceID: "https://example.com/", Violations: []verdict.Finding{{
			RuleID:      "image-alt",
			Description: "Images must have alternate text",
			Tags:        []string{"wcag2a", "wcag111"},
		}}},
	})
	s := New(testMapping(), verdicts, nil, Config{})

	tbl, _ := question(1, 2, "1.1", "Images have alt text", 3, "", "")
	sc := scoreOne(t, s, tbl)

	if sc.Score == nil || *sc.Score != 0 {
		t.Fatalf("score = %v, want 0", sc.Score)
	}
	if sc.WeightedScore == nil || *sc.WeightedScore != 0 {
		t.Fatalf("weightedScore = %v, want 0", sc.WeightedScore)
	}
	if !sc.Automatable {
		t.Fatal("expected automatable score")
	}
	if !strings.Contains(sc.Comment, "1 violation(s) across 1 of 1") {
		t.Fatalf("comment = %q", sc.Comment)
	}
	if !strings.Contains(sc.Comment, "Images must have alternate text") {
		t.Fatalf("comment lacks issue description: %q", sc.Comment)
	}
}

func TestAutomatableGathersChildCriteria(t *testing.T) {
	// Verdict is recorded under 1.4.3; the question sits under prefix 1.4.
	verdicts := verdict.Aggregate([]verdict.ResourceResult{
		{ResourceID: "a", Violations: []verdict.Finding{{
			RuleID: "color-contrast", Description: "Contrast too low", Tags: []string{"wcag143"},
		}}},
	})
	s := New(testMapping(), verdicts, nil, Config{})

	tbl, _ := question(2, 4, "1.4", "Text has sufficient color contrast", 2, "", "")
	sc := scoreOne(t, s, tbl)
	if sc.Score == nil || *sc.Score != 0 {
		t.Fatalf("score = %v, want 0 from child criterion verdict", sc.Score)
	}
}

func TestAutomatableNoCoverage(t *testing.T) {
	s := New(testMapping(), verdict.Aggregate(nil), nil, Config{})
	tbl, _ := question(1, 2, "1.1", "Images have alt text", 3, "", "")
	sc := scoreOne(t, s, tbl)

	if sc.Score != nil || sc.WeightedScore != nil {
		t.Fatalf("score = %v weighted = %v, want nil", sc.Score, sc.WeightedScore)
	}
	if sc.Comment != "No automated test coverage for this criterion." {
		t.Fatalf("comment = %q", sc.Comment)
	}
}

func TestAutomatableIncomplete(t *testing.T) {
	verdicts := verdict.Aggregate([]verdict.ResourceResult{
		{ResourceID: "a", Incomplete: []verdict.Finding{{RuleID: "image-alt", Tags: []string{"wcag111"}}}},
	})
	s := New(testMapping(), verdicts, nil, Config{})
	tbl, _ := question(1, 2, "1.1", "Images have alt text", 3, "", "")
	sc := scoreOne(t, s, tbl)

	if sc.Score != nil {
		t.Fatalf("score = %v, want nil", sc.Score)
	}
	if !strings.Contains(strings.ToLower(sc.Comment), "manual review") {
		t.Fatalf("comment = %q", sc.Comment)
	}
}

func TestAutomatablePass(t *testing.T) {
	verdicts := verdict.Aggregate([]verdict.ResourceResult{
		{ResourceID: "a", Passes: []verdict.Finding{{RuleID: "image-alt", Tags: []string{"wcag111"}}}},
		{ResourceID: "b", Passes: []verdict.Finding{{RuleID: "image-alt", Tags: []string{"wcag111"}}}},
	})
	s := New(testMapping(), verdicts, nil, Config{})
	tbl, _ := question(1, 2, "1.1", "Images have alt text", 3, "", "")
	sc := scoreOne(t, s, tbl)

	if sc.Score == nil || *sc.Score != 1 {
		t.Fatalf("score = %v, want 1", sc.Score)
	}
	if sc.WeightedScore == nil || *sc.WeightedScore != 3 {
		t.Fatalf("weightedScore = %v, want 3", sc.WeightedScore)
	}
	if !strings.Contains(sc.Comment, "all 2 scanned resource(s)") {
		t.Fatalf("comment = %q", sc.Comment)
	}
}

func TestMappingWeightOverridesRowWeight(t *testing.T) {
	verdicts := verdict.Aggregate([]verdict.ResourceResult{
		{ResourceID: "a", Passes: []verdict.Finding{{RuleID: "image-alt", Tags: []string{"wcag111"}}}},
	})
	s := New(testMapping(), verdicts, nil, Config{})
	// Row says weight 1; the mapping entry says 3.
	tbl, _ := question(1, 2, "1.1", "Images have alt text", 1, "", "")
	sc := scoreOne(t, s, tbl)
	if sc.Weight != 3 || sc.WeightedScore == nil || *sc.WeightedScore != 3 {
		t.Fatalf("weight = %d weighted = %v, want mapping weight 3", sc.Weight, sc.WeightedScore)
	}
}

func TestManualPreservesRecordedScore(t *testing.T) {
	zero := 0
	carry := mapping.CarryForward{mapping.Key(1, 2): {Score: &zero, Comment: "carried"}}
	s := New(testMapping(), nil, carry, Config{})

	// Recorded "1" wins over the conflicting carry-forward 0.
	tbl, _ := question(1, 2, "1.1", "CAPTCHAs offer alternatives", 2, "1", "checked by hand")
	sc := scoreOne(t, s, tbl)
	if sc.Score == nil || *sc.Score != 1 {
		t.Fatalf("score = %v, want recorded 1", sc.Score)
	}
	if sc.Comment != "checked by hand" {
		t.Fatalf("comment = %q, want recorded comment verbatim", sc.Comment)
	}
	if sc.WeightedScore == nil || *sc.WeightedScore != 2 {
		t.Fatalf("weightedScore = %v, want 2", sc.WeightedScore)
	}
}

func TestManualCarryForward(t *testing.T) {
	one := 1
	carry := mapping.CarryForward{mapping.Key(1, 2): {Score: &one, Comment: "verified last quarter"}}
	s := New(testMapping(), nil, carry, Config{})

	tbl, _ := question(1, 2, "1.1", "CAPTCHAs offer alternatives", 2, "", "")
	sc := scoreOne(t, s, tbl)
	if sc.Score == nil || *sc.Score != 1 || sc.Comment != "verified last quarter" {
		t.Fatalf("score = %v comment = %q, want carried values", sc.Score, sc.Comment)
	}
}

func TestManualDefaultComment(t *testing.T) {
	s := New(testMapping(), nil, nil, Config{})
	tbl, _ := question(1, 2, "1.1", "CAPTCHAs offer alternatives", 2, "", "")
	sc := scoreOne(t, s, tbl)
	if sc.Score != nil {
		t.Fatalf("score = %v, want nil", sc.Score)
	}
	if sc.Comment != "Manual review required." {
		t.Fatalf("comment = %q", sc.Comment)
	}
}

func TestManualKeepsExistingComment(t *testing.T) {
	s := New(testMapping(), nil, nil, Config{})
	tbl, _ := question(1, 2, "1.1", "CAPTCHAs offer alternatives", 2, "*", "needs vendor input")
	sc := scoreOne(t, s, tbl)
	if sc.Score != nil || sc.Comment != "needs vendor input" {
		t.Fatalf("score = %v comment = %q", sc.Score, sc.Comment)
	}
}

func TestUnmappedSectionFallsThroughToManual(t *testing.T) {
	s := New(testMapping(), nil, nil, Config{})
	tbl, _ := question(3, 5, "9.9", "Unknown question", 1, "", "")
	sc := scoreOne(t, s, tbl)
	if sc.Score != nil || sc.Automatable {
		t.Fatalf("unmapped section: score = %v automatable = %v", sc.Score, sc.Automatable)
	}
}

func TestNoFuzzyMatchFallsThroughToManual(t *testing.T) {
	s := New(testMapping(), nil, nil, Config{})
	tbl, _ := question(1, 2, "1.1", "Completely unrelated wording here", 1, "", "")
	sc := scoreOne(t, s, tbl)
	if sc.Score != nil || sc.Automatable {
		t.Fatalf("no match: score = %v automatable = %v", sc.Score, sc.Automatable)
	}
}

func TestWeightedScoreLaw(t *testing.T) {
	one := 1
	carry := mapping.CarryForward{mapping.Key(0, 9): {Score: &one, Comment: "c"}}
	verdicts := verdict.Aggregate([]verdict.ResourceResult{
		{ResourceID: "a", Violations: []verdict.Finding{{RuleID: "image-alt", Tags: []string{"wcag111"}}}},
	})
	s := New(testMapping(), verdicts, carry, Config{})

	tables := []*template.Table{}
	add := func(tableIndex, rowIndex int, prefix, text, score string) {
		tbl, _ := question(tableIndex, rowIndex, prefix, text, 2, score, "")
		tables = append(tables, tbl)
	}
	add(1, 2, "1.1", "Images have alt text", "")         // automated fail
	add(1, 3, "1.1", "CAPTCHAs offer alternatives", "1") // recorded
	add(0, 9, "1.1", "CAPTCHAs offer alternatives", "")  // carried
	add(4, 1, "9.9", "No mapping here", "")              // null

	for _, tbl := range tables {
		for _, sc := range s.ScoreTable(tbl) {
			switch {
			case sc.Score == nil && sc.WeightedScore != nil:
				t.Fatalf("weightedScore set with nil score: %+v", sc)
			case sc.Score != nil && sc.WeightedScore == nil:
				t.Fatalf("weightedScore missing with non-nil score: %+v", sc)
			case sc.Score != nil && *sc.WeightedScore != sc.Weight**sc.Score:
				t.Fatalf("weightedScore != weight*score: %+v", sc)
			}
		}
	}
}

func TestSummarize(t *testing.T) {
	one, zero := 1, 0
	scores := []Score{
		{Score: &one, WeightedScore: &one, Automatable: true},
		{Score: &zero, WeightedScore: &zero, Automatable: true},
		{Score: nil},
		{Score: &one, WeightedScore: &one},
	}
	got := Summarize(scores)
	want := Summary{Total: 4, Automatable: 2, Manual: 2, Passing: 2, Failing: 1, NotApplicable: 1}
	if got != want {
		t.Fatalf("Summarize = %+v, want %+v", got, want)
	}
}

func TestUpdatesRegroupsByTable(t *testing.T) {
	one := 1
	scores := []Score{
		{TableIndex: 1, RowIndex: 2, Score: &one, Weight: 3, WeightedScore: &one, Comment: "a"},
		{TableIndex: 1, RowIndex: 4, Comment: "b"},
		{TableIndex: 2, RowIndex: 2, Comment: "c"},
	}
	ups := Updates(scores)
	if len(ups) != 2 || len(ups[1]) != 2 || len(ups[2]) != 1 {
		t.Fatalf("Updates = %v", ups)
	}
	if ups[1][2].Comment != "a" || ups[2][2].Comment != "c" {
		t.Fatalf("Updates misgrouped: %v", ups)
	}
}
