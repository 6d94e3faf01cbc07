// Package verdict collapses raw per-resource rule-check results into one
// verdict per success criterion. Criterion ids are decoded from rule tags;
// any resource with a violation fails the criterion, an inconclusive result
// without violations marks it incomplete, and everything else passes.
package verdict

import (
	"regexp"
)

// Finding is one rule result reported for a scanned resource.
type Finding struct {
	RuleID      string   `json:"ruleId"`
	Description string   `json:"description"`
	Impact      string   `json:"impact"`
	Tags        []string `json:"tags"`
}

// ResourceResult holds the categorized findings for one scanned resource.
// A resource that failed to scan is represented by empty lists.
type ResourceResult struct {
	ResourceID string    `json:"resourceId"`
	Violations []Finding `json:"violations"`
	Passes     []Finding `json:"passes"`
	Incomplete []Finding `json:"incomplete"`
}

// Status is the resolved state of one criterion across all resources.
type Status string

const (
	StatusPass       Status = "pass"
	StatusFail       Status = "fail"
	StatusIncomplete Status = "incomplete"
)

// maxIssues caps the deduplicated issue descriptions kept per criterion.
const maxIssues = 3

// Verdict aggregates one criterion across all scanned resources.
type Verdict struct {
	CriterionID string
	Status      Status
	// TotalViolations counts every violation finding across resources, not
	// deduplicated.
	TotalViolations int
	// ViolatingResources lists the distinct resources with at least one
	// violation, in first-seen order.
	ViolatingResources []string
	TotalResources     int
	// Issues holds up to three deduplicated descriptions, first-seen order.
	Issues []string
}

var criterionTagRe = regexp.MustCompile(`^wcag(\d)(\d)(\d+)$`)

// DecodeTag turns a tag like "wcag1411" into the criterion id "1.4.11".
// Tags that do not carry a criterion ("wcag2a", "best-practice") return
// ok=false and are ignored by aggregation.
func DecodeTag(tag string) (string, bool) {
	m := criterionTagRe.FindStringSubmatch(tag)
	if m == nil {
		return "", false
	}
	return m[1] + "." + m[2] + "." + m[3], true
}

type accumulator struct {
	violations    int
	violatingRes  []string
	violatingSeen map[string]bool
	incompleteRes map[string]bool
	issues        []string
	issueSeen     map[string]bool
}

func newAccumulator() *accumulator {
	return &accumulator{
		violatingSeen: make(map[string]bool),
		incompleteRes: make(map[string]bool),
		issueSeen:     make(map[string]bool),
	}
}

// Aggregate resolves a verdict per criterion id from the scan results.
// All-empty inputs are fine and simply yield no coverage.
func Aggregate(results []ResourceResult) map[string]Verdict {
	accs := make(map[string]*accumulator)
	acc := func(id string) *accumulator {
		a, ok := accs[id]
		if !ok {
			a = newAccumulator()
			accs[id] = a
		}
		return a
	}

	for _, res := range results {
		for _, f := range res.Violations {
			for _, id := range criteriaOf(f) {
				a := acc(id)
				a.violations++
				if !a.violatingSeen[res.ResourceID] {
					a.violatingSeen[res.ResourceID] = true
					a.violatingRes = append(a.violatingRes, res.ResourceID)
				}
				desc := StripMarkup(f.Description)
				if desc != "" && !a.issueSeen[desc] {
					a.issueSeen[desc] = true
					if len(a.issues) < maxIssues {
						a.issues = append(a.issues, desc)
					}
				}
			}
		}
		for _, f := range res.Incomplete {
			for _, id := range criteriaOf(f) {
				acc(id).incompleteRes[res.ResourceID] = true
			}
		}
		for _, f := range res.Passes {
			for _, id := range criteriaOf(f) {
				acc(id) // pass coverage still counts as a known criterion
			}
		}
	}

	verdicts := make(map[string]Verdict, len(accs))
	for id, a := range accs {
		v := Verdict{
			CriterionID:        id,
			TotalViolations:    a.violations,
			ViolatingResources: a.violatingRes,
			TotalResources:     len(results),
			Issues:             a.issues,
		}
		switch {
		case a.violations > 0:
			v.Status = StatusFail
		case len(a.incompleteRes) > 0:
			v.Status = StatusIncomplete
		default:
			v.Status = StatusPass
		}
		verdicts[id] = v
	}
	return verdicts
}

func criteriaOf(f Finding) []string {
	var ids []string
	for _, tag := range f.Tags {
		if id, ok := DecodeTag(tag); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
