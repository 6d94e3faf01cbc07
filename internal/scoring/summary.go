package scoring

// Summary is a pure projection over a score list, used for reporting.
type Summary struct {
	Total         int `json:"total"`
	Automatable   int `json:"automatable"`
	Manual        int `json:"manual"`
	Passing       int `json:"passing"`
	Failing       int `json:"failing"`
	NotApplicable int `json:"notApplicable"`
}

// Summarize reduces scores to counts. No side effects.
func Summarize(scores []Score) Summary {
	var s Summary
	for _, sc := range scores {
		s.Total++
		if sc.Automatable {
			s.Automatable++
		} else {
			s.Manual++
		}
		switch {
		case sc.Score == nil:
			s.NotApplicable++
		case *sc.Score == 1:
			s.Passing++
		default:
			s.Failing++
		}
	}
	return s
}
