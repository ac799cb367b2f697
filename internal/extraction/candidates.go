package extraction

// Candidate weights used by the keyword scan. Only their relative order
// matters.
const (
	weightKeywordLine = 10
	weightBeforeDong  = 5
	weightTrailing    = 3
)

// ScoredCandidate is a value found by a fallback heuristic together with the
// priority of the heuristic that found it.
type ScoredCandidate struct {
	Value  string
	Weight int
}

// CandidateScorer accumulates candidates in discovery order.
type CandidateScorer struct {
	candidates []ScoredCandidate
}

// Add records a candidate.
func (c *CandidateScorer) Add(value string, weight int) {
	c.candidates = append(c.candidates, ScoredCandidate{Value: value, Weight: weight})
}

// Len returns the number of recorded candidates.
func (c *CandidateScorer) Len() int {
	return len(c.candidates)
}

// Best returns the candidate with the highest weight. Among equal weights the
// one recorded first wins.
func (c *CandidateScorer) Best() (ScoredCandidate, bool) {
	if len(c.candidates) == 0 {
		return ScoredCandidate{}, false
	}
	best := c.candidates[0]
	for _, cand := range c.candidates[1:] {
		if cand.Weight > best.Weight {
			best = cand
		}
	}
	return best, true
}
