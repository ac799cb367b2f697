package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CandidateScorer", func() {
	var scorer *CandidateScorer

	BeforeEach(func() {
		scorer = &CandidateScorer{}
	})

	When("no candidates were added", func() {
		It("reports nothing", func() {
			_, ok := scorer.Best()
			Expect(ok).To(BeFalse())
			Expect(scorer.Len()).To(Equal(0))
		})
	})

	When("candidates have different weights", func() {
		BeforeEach(func() {
			scorer.Add("500000", weightTrailing)
			scorer.Add("450000", weightKeywordLine)
			scorer.Add("350000", weightBeforeDong)
		})

		It("picks the highest weight", func() {
			best, ok := scorer.Best()
			Expect(ok).To(BeTrue())
			Expect(best).To(Equal(ScoredCandidate{Value: "450000", Weight: weightKeywordLine}))
		})
	})

	When("several candidates share the highest weight", func() {
		BeforeEach(func() {
			scorer.Add("100000", weightTrailing)
			scorer.Add("200000", weightBeforeDong)
			scorer.Add("300000", weightBeforeDong)
		})

		It("keeps the first one recorded", func() {
			best, _ := scorer.Best()
			Expect(best.Value).To(Equal("200000"))
			Expect(scorer.Len()).To(Equal(3))
		})
	})
})
