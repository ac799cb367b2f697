package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NormalizeAmount", func() {
	DescribeTable("canonicalizes separators",
		func(raw, expected string) {
			Expect(NormalizeAmount(raw)).To(Equal(expected))
		},
		Entry("dots as thousands separators", "1.234.567", "1234567"),
		Entry("comma thousands, dot decimal", "1,234.56", "1234.56"),
		Entry("dot thousands, comma decimal", "1.234,56", "1234.56"),
		Entry("single comma decimal", "123,45", "123.45"),
		Entry("commas as thousands separators", "1,234,567", "1234567"),
		Entry("single comma followed by three digits", "250,000", "250000"),
		Entry("single dot followed by three digits", "150.000", "150000"),
		Entry("single dot decimal", "12.50", "12.50"),
		Entry("no separators", "83000", "83000"),
		Entry("surrounding noise and spaces", " 150.000 đ", "150000"),
		Entry("spaces inside the number", "1 250 000", "1250000"),
		Entry("trailing separator", "2.500.000,", "2500000"),
		Entry("several decimal candidates", "1,2.3.45", "123.45"),
		Entry("leading decimal comma", ",50", ".50"),
		Entry("leading decimal dot", ".50", ".50"),
		Entry("leading noise before a grouped number", ", 150.000", "150000"),
		Entry("empty input", "", ""),
		Entry("no digits at all", "abc", ""),
	)
})

var _ = Describe("IsValidAmount", func() {
	DescribeTable("accepts 2 to 10 digits",
		func(s string, expected bool) {
			Expect(IsValidAmount(s)).To(Equal(expected))
		},
		Entry("single digit", "1", false),
		Entry("eleven digits", "12345678901", false),
		Entry("typical total", "150000", true),
		Entry("two digits", "12", true),
		Entry("ten digits", "1234567890", true),
		Entry("decimal amount", "1234.56", true),
		Entry("empty", "", false),
		Entry("non digits", "12a", false),
	)
})

var _ = Describe("NormalizeText", func() {
	It("converts CRLF and CR line endings", func() {
		Expect(NormalizeText("a\r\nb\rc")).To(Equal("a\nb\nc"))
	})

	It("composes decomposed Vietnamese diacritics", func() {
		decomposed := "So\u0302\u0301 H\u0110"
		Expect(NormalizeText(decomposed)).To(Equal("S\u1ed1 H\u0110"))
	})
})
