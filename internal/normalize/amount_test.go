package normalize

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseAmount", func() {
	When("parsing plain decimal-point amounts", func() {
		It("parses a simple amount", func() {
			Expect(ParseAmount("8.00")).To(Equal(8.00))
		})

		It("parses an integer amount", func() {
			Expect(ParseAmount("42")).To(Equal(42.0))
		})

		It("ignores surrounding currency noise", func() {
			Expect(ParseAmount("8.00€")).To(Equal(8.00))
			Expect(ParseAmount("EUR 12.50")).To(Equal(12.50))
		})
	})

	When("parsing decimal-comma amounts", func() {
		It("treats a trailing comma group of 1-2 digits as the decimal part", func() {
			Expect(ParseAmount("8,00")).To(Equal(8.00))
			Expect(ParseAmount("8,5")).To(Equal(8.50))
		})

		It("handles European thousands with decimal comma", func() {
			Expect(ParseAmount("1 234,56")).To(Equal(1234.56))
			Expect(ParseAmount("1.234,56")).To(Equal(1234.56))
		})
	})

	When("parsing US thousands separators", func() {
		It("treats commas before a decimal point as grouping", func() {
			Expect(ParseAmount("1,234.56")).To(Equal(1234.56))
		})

		It("treats a 3-digit comma group as grouping, not decimals", func() {
			Expect(ParseAmount("1,234")).To(Equal(1234.0))
		})
	})

	When("parsing malformed input", func() {
		It("parses to zero", func() {
			Expect(ParseAmount("")).To(Equal(0.0))
			Expect(ParseAmount("abc")).To(Equal(0.0))
		})

		It("never returns a negative amount", func() {
			Expect(ParseAmount("-5.00")).To(Equal(5.00))
		})
	})

	It("rounds to two decimals", func() {
		Expect(ParseAmount("3.999")).To(Equal(4.00))
	})
})

var _ = Describe("ResolveCurrency", func() {
	It("maps symbols to ISO codes", func() {
		Expect(ResolveCurrency("€")).To(Equal("EUR"))
		Expect(ResolveCurrency("$")).To(Equal("USD"))
		Expect(ResolveCurrency("£")).To(Equal("GBP"))
	})

	It("accepts bare ISO codes in any case", func() {
		Expect(ResolveCurrency("usd")).To(Equal("USD"))
		Expect(ResolveCurrency("CHF")).To(Equal("CHF"))
	})

	It("defaults to EUR when nothing matches", func() {
		Expect(ResolveCurrency("")).To(Equal("EUR"))
		Expect(ResolveCurrency("???")).To(Equal("EUR"))
	})
})
