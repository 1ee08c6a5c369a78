package normalize

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseDate", func() {
	expectDate := func(raw, want string) {
		got, ok := ParseDate(raw)
		Expect(ok).To(BeTrue(), "expected %q to parse", raw)
		Expect(got).To(Equal(want))
	}

	expectReject := func(raw string) {
		_, ok := ParseDate(raw)
		Expect(ok).To(BeFalse(), "expected %q to be rejected", raw)
	}

	When("parsing numeric dates", func() {
		It("resolves an unambiguous day-month-year", func() {
			expectDate("25/12/2023", "2023-12-25")
			expectDate("25-12-2023", "2023-12-25")
			expectDate("25.12.2023", "2023-12-25")
		})

		It("resolves an ISO-ordered date from a leading year", func() {
			expectDate("2023/12/25", "2023-12-25")
		})

		It("assumes day-first when both orders are plausible", func() {
			expectDate("01/02/2023", "2023-02-01")
		})

		It("expands two-digit years with the pivot", func() {
			expectDate("25/12/24", "2024-12-25")
			expectDate("25/12/99", "1999-12-25")
		})
	})

	When("parsing textual dates", func() {
		It("handles French day-first spellings", func() {
			expectDate("25 décembre 2023", "2023-12-25")
			expectDate("25 decembre 2023", "2023-12-25")
			expectDate("1er janvier 2024", "2024-01-01")
		})

		It("handles English month-first spellings", func() {
			expectDate("December 25, 2023", "2023-12-25")
			expectDate("Dec 25 2023", "2023-12-25")
		})

		It("handles English day-first spellings", func() {
			expectDate("25 December 2023", "2023-12-25")
		})
	})

	When("parsing invalid dates", func() {
		It("rejects impossible calendar dates", func() {
			expectReject("31/02/2023")
			expectReject("25/13/2023")
			expectReject("00/12/2023")
		})

		It("rejects unknown month names", func() {
			expectReject("25 flurble 2023")
		})

		It("rejects empty and non-date input", func() {
			expectReject("")
			expectReject("not a date")
		})

		It("rejects years outside the plausible window", func() {
			expectReject("25/12/1850")
			expectReject("25/12/2150")
		})
	})
})

var _ = Describe("PivotYear", func() {
	It("maps two-digit years below 50 to the 2000s", func() {
		Expect(PivotYear(0)).To(Equal(2000))
		Expect(PivotYear(24)).To(Equal(2024))
		Expect(PivotYear(49)).To(Equal(2049))
	})

	It("maps two-digit years from 50 up to the 1900s", func() {
		Expect(PivotYear(50)).To(Equal(1950))
		Expect(PivotYear(99)).To(Equal(1999))
	})

	It("passes four-digit years through", func() {
		Expect(PivotYear(2023)).To(Equal(2023))
	})
})

var _ = Describe("ResolveDMY", func() {
	It("treats a leading component above 31 as the year", func() {
		y, m, d, ok := ResolveDMY(2023, 12, 25)
		Expect(ok).To(BeTrue())
		Expect(y).To(Equal(2023))
		Expect(m).To(Equal(time.December))
		Expect(d).To(Equal(25))
	})

	It("treats a trailing component above 31 as the year", func() {
		y, m, d, ok := ResolveDMY(25, 12, 2023)
		Expect(ok).To(BeTrue())
		Expect(y).To(Equal(2023))
		Expect(m).To(Equal(time.December))
		Expect(d).To(Equal(25))
	})

	It("rejects components that form no valid date", func() {
		_, _, _, ok := ResolveDMY(30, 2, 2023)
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("MonthByName", func() {
	It("resolves French and English spellings", func() {
		m, ok := MonthByName("août")
		Expect(ok).To(BeTrue())
		Expect(m).To(Equal(time.August))

		m, ok = MonthByName("August")
		Expect(ok).To(BeTrue())
		Expect(m).To(Equal(time.August))
	})

	It("rejects unknown names", func() {
		_, ok := MonthByName("smarch")
		Expect(ok).To(BeFalse())
	})
})
