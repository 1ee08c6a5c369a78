package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ticketscan/ticketscan/constants"
	"github.com/ticketscan/ticketscan/internal/entity"
)

var _ = Describe("DetectLanguage", func() {
	It("detects French from marker keywords", func() {
		Expect(DetectLanguage("MONTANT TTC\nPAIEMENT CB\nMERCI")).To(Equal(constants.LanguageFrench))
	})

	It("detects English from marker keywords", func() {
		Expect(DetectLanguage("SUBTOTAL\nSALES TAX\nTHANK YOU")).To(Equal(constants.LanguageEnglish))
	})

	It("defaults to French on a tie", func() {
		Expect(DetectLanguage("1234 5678")).To(Equal(constants.LanguageFrench))
	})
})

var _ = Describe("DetectReceiptType", func() {
	It("classifies card payment slips", func() {
		Expect(DetectReceiptType("CARTE BANCAIRE\nSANS CONTACT\nAUTORISATION 123")).
			To(Equal(constants.ReceiptTypeCardPayment))
	})

	It("classifies cash register tickets", func() {
		Expect(DetectReceiptType("TICKET DE CAISSE\nRENDU 2.00")).
			To(Equal(constants.ReceiptTypeCashRegister))
	})

	It("classifies retail receipts", func() {
		Expect(DetectReceiptType("SUPERMARCHE CASINO\nRAYON FRAIS")).
			To(Equal(constants.ReceiptTypeRetail))
	})

	It("returns UNKNOWN when no marker appears", func() {
		Expect(DetectReceiptType("1.00 2.00 3.00")).To(Equal(constants.ReceiptTypeUnknown))
	})
})

var _ = Describe("buildSummary", func() {
	It("omits the merchant clause for the fallback sentinel", func() {
		engine := newTestEngine("2024-01-10")
		r, err := engine.Extract("€ 4.50", entity.ExtractionOptions{})
		Expect(err).NotTo(HaveOccurred())
		if r.MerchantName.Value == defaultMerchant {
			Expect(r.Summary).NotTo(ContainSubstring("chez"))
		}
		Expect(r.Summary).To(HavePrefix("Achat"))
	})

	It("never exceeds the summary cap", func() {
		engine := newTestEngine("2024-01-10")
		r, err := engine.Extract(frenchReceipt, entity.ExtractionOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(len([]rune(r.Summary))).To(BeNumerically("<=", summaryMaxLen))
	})
})
