package extract

import (
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ticketscan/ticketscan/constants"
	"github.com/ticketscan/ticketscan/internal/common"
	"github.com/ticketscan/ticketscan/internal/entity"
)

// fixedClock pins the engine's notion of today for full determinism.
func fixedClock(iso string) func() time.Time {
	t, err := time.Parse("2006-01-02", iso)
	Expect(err).NotTo(HaveOccurred())
	return func() time.Time { return t }
}

func newTestEngine(today string) *Engine {
	return NewEngine(WithLogger(discard), WithClock(fixedClock(today)))
}

const frenchReceipt = `CARREFOUR MARKET
12 rue de la Paix
25/12/2023

2 x Pain            3.00
Lait                1.20
TOTAL TTC 8.00€
Payé par carte bancaire
Ticket No: 12345
Merci de votre visite`

var _ = Describe("Engine.Extract", func() {
	var (
		engine *Engine
		result entity.ExtractionResult
		err    error
	)

	BeforeEach(func() {
		engine = newTestEngine("2024-01-10")
	})

	When("extracting a typical French receipt", func() {
		BeforeEach(func() {
			result, err = engine.Extract(frenchReceipt, entity.ExtractionOptions{})
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("detects French", func() {
			Expect(result.Language).To(Equal(constants.LanguageFrench))
		})

		It("resolves the merchant from the first line with high confidence", func() {
			Expect(result.MerchantName.Value).To(Equal("CARREFOUR MARKET"))
			Expect(result.MerchantName.Confidence).To(BeNumerically(">=", 0.7))
		})

		It("resolves the keyword-anchored total over bare amounts", func() {
			Expect(result.TotalAmount.Value).To(Equal(8.00))
			Expect(result.TotalAmount.Currency).To(Equal("EUR"))
			Expect(result.TotalAmount.Confidence).To(BeNumerically(">=", 0.7))
		})

		It("normalizes the day-first date to ISO form", func() {
			Expect(result.Date.Value).To(Equal("2023-12-25"))
			Expect(result.Date.Confidence).To(BeNumerically(">", 0.5))
		})

		It("canonicalizes the payment method", func() {
			Expect(result.PaymentMethod.Value).To(Equal(constants.PaymentCard))
		})

		It("captures the ticket number", func() {
			Expect(result.ReceiptNumber.Value).To(Equal("12345"))
		})

		It("parses line items with quantities and unit prices", func() {
			Expect(result.Items).To(HaveLen(2))

			Expect(result.Items[0].Name).To(Equal("Pain"))
			Expect(result.Items[0].Quantity).To(Equal(2.0))
			Expect(result.Items[0].TotalPrice).To(Equal(3.00))
			Expect(result.Items[0].UnitPrice).NotTo(BeNil())
			Expect(*result.Items[0].UnitPrice).To(Equal(1.50))

			Expect(result.Items[1].Name).To(Equal("Lait"))
			Expect(result.Items[1].Quantity).To(Equal(1.0))
			Expect(result.Items[1].TotalPrice).To(Equal(1.20))
		})

		It("classifies the receipt from card markers", func() {
			Expect(result.ReceiptType).To(Equal(constants.ReceiptTypeCardPayment))
		})

		It("composes a French summary from the resolved fields", func() {
			Expect(result.Summary).To(ContainSubstring("Achat chez CARREFOUR MARKET"))
			Expect(result.Summary).To(ContainSubstring("8.00€"))
			Expect(result.Summary).To(ContainSubstring("le 2023-12-25"))
			Expect(result.Summary).To(ContainSubstring("2 articles"))
		})

		It("is deterministic across calls", func() {
			again, err := engine.Extract(frenchReceipt, entity.ExtractionOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(result))
		})
	})

	When("a payment line names two methods", func() {
		const text = "EPICERIE DU COIN\nPaiement: especes carte\nTOTAL 4.00€\n"

		It("resolves the same method on every call", func() {
			for i := 0; i < 100; i++ {
				r, err := engine.Extract(text, entity.ExtractionOptions{})
				Expect(err).NotTo(HaveOccurred())
				Expect(r.PaymentMethod.Value).To(Equal(constants.PaymentCash))
			}
		})
	})

	When("extracting an English receipt with dollar amounts", func() {
		BeforeEach(func() {
			result, err = engine.Extract(`WALMART STORE
Receipt #A12345
Subtotal 10.00
Tax 0.80
TOTAL DUE $10.80
Paid by credit card
Thank you`, entity.ExtractionOptions{})
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("detects English", func() {
			Expect(result.Language).To(Equal(constants.LanguageEnglish))
		})

		It("resolves the total in USD", func() {
			Expect(result.TotalAmount.Value).To(Equal(10.80))
			Expect(result.TotalAmount.Currency).To(Equal("USD"))
		})

		It("resolves subtotal and tax as optional amounts", func() {
			Expect(result.Subtotal).NotTo(BeNil())
			Expect(result.Subtotal.Value).To(Equal(10.00))
			Expect(result.Tax).NotTo(BeNil())
			Expect(result.Tax.Value).To(Equal(0.80))
		})

		It("captures the alphanumeric receipt number", func() {
			Expect(result.ReceiptNumber.Value).To(Equal("A12345"))
		})

		It("canonicalizes the payment method", func() {
			Expect(result.PaymentMethod.Value).To(Equal(constants.PaymentCard))
		})
	})

	When("the text yields no usable fields", func() {
		BeforeEach(func() {
			result, err = engine.Extract("zzzz qqqq", entity.ExtractionOptions{})
		})

		It("should not return an error outside strict mode", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("falls back to a zero EUR total at floor confidence", func() {
			Expect(result.TotalAmount.Value).To(Equal(0.0))
			Expect(result.TotalAmount.Currency).To(Equal("EUR"))
			Expect(result.TotalAmount.Confidence).To(Equal(0.1))
		})

		It("falls back to the pinned current date at floor confidence", func() {
			Expect(result.Date.Value).To(Equal("2024-01-10"))
			Expect(result.Date.Confidence).To(Equal(0.1))
		})

		It("defaults the payment method to UNKNOWN", func() {
			Expect(result.PaymentMethod.Value).To(Equal(constants.PaymentUnknown))
		})

		It("leaves optional amounts unset", func() {
			Expect(result.Subtotal).To(BeNil())
			Expect(result.Tax).To(BeNil())
		})

		It("returns an empty, non-nil item slice", func() {
			Expect(result.Items).NotTo(BeNil())
			Expect(result.Items).To(BeEmpty())
		})
	})

	When("strict validation is enabled on unusable text", func() {
		BeforeEach(func() {
			result, err = engine.Extract("zzzz qqqq", entity.ExtractionOptions{StrictValidation: true})
		})

		It("rejects the result", func() {
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, common.ErrValidation)).To(BeTrue())
		})

		It("names the rejection in the error code", func() {
			var appErr *common.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal("EXTRACTION_REJECTED"))
		})
	})

	When("a language is forced via options", func() {
		It("skips detection and uses the requested table", func() {
			result, err = engine.Extract("TOTAL 5.00", entity.ExtractionOptions{Language: constants.LanguageEnglish})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Language).To(Equal(constants.LanguageEnglish))
			Expect(result.TotalAmount.Value).To(Equal(5.00))
		})
	})

	When("duplicate item lines appear", func() {
		BeforeEach(func() {
			result, err = engine.Extract(`BOULANGERIE DUPONT
Pain       3.00
Pain       3.00
2 x Pain   3.00
TOTAL 6.00€`, entity.ExtractionOptions{})
		})

		It("merges them, keeping the higher quantity", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Items).To(HaveLen(1))
			Expect(result.Items[0].Name).To(Equal("Pain"))
			Expect(result.Items[0].Quantity).To(Equal(2.0))
			Expect(result.Items[0].TotalPrice).To(Equal(3.00))
		})
	})

	It("keeps every confidence inside [0,1]", func() {
		for _, text := range []string{frenchReceipt, "zzzz", "TOTAL TOTAL TOTAL 9.99€ à payer total ttc"} {
			r, err := engine.Extract(text, entity.ExtractionOptions{})
			Expect(err).NotTo(HaveOccurred())
			for name, conf := range map[string]float64{
				"merchant":       r.MerchantName.Confidence,
				"date":           r.Date.Confidence,
				"total":          r.TotalAmount.Confidence,
				"payment":        r.PaymentMethod.Confidence,
				"receipt_number": r.ReceiptNumber.Confidence,
			} {
				Expect(conf).To(BeNumerically(">=", 0.1), name)
				Expect(conf).To(BeNumerically("<=", 1.0), name)
			}
		}
	})

	It("produces JSON that satisfies the result schema", func() {
		r, err := engine.Extract(frenchReceipt, entity.ExtractionOptions{})
		Expect(err).NotTo(HaveOccurred())

		payload, err := json.Marshal(r)
		Expect(err).NotTo(HaveOccurred())
		Expect(ValidateResultJSON(payload)).To(Succeed())
	})
})
