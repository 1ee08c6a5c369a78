package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/google/uuid"

	"github.com/ticketscan/ticketscan/constants"
	"github.com/ticketscan/ticketscan/internal/common"
	"github.com/ticketscan/ticketscan/internal/entity"
)

func sampleResult() entity.ExtractionResult {
	unit := 1.50
	subtotal := entity.AmountField{Value: 7.20, Currency: "EUR", Confidence: 0.7}
	tax := entity.AmountField{Value: 0.80, Currency: "EUR", Confidence: 0.7}
	return entity.ExtractionResult{
		MerchantName:  entity.Field[string]{Value: "CARREFOUR MARKET", Confidence: 0.9, RawText: "CARREFOUR MARKET"},
		Date:          entity.Field[string]{Value: "2023-12-25", Confidence: 0.8},
		TotalAmount:   entity.AmountField{Value: 8.00, Currency: "EUR", Confidence: 0.9},
		Subtotal:      &subtotal,
		Tax:           &tax,
		PaymentMethod: entity.Field[constants.PaymentMethod]{Value: constants.PaymentCard, Confidence: 0.8},
		ReceiptNumber: entity.Field[string]{Value: "12345", Confidence: 0.7},
		Language:      constants.LanguageFrench,
		ReceiptType:   constants.ReceiptTypeRetail,
		Items: []entity.ReceiptItem{
			{Name: "Pain", Quantity: 2, UnitPrice: &unit, TotalPrice: 3.00, Category: "Bakery"},
			{Name: "Lait", Quantity: 1, TotalPrice: 1.20, Category: "Dairy"},
		},
		Summary: "Achat chez CARREFOUR MARKET pour un montant de 8.00€ le 2023-12-25 (2 articles)",
	}
}

var _ = Describe("sqlite repositories", func() {
	var (
		tempDir string
		db      *sql.DB
		ctx     context.Context
		err     error
	)

	BeforeEach(func() {
		ctx = context.Background()
		tempDir, err = os.MkdirTemp("", "ticketscan-test-*")
		Expect(err).NotTo(HaveOccurred())

		db, err = OpenSQLite(filepath.Join(tempDir, "test.db"), discard)
		Expect(err).NotTo(HaveOccurred())
		Expect(Migrate(ctx, db)).To(Succeed())
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
		Expect(os.RemoveAll(tempDir)).To(Succeed())
	})

	It("applies the schema idempotently", func() {
		Expect(Migrate(ctx, db)).To(Succeed())
	})

	Describe("ReceiptRepository", func() {
		var repo ReceiptRepository

		BeforeEach(func() {
			repo = NewReceiptRepository(db, discard)
		})

		It("round-trips a receipt with its items", func() {
			saved, err := repo.Save(ctx, SaveReceiptRequest{
				Result:     sampleResult(),
				Confidence: 0.85,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.ID).NotTo(Equal(uuid.Nil))

			got, err := repo.GetByID(ctx, saved.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.MerchantName).To(Equal("CARREFOUR MARKET"))
			Expect(got.TxDate.Format("2006-01-02")).To(Equal("2023-12-25"))
			Expect(got.Total).To(Equal(8.00))
			Expect(got.CurrencyCode).To(Equal("EUR"))
			Expect(got.Subtotal).NotTo(BeNil())
			Expect(*got.Subtotal).To(Equal(7.20))
			Expect(got.Tax).NotTo(BeNil())
			Expect(*got.Tax).To(Equal(0.80))
			Expect(got.PaymentMethod).NotTo(BeNil())
			Expect(*got.PaymentMethod).To(Equal("CARD"))
			Expect(got.ReceiptNumber).NotTo(BeNil())
			Expect(*got.ReceiptNumber).To(Equal("12345"))
			Expect(got.Confidence).To(Equal(0.85))
			Expect(got.NeedsReview).To(BeFalse())

			Expect(got.Items).To(HaveLen(2))
			Expect(got.Items[0].Name).To(Equal("Pain"))
			Expect(got.Items[0].UnitPrice).NotTo(BeNil())
			Expect(*got.Items[0].UnitPrice).To(Equal(1.50))
			Expect(got.Items[1].Name).To(Equal("Lait"))
			Expect(got.Items[1].UnitPrice).To(BeNil())
		})

		It("omits the payment method when it resolved to UNKNOWN", func() {
			result := sampleResult()
			result.PaymentMethod.Value = constants.PaymentUnknown
			saved, err := repo.Save(ctx, SaveReceiptRequest{Result: result, Confidence: 0.5})
			Expect(err).NotTo(HaveOccurred())

			got, err := repo.GetByID(ctx, saved.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.PaymentMethod).To(BeNil())
		})

		It("rejects a non-ISO transaction date", func() {
			result := sampleResult()
			result.Date.Value = "25/12/2023"
			_, err := repo.Save(ctx, SaveReceiptRequest{Result: result})
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, common.ErrInvalidInput)).To(BeTrue())
		})

		It("returns not-found for an unknown id", func() {
			_, err := repo.GetByID(ctx, uuid.New())
			Expect(errors.Is(err, common.ErrNotFound)).To(BeTrue())
		})

		Describe("List", func() {
			BeforeEach(func() {
				for _, date := range []string{"2023-12-25", "2024-01-05", "2024-02-10"} {
					result := sampleResult()
					result.Date.Value = date
					_, err := repo.Save(ctx, SaveReceiptRequest{Result: result, Confidence: 0.8})
					Expect(err).NotTo(HaveOccurred())
				}
			})

			It("returns all receipts ordered by date descending", func() {
				recs, err := repo.List(ctx, nil, nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(recs).To(HaveLen(3))
				Expect(recs[0].TxDate.Format("2006-01-02")).To(Equal("2024-02-10"))
				Expect(recs[2].TxDate.Format("2006-01-02")).To(Equal("2023-12-25"))
			})

			It("bounds the window inclusively", func() {
				from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
				to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
				recs, err := repo.List(ctx, &from, &to)
				Expect(err).NotTo(HaveOccurred())
				Expect(recs).To(HaveLen(1))
				Expect(recs[0].TxDate.Format("2006-01-02")).To(Equal("2024-01-05"))
			})
		})
	})

	Describe("ExtractJobRepository", func() {
		var repo ExtractJobRepository

		BeforeEach(func() {
			repo = NewExtractJobRepository(db, discard)
		})

		It("creates a job in QUEUED state", func() {
			job, err := repo.Create(ctx, "/tmp/receipt.txt", "TOTAL 8.00€")
			Expect(err).NotTo(HaveOccurred())
			Expect(job.Status).To(Equal(constants.JobStatusQueued))

			got, err := repo.GetByID(ctx, job.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.SourcePath).To(Equal("/tmp/receipt.txt"))
			Expect(got.OcrText).To(Equal("TOTAL 8.00€"))
			Expect(got.Error).To(BeNil())
			Expect(got.ReceiptID).To(BeNil())
		})

		It("rejects empty OCR text", func() {
			_, err := repo.Create(ctx, "", "")
			Expect(errors.Is(err, common.ErrInvalidInput)).To(BeTrue())
		})

		It("walks a job through its lifecycle", func() {
			job, err := repo.Create(ctx, "", "TOTAL 8.00€")
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.MarkRunning(ctx, job.ID)).To(Succeed())
			got, err := repo.GetByID(ctx, job.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(constants.JobStatusRunning))

			receiptID := uuid.New()
			Expect(repo.MarkCompleted(ctx, job.ID, receiptID)).To(Succeed())
			got, err = repo.GetByID(ctx, job.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(constants.JobStatusExtractOK))
			Expect(got.ReceiptID).NotTo(BeNil())
			Expect(*got.ReceiptID).To(Equal(receiptID))
		})

		It("records the failure cause", func() {
			job, err := repo.Create(ctx, "", "garbage")
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.MarkFailed(ctx, job.ID, "extract fields: boom")).To(Succeed())
			got, err := repo.GetByID(ctx, job.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(constants.JobStatusFailed))
			Expect(got.Error).NotTo(BeNil())
			Expect(*got.Error).To(ContainSubstring("boom"))
		})

		It("reports not-found for status updates on unknown jobs", func() {
			_, err := repo.GetByID(ctx, uuid.New())
			Expect(errors.Is(err, common.ErrNotFound)).To(BeTrue())

			err = repo.MarkRunning(ctx, uuid.New())
			Expect(errors.Is(err, common.ErrNotFound)).To(BeTrue())
		})
	})
})
