package processor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/google/uuid"

	"github.com/ticketscan/ticketscan/constants"
	"github.com/ticketscan/ticketscan/internal/entity"
	"github.com/ticketscan/ticketscan/internal/repository"
)

func TestProcessor(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Processor Suite")
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// mockJobsRepo records status transitions in memory.
type mockJobsRepo struct {
	job         *entity.ExtractJob
	getErr      error
	transitions []string
	failCause   string
	receiptID   uuid.UUID
}

func (m *mockJobsRepo) Create(_ context.Context, sourcePath, ocrText string) (*entity.ExtractJob, error) {
	return nil, errors.New("not used")
}

func (m *mockJobsRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.ExtractJob, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.job, nil
}

func (m *mockJobsRepo) MarkRunning(_ context.Context, id uuid.UUID) error {
	m.transitions = append(m.transitions, "RUNNING")
	m.job.Status = constants.JobStatusRunning
	return nil
}

func (m *mockJobsRepo) MarkCompleted(_ context.Context, id, receiptID uuid.UUID) error {
	m.transitions = append(m.transitions, "EXTRACT_OK")
	m.receiptID = receiptID
	return nil
}

func (m *mockJobsRepo) MarkFailed(_ context.Context, id uuid.UUID, cause string) error {
	m.transitions = append(m.transitions, "FAILED")
	m.failCause = cause
	return nil
}

// mockReceiptsRepo captures the save request.
type mockReceiptsRepo struct {
	saved   *repository.SaveReceiptRequest
	saveErr error
}

func (m *mockReceiptsRepo) Save(_ context.Context, req repository.SaveReceiptRequest) (*entity.Receipt, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.saved = &req
	return &entity.Receipt{ID: uuid.New(), MerchantName: req.Result.MerchantName.Value}, nil
}

func (m *mockReceiptsRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Receipt, error) {
	return nil, errors.New("not used")
}

func (m *mockReceiptsRepo) List(_ context.Context, from, to *time.Time) ([]*entity.Receipt, error) {
	return nil, errors.New("not used")
}

// mockExtractor returns a canned result.
type mockExtractor struct {
	result entity.ExtractionResult
	err    error
}

func (m *mockExtractor) Extract(text string, opts entity.ExtractionOptions) (entity.ExtractionResult, error) {
	return m.result, m.err
}

func confidentResult() entity.ExtractionResult {
	return entity.ExtractionResult{
		MerchantName:  entity.Field[string]{Value: "CARREFOUR MARKET", Confidence: 0.9, RawText: "CARREFOUR MARKET"},
		Date:          entity.Field[string]{Value: "2023-12-25", Confidence: 0.8, RawText: "25/12/2023"},
		TotalAmount:   entity.AmountField{Value: 8.00, Currency: "EUR", Confidence: 0.9, RawText: "8.00€"},
		PaymentMethod: entity.Field[constants.PaymentMethod]{Value: constants.PaymentCard, Confidence: 0.8},
		ReceiptNumber: entity.Field[string]{Value: "12345", Confidence: 0.7},
		Language:      constants.LanguageFrench,
		ReceiptType:   constants.ReceiptTypeRetail,
		Items:         []entity.ReceiptItem{},
		Summary:       "Achat chez CARREFOUR MARKET pour un montant de 8.00€",
	}
}

var _ = Describe("ExtractStage.Run", func() {
	var (
		jobs      *mockJobsRepo
		receipts  *mockReceiptsRepo
		extractor *mockExtractor
		stage     *ExtractStage
		jobID     uuid.UUID
		receiptID uuid.UUID
		err       error
	)

	BeforeEach(func() {
		jobID = uuid.New()
		jobs = &mockJobsRepo{job: &entity.ExtractJob{
			ID:      jobID,
			OcrText: "TOTAL 8.00€",
			Status:  constants.JobStatusQueued,
		}}
		receipts = &mockReceiptsRepo{}
		extractor = &mockExtractor{result: confidentResult()}
		stage = NewExtractStage(discard, Config{MinConfidence: 0.6}, jobs, receipts, extractor)
	})

	JustBeforeEach(func() {
		receiptID, err = stage.Run(context.Background(), jobID)
	})

	When("extraction succeeds with high confidence", func() {
		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("walks the job through RUNNING to EXTRACT_OK", func() {
			Expect(jobs.transitions).To(Equal([]string{"RUNNING", "EXTRACT_OK"}))
		})

		It("links the saved receipt to the job", func() {
			Expect(jobs.receiptID).To(Equal(receiptID))
		})

		It("persists the averaged confidence", func() {
			Expect(receipts.saved).NotTo(BeNil())
			Expect(receipts.saved.Confidence).To(BeNumerically("~", 0.85, 0.001))
		})

		It("does not flag the receipt for review", func() {
			Expect(receipts.saved.NeedsReview).To(BeFalse())
		})
	})

	When("the averaged confidence is below the threshold", func() {
		BeforeEach(func() {
			r := confidentResult()
			r.MerchantName.Confidence = 0.1
			r.Date.Confidence = 0.1
			r.PaymentMethod.Confidence = 0.1
			extractor.result = r
		})

		It("still persists the receipt", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts.saved).NotTo(BeNil())
		})

		It("flags it for review", func() {
			Expect(receipts.saved.NeedsReview).To(BeTrue())
		})
	})

	When("the total resolved to the zero default", func() {
		BeforeEach(func() {
			r := confidentResult()
			r.TotalAmount = entity.AmountField{Value: 0, Currency: "EUR", Confidence: 0.9}
			extractor.result = r
		})

		It("flags the receipt for review", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts.saved.NeedsReview).To(BeTrue())
		})
	})

	When("the merchant resolved from fallback", func() {
		BeforeEach(func() {
			r := confidentResult()
			r.MerchantName = entity.Field[string]{Value: "unknown merchant", Confidence: 0.9}
			extractor.result = r
		})

		It("flags the receipt for review", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts.saved.NeedsReview).To(BeTrue())
		})
	})

	When("the job is not in QUEUED state", func() {
		BeforeEach(func() {
			jobs.job.Status = constants.JobStatusRunning
		})

		It("refuses to run it", func() {
			Expect(err).To(HaveOccurred())
			Expect(jobs.transitions).To(BeEmpty())
		})
	})

	When("the extractor fails", func() {
		BeforeEach(func() {
			extractor.err = errors.New("boom")
		})

		It("marks the job FAILED with the cause", func() {
			Expect(err).To(HaveOccurred())
			Expect(jobs.transitions).To(Equal([]string{"RUNNING", "FAILED"}))
			Expect(jobs.failCause).To(ContainSubstring("boom"))
		})
	})

	When("persisting the receipt fails", func() {
		BeforeEach(func() {
			receipts.saveErr = errors.New("disk full")
		})

		It("marks the job FAILED", func() {
			Expect(err).To(HaveOccurred())
			Expect(jobs.transitions).To(Equal([]string{"RUNNING", "FAILED"}))
		})
	})
})
