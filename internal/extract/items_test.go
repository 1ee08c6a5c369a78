package extract

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ticketscan/ticketscan/internal/entity"
)

var _ = Describe("dedupeItems", func() {
	item := func(name string, qty, total float64) entity.ReceiptItem {
		return entity.ReceiptItem{Name: name, Quantity: qty, TotalPrice: total}
	}

	It("merges case-insensitive duplicates, keeping the higher quantity", func() {
		out := dedupeItems([]entity.ReceiptItem{
			item("Pain", 1, 3.00),
			item("Lait", 1, 1.20),
			item("pain", 2, 3.00),
		})
		Expect(out).To(HaveLen(2))
		Expect(out[0].Name).To(Equal("pain"))
		Expect(out[0].Quantity).To(Equal(2.0))
		Expect(out[1].Name).To(Equal("Lait"))
	})

	It("is idempotent on its own output", func() {
		in := []entity.ReceiptItem{
			item("Pain", 1, 3.00),
			item("pain", 3, 3.00),
			item("Lait", 1, 1.20),
			item("Pain", 2, 3.00),
		}
		once := dedupeItems(in)
		twice := dedupeItems(once)
		Expect(twice).To(Equal(once))
	})

	It("caps long lists and stays idempotent past the cap", func() {
		var in []entity.ReceiptItem
		for i := 0; i < maxItems+10; i++ {
			in = append(in, item(fmt.Sprintf("article %02d", i), 1, float64(i+1)))
			in = append(in, item(fmt.Sprintf("Article %02d", i), 2, float64(i+1)))
		}
		once := dedupeItems(in)
		Expect(once).To(HaveLen(maxItems))

		twice := dedupeItems(once)
		Expect(twice).To(Equal(once))
		Expect(dedupeItems(twice)).To(Equal(once))
	})
})
