package extract

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/ticketscan/ticketscan/internal/common"
	"github.com/ticketscan/ticketscan/internal/entity"
)

// itemSumTolerance is the relative deviation between the item-price sum and
// the resolved total above which the advisory warning fires. Tax and
// discounts make exact equality unreliable, so the check never fails the
// result.
const itemSumTolerance = 0.5

// validateResult cross-checks the resolved fields for internal consistency.
// It returns a single aggregated domain error naming the failing
// invariants; callers only invoke it in strict mode.
func validateResult(result *entity.ExtractionResult) error {
	v := common.NewValidator()
	v.Field("total_amount", result.TotalAmount.Value, totalPositive(result.TotalAmount.Value))
	v.Field("date", result.Date.Value, common.ISODate)
	v.Field("merchant_name", result.MerchantName.Value, common.Required, common.MinLength(2))

	if v.HasErrors() {
		return common.NewAppError("EXTRACTION_REJECTED", v.ErrorMessage(), common.ErrValidation)
	}
	return nil
}

// totalPositive adapts the strict total check to a validation rule: a
// receipt with a non-positive total is rejected outright in strict mode.
func totalPositive(total float64) common.ValidationRule {
	return func(fieldName string, _ interface{}) *common.ValidationError {
		if total <= 0 {
			return &common.ValidationError{Field: fieldName, Value: total, Message: "must be > 0"}
		}
		return nil
	}
}

// warnOnItemSumDeviation logs (never fails) when the sum of item prices
// strays more than itemSumTolerance from the resolved total.
func warnOnItemSumDeviation(logger *slog.Logger, result *entity.ExtractionResult) {
	if result.TotalAmount.Value <= 0 || len(result.Items) == 0 {
		return
	}
	sum := decimal.Zero
	for _, item := range result.Items {
		sum = sum.Add(decimal.NewFromFloat(item.TotalPrice))
	}
	total := decimal.NewFromFloat(result.TotalAmount.Value)
	deviation := sum.Sub(total).Abs().Div(total)
	if deviation.GreaterThan(decimal.NewFromFloat(itemSumTolerance)) {
		logger.Warn("item sum deviates from total",
			"item_sum", sum.StringFixed(2),
			"total", total.StringFixed(2),
			"relative_deviation", deviation.StringFixed(2),
		)
	}
}
