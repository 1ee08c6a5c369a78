package constants

// ReceiptType is a coarse classification of the source document. It is
// contextual metadata only and never alters which patterns run.
type ReceiptType string

const (
	ReceiptTypeRetail       ReceiptType = "RETAIL"
	ReceiptTypeCardPayment  ReceiptType = "CARD_PAYMENT"
	ReceiptTypeCashRegister ReceiptType = "CASH_REGISTER"
	ReceiptTypeUnknown      ReceiptType = "UNKNOWN"
)

var allReceiptTypes = []ReceiptType{
	ReceiptTypeRetail,
	ReceiptTypeCardPayment,
	ReceiptTypeCashRegister,
	ReceiptTypeUnknown,
}

// ReceiptTypesAsStrings returns the stable enum values for schema building.
func ReceiptTypesAsStrings() []string {
	result := make([]string, len(allReceiptTypes))
	for i, rt := range allReceiptTypes {
		result[i] = string(rt)
	}
	return result
}
