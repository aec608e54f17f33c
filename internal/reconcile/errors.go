package reconcile

import "errors"

var (
	// ErrInvalidInvoiceData flags structurally invalid input such as
	// negative amounts. Data the engine can process never errors.
	ErrInvalidInvoiceData = errors.New("invalid_invoice_data")

	// ErrInstallmentNotFound means neither an id nor a positional index
	// resolved to an installment. Callers must surface this; guessing a
	// fallback installment is not an option.
	ErrInstallmentNotFound = errors.New("installment_not_found")

	ErrInvalidStatus = errors.New("invalid_status")
)
