package reconcile

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
)

// MutateInstallmentStatus applies a status change to exactly one installment
// inside the given invoice and returns the updated installment. The invoice
// is mutated in place; persisting it is the caller's responsibility.
//
// The identifier resolves by stored id first, then as a zero-based index for
// legacy records without ids. Anything else is a hard installment_not_found;
// there is deliberately no "first pending installment" fallback.
func MutateInstallmentStatus(
	inv *invoicedomain.Invoice,
	identifier string,
	status invoicedomain.InstallmentStatus,
	paidAmount *decimal.Decimal,
	now time.Time,
) (*invoicedomain.Installment, error) {
	if !invoicedomain.ValidInstallmentStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if paidAmount != nil && paidAmount.IsNegative() {
		return nil, fmt.Errorf("%w: negative paid amount", ErrInvalidInvoiceData)
	}

	idx, err := resolveInstallment(inv.Installments, identifier)
	if err != nil {
		return nil, err
	}

	in := &inv.Installments[idx]
	in.Status = status
	updatedAt := now
	in.UpdatedAt = &updatedAt

	if status == invoicedomain.InstallmentStatusPaid || paidAmount != nil {
		if paidAmount != nil {
			in.PaidAmount = *paidAmount
		} else {
			in.PaidAmount = in.Amount
		}
		paidDate := now
		in.PaidDate = &paidDate
	}

	return in, nil
}

// resolveInstallment locates an installment by id, or by zero-based index
// when no stored id matches.
func resolveInstallment(installments []invoicedomain.Installment, identifier string) (int, error) {
	for idx, in := range installments {
		if in.ID != "" && in.ID == identifier {
			return idx, nil
		}
	}

	if pos, err := strconv.Atoi(identifier); err == nil {
		if pos >= 0 && pos < len(installments) {
			return pos, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrInstallmentNotFound, identifier)
}
