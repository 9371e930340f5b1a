package billing

// PaymentStatus is the display state of a record: Unpaid → Partial → Paid.
type PaymentStatus string

const (
	StatusUnpaid  PaymentStatus = "unpaid"
	StatusPartial PaymentStatus = "partial"
	StatusPaid    PaymentStatus = "paid"
)

// StatusView is the read-side payment summary of a record.
type StatusView struct {
	Status    PaymentStatus `json:"status"`
	Remaining float64       `json:"remaining"`
	// Diverged is set when the stored paid flag disagrees with paidAmount and total,
	// e.g. the price was raised after the record was marked paid.
	Diverged bool `json:"diverged,omitempty"`
}

// DeriveStatus computes the payment status shown to admins. Paid requires both the stored
// flag and a non-positive remaining amount.
func DeriveStatus(paid bool, paidAmount, total float64) StatusView {
	remaining := addAmounts(total, -paidAmount)
	view := StatusView{
		Remaining: remaining,
		Diverged:  paid != (roundAmount(paidAmount) >= roundAmount(total)),
	}
	switch {
	case paid && remaining <= 0:
		view.Status = StatusPaid
	case paidAmount > 0:
		view.Status = StatusPartial
	default:
		view.Status = StatusUnpaid
	}
	if view.Remaining < 0 {
		view.Remaining = 0
	}
	return view
}
