// model/payment.go
package model

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentSuccess  PaymentStatus = "Success"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
)

// Payment records one settlement attempt against a fine. At most one
// Success payment may exist per GatewayOrderID (enforced by a partial
// unique index, see payments_order_success_uq).
type Payment struct {
	ID               int64         `json:"id"`
	FineID           int64         `json:"fine_id"`
	BorrowerID       int64         `json:"borrower_id"`
	GatewayOrderID   string        `json:"gateway_order_id"`
	GatewayPaymentID *string       `json:"gateway_payment_id,omitempty"`
	Amount           float64       `json:"amount"`
	Status           PaymentStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}
