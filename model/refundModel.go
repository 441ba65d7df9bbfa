// model/refund.go
package model

import "time"

type RefundStatus string

const (
	RefundPending   RefundStatus = "Pending"
	RefundCompleted RefundStatus = "Completed"
)

// Refund reverses a previously successful payment, full amount only.
type Refund struct {
	ID              int64        `json:"id"`
	PaymentID       int64        `json:"payment_id"`
	Amount          float64      `json:"amount"`
	Reason          string       `json:"reason"`
	Status          RefundStatus `json:"status"`
	GatewayRefundID string       `json:"gateway_refund_id"`
	CreatedAt       time.Time    `json:"created_at"`
}
