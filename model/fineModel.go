// model/fine.go
package model

import "time"

type FineStatus string

const (
	FinePending FineStatus = "Pending"
	FinePaid    FineStatus = "Paid"
)

// Fine is created lazily the first time a loan crosses the grace threshold.
// TotalAmount = max(0, OverdueDays - graceDays) * DailyRate, recomputed on
// every accrual pass while Pending; frozen once Paid.
type Fine struct {
	ID          int64      `json:"id"`
	LoanID      int64      `json:"loan_id"`
	BorrowerID  int64      `json:"borrower_id"`
	OverdueDays int        `json:"overdue_days"`
	DailyRate   float64    `json:"daily_rate"`
	TotalAmount float64    `json:"total_amount"`
	Status      FineStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}
