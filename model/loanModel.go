// model/loan.go
package model

import "time"

type LoanStatus string

const (
	LoanIssued   LoanStatus = "Issued"
	LoanReturned LoanStatus = "Returned"
	LoanOverdue  LoanStatus = "Overdue"
)

// Loan records one borrow event. ReturnedAt is set iff Status is Returned;
// the accrual engine is the only writer of the Issued -> Overdue transition.
type Loan struct {
	ID         int64      `json:"id"`
	BorrowerID int64      `json:"borrower_id"`
	BookID     int64      `json:"book_id"`
	IssuedAt   time.Time  `json:"issued_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Status     LoanStatus `json:"status"`
}
