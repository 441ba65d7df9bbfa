// Package accrualsvc implements the overdue sweep: it classifies open loans,
// marks them Overdue past their due date, and keeps Pending fines in step
// with the number of chargeable days.
package accrualsvc

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/bablookumarmuz/Library-Management/model"
	finerepo "github.com/bablookumarmuz/Library-Management/repository/fine"
	loanrepo "github.com/bablookumarmuz/Library-Management/repository/loan"
)

// Report summarizes one accrual pass. Counters are observability only; the
// pass succeeds whenever it finishes iterating all open loans.
type Report struct {
	ScannedLoans    int           `json:"scanned_loans"`
	NewlyOverdue    int           `json:"newly_overdue"`
	FinesCreated    int           `json:"fines_created"`
	FinesUpdated    int           `json:"fines_updated"`
	Inconsistencies int           `json:"inconsistencies"`
	Failures        []LoanFailure `json:"failures,omitempty"`
}

// LoanFailure records a loan whose processing failed without aborting the pass.
type LoanFailure struct {
	LoanID int64  `json:"loan_id"`
	Err    string `json:"error"`
}

type Service interface {
	// Run executes one accrual pass for the given instant. Re-running with
	// the same now and unchanged loans is idempotent: no duplicate fines,
	// no changed amounts.
	Run(ctx context.Context, now time.Time) (*Report, error)
}

type service struct {
	lr        loanrepo.Repo
	fr        finerepo.Repo
	graceDays int
	dailyRate float64
	log       *slog.Logger
}

func New(lr loanrepo.Repo, fr finerepo.Repo, graceDays int, dailyRate float64, log *slog.Logger) Service {
	return &service{lr: lr, fr: fr, graceDays: graceDays, dailyRate: dailyRate, log: log}
}

func (s *service) Run(ctx context.Context, now time.Time) (*Report, error) {
	loans, err := s.lr.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	rep := &Report{ScannedLoans: len(loans)}
	for _, loan := range loans {
		if err := s.processLoan(ctx, now, loan, rep); err != nil {
			rep.Failures = append(rep.Failures, LoanFailure{LoanID: loan.ID, Err: err.Error()})
			if s.log != nil {
				s.log.Error("accrual: loan failed", "loan_id", loan.ID, "err", err)
			}
		}
	}
	return rep, nil
}

func (s *service) processLoan(ctx context.Context, now time.Time, loan model.Loan, rep *Report) error {
	days := overdueDays(now, loan.DueAt)
	if days == 0 {
		return nil
	}

	if loan.Status == model.LoanIssued {
		flipped, err := s.lr.MarkOverdue(ctx, loan.ID)
		if err != nil {
			return err
		}
		if flipped {
			rep.NewlyOverdue++
		}
	}

	chargeable := days - s.graceDays
	if chargeable <= 0 {
		// Still inside the grace period, no fine yet.
		return nil
	}
	total := float64(chargeable) * s.dailyRate

	fine, err := s.fr.ByLoanID(ctx, loan.ID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		f := &model.Fine{
			LoanID:      loan.ID,
			BorrowerID:  loan.BorrowerID,
			OverdueDays: days,
			DailyRate:   s.dailyRate,
			TotalAmount: total,
			Status:      model.FinePending,
		}
		if err := s.fr.Insert(ctx, f); err != nil {
			return err
		}
		rep.FinesCreated++
		return nil
	case err != nil:
		return err
	}

	if fine.Status == model.FinePaid {
		// The fine was settled but its loan is still out accruing days. Never
		// reopen a paid fine; flag for manual follow-up instead.
		rep.Inconsistencies++
		if s.log != nil {
			s.log.Warn("accrual: paid fine with outstanding loan",
				"loan_id", loan.ID, "fine_id", fine.ID, "overdue_days", days)
		}
		return nil
	}

	if fine.OverdueDays == days && fine.TotalAmount == total {
		// Nothing changed since the last pass.
		return nil
	}

	updated, err := s.fr.UpdateAccrual(ctx, fine.ID, days, total)
	if err != nil {
		return err
	}
	if !updated {
		// Lost a race with a payment confirmation, same as the Paid case.
		rep.Inconsistencies++
		return nil
	}
	rep.FinesUpdated++
	return nil
}

// overdueDays is ceil((now - due) / 1 day), clamped to zero when the loan is
// not yet due.
func overdueDays(now, due time.Time) int {
	if !now.After(due) {
		return 0
	}
	const day = 24 * time.Hour
	d := now.Sub(due)
	days := int(d / day)
	if d%day != 0 {
		days++
	}
	return days
}
