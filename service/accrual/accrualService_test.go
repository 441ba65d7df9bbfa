package accrualsvc

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bablookumarmuz/Library-Management/model"
	finerepo "github.com/bablookumarmuz/Library-Management/repository/fine"
	loanrepo "github.com/bablookumarmuz/Library-Management/repository/loan"
)

// --- fakes ---

type fakeLoanRepo struct {
	loans []*model.Loan
}

var _ loanrepo.Repo = (*fakeLoanRepo)(nil)

func (f *fakeLoanRepo) ListOpen(ctx context.Context) ([]model.Loan, error) {
	var out []model.Loan
	for _, l := range f.loans {
		if l.Status != model.LoanReturned {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLoanRepo) MarkOverdue(ctx context.Context, loanID int64) (bool, error) {
	for _, l := range f.loans {
		if l.ID == loanID && l.Status == model.LoanIssued {
			l.Status = model.LoanOverdue
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLoanRepo) Insert(ctx context.Context, tx *sql.Tx, l *model.Loan) error { return nil }
func (f *fakeLoanRepo) GetForUpdate(ctx context.Context, tx *sql.Tx, loanID int64) (*model.Loan, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeLoanRepo) MarkReturned(ctx context.Context, tx *sql.Tx, loanID int64, at time.Time) error {
	return nil
}
func (f *fakeLoanRepo) ListByBorrower(ctx context.Context, borrowerID int64) ([]loanrepo.HistoryRow, error) {
	return nil, nil
}
func (f *fakeLoanRepo) ListAll(ctx context.Context) ([]loanrepo.HistoryRow, error) { return nil, nil }

type fakeFineRepo struct {
	byLoan    map[int64]*model.Fine
	nextID    int64
	insertErr error
}

var _ finerepo.Repo = (*fakeFineRepo)(nil)

func newFakeFineRepo() *fakeFineRepo {
	return &fakeFineRepo{byLoan: map[int64]*model.Fine{}, nextID: 1}
}

func (f *fakeFineRepo) Insert(ctx context.Context, fine *model.Fine) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	fine.ID = f.nextID
	f.nextID++
	cp := *fine
	f.byLoan[fine.LoanID] = &cp
	return nil
}

func (f *fakeFineRepo) ByID(ctx context.Context, id int64) (*model.Fine, error) {
	for _, fine := range f.byLoan {
		if fine.ID == id {
			cp := *fine
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeFineRepo) ByLoanID(ctx context.Context, loanID int64) (*model.Fine, error) {
	fine, ok := f.byLoan[loanID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *fine
	return &cp, nil
}

func (f *fakeFineRepo) UpdateAccrual(ctx context.Context, id int64, overdueDays int, total float64) (bool, error) {
	for _, fine := range f.byLoan {
		if fine.ID == id {
			if fine.Status != model.FinePending {
				return false, nil
			}
			fine.OverdueDays = overdueDays
			fine.TotalAmount = total
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFineRepo) MarkPaid(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	return false, nil
}
func (f *fakeFineRepo) ListByBorrower(ctx context.Context, borrowerID int64) ([]finerepo.Row, error) {
	return nil, nil
}
func (f *fakeFineRepo) ListAll(ctx context.Context) ([]finerepo.Row, error) { return nil, nil }

// --- helpers ---

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func issuedLoan(id int64, due time.Time) *model.Loan {
	return &model.Loan{
		ID:         id,
		BorrowerID: 100 + id,
		BookID:     200 + id,
		IssuedAt:   due.Add(-days(14)),
		DueAt:      due,
		Status:     model.LoanIssued,
	}
}

// grace 2 days, rate 5/day throughout, matching the production defaults.
func newService(lr loanrepo.Repo, fr finerepo.Repo) Service {
	return New(lr, fr, 2, 5, nil)
}

// --- tests ---

func TestRun_NotYetDue_NoFine(t *testing.T) {
	lr := &fakeLoanRepo{loans: []*model.Loan{issuedLoan(1, t0.Add(days(3)))}}
	fr := newFakeFineRepo()

	rep, err := newService(lr, fr).Run(context.Background(), t0)
	require.NoError(t, err)
	require.Equal(t, 1, rep.ScannedLoans)
	require.Zero(t, rep.NewlyOverdue)
	require.Zero(t, rep.FinesCreated)
	require.Empty(t, fr.byLoan)
	require.Equal(t, model.LoanIssued, lr.loans[0].Status)
}

func TestRun_WithinGrace_OverdueButNoFine(t *testing.T) {
	// Exactly gracePeriodDays overdue: chargeable days is zero.
	lr := &fakeLoanRepo{loans: []*model.Loan{issuedLoan(1, t0.Add(-days(2)))}}
	fr := newFakeFineRepo()

	rep, err := newService(lr, fr).Run(context.Background(), t0)
	require.NoError(t, err)
	require.Equal(t, 1, rep.NewlyOverdue)
	require.Zero(t, rep.FinesCreated)
	require.Empty(t, fr.byLoan)
	require.Equal(t, model.LoanOverdue, lr.loans[0].Status)
}

func TestRun_PastGrace_CreatesFine(t *testing.T) {
	// One day past the grace period: totalAmount = dailyRate.
	lr := &fakeLoanRepo{loans: []*model.Loan{issuedLoan(1, t0.Add(-days(3)))}}
	fr := newFakeFineRepo()

	rep, err := newService(lr, fr).Run(context.Background(), t0)
	require.NoError(t, err)
	require.Equal(t, 1, rep.FinesCreated)

	fine := fr.byLoan[1]
	require.NotNil(t, fine)
	require.Equal(t, 3, fine.OverdueDays)
	require.Equal(t, 5.0, fine.TotalAmount)
	require.Equal(t, 5.0, fine.DailyRate)
	require.Equal(t, model.FinePending, fine.Status)
	require.Equal(t, int64(101), fine.BorrowerID)
}

func TestRun_Scenario_Day17AndDay20(t *testing.T) {
	// Issued day 0, due day 14, grace 2, rate 5/day.
	due := t0.Add(days(14))
	lr := &fakeLoanRepo{loans: []*model.Loan{issuedLoan(1, due)}}
	fr := newFakeFineRepo()
	svc := newService(lr, fr)

	// Day 17: overdueDays=3, chargeableDays=1, total=5.
	rep, err := svc.Run(context.Background(), t0.Add(days(17)))
	require.NoError(t, err)
	require.Equal(t, 1, rep.FinesCreated)
	require.Equal(t, 3, fr.byLoan[1].OverdueDays)
	require.Equal(t, 5.0, fr.byLoan[1].TotalAmount)

	// Day 20: overdueDays=6, chargeableDays=4, total=20.
	rep, err = svc.Run(context.Background(), t0.Add(days(20)))
	require.NoError(t, err)
	require.Equal(t, 1, rep.FinesUpdated)
	require.Zero(t, rep.FinesCreated)
	require.Equal(t, 6, fr.byLoan[1].OverdueDays)
	require.Equal(t, 20.0, fr.byLoan[1].TotalAmount)
}

func TestRun_Idempotent(t *testing.T) {
	lr := &fakeLoanRepo{loans: []*model.Loan{issuedLoan(1, t0.Add(-days(5)))}}
	fr := newFakeFineRepo()
	svc := newService(lr, fr)

	_, err := svc.Run(context.Background(), t0)
	require.NoError(t, err)
	first := *fr.byLoan[1]

	rep, err := svc.Run(context.Background(), t0)
	require.NoError(t, err)
	require.Zero(t, rep.FinesCreated)
	require.Zero(t, rep.FinesUpdated)
	require.Zero(t, rep.NewlyOverdue)
	require.Len(t, fr.byLoan, 1)
	require.Equal(t, first, *fr.byLoan[1])
}

func TestRun_PaidFineIsFrozen(t *testing.T) {
	lr := &fakeLoanRepo{loans: []*model.Loan{issuedLoan(1, t0.Add(-days(10)))}}
	lr.loans[0].Status = model.LoanOverdue

	fr := newFakeFineRepo()
	fr.byLoan[1] = &model.Fine{
		ID: 7, LoanID: 1, BorrowerID: 101,
		OverdueDays: 5, DailyRate: 5, TotalAmount: 15,
		Status: model.FinePaid,
	}
	paid := *fr.byLoan[1]

	rep, err := newService(lr, fr).Run(context.Background(), t0)
	require.NoError(t, err)
	require.Equal(t, 1, rep.Inconsistencies)
	require.Zero(t, rep.FinesUpdated)
	require.Equal(t, paid, *fr.byLoan[1])

	// Repeated passes keep flagging without ever touching the record.
	rep, err = newService(lr, fr).Run(context.Background(), t0.Add(days(3)))
	require.NoError(t, err)
	require.Equal(t, 1, rep.Inconsistencies)
	require.Equal(t, paid, *fr.byLoan[1])
}

func TestRun_PerLoanFailureIsolation(t *testing.T) {
	lr := &fakeLoanRepo{loans: []*model.Loan{
		issuedLoan(1, t0.Add(-days(4))),
		issuedLoan(2, t0.Add(-days(4))),
		issuedLoan(3, t0.Add(-days(4))),
	}}
	fr := newFakeFineRepo()

	// First pass fails every insert; the pass itself still succeeds.
	fr.insertErr = errors.New("write conflict")
	rep, err := newService(lr, fr).Run(context.Background(), t0)
	require.NoError(t, err)
	require.Len(t, rep.Failures, 3)
	require.Equal(t, 3, rep.ScannedLoans)

	// Next pass recovers all three.
	fr.insertErr = nil
	rep, err = newService(lr, fr).Run(context.Background(), t0)
	require.NoError(t, err)
	require.Empty(t, rep.Failures)
	require.Equal(t, 3, rep.FinesCreated)
}

func TestOverdueDays(t *testing.T) {
	due := t0
	require.Zero(t, overdueDays(due, due))
	require.Zero(t, overdueDays(due.Add(-time.Hour), due))
	require.Equal(t, 1, overdueDays(due.Add(time.Minute), due))
	require.Equal(t, 1, overdueDays(due.Add(days(1)), due))
	require.Equal(t, 2, overdueDays(due.Add(days(1)+time.Hour), due))
	require.Equal(t, 6, overdueDays(due.Add(days(6)), due))
}
