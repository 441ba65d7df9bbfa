package loansvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bablookumarmuz/Library-Management/model"
	bookrepo "github.com/bablookumarmuz/Library-Management/repository/book"
	loanrepo "github.com/bablookumarmuz/Library-Management/repository/loan"
)

// errors used by controllers

type ErrCode string

const (
	ErrNoStock      ErrCode = "NO_STOCK"
	ErrBookNotFound ErrCode = "BOOK_NOT_FOUND"
	ErrNotOwner     ErrCode = "NOT_OWNER"
	ErrNotOpen      ErrCode = "NOT_OPEN"
	ErrNotFound     ErrCode = "NOT_FOUND"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// HistoryRow = repository shape
type HistoryRow = loanrepo.HistoryRow

type Service interface {
	// Borrow takes one available copy and opens an Issued loan due after the
	// configured loan period.
	Borrow(ctx context.Context, borrowerID, bookID int64) (*model.Loan, error)

	// Return closes the loan unconditionally, overdue or not, and puts the
	// copy back in stock.
	Return(ctx context.Context, borrowerID, loanID int64) error

	MyLoans(ctx context.Context, borrowerID int64) ([]HistoryRow, error)
	AllLoans(ctx context.Context) ([]HistoryRow, error)
}

type service struct {
	db         *sql.DB
	lr         loanrepo.Repo
	br         bookrepo.Repo
	loanPeriod time.Duration
}

func New(db *sql.DB, lr loanrepo.Repo, br bookrepo.Repo, loanPeriodDays int) Service {
	return &service{
		db:         db,
		lr:         lr,
		br:         br,
		loanPeriod: time.Duration(loanPeriodDays) * 24 * time.Hour,
	}
}

func (s *service) Borrow(ctx context.Context, borrowerID, bookID int64) (*model.Loan, error) {
	if _, err := s.br.Detail(ctx, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ok, err := s.br.DecrementAvailable(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		err = makeErr(ErrNoStock)
		return nil, err
	}

	now := time.Now().UTC()
	loan := &model.Loan{
		BorrowerID: borrowerID,
		BookID:     bookID,
		IssuedAt:   now,
		DueAt:      now.Add(s.loanPeriod),
		Status:     model.LoanIssued,
	}
	if err = s.lr.Insert(ctx, tx, loan); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *service) Return(ctx context.Context, borrowerID, loanID int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	loan, err := s.lr.GetForUpdate(ctx, tx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if loan.BorrowerID != borrowerID {
		return makeErr(ErrNotOwner)
	}
	if loan.Status == model.LoanReturned {
		return makeErr(ErrNotOpen)
	}

	if err = s.lr.MarkReturned(ctx, tx, loanID, time.Now().UTC()); err != nil {
		return err
	}
	if err = s.br.IncrementAvailable(ctx, tx, loan.BookID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) MyLoans(ctx context.Context, borrowerID int64) ([]HistoryRow, error) {
	return s.lr.ListByBorrower(ctx, borrowerID)
}

func (s *service) AllLoans(ctx context.Context) ([]HistoryRow, error) {
	return s.lr.ListAll(ctx)
}
