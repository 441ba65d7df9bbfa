// repository/loan/repo.go
package loanrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/bablookumarmuz/Library-Management/model"
)

// HistoryRow joins a loan with its book title for listings.
type HistoryRow struct {
	LoanID     int64      `json:"loan_id"`
	BookID     int64      `json:"book_id"`
	BookTitle  string     `json:"book_title"`
	IssuedAt   time.Time  `json:"issued_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Status     string     `json:"status"`
}

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, l *model.Loan) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, loanID int64) (*model.Loan, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, loanID int64, at time.Time) error

	// ListOpen returns every loan not yet returned, the accrual pass input.
	ListOpen(ctx context.Context) ([]model.Loan, error)
	// MarkOverdue flips Issued -> Overdue; a no-op on already-Overdue loans.
	MarkOverdue(ctx context.Context, loanID int64) (bool, error)

	ListByBorrower(ctx context.Context, borrowerID int64) ([]HistoryRow, error)
	ListAll(ctx context.Context) ([]HistoryRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, l *model.Loan) error {
	const q = `
		INSERT INTO loans (borrower_id, book_id, issued_at, due_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	return tx.QueryRowContext(ctx, q,
		l.BorrowerID, l.BookID, l.IssuedAt, l.DueAt, l.Status,
	).Scan(&l.ID)
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, loanID int64) (*model.Loan, error) {
	const q = `
		SELECT id, borrower_id, book_id, issued_at, due_at, returned_at, status
		FROM loans
		WHERE id = $1
		FOR UPDATE`
	l := &model.Loan{}
	err := tx.QueryRowContext(ctx, q, loanID).Scan(
		&l.ID, &l.BorrowerID, &l.BookID, &l.IssuedAt, &l.DueAt, &l.ReturnedAt, &l.Status)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *repo) MarkReturned(ctx context.Context, tx *sql.Tx, loanID int64, at time.Time) error {
	const q = `
		UPDATE loans
		SET status = 'Returned',
			returned_at = $2
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, loanID, at)
	return err
}

func (r *repo) ListOpen(ctx context.Context) ([]model.Loan, error) {
	const q = `
		SELECT id, borrower_id, book_id, issued_at, due_at, returned_at, status
		FROM loans
		WHERE status IN ('Issued','Overdue')
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Loan
	for rows.Next() {
		var l model.Loan
		if err := rows.Scan(&l.ID, &l.BorrowerID, &l.BookID, &l.IssuedAt, &l.DueAt, &l.ReturnedAt, &l.Status); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repo) MarkOverdue(ctx context.Context, loanID int64) (bool, error) {
	const q = `
		UPDATE loans
		SET status = 'Overdue'
		WHERE id = $1
		AND status = 'Issued'`
	res, err := r.db.ExecContext(ctx, q, loanID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) ListByBorrower(ctx context.Context, borrowerID int64) ([]HistoryRow, error) {
	const q = `
			SELECT
			l.id          AS loan_id,
			l.book_id     AS book_id,
			b.title       AS book_title,
			l.issued_at   AS issued_at,
			l.due_at      AS due_at,
			l.returned_at AS returned_at,
			l.status      AS status
			FROM loans l
			JOIN books b ON b.id = l.book_id
			WHERE l.borrower_id = $1
			ORDER BY l.issued_at DESC, l.id DESC`
	return r.queryHistory(ctx, q, borrowerID)
}

func (r *repo) ListAll(ctx context.Context) ([]HistoryRow, error) {
	const q = `
			SELECT
			l.id          AS loan_id,
			l.book_id     AS book_id,
			b.title       AS book_title,
			l.issued_at   AS issued_at,
			l.due_at      AS due_at,
			l.returned_at AS returned_at,
			l.status      AS status
			FROM loans l
			JOIN books b ON b.id = l.book_id
			ORDER BY l.issued_at DESC, l.id DESC`
	return r.queryHistory(ctx, q)
}

func (r *repo) queryHistory(ctx context.Context, q string, args ...any) ([]HistoryRow, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(
			&h.LoanID, &h.BookID, &h.BookTitle,
			&h.IssuedAt, &h.DueAt, &h.ReturnedAt, &h.Status,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
