// repository/fine/repo.go
package finerepo

import (
	"context"
	"database/sql"

	"github.com/bablookumarmuz/Library-Management/model"
)

// Row joins a fine with its loan and book for listings.
type Row struct {
	model.Fine
	BookTitle string `json:"book_title"`
}

type Repo interface {
	Insert(ctx context.Context, f *model.Fine) error
	ByID(ctx context.Context, id int64) (*model.Fine, error)
	ByLoanID(ctx context.Context, loanID int64) (*model.Fine, error)

	// UpdateAccrual overwrites overdue_days/total_amount while the fine is
	// still Pending; reports false if the fine was already Paid.
	UpdateAccrual(ctx context.Context, id int64, overdueDays int, total float64) (bool, error)

	// MarkPaid is the Pending -> Paid compare-and-swap; false means another
	// confirmation already settled the fine.
	MarkPaid(ctx context.Context, tx *sql.Tx, id int64) (bool, error)

	ListByBorrower(ctx context.Context, borrowerID int64) ([]Row, error)
	ListAll(ctx context.Context) ([]Row, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, f *model.Fine) error {
	const q = `
		INSERT INTO fines (loan_id, borrower_id, overdue_days, daily_rate, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		f.LoanID, f.BorrowerID, f.OverdueDays, f.DailyRate, f.TotalAmount, f.Status,
	).Scan(&f.ID, &f.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Fine, error) {
	const q = `
		SELECT id, loan_id, borrower_id, overdue_days, daily_rate, total_amount, status, created_at
		FROM fines
		WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) ByLoanID(ctx context.Context, loanID int64) (*model.Fine, error) {
	const q = `
		SELECT id, loan_id, borrower_id, overdue_days, daily_rate, total_amount, status, created_at
		FROM fines
		WHERE loan_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, loanID))
}

func (r *repo) scanOne(row *sql.Row) (*model.Fine, error) {
	f := &model.Fine{}
	err := row.Scan(&f.ID, &f.LoanID, &f.BorrowerID, &f.OverdueDays, &f.DailyRate, &f.TotalAmount, &f.Status, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *repo) UpdateAccrual(ctx context.Context, id int64, overdueDays int, total float64) (bool, error) {
	const q = `
		UPDATE fines
		SET overdue_days = $2,
			total_amount = $3
		WHERE id = $1
		AND status = 'Pending'`
	res, err := r.db.ExecContext(ctx, q, id, overdueDays, total)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) MarkPaid(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	const q = `
		UPDATE fines
		SET status = 'Paid'
		WHERE id = $1
		AND status = 'Pending'`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) ListByBorrower(ctx context.Context, borrowerID int64) ([]Row, error) {
	const q = `
			SELECT f.id, f.loan_id, f.borrower_id, f.overdue_days, f.daily_rate,
				f.total_amount, f.status, f.created_at, b.title
			FROM fines f
			JOIN loans l ON l.id = f.loan_id
			JOIN books b ON b.id = l.book_id
			WHERE f.borrower_id = $1
			ORDER BY f.created_at DESC, f.id DESC`
	return r.queryRows(ctx, q, borrowerID)
}

func (r *repo) ListAll(ctx context.Context) ([]Row, error) {
	const q = `
			SELECT f.id, f.loan_id, f.borrower_id, f.overdue_days, f.daily_rate,
				f.total_amount, f.status, f.created_at, b.title
			FROM fines f
			JOIN loans l ON l.id = f.loan_id
			JOIN books b ON b.id = l.book_id
			ORDER BY f.created_at DESC, f.id DESC`
	return r.queryRows(ctx, q)
}

func (r *repo) queryRows(ctx context.Context, q string, args ...any) ([]Row, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(
			&row.ID, &row.LoanID, &row.BorrowerID, &row.OverdueDays, &row.DailyRate,
			&row.TotalAmount, &row.Status, &row.CreatedAt, &row.BookTitle,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
