// repository/payment/repo.go
package paymentrepo

import (
	"context"
	"database/sql"

	"github.com/bablookumarmuz/Library-Management/model"
)

type Repo interface {
	Insert(ctx context.Context, p *model.Payment) error
	InsertTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	ByID(ctx context.Context, id int64) (*model.Payment, error)

	// SuccessByOrderID finds the settled payment for a gateway order, if any.
	SuccessByOrderID(ctx context.Context, orderID string) (*model.Payment, error)

	// MarkRefunded is the Success -> Refunded compare-and-swap.
	MarkRefunded(ctx context.Context, tx *sql.Tx, id int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const insertQ = `
	INSERT INTO payments (fine_id, borrower_id, gateway_order_id, gateway_payment_id, amount, status)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at`

func (r *repo) Insert(ctx context.Context, p *model.Payment) error {
	return r.db.QueryRowContext(ctx, insertQ,
		p.FineID, p.BorrowerID, p.GatewayOrderID, p.GatewayPaymentID, p.Amount, p.Status,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *repo) InsertTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	return tx.QueryRowContext(ctx, insertQ,
		p.FineID, p.BorrowerID, p.GatewayOrderID, p.GatewayPaymentID, p.Amount, p.Status,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Payment, error) {
	const q = `
		SELECT id, fine_id, borrower_id, gateway_order_id, gateway_payment_id, amount, status, created_at
		FROM payments
		WHERE id = $1`
	p := &model.Payment{}
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.FineID, &p.BorrowerID, &p.GatewayOrderID, &p.GatewayPaymentID, &p.Amount, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repo) SuccessByOrderID(ctx context.Context, orderID string) (*model.Payment, error) {
	const q = `
		SELECT id, fine_id, borrower_id, gateway_order_id, gateway_payment_id, amount, status, created_at
		FROM payments
		WHERE gateway_order_id = $1
		AND status = 'Success'`
	p := &model.Payment{}
	err := r.db.QueryRowContext(ctx, q, orderID).Scan(
		&p.ID, &p.FineID, &p.BorrowerID, &p.GatewayOrderID, &p.GatewayPaymentID, &p.Amount, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repo) MarkRefunded(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	const q = `
		UPDATE payments
		SET status = 'Refunded'
		WHERE id = $1
		AND status = 'Success'`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}
