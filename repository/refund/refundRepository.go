// repository/refund/repo.go
package refundrepo

import (
	"context"
	"database/sql"

	"github.com/bablookumarmuz/Library-Management/model"
)

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, rf *model.Refund) error
	ByPaymentID(ctx context.Context, paymentID int64) (*model.Refund, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, rf *model.Refund) error {
	const q = `
		INSERT INTO refunds (payment_id, amount, reason, status, gateway_refund_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return tx.QueryRowContext(ctx, q,
		rf.PaymentID, rf.Amount, rf.Reason, rf.Status, rf.GatewayRefundID,
	).Scan(&rf.ID, &rf.CreatedAt)
}

func (r *repo) ByPaymentID(ctx context.Context, paymentID int64) (*model.Refund, error) {
	const q = `
		SELECT id, payment_id, amount, reason, status, gateway_refund_id, created_at
		FROM refunds
		WHERE payment_id = $1`
	rf := &model.Refund{}
	err := r.db.QueryRowContext(ctx, q, paymentID).Scan(
		&rf.ID, &rf.PaymentID, &rf.Amount, &rf.Reason, &rf.Status, &rf.GatewayRefundID, &rf.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rf, nil
}
