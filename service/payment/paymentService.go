// Package paymentsvc reconciles gateway payment confirmations against fines
// and owns the Payment/Refund ledgers. It is the only writer of the fine
// Pending -> Paid transition.
package paymentsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bablookumarmuz/Library-Management/model"
	finerepo "github.com/bablookumarmuz/Library-Management/repository/fine"
	paymentrepo "github.com/bablookumarmuz/Library-Management/repository/payment"
	razorpayrepo "github.com/bablookumarmuz/Library-Management/repository/razorpay"
	refundrepo "github.com/bablookumarmuz/Library-Management/repository/refund"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound            ErrCode = "NOT_FOUND"
	ErrAlreadySettled      ErrCode = "ALREADY_SETTLED"
	ErrIntegrityMismatch   ErrCode = "INTEGRITY_MISMATCH"
	ErrDuplicateSettlement ErrCode = "DUPLICATE_SETTLEMENT"
	ErrInvalidState        ErrCode = "INVALID_STATE"
	ErrGateway             ErrCode = "GATEWAY_ERROR"
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

const (
	currency       = "INR"
	gatewayTimeout = 15 * time.Second
)

// dto

type OrderCreated struct {
	GatewayOrderID string  `json:"gateway_order_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
}

type VerifyInput struct {
	FineID           int64
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// FineRow = repository shape
type FineRow = finerepo.Row

type Service interface {
	// CreateOrder opens a gateway order for an unpaid fine.
	CreateOrder(ctx context.Context, fineID int64) (*OrderCreated, error)

	// Verify checks the confirmation signature, guards against duplicate
	// settlement of the same gateway order, and atomically records the
	// Success payment while flipping the fine to Paid.
	Verify(ctx context.Context, borrowerID int64, in VerifyInput) (*model.Payment, error)

	// Refund reverses a Success payment in full. Safe to retry after a
	// gateway failure: nothing is written locally until the gateway call
	// succeeds, and the gateway deduplicates refunds per payment id.
	Refund(ctx context.Context, paymentID int64, reason string) (*model.Refund, error)

	// RefundByPayment looks up the refund recorded for a payment, if any.
	RefundByPayment(ctx context.Context, paymentID int64) (*model.Refund, error)

	MyFines(ctx context.Context, borrowerID int64) ([]FineRow, error)
	AllFines(ctx context.Context) ([]FineRow, error)
}

type service struct {
	db  *sql.DB
	fr  finerepo.Repo
	pr  paymentrepo.Repo
	rr  refundrepo.Repo
	gw  razorpayrepo.Repo
	log *slog.Logger
}

func New(db *sql.DB, fr finerepo.Repo, pr paymentrepo.Repo, rr refundrepo.Repo, gw razorpayrepo.Repo, log *slog.Logger) Service {
	return &service{db: db, fr: fr, pr: pr, rr: rr, gw: gw, log: log}
}

func (s *service) CreateOrder(ctx context.Context, fineID int64) (*OrderCreated, error) {
	fine, err := s.fr.ByID(ctx, fineID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if fine.Status == model.FinePaid {
		return nil, makeErr(ErrAlreadySettled)
	}

	gctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()
	order, err := s.gw.CreateOrder(gctx, razorpayrepo.CreateOrderReq{
		Amount:   fine.TotalAmount,
		Currency: currency,
		Receipt:  fmt.Sprintf("fine_%d", fine.ID),
	})
	if err != nil {
		if s.log != nil {
			s.log.Error("gateway create order failed", "fine_id", fineID, "err", err)
		}
		return nil, makeErr(ErrGateway)
	}

	return &OrderCreated{
		GatewayOrderID: order.OrderID,
		Amount:         fine.TotalAmount,
		Currency:       currency,
	}, nil
}

func (s *service) Verify(ctx context.Context, borrowerID int64, in VerifyInput) (*model.Payment, error) {
	if !s.gw.VerifySignature(in.GatewayOrderID, in.GatewayPaymentID, in.Signature) {
		// Record the forged attempt so repeated ones are auditable.
		failed := &model.Payment{
			FineID:           in.FineID,
			BorrowerID:       borrowerID,
			GatewayOrderID:   in.GatewayOrderID,
			GatewayPaymentID: &in.GatewayPaymentID,
			Amount:           0,
			Status:           model.PaymentFailed,
		}
		if err := s.pr.Insert(ctx, failed); err != nil && s.log != nil {
			s.log.Error("record failed payment", "fine_id", in.FineID, "err", err)
		}
		return nil, makeErr(ErrIntegrityMismatch)
	}

	fine, err := s.fr.ByID(ctx, in.FineID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}

	// Duplicate-settlement check: a second confirmation for an already
	// settled order is flagged for manual review, never a second Success.
	if _, err := s.pr.SuccessByOrderID(ctx, in.GatewayOrderID); err == nil {
		if s.log != nil {
			s.log.Warn("duplicate settlement detected",
				"fine_id", in.FineID, "gateway_order_id", in.GatewayOrderID)
		}
		return nil, makeErr(ErrDuplicateSettlement)
	} else if !errors.Is(err, sql.ErrNoRows) {
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

	payment := &model.Payment{
		FineID:           fine.ID,
		BorrowerID:       borrowerID,
		GatewayOrderID:   in.GatewayOrderID,
		GatewayPaymentID: &in.GatewayPaymentID,
		Amount:           fine.TotalAmount,
		Status:           model.PaymentSuccess,
	}
	if err = s.pr.InsertTx(ctx, tx, payment); err != nil {
		// The partial unique index on (gateway_order_id, Success) backstops
		// the check above when two confirmations race.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			err = makeErr(ErrDuplicateSettlement)
		}
		return nil, err
	}

	settled, err := s.fr.MarkPaid(ctx, tx, fine.ID)
	if err != nil {
		return nil, err
	}
	if !settled {
		// Another confirmation flipped the fine first; this one loses.
		err = makeErr(ErrDuplicateSettlement)
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) Refund(ctx context.Context, paymentID int64, reason string) (*model.Refund, error) {
	payment, err := s.pr.ByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if payment.Status != model.PaymentSuccess {
		return nil, makeErr(ErrInvalidState)
	}
	if payment.GatewayPaymentID == nil {
		return nil, makeErr(ErrInvalidState)
	}

	// Gateway first: on failure or timeout nothing is mutated locally and
	// the caller may retry.
	gctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()
	gw, err := s.gw.Refund(gctx, *payment.GatewayPaymentID, payment.Amount)
	if err != nil {
		if s.log != nil {
			s.log.Error("gateway refund failed", "payment_id", paymentID, "err", err)
		}
		return nil, makeErr(ErrGateway)
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

	flipped, err := s.pr.MarkRefunded(ctx, tx, payment.ID)
	if err != nil {
		return nil, err
	}
	if !flipped {
		err = makeErr(ErrInvalidState)
		return nil, err
	}

	refund := &model.Refund{
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		Reason:          reason,
		Status:          model.RefundCompleted,
		GatewayRefundID: gw.RefundID,
	}
	if err = s.rr.Insert(ctx, tx, refund); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return refund, nil
}

func (s *service) RefundByPayment(ctx context.Context, paymentID int64) (*model.Refund, error) {
	rf, err := s.rr.ByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return rf, nil
}

func (s *service) MyFines(ctx context.Context, borrowerID int64) ([]FineRow, error) {
	return s.fr.ListByBorrower(ctx, borrowerID)
}

func (s *service) AllFines(ctx context.Context) ([]FineRow, error) {
	return s.fr.ListAll(ctx)
}
