package razorpayrepo

import "context"

type CreateOrderReq struct {
	Amount   float64
	Currency string
	Receipt  string
}

type CreateOrderResp struct {
	OrderID  string
	Amount   float64
	Currency string
}

type RefundResp struct {
	RefundID string
	Amount   float64
}

type Repo interface {
	CreateOrder(ctx context.Context, req CreateOrderReq) (*CreateOrderResp, error)
	Refund(ctx context.Context, paymentID string, amount float64) (*RefundResp, error)

	// VerifySignature recomputes the HMAC-SHA256 of "orderID|paymentID" with
	// the key secret and compares it with the supplied signature.
	VerifySignature(orderID, paymentID, signature string) bool
}
