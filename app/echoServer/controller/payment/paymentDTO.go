package payment

type CreateOrderReq struct {
	FineID int64 `json:"fine_id" validate:"required,gt=0"`
}

type VerifyReq struct {
	FineID           int64  `json:"fine_id" validate:"required,gt=0"`
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}

type RefundReq struct {
	PaymentID int64  `json:"payment_id" validate:"required,gt=0"`
	Reason    string `json:"reason"`
}
