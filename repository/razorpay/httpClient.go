package razorpayrepo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/bablookumarmuz/Library-Management/util/httpx"
)

const baseURL = "https://api.razorpay.com/v1"

type httpRepo struct {
	keyID     string
	keySecret string
	client    *http.Client
}

func NewHTTP(keyID, keySecret string) Repo {
	return &httpRepo{keyID: keyID, keySecret: keySecret, client: httpx.Client()}
}

// paise converts a rupee amount to the minor unit the gateway expects.
func paise(amount float64) int64 { return int64(math.Round(amount * 100)) }

func (r *httpRepo) CreateOrder(ctx context.Context, req CreateOrderReq) (*CreateOrderResp, error) {
	body := map[string]any{
		"amount":   paise(req.Amount),
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	b, _ := json.Marshal(body)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/orders", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(r.keyID, r.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("razorpay create order failed: %s", resp.Status)
	}

	var out struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("razorpay: empty order id")
	}

	return &CreateOrderResp{
		OrderID:  out.ID,
		Amount:   float64(out.Amount) / 100,
		Currency: out.Currency,
	}, nil
}

func (r *httpRepo) Refund(ctx context.Context, paymentID string, amount float64) (*RefundResp, error) {
	body := map[string]any{"amount": paise(amount)}
	b, _ := json.Marshal(body)
	url := fmt.Sprintf("%s/payments/%s/refund", baseURL, paymentID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(r.keyID, r.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("razorpay refund failed: %s", resp.Status)
	}

	var out struct {
		ID     string `json:"id"`
		Amount int64  `json:"amount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("razorpay: empty refund id")
	}

	return &RefundResp{RefundID: out.ID, Amount: float64(out.Amount) / 100}, nil
}

func (r *httpRepo) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(r.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
