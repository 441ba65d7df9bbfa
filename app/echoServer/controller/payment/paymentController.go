package payment

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	ps "github.com/bablookumarmuz/Library-Management/service/payment"
)

type Controller struct {
	Svc ps.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/payments/order
func (h *Controller) CreateOrder(c echo.Context) error {
	var req CreateOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	out, err := h.Svc.CreateOrder(c.Request().Context(), req.FineID)
	if err != nil {
		h.Log.Error("payment create order", "err", err)
		switch ps.Code(err) {
		case ps.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "fine not found"})
		case ps.ErrAlreadySettled:
			return c.JSON(http.StatusConflict, echo.Map{"message": "fine already paid"})
		case ps.ErrGateway:
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment gateway error"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, out)
}

// POST /v1/payments/verify
func (h *Controller) Verify(c echo.Context) error {
	var req VerifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := c.Get("user_id").(int64)

	p, err := h.Svc.Verify(c.Request().Context(), uid, ps.VerifyInput{
		FineID:           req.FineID,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	})
	if err != nil {
		h.Log.Error("payment verify", "err", err, "gateway_order_id", req.GatewayOrderID)
		switch ps.Code(err) {
		case ps.ErrIntegrityMismatch:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid signature"})
		case ps.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "fine not found"})
		case ps.ErrDuplicateSettlement:
			return c.JSON(http.StatusConflict, echo.Map{"message": "duplicate payment detected"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "payment verified successfully",
		"payment_id": p.ID,
	})
}

// POST /v1/payments/refund (admin)
func (h *Controller) Refund(c echo.Context) error {
	var req RefundReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	rf, err := h.Svc.Refund(c.Request().Context(), req.PaymentID, req.Reason)
	if err != nil {
		h.Log.Error("payment refund", "err", err, "payment_id", req.PaymentID)
		switch ps.Code(err) {
		case ps.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
		case ps.ErrInvalidState:
			return c.JSON(http.StatusConflict, echo.Map{"message": "payment not successful, cannot refund"})
		case ps.ErrGateway:
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "refund failed at gateway"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "refund completed",
		"refund":  rf,
	})
}

// GET /v1/payments/:id/refund (admin)
func (h *Controller) RefundDetail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payment id"})
	}

	rf, err := h.Svc.RefundByPayment(c.Request().Context(), id)
	if err != nil {
		if ps.Code(err) == ps.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "no refund for this payment"})
		}
		h.Log.Error("refund lookup", "err", err, "payment_id", id)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, rf)
}

// GET /v1/fines/my
func (h *Controller) MyFines(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.MyFines(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("fines my", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/fines (admin)
func (h *Controller) AllFines(c echo.Context) error {
	rows, err := h.Svc.AllFines(c.Request().Context())
	if err != nil {
		h.Log.Error("fines all", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
