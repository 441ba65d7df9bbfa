package echoServer

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	authctrl "github.com/bablookumarmuz/Library-Management/app/echoServer/controller/auth"
	bookctrl "github.com/bablookumarmuz/Library-Management/app/echoServer/controller/book"
	loanctrl "github.com/bablookumarmuz/Library-Management/app/echoServer/controller/loan"
	paymentctrl "github.com/bablookumarmuz/Library-Management/app/echoServer/controller/payment"
	"github.com/bablookumarmuz/Library-Management/app/echoServer/jwtx"
	jwtutil "github.com/bablookumarmuz/Library-Management/util/jwt"
)

type C struct {
	Auth      *authctrl.Controller
	Book      *bookctrl.Controller
	Loan      *loanctrl.Controller
	Payment   *paymentctrl.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization",
		ParseTokenFunc: func(ctx echo.Context, token string) (interface{}, error) {
			return jwtutil.ParseAuth(token, c.JWTSecret)
		},
	}))
	auth.Use(extractIdentity)

	auth.GET("/auth/me", c.Auth.Me)

	auth.GET("/books", c.Book.List)
	auth.GET("/books/:id", c.Book.Detail)

	auth.POST("/loans/borrow", c.Loan.Borrow)
	auth.POST("/loans/:id/return", c.Loan.Return)
	auth.GET("/loans/my", c.Loan.MyHistory)

	auth.GET("/fines/my", c.Payment.MyFines)
	auth.POST("/payments/order", c.Payment.CreateOrder)
	// Checkout confirmation: the caller relays the gateway's order id,
	// payment id and HMAC proof.
	auth.POST("/payments/verify", c.Payment.Verify)

	// Admin
	admin := auth.Group("")
	admin.Use(requireAdmin)

	admin.POST("/books", c.Book.Create)
	admin.PUT("/books/:id", c.Book.Update)
	admin.DELETE("/books/:id", c.Book.Delete)

	admin.GET("/loans", c.Loan.All)
	admin.GET("/fines", c.Payment.AllFines)
	admin.POST("/payments/refund", c.Payment.Refund)
	admin.GET("/payments/:id/refund", c.Payment.RefundDetail)
}

// extractIdentity pulls user_id and role out of the verified claims.
func extractIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		uid, err := jwtx.UserIDFromContext(ctx)
		if err != nil {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		ctx.Set("user_id", uid)

		if role, err := jwtx.RoleFromContext(ctx); err == nil {
			ctx.Set("role", role)
		}
		return next(ctx)
	}
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if role, _ := ctx.Get("role").(string); role != "admin" {
			return ctx.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
		return next(ctx)
	}
}
