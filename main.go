// Package main library management API.
//
// @title           Library Management API
// @version         1.0
// @description     Library service (books, loans, fines, payments).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/bablookumarmuz/Library-Management/app/echoServer"
	authctrl "github.com/bablookumarmuz/Library-Management/app/echoServer/controller/auth"
	bookctrl "github.com/bablookumarmuz/Library-Management/app/echoServer/controller/book"
	loanctrl "github.com/bablookumarmuz/Library-Management/app/echoServer/controller/loan"
	paymentctrl "github.com/bablookumarmuz/Library-Management/app/echoServer/controller/payment"
	"github.com/bablookumarmuz/Library-Management/app/echoServer/validation"
	"github.com/bablookumarmuz/Library-Management/config"
	authrepo "github.com/bablookumarmuz/Library-Management/repository/auth"
	bookrepo "github.com/bablookumarmuz/Library-Management/repository/book"
	finerepo "github.com/bablookumarmuz/Library-Management/repository/fine"
	loanrepo "github.com/bablookumarmuz/Library-Management/repository/loan"
	paymentrepo "github.com/bablookumarmuz/Library-Management/repository/payment"
	razorpayrepo "github.com/bablookumarmuz/Library-Management/repository/razorpay"
	refundrepo "github.com/bablookumarmuz/Library-Management/repository/refund"
	"github.com/bablookumarmuz/Library-Management/scheduler"
	accrualsvc "github.com/bablookumarmuz/Library-Management/service/accrual"
	authsvc "github.com/bablookumarmuz/Library-Management/service/auth"
	booksvc "github.com/bablookumarmuz/Library-Management/service/book"
	loansvc "github.com/bablookumarmuz/Library-Management/service/loan"
	paymentsvc "github.com/bablookumarmuz/Library-Management/service/payment"
	"github.com/bablookumarmuz/Library-Management/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ar := authrepo.New(db)
	br := bookrepo.New(db)
	lr := loanrepo.New(db)
	fr := finerepo.New(db)
	pr := paymentrepo.New(db)
	rr := refundrepo.New(db)
	gw := razorpayrepo.NewHTTP(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	// services
	as := authsvc.New(ar, cfg.JWTSecret)
	bs := booksvc.New(br)
	ls := loansvc.New(db, lr, br, cfg.LoanPeriodDays)
	accrual := accrualsvc.New(lr, fr, cfg.GraceDays, cfg.FinePerDay, log)
	ps := paymentsvc.New(db, fr, pr, rr, gw, log)

	// accrual scheduler
	sched, err := scheduler.New(cfg.AccrualCron, accrual, log)
	if err != nil {
		log.Error("scheduler init failed", "err", err, "spec", cfg.AccrualCron)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	loanC := &loanctrl.Controller{Svc: ls, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:    authC,
		Book:    bookC,
		Loan:    loanC,
		Payment: paymentC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
