package config

type App struct {
	Port              string  `env:"APP_PORT" default:"8080"`
	DatabaseURL       string  `env:"DATABASE_URL,required"`
	JWTSecret         string  `env:"JWT_SECRET,required"`
	RazorpayKeyID     string  `env:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string  `env:"RAZORPAY_KEY_SECRET"`
	AccrualCron       string  `env:"ACCRUAL_CRON" default:"0 0 * * *"`
	GraceDays         int     `env:"FINE_GRACE_DAYS" default:"2"`
	FinePerDay        float64 `env:"FINE_PER_DAY" default:"5"`
	LoanPeriodDays    int     `env:"LOAN_PERIOD_DAYS" default:"14"`
	Env               string  `env:"APP_ENV" default:"dev"`
}
