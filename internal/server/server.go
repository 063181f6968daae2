package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sleephaven/sleephaven/internal/auth"
	"github.com/sleephaven/sleephaven/internal/email"
	"github.com/sleephaven/sleephaven/internal/handler"
	"github.com/sleephaven/sleephaven/internal/middleware"
	"github.com/sleephaven/sleephaven/internal/payment"
	"github.com/sleephaven/sleephaven/internal/service"
	"github.com/sleephaven/sleephaven/internal/store"
)

type Server struct {
	db          *sql.DB
	userStore   *store.UserStore
	tokens      *auth.TokenManager
	userH       *handler.UserHandler
	paymentH    *handler.PaymentHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

type Config struct {
	Stripe      payment.Config
	JWTSecret   string
	TokenTTL    time.Duration
	EmailClient *email.Client
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	var gateway service.PaymentGateway
	if cfg.Stripe.SecretKey != "" {
		gateway = payment.NewClient(cfg.Stripe)
	}

	var mailer service.ReceiptSender
	if cfg.EmailClient != nil && cfg.EmailClient.Configured() {
		mailer = cfg.EmailClient
	}

	userSvc := service.NewUserService(userStore, gateway, tokens, mailer, logger.With("component", "users"))
	userH := handler.NewUserHandler(userSvc, logger.With("component", "users"))

	var paymentH *handler.PaymentHandler
	if gateway != nil {
		checkoutSvc := service.NewCheckoutService(userStore, gateway)
		paymentH = handler.NewPaymentHandler(checkoutSvc, logger.With("component", "payments"))
	}

	return &Server{
		db:          db,
		userStore:   userStore,
		tokens:      tokens,
		userH:       userH,
		paymentH:    paymentH,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthCheck)

	// Public user routes, rate-limited per client IP.
	rateLimitMw := middleware.RateLimit(s.rateLimiter, 10, time.Minute)
	mux.Handle("POST /users/register", rateLimitMw(http.HandlerFunc(s.userH.Register)))
	mux.Handle("POST /users/login", rateLimitMw(http.HandlerFunc(s.userH.Login)))

	authMw := middleware.RequireAuth(s.tokens)
	mux.Handle("GET /users/profile", authMw(http.HandlerFunc(s.userH.GetProfile)))
	mux.Handle("PUT /users/profile", authMw(http.HandlerFunc(s.userH.UpdateProfile)))

	// Payment routes need a configured gateway.
	if s.paymentH != nil {
		mux.Handle("POST /users/register-paid-user", rateLimitMw(http.HandlerFunc(s.userH.RegisterPaid)))
		mux.Handle("POST /payments/guest-checkout", rateLimitMw(http.HandlerFunc(s.paymentH.GuestCheckout)))
		mux.Handle("POST /payments/create-checkout-session", authMw(http.HandlerFunc(s.paymentH.CreateCheckoutSession)))
		mux.Handle("GET /payments/verify-payment/{sessionId}", authMw(http.HandlerFunc(s.paymentH.VerifyPayment)))
	}

	return mux
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
