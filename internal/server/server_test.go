package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sleephaven/sleephaven/internal/database"
	"github.com/sleephaven/sleephaven/internal/payment"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(db, Config{
		Stripe:    payment.Config{SecretKey: "sk_test_dummy"},
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}, logger)
}

func TestHealthRoute(t *testing.T) {
	router := testServer(t).Router()

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRegisterAndProfileRoundTrip(t *testing.T) {
	router := testServer(t).Router()

	req := httptest.NewRequest("POST", "/users/register",
		strings.NewReader(`{"name":"Alice","email":"alice@example.com","password":"hunter2"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			ID    string `json:"_id"`
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}

	req = httptest.NewRequest("GET", "/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Data.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("profile status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), resp.Data.ID) {
		t.Error("profile response missing account id")
	}
}

func TestProfileRequiresAuth(t *testing.T) {
	router := testServer(t).Router()

	req := httptest.NewRequest("GET", "/users/profile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestPaymentRoutesAbsentWithoutGateway(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := New(db, Config{JWTSecret: "test-secret", TokenTTL: time.Hour},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := srv.Router()

	req := httptest.NewRequest("POST", "/payments/guest-checkout", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Error("guest checkout should not be served without a configured gateway")
	}
}
