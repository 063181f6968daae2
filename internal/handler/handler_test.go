package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sleephaven/sleephaven/internal/auth"
	"github.com/sleephaven/sleephaven/internal/database"
	"github.com/sleephaven/sleephaven/internal/payment"
	"github.com/sleephaven/sleephaven/internal/service"
	"github.com/sleephaven/sleephaven/internal/store"
)

type fakeGateway struct {
	sessions map[string]*payment.SessionStatus
	url      string
}

func (f *fakeGateway) CreateCheckoutSession(userID, customerEmail string) (string, error) {
	if f.url == "" {
		return "https://checkout.test/session", nil
	}
	return f.url, nil
}

func (f *fakeGateway) RetrieveSession(sessionID string) (*payment.SessionStatus, error) {
	status, ok := f.sessions[sessionID]
	if !ok {
		return nil, payment.ErrSessionNotFound
	}
	return status, nil
}

type fakeMailer struct{ err error }

func (f *fakeMailer) SendReceipt(toEmail, name, sessionID string, amountCents int64) error {
	return f.err
}

type fixture struct {
	users    *store.UserStore
	userH    *UserHandler
	paymentH *PaymentHandler
}

func setup(t *testing.T, gw *fakeGateway) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := store.NewUserStore(db)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	userSvc := service.NewUserService(users, gw, tokens, &fakeMailer{}, logger)
	checkoutSvc := service.NewCheckoutService(users, gw)

	return &fixture{
		users:    users,
		userH:    NewUserHandler(userSvc, logger),
		paymentH: NewPaymentHandler(checkoutSvc, logger),
	}
}

func doJSON(t *testing.T, h http.HandlerFunc, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h(rec, req)

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec, resp
}

func TestRegisterSuccess(t *testing.T) {
	f := setup(t, &fakeGateway{})

	rec, resp := doJSON(t, f.userH.Register, "POST", "/users/register",
		`{"name":"Alice","email":"alice@example.com","password":"hunter2"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if resp["status"] != "success" {
		t.Errorf("status field = %v, want success", resp["status"])
	}
	data := resp["data"].(map[string]any)
	if data["_id"] == "" || data["token"] == "" {
		t.Error("expected _id and token in response")
	}
	if data["email"] != "alice@example.com" {
		t.Errorf("email = %v, want alice@example.com", data["email"])
	}
	if _, ok := data["password"]; ok {
		t.Error("response must not include password")
	}
}

func TestRegisterMissingFields(t *testing.T) {
	f := setup(t, &fakeGateway{})

	rec, resp := doJSON(t, f.userH.Register, "POST", "/users/register",
		`{"name":"Alice"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp["status"] != "error" {
		t.Errorf("status field = %v, want error", resp["status"])
	}
}

func TestRegisterDuplicate(t *testing.T) {
	f := setup(t, &fakeGateway{})

	doJSON(t, f.userH.Register, "POST", "/users/register",
		`{"name":"Alice","email":"alice@example.com","password":"hunter2"}`)
	rec, resp := doJSON(t, f.userH.Register, "POST", "/users/register",
		`{"name":"Alice","email":"alice@example.com","password":"hunter2"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp["message"] != "user already exists" {
		t.Errorf("message = %v, want user already exists", resp["message"])
	}
}

func TestRegisterPaidSuccess(t *testing.T) {
	gw := &fakeGateway{sessions: map[string]*payment.SessionStatus{
		"cs_paid": {PaymentStatus: payment.StatusPaid, AmountTotal: 5000, UserID: payment.GuestUserID},
	}}
	f := setup(t, gw)

	rec, resp := doJSON(t, f.userH.RegisterPaid, "POST", "/users/register-paid-user",
		`{"name":"Bob","email":"bob@example.com","password":"hunter2","sessionId":"cs_paid"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %v", rec.Code, resp)
	}
	data := resp["data"].(map[string]any)
	if data["hasPaidPlan"] != true {
		t.Errorf("hasPaidPlan = %v, want true", data["hasPaidPlan"])
	}
	if data["token"] == "" {
		t.Error("expected token")
	}
}

func TestRegisterPaidUnpaidSession(t *testing.T) {
	gw := &fakeGateway{sessions: map[string]*payment.SessionStatus{
		"cs_open": {PaymentStatus: "unpaid"},
	}}
	f := setup(t, gw)

	rec, resp := doJSON(t, f.userH.RegisterPaid, "POST", "/users/register-paid-user",
		`{"name":"Bob","email":"bob@example.com","password":"hunter2","sessionId":"cs_open"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp["message"] != "invalid or unpaid session" {
		t.Errorf("message = %v", resp["message"])
	}
	if u, _ := f.users.GetByEmail("bob@example.com"); u != nil {
		t.Error("account created for unpaid session")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := setup(t, &fakeGateway{})
	doJSON(t, f.userH.Register, "POST", "/users/register",
		`{"name":"Alice","email":"alice@example.com","password":"hunter2"}`)

	rec, resp := doJSON(t, f.userH.Login, "POST", "/users/login",
		`{"email":"alice@example.com","password":"wrong"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	// Generic message regardless of which factor was wrong.
	if resp["message"] != "invalid email or password" {
		t.Errorf("message = %v", resp["message"])
	}
}

func TestLoginSuccess(t *testing.T) {
	f := setup(t, &fakeGateway{})
	doJSON(t, f.userH.Register, "POST", "/users/register",
		`{"name":"Alice","email":"alice@example.com","password":"hunter2"}`)

	rec, resp := doJSON(t, f.userH.Login, "POST", "/users/login",
		`{"email":"alice@example.com","password":"hunter2"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := resp["data"].(map[string]any)
	if data["hasPaidPlan"] != false {
		t.Errorf("hasPaidPlan = %v, want false", data["hasPaidPlan"])
	}
}

func TestGetProfile(t *testing.T) {
	f := setup(t, &fakeGateway{})
	u, _ := f.users.Create("Alice", "alice@example.com", "hashed", false, nil)

	req := httptest.NewRequest("GET", "/users/profile", nil)
	req = req.WithContext(WithUserID(req.Context(), u.ID))
	rec := httptest.NewRecorder()
	f.userH.GetProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]any
	json.NewDecoder(rec.Body).Decode(&resp)
	data := resp["data"].(map[string]any)
	if data["_id"] != u.ID {
		t.Errorf("_id = %v, want %q", data["_id"], u.ID)
	}
	if _, ok := data["password"]; ok {
		t.Error("profile must not include the password hash")
	}
}

func TestGetProfileGone(t *testing.T) {
	f := setup(t, &fakeGateway{})

	req := httptest.NewRequest("GET", "/users/profile", nil)
	req = req.WithContext(WithUserID(req.Context(), "no-longer-there"))
	rec := httptest.NewRecorder()
	f.userH.GetProfile(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateProfilePasswordOnly(t *testing.T) {
	f := setup(t, &fakeGateway{})

	_, resp := doJSON(t, f.userH.Register, "POST", "/users/register",
		`{"name":"Alice","email":"alice@example.com","password":"hunter2"}`)
	id := resp["data"].(map[string]any)["_id"].(string)

	req := httptest.NewRequest("PUT", "/users/profile", strings.NewReader(`{"password":"newpw"}`))
	req = req.WithContext(WithUserID(req.Context(), id))
	rec := httptest.NewRecorder()
	f.userH.UpdateProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var updated map[string]any
	json.NewDecoder(rec.Body).Decode(&updated)
	data := updated["data"].(map[string]any)
	if data["_id"] != id {
		t.Errorf("_id = %v, want %q", data["_id"], id)
	}
	if data["name"] != "Alice" || data["email"] != "alice@example.com" {
		t.Error("name or email changed on password-only update")
	}
	if data["token"] == "" {
		t.Error("expected fresh token")
	}
}
