package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sleephaven/sleephaven/internal/model"
	"github.com/sleephaven/sleephaven/internal/service"
)

type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

func accountSummary(u *model.User, token string, includePaid bool) envelope {
	data := envelope{
		"_id":   u.ID,
		"name":  u.Name,
		"email": u.Email,
		"token": token,
	}
	if includePaid {
		data["hasPaidPlan"] = u.HasPaidPlan
	}
	return data
}

// Register creates a free account.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.svc.RegisterFree(req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"status": "success",
		"data":   accountSummary(user, token, false),
	})
}

// RegisterPaid exchanges a completed checkout session for a paid account.
func (h *UserHandler) RegisterPaid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.svc.RegisterPaid(req.Name, req.Email, req.Password, req.SessionID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"status": "success",
		"data":   accountSummary(user, token, true),
	})
}

// Login verifies credentials and returns a fresh token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"status": "success",
		"data":   accountSummary(user, token, true),
	})
}

// GetProfile returns the authenticated caller's account, sans password.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.svc.GetProfile(userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"status": "success",
		"data":   user,
	})
}

// UpdateProfile selectively overwrites name/email/password.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.svc.UpdateProfile(userID, service.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"status": "success",
		"data":   accountSummary(user, token, true),
	})
}
