package service

import (
	"fmt"
	"log/slog"

	"github.com/sleephaven/sleephaven/internal/auth"
	"github.com/sleephaven/sleephaven/internal/model"
	"github.com/sleephaven/sleephaven/internal/payment"
	"github.com/sleephaven/sleephaven/internal/store"
)

// UserStore is the durable account store consumed by the services.
// *store.UserStore satisfies it; tests substitute fakes.
type UserStore interface {
	Create(name, email, passwordHash string, hasPaidPlan bool, paymentSessionID *string) (*model.User, error)
	GetByID(id string) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	Update(id, name, email, passwordHash string) (*model.User, error)
}

// PaymentGateway is the hosted-checkout provider. *payment.Client satisfies it.
type PaymentGateway interface {
	CreateCheckoutSession(userID, customerEmail string) (string, error)
	RetrieveSession(sessionID string) (*payment.SessionStatus, error)
}

// ReceiptSender delivers the post-payment welcome email. Delivery is
// best-effort: callers log failures and move on.
type ReceiptSender interface {
	SendReceipt(toEmail, name, sessionID string, amountCents int64) error
}

// UserService implements registration, login, and profile management. Paid
// registration is the one ordered sequence here: payment verification strictly
// precedes the uniqueness check and account creation.
type UserService struct {
	users   UserStore
	gateway PaymentGateway
	tokens  *auth.TokenManager
	mailer  ReceiptSender
	logger  *slog.Logger
}

func NewUserService(users UserStore, gateway PaymentGateway, tokens *auth.TokenManager, mailer ReceiptSender, logger *slog.Logger) *UserService {
	return &UserService{
		users:   users,
		gateway: gateway,
		tokens:  tokens,
		mailer:  mailer,
		logger:  logger,
	}
}

// RegisterFree creates an unpaid account and returns it with a fresh token.
func (s *UserService) RegisterFree(name, email, password string) (*model.User, string, error) {
	if name == "" || email == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	// Fast-path lookup for a friendlier error; the UNIQUE constraint below is
	// the authoritative check.
	existing, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrUserExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.Create(name, email, hash, false, nil)
	if err != nil {
		if store.IsDuplicateEmail(err) {
			return nil, "", ErrUserExists
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// RegisterPaid exchanges a completed checkout session for a paid account.
// An invalid or unpaid session never creates an account; a taken email after
// a valid payment is rejected without any compensating action, and the
// session is not marked consumed.
func (s *UserService) RegisterPaid(name, email, password, sessionID string) (*model.User, string, error) {
	if name == "" || email == "" || password == "" || sessionID == "" {
		return nil, "", ErrMissingFields
	}

	status, err := s.gateway.RetrieveSession(sessionID)
	if err != nil {
		s.logger.Warn("payment verification failed", "session_id", sessionID, "error", err)
		return nil, "", ErrInvalidSession
	}
	if status.PaymentStatus != payment.StatusPaid {
		return nil, "", ErrInvalidSession
	}

	existing, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrUserExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.Create(name, email, hash, true, &sessionID)
	if err != nil {
		if store.IsDuplicateEmail(err) {
			return nil, "", ErrUserExists
		}
		return nil, "", fmt.Errorf("create paid user: %w", err)
	}

	// Best-effort receipt; a delivery failure never fails the registration.
	if s.mailer != nil {
		if err := s.mailer.SendReceipt(email, name, sessionID, status.AmountTotal); err != nil {
			s.logger.Error("send receipt email", "email", email, "error", err)
		}
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the account with a fresh token. The
// error is the same whether the email is unknown or the password is wrong.
func (s *UserService) Login(email, password string) (*model.User, string, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetProfile returns the account for an authenticated caller's id.
func (s *UserService) GetProfile(id string) (*model.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ProfileUpdate carries the fields of a profile update; empty strings leave
// the current value unchanged.
type ProfileUpdate struct {
	Name     string
	Email    string
	Password string
}

// UpdateProfile selectively overwrites name/email/password and returns the
// updated account with a fresh token. A password change is re-hashed.
func (s *UserService) UpdateProfile(id string, upd ProfileUpdate) (*model.User, string, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, "", ErrUserNotFound
	}

	name := user.Name
	if upd.Name != "" {
		name = upd.Name
	}
	email := user.Email
	if upd.Email != "" {
		email = upd.Email
	}
	hash := user.PasswordHash
	if upd.Password != "" {
		hash, err = auth.HashPassword(upd.Password)
		if err != nil {
			return nil, "", err
		}
	}

	updated, err := s.users.Update(id, name, email, hash)
	if err != nil {
		if store.IsDuplicateEmail(err) {
			return nil, "", ErrUserExists
		}
		return nil, "", fmt.Errorf("update user: %w", err)
	}

	token, err := s.tokens.Issue(updated.ID)
	if err != nil {
		return nil, "", err
	}
	return updated, token, nil
}
