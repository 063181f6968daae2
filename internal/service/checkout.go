package service

import (
	"errors"
	"fmt"

	"github.com/sleephaven/sleephaven/internal/payment"
)

// CheckoutService creates hosted checkout sessions and answers payment
// verification queries. It holds no local state; every call creates or reads
// gateway-side state.
type CheckoutService struct {
	users   UserStore
	gateway PaymentGateway
}

func NewCheckoutService(users UserStore, gateway PaymentGateway) *CheckoutService {
	return &CheckoutService{users: users, gateway: gateway}
}

// CreateSession creates a checkout session tagged with the requesting user's
// id, or the guest marker when none is supplied. A supplied id is validated
// against the store before any gateway call.
func (s *CheckoutService) CreateSession(userID string) (string, error) {
	meta := payment.GuestUserID
	if userID != "" {
		user, err := s.users.GetByID(userID)
		if err != nil {
			return "", fmt.Errorf("lookup user: %w", err)
		}
		if user == nil {
			return "", ErrUserNotFound
		}
		meta = user.ID
	}

	url, err := s.gateway.CreateCheckoutSession(meta, "")
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return url, nil
}

// CreateGuestSession creates a checkout session with the guest marker,
// optionally forwarding a contact email so the gateway can pre-fill checkout.
func (s *CheckoutService) CreateGuestSession(email string) (string, error) {
	url, err := s.gateway.CreateCheckoutSession(payment.GuestUserID, email)
	if err != nil {
		return "", fmt.Errorf("create guest session: %w", err)
	}
	return url, nil
}

// VerifyPayment returns the gateway's view of a session: payment status,
// customer email, total amount, and the metadata-carried requester identity.
// It does not decide pass/fail; the caller interprets the status.
func (s *CheckoutService) VerifyPayment(sessionID string) (*payment.SessionStatus, error) {
	status, err := s.gateway.RetrieveSession(sessionID)
	if err != nil {
		if errors.Is(err, payment.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("retrieve session: %w", err)
	}
	return status, nil
}
