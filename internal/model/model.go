package model

import "time"

// User is a registered account. PasswordHash is never serialized; handlers
// return the Summary shape instead.
type User struct {
	ID               string    `json:"_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	HasPaidPlan      bool      `json:"hasPaidPlan"`
	PaymentSessionID *string   `json:"paymentSessionId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
