package payment

import (
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	checksession "github.com/stripe/stripe-go/v82/checkout/session"
)

// GuestUserID marks checkout sessions created without a known account.
const GuestUserID = "guest"

// StatusPaid is the gateway's settled payment status.
const StatusPaid = "paid"

// Fixed product: one-time purchase, single line item.
const (
	productName        = "Sleep Haven Personalized Plan"
	productDescription = "Personalized sleep plan with lifetime access and 24/7 support"
	productImage       = "https://www.sleephaven.ai/images/plan.png"
	unitAmountCents    = 5000
)

// ErrSessionNotFound is returned when the gateway has no record of a session id.
var ErrSessionNotFound = errors.New("checkout session not found")

type Config struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
}

// Client wraps the Stripe checkout API for the fixed-price plan.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	stripe.Key = cfg.SecretKey
	return &Client{cfg: cfg}
}

// SessionStatus is the subset of gateway session state this system observes.
type SessionStatus struct {
	PaymentStatus string
	CustomerEmail string
	AmountTotal   int64
	UserID        string
}

// CreateCheckoutSession creates a hosted checkout session for the plan and
// returns its redirect URL. userID tags the session metadata for later
// reconciliation; customerEmail, when non-empty, pre-fills the checkout form.
func (c *Client) CreateCheckoutSession(userID, customerEmail string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(productName),
						Description: stripe.String(productDescription),
						Images:      stripe.StringSlice([]string{productImage}),
					},
					UnitAmount: stripe.Int64(unitAmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(c.cfg.SuccessURL),
		CancelURL:  stripe.String(c.cfg.CancelURL),
	}
	params.AddMetadata("userId", userID)
	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}

	sess, err := checksession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// RetrieveSession looks up a checkout session by id and returns its observed
// status. Unknown ids map to ErrSessionNotFound.
func (c *Client) RetrieveSession(sessionID string) (*SessionStatus, error) {
	sess, err := checksession.Get(sessionID, nil)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}

	status := &SessionStatus{
		PaymentStatus: string(sess.PaymentStatus),
		AmountTotal:   sess.AmountTotal,
		UserID:        sess.Metadata["userId"],
	}
	if sess.CustomerDetails != nil {
		status.CustomerEmail = sess.CustomerDetails.Email
	}
	return status, nil
}
