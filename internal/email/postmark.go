package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const postmarkAPIURL = "https://api.postmarkapp.com/email"

type Client struct {
	serverToken string
	fromEmail   string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(serverToken, fromEmail string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		apiURL:      postmarkAPIURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// SendReceipt sends the welcome/receipt email after a paid registration.
// amountCents is the charged total in USD cents.
func (c *Client) SendReceipt(toEmail, name, sessionID string, amountCents int64) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}

	amount := fmt.Sprintf("$%.2f", float64(amountCents)/100)
	date := time.Now().Format("January 2, 2006")

	textBody := fmt.Sprintf(
		"Welcome to Sleep Haven, %s!\n\nYour account has been created and your sleep plan is now available.\n\nReceipt\nPayment ID: %s\nAmount: %s\nDate: %s\nItem: Sleep Haven Personalized Sleep Plan\n\nLog in at https://www.sleephaven.ai to access your plan.\n\nSweet dreams,\nThe Sleep Haven Team",
		name, sessionID, amount, date,
	)
	htmlBody := fmt.Sprintf(
		`<h2>Welcome to Sleep Haven, %s!</h2>
<p>Your account has been created and your sleep plan is now available.</p>
<h3>Receipt</h3>
<p><strong>Payment ID:</strong> %s<br>
<strong>Amount:</strong> %s<br>
<strong>Date:</strong> %s<br>
<strong>Item:</strong> Sleep Haven Personalized Sleep Plan</p>
<p>Log in at <a href="https://www.sleephaven.ai">www.sleephaven.ai</a> to access your plan.</p>
<p>Sweet dreams,<br>The Sleep Haven Team</p>`,
		name, sessionID, amount, date,
	)

	payload := postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  "Welcome to Sleep Haven - Your Account & Receipt",
		HtmlBody: htmlBody,
		TextBody: textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
