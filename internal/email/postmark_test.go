package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendReceipt(t *testing.T) {
	var received postmarkEmail
	var gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", "support@sleephaven.ai")
	client.apiURL = server.URL

	err := client.SendReceipt("alice@example.com", "Alice", "cs_test_123", 5000)
	if err != nil {
		t.Fatalf("send receipt: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if received.To != "alice@example.com" {
		t.Errorf("To = %q, want %q", received.To, "alice@example.com")
	}
	if received.From != "support@sleephaven.ai" {
		t.Errorf("From = %q, want %q", received.From, "support@sleephaven.ai")
	}
	if received.Subject != "Welcome to Sleep Haven - Your Account & Receipt" {
		t.Errorf("Subject = %q, want receipt subject", received.Subject)
	}
	if !strings.Contains(received.TextBody, "cs_test_123") {
		t.Error("text body missing payment id")
	}
	if !strings.Contains(received.TextBody, "$50.00") {
		t.Errorf("text body missing amount, got %q", received.TextBody)
	}
	if !strings.Contains(received.HtmlBody, "Welcome to Sleep Haven, Alice!") {
		t.Error("html body missing greeting")
	}
}

func TestSendReceiptNotConfigured(t *testing.T) {
	client := NewClient("", "support@sleephaven.ai")

	err := client.SendReceipt("alice@example.com", "Alice", "cs_test_123", 5000)
	if err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestSendReceiptAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient("test-token", "support@sleephaven.ai")
	client.apiURL = server.URL

	err := client.SendReceipt("alice@example.com", "Alice", "cs_test_123", 5000)
	if err == nil {
		t.Fatal("expected error for API failure")
	}
}
