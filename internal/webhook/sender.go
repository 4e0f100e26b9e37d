// Package webhook delivers normalized job sets downstream as signed HTTP
// POSTs. The receiver recomputes the HMAC over the exact bytes received
// and rejects on mismatch.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

const SignatureHeader = "X-Signature"

// Payload is the delivery body. Jobs always serializes, even when empty.
type Payload struct {
	Jobs      []jobs.Job `json:"jobs"`
	Source    string     `json:"source"`
	Method    string     `json:"method"`
	FetchedAt time.Time  `json:"fetched_at"`
	RequestID string     `json:"request_id"`
}

// Sender posts signed payloads to one configured endpoint.
type Sender struct {
	endpoint string
	secret   []byte
	client   *http.Client
}

func NewSender(endpoint, secret string, timeout time.Duration) *Sender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{
		endpoint: endpoint,
		secret:   []byte(secret),
		client:   &http.Client{Timeout: timeout},
	}
}

// Send delivers one fetch result. The signature covers the raw body bytes
// exactly as sent.
func (s *Sender) Send(ctx context.Context, result jobs.FetchResult, source string) error {
	payload := Payload{
		Jobs:      result.Jobs,
		Source:    source,
		Method:    result.Method,
		FetchedAt: result.FetchedAt,
		RequestID: uuid.NewString(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, Sign(s.secret, body))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign computes the signature header value for a request body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a received signature against the exact body bytes.
func Verify(secret, body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}
