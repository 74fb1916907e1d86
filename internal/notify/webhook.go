// Package notify delivers outbound webhook notifications for validation
// reports that surface high or critical findings.
package notify

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

	"github.com/enviroscope/enviroscope/pkg/validation"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-Enviroscope-Signature"

// Notifier posts report summaries to a configured webhook URL. A nil
// Notifier or empty URL disables delivery.
type Notifier struct {
	URL    string
	Secret []byte
	HTTP   *http.Client
}

// NewNotifier creates a webhook Notifier. Returns nil when no URL is
// configured, so callers can hold a nil notifier without branching.
func NewNotifier(url, secret string) *Notifier {
	if url == "" {
		return nil
	}
	return &Notifier{
		URL:    url,
		Secret: []byte(secret),
		HTTP:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Payload is the notification body.
type Payload struct {
	Event         string    `json:"event"`
	Company       string    `json:"company"`
	ReportID      string    `json:"report_id,omitempty"`
	WorstSeverity string    `json:"worst_severity"`
	FlagCount     int       `json:"flag_count"`
	Timestamp     time.Time `json:"timestamp"`
}

// ShouldNotify reports whether a validation report warrants a notification:
// at least one high or critical flag.
func ShouldNotify(report *validation.Report) bool {
	for _, f := range report.Flags {
		if f.Severity == validation.SeverityHigh || f.Severity == validation.SeverityCritical {
			return true
		}
	}
	return false
}

// NotifyValidation delivers a notification for a validation report. The
// caller decides whether the report warrants one (see ShouldNotify).
func (n *Notifier) NotifyValidation(ctx context.Context, report *validation.Report, reportID string) error {
	if n == nil {
		return nil
	}

	payload := Payload{
		Event:         "validation.flagged",
		Company:       report.Company,
		ReportID:      reportID,
		WorstSeverity: report.WorstSeverity(),
		FlagCount:     len(report.Flags),
		Timestamp:     time.Now().UTC(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, Sign(body, n.Secret))

	resp, err := n.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification rejected: status %d", resp.StatusCode)
	}
	return nil
}

// Sign computes the hex HMAC-SHA256 signature of body with the secret.
func Sign(body, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a received signature against the expected one.
// Receivers of Enviroscope notifications can use this for validation.
func VerifySignature(body []byte, signature string, secret []byte) error {
	expected := Sign(body, secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
