package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Webhook signature headers sent by the terminal provider
const (
	HeaderWebhookID        = "webhook-id"
	HeaderWebhookTimestamp = "webhook-timestamp"
	HeaderWebhookSignature = "webhook-signature"
)

var (
	ErrMissingSecret    = errors.New("webhook secret is not configured")
	ErrMissingSignature = errors.New("webhook signature headers are missing")
	ErrInvalidSecret    = errors.New("webhook secret is not valid base64")
	ErrSignatureInvalid = errors.New("webhook signature does not match")
)

// WebhookVerifier checks HMAC-SHA256 signatures over "{id}.{timestamp}.{body}"
type WebhookVerifier struct {
	key []byte
}

// NewWebhookVerifier decodes the base64 shared secret. A "whsec_" prefix is tolerated.
func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	secret = strings.TrimPrefix(secret, "whsec_")
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return &WebhookVerifier{key: key}, nil
}

// Sign returns the base64 digest for one delivery
func (v *WebhookVerifier) Sign(deliveryID, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(deliveryID))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify accepts the delivery when any whitespace-separated "version,signature"
// token in the header carries the expected digest.
func (v *WebhookVerifier) Verify(deliveryID, timestamp string, body []byte, signatureHeader string) error {
	if v == nil || len(v.key) == 0 {
		return ErrMissingSecret
	}
	if deliveryID == "" || timestamp == "" || strings.TrimSpace(signatureHeader) == "" {
		return ErrMissingSignature
	}

	expected := []byte(v.Sign(deliveryID, timestamp, body))
	for _, token := range strings.Fields(signatureHeader) {
		_, sig, found := strings.Cut(token, ",")
		if !found {
			sig = token
		}
		if hmac.Equal([]byte(sig), expected) {
			return nil
		}
	}
	return ErrSignatureInvalid
}
