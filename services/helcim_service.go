package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HSouheill/salon_backend/models"
	"github.com/google/uuid"
)

// DefaultTerminalTimeout bounds every call to the terminal provider
const DefaultTerminalTimeout = 5 * time.Second

// TerminalClient is the part of the terminal provider the reconciler needs
type TerminalClient interface {
	GetCardTransaction(ctx context.Context, transactionID string) (*models.HelcimCardTransaction, error)
	StartPurchase(ctx context.Context, deviceCode string, req models.HelcimPurchaseRequest) error
	Ping(ctx context.Context) error
}

// HelcimService handles interactions with the Helcim API
type HelcimService struct {
	baseURL  string
	apiToken string
	debug    bool
	client   *http.Client
}

// NewHelcimService creates a new Helcim service instance
func NewHelcimService(baseURL, apiToken string, timeout time.Duration, debug bool) *HelcimService {
	if baseURL == "" {
		baseURL = "https://api.helcim.com/v2/"
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if timeout <= 0 {
		timeout = DefaultTerminalTimeout
	}

	if apiToken == "" {
		log.Printf("WARNING: Helcim credentials not configured:")
		log.Printf("  - HELCIM_API_TOKEN is missing")
		log.Printf("Terminal charges and transaction sync are disabled until it is set")
	} else {
		log.Printf("Helcim Service Configuration:")
		log.Printf("  Base URL: %s", baseURL)
		log.Printf("  Timeout: %s", timeout)
		log.Printf("  API Token: [CONFIGURED]")
	}

	return &HelcimService{
		baseURL:  baseURL,
		apiToken: apiToken,
		debug:    debug,
		client:   &http.Client{Timeout: timeout},
	}
}

// getHeaders returns the standard headers required for Helcim API requests
func (s *HelcimService) getHeaders() map[string]string {
	return map[string]string{
		"accept":       "application/json",
		"content-type": "application/json",
		"api-token":    s.apiToken,
	}
}

// makeRequest performs an HTTP request to the Helcim API and decodes the body into out
func (s *HelcimService) makeRequest(ctx context.Context, method, endpoint string, payload interface{}, headers map[string]string, out interface{}) error {
	if s.apiToken == "" {
		return ErrTerminalNotConfigured
	}

	fullURL := s.baseURL + strings.TrimPrefix(endpoint, "/")

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range s.getHeaders() {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if s.debug {
		log.Printf("Helcim API Request:")
		log.Printf("  URL: %s", fullURL)
		log.Printf("  Method: %s", method)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTerminalUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrTerminalUnavailable, err)
	}

	if s.debug {
		log.Printf("Helcim API Response (%d): %s", resp.StatusCode, string(respBody))
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrTerminalUnavailable, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp models.HelcimErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Errors != nil {
			return fmt.Errorf("helcim API error: status %d: %v", resp.StatusCode, errResp.Errors)
		}
		return fmt.Errorf("helcim API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w\nResponse body: %s", err, string(respBody))
	}
	return nil
}

// GetCardTransaction fetches the current state of one card transaction
func (s *HelcimService) GetCardTransaction(ctx context.Context, transactionID string) (*models.HelcimCardTransaction, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, errors.New("transaction id is required")
	}
	var tx models.HelcimCardTransaction
	if err := s.makeRequest(ctx, http.MethodGet, "card-transactions/"+url.PathEscape(transactionID), nil, nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// StartPurchase pushes a purchase to a smart terminal device. The outcome
// arrives later through the webhook or a sync.
func (s *HelcimService) StartPurchase(ctx context.Context, deviceCode string, req models.HelcimPurchaseRequest) error {
	if deviceCode == "" {
		return errors.New("device code is required")
	}
	if req.Currency == "" {
		req.Currency = "CAD"
	}
	headers := map[string]string{"idempotency-key": uuid.NewString()}
	endpoint := fmt.Sprintf("devices/%s/payment/purchase", url.PathEscape(deviceCode))
	return s.makeRequest(ctx, http.MethodPost, endpoint, req, headers, nil)
}

// Ping checks that the provider is reachable with the configured token
func (s *HelcimService) Ping(ctx context.Context) error {
	return s.makeRequest(ctx, http.MethodGet, "connection-test", nil, nil, nil)
}
