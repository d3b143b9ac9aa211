package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// SMSService sends text messages through a BestSMSBulk-compatible HTTP gateway
type SMSService struct {
	Username string
	Password string
	SenderID string
	APIPath  string
	Client   *http.Client
}

// SMSResponse represents the gateway response
type SMSResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"message_id"`
		Cost      string `json:"cost"`
	} `json:"data"`
}

// NewSMSServiceFromEnv reads SMS_USERNAME, SMS_PASSWORD, SMS_SENDER_ID and SMS_API_URL.
// It returns nil when no credentials are configured.
func NewSMSServiceFromEnv() *SMSService {
	username := os.Getenv("SMS_USERNAME")
	if username == "" {
		log.Println("SMS gateway not configured, SMS notifications disabled")
		return nil
	}
	apiPath := os.Getenv("SMS_API_URL")
	if apiPath == "" {
		apiPath = "https://www.bestsmsbulk.com/bestsmsbulkapi/common/sendSmsWpAPI.php"
	}
	return &SMSService{
		Username: username,
		Password: os.Getenv("SMS_PASSWORD"),
		SenderID: os.Getenv("SMS_SENDER_ID"),
		APIPath:  apiPath,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendMessage sends a free-text SMS
func (s *SMSService) SendMessage(phoneNumber, message string) error {
	if !strings.HasPrefix(phoneNumber, "+") {
		phoneNumber = "+" + phoneNumber
	}

	params := url.Values{}
	params.Set("username", s.Username)
	params.Set("password", s.Password)
	params.Set("senderid", s.SenderID)
	params.Set("destination", phoneNumber)
	params.Set("message", message)

	fullURL := fmt.Sprintf("%s?%s", s.APIPath, params.Encode())
	req, err := http.NewRequest(http.MethodPost, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("User-Agent", "Salon-Notification-Service/1.0")

	log.Printf("📤 Sending SMS to: %s", phoneNumber)

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS API returned status %d: %s", resp.StatusCode, string(body))
	}

	var smsResp SMSResponse
	if err := json.Unmarshal(body, &smsResp); err != nil {
		// some gateways answer with plain text on success
		responseStr := strings.ToLower(strings.TrimSpace(string(body)))
		if strings.Contains(responseStr, "success") || strings.Contains(responseStr, "sent") {
			return nil
		}
		return fmt.Errorf("failed to parse SMS response: %w", err)
	}
	if smsResp.Status == "success" || smsResp.Status == "sent" {
		log.Printf("SMS sent to %s, Message ID: %s", phoneNumber, smsResp.Data.MessageID)
		return nil
	}
	return fmt.Errorf("SMS sending failed: %s", smsResp.Message)
}
