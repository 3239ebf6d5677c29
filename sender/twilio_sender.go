package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioWhatsAppSender sends a copy of each order to the shop's WhatsApp
// number through the Twilio Messages API.
type TwilioWhatsAppSender struct {
	accountSID string
	authToken  string
	fromNumber string
	toNumber   string
	apiBase    string
	httpClient *http.Client
}

func NewTwilioWhatsAppSender(accountSID, authToken, fromNumber, toNumber string) (*TwilioWhatsAppSender, error) {
	if accountSID == "" {
		return nil, fmt.Errorf("TWILIO_ACCOUNT_SID not set")
	}
	if authToken == "" {
		return nil, fmt.Errorf("TWILIO_AUTH_TOKEN not set")
	}
	if fromNumber == "" {
		return nil, fmt.Errorf("TWILIO_FROM_NUMBER not set")
	}
	if toNumber == "" {
		return nil, fmt.Errorf("recipient number not set")
	}

	return &TwilioWhatsAppSender{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: whatsAppAddress(fromNumber),
		toNumber:   whatsAppAddress(toNumber),
		apiBase:    twilioAPIBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// whatsAppAddress formats a phone number as a Twilio WhatsApp address.
func whatsAppAddress(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	if !strings.HasPrefix(number, "+") {
		number = "+" + number
	}
	return "whatsapp:" + number
}

type twilioMessage struct {
	SID string `json:"sid"`
}

func (t *TwilioWhatsAppSender) SendMessage(ctx context.Context, msg string) (SendResult, error) {
	apiURL := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.apiBase, t.accountSID)

	formData := url.Values{}
	formData.Set("To", t.toNumber)
	formData.Set("From", t.fromNumber)
	formData.Set("Body", msg)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL,
		strings.NewReader(formData.Encode()))
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 300 {
		return SendResult{}, fmt.Errorf("twilio error %s: %s", resp.Status, string(respBody))
	}

	result := SendResult{SentAt: time.Now()}
	var m twilioMessage
	if err := json.Unmarshal(respBody, &m); err == nil && m.SID != "" {
		result.MessageID = m.SID
	} else {
		result.MessageID = fmt.Sprintf("twilio-%d", result.SentAt.UnixNano())
	}
	return result, nil
}
