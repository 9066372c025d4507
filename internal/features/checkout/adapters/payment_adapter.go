package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pouchstore/internal/core/httpclient"
	"pouchstore/internal/features/checkout/ports"

	"github.com/shopspring/decimal"
)

// HTTPPaymentGateway implements ports.PaymentGateway against a JSON payment
// API. A decline comes back as a well-formed response, not an HTTP error.
type HTTPPaymentGateway struct {
	client *http.Client
	url    string
	apiKey string
}

// NewHTTPPaymentGateway creates a new HTTPPaymentGateway.
func NewHTTPPaymentGateway(url, apiKey string) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{
		client: httpclient.NewClient(10 * time.Second),
		url:    url,
		apiKey: apiKey,
	}
}

type captureRequest struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Token    string `json:"token"`
}

type captureResponse struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Reason    string `json:"reason,omitempty"`
}

// AuthorizeAndCapture posts a capture request. The amount travels as an exact
// decimal string, never a float.
func (g *HTTPPaymentGateway) AuthorizeAndCapture(ctx context.Context, amount decimal.Decimal, currency, token string) (ports.PaymentResult, error) {
	payload, err := json.Marshal(captureRequest{
		Amount:   amount.StringFixed(2),
		Currency: currency,
		Token:    token,
	})
	if err != nil {
		return ports.PaymentResult{}, fmt.Errorf("failed to marshal capture request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url+"/v1/captures", bytes.NewReader(payload))
	if err != nil {
		return ports.PaymentResult{}, fmt.Errorf("failed to create capture request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return ports.PaymentResult{}, fmt.Errorf("failed to reach payment gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.PaymentResult{}, fmt.Errorf("payment gateway returned status: %d", resp.StatusCode)
	}

	var body captureResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ports.PaymentResult{}, fmt.Errorf("failed to decode capture response: %w", err)
	}

	switch body.Status {
	case "succeeded":
		return ports.PaymentResult{Succeeded: true, Reference: body.Reference}, nil
	case "declined":
		return ports.PaymentResult{Succeeded: false, DeclineReason: body.Reason}, nil
	default:
		return ports.PaymentResult{}, fmt.Errorf("unexpected capture status: %q", body.Status)
	}
}
