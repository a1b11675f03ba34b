package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Payment methods accepted by checkout
const (
	PaymentMethodCard   = "card"
	PaymentMethodPix    = "pix"
	PaymentMethodBoleto = "boleto"
)

// Plan represents a subscription plan offer
type Plan struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Features []string `json:"features"`
}

// PlansResponse wraps the plan listing
type PlansResponse struct {
	Plans []Plan `json:"plans"`
}

// ListPlans returns the available subscription plans. Public endpoint.
func (c *Client) ListPlans() ([]Plan, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/api/payment/plans")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("failed to list plans", resp)
	}

	var plansResp PlansResponse
	if err := json.NewDecoder(resp.Body).Decode(&plansResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return plansResp.Plans, nil
}

// CheckoutRequest represents the checkout request body
type CheckoutRequest struct {
	PlanID        string `json:"planId"`
	PaymentMethod string `json:"paymentMethod"`
}

// Subscription represents the created subscription
type Subscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PlanID    string    `json:"plan_id"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// CheckoutResponse represents the checkout outcome. For pix and boleto the
// payment artifacts carry what the user needs to complete the payment.
type CheckoutResponse struct {
	Success      bool         `json:"success"`
	Subscription Subscription `json:"subscription"`
	PixCode      string       `json:"pix_code,omitempty"`
	BoletoLine   string       `json:"boleto_line,omitempty"`
}

// Checkout subscribes the authenticated user to a plan
func (c *Client) Checkout(token, planID, paymentMethod string) (*CheckoutResponse, error) {
	jsonData, err := json.Marshal(CheckoutRequest{PlanID: planID, PaymentMethod: paymentMethod})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := c.authedRequest(http.MethodPost, "/api/payment/checkout", token, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, c.statusError("checkout failed", resp)
	}

	var checkoutResp CheckoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&checkoutResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &checkoutResp, nil
}
