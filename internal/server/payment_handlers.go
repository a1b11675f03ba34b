package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wakeupnow/wakeup/internal/billing"
	"github.com/wakeupnow/wakeup/internal/models"
)

// PlansResponse wraps the plan catalog
type PlansResponse struct {
	Plans []PlanDetail `json:"plans"`
}

// PlanDetail represents a plan in responses
type PlanDetail struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Features []string `json:"features"`
}

// CheckoutRequest represents the checkout request body
type CheckoutRequest struct {
	PlanID        string `json:"planId" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

// SubscriptionDetail represents the created subscription
type SubscriptionDetail struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PlanID    string    `json:"plan_id"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// CheckoutResponse represents the checkout outcome
type CheckoutResponse struct {
	Success      bool               `json:"success"`
	Subscription SubscriptionDetail `json:"subscription"`
	PixCode      string             `json:"pix_code,omitempty"`
	BoletoLine   string             `json:"boleto_line,omitempty"`
}

// @Summary List plans
// @Description List the subscription plan catalog
// @Tags payment
// @Produce json
// @Success 200 {object} PlansResponse
// @Router /api/payment/plans [get]
func (s *Server) listPlans(c *gin.Context) {
	plans, err := s.billingService.ListPlans()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list plans")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	details := make([]PlanDetail, len(plans))
	for i, p := range plans {
		details[i] = PlanDetail{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Features: p.Features,
		}
	}

	c.JSON(http.StatusOK, PlansResponse{Plans: details})
}

// @Summary Checkout
// @Description Subscribe the authenticated user to a plan
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CheckoutRequest true "Checkout request"
// @Success 201 {object} CheckoutResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/payment/checkout [post]
func (s *Server) checkout(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.billingService.Checkout(sessionData.UserID, req.PlanID, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrUnknownPlan):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan"})
		case errors.Is(err, billing.ErrUnknownPaymentMethod):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown payment method"})
		default:
			s.logger.Error().Err(err).Msg("Checkout failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	sub := result.Subscription
	c.JSON(http.StatusCreated, CheckoutResponse{
		Success: sub.Status == models.SubscriptionStatusActive || sub.Status == models.SubscriptionStatusPending,
		Subscription: SubscriptionDetail{
			ID:        sub.ID,
			UserID:    sub.UserID,
			PlanID:    sub.PlanID,
			Status:    sub.Status,
			StartDate: sub.StartDate,
			EndDate:   sub.EndDate,
		},
		PixCode:    result.PixCode,
		BoletoLine: result.BoletoLine,
	})
}
