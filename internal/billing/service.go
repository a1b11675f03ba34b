package billing

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/wakeupnow/wakeup/internal/models"
)

var (
	ErrUnknownPlan          = errors.New("unknown plan")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// Payment methods accepted by checkout
const (
	MethodCard   = "card"
	MethodPix    = "pix"
	MethodBoleto = "boleto"
)

const subscriptionPeriod = 30 * 24 * time.Hour

// Service manages plans, checkout and subscription lifecycle
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a new billing service
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// defaultPlans is the seed catalog. Rank orders entitlement: a subscriber
// unlocks every video whose plan rank is at or below their own.
var defaultPlans = []models.Plan{
	{
		ID:    "starter",
		Name:  "Starter",
		Price: 29.90,
		Rank:  1,
		Features: models.Features{
			"Acesso aos cursos de Rotina",
			"Novos vídeos toda semana",
		},
	},
	{
		ID:    "pro",
		Name:  "Pro",
		Price: 49.90,
		Rank:  2,
		Features: models.Features{
			"Tudo do Starter",
			"Cursos de Bem-estar e Fitness",
			"Download para assistir offline",
		},
	},
	{
		ID:    "elite",
		Name:  "Elite",
		Price: 79.90,
		Rank:  3,
		Features: models.Features{
			"Tudo do Pro",
			"Cursos de Saúde com especialistas",
			"Mentoria mensal ao vivo",
		},
	},
}

// SeedPlans inserts the plan catalog if it is not present yet
func (s *Service) SeedPlans() error {
	for _, plan := range defaultPlans {
		var existing models.Plan
		err := s.db.Where("id = ?", plan.ID).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check plan %s: %w", plan.ID, err)
		}
		if err := s.db.Create(&plan).Error; err != nil {
			return fmt.Errorf("failed to seed plan %s: %w", plan.ID, err)
		}
		s.logger.Info().Str("plan_id", plan.ID).Msg("Seeded subscription plan")
	}
	return nil
}

// ListPlans returns the plan catalog ordered by rank
func (s *Service) ListPlans() ([]models.Plan, error) {
	var plans []models.Plan
	if err := s.db.Order("rank ASC").Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// PlanRank returns the entitlement rank of a plan slug. The empty slug is
// the free tier (rank 0); unknown slugs rank above every plan so content
// tagged with them never leaks.
func (s *Service) PlanRank(planID string) int {
	if planID == "" {
		return 0
	}
	var plan models.Plan
	if err := s.db.Where("id = ?", planID).First(&plan).Error; err != nil {
		return int(^uint(0) >> 1)
	}
	return plan.Rank
}

// EntitlementRank returns the rank of the user's active subscription, or 0
// when they have none. Anonymous viewers pass an empty user ID.
func (s *Service) EntitlementRank(userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}

	sub, err := s.ActiveSubscription(userID)
	if err != nil {
		return 0, err
	}
	if sub == nil {
		return 0, nil
	}
	return sub.Plan.Rank, nil
}

// ActiveSubscription returns the user's current active subscription, nil if none
func (s *Service) ActiveSubscription(userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.Preload("Plan").
		Where("user_id = ? AND status = ? AND end_date > ?", userID, models.SubscriptionStatusActive, time.Now()).
		Order("end_date DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return &sub, nil
}

// CheckoutResult carries the created subscription plus the payment
// artifacts the user needs for offline methods.
type CheckoutResult struct {
	Subscription *models.Subscription
	PixCode      string
	BoletoLine   string
}

// Checkout subscribes a user to a plan. Card payments activate immediately;
// pix and boleto stay pending until the payment clears.
func (s *Service) Checkout(userID, planID, method string) (*CheckoutResult, error) {
	var plan models.Plan
	if err := s.db.Where("id = ?", planID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownPlan
		}
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}

	status := models.SubscriptionStatusActive
	switch method {
	case MethodCard:
	case MethodPix, MethodBoleto:
		status = models.SubscriptionStatusPending
	default:
		return nil, ErrUnknownPaymentMethod
	}

	now := time.Now()
	sub := &models.Subscription{
		UserID:        userID,
		PlanID:        plan.ID,
		Status:        status,
		PaymentMethod: method,
		StartDate:     now,
		EndDate:       now.Add(subscriptionPeriod),
	}

	if err := s.db.Create(sub).Error; err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	sub.Plan = plan

	result := &CheckoutResult{Subscription: sub}
	switch method {
	case MethodPix:
		result.PixCode = generatePixCode(sub.ID, plan.Price)
	case MethodBoleto:
		result.BoletoLine = generateBoletoLine(plan.Price)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("plan_id", plan.ID).
		Str("payment_method", method).
		Str("status", status).
		Msg("Checkout completed")

	return result, nil
}

// ExpireOverdue flips active subscriptions past their end date to expired.
// Returns the number of subscriptions expired.
func (s *Service) ExpireOverdue() (int64, error) {
	result := s.db.Model(&models.Subscription{}).
		Where("status = ? AND end_date <= ?", models.SubscriptionStatusActive, time.Now()).
		Update("status", models.SubscriptionStatusExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire subscriptions: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		s.logger.Info().Int64("count", result.RowsAffected).Msg("Expired overdue subscriptions")
	}

	return result.RowsAffected, nil
}

// generatePixCode builds a copy-and-paste payload in the BR Code layout.
// The dev backend never talks to a PSP, the code only needs to look right.
func generatePixCode(txid string, amount float64) string {
	return fmt.Sprintf("00020126580014BR.GOV.BCB.PIX0136%s520400005303986540%d%.2f5802BR6009SAO PAULO", txid, len(fmt.Sprintf("%.2f", amount)), amount)
}

// generateBoletoLine builds a 47-digit digitable line with random fields
func generateBoletoLine(amount float64) string {
	var b strings.Builder
	b.WriteString("23793")
	for b.Len() < 37 {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteByte('0')
			continue
		}
		b.WriteString(n.String())
	}
	cents := int64(amount * 100)
	b.WriteString(fmt.Sprintf("%010d", cents))
	return b.String()
}
