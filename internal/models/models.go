package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Role is the coarse-grained permission tier of a user account
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Video processing states
const (
	VideoStatusProcessing = "processing"
	VideoStatusReady      = "ready"
	VideoStatusFailed     = "failed"
)

// Subscription states
const (
	SubscriptionStatusActive  = "active"
	SubscriptionStatusPending = "pending"
	SubscriptionStatusExpired = "expired"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// AppConfig is the global configuration for the deployment.
// This is a singleton model (only one row should exist).
type AppConfig struct {
	BaseModel
	// Authentication configuration
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"` // Auto-generated on first boot (64 hex chars)

	// Subscription expiry sweep configuration
	SweepSchedule string     `json:"sweep_schedule"` // Cron expression, e.g. "0 3 * * *" (3am daily), empty = no sweep
	LastSweepAt   *time.Time `json:"last_sweep_at"`
	NextSweepAt   *time.Time `json:"next_sweep_at"` // Calculated from cron schedule
}

// User represents a platform account
type User struct {
	BaseModel
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"unique;not null"`
	CPF          string    `json:"-" gorm:"type:varchar(11)"` // digits only, no formatting
	PasswordHash string    `json:"-"`                         // empty for social-only accounts
	Role         Role      `json:"role" gorm:"type:varchar(16);not null;default:user"`
	Provider     string    `json:"-"` // "", "google" or "apple"
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Plan represents a subscription plan. The ID is a stable slug
// ("starter", "pro", "elite") referenced directly by checkout requests.
type Plan struct {
	ID       string   `json:"id" gorm:"primaryKey;type:varchar(32)"`
	Name     string   `json:"name" gorm:"not null"`
	Price    float64  `json:"price" gorm:"not null"` // monthly price in BRL
	Rank     int      `json:"-" gorm:"not null"`     // entitlement ordering, higher unlocks more
	Features Features `json:"features" gorm:"type:text;serializer:json"`
}

// Features is the marketing feature list shown on the plans page
type Features []string

// Video represents a catalog entry
type Video struct {
	BaseModel
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Theme       string `json:"theme" gorm:"not null;index"`
	Duration    string `json:"duration"` // "12:30" display format
	Thumbnail   string `json:"thumbnail"`
	URL         string `json:"url,omitempty"` // omitted in responses when locked for the viewer
	MinPlan     string `json:"-"`             // plan slug required to watch, empty = free tier
	Status      string `json:"status" gorm:"not null;default:processing"`
	FilePath    string `json:"-"` // raw upload location consumed by the processing worker

	UploadedByID string `json:"-"`
	UploadedBy   *User  `json:"uploaded_by,omitempty" gorm:"foreignKey:UploadedByID;references:ID;constraint:OnDelete:SET NULL"`

	// Computed per viewer, not persisted
	Locked bool `json:"locked" gorm:"-"`
}

// Subscription ties a user to a plan for a billing period
type Subscription struct {
	BaseModel
	UserID        string    `json:"user_id" gorm:"not null;index"`
	PlanID        string    `json:"plan_id" gorm:"not null"`
	Status        string    `json:"status" gorm:"not null"`
	PaymentMethod string    `json:"payment_method" gorm:"not null"` // card, pix, boleto
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`

	// Relationships
	Plan Plan  `json:"plan,omitzero" gorm:"foreignKey:PlanID"`
	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&User{}, &AppConfig{}, &Plan{}, &Video{}, &Subscription{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
