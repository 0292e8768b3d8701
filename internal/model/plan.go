package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryFrequency is how often a subscription ships
type DeliveryFrequency string

const (
	FrequencyWeekly   DeliveryFrequency = "weekly"
	FrequencyBiweekly DeliveryFrequency = "biweekly"
	FrequencyMonthly  DeliveryFrequency = "monthly"
)

// Valid reports whether f is a known frequency
func (f DeliveryFrequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// SubscriptionPlan bundles products delivered on a schedule. The product set lives in
// PlanProduct rows, not on the plan record.
type SubscriptionPlan struct {
	ID                uint              `json:"id" gorm:"primarykey"`
	Name              string            `json:"name" gorm:"type:varchar(100);not null"`
	Description       string            `json:"description" gorm:"type:text"`
	Price             decimal.Decimal   `json:"price" gorm:"type:numeric(10,2);not null"`
	DeliveryFrequency DeliveryFrequency `json:"delivery_frequency" gorm:"type:varchar(20);not null"`
	IsActive          bool              `json:"is_active" gorm:"not null"`
	CreatedAt         time.Time         `json:"created_at"`
}

// PlanProduct is one row of the plan to product join mapping
type PlanProduct struct {
	PlanID    uint `json:"plan_id" gorm:"primaryKey"`
	ProductID uint `json:"product_id" gorm:"primaryKey"`
}

// PlanInput carries a subscription plan write
type PlanInput struct {
	Name              *string            `json:"name"`
	Description       *string            `json:"description"`
	Price             *decimal.Decimal   `json:"price"`
	DeliveryFrequency *DeliveryFrequency `json:"delivery_frequency"`
	ProductIDs        *[]uint            `json:"product_ids"`
	IsActive          *bool              `json:"is_active"`
}
