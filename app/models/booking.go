package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

type Booking struct {
	ID            string          `gorm:"size:36;primaryKey" json:"id"`
	OrderID       string          `gorm:"size:64;not null;uniqueIndex" json:"orderId"`
	TourID        string          `gorm:"size:36;not null;index" json:"tour"`
	TourName      string          `gorm:"size:40;not null" json:"tourName"`
	UserID        string          `gorm:"size:36;not null;index" json:"user"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Paid          bool            `gorm:"not null;default:false" json:"paid"`
	PaymentStatus string          `gorm:"size:30;not null;default:'pending'" json:"paymentStatus"`
	PaymentToken  string          `gorm:"size:100" json:"-"`
	RedirectURL   string          `gorm:"size:255" json:"redirectUrl,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"-"`
}
