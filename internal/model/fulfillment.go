package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending  = "pending"
	ComplaintStatusOpen = "open"
)

// Order is created by the create_order tool and never mutated afterwards.
type Order struct {
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	CallID          string          `json:"call_id,omitempty"`
	ProductName     string          `json:"product_name"`
	SizeVariant     string          `json:"size_variant"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	DeliveryAddress string          `json:"delivery_address,omitempty"`
	IsPWDSenior     bool            `json:"is_pwd_senior"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Status          string          `json:"status"`
}

// Complaint is created by the log_complaint tool.
type Complaint struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	CallID        string    `json:"call_id,omitempty"`
	CustomerName  string    `json:"customer_name,omitempty"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	ComplaintType string    `json:"complaint_type"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
}
