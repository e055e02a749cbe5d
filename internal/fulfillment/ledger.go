// Package fulfillment records the orders and complaints captured during calls.
package fulfillment

import (
	"sync"
	"time"

	"github.com/lapu-lapu-poc/server/internal/model"
	"github.com/shopspring/decimal"
)

const (
	OrderPrefix     = "ORD"
	ComplaintPrefix = "CMP"

	// DefaultLimit is used when a reader does not supply a positive limit.
	DefaultLimit = 20
)

// OrderInput carries the resolved product and customer details for a new order.
type OrderInput struct {
	CallID          string
	Product         model.Product
	Quantity        int
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress string
	IsPWDSenior     bool
}

// ComplaintInput carries the details of a new complaint.
type ComplaintInput struct {
	CallID        string
	CustomerName  string
	CustomerPhone string
	ComplaintType string
	Description   string
}

// Ledger is an append-only, process-lifetime store. Safe for concurrent use.
type Ledger struct {
	mu         sync.RWMutex
	orders     []model.Order
	complaints []model.Complaint

	ids *IDGenerator
	now func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{ids: NewIDGenerator(), now: time.Now}
}

// CreateOrder prices and appends a pending order. Quantities below 1 become 1.
func (l *Ledger) CreateOrder(in OrderInput) model.Order {
	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}
	unit := in.Product.PriceFor(in.IsPWDSenior)

	order := model.Order{
		ID:              l.ids.Next(OrderPrefix),
		CreatedAt:       l.now().UTC(),
		CallID:          in.CallID,
		ProductName:     in.Product.ProductName,
		SizeVariant:     in.Product.SizeVariant,
		Quantity:        qty,
		UnitPrice:       unit,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		DeliveryAddress: in.DeliveryAddress,
		IsPWDSenior:     in.IsPWDSenior,
		TotalPrice:      unit.Mul(decimal.NewFromInt(int64(qty))),
		Status:          model.OrderStatusPending,
	}

	l.mu.Lock()
	l.orders = append(l.orders, order)
	l.mu.Unlock()
	return order
}

// LogComplaint appends an open complaint.
func (l *Ledger) LogComplaint(in ComplaintInput) model.Complaint {
	c := model.Complaint{
		ID:            l.ids.Next(ComplaintPrefix),
		CreatedAt:     l.now().UTC(),
		CallID:        in.CallID,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		ComplaintType: in.ComplaintType,
		Description:   in.Description,
		Status:        model.ComplaintStatusOpen,
	}

	l.mu.Lock()
	l.complaints = append(l.complaints, c)
	l.mu.Unlock()
	return c
}

// Orders returns the total count and the most recent limit orders, oldest first.
func (l *Ledger) Orders(limit int) (int, []model.Order) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.orders), tail(l.orders, limit)
}

// Complaints returns the total count and the most recent limit complaints, oldest first.
func (l *Ledger) Complaints(limit int) (int, []model.Complaint) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.complaints), tail(l.complaints, limit)
}

func tail[T any](items []T, limit int) []T {
	if limit <= 0 {
		limit = DefaultLimit
	}
	start := len(items) - limit
	if start < 0 {
		start = 0
	}
	out := make([]T, len(items)-start)
	copy(out, items[start:])
	return out
}
