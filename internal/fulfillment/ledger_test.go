package fulfillment

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/lapu-lapu-poc/server/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paracetamol = model.Product{
	ProductName:    "Paracetamol 500mg",
	SizeVariant:    "Box of 100 tablets",
	RegularPrice:   decimal.NewFromInt(10),
	PWDSeniorPrice: decimal.NewFromInt(8),
}

func TestCreateOrder_Pricing(t *testing.T) {
	tests := []struct {
		name      string
		qty       int
		senior    bool
		wantQty   int
		wantUnit  string
		wantTotal string
	}{
		{"senior discount", 3, true, 3, "8", "24"},
		{"regular price", 3, false, 3, "10", "30"},
		{"zero quantity defaults to one", 0, false, 1, "10", "10"},
		{"negative quantity defaults to one", -2, true, 1, "8", "8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger()
			o := l.CreateOrder(OrderInput{Product: paracetamol, Quantity: tt.qty, IsPWDSenior: tt.senior, CustomerPhone: "09171234567"})

			assert.Equal(t, tt.wantQty, o.Quantity)
			assert.Equal(t, tt.wantUnit, o.UnitPrice.String())
			assert.Equal(t, tt.wantTotal, o.TotalPrice.String())
			assert.Equal(t, model.OrderStatusPending, o.Status)
			assert.True(t, strings.HasPrefix(o.ID, "ORD-"))
			assert.Equal(t, "Box of 100 tablets", o.SizeVariant)
		})
	}
}

func TestCreateOrder_CentavoPricesStayExact(t *testing.T) {
	biogesic := model.Product{
		ProductName:    "Biogesic",
		RegularPrice:   decimal.RequireFromString("5.50"),
		PWDSeniorPrice: decimal.RequireFromString("4.40"),
	}
	l := NewLedger()

	o := l.CreateOrder(OrderInput{Product: biogesic, Quantity: 3, IsPWDSenior: true})
	assert.True(t, decimal.RequireFromString("13.2").Equal(o.TotalPrice), "got %s", o.TotalPrice)
	assert.Equal(t, "13.2", o.TotalPrice.String())

	o = l.CreateOrder(OrderInput{Product: biogesic, Quantity: 7})
	assert.Equal(t, "38.5", o.TotalPrice.String())
}

func TestIDs_ShortAndSpeakable(t *testing.T) {
	g := NewIDGenerator()

	first := g.Next(OrderPrefix)
	assert.Regexp(t, `^ORD-1-[2-9A-HJ-NP-Z]{4}$`, first)
	assert.Regexp(t, `^CMP-2-[2-9A-HJ-NP-Z]{4}$`, g.Next(ComplaintPrefix))
}

func TestIDs_FallBackToSequenceWithoutSuffix(t *testing.T) {
	g := NewIDGenerator()
	g.suffix = func() (string, error) { return "", errors.New("entropy unavailable") }

	assert.Equal(t, "ORD-1", g.Next(OrderPrefix))
	assert.Equal(t, "ORD-2", g.Next(OrderPrefix))
}

func TestCreateOrder_UniqueIDs(t *testing.T) {
	l := NewLedger()
	l.ids.suffix = func() (string, error) { return "AAAA", nil }

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		o := l.CreateOrder(OrderInput{Product: paracetamol, Quantity: 1})
		require.False(t, seen[o.ID], "duplicate id %s", o.ID)
		seen[o.ID] = true
	}
}

func TestIDsUniqueUnderConcurrency(t *testing.T) {
	g := NewIDGenerator()
	var mu sync.Mutex
	seen := map[string]bool{}
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.Next(ComplaintPrefix)
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 200)
}

func TestLogComplaint(t *testing.T) {
	l := NewLedger()
	c := l.LogComplaint(ComplaintInput{
		CallID:        "call-1",
		CustomerName:  "Juan",
		ComplaintType: "delivery",
		Description:   "Late delivery",
	})

	assert.True(t, strings.HasPrefix(c.ID, "CMP-"))
	assert.Equal(t, model.ComplaintStatusOpen, c.Status)
	assert.Equal(t, "call-1", c.CallID)

	total, recent := l.Complaints(10)
	assert.Equal(t, 1, total)
	assert.Equal(t, c, recent[0])

	total, _ = l.Orders(10)
	assert.Zero(t, total)
}

func TestOrders_RecentWindow(t *testing.T) {
	l := NewLedger()
	var ids []string
	for i := 1; i <= 5; i++ {
		ids = append(ids, l.CreateOrder(OrderInput{Product: paracetamol, Quantity: i}).ID)
	}

	total, recent := l.Orders(2)
	assert.Equal(t, 5, total)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[3], recent[0].ID)
	assert.Equal(t, ids[4], recent[1].ID)

	_, all := l.Orders(0)
	assert.Len(t, all, 5)
}
