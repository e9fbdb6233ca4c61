package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjpos/pos-api/internal/application/dto"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "$0.00",
		"12.5":      "$12.50",
		"999.99":    "$999.99",
		"1000":      "$1,000.00",
		"1234567.5": "$1,234,567.50",
		"-2500.1":   "-$2,500.10",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestGenerateReceiptPDF(t *testing.T) {
	g := NewReceiptGenerator("SJPOS")
	out, err := g.GenerateReceiptPDF(context.Background(), &dto.SaleReceipt{
		ID:            "00000000-0000-0000-0000-000000000001",
		PublicID:      "SJPOS-2026-123456",
		Total:         decimal.RequireFromString("20.00"),
		PaymentMethod: "cash",
		CreatedAt:     time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
		Items: []dto.SaleItemResponse{{
			ProductID:    "00000000-0000-0000-0000-000000000002",
			ProductName:  "Coca Cola",
			ProductPrice: decimal.RequireFromString("10.00"),
			Quantity:     2,
			Price:        decimal.RequireFromString("20.00"),
		}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
