package sales_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjpos/pos-api/internal/application/dto"
	"github.com/sjpos/pos-api/internal/application/sales"
	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/internal/domain/entity"
)

type fakePDF struct {
	got *dto.SaleReceipt
}

func (f *fakePDF) GenerateReceiptPDF(_ context.Context, r *dto.SaleReceipt) ([]byte, error) {
	f.got = r
	return []byte("%PDF-1.3 fake"), nil
}

// sellOne registra una venta real a través del coordinador y devuelve su ticket.
func sellOne(t *testing.T, store *memStore, user string) *dto.SaleReceipt {
	t.Helper()
	receipt, err := newCreateSale(store).CreateSale(context.Background(), user, saleReq("cash", item(productA, 2)))
	require.NoError(t, err)
	return receipt
}

func TestGetReceipt_LecturaIdempotente(t *testing.T) {
	store := newMemStore(snapshot(productA, "Pan", "10.00", 5))
	created := sellOne(t, store, cashierA)
	uc := sales.NewReceiptUseCase(store.reader(), nil, zerolog.Nop())

	first, err := uc.GetReceipt(context.Background(), cashierA, created.PublicID)
	require.NoError(t, err)
	second, err := uc.GetReceipt(context.Background(), cashierA, created.PublicID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, created.ID, first.ID)
	assert.True(t, created.Total.Equal(first.Total))
	assert.Equal(t, 3, store.stock(productA), "leer no modifica stock")
}

func TestGetReceipt_OtroUsuarioNoEncontrada(t *testing.T) {
	store := newMemStore(snapshot(productA, "Pan", "10.00", 5))
	created := sellOne(t, store, cashierB)
	uc := sales.NewReceiptUseCase(store.reader(), nil, zerolog.Nop())

	out, err := uc.GetReceipt(context.Background(), cashierA, created.PublicID)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetReceipt_PublicIDMalformado(t *testing.T) {
	store := newMemStore()
	uc := sales.NewReceiptUseCase(store.reader(), nil, zerolog.Nop())

	_, err := uc.GetReceipt(context.Background(), cashierA, "123")
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "public_id", verr.Issues[0].Path)
}

func TestGetReceipt_VentaSinLineas(t *testing.T) {
	store := newMemStore()
	store.seedSale(entity.Sale{
		ID: "s1", PublicID: "SJPOS-2026-123456", UserID: cashierA,
		PaymentMethod: entity.PaymentCash, Total: decimal.NewFromInt(5), CreatedAt: time.Now(),
	})
	uc := sales.NewReceiptUseCase(store.reader(), nil, zerolog.Nop())

	_, err := uc.GetReceipt(context.Background(), cashierA, "SJPOS-2026-123456")
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)
}

func TestDownloadReceiptPDF(t *testing.T) {
	store := newMemStore(snapshot(productA, "Pan", "10.00", 5))
	created := sellOne(t, store, cashierA)
	gen := &fakePDF{}
	uc := sales.NewReceiptUseCase(store.reader(), gen, zerolog.Nop())

	pdf, name, err := uc.DownloadReceiptPDF(context.Background(), cashierA, created.PublicID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, created.PublicID+".pdf", name)
	require.NotNil(t, gen.got)
	assert.Equal(t, created.PublicID, gen.got.PublicID)

	_, _, err = uc.DownloadReceiptPDF(context.Background(), cashierB, created.PublicID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListSales_SoloDelUsuario(t *testing.T) {
	store := newMemStore(snapshot(productA, "Pan", "1.00", 50))
	sellOne(t, store, cashierA)
	sellOne(t, store, cashierA)
	sellOne(t, store, cashierB)
	uc := sales.NewReceiptUseCase(store.reader(), nil, zerolog.Nop())

	out, err := uc.ListSales(context.Background(), cashierA, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, out.Sales, 2)
	assert.Equal(t, 20, out.Page.Limit)

	out, err = uc.ListSales(context.Background(), cashierA, dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, out.Sales, 1)
}
