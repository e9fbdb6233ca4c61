package sales

import (
	"context"

	"github.com/sjpos/pos-api/internal/application/dto"
	"github.com/sjpos/pos-api/internal/domain/repository"
)

// SaleTxRunner ejecuta fn dentro de una transacción, con repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. La conexión siempre se libera.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(
		ledger repository.StockLedger,
		saleRepo repository.SaleRepository,
	) error) error
}

// IDGenerator genera identificadores públicos de venta (implementado por publicid.Generator).
type IDGenerator interface {
	Next() string
}

// ReceiptPDFGenerator renderiza el ticket de una venta como PDF.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, receipt *dto.SaleReceipt) ([]byte, error)
}
