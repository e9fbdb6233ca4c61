package sales

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sjpos/pos-api/internal/application/dto"
	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/internal/domain/repository"
	"github.com/sjpos/pos-api/pkg/publicid"
)

// ReceiptUseCase lectura de ventas ya confirmadas, siempre acotada al usuario dueño.
type ReceiptUseCase struct {
	saleRepo  repository.SaleRepository
	generator ReceiptPDFGenerator
	log       zerolog.Logger
}

// NewReceiptUseCase construye el caso de uso. generator puede ser nil si no se sirven PDFs.
func NewReceiptUseCase(saleRepo repository.SaleRepository, generator ReceiptPDFGenerator, log zerolog.Logger) *ReceiptUseCase {
	return &ReceiptUseCase{saleRepo: saleRepo, generator: generator, log: log}
}

// GetReceipt devuelve el ticket de la venta publicID del usuario.
// Una venta de otro usuario se trata igual que una inexistente.
func (uc *ReceiptUseCase) GetReceipt(ctx context.Context, userID, publicID string) (*dto.SaleReceipt, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !publicid.Valid(publicID) {
		verr := &domain.ValidationError{}
		verr.Add("public_id", "must have the form PREFIX-YYYY-NNNNNN")
		return nil, verr
	}
	sale, err := uc.saleRepo.GetByPublicIDAndUser(ctx, publicID, userID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}
	items, err := uc.saleRepo.GetItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		// Una cabecera sin líneas no debería existir: se registra y se responde 404.
		uc.log.Error().Str("public_id", publicID).Str("sale_id", sale.ID).Msg("venta sin líneas")
		return nil, domain.ErrSaleNotFound
	}
	return toSaleReceipt(sale, items), nil
}

// DownloadReceiptPDF genera el PDF del ticket. Devuelve bytes y nombre de archivo.
func (uc *ReceiptUseCase) DownloadReceiptPDF(ctx context.Context, userID, publicID string) ([]byte, string, error) {
	if uc.generator == nil {
		return nil, "", fmt.Errorf("receipt pdf: generator not configured")
	}
	receipt, err := uc.GetReceipt(ctx, userID, publicID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.GenerateReceiptPDF(ctx, receipt)
	if err != nil {
		return nil, "", fmt.Errorf("receipt pdf: %w", err)
	}
	return pdf, receipt.PublicID + ".pdf", nil
}

// ListSales historial de ventas del usuario, más recientes primero.
func (uc *ReceiptUseCase) ListSales(ctx context.Context, userID string, page dto.PageRequest) (*dto.SaleListResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	page.DefaultPage()
	list, err := uc.saleRepo.ListByUser(ctx, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.SaleListResponse{
		Success: true,
		Sales:   make([]dto.SaleSummary, 0, len(list)),
		Page:    dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, s := range list {
		out.Sales = append(out.Sales, dto.SaleSummary{
			ID:            s.ID,
			PublicID:      s.PublicID,
			Total:         s.Total,
			PaymentMethod: string(s.PaymentMethod),
			CreatedAt:     s.CreatedAt,
		})
	}
	return out, nil
}
