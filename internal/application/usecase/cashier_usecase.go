package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/sjpos/pos-api/internal/application/auth"
	"github.com/sjpos/pos-api/internal/application/dto"
	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/internal/domain/repository"
)

// ErrAlreadyApproved el cajero ya estaba aprobado.
var ErrAlreadyApproved = domain.WithKind(domain.ErrConflict, "cashier is already approved")

// CashierUseCase gestión de cajeros desde el panel de administración.
type CashierUseCase struct {
	repo repository.UserRepository
}

// NewCashierUseCase construye el caso de uso con el puerto de persistencia.
func NewCashierUseCase(repo repository.UserRepository) *CashierUseCase {
	return &CashierUseCase{repo: repo}
}

// List lista cajeros filtrando por aprobación y texto; sortBy: lastname | created_at.
func (uc *CashierUseCase) List(ctx context.Context, filter repository.CashierFilter) ([]dto.UserResponse, error) {
	switch filter.SortBy {
	case "", "lastname", "created_at":
	default:
		verr := &domain.ValidationError{}
		verr.Add("sortBy", "must be lastname or created_at")
		return nil, verr
	}
	list, err := uc.repo.ListCashiers(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *auth.ToUserResponse(u))
	}
	return out, nil
}

// GetByID obtiene un cajero. Devuelve nil, nil si no existe.
func (uc *CashierUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	u, err := uc.repo.GetCashierByID(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}
	return auth.ToUserResponse(u), nil
}

// Approve habilita el login de un cajero.
func (uc *CashierUseCase) Approve(ctx context.Context, id string) (*dto.UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	u, err := uc.repo.GetCashierByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	if u.IsApproved {
		return nil, ErrAlreadyApproved
	}
	if err := uc.repo.ApproveCashier(ctx, id); err != nil {
		return nil, err
	}
	u.IsApproved = true
	return auth.ToUserResponse(u), nil
}
