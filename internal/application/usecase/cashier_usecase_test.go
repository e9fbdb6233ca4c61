package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjpos/pos-api/internal/application/usecase"
	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/internal/domain/entity"
	"github.com/sjpos/pos-api/internal/domain/repository"
)

const (
	cashierAna  = "11111111-1111-1111-1111-111111111111"
	cashierLuis = "22222222-2222-2222-2222-222222222222"
	adminID     = "33333333-3333-3333-3333-333333333333"
)

func seedCashiers() *memCashiers {
	base := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	return newMemCashiers(
		&entity.User{ID: cashierAna, Firstname: "Ana", Lastname: "Zapata", Email: "ana@sjpos.test", Role: entity.RoleCashier, CreatedAt: base},
		&entity.User{ID: cashierLuis, Firstname: "Luis", Lastname: "Arias", Email: "luis@sjpos.test", Role: entity.RoleCashier, IsApproved: true, CreatedAt: base.Add(time.Hour)},
		&entity.User{ID: adminID, Firstname: "Root", Lastname: "Admin", Email: "admin@sjpos.test", Role: entity.RoleAdmin, IsApproved: true, CreatedAt: base},
	)
}

func TestCashier_ListFiltrosYOrden(t *testing.T) {
	uc := usecase.NewCashierUseCase(seedCashiers())

	all, err := uc.List(context.Background(), repository.CashierFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, cashierLuis, all[0].ID)

	byName, err := uc.List(context.Background(), repository.CashierFilter{SortBy: "lastname"})
	require.NoError(t, err)
	assert.Equal(t, "Arias", byName[0].Lastname)

	pending, err := uc.List(context.Background(), repository.CashierFilter{IsApproved: ptr(false)})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, cashierAna, pending[0].ID)

	found, err := uc.List(context.Background(), repository.CashierFilter{Search: "LUIS@"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = uc.List(context.Background(), repository.CashierFilter{SortBy: "email"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCashier_GetByIDIgnoraAdmins(t *testing.T) {
	uc := usecase.NewCashierUseCase(seedCashiers())

	u, err := uc.GetByID(context.Background(), cashierAna)
	require.NoError(t, err)
	assert.Equal(t, "ana@sjpos.test", u.Email)

	u, err = uc.GetByID(context.Background(), adminID)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestCashier_Approve(t *testing.T) {
	repo := seedCashiers()
	uc := usecase.NewCashierUseCase(repo)

	u, err := uc.Approve(context.Background(), cashierAna)
	require.NoError(t, err)
	assert.True(t, u.IsApproved)
	assert.True(t, repo.users[cashierAna].IsApproved)

	_, err = uc.Approve(context.Background(), cashierAna)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	_, err = uc.Approve(context.Background(), adminID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = uc.Approve(context.Background(), "x")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
