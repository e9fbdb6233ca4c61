package repository

import (
	"context"
	"time"

	"github.com/sjpos/pos-api/internal/domain/entity"
)

// ProfilePatch campos editables del perfil; nil = sin cambio.
type ProfilePatch struct {
	Firstname  *string
	Lastname   *string
	Othername  *string
	Phone      *string
	OtherPhone *string
	AvatarURL  *string
}

// Empty indica si el patch no modifica nada.
func (p ProfilePatch) Empty() bool {
	return p.Firstname == nil && p.Lastname == nil && p.Othername == nil &&
		p.Phone == nil && p.OtherPhone == nil && p.AvatarURL == nil
}

// CashierFilter filtros del listado de cajeros (panel admin).
type CashierFilter struct {
	IsApproved *bool
	Search     string // coincide con nombre, apellido o email
	SortBy     string // "lastname" | "created_at"
}

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByValidVerifyToken busca un usuario con ese hash de token y sin expirar.
	GetByValidVerifyToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error)
	SetVerifyToken(ctx context.Context, userID, tokenHash string, expires time.Time) error
	MarkEmailVerified(ctx context.Context, userID string) error
	// RecordLogin guarda el hash del refresh token y la fecha de último acceso.
	RecordLogin(ctx context.Context, userID, refreshHash string, at time.Time) error
	// SetRefreshTokenHash reemplaza (o revoca con "") el refresh token. Devuelve domain.ErrUserNotFound si no existe.
	SetRefreshTokenHash(ctx context.Context, userID, refreshHash string) error
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*entity.User, error)
	SetPasswordHash(ctx context.Context, userID, hash string) error
	SetThemePreference(ctx context.Context, userID, theme string) error
	Delete(ctx context.Context, userID string) error

	ListCashiers(ctx context.Context, filter CashierFilter) ([]*entity.User, error)
	GetCashierByID(ctx context.Context, id string) (*entity.User, error)
	ApproveCashier(ctx context.Context, id string) error
}
