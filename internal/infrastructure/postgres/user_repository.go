package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/internal/domain/entity"
	"github.com/sjpos/pos-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, firstname, lastname, COALESCE(othername, ''), email, password_hash,
	COALESCE(phone, ''), COALESCE(other_phone, ''), COALESCE(avatar_url, ''), theme_preference, role,
	is_email_verified, is_approved, is_profile_complete,
	COALESCE(email_verify_token_hash, ''), email_verify_expires, COALESCE(refresh_token_hash, ''),
	last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.Firstname, &u.Lastname, &u.Othername, &u.Email, &u.PasswordHash,
		&u.Phone, &u.OtherPhone, &u.AvatarURL, &u.ThemePreference, &u.Role,
		&u.IsEmailVerified, &u.IsApproved, &u.IsProfileComplete,
		&u.EmailVerifyTokenHash, &u.EmailVerifyExpires, &u.RefreshTokenHash,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) findOne(ctx context.Context, op, where string, args ...any) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (id, firstname, lastname, othername, email, password_hash, phone, other_phone,
			theme_preference, role, is_email_verified, is_approved, is_profile_complete,
			email_verify_token_hash, email_verify_expires, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.Firstname, u.Lastname, nullIfEmpty(u.Othername), u.Email, u.PasswordHash,
		nullIfEmpty(u.Phone), nullIfEmpty(u.OtherPhone), u.ThemePreference, u.Role,
		u.IsEmailVerified, u.IsApproved, u.IsProfileComplete,
		nullIfEmpty(u.EmailVerifyTokenHash), u.EmailVerifyExpires, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID. Devuelve nil, nil si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "get user by id", `id = $1`, id)
}

// GetByEmail obtiene un usuario por email (ya normalizado a minúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "get user by email", `email = $1`, email)
}

// GetByValidVerifyToken busca el usuario dueño del token de verificación vigente.
func (r *UserRepo) GetByValidVerifyToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error) {
	return r.findOne(ctx, "get user by verify token",
		`email_verify_token_hash = $1 AND email_verify_expires > $2`, tokenHash, now)
}

// exec ejecuta un UPDATE de una fila; 0 filas → domain.ErrUserNotFound.
func (r *UserRepo) exec(ctx context.Context, op, query string, args ...any) error {
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetVerifyToken guarda un nuevo token de verificación (reemplaza el anterior).
func (r *UserRepo) SetVerifyToken(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	return r.exec(ctx, "set verify token", `
		UPDATE users SET email_verify_token_hash = $2, email_verify_expires = $3, updated_at = now()
		WHERE id = $1`, userID, tokenHash, expires)
}

// MarkEmailVerified marca el email como verificado y consume el token.
func (r *UserRepo) MarkEmailVerified(ctx context.Context, userID string) error {
	return r.exec(ctx, "mark email verified", `
		UPDATE users SET is_email_verified = TRUE, email_verify_token_hash = NULL,
			email_verify_expires = NULL, updated_at = now()
		WHERE id = $1`, userID)
}

// RecordLogin guarda el refresh token vigente y la fecha de acceso.
func (r *UserRepo) RecordLogin(ctx context.Context, userID, refreshHash string, at time.Time) error {
	return r.exec(ctx, "record login", `
		UPDATE users SET refresh_token_hash = $2, last_login_at = $3, updated_at = now()
		WHERE id = $1`, userID, refreshHash, at)
}

// SetRefreshTokenHash rota o revoca ("") el refresh token.
func (r *UserRepo) SetRefreshTokenHash(ctx context.Context, userID, refreshHash string) error {
	return r.exec(ctx, "set refresh token", `
		UPDATE users SET refresh_token_hash = $2, updated_at = now() WHERE id = $1`,
		userID, nullIfEmpty(refreshHash))
}

// UpdateProfile aplica el patch y recalcula is_profile_complete. Devuelve nil, nil si no existe.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID string, p repository.ProfilePatch) (*entity.User, error) {
	query := `
		UPDATE users SET
			firstname   = COALESCE($2, firstname),
			lastname    = COALESCE($3, lastname),
			othername   = COALESCE($4, othername),
			phone       = COALESCE($5, phone),
			other_phone = COALESCE($6, other_phone),
			avatar_url  = COALESCE($7, avatar_url),
			is_profile_complete = (COALESCE($5, phone, '') <> ''),
			updated_at  = now()
		WHERE id = $1
		RETURNING ` + userColumns
	u, err := scanUser(r.q.QueryRow(ctx, query,
		userID, p.Firstname, p.Lastname, p.Othername, p.Phone, p.OtherPhone, p.AvatarURL,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// SetPasswordHash reemplaza la contraseña y revoca el refresh token.
func (r *UserRepo) SetPasswordHash(ctx context.Context, userID, hash string) error {
	return r.exec(ctx, "set password", `
		UPDATE users SET password_hash = $2, refresh_token_hash = NULL, updated_at = now()
		WHERE id = $1`, userID, hash)
}

// SetThemePreference guarda "light" o "dark".
func (r *UserRepo) SetThemePreference(ctx context.Context, userID, theme string) error {
	return r.exec(ctx, "set theme", `
		UPDATE users SET theme_preference = $2, updated_at = now() WHERE id = $1`, userID, theme)
}

// Delete elimina la cuenta. Si el usuario ya registró ventas la FK lo impide → domain.ErrConflict.
func (r *UserRepo) Delete(ctx context.Context, userID string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ListCashiers lista cajeros con filtro de aprobación, búsqueda y orden.
func (r *UserRepo) ListCashiers(ctx context.Context, f repository.CashierFilter) ([]*entity.User, error) {
	order := "created_at DESC"
	if f.SortBy == "lastname" {
		order = "lastname ASC, firstname ASC"
	}
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'cashier'
		  AND ($1::boolean IS NULL OR is_approved = $1)
		  AND ($2 = '' OR firstname ILIKE '%' || $2 || '%' OR lastname ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
		ORDER BY ` + order
	rows, err := r.q.Query(ctx, query, f.IsApproved, f.Search)
	if err != nil {
		return nil, fmt.Errorf("list cashiers: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cashier: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// GetCashierByID devuelve nil, nil si no existe o no es cajero.
func (r *UserRepo) GetCashierByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "get cashier", `id = $1 AND role = 'cashier'`, id)
}

// ApproveCashier aprueba un cajero. Devuelve domain.ErrUserNotFound si no existe.
func (r *UserRepo) ApproveCashier(ctx context.Context, id string) error {
	return r.exec(ctx, "approve cashier", `
		UPDATE users SET is_approved = TRUE, updated_at = now() WHERE id = $1 AND role = 'cashier'`, id)
}
