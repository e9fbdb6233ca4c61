package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// Preferencias de tema.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// User cajero o administrador del punto de venta.
// Los cajeros necesitan email verificado y aprobación de un admin para iniciar sesión.
type User struct {
	ID                   string
	Firstname            string
	Lastname             string
	Othername            string
	Email                string
	PasswordHash         string
	Phone                string
	OtherPhone           string
	AvatarURL            string
	ThemePreference      string
	Role                 string
	IsEmailVerified      bool
	IsApproved           bool
	IsProfileComplete    bool
	// sha256 hex del token enviado por correo
	EmailVerifyTokenHash string
	EmailVerifyExpires   *time.Time
	// bcrypt del refresh token vigente
	RefreshTokenHash     string
	LastLoginAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CanLogin aplica las reglas de acceso: el admin siempre entra; el cajero requiere verificación y aprobación.
func (u *User) CanLogin() (verified, approved bool) {
	if u.Role == RoleAdmin {
		return true, true
	}
	return u.IsEmailVerified, u.IsApproved
}
