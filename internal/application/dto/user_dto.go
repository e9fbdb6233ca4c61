package dto

import "time"

// SignupRequest registro de un cajero.
type SignupRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Othername string `json:"othername"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
}

// EmailRequest cuerpo con solo el email (reenvío de verificación).
type EmailRequest struct {
	Email string `json:"email"`
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse salida de un usuario (sin hashes).
type UserResponse struct {
	ID                string     `json:"id"`
	Firstname         string     `json:"firstname"`
	Lastname          string     `json:"lastname"`
	Othername         string     `json:"othername,omitempty"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone,omitempty"`
	OtherPhone        string     `json:"other_phone,omitempty"`
	AvatarURL         string     `json:"avatar_url,omitempty"`
	ThemePreference   string     `json:"theme_preference"`
	Role              string     `json:"role"`
	IsEmailVerified   bool       `json:"is_email_verified"`
	IsApproved        bool       `json:"is_approved"`
	IsProfileComplete bool       `json:"is_profile_complete"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// LoginResponse access token + usuario. El refresh token viaja aparte (cookie httpOnly).
type LoginResponse struct {
	Success      bool         `json:"success"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"-"`
	User         UserResponse `json:"user"`
}

// TokenResponse resultado de rotar el refresh token.
type TokenResponse struct {
	Success      bool   `json:"success"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"`
}

// UpdateProfileRequest actualización parcial del perfil.
type UpdateProfileRequest struct {
	Firstname  *string `json:"firstname"`
	Lastname   *string `json:"lastname"`
	Othername  *string `json:"othername"`
	Phone      *string `json:"phone"`
	OtherPhone *string `json:"other_phone"`
	AvatarURL  *string `json:"avatar_url"`
}

// ChangePasswordRequest cambio de contraseña.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ThemeRequest cambio de tema.
type ThemeRequest struct {
	ThemePreference string `json:"theme_preference"`
}

// DeleteAccountRequest confirmación con contraseña.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// UserEnvelope respuesta con un usuario.
type UserEnvelope struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	User    *UserResponse `json:"user"`
}

// CashierListResponse listado del panel admin.
type CashierListResponse struct {
	Success  bool           `json:"success"`
	Cashiers []UserResponse `json:"cashiers"`
}
